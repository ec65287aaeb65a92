package lib

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	group        sync.WaitGroup
	ctx, cancel  = context.WithCancel(context.Background())
	panicHandler func(interface{})
	isShutdown   atomic.Bool
	goCount      atomic.Int64
	panicCount   atomic.Uint64
)

// Go 启动受管理的常驻协程，关停时通过 ctx 通知退出
func Go(f func(ctx context.Context)) {
	GoTry(f, panicHandler)
}

func GoTry(f func(ctx context.Context), try func(_ any)) {
	group.Add(1) // 启动前Add，避免竞态
	goCount.Add(1)
	go func() {
		defer func() {
			goCount.Add(-1)
			// 无论是否panic，都标记Done
			group.Done()
			// 捕获panic，避免单个协程崩溃影响整体
			if r := recover(); r != nil {
				panicCount.Add(1)
				if try != nil {
					try(r)
				}
			}
		}()
		f(ctx) // 传入上下文，供业务监听退出
	}()
}

// Try 执行函数并捕获 panic
func Try(f func(), reFun func(err any)) {
	defer func() {
		if r := recover(); r != nil {
			panicCount.Add(1)
			if reFun != nil {
				reFun(r)
			}
			if panicHandler != nil {
				panicHandler(r)
			}
		}
	}()
	f()
}

func SetPanicHandler(handler func(interface{})) {
	panicHandler = handler
}

func GoroutineCount() int64 {
	return goCount.Load()
}

// ShutdownGoroutines 通知所有受管理协程退出并等待
func ShutdownGoroutines(waitCtx context.Context) error {
	if !isShutdown.CompareAndSwap(false, true) {
		return nil
	}
	cancel()
	done := make(chan struct{})
	go func() {
		group.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-waitCtx.Done():
		return fmt.Errorf("等待协程退出超时，部分协程可能未完成清理")
	}
}
