// Package workers 短任务线程池，基于 ants
package workers

import (
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
)

var (
	goCount    atomic.Int64
	panicCount atomic.Uint64
	pool       *ants.Pool
)

func init() {
	pool, _ = ants.NewPool(5000)
}

// Tune 调整线程池容量
func Tune(size int) {
	if size <= 0 {
		return
	}
	pool.Tune(size)
}

// Submit 提交短任务到线程池执行，panic 由 recoverFun 接管
func Submit(fn func(), recoverFun func(err interface{})) {
	err := pool.Submit(func() {
		goCount.Add(1)
		Try(fn, recoverFun)
		goCount.Add(-1)
	})
	if err != nil {
		// 池已关闭时退化为同步执行，任务不丢失
		Try(fn, recoverFun)
	}
}

func Try(fn func(), reFun func(err interface{})) {
	defer func() {
		if err := recover(); err != nil {
			panicCount.Add(1)
			if reFun != nil {
				reFun(err)
			}
		}
	}()
	fn()
}

func Running() int64 {
	return goCount.Load()
}

func Release() {
	pool.Release()
}
