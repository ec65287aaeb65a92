package actor

import (
	"context"
	"runtime"
	"sync/atomic"

	"sas/internal/errs"
	"sas/internal/queue"
	"sas/pkg/glog"
	"sas/pkg/lib"
)

// defaultThroughput 单次排空最多连续执行的任务数，超过后让出 CPU
var defaultThroughput atomic.Int32

func init() {
	defaultThroughput.Store(1024)
}

// SetThroughput 设置 arbiter 吞吐参数
func SetThroughput(n int) {
	if n > 0 {
		defaultThroughput.Store(int32(n))
	}
}

// executeMessage 跨线程投递到 arbiter 的闭包任务
type executeMessage struct {
	fn func(a *Arbiter)
}

// Arbiter 线程绑定的协作式调度器
// 独占一个常驻协程；所有投递到它的任务在该协程上顺序执行，互不抢占。
// 监督者任务的每次恢复都以 Do 的形式回到本线程。
type Arbiter struct {
	name    string
	runq    *lib.Mpsc[func()]
	ctrlTx  *queue.SyncSender
	ctrlRx  *queue.SyncReceiver
	notify  chan struct{}
	stopped atomic.Bool
	done    chan struct{}
}

// NewArbiter 创建并启动 arbiter，name 非空时注册到全局注册表
func NewArbiter(name string) *Arbiter {
	ctrlTx, ctrlRx := queue.NewSync()
	a := &Arbiter{
		name:   name,
		runq:   lib.NewMpsc[func()](),
		ctrlTx: ctrlTx,
		ctrlRx: ctrlRx,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	ctrlRx.SetWaker(a.wakeup)
	if name != "" {
		if err := registerArbiter(a); err != nil {
			glog.Warnf("register arbiter %s: %v", name, err)
		}
	}
	lib.Go(a.run)
	return a
}

func (a *Arbiter) Name() string {
	return a.name
}

func (a *Arbiter) wakeup() {
	select {
	case a.notify <- struct{}{}:
	default:
	}
}

// Do 把任务投递到本 arbiter 线程执行，线程安全
func (a *Arbiter) Do(fn func()) error {
	if fn == nil {
		return errs.ErrTaskIsNil
	}
	if a.stopped.Load() {
		return errs.ErrArbiterStopped
	}
	a.runq.Push(fn)
	a.wakeup()
	return nil
}

// Handle 派生跨线程句柄，供其他线程投递 Execute 闭包（start_in 的目标）
func (a *Arbiter) Handle() *ArbiterHandle {
	tx := a.ctrlTx.Clone()
	if tx == nil {
		return nil
	}
	return &ArbiterHandle{tx: tx}
}

// Stop 请求停止，排空剩余任务后退出
func (a *Arbiter) Stop() {
	if a.stopped.CompareAndSwap(false, true) {
		a.wakeup()
	}
}

// Join 等待 arbiter 协程退出
func (a *Arbiter) Join() {
	<-a.done
}

func (a *Arbiter) run(ctx context.Context) {
	defer func() {
		if a.name != "" {
			unregisterArbiter(a.name)
		}
		close(a.done)
	}()
	for {
		a.drain()
		if a.stopped.Load() && a.runq.Empty() {
			// 先关闭控制通道，随后句柄的连接探测返回 false
			a.ctrlRx.Close()
			a.ctrlTx.Close()
			a.drain() // 停止前最后一次排空，避免丢已入队任务
			glog.Debugf("arbiter %s exited", a.name)
			return
		}
		select {
		case <-a.notify:
		case <-ctx.Done():
			a.stopped.Store(true)
		}
	}
}

// drain 排空运行队列与控制通道
// 每处理一定数量的任务后让出 CPU，避免长时间占用导致其他协程饥饿。
func (a *Arbiter) drain() {
	throughput := int(defaultThroughput.Load())
	var processed int
	for {
		if processed >= throughput {
			processed = 0
			runtime.Gosched()
		}
		progressed := false
		if fn, ok := a.runq.Pop(); ok {
			progressed = true
			processed++
			lib.Try(fn, func(r any) {
				glog.Errorf("arbiter %s task panic: %+v", a.name, r)
			})
		}
		if msg, ok := a.ctrlRx.TryPop(); ok {
			progressed = true
			processed++
			exec, ok := msg.(*executeMessage)
			if !ok {
				glog.Errorf("arbiter %s: unexpected control message %T", a.name, msg)
				continue
			}
			lib.Try(func() { exec.fn(a) }, func(r any) {
				glog.Errorf("arbiter %s execute panic: %+v", a.name, r)
			})
		}
		if !progressed {
			return
		}
	}
}

// ArbiterHandle arbiter 的跨线程句柄
type ArbiterHandle struct {
	tx *queue.SyncSender
}

// Execute 调度闭包到目标线程执行，闭包收到宿主 arbiter
func (h *ArbiterHandle) Execute(fn func(a *Arbiter)) error {
	if fn == nil {
		return errs.ErrTaskIsNil
	}
	return h.tx.Send(&executeMessage{fn: fn})
}

// Connected 目标线程是否可达
func (h *ArbiterHandle) Connected() bool {
	return h.tx.Connected()
}

// Clone 派生新句柄
func (h *ArbiterHandle) Clone() *ArbiterHandle {
	tx := h.tx.Clone()
	if tx == nil {
		return nil
	}
	return &ArbiterHandle{tx: tx}
}

// Close 丢弃句柄
func (h *ArbiterHandle) Close() {
	h.tx.Close()
}
