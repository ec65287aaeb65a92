package actor

import (
	"sync/atomic"
	"time"

	"sas/internal/errs"
	"sas/internal/queue"
	"sas/pkg/glog"
	"sas/pkg/lib"
	"sas/pkg/lib/timex/asynctime"
	"sas/pkg/lib/workers"

	"go.uber.org/zap"
)

const (
	ctxRunning int32 = iota
	ctxStopping
	ctxStopped
)

// Poll 单步推进的结果
// Terminated: 上下文已终止（正常退出与异常失败不区分）
// Waiting: 仍在运行，但 actor 在等待内部异步事件，邮箱应暂停排空
type Poll struct {
	Terminated bool
	Waiting    bool
}

// Context actor 的执行上下文
// 独占拥有一个 actor 实例及其上下文本地的瞬态：自身邮箱、定时器、异步任务。
// 除明确标注的方法外，所有方法只允许在所属 arbiter 线程调用。
type Context struct {
	actor   IActor
	selfTx  *queue.UnsyncSender
	selfRx  *queue.UnsyncReceiver
	tasks   *lib.Mpsc[Task] // 定时器到期与异步完成的回调任务
	timers  *timerManager
	state   atomic.Int32
	failed  atomic.Bool
	waiting atomic.Int32
	waker   atomic.Value // func()
	upgrade func() *SyncAddr
	started bool
}

// NewContext 创建无父级的执行上下文，actor 稍后通过 Bind 绑定
func NewContext() *Context {
	selfTx, selfRx := queue.NewUnsync()
	return &Context{
		selfTx: selfTx,
		selfRx: selfRx,
		tasks:  lib.NewMpsc[Task](),
		timers: newTimerManager(),
	}
}

// Bind 绑定 actor 实例，每个上下文仅允许一次
func (c *Context) Bind(act IActor) {
	if c.actor != nil {
		glog.Panic("bind actor", zap.Error(errs.ErrActorAlreadyBound))
	}
	c.actor = act
}

// Actor 获取绑定的 actor 实例
func (c *Context) Actor() IActor {
	return c.actor
}

// SelfSender 派生自身邮箱的同线程发送端
// 在 Bind 之前即可调用，工厂函数由此可以捕获 actor 未来的自身地址。
func (c *Context) SelfSender() *queue.UnsyncSender {
	return c.selfTx
}

// Address 铸造指向自身邮箱的同线程地址
func (c *Context) Address() *Addr {
	return newAddr(c.selfTx.Clone())
}

// SetWaker 注册唤醒回调，由监督者在装配时设置
func (c *Context) SetWaker(w func()) {
	c.waker.Store(w)
	c.selfRx.SetWaker(w)
}

// SetUpgrader 注册升级应答器，由监督者在装配时设置
// 自身地址上的升级请求经由它铸造共享 sync 通道的跨线程地址。
func (c *Context) SetUpgrader(fn func() *SyncAddr) {
	c.upgrade = fn
}

func (c *Context) wake() {
	if w := c.waker.Load(); w != nil {
		w.(func())()
	}
}

// Alive 上下文是否仍在运行（请求停止后立即返回 false）
func (c *Context) Alive() bool {
	return c.state.Load() == ctxRunning
}

// Waiting 是否存在未完成的等待型异步任务
func (c *Context) Waiting() bool {
	return c.waiting.Load() > 0
}

// Failed 上下文是否因 panic 而终止
func (c *Context) Failed() bool {
	return c.failed.Load()
}

// Stop 请求优雅终止，下一次推进时生效
func (c *Context) Stop() {
	if c.state.CompareAndSwap(ctxRunning, ctxStopping) {
		c.wake()
	}
}

// fail 吸收一次 actor 失败并请求终止
func (c *Context) fail(err error) {
	c.failed.Store(true)
	glog.Error("actor failed", zap.Error(err), zap.Stack("stack"))
	c.Stop()
}

// invoke 在上下文内执行回调并捕获 panic，panic 视为 actor 异常失败
func (c *Context) invoke(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.ErrActorPanic(r)
			c.fail(err)
		}
	}()
	return fn()
}

// Deliver 在上下文内应用一个工作单元
// actor 与上下文一并交给 envelope，外部无需同时持有两者的可变引用。
func (c *Context) Deliver(env Envelope) error {
	if env == nil {
		return errs.ErrEnvelopeIsNil
	}
	if !c.Alive() {
		return errs.ErrContextTerminated
	}
	return c.invoke(func() error { return env.Handle(c.actor, c) })
}

// Advance 推进上下文一步
// 首次推进执行 OnStart；之后依次执行就绪的内部任务并排空自身邮箱。
// 终止（正常或异常）后恒定返回 Terminated。
func (c *Context) Advance() Poll {
	switch c.state.Load() {
	case ctxStopped:
		return Poll{Terminated: true}
	case ctxStopping:
		c.finalize()
		return Poll{Terminated: true}
	}

	if !c.started {
		c.started = true
		if err := c.invoke(func() error { return c.actor.OnStart(c) }); err != nil {
			glog.Error("actor start", zap.Error(err))
		}
	}

	for c.Alive() {
		task, ok := c.tasks.Pop()
		if !ok {
			break
		}
		if err := c.invoke(func() error { return task(c) }); err != nil {
			glog.Error("context task", zap.Error(err))
		}
	}

	for c.Alive() {
		msg, ok := c.selfRx.TryPop()
		if !ok {
			break
		}
		switch m := msg.(type) {
		case *upgradeRequest:
			if c.upgrade != nil {
				m.reply.Done(c.upgrade())
			} else {
				glog.Errorf("upgrade requested on a detached context")
			}
		case Envelope:
			if err := c.Deliver(m); err != nil {
				glog.Error("context deliver", zap.Error(err))
			}
		default:
			glog.Errorf("unexpected message on context mailbox: %T", msg)
		}
	}

	if !c.Alive() {
		c.finalize()
		return Poll{Terminated: true}
	}
	return Poll{Waiting: c.waiting.Load() > 0}
}

// finalize 终止上下文：取消定时器，执行 OnStop，关闭自身邮箱
func (c *Context) finalize() {
	if !c.state.CompareAndSwap(ctxStopping, ctxStopped) {
		return
	}
	c.timers.cancelAll()
	if c.actor != nil {
		if err := c.invoke(func() error { return c.actor.OnStop(c) }); err != nil {
			glog.Error("actor stop", zap.Error(err))
		}
	}
	c.selfRx.Close()
}

// NotifyRestarting 重启通知，经由新上下文调用 actor 的 OnRestarting
func (c *Context) NotifyRestarting() {
	if s, ok := c.actor.(ISupervised); ok {
		_ = c.invoke(func() error {
			s.OnRestarting(c)
			return nil
		})
	}
}

// TakeActor 拆除上下文并取出其拥有的 actor，仅在重启时使用
// actor 的自有状态原样保留；上下文本地瞬态（定时器、未完成任务、自身邮箱）全部废弃。
func (c *Context) TakeActor() IActor {
	c.state.Store(ctxStopped)
	c.timers.cancelAll()
	c.selfRx.Close()
	act := c.actor
	c.actor = nil
	return act
}

// RunLater 注册一次性定时器，到期后 task 作为内部任务在 arbiter 线程执行
func (c *Context) RunLater(d time.Duration, task Task) int64 {
	if task == nil {
		return 0
	}
	id, ok := c.timers.register()
	if !ok {
		return 0
	}
	t := asynctime.AfterFunc(d, func() {
		if !c.timers.alive(id) {
			return
		}
		c.timers.complete(id)
		c.enqueueTask(task)
	})
	c.timers.track(id, t)
	return id
}

// RunInterval 注册周期定时器，每个周期把 task 投递为内部任务
func (c *Context) RunInterval(d time.Duration, task Task) int64 {
	if task == nil {
		return 0
	}
	id, ok := c.timers.register()
	if !ok {
		return 0
	}
	var arm func()
	arm = func() {
		t := asynctime.AfterFunc(d, func() {
			if !c.timers.alive(id) {
				return
			}
			c.enqueueTask(task)
			arm()
		})
		c.timers.track(id, t)
	}
	arm()
	return id
}

// CancelTimer 取消定时器
func (c *Context) CancelTimer(id int64) bool {
	return c.timers.cancel(id)
}

func (c *Context) enqueueTask(task Task) {
	c.tasks.Push(task)
	c.wake()
}

// Wait 在线程池执行 job，期间上下文处于等待状态，两条邮箱都暂停排空
// job 完成后 then 作为内部任务回到 arbiter 线程执行。
func (c *Context) Wait(job func() (interface{}, error), then func(ctx *Context, result interface{}, err error)) {
	if job == nil {
		return
	}
	c.waiting.Add(1)
	c.runAsync(job, then, true)
}

// Spawn 与 Wait 相同，但不阻塞邮箱排空
func (c *Context) Spawn(job func() (interface{}, error), then func(ctx *Context, result interface{}, err error)) {
	if job == nil {
		return
	}
	c.runAsync(job, then, false)
}

func (c *Context) runAsync(job func() (interface{}, error), then func(ctx *Context, result interface{}, err error), waited bool) {
	workers.Submit(func() {
		var result interface{}
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = errs.ErrActorPanic(r)
				}
			}()
			result, err = job()
		}()
		if then != nil {
			c.tasks.Push(func(ctx *Context) error {
				then(ctx, result, err)
				return nil
			})
		}
		if waited {
			c.waiting.Add(-1)
		}
		c.wake()
	}, func(r interface{}) {
		if waited {
			c.waiting.Add(-1)
		}
		glog.Errorf("context async job panic: %v", r)
		c.wake()
	})
}
