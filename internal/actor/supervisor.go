package actor

import (
	"sync/atomic"

	"sas/internal/errs"
	"sas/internal/queue"
	"sas/pkg/glog"

	"go.uber.org/zap"
)

const (
	schedIdle int32 = iota
	schedRunning
)

// IScheduler 协作式调度能力：把一次恢复投递回监督者所在线程
// 生产实现是 *Arbiter；测试中可注入手动驱动的实现。
type IScheduler interface {
	Do(fn func()) error
}

// Supervisor 监督者
//
// 监督者替 actor 接收消息；actor 终止（正常退出或异常失败）而仍有地址
// 存活时，监督者重建执行上下文并保留 actor 自有状态，对外表现为 actor
// 从不崩溃。只有所有地址都被丢弃且 actor 随后终止，监督才永久结束。
//
// 监督者不保证消息一定被成功处理：终止瞬间正在应用的消息被放弃且不会
// 重试，调用方通过应答机制以超时观察到失败（至多一次投递）。
type Supervisor struct {
	ctx      *Context
	selfTx   *queue.UnsyncSender
	unsyncRx *queue.UnsyncReceiver
	syncRx   *queue.SyncReceiver
	sched    IScheduler

	// CAS 保证同一时间只有一次恢复在执行；pending 记录挂起竞态中的唤醒
	state   atomic.Int32
	pending atomic.Bool
	stopped atomic.Bool
}

// Start 启动受监督的 actor，必须在 arb 的线程上调用
//
// 工厂函数在 actor 存在之前收到上下文，可以捕获自己未来的地址。
// 返回同线程地址与跨线程地址，两者都已接到存活的邮箱上。构造不会失败。
func Start(arb *Arbiter, factory func(ctx *Context) IActor) (*Addr, *SyncAddr) {
	ctx := NewContext()
	selfTx := ctx.SelfSender()
	act := factory(ctx)
	ctx.Bind(act)

	unsyncTx, unsyncRx := queue.NewUnsync()
	syncTx, syncRx := queue.NewSync()
	s := newSupervisor(arb, ctx, selfTx, unsyncRx, syncRx)
	s.spawn()

	return newAddr(unsyncTx), newSyncAddr(syncTx)
}

// StartIn 在目标 arbiter 的线程上构造受监督的 actor
//
// sync 通道在调用线程上先行创建，构造闭包只带走消费端；本地 unsync 邮箱
// 在目标线程内创建且发送端立即关闭，不对外暴露。调度后对目标句柄做一次
// 尽力而为的连通性复查——复查不能完全排除调度与投递之间的竞态。
func StartIn(h *ArbiterHandle, factory func(ctx *Context) IActor) (*SyncAddr, error) {
	if h == nil || !h.Connected() {
		return nil, errs.ErrArbiterUnreachable
	}

	syncTx, syncRx := queue.NewSync()

	err := h.Execute(func(arb *Arbiter) {
		ctx := NewContext()
		selfTx := ctx.SelfSender()
		act := factory(ctx)
		ctx.Bind(act)

		unsyncTx, unsyncRx := queue.NewUnsync()
		unsyncTx.Close()

		s := newSupervisor(arb, ctx, selfTx, unsyncRx, syncRx)
		s.spawn()
	})
	if err != nil || !h.Connected() {
		// 失败时必须释放唯一的发送端；若构造闭包已经（或仍会）在目标
		// 线程执行，造出的监督者由此观察到断连并停止
		syncTx.Close()
		return nil, errs.ErrArbiterUnreachable
	}
	return newSyncAddr(syncTx), nil
}

func newSupervisor(sched IScheduler, ctx *Context, selfTx *queue.UnsyncSender,
	unsyncRx *queue.UnsyncReceiver, syncRx *queue.SyncReceiver) *Supervisor {
	s := &Supervisor{
		ctx:      ctx,
		selfTx:   selfTx,
		unsyncRx: unsyncRx,
		syncRx:   syncRx,
		sched:    sched,
	}
	s.attach(ctx)
	unsyncRx.SetWaker(s.wake)
	syncRx.SetWaker(s.wake)
	return s
}

// attach 把上下文接到监督者上：唤醒回调与自身地址升级应答器
func (s *Supervisor) attach(ctx *Context) {
	ctx.SetWaker(s.wake)
	ctx.SetUpgrader(func() *SyncAddr {
		return newSyncAddr(s.syncRx.NewSender())
	})
}

// spawn 提交首次恢复
func (s *Supervisor) spawn() {
	s.state.Store(schedRunning)
	if err := s.sched.Do(s.resume); err != nil {
		s.state.Store(schedIdle)
		glog.Error("spawn supervisor", zap.Error(err))
	}
}

// wake 唤醒监督者：没有恢复在执行时调度一次新的恢复
// 唤醒来自邮箱入队、上下文定时器到期或异步任务完成，可能发生在任意线程。
func (s *Supervisor) wake() {
	if s.stopped.Load() {
		return
	}
	s.pending.Store(true)
	if s.state.CompareAndSwap(schedIdle, schedRunning) {
		if err := s.sched.Do(s.resume); err != nil {
			s.state.Store(schedIdle)
		}
	}
}

// resume 一次被调度的恢复，在 arbiter 线程上执行
// 挂起让出前重查 pending，挂起决策与新唤醒的竞态不会丢失唤醒。
func (s *Supervisor) resume() {
	for {
		s.pending.Store(false)
		if s.step() {
			s.complete()
			return
		}
		s.state.Store(schedIdle)
		if !s.pending.Load() || !s.state.CompareAndSwap(schedIdle, schedRunning) {
			return
		}
	}
}

// connected 两条邮箱中任意一条还有存活的发送句柄
func (s *Supervisor) connected() bool {
	return s.unsyncRx.Connected() || s.syncRx.Connected()
}

// step 完整执行一轮调度算法
// 返回 true 表示监督永久结束，false 表示应挂起等待唤醒。
func (s *Supervisor) step() bool {
outer:
	for {
		// 全部地址已被丢弃，通知上下文优雅停止
		if !s.connected() {
			s.ctx.Stop()
		}

		// 推进上下文一步
		poll := s.ctx.Advance()
		if poll.Terminated {
			if !s.connected() {
				return true
			}
			s.restart()
			continue outer
		}
		if poll.Waiting {
			// actor 在等待内部事件，本轮不触碰邮箱
			return false
		}

		notReady := true

		// 优先排空同线程邮箱
		for {
			msg, ok := s.unsyncRx.TryPop()
			if !ok {
				break
			}
			notReady = false
			switch m := msg.(type) {
			case *upgradeRequest:
				m.reply.Done(newSyncAddr(s.syncRx.NewSender()))
			case Envelope:
				if err := s.ctx.Deliver(m); err != nil {
					glog.Error("deliver unsync message", zap.Error(err))
				}
			default:
				glog.Errorf("unexpected protocol message %T", msg)
			}
			if !s.ctx.Alive() {
				continue outer
			}
			if s.ctx.Waiting() {
				return false
			}
		}

		// 再排空跨线程邮箱
		for {
			if !s.ctx.Alive() {
				continue outer
			}
			if s.ctx.Waiting() {
				return false
			}

			msg, ok := s.syncRx.TryPop()
			if !ok {
				break
			}
			notReady = false
			env, ok := msg.(Envelope)
			if !ok {
				glog.Errorf("unexpected sync message %T", msg)
				continue
			}
			if err := s.ctx.Deliver(env); err != nil {
				glog.Error("deliver sync message", zap.Error(err))
			}
		}

		// 本轮没有任何进展，挂起
		if notReady {
			return false
		}
	}
}

// restart 重建执行上下文
// 邮箱不动——重启前入队、尚未投递的消息在重启完成后照常投递；
// 只有上下文与其本地瞬态被丢弃，actor 自有状态原样迁入新上下文。
func (s *Supervisor) restart() {
	old := s.ctx
	ctx := NewContext()
	s.ctx = ctx

	ctx.Bind(old.TakeActor())
	s.attach(ctx)
	ctx.NotifyRestarting()

	s.selfTx.Close()
	s.selfTx = ctx.SelfSender()

	glog.Debug("supervisor restarted actor", zap.Bool("failed", old.Failed()))
}

// complete 监督永久结束：关闭两条邮箱的消费端，所有地址的连接探测转为 false
// 这是正常关停，不是错误。
func (s *Supervisor) complete() {
	s.stopped.Store(true)
	s.unsyncRx.Close()
	s.syncRx.Close()
	s.selfTx.Close()
	glog.Debugf("supervisor completed")
}
