package queue

import (
	"sync/atomic"

	"sas/internal/errs"
	"sas/pkg/lib"
)

// syncState 跨线程通道的共享状态
type syncState struct {
	queue   *lib.Mpsc[interface{}]
	senders atomic.Int64
	rxGone  atomic.Bool
	waker   atomic.Value // func()
}

func (st *syncState) wake() {
	if w := st.waker.Load(); w != nil {
		w.(func())()
	}
}

// NewSync 创建跨线程邮箱，发送端可被任意线程使用
func NewSync() (*SyncSender, *SyncReceiver) {
	st := &syncState{queue: lib.NewMpsc[interface{}]()}
	st.senders.Store(1)
	return &SyncSender{st: st}, &SyncReceiver{st: st}
}

// SyncSender 跨线程发送句柄，单个句柄可被并发使用
type SyncSender struct {
	st     *syncState
	closed atomic.Bool
}

func (s *SyncSender) Send(msg interface{}) error {
	if s.closed.Load() {
		return errs.ErrSenderClosed
	}
	if s.st.rxGone.Load() {
		return errs.ErrMailboxClosed
	}
	s.st.queue.Push(msg)
	s.st.wake()
	return nil
}

// Clone 派生新的发送句柄，已关闭的句柄不可再派生
func (s *SyncSender) Clone() *SyncSender {
	if s.closed.Load() {
		return nil
	}
	s.st.senders.Add(1)
	return &SyncSender{st: s.st}
}

// Close 关闭句柄，重复关闭无效果
// 最后一个句柄关闭时唤醒消费端，让它观察到断连。
func (s *SyncSender) Close() {
	if s.closed.CompareAndSwap(false, true) {
		if s.st.senders.Add(-1) == 0 {
			s.st.wake()
		}
	}
}

// Connected 消费端是否仍然存活
func (s *SyncSender) Connected() bool {
	return !s.st.rxGone.Load()
}

// SyncReceiver 跨线程消费端，只允许唯一线程使用
type SyncReceiver struct {
	st *syncState
}

// TryPop 非阻塞取出队首消息
func (r *SyncReceiver) TryPop() (interface{}, bool) {
	return r.st.queue.Pop()
}

// Connected 是否还有存活的发送句柄
func (r *SyncReceiver) Connected() bool {
	return r.st.senders.Load() > 0
}

// NewSender 从消费端直接铸造新的发送句柄（用于升级请求）
func (r *SyncReceiver) NewSender() *SyncSender {
	r.st.senders.Add(1)
	return &SyncSender{st: r.st}
}

// SetWaker 注册唤醒回调，每次成功入队后触发
func (r *SyncReceiver) SetWaker(w func()) {
	r.st.waker.Store(w)
}

// Close 消费端退出，之后所有 Send 返回错误；队列中未消费的消息被放弃
func (r *SyncReceiver) Close() {
	r.st.rxGone.Store(true)
}
