// Package queue 无界多生产者单消费者邮箱通道
// 分为同线程（unsync）与跨线程（sync）两种实现，消费端统一由监督者持有。
package queue

import (
	"sas/internal/errs"
)

// unsyncState 同线程通道的共享状态
// 生产与消费必须位于同一 arbiter 线程；waker 本身是线程安全的调度入口，
// 但这里只会在本线程的 Send 中触发。
type unsyncState struct {
	items   []interface{}
	head    int
	senders int
	rxGone  bool
	waker   func()
}

// NewUnsync 创建同线程邮箱，返回发送端与消费端
func NewUnsync() (*UnsyncSender, *UnsyncReceiver) {
	st := &unsyncState{}
	st.senders = 1
	return &UnsyncSender{st: st}, &UnsyncReceiver{st: st}
}

// UnsyncSender 同线程发送句柄
type UnsyncSender struct {
	st     *unsyncState
	closed bool
}

func (s *UnsyncSender) Send(msg interface{}) error {
	if s.closed {
		return errs.ErrSenderClosed
	}
	if s.st.rxGone {
		return errs.ErrMailboxClosed
	}
	s.st.items = append(s.st.items, msg)
	if s.st.waker != nil {
		s.st.waker()
	}
	return nil
}

// Clone 派生新的发送句柄，已关闭的句柄不可再派生
func (s *UnsyncSender) Clone() *UnsyncSender {
	if s.closed {
		return nil
	}
	s.st.senders++
	return &UnsyncSender{st: s.st}
}

// Close 关闭句柄，重复关闭无效果
// 最后一个句柄关闭时唤醒消费端，让它观察到断连。
func (s *UnsyncSender) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.st.senders--
	if s.st.senders == 0 && s.st.waker != nil {
		s.st.waker()
	}
}

// Connected 消费端是否仍然存活
func (s *UnsyncSender) Connected() bool {
	return !s.st.rxGone
}

// UnsyncReceiver 同线程消费端
type UnsyncReceiver struct {
	st *unsyncState
}

// TryPop 非阻塞取出队首消息
func (r *UnsyncReceiver) TryPop() (interface{}, bool) {
	st := r.st
	if st.head >= len(st.items) {
		return nil, false
	}
	msg := st.items[st.head]
	st.items[st.head] = nil
	st.head++
	if st.head == len(st.items) {
		st.items = st.items[:0]
		st.head = 0
	}
	return msg, true
}

// Connected 是否还有存活的发送句柄
func (r *UnsyncReceiver) Connected() bool {
	return r.st.senders > 0
}

// SetWaker 注册唤醒回调，每次成功入队后触发
func (r *UnsyncReceiver) SetWaker(w func()) {
	r.st.waker = w
}

// Close 消费端退出，丢弃剩余消息，之后所有 Send 返回错误
func (r *UnsyncReceiver) Close() {
	r.st.rxGone = true
	r.st.items = nil
	r.st.head = 0
}
