package actor

import (
	"time"

	"sas/internal/errs"
	"sas/internal/queue"
	"sas/pkg/lib"
)

// Addr 同线程地址，只允许在其所属 arbiter 线程上使用
type Addr struct {
	tx *queue.UnsyncSender
}

func newAddr(tx *queue.UnsyncSender) *Addr {
	return &Addr{tx: tx}
}

// Send 投递一条单向消息，无投递确认
func (a *Addr) Send(msg interface{}) error {
	if msg == nil {
		return errs.ErrMessageIsNil
	}
	return a.tx.Send(NewMessageEnvelope(msg))
}

// SendTask 投递一个闭包任务
func (a *Addr) SendTask(task Task) error {
	if task == nil {
		return errs.ErrTaskIsNil
	}
	return a.tx.Send(NewTaskEnvelope(task))
}

// Upgrade 请求一个跨线程地址，由监督者用共享的 sync 通道应答
// 返回的 waiter 不能在本 arbiter 线程上阻塞等待，否则监督者无法被调度。
func (a *Addr) Upgrade(timeout time.Duration) (*lib.Waiter[*SyncAddr], error) {
	w := lib.NewWaiter[*SyncAddr](timeout)
	if err := a.tx.Send(&upgradeRequest{reply: w}); err != nil {
		return nil, err
	}
	return w, nil
}

// Connected 监督者是否仍然存活
func (a *Addr) Connected() bool {
	return a.tx.Connected()
}

// Clone 派生新的同线程地址
func (a *Addr) Clone() *Addr {
	tx := a.tx.Clone()
	if tx == nil {
		return nil
	}
	return newAddr(tx)
}

// Close 丢弃地址，所有地址关闭后监督者视为断连
func (a *Addr) Close() {
	a.tx.Close()
}

// SyncAddr 跨线程地址，可被任意线程使用
type SyncAddr struct {
	tx *queue.SyncSender
}

func newSyncAddr(tx *queue.SyncSender) *SyncAddr {
	return &SyncAddr{tx: tx}
}

// Send 投递一条单向消息，无投递确认
func (a *SyncAddr) Send(msg interface{}) error {
	if msg == nil {
		return errs.ErrMessageIsNil
	}
	return a.tx.Send(NewMessageEnvelope(msg))
}

// SendTask 投递一个闭包任务
func (a *SyncAddr) SendTask(task Task) error {
	if task == nil {
		return errs.ErrTaskIsNil
	}
	return a.tx.Send(NewTaskEnvelope(task))
}

// Call 同步请求并等待应答
// 只允许在非 arbiter 线程调用，在 arbiter 线程阻塞会饿死调度
// actor 终止导致请求被放弃时，以 lib.ErrWaiterTimeout 观察到失败。
func (a *SyncAddr) Call(msg interface{}, timeout time.Duration) (interface{}, error) {
	if msg == nil {
		return nil, errs.ErrMessageIsNil
	}
	w := lib.NewWaiter[Response](timeout)
	if err := a.tx.Send(&requestEnvelope{msg: msg, reply: w}); err != nil {
		return nil, err
	}
	resp, err := w.Wait()
	if err != nil {
		return nil, err
	}
	return resp.Data, resp.Err
}

// Connected 监督者是否仍然存活
func (a *SyncAddr) Connected() bool {
	return a.tx.Connected()
}

// Clone 派生新的跨线程地址
func (a *SyncAddr) Clone() *SyncAddr {
	tx := a.tx.Clone()
	if tx == nil {
		return nil
	}
	return newSyncAddr(tx)
}

// Close 丢弃地址
func (a *SyncAddr) Close() {
	a.tx.Close()
}
