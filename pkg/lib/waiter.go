package lib

import (
	"errors"
	"time"
)

var ErrWaiterTimeout = errors.New("waiter timeout")

// NewWaiter 创建一次性应答等待器
func NewWaiter[T any](timeout time.Duration) *Waiter[T] {
	w := new(Waiter[T])
	w.ch = make(chan T, 1)
	w.after = time.After(timeout)
	return w
}

// Waiter 一次性应答等待器，Done 与 Wait 可以位于不同线程
type Waiter[T any] struct {
	ch    chan T
	after <-chan time.Time
}

func (w *Waiter[T]) Wait() (T, error) {
	var t T
	select {
	case v := <-w.ch:
		return v, nil
	case <-w.after:
		return t, ErrWaiterTimeout
	}
}

// TryWait 非阻塞获取应答
func (w *Waiter[T]) TryWait() (T, bool) {
	var t T
	select {
	case v := <-w.ch:
		return v, true
	default:
		return t, false
	}
}

func (w *Waiter[T]) Done(reply T) {
	// 使用 select 实现非阻塞发送，避免多次调用 Done 时阻塞
	select {
	case w.ch <- reply:
	default:
	}
}
