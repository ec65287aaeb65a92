// Package lib 基础工具库
package lib

import (
	"sync/atomic"
)

type node[T any] struct {
	next atomic.Pointer[node[T]]
	val  T
}

// Mpsc 无锁多生产者单消费者队列
// Push 可以被任意线程并发调用，Pop/Empty 只允许唯一的消费者调用
type Mpsc[T any] struct {
	head atomic.Pointer[node[T]]
	tail *node[T]
}

func NewMpsc[T any]() *Mpsc[T] {
	q := &Mpsc[T]{}
	stub := &node[T]{}
	q.head.Store(stub)
	q.tail = stub
	return q
}

func (q *Mpsc[T]) Push(x T) {
	n := &node[T]{val: x}
	prev := q.head.Swap(n)
	prev.next.Store(n)
}

func (q *Mpsc[T]) Pop() (T, bool) {
	var zero T
	next := q.tail.next.Load()
	if next == nil {
		return zero, false
	}
	q.tail = next
	v := next.val
	next.val = zero
	return v, true
}

// Empty 检查队列是否为空
func (q *Mpsc[T]) Empty() bool {
	return q.tail.next.Load() == nil
}
