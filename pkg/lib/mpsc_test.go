package lib

import (
	"sync"
	"testing"
)

func TestMpscFIFO(t *testing.T) {
	q := NewMpsc[int]()
	if !q.Empty() {
		t.Fatal("new queue should be empty")
	}
	for i := 0; i < 100; i++ {
		q.Push(i)
	}
	if q.Empty() {
		t.Fatal("queue should not be empty")
	}
	for i := 0; i < 100; i++ {
		v, ok := q.Pop()
		if !ok || v != i {
			t.Fatalf("pop = (%d, %v), want (%d, true)", v, ok, i)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("queue should be empty")
	}
}

func TestMpscConcurrentPush(t *testing.T) {
	q := NewMpsc[int]()
	const producers = 8
	const perProducer = 10000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(base + i)
			}
		}(p * perProducer)
	}
	wg.Wait()

	seen := make(map[int]bool, producers*perProducer)
	for {
		v, ok := q.Pop()
		if !ok {
			break
		}
		if seen[v] {
			t.Fatalf("value %d popped twice", v)
		}
		seen[v] = true
	}
	if len(seen) != producers*perProducer {
		t.Fatalf("popped %d values, want %d", len(seen), producers*perProducer)
	}
}
