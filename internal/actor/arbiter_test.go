package actor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"sas/internal/errs"
	"sas/pkg/lib"
)

func TestArbiterDo(t *testing.T) {
	a := NewArbiter("")
	defer func() {
		a.Stop()
		a.Join()
	}()

	w := lib.NewWaiter[int](time.Second)
	if err := a.Do(func() { w.Done(1) }); err != nil {
		t.Fatalf("do: %v", err)
	}
	if v, err := w.Wait(); err != nil || v != 1 {
		t.Fatalf("got (%v, %v), want (1, nil)", v, err)
	}
}

func TestArbiterExecute(t *testing.T) {
	a := NewArbiter("")
	h := a.Handle()
	defer func() {
		h.Close()
		a.Stop()
		a.Join()
	}()

	w := lib.NewWaiter[*Arbiter](time.Second)
	if err := h.Execute(func(arb *Arbiter) { w.Done(arb) }); err != nil {
		t.Fatalf("execute: %v", err)
	}
	arb, err := w.Wait()
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if arb != a {
		t.Fatal("closure must receive its host arbiter")
	}
}

func TestArbiterStopDrainsQueuedTasks(t *testing.T) {
	a := NewArbiter("")
	var mu sync.Mutex
	ran := 0
	for i := 0; i < 100; i++ {
		_ = a.Do(func() {
			mu.Lock()
			ran++
			mu.Unlock()
		})
	}
	a.Stop()
	a.Join()
	mu.Lock()
	defer mu.Unlock()
	if ran != 100 {
		t.Fatalf("ran = %d, want 100 (stop must drain remaining tasks)", ran)
	}
}

func TestArbiterStoppedRejectsTasks(t *testing.T) {
	a := NewArbiter("")
	h := a.Handle()
	a.Stop()
	a.Join()

	if err := a.Do(func() {}); !errors.Is(err, errs.ErrArbiterStopped) {
		t.Fatalf("err = %v, want ErrArbiterStopped", err)
	}
	if h.Connected() {
		t.Fatal("handle must observe the stopped arbiter")
	}
	if err := h.Execute(func(*Arbiter) {}); err == nil {
		t.Fatal("execute on a stopped arbiter must fail")
	}
	h.Close()
}

func TestArbiterRegistry(t *testing.T) {
	a := NewArbiter("registry-alpha")
	b := NewArbiter("registry-beta")

	if GetArbiter("registry-alpha") != a {
		t.Fatal("lookup by name failed")
	}
	names := ArbiterNames()
	var found int
	for _, n := range names {
		if n == "registry-alpha" || n == "registry-beta" {
			found++
		}
	}
	if found != 2 {
		t.Fatalf("names = %v, want both registered arbiters", names)
	}

	a.Stop()
	b.Stop()
	a.Join()
	b.Join()
	if GetArbiter("registry-alpha") != nil {
		t.Fatal("stopped arbiter must unregister itself")
	}
}

// echoHandler 请求应答 actor，崩溃后由监督者重启且计数保留
type echoHandler struct {
	Actor
	served   int
	restarts int
}

func (h *echoHandler) OnRequest(_ *Context, msg interface{}) (interface{}, error) {
	if msg == "crash" {
		panic("echo handler crashed")
	}
	h.served++
	return h.served, nil
}

func (h *echoHandler) OnRestarting(*Context) {
	h.restarts++
}

func TestStartInRoundTrip(t *testing.T) {
	a := NewArbiter("")
	h := a.Handle()
	defer func() {
		h.Close()
		a.Stop()
		a.Join()
	}()

	addr, err := StartIn(h, func(*Context) IActor { return &echoHandler{} })
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer addr.Close()

	for i := 1; i <= 3; i++ {
		got, err := addr.Call(i, time.Second)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got != i {
			t.Fatalf("served = %v, want %d", got, i)
		}
	}

	// 崩溃的请求被放弃，调用方以超时观察到失败
	if _, err := addr.Call("crash", 200*time.Millisecond); !errors.Is(err, lib.ErrWaiterTimeout) {
		t.Fatalf("err = %v, want ErrWaiterTimeout", err)
	}

	// 重启对调用方透明，actor 状态保留
	got, err := addr.Call(4, time.Second)
	if err != nil {
		t.Fatalf("call after restart: %v", err)
	}
	if got != 4 {
		t.Fatalf("served = %v, want 4 (state must survive restart)", got)
	}
}

func TestStartInClosedHandle(t *testing.T) {
	a := NewArbiter("")
	h := a.Handle()
	h.Close()
	defer func() {
		a.Stop()
		a.Join()
	}()

	// 句柄自身已关闭时投递失败，连通性探测仍为 true
	if _, err := StartIn(h, func(*Context) IActor { return &echoHandler{} }); !errors.Is(err, errs.ErrArbiterUnreachable) {
		t.Fatalf("err = %v, want ErrArbiterUnreachable", err)
	}
}

func TestStartInUnreachableArbiter(t *testing.T) {
	a := NewArbiter("")
	h := a.Handle()
	a.Stop()
	a.Join()
	defer h.Close()

	_, err := StartIn(h, func(*Context) IActor { return &echoHandler{} })
	if !errors.Is(err, errs.ErrArbiterUnreachable) {
		t.Fatalf("err = %v, want ErrArbiterUnreachable", err)
	}
}

func TestStartOnArbiterThread(t *testing.T) {
	a := NewArbiter("")
	h := a.Handle()
	defer func() {
		h.Close()
		a.Stop()
		a.Join()
	}()

	w := lib.NewWaiter[*SyncAddr](time.Second)
	err := h.Execute(func(arb *Arbiter) {
		addr, saddr := Start(arb, func(*Context) IActor { return &echoHandler{} })
		addr.Close()
		w.Done(saddr)
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	saddr, err := w.Wait()
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	defer saddr.Close()

	got, err := saddr.Call(1, time.Second)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != 1 {
		t.Fatalf("served = %v, want 1", got)
	}
}
