package actor

import (
	"errors"
	"testing"
	"time"

	"sas/internal/errs"
)

func advanceUntil(t *testing.T, ctx *Context, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		ctx.Advance()
		select {
		case <-deadline:
			t.Fatal("condition not reached")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestContextLifecycle(t *testing.T) {
	act := &recActor{}
	ctx := NewContext()
	ctx.Bind(act)

	poll := ctx.Advance()
	if poll.Terminated || poll.Waiting {
		t.Fatalf("poll = %+v, want running", poll)
	}
	if act.starts != 1 {
		t.Fatalf("starts = %d, want 1", act.starts)
	}

	ctx.Stop()
	if ctx.Alive() {
		t.Fatal("Alive must turn false as soon as stop is requested")
	}
	poll = ctx.Advance()
	if !poll.Terminated {
		t.Fatal("context must terminate after stop")
	}
	if act.stops != 1 {
		t.Fatalf("stops = %d, want 1", act.stops)
	}

	// 终止是吸收态
	poll = ctx.Advance()
	if !poll.Terminated {
		t.Fatal("terminated context must stay terminated")
	}
	if act.stops != 1 {
		t.Fatalf("stops = %d, want 1 (OnStop runs once per context)", act.stops)
	}
}

func TestContextDeliverPanicFails(t *testing.T) {
	act := &recActor{}
	ctx := NewContext()
	ctx.Bind(act)
	ctx.Advance()

	err := ctx.Deliver(NewMessageEnvelope("boom"))
	if err == nil {
		t.Fatal("panic must surface as an error")
	}
	if ctx.Alive() {
		t.Fatal("panic must stop the context")
	}
	if !ctx.Failed() {
		t.Fatal("panic termination must be marked as failure")
	}
	if !ctx.Advance().Terminated {
		t.Fatal("failed context must terminate")
	}
}

func TestContextDeliverAfterTermination(t *testing.T) {
	act := &recActor{}
	ctx := NewContext()
	ctx.Bind(act)
	ctx.Stop()
	ctx.Advance()

	if err := ctx.Deliver(NewMessageEnvelope("late")); !errors.Is(err, errs.ErrContextTerminated) {
		t.Fatalf("err = %v, want ErrContextTerminated", err)
	}
	if len(act.log) != 0 {
		t.Fatalf("terminated context applied a message: %v", act.log)
	}
}

func TestContextSelfMailbox(t *testing.T) {
	act := &recActor{}
	ctx := NewContext()
	ctx.Bind(act)

	self := ctx.Address()
	if err := self.Send("hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	ctx.Advance()
	if len(act.log) != 1 || act.log[0] != "hello" {
		t.Fatalf("log = %v, want [hello]", act.log)
	}
	self.Close()
}

func TestContextRunLater(t *testing.T) {
	act := &recActor{}
	ctx := NewContext()
	ctx.Bind(act)
	ctx.Advance()

	fired := false
	id := ctx.RunLater(30*time.Millisecond, func(*Context) error {
		fired = true
		return nil
	})
	if id == 0 {
		t.Fatal("timer was not registered")
	}
	advanceUntil(t, ctx, func() bool { return fired })
}

func TestContextCancelTimer(t *testing.T) {
	act := &recActor{}
	ctx := NewContext()
	ctx.Bind(act)
	ctx.Advance()

	fired := false
	id := ctx.RunLater(30*time.Millisecond, func(*Context) error {
		fired = true
		return nil
	})
	if !ctx.CancelTimer(id) {
		t.Fatal("cancel failed")
	}
	time.Sleep(100 * time.Millisecond)
	ctx.Advance()
	if fired {
		t.Fatal("cancelled timer must not fire")
	}
}

func TestContextRunInterval(t *testing.T) {
	act := &recActor{}
	ctx := NewContext()
	ctx.Bind(act)
	ctx.Advance()

	ticks := 0
	id := ctx.RunInterval(20*time.Millisecond, func(*Context) error {
		ticks++
		return nil
	})
	advanceUntil(t, ctx, func() bool { return ticks >= 3 })
	if !ctx.CancelTimer(id) {
		t.Fatal("cancel failed")
	}
}

func TestContextWait(t *testing.T) {
	act := &recActor{}
	ctx := NewContext()
	ctx.Bind(act)
	ctx.Advance()

	var got interface{}
	ctx.Wait(func() (interface{}, error) {
		time.Sleep(20 * time.Millisecond)
		return 7, nil
	}, func(_ *Context, result interface{}, err error) {
		if err != nil {
			t.Errorf("wait job: %v", err)
		}
		got = result
	})

	if !ctx.Waiting() {
		t.Fatal("Waiting must be set while the job runs")
	}
	advanceUntil(t, ctx, func() bool { return got != nil })
	if got != 7 {
		t.Fatalf("result = %v, want 7", got)
	}
	if ctx.Waiting() {
		t.Fatal("Waiting must clear after the job completes")
	}
}

func TestContextTakeActor(t *testing.T) {
	act := &recActor{count: 42}
	ctx := NewContext()
	ctx.Bind(act)
	ctx.Advance()

	self := ctx.SelfSender()
	taken := ctx.TakeActor()
	if taken != act {
		t.Fatal("TakeActor must return the bound instance")
	}
	if taken.(*recActor).count != 42 {
		t.Fatal("actor state must survive the teardown")
	}
	if err := self.Send(NewMessageEnvelope("late")); !errors.Is(err, errs.ErrMailboxClosed) {
		t.Fatalf("err = %v, want ErrMailboxClosed", err)
	}
	if !ctx.Advance().Terminated {
		t.Fatal("dismantled context must report terminated")
	}
}

func TestContextDoubleBindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("second Bind must panic")
		}
	}()
	ctx := NewContext()
	ctx.Bind(&recActor{})
	ctx.Bind(&recActor{})
}
