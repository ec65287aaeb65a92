package main

import (
	"fmt"
	"time"

	"sas"
)

// Ping 请求
type Ping struct {
	Seq int
}

// Crash 让 actor panic，验证监督重启
type Crash struct{}

// pongActor 记录收到的请求数；panic 重启后计数保留
type pongActor struct {
	sas.Actor
	served   int
	restarts int
}

func (p *pongActor) OnRequest(_ *sas.Context, msg interface{}) (interface{}, error) {
	switch m := msg.(type) {
	case *Ping:
		p.served++
		return fmt.Sprintf("pong %d (served=%d restarts=%d)", m.Seq, p.served, p.restarts), nil
	case *Crash:
		panic("pong actor crashed")
	}
	return nil, nil
}

func (p *pongActor) OnRestarting(_ *sas.Context) {
	p.restarts++
}

// counterActor 单向消息计数，Call("total") 读取
type counterActor struct {
	sas.Actor
	total int
}

func (c *counterActor) OnMessage(_ *sas.Context, msg interface{}) error {
	if n, ok := msg.(int); ok {
		c.total += n
	}
	return nil
}

func (c *counterActor) OnRequest(_ *sas.Context, msg interface{}) (interface{}, error) {
	if msg == "total" {
		return c.total, nil
	}
	return nil, nil
}

func main() {
	cfg := sas.DefaultConfig()
	cfg.Glog.Level = "debug"
	sas.InitWithConfig(cfg)

	// 跨线程启动：StartIn 把构造调度到目标 arbiter
	worker := sas.NewArbiter("worker")
	handle := worker.Handle()

	addr, err := sas.StartIn(handle, func(_ *sas.Context) sas.IActor {
		return &pongActor{}
	})
	if err != nil {
		panic(err)
	}

	for seq := 1; seq <= 3; seq++ {
		reply, err := addr.Call(&Ping{Seq: seq}, time.Second)
		fmt.Println(reply, err)
	}

	// 触发崩溃：本次请求被放弃（超时），actor 被透明重启且计数保留
	_, err = addr.Call(&Crash{}, 300*time.Millisecond)
	fmt.Println("crash call:", err)

	reply, err := addr.Call(&Ping{Seq: 4}, time.Second)
	fmt.Println(reply, err)
	addr.Close()

	// 同线程启动：Start 必须在 arbiter 线程上调用，
	// 同线程地址通过 Upgrade 换取可以带出线程的跨线程地址
	counter := sas.NewArbiter("counter")
	ch := counter.Handle()

	upCh := make(chan *sas.SyncAddr, 1)
	err = ch.Execute(func(arb *sas.Arbiter) {
		local, remote := sas.Start(arb, func(_ *sas.Context) sas.IActor {
			return &counterActor{}
		})
		remote.Close()

		w, err := local.Upgrade(time.Second)
		if err != nil {
			panic(err)
		}
		// 升级应答在监督者下一次恢复时填充，恢复已排在本闭包之后
		_ = arb.Do(func() {
			up, _ := w.TryWait()
			upCh <- up
			local.Close()
		})
	})
	if err != nil {
		panic(err)
	}

	up := <-upCh
	for i := 1; i <= 5; i++ {
		_ = up.Send(i)
	}
	total, err := up.Call("total", time.Second)
	fmt.Println("counter total:", total, err)
	up.Close()

	handle.Close()
	ch.Close()
	_ = sas.Shutdown(3 * time.Second)
}
