// Package actor 提供监督式 actor 运行时：
// 每个 actor 由一个 Supervisor 驱动，Supervisor 持有 actor 的执行上下文与
// 两条邮箱（同线程 / 跨线程），在 actor 终止后重建上下文并保留 actor 状态。
package actor

// Task 在 actor 上下文内执行的函数
type Task func(ctx *Context) error

// IActor actor 生命周期接口
type IActor interface {
	// OnStart 上下文首次推进时调用（重启后的新上下文会再次调用）
	OnStart(ctx *Context) error
	// OnMessage 处理一条投递到邮箱的消息
	OnMessage(ctx *Context, msg interface{}) error
	// OnStop 上下文终止时调用，每个上下文至多一次
	OnStop(ctx *Context) error
}

// ISupervised 可感知重启的 actor
// OnRestarting 在新上下文装配完成后、首次推进之前调用，
// 用于重置瞬态（上下文内的定时器、未完成任务等已被丢弃），持久状态原样保留。
type ISupervised interface {
	IActor
	OnRestarting(ctx *Context)
}

// IHandler 支持请求应答的 actor，配合 SyncAddr.Call 使用
type IHandler interface {
	OnRequest(ctx *Context, msg interface{}) (interface{}, error)
}

// Actor 基础实现，内嵌后只需覆盖关心的回调
type Actor struct{}

func (*Actor) OnStart(*Context) error                { return nil }
func (*Actor) OnMessage(*Context, interface{}) error { return nil }
func (*Actor) OnStop(*Context) error                 { return nil }
