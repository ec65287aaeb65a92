package actor

import (
	"sas/pkg/lib"
)

// Envelope 类型擦除的一次性工作单元，知道如何把自己应用到 actor 与其上下文
// 每个 Envelope 至多被应用一次，应用后即被丢弃。
type Envelope interface {
	Handle(act IActor, ctx *Context) error
}

// upgradeRequest 同线程邮箱上的升级请求：
// 应答槽由监督者用共享当前 sync 通道的跨线程地址填充。
type upgradeRequest struct {
	reply *lib.Waiter[*SyncAddr]
}

// Response Call 的应答
type Response struct {
	Data interface{}
	Err  error
}

// NewMessageEnvelope 包装一条单向消息
func NewMessageEnvelope(msg interface{}) Envelope {
	return &messageEnvelope{msg: msg}
}

type messageEnvelope struct {
	msg interface{}
}

func (e *messageEnvelope) Handle(act IActor, ctx *Context) error {
	return act.OnMessage(ctx, e.msg)
}

// NewTaskEnvelope 包装一个闭包任务
func NewTaskEnvelope(task Task) Envelope {
	return &taskEnvelope{task: task}
}

type taskEnvelope struct {
	task Task
}

func (e *taskEnvelope) Handle(_ IActor, ctx *Context) error {
	return e.task(ctx)
}

// requestEnvelope 请求应答消息
// actor 实现 IHandler 时走 OnRequest，否则退化为 OnMessage。
// 若 actor 在应用前终止，应答槽永远不会被填充，调用方以超时观察到投递失败。
type requestEnvelope struct {
	msg   interface{}
	reply *lib.Waiter[Response]
}

func (e *requestEnvelope) Handle(act IActor, ctx *Context) error {
	if h, ok := act.(IHandler); ok {
		data, err := h.OnRequest(ctx, e.msg)
		e.reply.Done(Response{Data: data, Err: err})
		return err
	}
	err := act.OnMessage(ctx, e.msg)
	e.reply.Done(Response{Err: err})
	return err
}
