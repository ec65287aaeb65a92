package errs

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ========== 邮箱相关错误 ==========

var (
	// ErrMailboxClosed 消费端已经退出，消息无法投递
	ErrMailboxClosed = errors.New("mailbox: receiver is gone")
	// ErrSenderClosed 发送句柄已经关闭
	ErrSenderClosed = errors.New("mailbox: sender handle is closed")
)

// ========== Actor / 监督相关错误 ==========

var (
	// ErrMessageIsNil 消息为空
	ErrMessageIsNil = errors.New("actor: message is nil")
	// ErrTaskIsNil 任务为空
	ErrTaskIsNil = errors.New("actor: task is nil")
	// ErrEnvelopeIsNil 工作单元为空
	ErrEnvelopeIsNil = errors.New("actor: envelope is nil")
	// ErrActorAlreadyBound 上下文已绑定 actor，不允许二次绑定
	ErrActorAlreadyBound = errors.New("actor: context already has an actor bound")
	// ErrContextTerminated 上下文已终止
	ErrContextTerminated = errors.New("actor: context is terminated")
)

// ========== Arbiter 相关错误 ==========

var (
	// ErrArbiterStopped arbiter 已停止，拒绝新任务
	ErrArbiterStopped = errors.New("arbiter: stopped")
	// ErrArbiterUnreachable 目标线程不可达
	ErrArbiterUnreachable = errors.New("arbiter: target thread is unreachable")
)

// ErrActorPanic 把 recover 到的 panic 转成带调用栈的 error
func ErrActorPanic(r interface{}) error {
	return pkgerrors.Errorf("actor: recovered panic: %v", r)
}

func ErrNameAlreadyRegistered(name string) error {
	return fmt.Errorf("arbiter: name '%s' is already registered", name)
}

func ErrNameCannotBeEmpty() error {
	return fmt.Errorf("arbiter: name cannot be empty")
}

// ========== Config 相关错误 ==========

func ErrReadConfigFileFailed(err error) error {
	return fmt.Errorf("read config file failed: %w", err)
}

func ErrUnmarshalConfigFailed(err error) error {
	return fmt.Errorf("unmarshal config failed: %w", err)
}
