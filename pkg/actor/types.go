package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/lwmacct/251217-go-pkg-receive/pkg/message"
	"github.com/lwmacct/251217-go-pkg-receive/pkg/receive"
)

var (
	// ErrNotFound 目标 Actor 不存在
	ErrNotFound = errors.New("actor not found")
	// ErrNotRunning Actor 系统已关闭
	ErrNotRunning = errors.New("actor system is not running")
	// ErrNoSender 当前消息没有发送者，无法回复
	ErrNoSender = errors.New("current message has no sender")
)

// PID (Process ID) Actor 进程标识符
// 类似 Erlang 的 PID，是 Actor 的唯一寻址方式
type PID struct {
	// ID Actor 唯一标识
	ID string

	system *System
	cell   *actorCell
}

// String 返回 PID 的字符串表示
func (p *PID) String() string {
	if p == nil {
		return "<nil>"
	}
	return p.ID
}

// Tell 发送异步消息（fire-and-forget），投递失败的消息进入死信
func (p *PID) Tell(values ...any) {
	if p.system != nil {
		_ = p.system.Send(p, values...)
	}
}

// Request 发送同步请求并等待响应
func (p *PID) Request(timeout time.Duration, values ...any) (message.Tuple, error) {
	if p.system == nil {
		return nil, ErrNotRunning
	}
	return p.system.Request(p, timeout, values...)
}

// Actor 阻塞式 Actor
//
// Act 在 Actor 自己的 goroutine 上运行，通过 self.Receive 系列方法
// 按需选择性地接收消息；Act 返回即以 normal 原因退出。
// 处理函数内部允许再次调用 Receive（可嵌套策略）。
type Actor interface {
	Act(self *Context)
}

// ActorFunc 函数式 Actor
type ActorFunc func(self *Context)

// Act 实现 Actor 接口
func (f ActorFunc) Act(self *Context) {
	f(self)
}

// EventActor 事件驱动 Actor
//
// Init 返回初始行为，此后由运行时逐条把消息交给当前行为，
// 行为通过 self.Become / self.Unbecome 切换；行为栈为空时 Actor 以 normal 原因退出。
// 处理函数不得调用 Receive（顺序策略）。
type EventActor interface {
	Init(self *Context) *receive.Behavior
}

// EventFunc 函数式事件驱动 Actor
type EventFunc func(self *Context) *receive.Behavior

// Init 实现 EventActor 接口
func (f EventFunc) Init(self *Context) *receive.Behavior {
	return f(self)
}

// Props Actor 属性配置
type Props struct {
	// Name Actor 名称，为空时自动生成
	Name string
	// MailboxSize 邮箱容量，<= 0 使用系统默认值
	MailboxSize int
	// SupervisorStrategy 监督策略，nil 使用默认策略
	SupervisorStrategy SupervisorStrategy
	// TrapExit 是否把 EXIT 信号当作普通消息接收
	TrapExit bool
}

// DefaultProps 默认属性
func DefaultProps(name string) *Props {
	return &Props{
		Name: name,
	}
}

// WithMailboxSize 设置邮箱容量
func (p *Props) WithMailboxSize(size int) *Props {
	p.MailboxSize = size
	return p
}

// WithSupervisor 设置监督策略
func (p *Props) WithSupervisor(strategy SupervisorStrategy) *Props {
	p.SupervisorStrategy = strategy
	return p
}

// WithTrapExit 设置是否捕获 EXIT 信号
func (p *Props) WithTrapExit(trap bool) *Props {
	p.TrapExit = trap
	return p
}

// ============== 错误类型 ==============

// ExitError Actor 正在退出，Receive 系列方法不再投递消息
type ExitError struct {
	Reason message.ExitReason
}

// Error 实现 error 接口
func (e *ExitError) Error() string {
	return fmt.Sprintf("actor exited: %s", e.Reason)
}

// ResponseTimeout 响应超时错误
type ResponseTimeout struct {
	Target  *PID
	Timeout time.Duration
}

// Error 实现 error 接口
func (r *ResponseTimeout) Error() string {
	return fmt.Sprintf("request to %s timed out after %v", r.Target, r.Timeout)
}
