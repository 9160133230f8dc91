package receive

import (
	"time"

	"github.com/lwmacct/251217-go-pkg-receive/pkg/message"
)

// Handler 处理函数：对消息负载做模式匹配
// 匹配成功返回 true（消息被消费），否则返回 false（消息进入跳过缓存）
type Handler interface {
	Match(msg message.Tuple) bool
}

// MatchFunc 函数式处理函数
type MatchFunc func(msg message.Tuple) bool

// Match 实现 Handler 接口
func (f MatchFunc) Match(msg message.Tuple) bool {
	return f(msg)
}

// Behavior 带可选超时的处理函数
//
// 超时有三种状态：
//   - 未设置：永久阻塞等待匹配
//   - 0：轮询，从不阻塞
//   - 正值：有界等待，超时后调用 onTimeout
type Behavior struct {
	handler    Handler
	timeout    time.Duration
	hasTimeout bool
	onTimeout  func()
}

// NewBehavior 创建不带超时的 Behavior
func NewBehavior(h Handler) *Behavior {
	return &Behavior{handler: h}
}

// After 设置超时及超时回调，负值按 0 处理
func (b *Behavior) After(d time.Duration, onTimeout func()) *Behavior {
	if d < 0 {
		d = 0
	}
	b.timeout = d
	b.hasTimeout = true
	b.onTimeout = onTimeout
	return b
}

// Match 实现 Handler 接口
func (b *Behavior) Match(msg message.Tuple) bool {
	return b.handler.Match(msg)
}

// HasTimeout 是否设置了超时
func (b *Behavior) HasTimeout() bool {
	return b.hasTimeout
}

// Timeout 返回超时时长
func (b *Behavior) Timeout() time.Duration {
	return b.timeout
}

// handleTimeout 调用超时回调
// 超时通知送达不带超时回调的处理函数属于契约违规
func handleTimeout(h Handler) {
	b, ok := h.(*Behavior)
	if !ok || !b.hasTimeout {
		panic(newFault("handle timeout", "timeout notice reached a handler without timeout"))
	}
	if b.onTimeout != nil {
		b.onTimeout()
	}
}
