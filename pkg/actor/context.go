package actor

import (
	"log/slog"
	"time"

	"go.uber.org/atomic"

	"github.com/lwmacct/251217-go-pkg-receive/pkg/mailbox"
	"github.com/lwmacct/251217-go-pkg-receive/pkg/message"
	"github.com/lwmacct/251217-go-pkg-receive/pkg/receive"
)

type timeoutFrame struct {
	id      uint32
	pending bool
}

// Context Actor 执行上下文
//
// 除 Terminate、Exiting、ExitReason 外，所有方法只能在 Actor 自己的
// 执行上下文（goroutine）中调用。Context 实现了 receive.Client。
type Context struct {
	// Self 当前 Actor 的 PID
	Self *PID

	system   *System
	mb       *mailbox.Mailbox
	engine   *receive.Engine
	logger   *slog.Logger
	trapExit bool

	exitReason *atomic.Uint32

	// 当前节点与显式节点栈
	dummy   *mailbox.Node
	current *mailbox.Node
	saved   []*mailbox.Node

	// 超时上下文
	timeoutSeq     uint32
	activeTimeout  uint32
	pendingTimeout bool
	timeouts       []timeoutFrame
	timer          *time.Timer

	// 同步请求
	requestSeq message.RequestID
	awaiting   message.RequestID // 0 表示没有等待中的请求

	// 事件驱动 Actor 的行为栈
	behaviors   []*receive.Behavior
	initialized bool
	rescan      bool
}

func newContext(s *System, pid *PID, mb *mailbox.Mailbox, trapExit bool) *Context {
	dummy := mailbox.NewSentinel()
	return &Context{
		Self:       pid,
		system:     s,
		mb:         mb,
		logger:     s.logger.With("actor", pid.ID),
		trapExit:   trapExit,
		exitReason: atomic.NewUint32(uint32(message.NotExited)),
		dummy:      dummy,
		current:    dummy,
	}
}

// System 获取 Actor 系统引用
func (c *Context) System() *System {
	return c.system
}

// Logger 返回带 actor 字段的日志器
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// CacheLen 返回跳过缓存大小
func (c *Context) CacheLen() int {
	return c.engine.CacheLen()
}

// ════════════════════════════════════════════════════════════════════════════
// 接收
// ════════════════════════════════════════════════════════════════════════════

// Receive 阻塞直到 h 接受一条消息
// Actor 正在退出时返回 *ExitError；事件驱动 Actor 中调用会以 unallowed_function_call 终止
func (c *Context) Receive(h receive.Handler) error {
	if err := c.checkReceive(); err != nil {
		return err
	}
	c.engine.Receive(h)
	return c.exitErr()
}

// ReceiveWithTimeout 按 b 的超时设置接收
// Actor 正在退出时返回 *ExitError，超时回调不会被调用
func (c *Context) ReceiveWithTimeout(b *receive.Behavior) error {
	if err := c.checkReceive(); err != nil {
		return err
	}
	c.engine.ReceiveWithTimeout(b)
	return c.exitErr()
}

// Sender 返回当前消息的发送者，只在处理函数内有意义
func (c *Context) Sender() *PID {
	if id := c.current.Sender; id != "" {
		return &PID{ID: id, system: c.system}
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
// 发送
// ════════════════════════════════════════════════════════════════════════════

// Send 向 target 发送异步消息
func (c *Context) Send(target *PID, values ...any) error {
	return c.system.send(target, message.Of(values...), 0, c.Self.ID)
}

// SyncSend 向 target 发送同步请求，返回用于等待响应的请求 ID
// 同一时刻只等待一个请求：新请求使之前请求的响应过期
func (c *Context) SyncSend(target *PID, values ...any) (message.RequestID, error) {
	c.requestSeq++
	id := c.requestSeq
	if err := c.system.send(target, message.Of(values...), message.Request(id), c.Self.ID); err != nil {
		return 0, err
	}
	c.awaiting = id
	return id, nil
}

// ReceiveResponse 等待 id 对应的响应
// 超时后该请求被放弃，之后到达的响应会被静默丢弃
func (c *Context) ReceiveResponse(target *PID, id message.RequestID, timeout time.Duration) (message.Tuple, error) {
	defer func() {
		if c.awaiting == id {
			c.awaiting = 0
		}
	}()

	var resp message.Tuple
	timedOut := false
	b := receive.NewBehavior(receive.MatchFunc(func(msg message.Tuple) bool {
		if !c.current.SeqID.IsResponseTo(id) {
			return false
		}
		resp = msg
		return true
	})).After(timeout, func() { timedOut = true })

	if err := c.ReceiveWithTimeout(b); err != nil {
		return nil, err
	}
	if timedOut {
		return nil, &ResponseTimeout{Target: target, Timeout: timeout}
	}
	return resp, nil
}

// Ask 发送同步请求并等待响应
// 等待期间到达的其他消息留在跳过缓存中
func (c *Context) Ask(target *PID, timeout time.Duration, values ...any) (message.Tuple, error) {
	id, err := c.SyncSend(target, values...)
	if err != nil {
		return nil, err
	}
	return c.ReceiveResponse(target, id, timeout)
}

// Reply 回复当前消息
// 只能在处理函数内、嵌套 Receive 之前调用；之后请使用 ReplyTo
func (c *Context) Reply(values ...any) error {
	return c.ReplyTo(c.current, values...)
}

// ReplyTo 回复指定节点的发送者
// 同步请求得到关联的响应，异步消息得到一条普通消息
func (c *Context) ReplyTo(n *mailbox.Node, values ...any) error {
	if n == nil || n.Sender == "" {
		return ErrNoSender
	}
	var seq message.SequenceID
	if n.SeqID.IsRequest() {
		seq = message.Response(n.SeqID.RequestID())
	}
	return c.system.send(&PID{ID: n.Sender, system: c.system}, message.Of(values...), seq, c.Self.ID)
}

// ════════════════════════════════════════════════════════════════════════════
// 链接与退出
// ════════════════════════════════════════════════════════════════════════════

// Link 与 target 建立双向链接，任一方退出时另一方收到 (EXIT, reason)
func (c *Context) Link(target *PID) error {
	return c.system.link(c.Self, target)
}

// Unlink 解除链接
func (c *Context) Unlink(target *PID) {
	c.system.unlink(c.Self, target)
}

// Spawn 创建 Actor
func (c *Context) Spawn(a Actor, name string) *PID {
	return c.system.Spawn(a, name)
}

// SpawnLink 创建 Actor 并在启动前与其链接
func (c *Context) SpawnLink(a Actor, props *Props) *PID {
	return c.system.spawn(props, blockingBody(a), receive.Nestable, c.Self)
}

// SetTrapExit 设置是否把 EXIT 信号当作普通消息接收
func (c *Context) SetTrapExit(trap bool) {
	c.trapExit = trap
}

// Quit 以指定原因退出
func (c *Context) Quit(reason message.ExitReason) {
	c.Terminate(reason)
}

// ExitReason 返回退出原因，未退出时为 NotExited
func (c *Context) ExitReason() message.ExitReason {
	return message.ExitReason(c.exitReason.Load())
}

// checkReceive 事件驱动 Actor 的行为不可重入，
// 在其中调用 Receive 系列方法会以 unallowed_function_call 终止 Actor
func (c *Context) checkReceive() error {
	if err := c.exitErr(); err != nil {
		return err
	}
	if c.engine.Policy() == receive.Sequential {
		c.logger.Error("receive called from an event-based actor")
		c.Terminate(message.UnallowedFunctionCall)
		return c.exitErr()
	}
	return nil
}

func (c *Context) exitErr() error {
	if reason := c.ExitReason(); reason != message.NotExited {
		return &ExitError{Reason: reason}
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
// receive.Client 实现
// ════════════════════════════════════════════════════════════════════════════

// Next 实现 receive.Client
func (c *Context) Next() *mailbox.Node { return c.mb.Next() }

// TryNext 实现 receive.Client
func (c *Context) TryNext() *mailbox.Node { return c.mb.TryNext() }

// NextUntil 实现 receive.Client
func (c *Context) NextUntil(deadline time.Time) *mailbox.Node { return c.mb.NextUntil(deadline) }

// ReleaseNode 实现 receive.Client
func (c *Context) ReleaseNode(n *mailbox.Node) { mailbox.Release(n) }

// Exiting 实现 receive.Client
func (c *Context) Exiting() bool {
	return c.ExitReason() != message.NotExited
}

// TrapExit 实现 receive.Client
func (c *Context) TrapExit() bool { return c.trapExit }

// Terminate 实现 receive.Client，可在任意 goroutine 调用，只有第一次生效
func (c *Context) Terminate(reason message.ExitReason) {
	if reason == message.NotExited {
		reason = message.Normal
	}
	if c.exitReason.CompareAndSwap(uint32(message.NotExited), uint32(reason)) {
		c.logger.Debug("actor terminating", "reason", reason.String())
		c.mb.Close()
	}
}

// AwaitsResponse 实现 receive.Client
func (c *Context) AwaitsResponse(id message.RequestID) bool {
	return id != 0 && c.awaiting == id
}

// AwaitsTimeout 实现 receive.Client
func (c *Context) AwaitsTimeout(id uint32) bool {
	return c.pendingTimeout && c.activeTimeout == id
}

// PushTimeout 实现 receive.Client
func (c *Context) PushTimeout() {
	c.timeouts = append(c.timeouts, timeoutFrame{id: c.activeTimeout, pending: c.pendingTimeout})
	c.pendingTimeout = false
}

// PopTimeout 实现 receive.Client
func (c *Context) PopTimeout() {
	top := c.timeouts[len(c.timeouts)-1]
	c.timeouts = c.timeouts[:len(c.timeouts)-1]
	c.activeTimeout = top.id
	c.pendingTimeout = top.pending
}

// ClearPendingTimeout 实现 receive.Client
func (c *Context) ClearPendingTimeout() {
	c.pendingTimeout = false
	c.stopTimer()
}

// CurrentNode 实现 receive.Client
func (c *Context) CurrentNode() *mailbox.Node { return c.current }

// PushNode 实现 receive.Client
func (c *Context) PushNode(n *mailbox.Node) {
	c.saved = append(c.saved, c.current)
	c.current = n
}

// PopNode 实现 receive.Client
func (c *Context) PopNode() {
	c.current = c.saved[len(c.saved)-1]
	c.saved = c.saved[:len(c.saved)-1]
}

// ResetNode 实现 receive.Client
func (c *Context) ResetNode() {
	c.current = c.dummy
	c.saved = c.saved[:len(c.saved)-1]
}

// ════════════════════════════════════════════════════════════════════════════
// 超时请求
// ════════════════════════════════════════════════════════════════════════════

// RequestTimeout 请求一条 (TIMEOUT, id) 通知，d 之后投递到自己的邮箱
// 新的请求使之前所有未到达的通知过期
func (c *Context) RequestTimeout(d time.Duration) {
	c.stopTimer()
	c.timeoutSeq++
	id := c.timeoutSeq
	c.activeTimeout = id
	c.pendingTimeout = true

	notify := func() {
		n := mailbox.NewNode(message.Timeout(id), 0, "")
		if err := c.mb.Enqueue(n); err != nil {
			mailbox.Release(n)
		}
	}
	if d <= 0 {
		notify()
		return
	}
	c.timer = time.AfterFunc(d, notify)
}

func (c *Context) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// resetState 处理函数 panic 后恢复上下文：
// Begin 与 Revert 不再成对，节点栈与超时栈都需要清空
func (c *Context) resetState() {
	c.current = c.dummy
	c.saved = c.saved[:0]
	c.timeouts = c.timeouts[:0]
	c.pendingTimeout = false
	c.stopTimer()
	c.engine.Recover()
}
