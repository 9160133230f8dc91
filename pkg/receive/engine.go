package receive

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lwmacct/251217-go-pkg-receive/pkg/mailbox"
)

// Engine 选择性接收引擎
//
// 对邮箱中的每个节点决定：立即消费、放入跳过缓存、静默丢弃，
// 或者触发超时回调。消息按到达顺序检查：先是缓存（按插入顺序），
// 再是新到达的消息；未匹配的消息被保留，供之后的 receive 使用。
//
// Engine 不做内部加锁，同一时刻只能有一个执行上下文调用。
type Engine struct {
	client   Client
	policy   Policy
	cache    *Cache
	observer Observer
	logger   *slog.Logger
}

// Option 引擎选项
type Option func(*Engine)

// WithObserver 设置观察者
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New 创建接收引擎
func New(c Client, p Policy, opts ...Option) *Engine {
	e := &Engine{
		client:   c,
		policy:   p,
		cache:    newCache(),
		observer: NopObserver(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy 返回引擎使用的策略
func (e *Engine) Policy() Policy {
	return e.policy
}

// Cache 返回跳过缓存
func (e *Engine) Cache() *Cache {
	return e.cache
}

// CacheLen 返回跳过缓存大小
func (e *Engine) CacheLen() int {
	return e.cache.Len()
}

// Receive 阻塞直到 h 消费一条消息
// 超时设置被忽略；Actor 退出时提前返回
func (e *Engine) Receive(h Handler) {
	if e.InvokeFromCache(h) {
		return
	}
	for {
		n := e.client.Next()
		if n == nil {
			return
		}
		if e.Invoke(n, h) {
			return
		}
	}
}

// ReceiveWithTimeout 按 b 的超时设置接收
//
//   - 未设置超时：等同于 Receive
//   - 超时为 0：只处理已到达的消息，从不阻塞，全部未匹配则调用超时回调
//   - 超时为正：等待到截止时间，期间逐条处理到达的消息，超时后调用超时回调
func (e *Engine) ReceiveWithTimeout(b *Behavior) {
	if !b.HasTimeout() {
		e.Receive(b)
		return
	}
	if e.InvokeFromCache(b) {
		return
	}

	if b.Timeout() == 0 {
		for n := e.client.TryNext(); n != nil; n = e.client.TryNext() {
			if e.Invoke(n, b) {
				return
			}
		}
	} else {
		deadline := time.Now().Add(b.Timeout())
		for n := e.client.NextUntil(deadline); n != nil; n = e.client.NextUntil(deadline) {
			if e.Invoke(n, b) {
				return
			}
		}
	}

	if e.client.Exiting() {
		return
	}
	e.fireTimeout(b)
}

// InvokeFromCache 按插入顺序把缓存节点依次交给 h
// 有节点被处理时立即返回 true；丢弃的节点从缓存移除，其余保持原位
func (e *Engine) InvokeFromCache(h Handler) bool {
	for el := e.cache.front(); el != nil; {
		n := el.Value.(*mailbox.Node)
		result := e.handleMessage(n, h)
		// 处理函数内的嵌套 receive 可能改动了缓存，必须在处理之后取后继
		next := el.Next()

		switch result {
		case Handled:
			e.cache.remove(el)
			e.observer.CacheResized(e.cache.Len())
			return true
		case Dropped:
			e.cache.remove(el)
			e.observer.CacheResized(e.cache.Len())
			// 未捕获的 EXIT 已终止 Actor，之后的缓存节点不再交给处理函数
			if e.client.Exiting() {
				return false
			}
		case Skipped, Cached:
		default:
			panic(newFault("invoke from cache", fmt.Sprintf("illegal result %d", result)))
		}
		el = next
	}
	return false
}

// Invoke 把刚从邮箱取出的节点交给 h，节点被处理时返回 true
// 未匹配的节点追加到跳过缓存，所有权随之转移
func (e *Engine) Invoke(n *mailbox.Node, h Handler) bool {
	switch result := e.handleMessage(n, h); result {
	case Handled:
		return true
	case Dropped:
		return false
	case Cached:
		e.cache.push(n)
		e.observer.CacheResized(e.cache.Len())
		return false
	case Skipped:
		panic(newFault("invoke", "received a marked node"))
	default:
		panic(newFault("invoke", fmt.Sprintf("illegal result %d", result)))
	}
}

// Reset 释放缓存中的全部节点
func (e *Engine) Reset() int {
	count := e.cache.drain(e.client.ReleaseNode)
	e.observer.CacheResized(0)
	return count
}

// Recover 清除缓存节点上的标记
// 处理函数 panic 后，Begin 与 Revert 不再成对，运行时在恢复 Actor 前调用
func (e *Engine) Recover() {
	for el := e.cache.front(); el != nil; el = el.Next() {
		el.Value.(*mailbox.Node).Marked = false
	}
}

// handleMessage 决定单个节点的去向
// 丢弃与处理完成的节点在这里释放，缓存的节点所有权交给调用方
func (e *Engine) handleMessage(n *mailbox.Node, h Handler) Result {
	if e.policy.ShouldSkip(n) {
		e.observer.Finished(Skipped)
		return Skipped
	}

	class := Classify(e.client, n)
	e.observer.Classified(class)

	switch class {
	case ExitSignal, ExpiredResponse, ExpiredTimeoutNotice:
		e.logger.Debug("dropping message",
			"class", class.String(),
			"payload", n.Payload.String(),
			"seq", uint64(n.SeqID))
		e.client.ReleaseNode(n)
		e.observer.Finished(Dropped)
		return Dropped

	case TimeoutNotice:
		e.client.ClearPendingTimeout()
		// 回调期间标记节点，嵌套 receive 不会再次取到它
		n.Marked = true
		e.fireTimeout(h)
		e.client.ReleaseNode(n)
		e.observer.Finished(Handled)
		return Handled

	case Ordinary:
		e.policy.Begin(e.client, n)
		if h.Match(n.Payload) {
			e.policy.Cleanup(e.client)
			e.client.ReleaseNode(n)
			e.observer.Finished(Handled)
			return Handled
		}
		e.policy.Revert(e.client, n)
		e.observer.Finished(Cached)
		return Cached
	}

	panic(newFault("handle message", fmt.Sprintf("illegal message class %d", class)))
}

func (e *Engine) fireTimeout(h Handler) {
	e.observer.TimedOut()
	handleTimeout(h)
}
