// Package receive 实现 Erlang 风格的选择性接收引擎
//
// Actor 的处理函数是一组模式（可选带超时），按到达顺序对邮箱中的消息逐一尝试；
// 未匹配的消息不会丢失，而是保存在跳过缓存中，留给之后的 receive 调用。
//
// # 核心组件
//
// [Classify] 将节点分为五类：普通消息、EXIT 信号、超时通知、过期超时通知、过期响应。
// 除普通消息和当前超时通知外，其余都被静默丢弃。
//
// [Policy] 定义 receive 前后如何修改 Actor 状态。[Nestable] 允许处理函数内部再次调用
// receive，通过节点标记和超时上下文栈隔离内外层；[Sequential] 用于从不重入的 Actor。
//
// [Engine] 负责编排：先查缓存，再从邮箱取节点、分类、应用策略，
// 决定 Handled / Dropped / Cached / Skipped，循环或返回：
//
//	eng := receive.New(client, receive.Nestable)
//	eng.Receive(receive.MatchFunc(func(msg message.Tuple) bool {
//		return msg.Is("ping")
//	}))
//
// [Behavior] 为处理函数附加超时：
//
//	b := receive.NewBehavior(h).After(100*time.Millisecond, onTimeout)
//	eng.ReceiveWithTimeout(b)
//
// # 顺序保证
//
// 每次 receive 先按插入顺序尝试全部缓存节点，再尝试新到达的消息。
// 缓存从不重排，缓存节点之间的相对顺序在任意多次 receive 后保持稳定。
//
// # 错误分层
//
// 丢弃、缓存、超时都是正常的返回状态。契约违规（超时通知送达无超时的处理函数、
// 从邮箱取到已标记的节点等）以 *[Fault] 触发 panic，不应被捕获后忽略。
package receive
