// Package actor 提供基于选择性接收的轻量级 Actor 运行时
//
// 每个 Actor 拥有私有邮箱和跳过缓存，消息处理串行化；
// 处理函数可以只接收自己当前关心的消息，其余消息留待之后的 receive。
//
// # 核心组件
//
// [System] 是 Actor 系统的入口，管理所有 Actor 的生命周期：
//
//	sys := actor.NewSystem("my-system")
//	defer sys.Shutdown()
//
// [Actor] 是阻塞式 Actor，主体在独立 goroutine 上运行，按需调用 [Context.Receive]，
// 处理函数内允许嵌套 receive。[EventActor] 是事件驱动 Actor，由运行时把消息逐条交给
// 当前行为，通过 [Context.Become] 切换行为，行为的超时以 (TIMEOUT, id) 通知送达。
//
// [Scoped] 让普通 goroutine（main、测试）也能使用选择性接收：
//
//	self := sys.NewScoped("main")
//	defer self.Close()
//	resp, err := self.Ask(pid, time.Second, "get")
//
// # 同步请求
//
// [Context.SyncSend] 发送带请求 ID 的消息，[Context.ReceiveResponse] 只接受对应的响应，
// 等待期间到达的其他消息留在跳过缓存中。超时后请求被放弃，迟到的响应被静默丢弃。
//
// # 链接与退出
//
// [Context.Link] 建立双向链接，一方退出时另一方收到 (EXIT, reason)。
// 未捕获退出时，非 normal 的 EXIT 会以相同原因终止 Actor；
// [Context.SetTrapExit] 之后 EXIT 作为普通消息交给处理函数。
// Actor 正在退出时，Receive 系列方法返回 *[ExitError]。
//
// # 监督策略
//
// 处理函数 panic 时由 [SupervisorStrategy] 决定：DirectiveResume 保留跳过缓存重新运行主体，
// DirectiveRestart 释放跳过缓存后重新运行，DirectiveStop 以 unhandled_exception 退出。
// [SupervisorActor] 基于链接和 EXIT 捕获实现监督树。
//
// 接收引擎的内部错误（*receive.Fault）不会交给监督策略，记录日志后继续 panic。
//
// 完整使用示例请参考 example_test.go。
package actor
