package receive

import "github.com/lwmacct/251217-go-pkg-receive/pkg/mailbox"

// Policy receive 重入策略
//
// handleMessage 的流程：
//   - ShouldSkip？是则返回 Skipped
//   - 普通消息：Begin 准备上下文，尝试处理函数
//   - 匹配成功 Cleanup，否则 Revert 将上下文恢复到 Begin 之前
//
// 策略在 Actor 类型确定时选定一次，生命周期内不变。
type Policy interface {
	ShouldSkip(n *mailbox.Node) bool
	Begin(c Client, n *mailbox.Node)
	Cleanup(c Client)
	Revert(c Client, n *mailbox.Node)
	String() string
}

var (
	// Nestable 可嵌套策略：处理函数内部允许再次调用 receive
	Nestable Policy = nestable{}
	// Sequential 顺序策略：receive 保证不会重入
	Sequential Policy = sequential{}
)

// nestable 通过节点标记和超时上下文栈，
// 防止内层 receive 抢走外层正持有的节点，也防止内层超时破坏外层超时
type nestable struct{}

func (nestable) ShouldSkip(n *mailbox.Node) bool {
	return n.Marked
}

func (nestable) Begin(c Client, n *mailbox.Node) {
	c.PushNode(n)
	c.PushTimeout()
	n.Marked = true
}

func (nestable) Cleanup(c Client) {
	c.ResetNode()
	c.PopTimeout()
}

// Revert 取消标记的是本次尝试的节点。正常流程中它就是当前节点；
// 若处理函数内嵌套的 receive 已匹配成功，当前节点已被置为哨兵。
func (nestable) Revert(c Client, n *mailbox.Node) {
	n.Marked = false
	c.PopNode()
	c.PopTimeout()
}

func (nestable) String() string { return "nestable" }

// sequential 无需标记，但必须保证匹配完成后不残留等待中的超时请求
type sequential struct{}

func (sequential) ShouldSkip(*mailbox.Node) bool {
	return false
}

func (sequential) Begin(c Client, n *mailbox.Node) {
	c.PushNode(n)
}

func (sequential) Cleanup(c Client) {
	c.ResetNode()
	c.ClearPendingTimeout()
}

func (sequential) Revert(c Client, _ *mailbox.Node) {
	c.PopNode()
}

func (sequential) String() string { return "sequential" }
