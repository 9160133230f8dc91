package mailbox

import (
	"sync"

	"github.com/lwmacct/251217-go-pkg-receive/pkg/message"
)

// Node 邮箱节点：一条排队的消息及其元数据
//
// 任意时刻节点只归属一个集合：邮箱、跳过缓存，
// 或者（在处理函数尝试期间）作为接收引擎的当前节点。
type Node struct {
	// Payload 消息负载，处理函数对其做模式匹配
	Payload message.Tuple
	// SeqID 同步请求/响应关联序号，0 表示异步消息
	SeqID message.SequenceID
	// Sender 发送者 Actor ID，系统消息为空
	Sender string
	// Marked 仅在可嵌套策略下有意义：
	// 外层仍在进行中的 receive 正持有该节点时为 true
	Marked bool

	sentinel bool
}

var nodePool = sync.Pool{New: func() any { return new(Node) }}

// NewNode 从节点池取出并初始化一个节点
func NewNode(payload message.Tuple, seq message.SequenceID, sender string) *Node {
	n := nodePool.Get().(*Node)
	n.Payload = payload
	n.SeqID = seq
	n.Sender = sender
	n.Marked = false
	n.sentinel = false
	return n
}

// NewSentinel 创建哨兵节点，代表“当前没有处理中的节点”
// 哨兵节点永远不会被 Release 回收
func NewSentinel() *Node {
	return &Node{sentinel: true}
}

// IsSentinel 是否为哨兵节点
func (n *Node) IsSentinel() bool {
	return n != nil && n.sentinel
}

// Release 释放节点，归还到节点池
// 每个节点只能在最终消费或丢弃它的路径上释放一次
func Release(n *Node) {
	if n == nil || n.sentinel {
		return
	}
	n.Payload = nil
	n.SeqID = 0
	n.Sender = ""
	n.Marked = false
	nodePool.Put(n)
}
