package receive

import (
	"time"

	"github.com/lwmacct/251217-go-pkg-receive/pkg/mailbox"
	"github.com/lwmacct/251217-go-pkg-receive/pkg/message"
)

// Source 节点来源：邮箱的消费端
type Source interface {
	// Next 阻塞取出下一个节点，仅在 Actor 退出后返回 nil
	Next() *mailbox.Node
	// TryNext 非阻塞取出下一个节点
	TryNext() *mailbox.Node
	// NextUntil 带截止时间的阻塞取
	NextUntil(deadline time.Time) *mailbox.Node
	// ReleaseNode 释放节点
	ReleaseNode(n *mailbox.Node)
	// Exiting Actor 是否正在退出
	Exiting() bool
}

// Timeouts 超时上下文
type Timeouts interface {
	// AwaitsTimeout 是否正在等待 id 对应的超时通知
	AwaitsTimeout(id uint32) bool
	// PushTimeout 为嵌套 receive 压入新的超时上下文
	PushTimeout()
	// PopTimeout 恢复外层超时上下文
	PopTimeout()
	// ClearPendingTimeout 清除等待中的超时请求
	ClearPendingTimeout()
}

// Nodes 当前节点槽位
//
// 当前节点在处理函数尝试期间被独占持有，
// 之前的值保存在显式栈中，栈深度等于 receive 嵌套层数。
type Nodes interface {
	// CurrentNode 返回当前节点，空闲时为哨兵节点
	CurrentNode() *mailbox.Node
	// PushNode 保存当前节点并设置新的当前节点
	PushNode(n *mailbox.Node)
	// PopNode 恢复之前保存的当前节点
	PopNode()
	// ResetNode 丢弃保存的节点并将当前节点置为哨兵
	ResetNode()
}

// Client 接收引擎所需的 Actor 上下文
//
// 引擎不做任何加锁，假定同一时刻只有一个执行上下文调用它。
type Client interface {
	Source
	Timeouts
	Nodes

	// TrapExit 为 false 时，非 normal 的 EXIT 信号会终止 Actor
	TrapExit() bool
	// Terminate 以指定原因终止 Actor
	Terminate(reason message.ExitReason)
	// AwaitsResponse 是否正在等待 id 对应的同步响应
	AwaitsResponse(id message.RequestID) bool
}
