package receive

import (
	"github.com/lwmacct/251217-go-pkg-receive/pkg/mailbox"
	"github.com/lwmacct/251217-go-pkg-receive/pkg/message"
)

// Class 消息分类结果
type Class int

const (
	// Ordinary 普通消息，交给处理函数
	Ordinary Class = iota
	// ExitSignal 未被捕获的 EXIT 信号，已消费，丢弃
	ExitSignal
	// TimeoutNotice 当前等待中的超时通知
	TimeoutNotice
	// ExpiredTimeoutNotice 过期的超时通知，丢弃
	ExpiredTimeoutNotice
	// ExpiredResponse 不再等待的同步响应，丢弃
	ExpiredResponse
)

// String 返回分类名称
func (c Class) String() string {
	switch c {
	case Ordinary:
		return "ordinary"
	case ExitSignal:
		return "exit_signal"
	case TimeoutNotice:
		return "timeout"
	case ExpiredTimeoutNotice:
		return "expired_timeout"
	case ExpiredResponse:
		return "expired_response"
	default:
		return "unknown"
	}
}

// Classify 对节点分类
//
// 识别不应按普通消息处理的特殊消息：
//   - EXIT（Actor 未捕获退出时）与 TIMEOUT 系统消息
//   - 过期的同步响应
//
// 未捕获的非 normal EXIT 会以其原因终止 Actor（副作用）。
// 节点本身不在这里释放，由调用方在丢弃路径上统一释放。
func Classify(c Client, n *mailbox.Node) Class {
	correlated := n.SeqID.IsCorrelated()

	if tag, value, ok := n.Payload.Signal(); ok {
		switch tag {
		case message.AtomExit:
			if correlated {
				panic(newFault("classify", "EXIT signal carried on a correlated message"))
			}
			if !c.TrapExit() {
				if reason := message.ExitReason(value); reason != message.Normal {
					c.Terminate(reason)
				}
				return ExitSignal
			}
		case message.AtomTimeout:
			if correlated {
				panic(newFault("classify", "TIMEOUT notice carried on a correlated message"))
			}
			if c.AwaitsTimeout(value) {
				return TimeoutNotice
			}
			return ExpiredTimeoutNotice
		}
	}

	if correlated && n.SeqID.IsResponse() && !c.AwaitsResponse(n.SeqID.RequestID()) {
		return ExpiredResponse
	}
	return Ordinary
}
