package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/lwmacct/251217-go-pkg-receive/pkg/message"
	"github.com/lwmacct/251217-go-pkg-receive/pkg/receive"
)

// ═══════════════════════════════════════════════════════════════════════════
// 通用请求-回复辅助函数
// ═══════════════════════════════════════════════════════════════════════════

// ErrUnexpectedResponse 响应的首个元素类型不符
var ErrUnexpectedResponse = errors.New("unexpected response")

// As 取出响应的首个元素并断言为 T
func As[T any](resp message.Tuple) (T, error) {
	v, ok := resp.At(0).(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp)
	}
	return v, nil
}

// RequestAs 向 Actor 发送同步请求，并把响应的首个元素断言为 T
//
// 用法示例:
//
//	n, err := actor.RequestAs[int](sys, counter, time.Second, "get")
func RequestAs[T any](sys *System, target *PID, timeout time.Duration, values ...any) (T, error) {
	resp, err := sys.Request(target, timeout, values...)
	if err != nil {
		var zero T
		return zero, err
	}
	return As[T](resp)
}

// AskAs 在 Actor 内发送同步请求，并把响应的首个元素断言为 T
func AskAs[T any](self *Context, target *PID, timeout time.Duration, values ...any) (T, error) {
	resp, err := self.Ask(target, timeout, values...)
	if err != nil {
		var zero T
		return zero, err
	}
	return As[T](resp)
}

// ═══════════════════════════════════════════════════════════════════════════
// 处理函数构造
// ═══════════════════════════════════════════════════════════════════════════

// On 只接受首个元素为 tag 的消息
func On(tag message.Atom, fn func(msg message.Tuple)) receive.Handler {
	return receive.MatchFunc(func(msg message.Tuple) bool {
		if !msg.Is(tag) {
			return false
		}
		fn(msg)
		return true
	})
}

// OneOf 依次尝试多个处理函数，第一个接受的生效
func OneOf(handlers ...receive.Handler) receive.Handler {
	return receive.MatchFunc(func(msg message.Tuple) bool {
		for _, h := range handlers {
			if h.Match(msg) {
				return true
			}
		}
		return false
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// 错误处理工具
// ═══════════════════════════════════════════════════════════════════════════

// IsExit 检查错误是否为 Actor 退出，返回退出原因
func IsExit(err error) (message.ExitReason, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Reason, true
	}
	return message.NotExited, false
}

// IgnoreNormalExit 如果是 normal 或 user_shutdown 退出则返回 nil
func IgnoreNormalExit(err error) error {
	if reason, ok := IsExit(err); ok && (reason == message.Normal || reason == message.UserShutdown) {
		return nil
	}
	return err
}
