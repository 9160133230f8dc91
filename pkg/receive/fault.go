package receive

import (
	"fmt"

	"github.com/pkg/errors"
)

// Fault 内部契约违规
//
// 引擎在无法推理的状态下不会尝试恢复，而是以 *Fault 触发 panic。
// 运行时不得捕获后忽略它。
type Fault struct {
	// Op 发生违规的操作
	Op string
	// Reason 违规描述
	Reason string

	cause error
}

func newFault(op, reason string) *Fault {
	return &Fault{
		Op:     op,
		Reason: reason,
		cause:  errors.New(reason),
	}
}

// Error 实现 error 接口
func (f *Fault) Error() string {
	return fmt.Sprintf("receive: internal fault in %s: %s", f.Op, f.Reason)
}

// Unwrap 返回携带调用栈的底层错误
func (f *Fault) Unwrap() error {
	return f.cause
}

// Stack 返回违规发生处的调用栈
func (f *Fault) Stack() string {
	return fmt.Sprintf("%+v", f.cause)
}

// AsFault 判断 panic 值是否为 *Fault
func AsFault(r any) (*Fault, bool) {
	f, ok := r.(*Fault)
	return f, ok
}
