package message

import "fmt"

// ExitReason Actor 退出原因
type ExitReason uint32

const (
	// NotExited Actor 仍在运行
	NotExited ExitReason = 0
	// Normal 正常退出
	Normal ExitReason = 1
	// UnhandledException Actor 体发生未处理的 panic
	UnhandledException ExitReason = 2
	// UnallowedFunctionCall 调用了当前 Actor 类型不允许的操作
	UnallowedFunctionCall ExitReason = 3
	// UnhandledSyncFailure 同步请求失败且未处理
	UnhandledSyncFailure ExitReason = 4
	// UnhandledSyncTimeout 同步请求超时且未处理
	UnhandledSyncTimeout ExitReason = 5
	// UserShutdown 外部请求停止（System.Stop / Shutdown）
	UserShutdown ExitReason = 0x10
	// UserDefined 用户自定义原因的起始值
	UserDefined ExitReason = 0x10000
)

// String 返回退出原因名称
func (r ExitReason) String() string {
	switch r {
	case NotExited:
		return "not_exited"
	case Normal:
		return "normal"
	case UnhandledException:
		return "unhandled_exception"
	case UnallowedFunctionCall:
		return "unallowed_function_call"
	case UnhandledSyncFailure:
		return "unhandled_sync_failure"
	case UnhandledSyncTimeout:
		return "unhandled_sync_timeout"
	case UserShutdown:
		return "user_shutdown"
	}
	if r >= UserDefined {
		return fmt.Sprintf("user_defined(%d)", uint32(r-UserDefined))
	}
	return fmt.Sprintf("unknown(%d)", uint32(r))
}
