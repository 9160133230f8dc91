// Package message 定义 Actor 间传递的消息负载模型
//
// 负载是一个 [Tuple]，即带类型字段的序列。两种二元组形状保留给系统：
//   - (EXIT, reason)：退出信号，见 [Exit]
//   - (TIMEOUT, id)：超时通知，见 [Timeout]
//
// [SequenceID] 为同步请求/响应提供关联：最高位标记响应，低 63 位是请求 ID。
package message
