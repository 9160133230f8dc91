// Package mailbox 提供 Actor 邮箱与邮箱节点
//
// [Mailbox] 是多生产者单消费者队列，消费者可以阻塞取（[Mailbox.Next]）、
// 非阻塞取（[Mailbox.TryNext]）或带截止时间取（[Mailbox.NextUntil]）。
// [Node] 从节点池分配，由最终消费它的一方调用 [Release] 归还。
package mailbox
