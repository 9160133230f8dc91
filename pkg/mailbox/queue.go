package mailbox

import (
	"sync"
	"sync/atomic"
)

// slot 队列内部链表单元，与 Node 分离，保证 Node 可在集合间自由移动
type slot struct {
	next atomic.Pointer[slot]
	node *Node
}

var slotPool = sync.Pool{New: func() any { return new(slot) }}

// queue 无锁多生产者单消费者（MPSC）FIFO 队列
//
//   - push 可被任意 goroutine 并发调用
//   - pop 只能由唯一的消费者调用
//
// 队列以一个哑元单元开始，生产者交换 tail 后再通过前一个单元链接。
// 在交换和链接之间，消费者可能短暂地看到队列为空，但消息不会丢失。
type queue struct {
	head atomic.Pointer[slot] // 仅消费者访问
	_    [64]byte
	tail atomic.Pointer[slot] // 生产者访问
	_    [64]byte
}

func newQueue() *queue {
	stub := slotPool.Get().(*slot)
	stub.next.Store(nil)
	stub.node = nil
	q := &queue{}
	q.head.Store(stub)
	q.tail.Store(stub)
	return q
}

// push 追加节点
func (q *queue) push(n *Node) {
	s := slotPool.Get().(*slot)
	s.node = n
	s.next.Store(nil)
	prev := q.tail.Swap(s)
	prev.next.Store(s)
}

// pop 取出队首节点，队列为空时返回 nil
func (q *queue) pop() *Node {
	head := q.head.Load()
	next := head.next.Load()
	if next == nil {
		return nil
	}
	q.head.Store(next)
	n := next.node
	next.node = nil

	head.next.Store(nil)
	slotPool.Put(head)
	return n
}
