package mailbox

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/atomic"
)

var (
	// ErrFull 邮箱已满
	ErrFull = errors.New("mailbox is full")
	// ErrClosed 邮箱已关闭
	ErrClosed = errors.New("mailbox is closed")
)

// Mailbox Actor 邮箱
//
// 并发模型为多生产者单消费者：任意 goroutine 可以调用 Enqueue，
// 但 Next / TryNext / NextUntil / Drain 只能由 Actor 自身的执行上下文调用。
type Mailbox struct {
	q        *queue
	capacity int64
	length   *atomic.Int64
	closed   *atomic.Bool

	// signal 单槽唤醒信号，生产者链接节点后发送
	signal    chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// gate 生产者持读锁投递，Close 持写锁，Close 返回后不会再有节点入队
	gate sync.RWMutex
}

// New 创建邮箱，capacity <= 0 表示无界
func New(capacity int) *Mailbox {
	if capacity < 0 {
		capacity = 0
	}
	return &Mailbox{
		q:        newQueue(),
		capacity: int64(capacity),
		length:   atomic.NewInt64(0),
		closed:   atomic.NewBool(false),
		signal:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Enqueue 投递节点，可被多个生产者并发调用
// 邮箱满时返回 ErrFull，关闭后返回 ErrClosed，此时节点所有权仍归调用者
func (m *Mailbox) Enqueue(n *Node) error {
	m.gate.RLock()
	defer m.gate.RUnlock()

	if m.closed.Load() {
		return ErrClosed
	}
	// 先占位再检查容量，并发生产者不会超出上限
	if length := m.length.Inc(); m.capacity > 0 && length > m.capacity {
		m.length.Dec()
		return ErrFull
	}
	m.q.push(n)

	select {
	case m.signal <- struct{}{}:
	default:
	}
	return nil
}

// TryNext 非阻塞取出下一个节点，邮箱为空或已关闭时返回 nil
func (m *Mailbox) TryNext() *Node {
	if m.closed.Load() {
		return nil
	}
	n := m.q.pop()
	if n != nil {
		m.length.Dec()
	}
	return n
}

// Next 阻塞取出下一个节点，仅在邮箱关闭后返回 nil
func (m *Mailbox) Next() *Node {
	for {
		if n := m.TryNext(); n != nil {
			return n
		}
		if m.closed.Load() {
			return nil
		}
		select {
		case <-m.signal:
		case <-m.done:
			return nil
		}
	}
}

// NextUntil 阻塞取出下一个节点，最多等待到 deadline
// 超过截止时间或邮箱关闭时返回 nil
func (m *Mailbox) NextUntil(deadline time.Time) *Node {
	if n := m.TryNext(); n != nil {
		return n
	}
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	for {
		if m.closed.Load() {
			return nil
		}
		select {
		case <-m.signal:
			if n := m.TryNext(); n != nil {
				return n
			}
		case <-m.done:
			return nil
		case <-timer.C:
			return nil
		}
	}
}

// Close 关闭邮箱并唤醒阻塞中的消费者，可重复调用
// 返回后所有成功的 Enqueue 都已完成，Drain 能看到全部节点
func (m *Mailbox) Close() {
	m.closeOnce.Do(func() {
		m.gate.Lock()
		m.closed.Store(true)
		m.gate.Unlock()
		close(m.done)
	})
}

// Closed 是否已关闭
func (m *Mailbox) Closed() bool {
	return m.closed.Load()
}

// Done 返回邮箱关闭时关闭的通道
func (m *Mailbox) Done() <-chan struct{} {
	return m.done
}

// Len 返回排队节点数量（近似值）
func (m *Mailbox) Len() int64 {
	return m.length.Load()
}

// Drain 将剩余节点逐个交给 fn，通常用于终止时释放全部节点
// 关闭后依然可以调用
func (m *Mailbox) Drain(fn func(*Node)) int {
	count := 0
	for n := m.q.pop(); n != nil; n = m.q.pop() {
		m.length.Dec()
		fn(n)
		count++
	}
	return count
}
