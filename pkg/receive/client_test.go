package receive

import (
	"time"

	"github.com/lwmacct/251217-go-pkg-receive/pkg/mailbox"
	"github.com/lwmacct/251217-go-pkg-receive/pkg/message"
)

type timeoutFrame struct {
	id      uint32
	pending bool
}

// testClient 基于真实邮箱的最小 Actor 上下文
type testClient struct {
	mb *mailbox.Mailbox

	trapExit   bool
	terminated []message.ExitReason
	syncID     message.RequestID

	timeoutID uint32
	pending   bool
	timeouts  []timeoutFrame

	dummy   *mailbox.Node
	current *mailbox.Node
	saved   []*mailbox.Node

	released int
}

func newTestClient() *testClient {
	dummy := mailbox.NewSentinel()
	return &testClient{
		mb:      mailbox.New(0),
		dummy:   dummy,
		current: dummy,
	}
}

func (c *testClient) send(values ...any) {
	_ = c.mb.Enqueue(mailbox.NewNode(message.Of(values...), 0, ""))
}

func (c *testClient) sendSeq(seq message.SequenceID, payload message.Tuple) {
	_ = c.mb.Enqueue(mailbox.NewNode(payload, seq, ""))
}

func (c *testClient) Next() *mailbox.Node    { return c.mb.Next() }
func (c *testClient) TryNext() *mailbox.Node { return c.mb.TryNext() }
func (c *testClient) NextUntil(deadline time.Time) *mailbox.Node {
	return c.mb.NextUntil(deadline)
}

func (c *testClient) ReleaseNode(n *mailbox.Node) {
	c.released++
	mailbox.Release(n)
}

func (c *testClient) Exiting() bool  { return c.mb.Closed() }
func (c *testClient) TrapExit() bool { return c.trapExit }

func (c *testClient) Terminate(reason message.ExitReason) {
	c.terminated = append(c.terminated, reason)
	c.mb.Close()
}

func (c *testClient) AwaitsResponse(id message.RequestID) bool {
	return id == c.syncID
}

func (c *testClient) AwaitsTimeout(id uint32) bool {
	return c.pending && c.timeoutID == id
}

func (c *testClient) PushTimeout() {
	c.timeouts = append(c.timeouts, timeoutFrame{id: c.timeoutID, pending: c.pending})
	c.pending = false
}

func (c *testClient) PopTimeout() {
	top := c.timeouts[len(c.timeouts)-1]
	c.timeouts = c.timeouts[:len(c.timeouts)-1]
	c.timeoutID = top.id
	c.pending = top.pending
}

func (c *testClient) ClearPendingTimeout() { c.pending = false }

func (c *testClient) CurrentNode() *mailbox.Node { return c.current }

func (c *testClient) PushNode(n *mailbox.Node) {
	c.saved = append(c.saved, c.current)
	c.current = n
}

func (c *testClient) PopNode() {
	c.current = c.saved[len(c.saved)-1]
	c.saved = c.saved[:len(c.saved)-1]
}

func (c *testClient) ResetNode() {
	c.current = c.dummy
	c.saved = c.saved[:len(c.saved)-1]
}

// requestTimeout 模拟事件驱动 Actor 请求超时
func (c *testClient) requestTimeout(id uint32) {
	c.timeoutID = id
	c.pending = true
}

// countingObserver 记录观察者回调
type countingObserver struct {
	classes  map[Class]int
	results  map[Result]int
	timeouts int
	size     int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{
		classes: make(map[Class]int),
		results: make(map[Result]int),
	}
}

func (o *countingObserver) Classified(class Class) { o.classes[class]++ }
func (o *countingObserver) Finished(result Result) { o.results[result]++ }
func (o *countingObserver) TimedOut()              { o.timeouts++ }
func (o *countingObserver) CacheResized(size int)  { o.size = size }
