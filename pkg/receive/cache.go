package receive

import (
	"container/list"

	"github.com/lwmacct/251217-go-pkg-receive/pkg/mailbox"
)

// Cache 跳过缓存：曾被处理函数拒绝的节点，按插入顺序保存，从不重排
//
// 遍历过程中允许删除当前元素，嵌套 receive 也可能在外层遍历期间
// 删除或追加其他元素，因此使用双向链表而不是切片。
type Cache struct {
	l *list.List
}

func newCache() *Cache {
	return &Cache{l: list.New()}
}

// Len 返回缓存节点数量
func (c *Cache) Len() int {
	return c.l.Len()
}

// Nodes 按插入顺序返回缓存节点的快照
func (c *Cache) Nodes() []*mailbox.Node {
	nodes := make([]*mailbox.Node, 0, c.l.Len())
	for e := c.l.Front(); e != nil; e = e.Next() {
		nodes = append(nodes, e.Value.(*mailbox.Node))
	}
	return nodes
}

func (c *Cache) push(n *mailbox.Node) {
	c.l.PushBack(n)
}

func (c *Cache) front() *list.Element {
	return c.l.Front()
}

func (c *Cache) remove(e *list.Element) {
	c.l.Remove(e)
}

// drain 清空缓存，逐个交给 fn
func (c *Cache) drain(fn func(*mailbox.Node)) int {
	count := 0
	for e := c.l.Front(); e != nil; e = c.l.Front() {
		c.l.Remove(e)
		fn(e.Value.(*mailbox.Node))
		count++
	}
	return count
}
