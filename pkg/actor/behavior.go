package actor

import "github.com/lwmacct/251217-go-pkg-receive/pkg/receive"

// Become 用 b 替换当前行为（仅事件驱动 Actor）
// 等待中的超时请求随旧行为作废，跳过缓存会用新行为重新检查
func (c *Context) Become(b *receive.Behavior) {
	if n := len(c.behaviors); n > 0 {
		c.behaviors[n-1] = b
	} else {
		c.behaviors = append(c.behaviors, b)
	}
	c.behaviorChanged()
}

// BecomeStacked 压入新行为，之后可用 Unbecome 恢复旧行为
func (c *Context) BecomeStacked(b *receive.Behavior) {
	c.behaviors = append(c.behaviors, b)
	c.behaviorChanged()
}

// Unbecome 弹出当前行为，行为栈为空时 Actor 以 normal 原因退出
func (c *Context) Unbecome() {
	if n := len(c.behaviors); n > 0 {
		c.behaviors[n-1] = nil
		c.behaviors = c.behaviors[:n-1]
	}
	c.behaviorChanged()
}

func (c *Context) behaviorChanged() {
	c.ClearPendingTimeout()
	c.rescan = true
}

func (c *Context) behavior() *receive.Behavior {
	if n := len(c.behaviors); n > 0 {
		return c.behaviors[n-1]
	}
	return nil
}

// eventBody 事件驱动 Actor 的事件循环
//
// 当前行为带超时且没有等待中的超时请求时，先请求一条超时通知；
// 缓存只在行为变化或上一条消息被处理后重新检查。
func eventBody(a EventActor) func(*Context) {
	return func(self *Context) {
		if !self.initialized {
			self.initialized = true
			self.behaviors = self.behaviors[:0]
			if b := a.Init(self); b != nil {
				self.Become(b)
			}
		}

		for !self.Exiting() {
			b := self.behavior()
			if b == nil {
				return
			}
			if b.HasTimeout() && !self.pendingTimeout {
				self.RequestTimeout(b.Timeout())
			}

			if self.rescan {
				self.rescan = false
				if self.engine.InvokeFromCache(b) {
					self.rescan = true
					continue
				}
			}

			n := self.Next()
			if n == nil {
				return
			}
			if self.engine.Invoke(n, b) {
				self.rescan = true
			}
		}
	}
}
