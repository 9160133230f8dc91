package actor

import "sync"

// Scoped 作用域上下文
//
// 没有独立 goroutine 的 Actor，由创建它的 goroutine 直接调用 Receive 系列方法。
// 典型用法：
//
//	self := sys.NewScoped("main")
//	defer self.Close()
//	resp, err := self.Ask(pid, time.Second, "get")
type Scoped struct {
	*Context

	cell *actorCell
	once sync.Once
}

// Close 以 normal 原因终止（已终止时保留原有原因），释放全部缓存与排队消息
func (s *Scoped) Close() {
	s.once.Do(func() {
		s.system.finish(s.cell)
	})
}
