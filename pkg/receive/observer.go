package receive

// Result handleMessage 的处理结果
type Result int

const (
	// Handled 消息被处理函数消费（或触发了超时回调）
	Handled Result = iota
	// Dropped 消息被静默丢弃
	Dropped
	// Cached 消息未匹配，保留在跳过缓存中
	Cached
	// Skipped 消息正被外层 receive 持有，本次跳过
	Skipped
)

// String 返回结果名称
func (r Result) String() string {
	switch r {
	case Handled:
		return "handled"
	case Dropped:
		return "dropped"
	case Cached:
		return "cached"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Observer 接收引擎观察者，用于统计与监控
// 回调在 Actor 自身的执行上下文中同步调用，实现不得阻塞
type Observer interface {
	// Classified 节点完成分类
	Classified(class Class)
	// Finished 一次 handleMessage 结束
	Finished(result Result)
	// TimedOut 超时回调被触发
	TimedOut()
	// CacheResized 跳过缓存大小变化
	CacheResized(size int)
}

type nopObserver struct{}

func (nopObserver) Classified(Class) {}
func (nopObserver) Finished(Result)  {}
func (nopObserver) TimedOut()        {}
func (nopObserver) CacheResized(int) {}

// NopObserver 返回空实现
func NopObserver() Observer { return nopObserver{} }

type multiObserver []Observer

func (m multiObserver) Classified(class Class) {
	for _, o := range m {
		o.Classified(class)
	}
}

func (m multiObserver) Finished(result Result) {
	for _, o := range m {
		o.Finished(result)
	}
}

func (m multiObserver) TimedOut() {
	for _, o := range m {
		o.TimedOut()
	}
}

func (m multiObserver) CacheResized(size int) {
	for _, o := range m {
		o.CacheResized(size)
	}
}

// Observers 将多个观察者合并为一个，nil 会被忽略
func Observers(observers ...Observer) Observer {
	m := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	switch len(m) {
	case 0:
		return NopObserver()
	case 1:
		return m[0]
	}
	return m
}
