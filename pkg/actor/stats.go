package actor

import (
	"time"

	"go.uber.org/atomic"

	"github.com/lwmacct/251217-go-pkg-receive/pkg/receive"
)

// ═══════════════════════════════════════════════════════════════════════════
// Actor 统计信息
// ═══════════════════════════════════════════════════════════════════════════

// ActorStats Actor 接收统计快照
type ActorStats struct {
	// 分类计数
	Ordinary         int64 // 普通消息
	ExitSignals      int64 // 未捕获的 EXIT 信号
	TimeoutNotices   int64 // 当前超时通知
	ExpiredTimeouts  int64 // 过期超时通知
	ExpiredResponses int64 // 过期同步响应

	// 处理结果
	Handled int64 // 被处理函数消费
	Dropped int64 // 静默丢弃
	Cached  int64 // 放入或留在跳过缓存
	Skipped int64 // 被外层 receive 持有而跳过

	TimedOut int64 // 超时回调次数
	Failures int64 // 处理函数 panic 次数

	// 跳过缓存
	CacheSize    int64 // 当前大小
	MaxCacheSize int64 // 历史最大值

	StartedAt     time.Time // 启动时间
	LastHandledAt time.Time // 最后一次消费消息的时间
}

// Classified 返回分类总数
func (s *ActorStats) Classified() int64 {
	return s.Ordinary + s.ExitSignals + s.TimeoutNotices + s.ExpiredTimeouts + s.ExpiredResponses
}

// ═══════════════════════════════════════════════════════════════════════════
// ReceiveStats 接收统计收集器
// ═══════════════════════════════════════════════════════════════════════════

// ReceiveStats 使用原子操作的接收统计收集器，实现 receive.Observer
// 由 Actor 自己的执行上下文写入，可在任意 goroutine 读取快照
type ReceiveStats struct {
	classes  [5]atomic.Int64
	results  [4]atomic.Int64
	timedOut atomic.Int64
	failures atomic.Int64

	cacheSize    atomic.Int64
	maxCacheSize atomic.Int64

	startedAt     time.Time
	lastHandledAt atomic.Time
}

var _ receive.Observer = (*ReceiveStats)(nil)

// NewReceiveStats 创建接收统计收集器
func NewReceiveStats() *ReceiveStats {
	return &ReceiveStats{startedAt: time.Now()}
}

// Classified 实现 receive.Observer
func (s *ReceiveStats) Classified(class receive.Class) {
	if int(class) < len(s.classes) {
		s.classes[class].Inc()
	}
}

// Finished 实现 receive.Observer
func (s *ReceiveStats) Finished(result receive.Result) {
	if int(result) < len(s.results) {
		s.results[result].Inc()
	}
	if result == receive.Handled {
		s.lastHandledAt.Store(time.Now())
	}
}

// TimedOut 实现 receive.Observer
func (s *ReceiveStats) TimedOut() {
	s.timedOut.Inc()
}

// CacheResized 实现 receive.Observer
func (s *ReceiveStats) CacheResized(size int) {
	n := int64(size)
	s.cacheSize.Store(n)
	if n > s.maxCacheSize.Load() {
		s.maxCacheSize.Store(n)
	}
}

func (s *ReceiveStats) recordFailure() {
	s.failures.Inc()
}

// Stats 获取统计快照
func (s *ReceiveStats) Stats() *ActorStats {
	return &ActorStats{
		Ordinary:         s.classes[receive.Ordinary].Load(),
		ExitSignals:      s.classes[receive.ExitSignal].Load(),
		TimeoutNotices:   s.classes[receive.TimeoutNotice].Load(),
		ExpiredTimeouts:  s.classes[receive.ExpiredTimeoutNotice].Load(),
		ExpiredResponses: s.classes[receive.ExpiredResponse].Load(),
		Handled:          s.results[receive.Handled].Load(),
		Dropped:          s.results[receive.Dropped].Load(),
		Cached:           s.results[receive.Cached].Load(),
		Skipped:          s.results[receive.Skipped].Load(),
		TimedOut:         s.timedOut.Load(),
		Failures:         s.failures.Load(),
		CacheSize:        s.cacheSize.Load(),
		MaxCacheSize:     s.maxCacheSize.Load(),
		StartedAt:        s.startedAt,
		LastHandledAt:    s.lastHandledAt.Load(),
	}
}
