package actor

import (
	"sync"
	"time"

	"github.com/lwmacct/251217-go-pkg-receive/pkg/message"
	"github.com/lwmacct/251217-go-pkg-receive/pkg/receive"
)

// Directive 监督指令
type Directive int

const (
	// DirectiveResume 恢复 Actor：重新运行主体，保留跳过缓存
	DirectiveResume Directive = iota
	// DirectiveRestart 重启 Actor：释放跳过缓存后重新运行主体
	DirectiveRestart
	// DirectiveStop 以 unhandled_exception 原因停止 Actor
	DirectiveStop
)

// DirectiveWithDelay 带延迟的指令
type DirectiveWithDelay struct {
	Directive Directive
	Delay     time.Duration
}

// String 返回指令名称
func (d Directive) String() string {
	switch d {
	case DirectiveResume:
		return "Resume"
	case DirectiveRestart:
		return "Restart"
	case DirectiveStop:
		return "Stop"
	default:
		return "Unknown"
	}
}

// SupervisorStrategy 监督策略接口
type SupervisorStrategy interface {
	// HandleFailure 处理 Actor 失败
	// 返回应该采取的指令，可以是 Directive 或 DirectiveWithDelay
	HandleFailure(system *System, child *PID, err any) any
}

// ============== 内置监督策略 ==============

// Decider 决策函数类型
type Decider func(err any) Directive

// OneForOneStrategy 一对一策略
// 时间窗口内超过最大重启次数后改为停止
type OneForOneStrategy struct {
	MaxRestarts    int           // 最大重启次数
	WithinDuration time.Duration // 时间窗口
	Decider        Decider       // 决策函数

	mu            sync.Mutex
	restartWindow []time.Time
}

// NewOneForOneStrategy 创建一对一策略
func NewOneForOneStrategy(maxRestarts int, within time.Duration, decider Decider) *OneForOneStrategy {
	if decider == nil {
		decider = DefaultDecider
	}
	return &OneForOneStrategy{
		MaxRestarts:    maxRestarts,
		WithinDuration: within,
		Decider:        decider,
		restartWindow:  make([]time.Time, 0),
	}
}

// HandleFailure 实现 SupervisorStrategy
func (s *OneForOneStrategy) HandleFailure(_ *System, _ *PID, err any) any {
	directive := s.Decider(err)
	if directive != DirectiveRestart {
		return directive
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-s.WithinDuration)

	valid := s.restartWindow[:0]
	for _, t := range s.restartWindow {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	s.restartWindow = valid

	if len(s.restartWindow) >= s.MaxRestarts {
		return DirectiveStop
	}
	s.restartWindow = append(s.restartWindow, now)
	return directive
}

// ExponentialBackoffStrategy 指数退避策略
// 重启间隔逐渐增加
type ExponentialBackoffStrategy struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxRestarts  int
	Decider      Decider

	mu           sync.Mutex
	currentDelay time.Duration
	restartCount int
}

// NewExponentialBackoffStrategy 创建指数退避策略
func NewExponentialBackoffStrategy(initialDelay, maxDelay time.Duration, maxRestarts int, decider Decider) *ExponentialBackoffStrategy {
	if decider == nil {
		decider = DefaultDecider
	}
	return &ExponentialBackoffStrategy{
		InitialDelay: initialDelay,
		MaxDelay:     maxDelay,
		MaxRestarts:  maxRestarts,
		Decider:      decider,
		currentDelay: initialDelay,
	}
}

// HandleFailure 实现 SupervisorStrategy
func (s *ExponentialBackoffStrategy) HandleFailure(_ *System, _ *PID, err any) any {
	directive := s.Decider(err)
	if directive != DirectiveRestart {
		return directive
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restartCount >= s.MaxRestarts {
		return DirectiveStop
	}

	delay := s.currentDelay
	s.currentDelay *= 2
	if s.currentDelay > s.MaxDelay {
		s.currentDelay = s.MaxDelay
	}
	s.restartCount++

	return DirectiveWithDelay{
		Directive: DirectiveRestart,
		Delay:     delay,
	}
}

// Reset 重置退避状态
func (s *ExponentialBackoffStrategy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentDelay = s.InitialDelay
	s.restartCount = 0
}

// ============== 默认策略和决策器 ==============

// DefaultDecider 对所有错误采取重启
func DefaultDecider(_ any) Directive {
	return DirectiveRestart
}

// StoppingDecider 对所有错误采取停止
func StoppingDecider(_ any) Directive {
	return DirectiveStop
}

// ResumingDecider 对所有错误采取恢复（保留跳过缓存继续运行）
func ResumingDecider(_ any) Directive {
	return DirectiveResume
}

// DefaultSupervisorStrategy 默认监督策略
// 允许 3 次重启在 1 分钟内
func DefaultSupervisorStrategy() SupervisorStrategy {
	return NewOneForOneStrategy(3, time.Minute, DefaultDecider)
}

// StrictSupervisorStrategy 严格监督策略
// 任何失败都停止 Actor
func StrictSupervisorStrategy() SupervisorStrategy {
	return NewOneForOneStrategy(0, time.Second, StoppingDecider)
}

// LenientSupervisorStrategy 宽松监督策略
func LenientSupervisorStrategy() SupervisorStrategy {
	return NewOneForOneStrategy(10, 5*time.Minute, DefaultDecider)
}

// ============== 组合策略 ==============

// CompositeStrategy 组合策略
// 根据错误信息选择不同的策略
type CompositeStrategy struct {
	strategies map[string]SupervisorStrategy
	fallback   SupervisorStrategy
}

// NewCompositeStrategy 创建组合策略
func NewCompositeStrategy(fallback SupervisorStrategy) *CompositeStrategy {
	if fallback == nil {
		fallback = DefaultSupervisorStrategy()
	}
	return &CompositeStrategy{
		strategies: make(map[string]SupervisorStrategy),
		fallback:   fallback,
	}
}

// RegisterStrategy 注册特定错误信息的策略
func (s *CompositeStrategy) RegisterStrategy(errMsg string, strategy SupervisorStrategy) {
	s.strategies[errMsg] = strategy
}

// HandleFailure 实现 SupervisorStrategy
func (s *CompositeStrategy) HandleFailure(system *System, child *PID, err any) any {
	var key string
	switch e := err.(type) {
	case error:
		key = e.Error()
	case string:
		key = e
	}
	if strategy, found := s.strategies[key]; found {
		return strategy.HandleFailure(system, child, err)
	}
	return s.fallback.HandleFailure(system, child, err)
}

// ============== 监督树 ==============

// SupervisorConfig 监督配置
type SupervisorConfig struct {
	// Strategy 决定异常退出的子 Actor 是否重新创建，nil 使用默认策略
	Strategy SupervisorStrategy
	Children []ChildSpec
}

// ChildSpec 子 Actor 规格
type ChildSpec struct {
	Name    string
	Factory func() Actor
	Props   *Props
}

// SupervisorActor 监督者 Actor
//
// 捕获 EXIT 信号，与每个子 Actor 链接；子 Actor 以 normal 或 user_shutdown
// 以外的原因退出时按 Strategy 重新创建。Strategy 给出停止指令时，
// 监督者以 unhandled_exception 原因退出，链接的其余子 Actor 随之退出。
type SupervisorActor struct {
	config *SupervisorConfig

	mu       sync.RWMutex
	children map[string]*PID
	specs    map[string]ChildSpec
}

// NewSupervisorActor 创建监督者 Actor
func NewSupervisorActor(config *SupervisorConfig) *SupervisorActor {
	if config.Strategy == nil {
		config.Strategy = DefaultSupervisorStrategy()
	}
	specs := make(map[string]ChildSpec, len(config.Children))
	for _, spec := range config.Children {
		specs[spec.Name] = spec
	}
	return &SupervisorActor{
		config:   config,
		children: make(map[string]*PID),
		specs:    specs,
	}
}

// Act 实现 Actor 接口
func (s *SupervisorActor) Act(self *Context) {
	self.SetTrapExit(true)
	for _, spec := range s.config.Children {
		s.start(self, spec)
	}

	for {
		err := self.Receive(receive.MatchFunc(func(msg message.Tuple) bool {
			if tag, value, ok := msg.Signal(); ok && tag == message.AtomExit {
				s.exited(self, self.Sender(), message.ExitReason(value))
			}
			return true
		}))
		if err != nil {
			return
		}
	}
}

func (s *SupervisorActor) start(self *Context, spec ChildSpec) {
	props := DefaultProps(spec.Name)
	if spec.Props != nil {
		p := *spec.Props
		p.Name = spec.Name
		props = &p
	}
	pid := self.SpawnLink(spec.Factory(), props)

	s.mu.Lock()
	s.children[spec.Name] = pid
	s.mu.Unlock()
}

func (s *SupervisorActor) exited(self *Context, who *PID, reason message.ExitReason) {
	if who == nil {
		return
	}
	spec, ok := s.specs[who.ID]
	if !ok {
		// 非子 Actor 的链接（例如上级）异常退出，监督者随之退出
		if reason != message.Normal {
			self.Quit(reason)
		}
		return
	}

	s.mu.Lock()
	delete(s.children, who.ID)
	s.mu.Unlock()

	if reason == message.Normal || reason == message.UserShutdown {
		return
	}

	directive := DirectiveStop
	var delay time.Duration
	switch r := s.config.Strategy.HandleFailure(self.System(), who, &ExitError{Reason: reason}).(type) {
	case DirectiveWithDelay:
		directive, delay = r.Directive, r.Delay
	case Directive:
		directive = r
	}

	switch directive {
	case DirectiveRestart, DirectiveResume:
		if delay > 0 {
			// 等待期间到达的 EXIT 留在跳过缓存中
			wait := receive.NewBehavior(receive.MatchFunc(func(message.Tuple) bool { return false }))
			if self.ReceiveWithTimeout(wait.After(delay, func() {})) != nil {
				return
			}
		}
		self.Logger().Info("restarting child", "child", spec.Name, "reason", reason.String())
		s.start(self, spec)
	default:
		self.Logger().Warn("child failed, supervisor giving up", "child", spec.Name, "reason", reason.String())
		self.Quit(message.UnhandledException)
	}
}

// GetChild 获取子 Actor
func (s *SupervisorActor) GetChild(name string) *PID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.children[name]
}
