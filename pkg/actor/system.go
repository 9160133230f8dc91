package actor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lwmacct/251217-go-pkg-receive/pkg/mailbox"
	"github.com/lwmacct/251217-go-pkg-receive/pkg/message"
	"github.com/lwmacct/251217-go-pkg-receive/pkg/receive"
)

// System Actor 系统
// 管理所有 Actor 的生命周期、消息投递、链接和监督
type System struct {
	name string

	// Actor 注册表
	actors   map[string]*actorCell
	actorsMu sync.RWMutex

	// 死信队列（无法投递的消息）
	deadLetters chan deadLetter

	// 生命周期控制
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning atomic.Bool

	config *SystemConfig
	stats  *SystemStats
	logger *slog.Logger
}

// SystemConfig 系统配置
type SystemConfig struct {
	// DeadLetterSize 死信队列大小
	DeadLetterSize int
	// DefaultActorMailboxSize 默认 Actor 邮箱容量，<= 0 表示不限容量
	DefaultActorMailboxSize int
	// EnableDeadLetterLogging 是否记录死信
	EnableDeadLetterLogging bool
	// PanicHandler Actor 处理函数 panic 时调用，nil 时记录日志
	PanicHandler func(actor *PID, err any)
	// Observer 为每个 Actor 创建额外的接收引擎观察者（如 Prometheus 指标）
	Observer func(actor *PID) receive.Observer
	// Logger 自定义日志器
	Logger *slog.Logger
}

// DefaultSystemConfig 默认系统配置
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DeadLetterSize:          1000,
		DefaultActorMailboxSize: 0,
		EnableDeadLetterLogging: true,
	}
}

// SystemStats 系统统计
type SystemStats struct {
	TotalActors   int64
	TotalMessages int64
	DeadLetters   int64
	Restarts      int64
	StartTime     time.Time
}

// actorCell Actor 单元，包含 Actor 及其运行时状态
type actorCell struct {
	pid    *PID
	ctx    *Context
	body   func(*Context)
	scoped bool

	links   map[string]*PID
	linksMu sync.Mutex

	restarts   int
	supervisor SupervisorStrategy
	stats      *ReceiveStats

	done chan struct{}
}

// deadLetter 死信
type deadLetter struct {
	target  string
	sender  string
	payload message.Tuple
	reason  error
}

// NewSystem 创建新的 Actor 系统
func NewSystem(name string) *System {
	return NewSystemWithConfig(name, DefaultSystemConfig())
}

// NewSystemWithConfig 使用配置创建 Actor 系统
func NewSystemWithConfig(name string, config *SystemConfig) *System {
	if config == nil {
		config = DefaultSystemConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &System{
		name:        name,
		actors:      make(map[string]*actorCell),
		deadLetters: make(chan deadLetter, max(config.DeadLetterSize, 1)),
		ctx:         ctx,
		cancel:      cancel,
		config:      config,
		logger:      logger,
		stats: &SystemStats{
			StartTime: time.Now(),
		},
	}

	s.isRunning.Store(true)

	// 启动死信处理器
	if config.EnableDeadLetterLogging {
		s.wg.Add(1)
		go s.deadLetterHandler()
	}

	s.logger.Info("actor system started", "name", name)
	return s
}

// Name 返回系统名称
func (s *System) Name() string {
	return s.name
}

// ════════════════════════════════════════════════════════════════════════════
// 创建
// ════════════════════════════════════════════════════════════════════════════

// Spawn 创建阻塞式 Actor，name 为空时自动生成
func (s *System) Spawn(a Actor, name string) *PID {
	return s.SpawnWithProps(a, DefaultProps(name))
}

// SpawnWithProps 使用属性创建阻塞式 Actor
func (s *System) SpawnWithProps(a Actor, props *Props) *PID {
	return s.spawn(props, blockingBody(a), receive.Nestable, nil)
}

// SpawnEvent 创建事件驱动 Actor
func (s *System) SpawnEvent(a EventActor, name string) *PID {
	return s.SpawnEventWithProps(a, DefaultProps(name))
}

// SpawnEventWithProps 使用属性创建事件驱动 Actor
func (s *System) SpawnEventWithProps(a EventActor, props *Props) *PID {
	return s.spawn(props, eventBody(a), receive.Sequential, nil)
}

// NewScoped 创建作用域上下文，让普通 goroutine（main、测试）使用选择性接收
// 调用方负责 Close；作用域上下文只能在创建它的 goroutine 中接收
func (s *System) NewScoped(name string) *Scoped {
	if name == "" {
		name = "scoped-" + uuid.NewString()
	}
	cell := s.newCell(DefaultProps(name), nil, receive.Nestable)
	for !s.register(cell, nil) {
		cell = s.newCell(DefaultProps(name+"-"+uuid.NewString()), nil, receive.Nestable)
	}
	cell.scoped = true
	return &Scoped{Context: cell.ctx, cell: cell}
}

func blockingBody(a Actor) func(*Context) {
	return a.Act
}

func (s *System) newCell(props *Props, body func(*Context), policy receive.Policy) *actorCell {
	if props == nil {
		props = DefaultProps("")
	}
	name := props.Name
	if name == "" {
		name = "actor-" + uuid.NewString()
	}

	size := props.MailboxSize
	if size <= 0 {
		size = s.config.DefaultActorMailboxSize
	}

	pid := &PID{ID: name, system: s}
	cell := &actorCell{
		pid:        pid,
		body:       body,
		links:      make(map[string]*PID),
		supervisor: props.SupervisorStrategy,
		stats:      NewReceiveStats(),
		done:       make(chan struct{}),
	}

	pid.cell = cell

	ctx := newContext(s, pid, mailbox.New(size), props.TrapExit)
	observers := []receive.Observer{cell.stats}
	if s.config.Observer != nil {
		observers = append(observers, s.config.Observer(pid))
	}
	ctx.engine = receive.New(ctx, policy,
		receive.WithObserver(receive.Observers(observers...)),
		receive.WithLogger(ctx.logger))
	cell.ctx = ctx
	return cell
}

// register 注册 Actor，名称已存在时返回 false
func (s *System) register(cell *actorCell, linkTo *PID) bool {
	s.actorsMu.Lock()
	defer s.actorsMu.Unlock()

	if _, exists := s.actors[cell.pid.ID]; exists {
		return false
	}
	s.actors[cell.pid.ID] = cell
	atomic.AddInt64(&s.stats.TotalActors, 1)

	if linkTo != nil {
		if other, ok := s.actors[linkTo.ID]; ok {
			other.linksMu.Lock()
			if other.links != nil {
				other.links[cell.pid.ID] = cell.pid
				cell.links[linkTo.ID] = other.pid
			}
			other.linksMu.Unlock()
		}
	}
	return true
}

func (s *System) spawn(props *Props, body func(*Context), policy receive.Policy, linkTo *PID) *PID {
	cell := s.newCell(props, body, policy)

	if !s.register(cell, linkTo) {
		s.logger.Warn("actor already exists, returning existing PID", "name", cell.pid.ID)
		pid, _ := s.GetActor(cell.pid.ID)
		return pid
	}

	s.wg.Add(1)
	go s.run(cell)

	s.logger.Debug("spawned actor", "name", cell.pid.ID, "policy", policy.String(), "linked", linkTo)
	return cell.pid
}

// ════════════════════════════════════════════════════════════════════════════
// 投递
// ════════════════════════════════════════════════════════════════════════════

// Send 发送异步消息（无发送者）
func (s *System) Send(target *PID, values ...any) error {
	return s.send(target, message.Of(values...), 0, "")
}

// TrySend 尝试发送消息，失败时返回 false
func (s *System) TrySend(target *PID, values ...any) bool {
	return s.Send(target, values...) == nil
}

// send 投递一条消息，无法投递的消息进入死信
func (s *System) send(target *PID, payload message.Tuple, seq message.SequenceID, sender string) error {
	if !s.isRunning.Load() {
		return ErrNotRunning
	}
	if target == nil {
		return ErrNotFound
	}

	s.actorsMu.RLock()
	cell, exists := s.actors[target.ID]
	s.actorsMu.RUnlock()

	if !exists {
		s.deadLetter(target.ID, sender, payload, ErrNotFound)
		return fmt.Errorf("send to %s: %w", target.ID, ErrNotFound)
	}

	n := mailbox.NewNode(payload, seq, sender)
	if err := cell.ctx.mb.Enqueue(n); err != nil {
		mailbox.Release(n)
		s.deadLetter(target.ID, sender, payload, err)
		return fmt.Errorf("send to %s: %w", target.ID, err)
	}
	atomic.AddInt64(&s.stats.TotalMessages, 1)
	return nil
}

// Broadcast 广播消息到所有 Actor
func (s *System) Broadcast(values ...any) {
	s.BroadcastWithFilter(func(*PID) bool { return true }, values...)
}

// BroadcastWithFilter 带过滤条件的广播
func (s *System) BroadcastWithFilter(filter func(*PID) bool, values ...any) {
	s.actorsMu.RLock()
	pids := make([]*PID, 0, len(s.actors))
	for _, cell := range s.actors {
		if filter(cell.pid) {
			pids = append(pids, cell.pid)
		}
	}
	s.actorsMu.RUnlock()

	for _, pid := range pids {
		s.TrySend(pid, values...)
	}
}

// Request 同步请求（等待响应）
// 通过临时作用域上下文发送，响应以外的消息不会被看到
func (s *System) Request(target *PID, timeout time.Duration, values ...any) (message.Tuple, error) {
	if !s.isRunning.Load() {
		return nil, ErrNotRunning
	}
	scoped := s.NewScoped("")
	defer scoped.Close()
	return scoped.Ask(target, timeout, values...)
}

func (s *System) deadLetter(target, sender string, payload message.Tuple, reason error) {
	atomic.AddInt64(&s.stats.DeadLetters, 1)
	if !s.config.EnableDeadLetterLogging {
		return
	}
	select {
	case s.deadLetters <- deadLetter{target: target, sender: sender, payload: payload, reason: reason}:
	default:
	}
}

// deadLetterHandler 死信处理器
func (s *System) deadLetterHandler() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case dl := <-s.deadLetters:
			s.logger.Warn("dead letter",
				"message", dl.payload.String(),
				"target", dl.target,
				"sender", dl.sender,
				"reason", dl.reason)
		}
	}
}

// ════════════════════════════════════════════════════════════════════════════
// 链接
// ════════════════════════════════════════════════════════════════════════════

func (s *System) link(a, b *PID) error {
	s.actorsMu.RLock()
	ca, okA := s.actors[a.ID]
	cb, okB := s.actors[b.ID]
	s.actorsMu.RUnlock()

	if !okA || !okB {
		return fmt.Errorf("link %s to %s: %w", a.ID, b.ID, ErrNotFound)
	}
	if ca == cb {
		return nil
	}

	// 固定加锁顺序
	first, second := ca, cb
	if first.pid.ID > second.pid.ID {
		first, second = second, first
	}
	first.linksMu.Lock()
	defer first.linksMu.Unlock()
	second.linksMu.Lock()
	defer second.linksMu.Unlock()

	// links 为 nil 表示 Actor 已进入终止清理
	if ca.links == nil || cb.links == nil {
		return fmt.Errorf("link %s to %s: %w", a.ID, b.ID, ErrNotFound)
	}
	ca.links[b.ID] = cb.pid
	cb.links[a.ID] = ca.pid
	return nil
}

func (s *System) unlink(a, b *PID) {
	s.actorsMu.RLock()
	ca, okA := s.actors[a.ID]
	cb, okB := s.actors[b.ID]
	s.actorsMu.RUnlock()

	if okA {
		ca.linksMu.Lock()
		delete(ca.links, b.ID)
		ca.linksMu.Unlock()
	}
	if okB {
		cb.linksMu.Lock()
		delete(cb.links, a.ID)
		cb.linksMu.Unlock()
	}
}

// ════════════════════════════════════════════════════════════════════════════
// 运行与监督
// ════════════════════════════════════════════════════════════════════════════

// run Actor 执行循环：运行主体，失败时交给监督策略
func (s *System) run(cell *actorCell) {
	defer s.wg.Done()
	defer s.finish(cell)

	for {
		f := s.runBody(cell)
		if f == nil || cell.ctx.Exiting() {
			return
		}
		if !s.handleFailure(cell, f) {
			return
		}
	}
}

// failure 一次 panic 的值及其调用栈
type failure struct {
	err   any
	stack []byte
}

// runBody 运行一次 Actor 主体
// *receive.Fault 表示引擎状态已不可推理，记录后继续 panic，不交给监督策略
func (s *System) runBody(cell *actorCell) (f *failure) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if fault, ok := receive.AsFault(r); ok {
			s.logger.Error("receive fault",
				"actor", cell.pid.ID,
				"op", fault.Op,
				"reason", fault.Reason,
				"stack", fault.Stack())
			panic(fault)
		}
		f = &failure{err: r, stack: debug.Stack()}
	}()

	cell.body(cell.ctx)
	return nil
}

// handleFailure 处理 Actor 失败，返回是否继续运行
func (s *System) handleFailure(cell *actorCell, f *failure) bool {
	cell.stats.recordFailure()
	if s.config.PanicHandler != nil {
		s.config.PanicHandler(cell.pid, f.err)
	} else {
		s.logger.Error("panic in actor",
			"actor", cell.pid.ID,
			"error", f.err,
			"stack", string(f.stack))
	}

	supervisor := cell.supervisor
	if supervisor == nil {
		supervisor = DefaultSupervisorStrategy()
		cell.supervisor = supervisor
	}

	directive := DirectiveStop
	var delay time.Duration
	switch r := supervisor.HandleFailure(s, cell.pid, f.err).(type) {
	case DirectiveWithDelay:
		directive, delay = r.Directive, r.Delay
	case Directive:
		directive = r
	}

	return s.applyDirective(cell, directive, delay)
}

// applyDirective 应用监督指令
func (s *System) applyDirective(cell *actorCell, directive Directive, delay time.Duration) bool {
	ctx := cell.ctx
	switch directive {
	case DirectiveResume:
		ctx.resetState()
		s.logger.Debug("actor resumed after failure", "actor", cell.pid.ID, "cached", ctx.CacheLen())
		return true

	case DirectiveRestart:
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.mb.Done():
				return false
			}
		}
		ctx.resetState()
		released := ctx.engine.Reset()
		ctx.initialized = false
		ctx.behaviors = nil
		cell.restarts++
		atomic.AddInt64(&s.stats.Restarts, 1)
		s.logger.Info("actor restarted",
			"actor", cell.pid.ID,
			"restarts", cell.restarts,
			"released", released)
		return true

	default:
		ctx.Terminate(message.UnhandledException)
		return false
	}
}

// finish 终止清理：释放缓存与邮箱中的全部节点，通知链接的 Actor
func (s *System) finish(cell *actorCell) {
	ctx := cell.ctx
	ctx.Terminate(message.Normal)
	reason := ctx.ExitReason()

	s.actorsMu.Lock()
	if s.actors[cell.pid.ID] == cell {
		delete(s.actors, cell.pid.ID)
		atomic.AddInt64(&s.stats.TotalActors, -1)
	}
	s.actorsMu.Unlock()

	ctx.stopTimer()
	// 终止原因可能由其他 goroutine 写入，等待其关闭邮箱后再清空
	ctx.mb.Close()
	released := ctx.engine.Reset()
	released += ctx.mb.Drain(mailbox.Release)

	cell.linksMu.Lock()
	links := make([]*PID, 0, len(cell.links))
	for _, pid := range cell.links {
		links = append(links, pid)
	}
	cell.links = nil
	cell.linksMu.Unlock()

	for _, pid := range links {
		s.unlink(cell.pid, pid)
		_ = s.send(pid, message.Exit(reason), 0, cell.pid.ID)
	}

	close(cell.done)
	s.logger.Debug("actor stopped",
		"actor", cell.pid.ID,
		"reason", reason.String(),
		"released", released,
		"links", len(links))
}

// ════════════════════════════════════════════════════════════════════════════
// 停止
// ════════════════════════════════════════════════════════════════════════════

// Stop 以 user_shutdown 原因停止 Actor
func (s *System) Stop(pid *PID) {
	if cell, ok := s.cell(pid); ok {
		cell.ctx.Terminate(message.UserShutdown)
	}
}

// StopGracefully 停止 Actor 并等待清理完成
func (s *System) StopGracefully(pid *PID, timeout time.Duration) error {
	cell, ok := s.cell(pid)
	if !ok {
		return nil
	}
	cell.ctx.Terminate(message.UserShutdown)
	if cell.scoped {
		return nil
	}

	select {
	case <-cell.done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for actor %s to stop", pid.ID)
	}
}

// Wait 等待 Actor 终止，返回退出原因
func (s *System) Wait(pid *PID, timeout time.Duration) (message.ExitReason, error) {
	cell, ok := s.cell(pid)
	if !ok {
		return message.NotExited, fmt.Errorf("wait for %s: %w", pid, ErrNotFound)
	}
	select {
	case <-cell.done:
		return cell.ctx.ExitReason(), nil
	case <-time.After(timeout):
		return message.NotExited, fmt.Errorf("timeout waiting for actor %s to stop", pid.ID)
	}
}

// Shutdown 关闭整个 Actor 系统
func (s *System) Shutdown() {
	s.ShutdownWithTimeout(30 * time.Second)
}

// ShutdownWithTimeout 带超时的关闭
func (s *System) ShutdownWithTimeout(timeout time.Duration) {
	if !s.isRunning.Swap(false) {
		return
	}
	s.logger.Info("actor system shutting down", "name", s.name)

	s.actorsMu.RLock()
	cells := make([]*actorCell, 0, len(s.actors))
	for _, cell := range s.actors {
		cells = append(cells, cell)
	}
	s.actorsMu.RUnlock()

	for _, cell := range cells {
		cell.ctx.Terminate(message.UserShutdown)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	// 死信处理器最后退出
	s.cancel()

	select {
	case <-done:
		s.logger.Info("actor system shutdown complete", "name", s.name)
	case <-time.After(timeout):
		s.logger.Warn("actor system shutdown timeout, forcing exit", "name", s.name)
	}
}

// ════════════════════════════════════════════════════════════════════════════
// 查询
// ════════════════════════════════════════════════════════════════════════════

func (s *System) cell(pid *PID) (*actorCell, bool) {
	if pid == nil {
		return nil, false
	}
	if pid.cell != nil && pid.cell.pid.system == s {
		return pid.cell, true
	}
	s.actorsMu.RLock()
	defer s.actorsMu.RUnlock()
	cell, ok := s.actors[pid.ID]
	return cell, ok
}

// Stats 获取统计信息
func (s *System) Stats() *SystemStats {
	return &SystemStats{
		TotalActors:   atomic.LoadInt64(&s.stats.TotalActors),
		TotalMessages: atomic.LoadInt64(&s.stats.TotalMessages),
		DeadLetters:   atomic.LoadInt64(&s.stats.DeadLetters),
		Restarts:      atomic.LoadInt64(&s.stats.Restarts),
		StartTime:     s.stats.StartTime,
	}
}

// ActorStats 获取 Actor 的接收统计
func (s *System) ActorStats(pid *PID) (*ActorStats, bool) {
	cell, ok := s.cell(pid)
	if !ok {
		return nil, false
	}
	return cell.stats.Stats(), true
}

// GetActor 获取 Actor
func (s *System) GetActor(name string) (*PID, bool) {
	s.actorsMu.RLock()
	defer s.actorsMu.RUnlock()

	if cell, ok := s.actors[name]; ok {
		return cell.pid, true
	}
	return nil, false
}

// ListActors 列出所有 Actor
func (s *System) ListActors() []*PID {
	s.actorsMu.RLock()
	defer s.actorsMu.RUnlock()

	pids := make([]*PID, 0, len(s.actors))
	for _, cell := range s.actors {
		pids = append(pids, cell.pid)
	}
	return pids
}

// Count 返回 Actor 数量
func (s *System) Count() int {
	s.actorsMu.RLock()
	defer s.actorsMu.RUnlock()
	return len(s.actors)
}

// IsRunning 检查系统是否运行中
func (s *System) IsRunning() bool {
	return s.isRunning.Load()
}
