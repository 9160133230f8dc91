package actor

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251217-go-pkg-receive/pkg/mailbox"
	"github.com/lwmacct/251217-go-pkg-receive/pkg/message"
	"github.com/lwmacct/251217-go-pkg-receive/pkg/receive"
)

// ============== 测试辅助 ==============

const (
	ping message.Atom = "ping"
	pong message.Atom = "pong"
	boom message.Atom = "boom"
	done message.Atom = "done"
)

// await 在作用域上下文中等待首元素为 tag 的消息
func await(t *testing.T, self *Scoped, tag message.Atom) message.Tuple {
	t.Helper()
	var got message.Tuple
	timedOut := false
	b := receive.NewBehavior(On(tag, func(msg message.Tuple) { got = msg })).
		After(2*time.Second, func() { timedOut = true })
	require.NoError(t, self.ReceiveWithTimeout(b))
	require.False(t, timedOut, "timed out waiting for %s", tag)
	return got
}

// idle 阻塞直到退出，期间到达的消息全部留在缓存中
func idle(self *Context) {
	_ = self.Receive(receive.MatchFunc(func(message.Tuple) bool { return false }))
}

func echoActor() Actor {
	return ActorFunc(func(self *Context) {
		for {
			err := self.Receive(On(ping, func(message.Tuple) {
				_ = self.Reply(pong)
			}))
			if err != nil {
				return
			}
		}
	})
}

// ============== 系统 ==============

func TestNewSystem(t *testing.T) {
	sys := NewSystem("test")
	require.NotNil(t, sys)
	assert.Equal(t, "test", sys.Name())
	assert.True(t, sys.IsRunning())

	sys.Shutdown()
	assert.False(t, sys.IsRunning())
	assert.ErrorIs(t, sys.Send(&PID{ID: "x"}, ping), ErrNotRunning)
}

func TestSpawn(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	pid := sys.Spawn(ActorFunc(idle), "worker")
	assert.Equal(t, "worker", pid.ID)
	assert.Equal(t, "worker", pid.String())

	found, ok := sys.GetActor("worker")
	require.True(t, ok)
	assert.Same(t, pid, found)

	// 重名返回已有 PID
	again := sys.Spawn(ActorFunc(idle), "worker")
	assert.Same(t, pid, again)

	anon := sys.Spawn(ActorFunc(idle), "")
	assert.Contains(t, anon.ID, "actor-")
	assert.Equal(t, 2, sys.Count())
	assert.Len(t, sys.ListActors(), 2)
}

func TestSend_DeadLetters(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	err := sys.Send(&PID{ID: "nobody"}, ping)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 1, sys.Stats().DeadLetters)
}

func TestSend_MailboxFull(t *testing.T) {
	cfg := DefaultSystemConfig()
	cfg.DefaultActorMailboxSize = 1
	sys := NewSystemWithConfig("test", cfg)
	defer sys.Shutdown()

	self := sys.NewScoped("main")
	defer self.Close()

	require.NoError(t, sys.Send(self.Self, ping))
	err := sys.Send(self.Self, ping)
	assert.ErrorIs(t, err, mailbox.ErrFull)
	assert.False(t, sys.TrySend(self.Self, ping))
	assert.EqualValues(t, 2, sys.Stats().DeadLetters)
}

func TestBroadcast(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	a := sys.NewScoped("a")
	defer a.Close()
	b := sys.NewScoped("b")
	defer b.Close()

	sys.Broadcast(ping, 1)
	assert.Equal(t, 1, await(t, a, ping).At(1))
	assert.Equal(t, 1, await(t, b, ping).At(1))

	sys.BroadcastWithFilter(func(pid *PID) bool { return pid.ID == "b" }, pong)
	await(t, b, pong)
	assert.EqualValues(t, 0, a.mb.Len())
}

func TestShutdown_StopsAllActors(t *testing.T) {
	sys := NewSystem("test")
	for range 3 {
		sys.Spawn(ActorFunc(idle), "")
	}
	require.Equal(t, 3, sys.Count())

	sys.ShutdownWithTimeout(time.Second)
	assert.Equal(t, 0, sys.Count())
}

// ============== 选择性接收 ==============

func TestActor_SelectiveReceive(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	self := sys.NewScoped("main")
	defer self.Close()

	pid := sys.Spawn(ActorFunc(func(ctx *Context) {
		var order []message.Atom
		for _, want := range []message.Atom{"second", "first"} {
			if err := ctx.Receive(On(want, func(message.Tuple) { order = append(order, want) })); err != nil {
				return
			}
		}
		_ = ctx.Send(self.Self, done, order)
	}), "selective")

	require.NoError(t, self.Send(pid, message.Atom("first")))
	require.NoError(t, self.Send(pid, message.Atom("second")))

	got := await(t, self, done)
	assert.Equal(t, []message.Atom{"second", "first"}, got.At(1))

	reason, err := sys.Wait(pid, time.Second)
	require.NoError(t, err)
	assert.Equal(t, message.Normal, reason)
}

func TestScoped_ReceiveWithTimeout(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	self := sys.NewScoped("")
	defer self.Close()
	assert.Contains(t, self.Self.ID, "scoped-")

	require.NoError(t, sys.Send(self.Self, message.Atom("noise")))

	fired := 0
	err := self.ReceiveWithTimeout(receive.NewBehavior(On(ping, func(message.Tuple) {})).
		After(20*time.Millisecond, func() { fired++ }))
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 1, self.CacheLen())
}

// ============== 请求/响应 ==============

func TestRequest(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	pid := sys.Spawn(echoActor(), "echo")

	resp, err := sys.Request(pid, time.Second, ping)
	require.NoError(t, err)
	assert.True(t, resp.Is(pong))

	tag, err := RequestAs[message.Atom](sys, pid, time.Second, ping)
	require.NoError(t, err)
	assert.Equal(t, pong, tag)

	_, err = RequestAs[int](sys, pid, time.Second, ping)
	assert.ErrorIs(t, err, ErrUnexpectedResponse)

	resp, err = pid.Request(time.Second, ping)
	require.NoError(t, err)
	assert.True(t, resp.Is(pong))
}

func TestRequest_Timeout(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	pid := sys.Spawn(ActorFunc(idle), "silent")

	_, err := sys.Request(pid, 30*time.Millisecond, ping)
	var timeout *ResponseTimeout
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, pid.ID, timeout.Target.ID)
	assert.Equal(t, 30*time.Millisecond, timeout.Timeout)
}

func TestAsk_LateResponseDropped(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	self := sys.NewScoped("main")
	defer self.Close()

	slow := sys.Spawn(ActorFunc(func(ctx *Context) {
		_ = ctx.Receive(On(ping, func(message.Tuple) {
			time.Sleep(50 * time.Millisecond)
			_ = ctx.Reply(pong)
		}))
		idle(ctx)
	}), "slow")

	_, err := self.Ask(slow, 10*time.Millisecond, ping)
	var timeout *ResponseTimeout
	require.ErrorAs(t, err, &timeout)

	// 迟到的响应被静默丢弃，不会交给普通处理函数
	assert.Eventually(t, func() bool { return self.mb.Len() == 1 }, time.Second, 5*time.Millisecond)
	fired := 0
	require.NoError(t, self.ReceiveWithTimeout(receive.NewBehavior(receive.MatchFunc(func(message.Tuple) bool {
		return true
	})).After(0, func() { fired++ })))
	assert.Equal(t, 1, fired)

	stats, ok := sys.ActorStats(self.Self)
	require.True(t, ok)
	assert.EqualValues(t, 1, stats.ExpiredResponses)
}

func TestSyncSend_SupersededResponseExpires(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	self := sys.NewScoped("main")
	defer self.Close()

	pid := sys.Spawn(echoActor(), "echo")

	first, err := self.SyncSend(pid, ping, 1)
	require.NoError(t, err)
	second, err := self.SyncSend(pid, ping, 2)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// 第一个请求的响应先到达，已被第二个请求取代
	resp, err := self.ReceiveResponse(pid, second, time.Second)
	require.NoError(t, err)
	assert.True(t, resp.Is(pong))
	assert.Zero(t, self.CacheLen())

	stats, ok := sys.ActorStats(self.Self)
	require.True(t, ok)
	assert.EqualValues(t, 1, stats.ExpiredResponses)
	assert.Zero(t, stats.Cached)
	assert.False(t, self.AwaitsResponse(second))
}

func TestAsk_OtherMessagesStayCached(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	self := sys.NewScoped("main")
	defer self.Close()

	chatty := sys.Spawn(ActorFunc(func(ctx *Context) {
		_ = ctx.Receive(On(ping, func(message.Tuple) {
			sender := ctx.Sender()
			_ = ctx.Send(sender, message.Atom("note"))
			_ = ctx.Reply(pong)
		}))
		idle(ctx)
	}), "chatty")

	v, err := AskAs[message.Atom](self.Context, chatty, time.Second, ping)
	require.NoError(t, err)
	assert.Equal(t, pong, v)
	assert.Equal(t, 1, self.CacheLen())

	await(t, self, "note")
	assert.Zero(t, self.CacheLen())
}

func TestReply_NoSender(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	self := sys.NewScoped("main")
	defer self.Close()

	require.NoError(t, sys.Send(self.Self, ping))
	var err error
	require.NoError(t, self.Receive(On(ping, func(message.Tuple) {
		assert.Nil(t, self.Sender())
		err = self.Reply(pong)
	})))
	assert.ErrorIs(t, err, ErrNoSender)
}

// ============== 链接与退出 ==============

func TestLink_TrappedExit(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	self := sys.NewScoped("main")
	defer self.Close()
	self.SetTrapExit(true)

	pid := sys.Spawn(ActorFunc(idle), "worker")
	require.NoError(t, self.Link(pid))
	sys.Stop(pid)

	var from *PID
	var reason message.ExitReason
	require.NoError(t, self.Receive(receive.MatchFunc(func(msg message.Tuple) bool {
		tag, value, ok := msg.Signal()
		if !ok || tag != message.AtomExit {
			return false
		}
		from, reason = self.Sender(), message.ExitReason(value)
		return true
	})))
	assert.Equal(t, "worker", from.ID)
	assert.Equal(t, message.UserShutdown, reason)
}

func TestLink_UntrappedExitTerminates(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	self := sys.NewScoped("main")
	defer self.Close()

	self.SpawnLink(ActorFunc(func(ctx *Context) {
		ctx.Quit(message.UserDefined + 7)
	}), DefaultProps("crasher"))

	err := self.Receive(receive.MatchFunc(func(message.Tuple) bool { return true }))
	reason, ok := IsExit(err)
	require.True(t, ok)
	assert.Equal(t, message.UserDefined+7, reason)

	// 退出后 Receive 立即返回
	assert.Error(t, self.Receive(receive.MatchFunc(func(message.Tuple) bool { return true })))
}

func TestLink_NormalExitIgnored(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	self := sys.NewScoped("main")
	defer self.Close()

	child := self.SpawnLink(ActorFunc(func(*Context) {}), DefaultProps("quiet"))
	reason, err := sys.Wait(child, time.Second)
	require.NoError(t, err)
	assert.Equal(t, message.Normal, reason)

	fired := 0
	require.NoError(t, self.ReceiveWithTimeout(receive.NewBehavior(receive.MatchFunc(func(message.Tuple) bool {
		return true
	})).After(0, func() { fired++ })))
	assert.Equal(t, 1, fired)
	assert.False(t, self.Exiting())

	stats, _ := sys.ActorStats(self.Self)
	assert.EqualValues(t, 1, stats.ExitSignals)
}

func TestLink_UnknownActor(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	self := sys.NewScoped("main")
	defer self.Close()

	assert.ErrorIs(t, self.Link(&PID{ID: "ghost"}), ErrNotFound)
}

func TestStop_ReleasesCacheAndMailbox(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	pid := sys.Spawn(ActorFunc(idle), "hoarder")
	for i := range 5 {
		require.NoError(t, sys.Send(pid, i))
	}
	assert.Eventually(t, func() bool {
		stats, _ := sys.ActorStats(pid)
		return stats.Cached == 5
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, sys.StopGracefully(pid, time.Second))
	assert.Equal(t, 0, sys.Count())

	stats, ok := sys.ActorStats(pid)
	require.True(t, ok)
	assert.Zero(t, stats.CacheSize)
	assert.EqualValues(t, 5, stats.MaxCacheSize)

	reason, err := sys.Wait(pid, time.Second)
	require.NoError(t, err)
	assert.Equal(t, message.UserShutdown, reason)
}

// ============== 事件驱动 Actor ==============

func TestEventActor_Become(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	self := sys.NewScoped("main")
	defer self.Close()

	pid := sys.SpawnEvent(EventFunc(func(ctx *Context) *receive.Behavior {
		return receive.NewBehavior(On("open", func(message.Tuple) {
			ctx.Become(receive.NewBehavior(On("data", func(msg message.Tuple) {
				_ = ctx.Send(self.Self, msg...)
			})))
		}))
	}), "gate")

	require.NoError(t, sys.Send(pid, message.Atom("data"), 1))
	require.NoError(t, sys.Send(pid, message.Atom("data"), 2))
	require.NoError(t, sys.Send(pid, message.Atom("open")))

	assert.Equal(t, 1, await(t, self, "data").At(1))
	assert.Equal(t, 2, await(t, self, "data").At(1))
}

func TestEventActor_TimeoutAndUnbecome(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	self := sys.NewScoped("main")
	defer self.Close()

	pid := sys.SpawnEvent(EventFunc(func(ctx *Context) *receive.Behavior {
		return receive.NewBehavior(On("work", func(message.Tuple) {})).
			After(20*time.Millisecond, func() {
				_ = ctx.Send(self.Self, message.Atom("idle"))
				ctx.Unbecome()
			})
	}), "idler")

	await(t, self, "idle")
	reason, err := sys.Wait(pid, time.Second)
	require.NoError(t, err)
	assert.Equal(t, message.Normal, reason)

	stats, _ := sys.ActorStats(pid)
	assert.EqualValues(t, 1, stats.TimeoutNotices)
	assert.EqualValues(t, 1, stats.TimedOut)
}

func TestEventActor_BecomeStacked(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	self := sys.NewScoped("main")
	defer self.Close()

	var base *receive.Behavior
	pid := sys.SpawnEvent(EventFunc(func(ctx *Context) *receive.Behavior {
		base = receive.NewBehavior(OneOf(
			On("push", func(message.Tuple) {
				ctx.BecomeStacked(receive.NewBehavior(On("pop", func(message.Tuple) {
					_ = ctx.Send(self.Self, message.Atom("popped"))
					ctx.Unbecome()
				})))
			}),
			On("stop", func(message.Tuple) { ctx.Unbecome() }),
		))
		return base
	}), "stacked")

	require.NoError(t, sys.Send(pid, message.Atom("push")))
	require.NoError(t, sys.Send(pid, message.Atom("pop")))
	await(t, self, "popped")

	require.NoError(t, sys.Send(pid, message.Atom("stop")))
	reason, err := sys.Wait(pid, time.Second)
	require.NoError(t, err)
	assert.Equal(t, message.Normal, reason)
}

func TestEventActor_ReceiveNotAllowed(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	var receiveErr atomic.Value
	pid := sys.SpawnEvent(EventFunc(func(ctx *Context) *receive.Behavior {
		return receive.NewBehavior(On(ping, func(message.Tuple) {
			receiveErr.Store(ctx.Receive(On(pong, func(message.Tuple) {})))
		}))
	}), "nested")

	require.NoError(t, sys.Send(pid, ping))
	reason, err := sys.Wait(pid, time.Second)
	require.NoError(t, err)
	assert.Equal(t, message.UnallowedFunctionCall, reason)

	got, ok := IsExit(receiveErr.Load().(error))
	require.True(t, ok)
	assert.Equal(t, message.UnallowedFunctionCall, got)
}

// ============== 监督 ==============

func TestSupervision_ResumeKeepsCache(t *testing.T) {
	tests := []struct {
		name     string
		strategy SupervisorStrategy
		kept     bool
	}{
		{"resume", NewOneForOneStrategy(3, time.Minute, ResumingDecider), true},
		{"restart", NewOneForOneStrategy(3, time.Minute, DefaultDecider), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := NewSystem("test")
			defer sys.Shutdown()

			self := sys.NewScoped("main")
			defer self.Close()

			var runs atomic.Int32
			pid := sys.SpawnWithProps(ActorFunc(func(ctx *Context) {
				if runs.Add(1) == 1 {
					_ = ctx.Receive(On(boom, func(message.Tuple) { panic("boom") }))
					return
				}
				_ = ctx.Receive(On("other", func(message.Tuple) {
					_ = ctx.Send(self.Self, message.Atom("kept"))
				}))
			}), DefaultProps("flaky").WithSupervisor(tt.strategy))

			require.NoError(t, sys.Send(pid, message.Atom("other")))
			require.NoError(t, sys.Send(pid, boom))

			kept := false
			require.NoError(t, self.ReceiveWithTimeout(receive.NewBehavior(On("kept", func(message.Tuple) {
				kept = true
			})).After(200*time.Millisecond, func() {})))

			assert.Equal(t, tt.kept, kept)
			assert.EqualValues(t, 2, runs.Load())

			stats, _ := sys.ActorStats(pid)
			assert.EqualValues(t, 1, stats.Failures)
			if !tt.kept {
				assert.EqualValues(t, 1, sys.Stats().Restarts)
			}
		})
	}
}

func TestSupervision_RestartServesAgain(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	var runs atomic.Int32
	pid := sys.Spawn(ActorFunc(func(ctx *Context) {
		runs.Add(1)
		for {
			err := ctx.Receive(OneOf(
				On(boom, func(message.Tuple) { panic(errors.New("boom")) }),
				On(ping, func(message.Tuple) { _ = ctx.Reply(pong) }),
			))
			if err != nil {
				return
			}
		}
	}), "restartable")

	pid.Tell(boom)
	resp, err := sys.Request(pid, time.Second, ping)
	require.NoError(t, err)
	assert.True(t, resp.Is(pong))
	assert.EqualValues(t, 2, runs.Load())
}

func TestSupervision_Stop(t *testing.T) {
	var handled atomic.Value
	cfg := DefaultSystemConfig()
	cfg.PanicHandler = func(pid *PID, err any) { handled.Store(err) }
	sys := NewSystemWithConfig("test", cfg)
	defer sys.Shutdown()

	pid := sys.SpawnWithProps(ActorFunc(func(*Context) {
		panic("fatal")
	}), DefaultProps("doomed").WithSupervisor(StrictSupervisorStrategy()))

	reason, err := sys.Wait(pid, time.Second)
	require.NoError(t, err)
	assert.Equal(t, message.UnhandledException, reason)
	assert.Equal(t, "fatal", handled.Load())
}

func TestSupervisorActor_RestartsChild(t *testing.T) {
	sys := NewSystem("test")
	defer sys.Shutdown()

	var starts atomic.Int32
	sup := NewSupervisorActor(&SupervisorConfig{
		Children: []ChildSpec{{
			Name: "worker",
			Factory: func() Actor {
				return ActorFunc(func(ctx *Context) {
					starts.Add(1)
					_ = ctx.Receive(On(boom, func(message.Tuple) { panic("boom") }))
				})
			},
			Props: DefaultProps("").WithSupervisor(StrictSupervisorStrategy()),
		}},
	})
	supPID := sys.Spawn(sup, "supervisor")

	assert.Eventually(t, func() bool {
		return starts.Load() == 1 && sup.GetChild("worker") != nil
	}, time.Second, 5*time.Millisecond)
	first := sup.GetChild("worker")

	first.Tell(boom)
	assert.Eventually(t, func() bool {
		child := sup.GetChild("worker")
		return starts.Load() == 2 && child != nil && child != first
	}, time.Second, 5*time.Millisecond)

	// 监督者停止时，链接的子 Actor 随之退出
	require.NoError(t, sys.StopGracefully(supPID, time.Second))
	assert.Eventually(t, func() bool { return sys.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestStrategies(t *testing.T) {
	t.Run("one for one limits restarts", func(t *testing.T) {
		s := NewOneForOneStrategy(2, time.Minute, nil)
		assert.Equal(t, DirectiveRestart, s.HandleFailure(nil, nil, "x"))
		assert.Equal(t, DirectiveRestart, s.HandleFailure(nil, nil, "x"))
		assert.Equal(t, DirectiveStop, s.HandleFailure(nil, nil, "x"))
	})

	t.Run("exponential backoff", func(t *testing.T) {
		s := NewExponentialBackoffStrategy(10*time.Millisecond, 25*time.Millisecond, 3, nil)
		var delays []time.Duration
		for range 3 {
			d, ok := s.HandleFailure(nil, nil, "x").(DirectiveWithDelay)
			require.True(t, ok)
			assert.Equal(t, DirectiveRestart, d.Directive)
			delays = append(delays, d.Delay)
		}
		assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 25 * time.Millisecond}, delays)
		assert.Equal(t, DirectiveStop, s.HandleFailure(nil, nil, "x"))

		s.Reset()
		d := s.HandleFailure(nil, nil, "x").(DirectiveWithDelay)
		assert.Equal(t, 10*time.Millisecond, d.Delay)
	})

	t.Run("composite", func(t *testing.T) {
		s := NewCompositeStrategy(StrictSupervisorStrategy())
		s.RegisterStrategy("transient", NewOneForOneStrategy(1, time.Minute, ResumingDecider))
		assert.Equal(t, DirectiveResume, s.HandleFailure(nil, nil, errors.New("transient")))
		assert.Equal(t, DirectiveResume, s.HandleFailure(nil, nil, "transient"))
		assert.Equal(t, DirectiveStop, s.HandleFailure(nil, nil, "fatal"))
	})

	assert.Equal(t, "Resume", DirectiveResume.String())
	assert.Equal(t, "Restart", DirectiveRestart.String())
	assert.Equal(t, "Stop", DirectiveStop.String())
	assert.Equal(t, "Unknown", Directive(9).String())
}

// ============== 辅助函数 ==============

func TestExitHelpers(t *testing.T) {
	err := &ExitError{Reason: message.UserShutdown}
	assert.Equal(t, "actor exited: user_shutdown", err.Error())

	reason, ok := IsExit(err)
	assert.True(t, ok)
	assert.Equal(t, message.UserShutdown, reason)

	assert.NoError(t, IgnoreNormalExit(err))
	assert.NoError(t, IgnoreNormalExit(&ExitError{Reason: message.Normal}))
	assert.Error(t, IgnoreNormalExit(&ExitError{Reason: message.UnhandledException}))

	plain := errors.New("plain")
	_, ok = IsExit(plain)
	assert.False(t, ok)
	assert.Equal(t, plain, IgnoreNormalExit(plain))
}

func TestAs(t *testing.T) {
	v, err := As[int](message.Of(42, "x"))
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = As[string](message.Of())
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}
