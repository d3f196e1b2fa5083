package atomicx

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/require"
)

// S6: Join on an empty registry returns false immediately, without
// touching the host clock.
func TestJoinEmptyRegistry(t *testing.T) {
	k, clk := newTestKernel(t)
	if k.Join() {
		t.Error("Join = true, want false")
	}
	if clk.ticks != 0 || len(clk.sleeps) != 0 {
		t.Errorf("clock touched: %d ticks, %d sleeps", clk.ticks, len(clk.sleeps))
	}
}

// A lone thread yielding with a zero duration suspends for exactly its
// nice interval on the virtual clock.
func TestYieldNiceInterval(t *testing.T) {
	k, clk := newTestKernel(t)
	var resumedAt []Tick
	mustThread(t, k, "worker", func(th *Thread) {
		for i := 0; i < 3; i++ {
			th.Yield(0, StatusSleep)
			resumedAt = append(resumedAt, clk.now)
		}
	}, WithNice(100), WithExitPolicy(ExitHalt))

	k.Join()

	require.Equal(t, []Tick{100, 200, 300}, resumedAt)
	require.Equal(t, []Tick{100, 100, 100}, clk.sleeps)
}

// An explicit yield duration overrides the nice interval.
func TestYieldExplicitDuration(t *testing.T) {
	k, clk := newTestKernel(t)
	mustThread(t, k, "worker", func(th *Thread) {
		th.Yield(250, StatusSleep)
	}, WithNice(100), WithExitPolicy(ExitHalt))

	k.Join()

	require.Equal(t, []Tick{250}, clk.sleeps)
}

// S1: two threads with tied deadlines alternate, the higher priority one
// first.
func TestPriorityTieBreak(t *testing.T) {
	k, _ := newTestKernel(t)
	var order []string
	entry := func(name string) func(*Thread) {
		return func(th *Thread) {
			for i := 0; i < 3; i++ {
				order = append(order, name)
				th.Yield(0, StatusSleep)
			}
		}
	}
	mustThread(t, k, "a", entry("a"), WithNice(100), WithPriority(1), WithExitPolicy(ExitHalt))
	mustThread(t, k, "b", entry("b"), WithNice(100), WithPriority(5), WithExitPolicy(ExitHalt))

	k.Join()

	require.Equal(t, []string{"b", "a", "b", "a", "b", "a"}, order)
}

// Lateness is the deadline minus the dispatch tick: zero when the host
// sleeps the gap away.
func TestLateRecordedAtDispatch(t *testing.T) {
	k, _ := newTestKernel(t)
	var late []int32
	th := mustThread(t, k, "worker", func(th *Thread) {
		th.Yield(40, StatusSleep)
		late = append(late, th.Late())
	}, WithExitPolicy(ExitHalt))

	k.Join()

	require.Equal(t, []int32{0}, late)
	require.Equal(t, StatusNone, th.Status())
}

// S5: locals survive any number of dispatches, for every thread.
func TestStackPatternSurvivesDispatch(t *testing.T) {
	k, _ := newTestKernel(t)
	corrupt := make(map[string]bool)
	entry := func(name string, seed byte) func(*Thread) {
		return func(th *Thread) {
			var buf [256]byte
			for i := range buf {
				buf[i] = seed ^ byte(i)
			}
			for round := 0; round < 5; round++ {
				th.Yield(0, StatusSleep)
				for i := range buf {
					if buf[i] != seed^byte(i) {
						corrupt[name] = true
						return
					}
				}
			}
		}
	}
	mustThread(t, k, "a", entry("a", 0xA5), WithNice(10), WithExitPolicy(ExitHalt))
	mustThread(t, k, "b", entry("b", 0x5A), WithNice(15), WithExitPolicy(ExitHalt))
	mustThread(t, k, "c", entry("c", 0xC3), WithNice(20), WithExitPolicy(ExitHalt))

	k.Join()

	require.Empty(t, corrupt)
}

// The default exit policy re-enters the entry on return.
func TestExitRestart(t *testing.T) {
	k, _ := newTestKernel(t)
	runs := 0
	var th *Thread
	th = mustThread(t, k, "worker", func(*Thread) {
		runs++
		if runs == 3 {
			th.Detach()
		}
	})

	k.Join()

	require.Equal(t, 3, runs)
	require.Equal(t, 0, k.ThreadCount())
}

// Self-detach takes effect at the next suspension point: code after the
// yield never runs, but pending defers do.
func TestSelfDetachAtSuspension(t *testing.T) {
	k, _ := newTestKernel(t)
	var afterYield, deferRan bool
	mustThread(t, k, "worker", func(th *Thread) {
		defer func() { deferRan = true }()
		th.Detach()
		th.Yield(0, StatusSleep)
		afterYield = true
	})

	k.Join()

	require.False(t, afterYield)
	require.True(t, deferRan)
	require.Equal(t, 0, k.ThreadCount())
}

// Detaching a suspended thread from another thread terminates it: its
// defers run before Detach returns, and it is never dispatched again.
func TestDetachSuspendedPeer(t *testing.T) {
	k, _ := newTestKernel(t)
	var victimResumed, victimDeferRan, deferredBeforeReturn bool
	victim := mustThread(t, k, "victim", func(th *Thread) {
		defer func() { victimDeferRan = true }()
		th.Yield(1000, StatusSleep)
		victimResumed = true
	}, WithExitPolicy(ExitHalt))
	mustThread(t, k, "killer", func(th *Thread) {
		th.Yield(10, StatusSleep) // let the victim park first
		victim.Detach()
		deferredBeforeReturn = victimDeferRan
	}, WithPriority(1), WithExitPolicy(ExitHalt))

	k.Join()

	require.False(t, victimResumed)
	require.True(t, victimDeferRan)
	require.True(t, deferredBeforeReturn, "victim must unwind before Detach returns")
	require.Equal(t, 0, k.ThreadCount())
}

// A panicking entry aborts Join with a ThreadPanicError wrapping the
// cause, after the thread has been detached.
func TestThreadPanicPropagates(t *testing.T) {
	k, _ := newTestKernel(t)
	cause := errors.New("boom")
	mustThread(t, k, "bad", func(*Thread) {
		panic(cause)
	})

	defer func() {
		r := recover()
		require.NotNil(t, r, "Join must re-panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value must be an error, got %T", r)
		var tpe *ThreadPanicError
		require.ErrorAs(t, err, &tpe)
		require.Equal(t, "bad", tpe.Thread)
		require.ErrorIs(t, err, cause)
		require.Equal(t, 0, k.ThreadCount())
	}()
	k.Join()
}

// A thread that outgrows its stack limit is a hard stop: Join panics
// with a StackOverflowError naming it.
func TestStackOverflowFatal(t *testing.T) {
	k, _ := newTestKernel(t)
	mustThread(t, k, "hog", func(th *Thread) {
		var grow func(depth int)
		grow = func(depth int) {
			var pad [128]byte
			pad[0] = byte(depth)
			th.Yield(0, StatusSleep)
			if depth < 256 && pad[0] == byte(depth) {
				grow(depth + 1)
			}
		}
		grow(0)
	}, WithThreadStackLimit(512))

	defer func() {
		r := recover()
		require.NotNil(t, r, "Join must panic on stack overflow")
		var soe *StackOverflowError
		require.ErrorAs(t, r.(error), &soe)
		require.Equal(t, "hog", soe.Thread)
		require.Greater(t, soe.Size, soe.Limit)
	}()
	k.Join()
}

// Reentrant Join panics.
func TestJoinReentrant(t *testing.T) {
	k, _ := newTestKernel(t)
	var reentrant any
	mustThread(t, k, "worker", func(*Thread) {
		func() {
			defer func() { reentrant = recover() }()
			k.Join()
		}()
	}, WithExitPolicy(ExitHalt))

	k.Join()

	require.Equal(t, ErrJoinReentrant, reentrant)
}

// Yield outside the running thread panics.
func TestYieldOutsideRunningThread(t *testing.T) {
	k, _ := newTestKernel(t)
	th := mustThread(t, k, "idle", func(*Thread) {})
	require.PanicsWithValue(t, ErrNotRunning, func() {
		th.Yield(0, StatusSleep)
	})
}

// Current is nil outside dispatch and the running thread inside it.
func TestCurrent(t *testing.T) {
	k, _ := newTestKernel(t)
	require.Nil(t, k.Current())
	var seen *Thread
	th := mustThread(t, k, "worker", func(*Thread) {
		seen = k.Current()
	}, WithExitPolicy(ExitHalt))

	k.Join()

	require.Same(t, th, seen)
	require.Nil(t, k.Current())
}

// Threads registered by a running thread join the schedule.
func TestRegisterFromThread(t *testing.T) {
	k, _ := newTestKernel(t)
	var order []string
	mustThread(t, k, "parent", func(th *Thread) {
		order = append(order, "parent")
		mustThread(t, k, "child", func(*Thread) {
			order = append(order, "child")
		}, WithExitPolicy(ExitHalt))
		th.Yield(10, StatusSleep)
		order = append(order, "parent again")
	}, WithExitPolicy(ExitHalt))

	k.Join()

	require.Equal(t, []string{"parent", "child", "parent again"}, order)
}

// Kernel activity shows up on an injected logiface logger.
func TestKernelLogging(t *testing.T) {
	var buf bytes.Buffer
	clk := &manualClock{}
	k, err := New(
		WithClock(clk),
		WithLogger(DefaultLogger(&buf, logiface.LevelTrace)),
	)
	require.NoError(t, err)
	mustThread(t, k, "worker", func(th *Thread) {
		th.Yield(5, StatusSleep)
	}, WithExitPolicy(ExitHalt))

	k.Join()

	out := buf.String()
	require.True(t, strings.Contains(out, `"msg":"thread attached"`), "missing attach record: %s", out)
	require.True(t, strings.Contains(out, `"msg":"dispatch"`), "missing dispatch record: %s", out)
	require.True(t, strings.Contains(out, `"worker"`), "missing thread name: %s", out)
}

// A round in which every thread is parked without a deadline is a
// deadlock: Join gives up rather than spinning or sleeping forever.
func TestJoinDeadlockedRegistry(t *testing.T) {
	k, clk := newTestKernel(t)
	var endpoint int
	var ok bool
	var timedOut bool
	mustThread(t, k, "waiter", func(th *Thread) {
		_, ok = th.Wait(&endpoint, 1, 0)
		timedOut = true
	}, WithExitPolicy(ExitHalt))

	require.False(t, k.Join())
	require.False(t, timedOut, "an undeadlined wait must never resume by deadline")
	require.False(t, ok)
	require.Equal(t, 1, k.ThreadCount())
	require.Empty(t, clk.sleeps)

	// The host can still reclaim the parked thread.
	for th := range k.Threads() {
		th.Detach()
	}
	require.Equal(t, 0, k.ThreadCount())
}

func TestNiceAccessors(t *testing.T) {
	k, _ := newTestKernel(t)
	th := mustThread(t, k, "worker", func(*Thread) {},
		WithNice(70), WithPriority(9), WithThreadStackLimit(4096))
	require.Equal(t, "worker", th.Name())
	require.Equal(t, Tick(70), th.Nice())
	require.Equal(t, uint8(9), th.Priority())
	require.Equal(t, 4096, th.MaxStackSize())
	require.Equal(t, StatusStarting, th.Status())
	require.True(t, slices.Contains(registryNames(k), "worker"))
}
