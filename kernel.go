package atomicx

import (
	"iter"

	"github.com/joeycumines/logiface"
)

// Kernel is a cooperative multitasking kernel: a thread registry, a
// deadline/priority scheduler, and the context-switch machinery binding
// them. All process-wide state of the scheduling model lives here; threads
// hold a back-reference, never package globals.
//
// A Kernel and its threads form a single-threaded system. Everything
// except construction and pre-Join registration must happen either inside
// thread entries or on the goroutine that called Join.
type Kernel struct { // betteralign:ignore
	// Prevent copying
	_ [0]func()

	clock Clock
	log   *logiface.Logger[logiface.Event]

	reg     registry
	current *Thread

	// stackLimit is the default per-thread stack limit in bytes.
	stackLimit int

	// startStack is the dispatch loop's stack probe at Join entry, the
	// fixed high boundary used in diagnostics.
	startStack uintptr

	// yielded is signalled by the running thread when it hands control
	// back; stopped is signalled by a detached context when it has
	// finished unwinding.
	yielded chan struct{}
	stopped chan struct{}

	// fatal carries an unrecoverable error (thread panic, stack overflow)
	// from a thread context to Join.
	fatal error

	joined bool
}

// New creates a new Kernel.
func New(opts ...Option) (*Kernel, error) {
	cfg, err := resolveKernelOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Kernel{
		clock:      cfg.clock,
		log:        cfg.log,
		stackLimit: cfg.stackLimit,
		yielded:    make(chan struct{}),
		stopped:    make(chan struct{}),
	}, nil
}

// Join runs the dispatch loop until the registry empties, then returns
// false. On an empty registry it returns false immediately, without
// touching the host clock.
//
// Join re-panics thread panics (as [ThreadPanicError]) and fatal kernel
// conditions ([StackOverflowError]) on the caller's goroutine. It also
// returns false, with a critical log record, if every remaining thread is
// parked without a deadline and nothing can ever wake one.
func (k *Kernel) Join() bool {
	if k.joined {
		panic(ErrJoinReentrant)
	}
	if k.reg.count == 0 {
		return false
	}
	k.joined = true
	defer func() { k.joined = false }()

	k.startStack = stackPointer()
	k.current = k.reg.tail
	if b := k.log.Trace(); b != nil {
		b.Int(`threads`, k.reg.count).Uint64(`startStack`, uint64(k.startStack)).Log(`join`)
	}

	for k.reg.count > 0 {
		t, ok := k.schedule()
		if !ok {
			if b := k.log.Crit(); b != nil {
				b.Int(`threads`, k.reg.count).Log(`deadlock: every thread is parked without a deadline`)
			}
			return false
		}
		k.dispatch(t)
		if err := k.fatal; err != nil {
			k.fatal = nil
			panic(err)
		}
	}

	if b := k.log.Debug(); b != nil {
		b.Log(`registry drained`)
	}
	return false
}

// schedule walks the registry one full cyclic round from current and
// selects the next thread: earliest nextEvent wins, priority breaks ties,
// and on a full tie the incumbent (first encountered) is kept. Threads
// parked without a deadline, and threads outside the scheduled statuses,
// are skipped. If the winner's deadline is still in the future, the host
// clock sleeps until then.
//
// The second result is false when no thread is eligible at all.
func (k *Kernel) schedule() (*Thread, bool) {
	var best *Thread
	// The incumbent (the thread that ran last) is the initial best: it wins
	// full ties, which is what lets a thread that yielded "now" finish a
	// multi-step handshake before a same-deadline peer slips in between.
	if t := k.current; t != nil && !t.noTimeout && t.status.scheduled() {
		best = t
	}
	t := k.current
	for i := 0; i < k.reg.count; i++ {
		t = k.reg.cyclicNext(t)
		if t.noTimeout || !t.status.scheduled() {
			continue
		}
		if best == nil ||
			t.nextEvent < best.nextEvent ||
			(t.nextEvent == best.nextEvent && t.priority > best.priority) {
			best = t
		}
	}
	if best == nil {
		return nil, false
	}

	if now := k.clock.GetTick(); best.nextEvent > now {
		k.traceSleep(best.nextEvent-now, best)
		k.clock.SleepTick(best.nextEvent - now)
	}

	k.current = best
	return best, true
}

// dispatch records lateness, surfaces expired waits as StatusTimeout, and
// transfers control to t until it suspends or retires.
func (k *Kernel) dispatch(t *Thread) {
	now := k.clock.GetTick()
	t.late = int32(t.nextEvent - now)
	t.noTimeout = false
	if t.status.waiting() {
		// The thread was parked on a rendezvous and its deadline passed
		// before any notify matched; it observes this on resumption.
		t.status = StatusTimeout
	} else {
		t.status = StatusRunning
	}
	k.traceDispatch(t, now)
	k.resume(t)
}

// remove splices t out of the registry, keeping the scheduler's current
// pointer on a live node (or nil, which restarts the round at the head).
func (k *Kernel) remove(t *Thread) {
	if k.current == t {
		k.current = t.prev
	}
	k.reg.detach(t)
	t.detached = true
	t.status = StatusNone
	if b := k.log.Debug(); b != nil {
		b.Str(`thread`, t.name).Int(`threads`, k.reg.count).Log(`thread detached`)
	}
}

// Current returns the running thread, or nil during the scheduler's own
// turn (and outside Join).
func (k *Kernel) Current() *Thread {
	if t := k.current; t != nil && t.status == StatusRunning {
		return t
	}
	return nil
}

// ThreadCount returns the number of threads attached to the registry.
func (k *Kernel) ThreadCount() int { return k.reg.count }

// Threads iterates over the registry in insertion order. Detaching the
// yielded thread during iteration is permitted.
func (k *Kernel) Threads() iter.Seq[*Thread] {
	return func(yield func(*Thread) bool) {
		for t := k.reg.head; t != nil; {
			next := t.next
			if !yield(t) {
				return
			}
			t = next
		}
	}
}
