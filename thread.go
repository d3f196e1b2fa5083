package atomicx

// Thread is a thread control block: the kernel-side state of one
// cooperative thread, plus the handle through which the thread's own code
// suspends, waits, and notifies.
//
// Construct threads with [Kernel.NewThread]. The entry function receives
// the Thread and must treat it as the capability to suspend: all blocking
// operations ([Thread.Yield], [Thread.Wait], [Thread.Notify], mutex
// acquisition) are valid only on the currently running thread, from its
// own entry.
type Thread struct { // betteralign:ignore
	kernel *Kernel
	entry  func(*Thread)
	name   string

	// registry links
	prev *Thread
	next *Thread

	// scheduling state
	status    Status
	priority  uint8
	noTimeout bool
	nice      Tick
	nextEvent Tick
	late      int32

	// rendezvous record
	waitEndpoint any
	waitChannel  waitChannel
	message      Message

	// stack accounting (approximate; see StackSize)
	startStack   uintptr
	endStack     uintptr
	stackSize    int
	maxStackSize int

	// execution context
	resume     chan struct{}
	started    bool
	detached   bool
	exitPolicy ExitPolicy
	stopping   stopReason
}

// NewThread registers a new thread with the kernel, appending it to the
// registry with StatusStarting. The entry function runs at the thread's
// first dispatch; name identifies the thread in diagnostics.
//
// Threads may be registered before Join, or by a running thread while the
// kernel is joined. Registering from a goroutine other than the dispatch
// loop's while Join is active is not supported.
func (k *Kernel) NewThread(name string, entry func(*Thread), opts ...ThreadOption) (*Thread, error) {
	if entry == nil {
		return nil, ErrNilEntry
	}
	cfg, err := resolveThreadOptions(k.stackLimit, opts)
	if err != nil {
		return nil, err
	}
	t := &Thread{
		kernel:       k,
		entry:        entry,
		name:         name,
		status:       StatusStarting,
		priority:     cfg.priority,
		nice:         cfg.nice,
		maxStackSize: cfg.stackLimit,
		exitPolicy:   cfg.exitPolicy,
		resume:       make(chan struct{}),
	}
	k.reg.attach(t)
	if b := k.log.Debug(); b != nil {
		b.Str(`thread`, name).Int(`threads`, k.reg.count).Log(`thread attached`)
	}
	return t, nil
}

// Detach removes the thread from the registry.
//
// Detaching a suspended thread terminates its execution context
// synchronously: by the time Detach returns, the target has unwound (its
// pending defers have run) and will never execute again. Detaching the
// running thread (self-detach) takes effect at its next suspension point
// or entry return; code between the call and that point still runs.
//
// Detach may be called by a running thread, or by the host while Join is
// not active. Calling it on an already detached thread is a no-op.
func (t *Thread) Detach() {
	k := t.kernel
	if k == nil || t.detached {
		return
	}
	if k.current == t && t.status == StatusRunning {
		// Self-detach: the thread is on its own stack right now. Splice out
		// (so it is never scheduled again) but leave the running state
		// intact; the context machinery retires it at the next suspension
		// point or entry return.
		k.reg.detach(t)
		t.detached = true
		if b := k.log.Debug(); b != nil {
			b.Str(`thread`, t.name).Int(`threads`, k.reg.count).Log(`thread detached (self)`)
		}
		return
	}
	running := t.started
	k.remove(t)
	if running {
		// The goroutine is parked in suspend or between entries; closing
		// resume makes it unwind, and stopped is its completion signal.
		close(t.resume)
		<-k.stopped
		t.started = false
	}
	t.kernel = nil
}

// Yield suspends the running thread. The only suspension primitive; every
// other blocking operation is built on it.
//
// With status StatusNow the deadline is "immediately". Otherwise the
// deadline is now + d, or now + the thread's nice interval if d is 0.
// Callers normally pass StatusSleep or StatusNow; the rendezvous statuses
// are installed by Wait/Notify.
//
// Yield reports whether the thread was resumed normally: false means the
// scheduler resumed it because a wait deadline expired (the transient
// StatusTimeout path). It panics with ErrNotRunning if t is not the
// currently running thread.
func (t *Thread) Yield(d Tick, status Status) bool {
	k := t.kernel
	if k == nil || k.current != t || t.status != StatusRunning {
		panic(ErrNotRunning)
	}
	now := k.clock.GetTick()
	if status == StatusNow {
		t.nextEvent = now
	} else {
		if d == 0 {
			d = t.nice
		}
		t.nextEvent = now + d
	}
	t.status = status
	t.suspend()
	timedOut := t.status == StatusTimeout
	t.status = StatusRunning
	return !timedOut
}

// NewTimeout returns a Timeout expiring d ticks from the kernel's current
// tick, or a never-expiring Timeout if d is 0.
func (t *Thread) NewTimeout(d Tick) Timeout {
	return NewTimeout(t.kernel.clock.GetTick(), d)
}

// Name returns the thread's diagnostic name.
func (t *Thread) Name() string { return t.name }

// Status returns the thread's current scheduling status.
func (t *Thread) Status() Status { return t.status }

// Priority returns the thread's priority (higher wins deadline ties).
func (t *Thread) Priority() uint8 { return t.priority }

// Nice returns the thread's default suspension duration.
func (t *Thread) Nice() Tick { return t.nice }

// NextEvent returns the absolute tick of the thread's next scheduling
// consideration.
func (t *Thread) NextEvent() Tick { return t.nextEvent }

// Late returns the thread's lateness measured at its most recent
// dispatch: deadline minus dispatch time, so negative values mean the
// thread ran behind its deadline.
func (t *Thread) Late() int32 { return t.late }

// StackSize returns the bytes of stack the thread was using at its most
// recent suspension. The measurement is approximate: thread stacks are
// runtime-managed and may move, in which case the sample is skipped and
// the previous value retained.
func (t *Thread) StackSize() int { return t.stackSize }

// MaxStackSize returns the thread's configured stack limit in bytes.
// Exceeding it at a suspension point is fatal; see StackOverflowError.
func (t *Thread) MaxStackSize() int { return t.maxStackSize }
