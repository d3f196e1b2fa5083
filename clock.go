package atomicx

// Clock is the host shim contract. The kernel tells time exclusively
// through it.
//
// GetTick must be monotonic and non-decreasing; its granularity is
// implementation-defined, but all Tick values handled by one kernel must
// share it. SleepTick must block the host for at least d ticks; it is the
// kernel's only idle mechanism, and on constrained targets it is the
// natural place to drop the processor into a low-power state.
//
// Implementations are free to be entirely virtual. A clock whose SleepTick
// simply advances the value returned by GetTick yields a deterministic,
// instant-running kernel, which is how this package's own tests run.
type Clock interface {
	GetTick() Tick
	SleepTick(d Tick)
}

// newDefaultClock returns the platform default Clock: millisecond ticks
// from the host monotonic clock. Per-platform files provide the
// implementation.
func newDefaultClock() Clock {
	return newHostClock()
}
