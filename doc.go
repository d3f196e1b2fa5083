// Package atomicx provides a cooperative multitasking kernel for
// constrained, single-threaded hosts: a fixed or dynamic set of lightweight
// threads that yield control to one another at explicit suspension points,
// driven by a priority/deadline scheduler with timeouts, a wait/notify
// rendezvous mechanism, and a reader/writer mutex built on top of it.
//
// # Architecture
//
// A [Kernel] owns a doubly-linked registry of thread control blocks
// ([Thread]) and a single dispatch loop ([Kernel.Join]). Each dispatch
// cycle walks the registry once, selects the thread with the earliest
// deadline (priority breaks ties), sleeps the host clock until that
// deadline if it is still in the future, and transfers control to the
// chosen thread. Control returns to the kernel only when the running
// thread suspends ([Thread.Yield], [Thread.Wait], [Thread.Notify], mutex
// acquisition) or when its entry function returns.
//
// # Execution Model
//
// Exactly one logical execution exists at any moment: either the kernel's
// dispatch loop, or the single running thread. Each thread runs on its own
// execution context (a parked goroutine), but control is handed over
// synchronously, so no two threads (and never a thread and the kernel)
// execute concurrently. Pure reads and writes of shared state therefore
// need no locking; the mutex exists to span suspension points, not to
// guard memory.
//
// Suspension occurs only inside [Thread.Yield] and operations built on it.
// A thread that never yields never loses control.
//
// # Host Shims
//
// The kernel tells time exclusively through the [Clock] interface:
// GetTick (a monotonic tick counter) and SleepTick (block the host for a
// number of ticks). The tick unit is implementation-defined. A default
// clock with millisecond granularity is used when none is supplied; pass
// [WithClock] to substitute the host's own, including fully virtual clocks
// for deterministic tests.
//
// # Usage
//
//	k, err := atomicx.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, err = k.NewThread("producer", func(t *atomicx.Thread) {
//		for i := uint(1); i <= 10; i++ {
//			t.Notify(&endpoint, atomicx.Message{Type: 1, Payload: i}, 1000, atomicx.NotifyOne)
//		}
//	}, atomicx.WithNice(50), atomicx.WithExitPolicy(atomicx.ExitHalt))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	k.Join()
//
// # Error Types
//
// Timeouts and busy locks are reported as boolean results, not errors
// (they are expected outcomes of cooperative scheduling). Unrecoverable
// conditions abort [Kernel.Join] by panicking with a structured error:
//   - [StackOverflowError]: a thread exceeded its configured stack limit
//   - [ThreadPanicError]: a thread entry panicked; wraps the cause
//
// Both implement the standard [error] interface; [ThreadPanicError] also
// supports [errors.Unwrap], exposing the cause when it is an error.
package atomicx
