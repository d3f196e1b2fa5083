package atomicx

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrNilEntry is returned by Kernel.NewThread when no entry function
	// is supplied.
	ErrNilEntry = errors.New("atomicx: thread entry must not be nil")

	// ErrJoinReentrant is the panic value when Join is entered while a
	// dispatch loop is already active on the kernel.
	ErrJoinReentrant = errors.New("atomicx: Join is already running")

	// ErrNotRunning is the panic value when a suspension primitive is
	// invoked on a thread that is not the currently running thread.
	ErrNotRunning = errors.New("atomicx: suspension primitive called outside the running thread")
)

// StackOverflowError reports a thread whose measured stack usage exceeded
// its configured limit. It is unrecoverable by design: the kernel emits a
// critical log record and aborts Join by panicking with this error.
type StackOverflowError struct {
	// Thread is the name of the offending thread.
	Thread string
	// Size is the measured stack usage in bytes.
	Size int
	// Limit is the thread's configured maximum in bytes.
	Limit int
}

// Error implements the error interface.
func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("atomicx: stack overflow in thread %q: %d bytes used, limit %d", e.Thread, e.Size, e.Limit)
}

// ThreadPanicError wraps a panic that escaped a thread entry. The kernel
// detaches the thread, regains control, and re-panics with this error
// from Join, so the host decides whether to crash or recover.
type ThreadPanicError struct {
	// Value is the recovered panic value.
	Value any
	// Thread is the name of the thread whose entry panicked.
	Thread string
	// Stack is the stack trace captured at recovery.
	Stack []byte
}

// Error implements the error interface.
func (e *ThreadPanicError) Error() string {
	return fmt.Sprintf("atomicx: thread %q panicked: %v", e.Thread, e.Value)
}

// Unwrap returns the panic value if it was an error, enabling [errors.Is]
// and [errors.As] matching through the cause chain. Returns nil for
// non-error panic values.
func (e *ThreadPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
