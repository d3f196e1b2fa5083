package atomicx

import (
	"github.com/joeycumines/logiface"
)

// DefaultStackLimit is the per-thread stack limit applied when neither
// [WithStackLimit] nor [WithThreadStackLimit] is given, in bytes.
//
// The limit is a diagnostic guard, not an allocation: threads run on
// runtime-managed stacks, and the kernel measures usage at each suspension
// point. See Thread.StackSize.
const DefaultStackLimit = 512 * 1024

// kernelOptions holds configuration options for Kernel creation.
type kernelOptions struct {
	clock      Clock
	log        *logiface.Logger[logiface.Event]
	stackLimit int
}

// --- Kernel Options ---

// Option configures a Kernel instance.
type Option interface {
	applyKernel(*kernelOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyKernelFunc func(*kernelOptions) error
}

func (o *optionImpl) applyKernel(opts *kernelOptions) error {
	return o.applyKernelFunc(opts)
}

// WithClock sets the host clock shim. **Defaults to the platform
// monotonic clock with millisecond ticks.**
func WithClock(clock Clock) Option {
	return &optionImpl{func(opts *kernelOptions) error {
		opts.clock = clock
		return nil
	}}
}

// WithLogger sets the kernel's structured logger. A nil logger (the
// default) disables all kernel logging. See also [DefaultLogger].
func WithLogger(log *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *kernelOptions) error {
		opts.log = log
		return nil
	}}
}

// WithStackLimit sets the default per-thread stack limit, in bytes.
// **Defaults to [DefaultStackLimit], if 0.** Individual threads may
// override it via [WithThreadStackLimit].
func WithStackLimit(bytes int) Option {
	return &optionImpl{func(opts *kernelOptions) error {
		opts.stackLimit = bytes
		return nil
	}}
}

// resolveKernelOptions applies Option instances to kernelOptions.
func resolveKernelOptions(opts []Option) (*kernelOptions, error) {
	cfg := &kernelOptions{
		stackLimit: DefaultStackLimit,
	}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyKernel(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.stackLimit == 0 {
		cfg.stackLimit = DefaultStackLimit
	}
	if cfg.clock == nil {
		cfg.clock = newDefaultClock()
	}
	return cfg, nil
}

// ExitPolicy selects what happens when a thread's entry function returns.
type ExitPolicy uint8

const (
	// ExitRestart reverts the thread to StatusStarting, making it eligible
	// for re-entry on a later dispatch (a "main loop per thread" pattern).
	// **This is the default.**
	ExitRestart ExitPolicy = iota
	// ExitHalt detaches the thread from the registry on return.
	ExitHalt
)

// threadOptions holds configuration options for thread creation.
type threadOptions struct {
	nice       Tick
	priority   uint8
	stackLimit int
	exitPolicy ExitPolicy
}

// --- Thread Options ---

// ThreadOption configures a single thread at registration time.
type ThreadOption interface {
	applyThread(*threadOptions) error
}

// threadOptionImpl implements ThreadOption.
type threadOptionImpl struct {
	applyThreadFunc func(*threadOptions) error
}

func (o *threadOptionImpl) applyThread(opts *threadOptions) error {
	return o.applyThreadFunc(opts)
}

// WithNice sets the thread's nice interval: the default suspension
// duration applied when the thread yields with a zero duration.
// **Defaults to 0 (yield deadlines resolve to "now").**
func WithNice(nice Tick) ThreadOption {
	return &threadOptionImpl{func(opts *threadOptions) error {
		opts.nice = nice
		return nil
	}}
}

// WithPriority sets the thread's priority. Higher values win deadline
// ties. **Defaults to 0.**
func WithPriority(priority uint8) ThreadOption {
	return &threadOptionImpl{func(opts *threadOptions) error {
		opts.priority = priority
		return nil
	}}
}

// WithThreadStackLimit overrides the kernel's default stack limit for
// this thread, in bytes.
func WithThreadStackLimit(bytes int) ThreadOption {
	return &threadOptionImpl{func(opts *threadOptions) error {
		opts.stackLimit = bytes
		return nil
	}}
}

// WithExitPolicy sets the thread's entry-return behavior.
// **Defaults to ExitRestart.**
func WithExitPolicy(policy ExitPolicy) ThreadOption {
	return &threadOptionImpl{func(opts *threadOptions) error {
		opts.exitPolicy = policy
		return nil
	}}
}

// resolveThreadOptions applies ThreadOption instances to threadOptions.
func resolveThreadOptions(defaultStackLimit int, opts []ThreadOption) (*threadOptions, error) {
	cfg := &threadOptions{
		stackLimit: defaultStackLimit,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyThread(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
