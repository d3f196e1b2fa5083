package atomicx

import (
	"testing"
)

// manualClock is a fully virtual host clock: GetTick returns a counter
// and SleepTick advances it, so kernels under test run in zero wall time
// and every trace is deterministic.
type manualClock struct {
	now    Tick
	ticks  int
	sleeps []Tick
}

func (c *manualClock) GetTick() Tick {
	c.ticks++
	return c.now
}

func (c *manualClock) SleepTick(d Tick) {
	c.sleeps = append(c.sleeps, d)
	c.now += d
}

// newTestKernel builds a kernel on a manual clock.
func newTestKernel(t *testing.T, opts ...Option) (*Kernel, *manualClock) {
	t.Helper()
	clk := &manualClock{}
	k, err := New(append([]Option{WithClock(clk)}, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return k, clk
}

// mustThread registers a thread or fails the test.
func mustThread(t *testing.T, k *Kernel, name string, entry func(*Thread), opts ...ThreadOption) *Thread {
	t.Helper()
	th, err := k.NewThread(name, entry, opts...)
	if err != nil {
		t.Fatalf("NewThread(%q) failed: %v", name, err)
	}
	return th
}
