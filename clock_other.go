//go:build !linux

package atomicx

import (
	"time"
)

// hostClock is the portable fallback: millisecond ticks from the runtime
// monotonic clock, sleeping through the Go timer wheel.
type hostClock struct {
	origin time.Time
}

func newHostClock() Clock {
	return &hostClock{origin: time.Now()}
}

func (c *hostClock) GetTick() Tick {
	return Tick(time.Since(c.origin) / time.Millisecond)
}

func (c *hostClock) SleepTick(d Tick) {
	time.Sleep(time.Duration(d) * time.Millisecond)
}
