//go:build linux

package atomicx

import (
	"golang.org/x/sys/unix"
)

// hostClock reads CLOCK_MONOTONIC directly and sleeps via nanosleep,
// bypassing the Go timer wheel. Ticks are milliseconds since an arbitrary
// (boot-relative) origin.
type hostClock struct{}

func newHostClock() Clock {
	return hostClock{}
}

func (hostClock) GetTick() Tick {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// CLOCK_MONOTONIC is mandatory on every supported kernel; a failure
		// here means the host shim contract cannot be met at all.
		panic(err)
	}
	return Tick(ts.Sec*1000 + ts.Nsec/1e6)
}

func (hostClock) SleepTick(d Tick) {
	ts := unix.NsecToTimespec(int64(d) * 1e6)
	for {
		var rem unix.Timespec
		err := unix.Nanosleep(&ts, &rem)
		if err != unix.EINTR {
			return
		}
		ts = rem
	}
}
