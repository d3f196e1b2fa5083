package atomicx

// Tick is the kernel's time unit: host-monotonic, implementation-defined
// granularity. All deadlines are absolute Tick values. As a duration, 0
// means "no timeout" for waits and "poll, do not synchronize" for notify.
//
// Tick arithmetic wraps at 2^32; absolute deadline comparison is valid for
// spans well under the wrap horizon (about 49.7 days at 1 ms granularity).
type Tick uint32

// Timeout is a point-in-time deadline derived from a duration.
//
// The zero Timeout (and any Timeout built from a zero duration) can never
// expire: CanTimeout reports false and Remaining reports 0. This is the
// same dual use the rest of the kernel gives a zero duration; see Tick.
//
// Timeout does not capture the clock, only the deadline; all queries take
// the current tick, which keeps the type free of kernel references and
// usable in host code.
type Timeout struct {
	deadline Tick
}

// NewTimeout returns a Timeout expiring d ticks after now, or a
// never-expiring Timeout if d is 0.
func NewTimeout(now, d Tick) Timeout {
	if d == 0 {
		return Timeout{}
	}
	return Timeout{deadline: now + d}
}

// CanTimeout reports whether the timeout can expire at all.
func (tm Timeout) CanTimeout() bool {
	return tm.deadline != 0
}

// Expired reports whether the deadline has passed. A never-expiring
// Timeout always reports false.
func (tm Timeout) Expired(now Tick) bool {
	return tm.deadline != 0 && now >= tm.deadline
}

// Remaining returns the ticks left until expiry, 0 if expired or if the
// timeout can never expire.
func (tm Timeout) Remaining(now Tick) Tick {
	if now < tm.deadline {
		return tm.deadline - now
	}
	return 0
}

// DurationSince returns how much of startDuration has elapsed, given the
// remaining time at now. It mirrors constructing the Timeout from
// startDuration and measuring consumption without storing the start tick.
func (tm Timeout) DurationSince(now, startDuration Tick) Tick {
	return startDuration - tm.Remaining(now)
}
