package atomicx

// Wait/notify rendezvous.
//
// Every thread carries one rendezvous record: (endpoint, channel, type).
// An endpoint is an object identity chosen by the caller and compared
// with ==; pointer identity is the intended usage. The channel separates
// kernel-internal, mutex-internal, and user rendezvous so the primitives
// cannot be confused with each other: a user Notify can never wake a
// mutex waiter, however the endpoint and type collide.
//
// Matching is exact on all three of channel, endpoint, and type.

// Message is the payload of a rendezvous: a type tag (matched exactly)
// and an opaque payload word delivered to the waiter.
type Message struct {
	Type    uint
	Payload uint
}

// NotifyMode selects how many matching waiters a notify wakes.
type NotifyMode uint8

const (
	// NotifyOne wakes at most one matching waiter.
	NotifyOne NotifyMode = iota
	// NotifyAll wakes every matching waiter.
	NotifyAll
)

// waitChannel classifies a rendezvous. Kernel and mutex channels park
// threads in the sysWait statuses, the user channel in the wait statuses;
// together with the channel match this keeps internal rendezvous out of
// reach of user Notify calls.
type waitChannel uint8

const (
	waitChannelKernel waitChannel = iota
	waitChannelMutex
	waitChannelUser
)

// waitStatus returns the parked-waiter status for the channel.
func (c waitChannel) waitStatus() Status {
	if c == waitChannelUser {
		return StatusWait
	}
	return StatusSysWait
}

// syncStatus returns the parked-notifier status for the channel.
func (c waitChannel) syncStatus() Status {
	if c == waitChannelUser {
		return StatusSyncWait
	}
	return StatusSyncSysWait
}

// safeNotify scans the registry for threads parked in status with a
// matching (channel, endpoint, type) record, delivers the payload, and
// makes them runnable now. Non-suspending. Returns the number notified.
func (k *Kernel) safeNotify(status Status, ch waitChannel, endpoint any, msg Message, how NotifyMode) int {
	notified := 0
	now := k.clock.GetTick()
	for t := k.reg.head; t != nil; t = t.next {
		if t.status != status || t.waitChannel != ch || t.waitEndpoint != endpoint || t.message.Type != msg.Type {
			continue
		}
		t.message.Payload = msg.Payload
		t.status = StatusNow
		t.nextEvent = now
		// An undeadlined waiter is excluded from deadline selection; the
		// wake is what makes it schedulable again.
		t.noTimeout = false
		notified++
		if how == NotifyOne {
			break
		}
	}
	if notified > 0 {
		if b := k.log.Trace(); b != nil {
			b.Uint64(`type`, uint64(msg.Type)).Int(`notified`, notified).Log(`rendezvous notify`)
		}
	}
	return notified
}

// installWait arms t's rendezvous record ahead of the parking yield.
// Threads waiting without a deadline are flagged so the scheduler's
// min-selection never considers their stale nextEvent.
func (t *Thread) installWait(ch waitChannel, endpoint any, typ uint, tm Timeout) {
	t.waitChannel = ch
	t.waitEndpoint = endpoint
	t.message.Type = typ
	t.noTimeout = !tm.CanTimeout()
}

// genericWait is the wait side of the rendezvous for any channel. It
// first wakes sync-waiting notifiers on the same record (the notifier
// half of the handshake, so a notifier parked for a waiter's arrival can
// re-scan), then parks until notified or until the deadline expires.
func (t *Thread) genericWait(ch waitChannel, endpoint any, typ uint, tm Timeout) (uint, bool) {
	k := t.kernel

	k.safeNotify(ch.syncStatus(), ch, endpoint, Message{Type: typ}, NotifyAll)
	t.Yield(0, StatusNow)

	t.installWait(ch, endpoint, typ, tm)
	ok := t.Yield(tm.Remaining(k.clock.GetTick()), ch.waitStatus())
	t.waitEndpoint = nil
	if !ok {
		return 0, false
	}
	return t.message.Payload, true
}

// genericNotify is the notify side of the rendezvous for any channel.
// It scans for parked waiters; if none match and the timeout permits
// waiting, it parks sync-waiting on the same record until a waiter's
// arrival wakes it, then re-scans. A zero timeout makes it a poll. It
// always yields once before returning so woken waiters run promptly.
func (t *Thread) genericNotify(ch waitChannel, endpoint any, msg Message, tm Timeout, how NotifyMode) int {
	k := t.kernel

	notified := 0
	for {
		notified = k.safeNotify(ch.waitStatus(), ch, endpoint, msg, how)
		if notified > 0 {
			break
		}
		now := k.clock.GetTick()
		if !tm.CanTimeout() || tm.Expired(now) {
			break
		}
		t.installWait(ch, endpoint, msg.Type, tm)
		ok := t.Yield(tm.Remaining(now), ch.syncStatus())
		t.waitEndpoint = nil
		if !ok {
			// Timed out before any matching waiter arrived.
			return 0
		}
	}

	t.Yield(0, StatusNow)
	return notified
}

// Wait parks the thread on (endpoint, type) until a matching Notify
// delivers a payload, or until timeout ticks elapse. A timeout of 0
// parks indefinitely. It reports the delivered payload and whether the
// rendezvous completed (false means the deadline expired).
func (t *Thread) Wait(endpoint any, typ uint, timeout Tick) (uint, bool) {
	return t.genericWait(waitChannelUser, endpoint, typ, t.NewTimeout(timeout))
}

// Notify wakes threads parked in Wait on (endpoint, msg.Type), delivering
// msg.Payload: at most one with NotifyOne, all with NotifyAll. If no
// waiter matches, Notify waits up to timeout ticks for one to arrive; a
// timeout of 0 makes it a poll. Returns the number of threads notified
// (0 means the notify found no takers in time).
func (t *Thread) Notify(endpoint any, msg Message, timeout Tick, how NotifyMode) int {
	return t.genericNotify(waitChannelUser, endpoint, msg, t.NewTimeout(timeout), how)
}

// sysWait is the kernel/mutex-channel wait, discarding the payload.
func (t *Thread) sysWait(ch waitChannel, endpoint any, typ uint, tm Timeout) bool {
	_, ok := t.genericWait(ch, endpoint, typ, tm)
	return ok
}

// sysNotify is the kernel/mutex-channel notify.
func (t *Thread) sysNotify(ch waitChannel, endpoint any, msg Message, tm Timeout, how NotifyMode) int {
	return t.genericNotify(ch, endpoint, msg, tm, how)
}
