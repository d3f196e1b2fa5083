package atomicx

// Rendezvous message types used on the mutex channel. Type 1 announces
// the exclusive lock being released; type 2 announces a change in the
// shared-holder count.
const (
	mutexMsgExclusive uint = 1
	mutexMsgShared    uint = 2
)

// Mutex is a reader/writer lock for cooperative threads, implemented
// entirely on top of wait/notify: its counters are mutated only between
// suspension points, and contending threads park on the mutex channel
// with the lock's own address as the endpoint.
//
// Writers take precedence: Lock raises the exclusive flag before draining
// the shared holders, so readers arriving during the drain park until the
// writer releases.
//
// The zero Mutex is ready to use. A Mutex must not be copied while held.
type Mutex struct {
	sharedCount uint
	exclusive   bool
}

// Lock acquires the exclusive lock, parking up to timeout ticks (0 parks
// indefinitely). On timeout it reports false with the exclusive flag
// reverted and any queued contenders re-woken.
func (m *Mutex) Lock(t *Thread, timeout Tick) bool {
	tm := t.NewTimeout(timeout)

	for m.exclusive {
		if !t.sysWait(waitChannelMutex, m, mutexMsgExclusive, tm) {
			return false
		}
	}
	m.exclusive = true

	for m.sharedCount > 0 {
		if !t.sysWait(waitChannelMutex, m, mutexMsgShared, tm) {
			// Timed out draining readers: revert, and wake the threads
			// that queued behind the aborted acquisition.
			m.exclusive = false
			t.sysNotify(waitChannelMutex, m, Message{Type: mutexMsgExclusive}, Timeout{}, NotifyAll)
			return false
		}
	}
	return true
}

// Unlock releases the exclusive lock, waking every thread parked on the
// shared-count rendezvous and one next exclusive contender. Calling it
// without the exclusive lock held is a no-op.
func (m *Mutex) Unlock(t *Thread) {
	if !m.exclusive {
		return
	}
	m.exclusive = false
	t.sysNotify(waitChannelMutex, m, Message{Type: mutexMsgShared}, Timeout{}, NotifyAll)
	t.sysNotify(waitChannelMutex, m, Message{Type: mutexMsgExclusive}, Timeout{}, NotifyOne)
}

// SharedLock acquires the lock shared, parking up to timeout ticks while
// a writer holds or is draining (0 parks indefinitely).
func (m *Mutex) SharedLock(t *Thread, timeout Tick) bool {
	tm := t.NewTimeout(timeout)

	for m.exclusive {
		if !t.sysWait(waitChannelMutex, m, mutexMsgExclusive, tm) {
			return false
		}
	}
	m.sharedCount++
	t.sysNotify(waitChannelMutex, m, Message{Type: mutexMsgShared}, Timeout{}, NotifyOne)
	return true
}

// SharedUnlock releases one shared hold, waking a writer counting the
// holders down. Calling it with no shared hold outstanding is a no-op.
func (m *Mutex) SharedUnlock(t *Thread) {
	if m.sharedCount == 0 {
		return
	}
	m.sharedCount--
	t.sysNotify(waitChannelMutex, m, Message{Type: mutexMsgShared}, Timeout{}, NotifyOne)
}

// TryLock acquires the exclusive lock only if the mutex is entirely
// uncontended. Never suspends.
func (m *Mutex) TryLock() bool {
	if m.exclusive || m.sharedCount > 0 {
		return false
	}
	m.exclusive = true
	return true
}

// TrySharedLock acquires a shared hold only if the mutex is entirely
// uncontended. Never suspends.
func (m *Mutex) TrySharedLock() bool {
	if m.exclusive || m.sharedCount > 0 {
		return false
	}
	m.sharedCount++
	return true
}

// SharedCount returns the number of shared holders.
func (m *Mutex) SharedCount() uint { return m.sharedCount }

// IsLocked reports whether the exclusive lock is held.
func (m *Mutex) IsLocked() bool { return m.exclusive }

// LockKind tags what a LockGuard holds.
type LockKind uint8

const (
	// LockNone: the guard holds nothing.
	LockNone LockKind = iota
	// LockExclusive: the guard holds the exclusive lock.
	LockExclusive
	// LockShared: the guard holds one shared hold.
	LockShared
)

// LockGuard scopes a mutex hold: it records which kind of lock it
// acquired and releases the matching side on Release. Go has no
// destructors, so the release is an explicit call, made for deferring:
//
//	var g atomicx.LockGuard
//	if !g.Lock(&mu, t, 1000) {
//		return
//	}
//	defer g.Release(t)
//
// A guard that already holds a lock refuses further acquisitions (they
// return false with no side effects).
type LockGuard struct {
	mutex *Mutex
	kind  LockKind
}

// Lock acquires m exclusively through the guard. Returns false if the
// guard already holds a lock, or on timeout.
func (g *LockGuard) Lock(m *Mutex, t *Thread, timeout Tick) bool {
	if g.kind != LockNone {
		return false
	}
	if !m.Lock(t, timeout) {
		return false
	}
	g.mutex = m
	g.kind = LockExclusive
	return true
}

// SharedLock acquires m shared through the guard. Returns false if the
// guard already holds a lock, or on timeout.
func (g *LockGuard) SharedLock(m *Mutex, t *Thread, timeout Tick) bool {
	if g.kind != LockNone {
		return false
	}
	if !m.SharedLock(t, timeout) {
		return false
	}
	g.mutex = m
	g.kind = LockShared
	return true
}

// Kind returns what the guard currently holds.
func (g *LockGuard) Kind() LockKind { return g.kind }

// Release releases whatever the guard holds and resets it. A guard
// holding nothing is a no-op.
func (g *LockGuard) Release(t *Thread) {
	switch g.kind {
	case LockExclusive:
		g.mutex.Unlock(t)
	case LockShared:
		g.mutex.SharedUnlock(t)
	default:
		return
	}
	g.mutex = nil
	g.kind = LockNone
}
