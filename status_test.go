package atomicx

import (
	"testing"
)

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		StatusNone:        "none",
		StatusStarting:    "starting",
		StatusCtxSwitch:   "ctxSwitch",
		StatusSleep:       "sleep",
		StatusTimeout:     "timeout",
		StatusHalted:      "halted",
		StatusPaused:      "paused",
		StatusLocked:      "locked",
		StatusRunning:     "running",
		StatusNow:         "now",
		StatusWait:        "wait",
		StatusSyncWait:    "syncWait",
		StatusSyncSysWait: "syncSysWait",
		StatusSysWait:     "sysWait",
		Status(57):        "unknown",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", uint8(status), got, want)
		}
	}
}

func TestStatusClasses(t *testing.T) {
	waiting := []Status{StatusWait, StatusSyncWait, StatusSysWait, StatusSyncSysWait, StatusLocked}
	for _, status := range waiting {
		if !status.waiting() {
			t.Errorf("%v.waiting() = false, want true", status)
		}
	}
	notWaiting := []Status{StatusNone, StatusStarting, StatusSleep, StatusTimeout, StatusRunning, StatusNow, StatusHalted, StatusPaused}
	for _, status := range notWaiting {
		if status.waiting() {
			t.Errorf("%v.waiting() = true, want false", status)
		}
	}

	for _, status := range []Status{StatusNone, StatusHalted, StatusPaused} {
		if status.scheduled() {
			t.Errorf("%v.scheduled() = true, want false", status)
		}
	}
	for _, status := range []Status{StatusStarting, StatusSleep, StatusNow, StatusWait, StatusSysWait, StatusRunning} {
		if !status.scheduled() {
			t.Errorf("%v.scheduled() = false, want true", status)
		}
	}
}

func TestStatusValuesStable(t *testing.T) {
	// The discriminants are part of the diagnostic surface.
	stable := map[Status]uint8{
		StatusNone:        0,
		StatusStarting:    1,
		StatusCtxSwitch:   12,
		StatusSleep:       13,
		StatusTimeout:     14,
		StatusHalted:      15,
		StatusPaused:      16,
		StatusLocked:      100,
		StatusRunning:     200,
		StatusNow:         201,
		StatusWait:        220,
		StatusSyncWait:    221,
		StatusSyncSysWait: 222,
		StatusSysWait:     223,
	}
	for status, want := range stable {
		if uint8(status) != want {
			t.Errorf("%v = %d, want %d", status, uint8(status), want)
		}
	}
}
