package atomicx

import (
	"io"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// The kernel logs through the logiface facade. A nil logger disables all
// output (logiface builders are nil-safe), so the hot dispatch path pays
// only a nil check when logging is off. Hosts that already run a logiface
// backend (zerolog, slog, logrus, stumpy, ...) pass their own generified
// logger via WithLogger.

// DefaultLogger returns a JSON logger writing to w (stderr semantics are
// the caller's choice), backed by stumpy, at the given level. It is a
// convenience for hosts without an existing logiface setup.
func DefaultLogger(w io.Writer, level logiface.Level) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	).Logger()
}

// traceDispatch records one dispatch decision. Split out of the dispatch
// loop so the disabled-logger case stays a single branch there.
func (k *Kernel) traceDispatch(t *Thread, now Tick) {
	if b := k.log.Trace(); b != nil {
		b.Str(`thread`, t.name).
			Str(`status`, t.status.String()).
			Uint64(`now`, uint64(now)).
			Uint64(`nextEvent`, uint64(t.nextEvent)).
			Int64(`late`, int64(t.late)).
			Log(`dispatch`)
	}
}

func (k *Kernel) traceSleep(d Tick, t *Thread) {
	if b := k.log.Debug(); b != nil {
		b.Str(`thread`, t.name).
			Uint64(`sleep`, uint64(d)).
			Log(`host sleep until next deadline`)
	}
}
