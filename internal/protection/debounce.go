// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package protection implements the Protection Controller (C5): it owns the
// per host-pair PathInfo store for one domain, recomputes primary/secondary
// path pairs on a debounce timer after topology changes settle, reacts to
// ingress-migration packet-ins, and rebuilds its state from switch stats
// after a role promotion to master.
package protection

import "time"

// Debouncer re-arms a single timer on every Reset call; only an expiry that
// survives uninterrupted for the full duration ever fires. It is the timer
// shape the recompute trigger needs: every topology mutation during the
// window pushes the deadline back out, so a burst of link flaps produces
// one recompute instead of one per flap. A ticker doesn't fit this — it
// fires unconditionally on a fixed cadence — so this wraps time.Timer
// instead.
type Debouncer struct {
	d     time.Duration
	timer *time.Timer
}

// NewDebouncer returns a Debouncer for duration d, already armed.
func NewDebouncer(d time.Duration) *Debouncer {
	return &Debouncer{d: d, timer: time.NewTimer(d)}
}

// C returns the channel that fires on expiry. Callers select on this
// directly; it stays valid across Reset calls.
func (deb *Debouncer) C() <-chan time.Time {
	return deb.timer.C
}

// Reset re-arms the timer for another full duration, draining a pending
// fire first so a stale expiry can't leak through right after Reset.
func (deb *Debouncer) Reset() {
	if !deb.timer.Stop() {
		select {
		case <-deb.timer.C:
		default:
		}
	}
	deb.timer.Reset(deb.d)
}

// Stop disarms the timer. Idempotent.
func (deb *Debouncer) Stop() {
	deb.timer.Stop()
}
