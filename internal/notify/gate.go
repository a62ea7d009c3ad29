package notify

import (
	"time"
)

// Gate decides whether a reconciliation summary is worth announcing.
// Delivery itself is best-effort and never affects the run outcome.
//
// When the daily window is enabled the gate also remembers the last day
// it fired, so a scheduler ticking faster than once per hour still sends
// at most one digest per day. Keep one Gate alive across scheduled runs
// for that to hold.
type Gate struct {
	// WindowHourUTC restricts firing to one wall-clock hour per day.
	// -1 disables the window check.
	WindowHourUTC int

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time

	lastSent time.Time
}

// Decision carries the verdict plus a loggable reason when suppressed.
type Decision struct {
	Send   bool
	Reason string
}

func (g *Gate) Decide(newCount int, credsOK bool) Decision {
	if newCount == 0 {
		return Decision{Reason: "no new records"}
	}
	if !credsOK {
		return Decision{Reason: "delivery credentials unavailable"}
	}
	if g.WindowHourUTC >= 0 {
		now := g.now().UTC()
		if now.Hour() != g.WindowHourUTC {
			return Decision{Reason: "outside daily window"}
		}
		if sameDay(g.lastSent, now) {
			return Decision{Reason: "already sent today"}
		}
	}
	return Decision{Send: true}
}

// MarkSent records a successful delivery so later runs in the same
// window hour stay quiet.
func (g *Gate) MarkSent() {
	g.lastSent = g.now().UTC()
}

func (g *Gate) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func sameDay(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
