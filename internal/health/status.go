package health

import (
	"time"

	"chatbroker/internal/provider"
)

// Status is a point-in-time copy of one provider's record.
type Status struct {
	Name                string
	State               State
	ConsecutiveFailures int
	OpenedAt            time.Time
	Cooldown            time.Duration
	// RetryAt is zero when the circuit is not open or waits for a reset.
	RetryAt       time.Time
	ManualReset   bool
	ProbeInFlight bool
	LastFailure   provider.FailureKind
	LastFailureAt time.Time
	Successes     uint64
	Failures      uint64
}

// Status returns the record of name.
func (t *Tracker) Status(name string) (Status, bool) {
	r, ok := t.records[name]
	if !ok {
		return Status{}, false
	}
	now := t.cfg.Now()
	r.mu.Lock()
	tr, moved := r.maybeHalfOpen(now)
	st := r.status()
	r.mu.Unlock()
	if moved {
		t.notify(tr)
	}
	return st, true
}

// Snapshot returns every record in registration order.
func (t *Tracker) Snapshot() []Status {
	out := make([]Status, 0, len(t.order))
	for _, name := range t.order {
		st, _ := t.Status(name)
		out = append(out, st)
	}
	return out
}

func (r *record) status() Status {
	return Status{
		Name:                r.name,
		State:               r.state,
		ConsecutiveFailures: len(r.failures),
		OpenedAt:            r.openedAt,
		Cooldown:            r.cooldown,
		RetryAt:             r.retryAt(),
		ManualReset:         r.state == StateOpen && r.manual,
		ProbeInFlight:       r.probeInFlight,
		LastFailure:         r.lastFailure,
		LastFailureAt:       r.lastFailureAt,
		Successes:           r.successes,
		Failures:            r.failuresTotal,
	}
}
