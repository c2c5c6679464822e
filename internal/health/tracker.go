// Package health tracks per-provider availability with a circuit breaker.
//
// Each provider owns one record guarded by its own mutex; there is no lock
// spanning providers. Callers obtain a Permit before calling a provider and
// either Report the outcome or Release the permit when the call produced no
// signal about the provider (cache hit, coalesced request, local throttling).
package health

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"chatbroker/internal/provider"
)

// State is the circuit state of one provider.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultFailureThreshold  = 5
	defaultFailureWindow     = 10 * time.Minute
	defaultTransientCooldown = 5 * time.Minute
	defaultRateLimitCooldown = time.Hour
	defaultMaxCooldown       = time.Hour
)

// Config holds the tracker-wide defaults.
type Config struct {
	FailureThreshold  int
	FailureWindow     time.Duration
	TransientCooldown time.Duration
	RateLimitCooldown time.Duration
	// UnauthorizedCooldown of zero keeps the circuit open until Reset.
	UnauthorizedCooldown time.Duration
	// MaxCooldown caps the doubling applied after failed probes.
	MaxCooldown time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time
	// OnTransition is invoked outside the record lock after every state change.
	OnTransition func(Transition)
}

// Policy overrides Config for a single provider. Zero fields inherit.
type Policy struct {
	Name                 string
	FailureThreshold     int
	TransientCooldown    time.Duration
	RateLimitCooldown    time.Duration
	UnauthorizedCooldown time.Duration
}

// Transition describes one state change.
type Transition struct {
	Provider string
	From     State
	To       State
	Kind     provider.FailureKind
	Cooldown time.Duration
	At       time.Time
}

// Permit authorizes one provider call. Probe permits are the single call let
// through while half-open.
type Permit struct {
	name  string
	probe bool
	gen   uint64
}

// Provider returns the name the permit was issued for.
func (p Permit) Provider() string { return p.name }

// Probe reports whether this permit is the half-open probe.
func (p Permit) Probe() bool { return p.probe }

// Tracker owns every provider's health record. The set of providers is fixed
// at construction.
type Tracker struct {
	cfg     Config
	records map[string]*record
	order   []string
}

type record struct {
	mu sync.Mutex

	name              string
	threshold         int
	transientCooldown time.Duration
	rateLimitCooldown time.Duration
	authCooldown      time.Duration

	state         State
	failures      []time.Time // transient failures inside the window
	openedAt      time.Time
	cooldown      time.Duration
	manual        bool // open until Reset
	openKind      provider.FailureKind
	probeInFlight bool
	gen           uint64
	bo            *backoff.ExponentialBackOff

	lastFailure   provider.FailureKind
	lastFailureAt time.Time
	successes     uint64
	failuresTotal uint64
}

// New constructs a tracker with one Closed record per policy.
func New(cfg Config, policies ...Policy) *Tracker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.FailureWindow <= 0 {
		cfg.FailureWindow = defaultFailureWindow
	}
	if cfg.TransientCooldown <= 0 {
		cfg.TransientCooldown = defaultTransientCooldown
	}
	if cfg.RateLimitCooldown <= 0 {
		cfg.RateLimitCooldown = defaultRateLimitCooldown
	}
	if cfg.UnauthorizedCooldown < 0 {
		cfg.UnauthorizedCooldown = 0
	}
	if cfg.MaxCooldown <= 0 {
		cfg.MaxCooldown = defaultMaxCooldown
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	t := &Tracker{cfg: cfg, records: make(map[string]*record, len(policies))}
	for _, p := range policies {
		if _, dup := t.records[p.Name]; dup {
			continue
		}
		r := &record{
			name:              p.Name,
			threshold:         pick(p.FailureThreshold, cfg.FailureThreshold),
			transientCooldown: pickDur(p.TransientCooldown, cfg.TransientCooldown),
			rateLimitCooldown: pickDur(p.RateLimitCooldown, cfg.RateLimitCooldown),
			authCooldown:      pickDur(p.UnauthorizedCooldown, cfg.UnauthorizedCooldown),
			state:             StateClosed,
		}
		r.bo = newBackoff(r.transientCooldown, cfg.MaxCooldown)
		t.records[p.Name] = r
		t.order = append(t.order, p.Name)
	}
	return t
}

func newBackoff(initial, max time.Duration) *backoff.ExponentialBackOff {
	if max < initial {
		max = initial
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = max
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func pick(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func pickDur(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}

// Names lists the tracked providers in registration order.
func (t *Tracker) Names() []string {
	return append([]string(nil), t.order...)
}

// Acquire asks whether name may be called now. Open circuits whose cooldown
// has elapsed move to half-open and hand out the single probe permit.
func (t *Tracker) Acquire(name string) (Permit, error) {
	r, ok := t.records[name]
	if !ok {
		return Permit{}, unknownProviderError{name: name}
	}
	now := t.cfg.Now()
	r.mu.Lock()
	tr, moved := r.maybeHalfOpen(now)
	var (
		p   Permit
		err error
	)
	switch r.state {
	case StateClosed:
		p = Permit{name: name, gen: r.gen}
	case StateOpen:
		err = circuitOpenError{name: name, retryAt: r.retryAt(), kind: r.openKind}
	case StateHalfOpen:
		if r.probeInFlight {
			err = probeInFlightError{name: name}
		} else {
			r.probeInFlight = true
			p = Permit{name: name, probe: true, gen: r.gen}
		}
	}
	r.mu.Unlock()
	if moved {
		t.notify(tr)
	}
	return p, err
}

// Release ends a permit without any health signal. A released probe lets the
// next caller probe instead.
func (t *Tracker) Release(p Permit) {
	r, ok := t.records[p.name]
	if !ok || !p.probe {
		return
	}
	r.mu.Lock()
	if p.gen == r.gen && r.state == StateHalfOpen {
		r.probeInFlight = false
	}
	r.mu.Unlock()
}

// Report records the outcome of a permitted call. kind is provider.KindNone
// on success.
func (t *Tracker) Report(p Permit, kind provider.FailureKind) {
	r, ok := t.records[p.name]
	if !ok {
		return
	}
	now := t.cfg.Now()
	r.mu.Lock()
	if kind == provider.KindNone {
		r.successes++
	} else {
		r.failuresTotal++
		r.lastFailure = kind
		r.lastFailureAt = now
	}
	var (
		tr    Transition
		moved bool
	)
	// Reports issued before a Reset belong to a previous epoch.
	if p.gen == r.gen {
		switch {
		case r.state == StateClosed && !p.probe:
			tr, moved = r.onClosedOutcome(kind, now, t.cfg.FailureWindow)
		case r.state == StateHalfOpen && p.probe:
			tr, moved = r.onProbeOutcome(kind, now)
		}
	}
	r.mu.Unlock()
	if moved {
		t.notify(tr)
	}
}

// Reset forces name back to Closed and clears its counters. In-flight
// permits issued before the reset are ignored when they report.
func (t *Tracker) Reset(name string) error {
	r, ok := t.records[name]
	if !ok {
		return unknownProviderError{name: name}
	}
	now := t.cfg.Now()
	r.mu.Lock()
	from := r.state
	r.close()
	r.gen++
	r.mu.Unlock()
	if from != StateClosed {
		t.notify(Transition{Provider: name, From: from, To: StateClosed, At: now})
	}
	return nil
}

// State returns the current state of name, applying any due half-open move.
func (t *Tracker) State(name string) (State, bool) {
	st, ok := t.Status(name)
	return st.State, ok
}

func (t *Tracker) notify(tr Transition) {
	if t.cfg.OnTransition != nil {
		t.cfg.OnTransition(tr)
	}
}

// onClosedOutcome applies a Closed-state outcome. Caller holds r.mu.
func (r *record) onClosedOutcome(kind provider.FailureKind, now time.Time, window time.Duration) (Transition, bool) {
	switch {
	case kind == provider.KindNone:
		r.failures = r.failures[:0]
		return Transition{}, false
	case kind == provider.KindRateLimited:
		return r.open(now, kind, r.rateLimitCooldown), true
	case kind == provider.KindUnauthorized:
		return r.open(now, kind, r.authCooldown), true
	case kind.Transient():
		r.pruneFailures(now, window)
		r.failures = append(r.failures, now)
		if len(r.failures) >= r.threshold {
			r.bo.Reset()
			return r.open(now, kind, r.nextBackoff()), true
		}
	}
	// bad_request is query-specific: recorded above, never opens the circuit.
	return Transition{}, false
}

// onProbeOutcome resolves the half-open probe. Caller holds r.mu.
func (r *record) onProbeOutcome(kind provider.FailureKind, now time.Time) (Transition, bool) {
	r.probeInFlight = false
	switch {
	case kind == provider.KindNone, kind == provider.KindBadRequest:
		// The upstream answered; a query-specific rejection still proves it is up.
		r.close()
		return Transition{Provider: r.name, From: StateHalfOpen, To: StateClosed, Kind: kind, At: now}, true
	case kind == provider.KindRateLimited:
		return r.open(now, kind, r.rateLimitCooldown), true
	case kind == provider.KindUnauthorized:
		return r.open(now, kind, r.authCooldown), true
	default:
		return r.open(now, kind, r.nextBackoff()), true
	}
}

func (r *record) nextBackoff() time.Duration {
	d := r.bo.NextBackOff()
	if d == backoff.Stop || d <= 0 {
		return r.bo.MaxInterval
	}
	return d
}

// open moves the record to Open. A zero cooldown means manual reset only.
func (r *record) open(now time.Time, kind provider.FailureKind, cooldown time.Duration) Transition {
	from := r.state
	r.state = StateOpen
	r.openedAt = now
	r.cooldown = cooldown
	r.manual = cooldown <= 0
	r.openKind = kind
	r.probeInFlight = false
	r.failures = r.failures[:0]
	return Transition{Provider: r.name, From: from, To: StateOpen, Kind: kind, Cooldown: cooldown, At: now}
}

func (r *record) close() {
	r.state = StateClosed
	r.failures = r.failures[:0]
	r.openedAt = time.Time{}
	r.cooldown = 0
	r.manual = false
	r.openKind = provider.KindNone
	r.probeInFlight = false
	r.bo.Reset()
}

// maybeHalfOpen applies the lazy Open -> HalfOpen move. Caller holds r.mu.
func (r *record) maybeHalfOpen(now time.Time) (Transition, bool) {
	if r.state != StateOpen || r.manual {
		return Transition{}, false
	}
	if now.Sub(r.openedAt) < r.cooldown {
		return Transition{}, false
	}
	r.state = StateHalfOpen
	r.probeInFlight = false
	return Transition{Provider: r.name, From: StateOpen, To: StateHalfOpen, At: now}, true
}

func (r *record) pruneFailures(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	keep := r.failures[:0]
	for _, ts := range r.failures {
		if ts.After(cutoff) {
			keep = append(keep, ts)
		}
	}
	r.failures = keep
}

// retryAt is the earliest time the circuit may half-open; zero when manual.
func (r *record) retryAt() time.Time {
	if r.manual || r.state != StateOpen {
		return time.Time{}
	}
	return r.openedAt.Add(r.cooldown)
}
