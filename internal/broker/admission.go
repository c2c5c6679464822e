package broker

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"chatbroker/internal/provider"
)

// entry is the runtime state of one configured provider.
type entry struct {
	desc    provider.Descriptor
	prov    provider.Provider
	slots   chan struct{} // buffered: max concurrent calls
	limiter *rate.Limiter // nil when unlimited
}

func newEntry(d provider.Descriptor, p provider.Provider) *entry {
	e := &entry{desc: d, prov: p, slots: make(chan struct{}, d.MaxConcurrent)}
	if d.RatePerSecond > 0 {
		burst := int(d.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(d.RatePerSecond), burst)
	}
	return e
}

// allow reports whether the client-side rate limit lets a call through now.
func (e *entry) allow() bool {
	return e.limiter == nil || e.limiter.Allow()
}

// admit reserves a concurrency slot. It waits until ctx is done or maxWait
// elapses (zero: ctx only). Returns a release func to be deferred.
func (e *entry) admit(ctx context.Context, maxWait time.Duration) (func(), error) {
	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	select {
	case e.slots <- struct{}{}:
		return func() { <-e.slots }, nil
	default:
	}
	var timeout <-chan time.Time
	if maxWait > 0 {
		timer := time.NewTimer(maxWait)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case e.slots <- struct{}{}:
		return func() { <-e.slots }, nil
	case <-ctx.Done():
		return func() {}, tooBusyError{name: e.desc.Name}
	case <-timeout:
		return func() {}, tooBusyError{name: e.desc.Name}
	}
}

// inflight is the number of calls currently holding a slot.
func (e *entry) inflight() int { return len(e.slots) }
