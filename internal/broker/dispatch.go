package broker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"chatbroker/internal/health"
	"chatbroker/internal/provider"
	"chatbroker/internal/query"
)

// Outcome is the result of one candidate provider for one query.
type Outcome = provider.Outcome

// callResult is what the single-flight leader shares with its followers.
type callResult struct {
	payload provider.Payload
	err     error
	skip    provider.SkipReason
	latency time.Duration
}

// Resolve dispatches q to every relevant provider and returns one outcome
// per candidate in static registry order. When no provider is relevant the
// fallback provider is the only candidate.
func (b *Broker) Resolve(ctx context.Context, q query.Query) []Outcome {
	return b.resolve(ctx, q, b.candidates(q), uuid.NewString())
}

// ResolveOnly dispatches q to the named provider regardless of relevance.
func (b *Broker) ResolveOnly(ctx context.Context, q query.Query, name string) (Outcome, error) {
	e, ok := b.byName[name]
	if !ok {
		return Outcome{}, ErrProviderNotFound(name)
	}
	return b.resolve(ctx, q, []*entry{e}, uuid.NewString())[0], nil
}

func (b *Broker) candidates(q query.Query) []*entry {
	f := q.Facets()
	var out []*entry
	for _, e := range b.entries {
		if e.desc.Relevant(f) {
			out = append(out, e)
		}
	}
	if len(out) == 0 && b.fallback != nil {
		out = append(out, b.fallback)
	}
	return out
}

func (b *Broker) resolve(ctx context.Context, q query.Query, cands []*entry, id string) []Outcome {
	start := time.Now()
	names := make([]string, len(cands))
	for i, e := range cands {
		names[i] = e.desc.Name
	}
	b.pub.Publish(Event{Name: EventDispatchStart, Fields: map[string]any{"id": id, "candidates": names}})
	b.log.Debug().Str("id", id).Strs("candidates", names).Str("facets", q.Facets().String()).Msg("dispatch")

	outcomes := make([]Outcome, len(cands))
	var wg sync.WaitGroup
	for i, e := range cands {
		wg.Add(1)
		go func(i int, e *entry) {
			defer wg.Done()
			outcomes[i] = b.resolveOne(ctx, e, q)
		}(i, e)
	}
	wg.Wait()

	successes := 0
	for _, o := range outcomes {
		if o.Succeeded() {
			successes++
		}
		providerCalls.WithLabelValues(o.Provider, resultLabel(o)).Inc()
	}
	b.pub.Publish(Event{Name: EventDispatchDone, Fields: map[string]any{
		"id":        id,
		"successes": successes,
		"duration":  time.Since(start).String(),
	}})
	return outcomes
}

func resultLabel(o Outcome) string {
	switch o.Result {
	case provider.ResultFailure:
		return string(o.Failure)
	case provider.ResultSkipped:
		return string(o.Skip)
	default:
		if o.Cached {
			return "cached"
		}
		return "success"
	}
}

// resolveOne runs the per-candidate pipeline: health, cache, single-flight,
// admission and the upstream call.
func (b *Broker) resolveOne(ctx context.Context, e *entry, q query.Query) Outcome {
	d := e.desc
	permit, err := b.health.Acquire(d.Name)
	if err != nil {
		reason := provider.SkipCircuitOpen
		if health.IsProbeInFlight(err) {
			reason = provider.SkipCircuitHalfOpen
		}
		b.log.Debug().Str("provider", d.Name).Str("skip", string(reason)).Msg("candidate skipped")
		o := provider.Skipped(d, reason)
		if kind, ok := health.OpenedBy(err); ok {
			o.Failure = kind
		}
		return o
	}

	key := d.Key(q)
	if p, ok := b.cache.Get(ctx, d.Name, key); ok {
		cacheLookups.WithLabelValues(d.Name, "hit").Inc()
		b.health.Release(permit)
		return provider.Success(d, p, 0, true)
	}
	cacheLookups.WithLabelValues(d.Name, "miss").Inc()

	var ran atomic.Bool
	ch := b.flight.DoChan(d.Name+"\x00"+key, func() (any, error) {
		ran.Store(true)
		// The shared call outlives any single caller; its own timeout bounds it.
		return b.call(context.WithoutCancel(ctx), e, q, key, permit), nil
	})
	// Only the caller whose function ran reports; the rest hand back their permit.
	settle := func() {
		if !ran.Load() {
			b.health.Release(permit)
		}
	}
	var res callResult
	select {
	case r := <-ch:
		settle()
		res = r.Val.(callResult)
	case <-ctx.Done():
		go func() {
			<-ch
			settle()
		}()
		return provider.Skipped(d, provider.SkipCanceled)
	}
	switch {
	case res.skip != "":
		return provider.Skipped(d, res.skip)
	case res.err != nil:
		b.log.Debug().Err(res.err).Str("provider", d.Name).Msg("provider call failed")
		return provider.Failure(d, res.err, res.latency)
	default:
		return provider.Success(d, res.payload, res.latency, false)
	}
}

type reply struct {
	payload provider.Payload
	err     error
}

// call is executed by the single-flight leader only. It settles the permit
// exactly once: Report for a real upstream answer or a timeout, Release
// otherwise. The deadline is enforced here even when the provider ignores
// its context; the admission slot is held until the provider returns.
func (b *Broker) call(ctx context.Context, e *entry, q query.Query, key string, permit health.Permit) callResult {
	d := e.desc
	callCtx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	if !e.allow() {
		b.health.Release(permit)
		return callResult{skip: provider.SkipThrottled}
	}
	release, err := e.admit(callCtx, b.maxWait)
	if err != nil {
		b.health.Release(permit)
		return callResult{skip: provider.SkipBusy}
	}

	start := time.Now()
	done := make(chan reply, 1)
	go func() {
		defer release()
		p, err := e.prov.Call(callCtx, q)
		done <- reply{payload: p, err: err}
	}()
	var r reply
	select {
	case r = <-done:
	case <-callCtx.Done():
		r = reply{err: &provider.Error{Provider: d.Name, Kind: provider.KindTimeout, Err: callCtx.Err()}}
	}
	latency := time.Since(start)
	providerCallDuration.WithLabelValues(d.Name).Observe(latency.Seconds())

	kind := provider.KindOf(r.err)
	b.health.Report(permit, kind)
	if r.err != nil {
		return callResult{err: r.err, latency: latency}
	}
	b.cache.Put(ctx, d.Name, key, r.payload, d.CacheTTL)
	return callResult{payload: r.payload, latency: latency}
}
