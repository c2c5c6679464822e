package broker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"chatbroker/internal/cache"
	"chatbroker/internal/health"
	"chatbroker/internal/provider"
	"chatbroker/internal/query"
)

// fakeProvider records calls and answers through respond. A zero respond
// blocks until the call context is done.
type fakeProvider struct {
	name    string
	calls   atomic.Int32
	mu      sync.Mutex
	inputs  []string
	respond func(ctx context.Context, q query.Query) (provider.Payload, error)
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Call(ctx context.Context, q query.Query) (provider.Payload, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.inputs = append(f.inputs, q.Raw())
	f.mu.Unlock()
	if f.respond == nil {
		<-ctx.Done()
		return provider.Payload{}, ctx.Err()
	}
	return f.respond(ctx, q)
}

func (f *fakeProvider) Calls() int { return int(f.calls.Load()) }

func replying(name, text string) *fakeProvider {
	return &fakeProvider{name: name, respond: func(context.Context, query.Query) (provider.Payload, error) {
		return provider.Payload{Text: text}, nil
	}}
}

func failing(name string, kind provider.FailureKind) *fakeProvider {
	return &fakeProvider{name: name, respond: func(context.Context, query.Query) (provider.Payload, error) {
		return provider.Payload{}, &provider.Error{Provider: name, Kind: kind}
	}}
}

func hanging(name string) *fakeProvider { return &fakeProvider{name: name} }

func stockDesc(name string) provider.Descriptor {
	return provider.Descriptor{
		Name:     name,
		Type:     provider.TypeFinnhub,
		Kind:     provider.KindData,
		Facets:   query.Facets(0).With(query.FacetStock),
		Input:    query.InputStock,
		Timeout:  time.Second,
		CacheTTL: time.Minute,
	}
}

func newsDesc(name string) provider.Descriptor {
	return provider.Descriptor{
		Name:     name,
		Type:     provider.TypeNewsAPI,
		Kind:     provider.KindData,
		Facets:   query.Facets(0).With(query.FacetNews),
		Input:    query.InputSearch,
		Timeout:  time.Second,
		CacheTTL: time.Minute,
	}
}

func llmDesc(name string) provider.Descriptor {
	return provider.Descriptor{
		Name:     name,
		Type:     provider.TypeOpenAI,
		Kind:     provider.KindConversational,
		AnyFacet: false,
		Input:    query.InputText,
		Fallback: true,
		Timeout:  time.Second,
		CacheTTL: time.Minute,
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestBroker(t *testing.T, c *clock, pub EventPublisher, entries ...Entry) *Broker {
	t.Helper()
	hc := health.Config{}
	if c != nil {
		hc.Now = c.Now
	}
	return New(Config{
		Entries:   entries,
		Cache:     cache.NewMemory(),
		Health:    hc,
		Publisher: pub,
	})
}

func outcomeOf(t *testing.T, outs []Outcome, name string) Outcome {
	t.Helper()
	for _, o := range outs {
		if o.Provider == name {
			return o
		}
	}
	t.Fatalf("no outcome for %s in %+v", name, outs)
	return Outcome{}
}
