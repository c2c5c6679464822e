// Package provider defines the capability interface every upstream source
// implements, the failure taxonomy the broker reasons about, and the HTTP
// adapters for the supported upstreams.
//
// Adapters never decide whether they should be called; relevance, health,
// caching and concurrency limits live in the broker. An adapter only turns a
// query.Query into one upstream request and classifies what came back.
package provider

import (
	"context"
	"strings"
	"time"

	"chatbroker/internal/query"
)

// Provider is implemented by every upstream adapter. Call must honor the
// context deadline; the broker sets it from the descriptor timeout.
type Provider interface {
	Name() string
	Call(ctx context.Context, q query.Query) (Payload, error)
}

// Payload is a provider's successful answer.
type Payload struct {
	// Text is the user-facing rendering of the result.
	Text string `json:"text"`
	// Fields carries structured values (symbol, price, ...) for callers that
	// want more than the text.
	Fields map[string]string `json:"fields,omitempty"`
}

// Empty reports whether the payload has no visible text.
func (p Payload) Empty() bool { return strings.TrimSpace(p.Text) == "" }

// Kind classifies a provider as a free-form reasoning source or a raw data
// source. The synthesizer prefers conversational answers.
type Kind string

const (
	KindConversational Kind = "conversational"
	KindData           Kind = "data"
)

// Descriptor is the static configuration of one provider. It is built once
// at startup and never mutated.
type Descriptor struct {
	Name          string
	Type          string
	Kind          Kind
	Facets        query.Facets
	AnyFacet      bool
	Input         query.Input
	Fallback      bool
	Timeout       time.Duration
	MaxConcurrent int
	CacheTTL      time.Duration
	// RatePerSecond is an optional client-side request rate; zero disables it.
	RatePerSecond float64
}

// Relevant reports whether the provider should be considered for a query
// with the given facets.
func (d Descriptor) Relevant(f query.Facets) bool {
	if d.AnyFacet {
		return true
	}
	return d.Facets.Intersects(f)
}

// Key derives the cache key of q for this provider.
func (d Descriptor) Key(q query.Query) string {
	return q.Key(d.Input)
}
