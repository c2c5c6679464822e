package broker

import (
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"chatbroker/internal/cache"
	"chatbroker/internal/health"
	"chatbroker/internal/provider"
	"chatbroker/internal/synth"
)

// Broker owns the provider table, the health tracker, the cache and the
// single-flight group. It is safe for concurrent use.
type Broker struct {
	entries  []*entry // static dispatch order
	byName   map[string]*entry
	fallback *entry

	health  *health.Tracker
	cache   cache.Store
	flight  singleflight.Group
	synth   synth.Options
	maxWait time.Duration

	pub EventPublisher
	log zerolog.Logger
}

// Ready reports whether at least one provider is enabled.
func (b *Broker) Ready() bool { return len(b.entries) > 0 }

// Descriptors returns the effective descriptors in dispatch order.
func (b *Broker) Descriptors() []provider.Descriptor {
	out := make([]provider.Descriptor, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.desc
	}
	return out
}

// Reset closes the circuit of name.
func (b *Broker) Reset(name string) error {
	if _, ok := b.byName[name]; !ok {
		return ErrProviderNotFound(name)
	}
	if err := b.health.Reset(name); err != nil {
		return err
	}
	b.log.Info().Str("provider", name).Msg("circuit reset")
	return nil
}

// Health exposes the tracker for status reporting.
func (b *Broker) Health() *health.Tracker { return b.health }
