package broker

import (
	"time"

	"github.com/rs/zerolog"

	"chatbroker/internal/cache"
	"chatbroker/internal/health"
	"chatbroker/internal/provider"
	"chatbroker/internal/synth"
)

// Defaults applied when corresponding descriptor or Config fields are unset.
const (
	defaultTimeout       = 8 * time.Second
	defaultMaxConcurrent = 4
)

// Entry pairs a descriptor with its adapter.
type Entry struct {
	Descriptor provider.Descriptor
	Provider   provider.Provider
}

// Config encapsulates all tunables for Broker construction.
type Config struct {
	// Entries in static dispatch order. Only enabled providers belong here.
	Entries []Entry
	// Cache defaults to an in-process Memory store.
	Cache cache.Store
	// Health tunables; OnTransition is chained after the broker's own hook.
	Health health.Config
	// Per-provider health overrides keyed by provider name.
	Policies map[string]health.Policy
	Synth    synth.Options
	// MaxWait bounds how long a call waits for an admission slot. Zero means
	// until the call deadline.
	MaxWait time.Duration
	// Publisher receives lifecycle events; nil drops them.
	Publisher EventPublisher
	// Logger is optional; nil disables broker logging.
	Logger *zerolog.Logger
}

// New constructs a Broker from Config.
func New(cfg Config) *Broker {
	b := &Broker{
		byName:  make(map[string]*entry, len(cfg.Entries)),
		cache:   cfg.Cache,
		synth:   cfg.Synth,
		maxWait: cfg.MaxWait,
		pub:     cfg.Publisher,
	}
	if b.cache == nil {
		b.cache = cache.NewMemory()
	}
	if b.pub == nil {
		b.pub = noopPublisher{}
	}
	if cfg.Logger != nil {
		b.log = *cfg.Logger
	} else {
		b.log = zerolog.Nop()
	}

	policies := make([]health.Policy, 0, len(cfg.Entries))
	for _, e := range cfg.Entries {
		d := e.Descriptor
		if d.Name == "" || e.Provider == nil {
			continue
		}
		if _, dup := b.byName[d.Name]; dup {
			continue
		}
		// Apply defaults if unset
		if d.Timeout <= 0 {
			d.Timeout = defaultTimeout
		}
		if d.MaxConcurrent <= 0 {
			d.MaxConcurrent = defaultMaxConcurrent
		}
		if d.Kind == "" {
			d.Kind = provider.KindData
		}
		ent := newEntry(d, e.Provider)
		b.entries = append(b.entries, ent)
		b.byName[d.Name] = ent
		if b.fallback == nil && d.Fallback {
			b.fallback = ent
		}
		p := cfg.Policies[d.Name]
		p.Name = d.Name
		policies = append(policies, p)
	}

	hc := cfg.Health
	next := hc.OnTransition
	hc.OnTransition = func(tr health.Transition) {
		b.onTransition(tr)
		if next != nil {
			next(tr)
		}
	}
	b.health = health.New(hc, policies...)
	for _, ent := range b.entries {
		circuitState.WithLabelValues(ent.desc.Name).Set(stateValue(health.StateClosed))
	}
	return b
}
