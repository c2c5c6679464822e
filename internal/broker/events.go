package broker

import (
	"chatbroker/internal/health"
	"chatbroker/internal/provider"
)

// Event names published by the broker.
const (
	EventCircuitOpen     = "circuit_open"
	EventCircuitHalfOpen = "circuit_half_open"
	EventCircuitClosed   = "circuit_closed"
	EventDispatchStart   = "dispatch_start"
	EventDispatchDone    = "dispatch_done"
)

// Event represents a broker lifecycle event.
// Minimal and stable: name + provider and optional fields via key/values.
type Event struct {
	Name     string
	Provider string
	Fields   map[string]any
}

// EventPublisher receives events from the broker. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// onTransition fans a circuit change out to events, metrics and logs.
func (b *Broker) onTransition(tr health.Transition) {
	circuitTransitions.WithLabelValues(tr.Provider, string(tr.To)).Inc()
	circuitState.WithLabelValues(tr.Provider).Set(stateValue(tr.To))

	fields := map[string]any{"from": string(tr.From)}
	if tr.Kind != provider.KindNone {
		fields["kind"] = string(tr.Kind)
	}
	switch tr.To {
	case health.StateOpen:
		fields["cooldown"] = tr.Cooldown.String()
		b.pub.Publish(Event{Name: EventCircuitOpen, Provider: tr.Provider, Fields: fields})
		ev := b.log.Warn()
		if tr.Kind == provider.KindUnauthorized {
			ev = b.log.Error()
		}
		ev.Str("provider", tr.Provider).Str("kind", string(tr.Kind)).Dur("cooldown", tr.Cooldown).
			Bool("manual_reset", tr.Cooldown <= 0).Msg("circuit open")
	case health.StateHalfOpen:
		b.pub.Publish(Event{Name: EventCircuitHalfOpen, Provider: tr.Provider, Fields: fields})
		b.log.Info().Str("provider", tr.Provider).Msg("circuit half-open")
	case health.StateClosed:
		b.pub.Publish(Event{Name: EventCircuitClosed, Provider: tr.Provider, Fields: fields})
		b.log.Info().Str("provider", tr.Provider).Str("from", string(tr.From)).Msg("circuit closed")
	}
}
