package broker

import (
	"chatbroker/internal/health"
	"chatbroker/pkg/types"
)

// Providers builds the status rows for /providers, in dispatch order.
func (b *Broker) Providers() []types.ProviderStatus {
	out := make([]types.ProviderStatus, 0, len(b.entries))
	for _, e := range b.entries {
		d := e.desc
		row := types.ProviderStatus{
			Name:            d.Name,
			Type:            d.Type,
			Kind:            string(d.Kind),
			Facets:          d.Facets.Names(),
			Input:           string(d.Input),
			Fallback:        d.Fallback,
			TimeoutMS:       d.Timeout.Milliseconds(),
			CacheTTLSeconds: int64(d.CacheTTL.Seconds()),
			MaxConcurrent:   cap(e.slots),
			InFlight:        e.inflight(),
			State:           string(health.StateClosed),
		}
		if d.AnyFacet {
			row.Facets = []string{"*"}
		}
		if st, ok := b.health.Status(d.Name); ok {
			row.State = string(st.State)
			row.ConsecutiveFailures = st.ConsecutiveFailures
			row.LastFailure = string(st.LastFailure)
			row.ManualReset = st.ManualReset
			row.Successes = st.Successes
			row.Failures = st.Failures
			if !st.LastFailureAt.IsZero() {
				row.LastFailureUnix = st.LastFailureAt.Unix()
			}
			if !st.RetryAt.IsZero() {
				row.RetryAtUnix = st.RetryAt.Unix()
			}
		}
		out = append(out, row)
	}
	return out
}
