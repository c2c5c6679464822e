package broker

import (
	"context"

	"github.com/google/uuid"

	"chatbroker/internal/query"
	"chatbroker/internal/synth"
	"chatbroker/pkg/types"
)

// Answer classifies text, resolves it and synthesizes one reply. Provider
// failures are reflected in the outcomes, never returned as errors.
func (b *Broker) Answer(ctx context.Context, text string) types.AnswerResponse {
	q := query.Classify(text)
	id := uuid.NewString()
	outcomes := b.resolve(ctx, q, b.candidates(q), id)
	return b.respond(id, q, outcomes)
}

// AnswerOnly is Answer restricted to the named provider.
func (b *Broker) AnswerOnly(ctx context.Context, text, name string) (types.AnswerResponse, error) {
	e, ok := b.byName[name]
	if !ok {
		return types.AnswerResponse{}, ErrProviderNotFound(name)
	}
	q := query.Classify(text)
	id := uuid.NewString()
	outcomes := b.resolve(ctx, q, []*entry{e}, id)
	return b.respond(id, q, outcomes), nil
}

func (b *Broker) respond(id string, q query.Query, outcomes []Outcome) types.AnswerResponse {
	res := synth.Synthesize(q, outcomes, b.synth)
	resp := types.AnswerResponse{
		ID:            id,
		Answer:        res.Text,
		ProvidersUsed: res.ProvidersUsed,
		Outcomes:      make([]types.OutcomeStatus, len(outcomes)),
		Facets:        q.Facets().Names(),
	}
	for i, o := range outcomes {
		resp.Outcomes[i] = types.OutcomeStatus{
			Provider:  o.Provider,
			Result:    string(o.Result),
			Failure:   string(o.Failure),
			Skip:      string(o.Skip),
			Cached:    o.Cached,
			LatencyMS: o.Latency.Milliseconds(),
		}
	}
	b.log.Info().Str("id", id).Strs("providers_used", res.ProvidersUsed).Int("candidates", len(outcomes)).Msg("answer")
	return resp
}
