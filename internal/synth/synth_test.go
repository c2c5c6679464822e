package synth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"chatbroker/internal/provider"
	"chatbroker/internal/query"
)

var (
	llm    = provider.Descriptor{Name: "groq", Kind: provider.KindConversational}
	quotes = provider.Descriptor{Name: "finnhub", Kind: provider.KindData}
	news   = provider.Descriptor{Name: "newsapi", Kind: provider.KindData}
)

func ok(d provider.Descriptor, text string) provider.Outcome {
	return provider.Success(d, provider.Payload{Text: text}, time.Millisecond, false)
}

func failed(d provider.Descriptor, kind provider.FailureKind) provider.Outcome {
	return provider.Failure(d, &provider.Error{Provider: d.Name, Kind: kind}, time.Millisecond)
}

func TestConversationalAnswerWins(t *testing.T) {
	q := query.Classify("How is AAPL doing?")
	res := Synthesize(q, []provider.Outcome{
		ok(quotes, "AAPL: 150.00 (+1.20%)"),
		ok(llm, "  Apple is trading near 150 dollars today.  "),
	}, Options{})
	require.Equal(t, "Apple is trading near 150 dollars today.", res.Text)
	require.Equal(t, []string{"groq"}, res.ProvidersUsed)
}

func TestShortConversationalAnswerFallsThroughToList(t *testing.T) {
	q := query.Classify("What is the price of AAPL?")
	res := Synthesize(q, []provider.Outcome{
		ok(quotes, "AAPL: 150.00 (+1.20%)"),
		ok(llm, "It's up."),
		failed(news, provider.KindTimeout),
	}, Options{})
	require.Equal(t, "1. [finnhub] AAPL: 150.00 (+1.20%)\n2. [groq] It's up.", res.Text)
	require.Equal(t, []string{"finnhub", "groq"}, res.ProvidersUsed)
}

func TestMinAnswerLengthOption(t *testing.T) {
	res := Synthesize(query.Classify("hi"), []provider.Outcome{ok(llm, "Hello!")}, Options{MinAnswerLength: 3})
	require.Equal(t, "Hello!", res.Text)
}

func TestEmptyPayloadsAreSkipped(t *testing.T) {
	res := Synthesize(query.Classify("news on rockets"), []provider.Outcome{
		ok(news, "   "),
		ok(quotes, "AAPL: 150.00 (+1.20%)"),
	}, Options{})
	require.Equal(t, "1. [finnhub] AAPL: 150.00 (+1.20%)", res.Text)
}

func TestAllFailedIsUnavailable(t *testing.T) {
	res := Synthesize(query.Classify("AAPL"), []provider.Outcome{
		failed(quotes, provider.KindBadRequest),
		failed(llm, provider.KindUnauthorized),
	}, Options{})
	require.Equal(t, MessageUnavailable, res.Text)
	require.Empty(t, res.ProvidersUsed)
}

func TestAllUnauthorizedIsMisconfigured(t *testing.T) {
	res := Synthesize(query.Classify("AAPL"), []provider.Outcome{
		failed(quotes, provider.KindUnauthorized),
		provider.Skipped(news, provider.SkipCircuitOpen),
		failed(llm, provider.KindUnauthorized),
	}, Options{})
	require.Equal(t, MessageMisconfigured, res.Text)
}

func heldOpen(d provider.Descriptor, kind provider.FailureKind) provider.Outcome {
	o := provider.Skipped(d, provider.SkipCircuitOpen)
	o.Failure = kind
	return o
}

func TestCircuitHeldOpenByUnauthorizedIsMisconfigured(t *testing.T) {
	res := Synthesize(query.Classify("AAPL"), []provider.Outcome{
		heldOpen(quotes, provider.KindUnauthorized),
		failed(news, provider.KindUnauthorized),
	}, Options{})
	require.Equal(t, MessageMisconfigured, res.Text)

	res = Synthesize(query.Classify("AAPL"), []provider.Outcome{heldOpen(quotes, provider.KindUnauthorized)}, Options{})
	require.Equal(t, MessageMisconfigured, res.Text)
}

func TestCircuitHeldOpenByRateLimitIsUnavailable(t *testing.T) {
	res := Synthesize(query.Classify("AAPL"), []provider.Outcome{
		heldOpen(quotes, provider.KindRateLimited),
		failed(news, provider.KindUnauthorized),
	}, Options{})
	require.Equal(t, MessageUnavailable, res.Text)
}

func TestOnlySkippedIsUnavailable(t *testing.T) {
	res := Synthesize(query.Classify("AAPL"), []provider.Outcome{
		provider.Skipped(quotes, provider.SkipCircuitOpen),
	}, Options{})
	require.Equal(t, MessageUnavailable, res.Text)
	require.Equal(t, MessageUnavailable, Synthesize(query.Classify(""), nil, Options{}).Text)
}

func genOutcome(t *rapid.T, label string) provider.Outcome {
	d := provider.Descriptor{
		Name: rapid.SampledFrom([]string{"groq", "hf", "finnhub", "alphavantage", "newsapi"}).Draw(t, label+"-name"),
		Kind: rapid.SampledFrom([]provider.Kind{provider.KindConversational, provider.KindData}).Draw(t, label+"-kind"),
	}
	switch rapid.IntRange(0, 2).Draw(t, label+"-result") {
	case 0:
		return ok(d, rapid.String().Draw(t, label+"-text"))
	case 1:
		return failed(d, rapid.SampledFrom([]provider.FailureKind{
			provider.KindTimeout, provider.KindRateLimited, provider.KindUnauthorized,
			provider.KindBadRequest, provider.KindUnavailable,
		}).Draw(t, label+"-kind"))
	default:
		return provider.Skipped(d, provider.SkipCircuitOpen)
	}
}

func TestSynthesizeIsDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(t, "n")
		outs := make([]provider.Outcome, n)
		for i := range outs {
			outs[i] = genOutcome(t, "o")
		}
		q := query.Classify(rapid.String().Draw(t, "query"))
		a := Synthesize(q, outs, Options{})
		// Latency differences model a different completion order.
		shuffled := make([]provider.Outcome, n)
		copy(shuffled, outs)
		for i := range shuffled {
			shuffled[i].Latency = time.Duration(n-i) * time.Second
		}
		b := Synthesize(q, shuffled, Options{})
		if a.Text != b.Text {
			t.Fatalf("text differs: %q vs %q", a.Text, b.Text)
		}
		if len(a.ProvidersUsed) != len(b.ProvidersUsed) {
			t.Fatalf("providers differ: %v vs %v", a.ProvidersUsed, b.ProvidersUsed)
		}
		if a.Text == "" {
			t.Fatalf("empty answer for %v", outs)
		}
	})
}
