// Package synth reduces provider outcomes to one user-facing answer.
package synth

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"chatbroker/internal/provider"
	"chatbroker/internal/query"
)

// Fixed replies used when nothing succeeded.
const (
	MessageUnavailable   = "Sorry, none of my data sources could be reached right now. Please try again in a few minutes."
	MessageMisconfigured = "Sorry, I can't answer right now: my data sources rejected the configured credentials. Please contact the administrator."
)

const defaultMinAnswerLength = 20

// Options tunes synthesis.
type Options struct {
	// MinAnswerLength is the minimum rune count of a conversational answer
	// for it to be returned on its own. Zero means the default.
	MinAnswerLength int
}

// Result is the synthesized answer.
type Result struct {
	Text          string
	ProvidersUsed []string
}

// Synthesize is pure: the output depends only on the outcomes and their
// order, never on completion timing.
//
//  1. The first successful conversational outcome with a long enough answer
//     is returned as is.
//  2. Otherwise every non-empty successful payload is listed as
//     "N. [provider] text" in outcome order.
//  3. With no usable success, a fixed message is returned; the credentials
//     message is chosen only when every failure, counting circuits held open
//     by an earlier failure, was unauthorized.
func Synthesize(q query.Query, outcomes []provider.Outcome, opts Options) Result {
	minLen := opts.MinAnswerLength
	if minLen <= 0 {
		minLen = defaultMinAnswerLength
	}

	for _, o := range outcomes {
		if !o.Succeeded() || o.Kind != provider.KindConversational {
			continue
		}
		text := strings.TrimSpace(o.Payload.Text)
		if utf8.RuneCountInString(text) >= minLen {
			return Result{Text: text, ProvidersUsed: []string{o.Provider}}
		}
	}

	var (
		b    strings.Builder
		used []string
	)
	for _, o := range outcomes {
		if !o.Succeeded() || o.Payload.Empty() {
			continue
		}
		if len(used) > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(len(used) + 1))
		b.WriteString(". [")
		b.WriteString(o.Provider)
		b.WriteString("] ")
		b.WriteString(strings.TrimSpace(o.Payload.Text))
		used = append(used, o.Provider)
	}
	if len(used) > 0 {
		return Result{Text: b.String(), ProvidersUsed: used}
	}
	return Result{Text: fallback(outcomes), ProvidersUsed: []string{}}
}

func fallback(outcomes []provider.Outcome) string {
	failures := 0
	for _, o := range outcomes {
		switch {
		case o.Result == provider.ResultFailure:
		case o.Result == provider.ResultSkipped && o.Skip == provider.SkipCircuitOpen && o.Failure != provider.KindNone:
			// A circuit held open by an earlier failure stands for that failure.
		default:
			continue
		}
		if o.Failure != provider.KindUnauthorized {
			return MessageUnavailable
		}
		failures++
	}
	if failures > 0 {
		return MessageMisconfigured
	}
	return MessageUnavailable
}
