package provider

import "time"

// Result is the coarse result of one candidate in a resolution.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
	ResultSkipped Result = "skipped"
)

// SkipReason explains why a candidate was not called.
type SkipReason string

const (
	SkipCircuitOpen     SkipReason = "circuit-open"
	SkipCircuitHalfOpen SkipReason = "circuit-half-open"
	SkipBusy            SkipReason = "busy"
	SkipThrottled       SkipReason = "throttled"
	SkipCanceled        SkipReason = "canceled"
)

// Outcome is what happened to one candidate provider for one query.
type Outcome struct {
	Provider string
	Kind     Kind
	Result   Result
	Payload  Payload
	// Failure is the failure kind of a failed call, or for a circuit-open
	// skip the kind that opened the circuit.
	Failure FailureKind
	Skip    SkipReason
	// Detail is a diagnostic message for failures; never shown as an answer.
	Detail  string
	Latency time.Duration
	Cached  bool
}

// Succeeded reports whether the outcome carries a payload.
func (o Outcome) Succeeded() bool { return o.Result == ResultSuccess }

// Success builds a successful outcome.
func Success(d Descriptor, p Payload, latency time.Duration, cached bool) Outcome {
	return Outcome{Provider: d.Name, Kind: d.Kind, Result: ResultSuccess, Payload: p, Latency: latency, Cached: cached}
}

// Failure builds a failed outcome from a Call error.
func Failure(d Descriptor, err error, latency time.Duration) Outcome {
	o := Outcome{Provider: d.Name, Kind: d.Kind, Result: ResultFailure, Failure: KindOf(err), Latency: latency}
	if err != nil {
		o.Detail = err.Error()
	}
	return o
}

// Skipped builds an outcome for a candidate that was never called.
func Skipped(d Descriptor, reason SkipReason) Outcome {
	return Outcome{Provider: d.Name, Kind: d.Kind, Result: ResultSkipped, Skip: reason}
}
