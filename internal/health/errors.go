package health

import (
	"fmt"
	"time"

	"chatbroker/internal/provider"
)

type circuitOpenError struct {
	name    string
	retryAt time.Time
	kind    provider.FailureKind
}

func (e circuitOpenError) Error() string {
	if e.retryAt.IsZero() {
		return fmt.Sprintf("%s: circuit open until reset", e.name)
	}
	return fmt.Sprintf("%s: circuit open until %s", e.name, e.retryAt.Format(time.RFC3339))
}

// IsCircuitOpen reports whether Acquire refused because the circuit is open.
func IsCircuitOpen(err error) bool {
	_, ok := err.(circuitOpenError)
	return ok
}

// RetryAt returns when an open circuit becomes eligible for a probe. The zero
// time means it waits for a manual reset.
func RetryAt(err error) (time.Time, bool) {
	e, ok := err.(circuitOpenError)
	return e.retryAt, ok
}

// OpenedBy returns the failure kind that opened the circuit.
func OpenedBy(err error) (provider.FailureKind, bool) {
	e, ok := err.(circuitOpenError)
	return e.kind, ok
}

type probeInFlightError struct{ name string }

func (e probeInFlightError) Error() string {
	return fmt.Sprintf("%s: half-open probe already in flight", e.name)
}

// IsProbeInFlight reports whether Acquire refused because another caller holds
// the half-open probe.
func IsProbeInFlight(err error) bool {
	_, ok := err.(probeInFlightError)
	return ok
}

type unknownProviderError struct{ name string }

func (e unknownProviderError) Error() string { return "unknown provider: " + e.name }

// IsUnknownProvider reports whether the name was never registered.
func IsUnknownProvider(err error) bool {
	_, ok := err.(unknownProviderError)
	return ok
}
