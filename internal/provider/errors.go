package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// FailureKind is the broker-facing classification of a failed call.
type FailureKind string

const (
	// KindNone marks a successful call when reporting to the health tracker.
	KindNone         FailureKind = ""
	KindTimeout      FailureKind = "timeout"
	KindRateLimited  FailureKind = "rate_limited"
	KindUnauthorized FailureKind = "unauthorized"
	KindBadRequest   FailureKind = "bad_request"
	KindUnavailable  FailureKind = "unavailable"
)

// Transient reports whether the kind counts toward the consecutive failure
// threshold.
func (k FailureKind) Transient() bool {
	return k == KindTimeout || k == KindUnavailable
}

// Error is returned by adapters for classified upstream failures.
type Error struct {
	Provider string
	Kind     FailureKind
	Status   int
	Err      error
}

func (e *Error) Error() string {
	msg := e.Provider + ": " + string(e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a classified error.
func Errorf(name string, kind FailureKind, format string, args ...any) error {
	return &Error{Provider: name, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf classifies any error returned from Call. Deadline and cancellation
// errors map to timeout; unclassified errors map to unavailable.
func KindOf(err error) FailureKind {
	if err == nil {
		return KindNone
	}
	var pe *Error
	if errors.As(err, &pe) && pe.Kind != KindNone {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	return KindUnavailable
}

// KindForStatus maps an upstream HTTP status to a failure kind. It returns
// KindNone for 2xx.
func KindForStatus(status int) FailureKind {
	switch {
	case status >= 200 && status < 300:
		return KindNone
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 400 && status < 500:
		return KindBadRequest
	default:
		return KindUnavailable
	}
}
