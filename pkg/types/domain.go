package types

// OutcomeStatus reports what happened to one candidate provider.
type OutcomeStatus struct {
	// example: finnhub
	Provider string `json:"provider" example:"finnhub"`
	// One of success, failure, skipped.
	// example: success
	Result string `json:"result" example:"success"`
	// Failure kind when result is failure (timeout, rate_limited, unauthorized, bad_request, unavailable),
	// or the kind that opened the circuit for a circuit-open skip.
	Failure string `json:"failure,omitempty"`
	// Skip reason when result is skipped (circuit-open, circuit-half-open, busy, throttled, canceled).
	Skip string `json:"skip,omitempty"`
	// True when the payload came from the response cache.
	Cached bool `json:"cached,omitempty"`
	// Call latency in milliseconds; zero for cache hits and skips.
	// example: 142
	LatencyMS int64 `json:"latency_ms" example:"142"`
}

// ProviderStatus is one row of GET /providers: static descriptor plus the
// live circuit state.
type ProviderStatus struct {
	// example: finnhub
	Name string `json:"name" example:"finnhub"`
	// Adapter type.
	// example: finnhub
	Type string `json:"type" example:"finnhub"`
	// conversational or data.
	// example: data
	Kind string `json:"kind" example:"data"`
	// Facets served; ["*"] matches every query.
	// example: ["stock"]
	Facets []string `json:"facets" example:"stock"`
	// Query entity sent upstream.
	// example: stock
	Input string `json:"input" example:"stock"`
	// Designated general-purpose provider.
	Fallback bool `json:"fallback,omitempty"`
	// example: 8000
	TimeoutMS int64 `json:"timeout_ms" example:"8000"`
	// example: 60
	CacheTTLSeconds int64 `json:"cache_ttl_seconds" example:"60"`
	// example: 4
	MaxConcurrent int `json:"max_concurrent" example:"4"`
	// Calls currently holding an admission slot.
	// example: 0
	InFlight int `json:"inflight" example:"0"`
	// Circuit state: closed, open, half_open.
	// example: closed
	State string `json:"state" example:"closed"`
	// Transient failures inside the sliding window.
	// example: 0
	ConsecutiveFailures int `json:"consecutive_failures" example:"0"`
	// Last failure kind, if any.
	LastFailure string `json:"last_failure,omitempty"`
	// Unix seconds of the last failure.
	LastFailureUnix int64 `json:"last_failure_unix,omitempty"`
	// Unix seconds when an open circuit becomes eligible for a probe.
	RetryAtUnix int64 `json:"retry_at_unix,omitempty"`
	// True when the circuit stays open until POST /providers/{name}/reset.
	ManualReset bool `json:"manual_reset,omitempty"`
	// example: 12
	Successes uint64 `json:"successes" example:"12"`
	// example: 1
	Failures uint64 `json:"failures" example:"1"`
}
