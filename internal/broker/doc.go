// Package broker resolves a classified query against the configured
// providers and synthesizes one answer. It is structured into small files by
// concern:
//
//   - broker.go: core Broker type, constructor, simple getters.
//   - config.go: Config and package defaults; New applies defaults.
//   - errors.go: error types and helpers (IsProviderNotFound, IsTooBusy).
//   - admission.go: per-provider concurrency slots and rate limiting.
//   - dispatch.go: Resolve/ResolveOnly: candidate selection, health filter,
//     cache, single-flight and concurrent calls.
//   - answer.go: Answer entry points (classify, resolve, synthesize).
//   - events.go: EventPublisher and lifecycle events.
//   - metrics.go: Prometheus collectors for provider calls and circuits.
//   - status_report.go: provider status rows for /providers.
//
// Provider errors never escape this package as errors; they become Outcome
// values and are reflected only in which payloads reach the synthesizer.
package broker
