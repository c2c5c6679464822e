// Package cache stores successful provider payloads with a per-entry TTL.
//
// Only successes are ever stored. Entries are addressed by provider name and
// the provider-specific query key, so two providers never share an entry.
package cache

import (
	"context"
	"time"

	"chatbroker/internal/provider"
)

// Store is implemented by the in-process Memory cache and the optional Redis
// cache. Get reports a miss for absent or expired entries; backend errors are
// treated as misses by callers.
type Store interface {
	Get(ctx context.Context, providerName, key string) (provider.Payload, bool)
	Put(ctx context.Context, providerName, key string, p provider.Payload, ttl time.Duration)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, string) (provider.Payload, bool) {
	return provider.Payload{}, false
}

func (Nop) Put(context.Context, string, string, provider.Payload, time.Duration) {}

func entryKey(providerName, key string) string { return providerName + "\x00" + key }
