package cache

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"chatbroker/internal/provider"
)

const defaultShards = 16

// Memory is a sharded in-process cache. Expired entries are dropped lazily on
// read and by Sweep.
type Memory struct {
	shards []*shard
	now    func() time.Time
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	payload   provider.Payload
	expiresAt time.Time
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// WithShards sets the shard count (minimum 1).
func WithShards(n int) MemoryOption {
	return func(m *Memory) {
		if n < 1 {
			n = 1
		}
		m.shards = newShards(n)
	}
}

// NewMemory returns an empty cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{shards: newShards(defaultShards), now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

func newShards(n int) []*shard {
	out := make([]*shard, n)
	for i := range out {
		out[i] = &shard{entries: make(map[string]entry)}
	}
	return out
}

func (m *Memory) shardFor(k string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(k))
	return m.shards[h.Sum32()%uint32(len(m.shards))]
}

// Get returns a live entry.
func (m *Memory) Get(_ context.Context, providerName, key string) (provider.Payload, bool) {
	k := entryKey(providerName, key)
	s := m.shardFor(k)
	s.mu.RLock()
	e, ok := s.entries[k]
	s.mu.RUnlock()
	if !ok {
		return provider.Payload{}, false
	}
	if !m.now().Before(e.expiresAt) {
		s.mu.Lock()
		if cur, ok := s.entries[k]; ok && !m.now().Before(cur.expiresAt) {
			delete(s.entries, k)
		}
		s.mu.Unlock()
		return provider.Payload{}, false
	}
	return e.payload, true
}

// Put stores p for ttl. A non-positive ttl is a no-op.
func (m *Memory) Put(_ context.Context, providerName, key string, p provider.Payload, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	k := entryKey(providerName, key)
	s := m.shardFor(k)
	s.mu.Lock()
	s.entries[k] = entry{payload: p, expiresAt: m.now().Add(ttl)}
	s.mu.Unlock()
}

// Len counts stored entries, expired or not.
func (m *Memory) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// Sweep removes expired entries and returns how many were dropped.
func (m *Memory) Sweep() int {
	now := m.now()
	dropped := 0
	for _, s := range m.shards {
		s.mu.Lock()
		for k, e := range s.entries {
			if !now.Before(e.expiresAt) {
				delete(s.entries, k)
				dropped++
			}
		}
		s.mu.Unlock()
	}
	return dropped
}

// Run sweeps every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
