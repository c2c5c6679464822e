package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chatbroker/internal/provider"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemory_PutGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, ok := m.Get(ctx, "finnhub", "stock:AAPL")
	require.False(t, ok)

	m.Put(ctx, "finnhub", "stock:AAPL", provider.Payload{Text: "AAPL: 150.00 (+1.20%)"}, time.Minute)
	p, ok := m.Get(ctx, "finnhub", "stock:AAPL")
	require.True(t, ok)
	require.Equal(t, "AAPL: 150.00 (+1.20%)", p.Text)
}

func TestMemory_ProvidersDoNotShareEntries(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Put(ctx, "finnhub", "stock:AAPL", provider.Payload{Text: "a"}, time.Minute)
	_, ok := m.Get(ctx, "alphavantage", "stock:AAPL")
	require.False(t, ok)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	c := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := NewMemory(WithClock(c.Now))
	m.Put(ctx, "p", "k", provider.Payload{Text: "x"}, 10*time.Second)

	c.Advance(9 * time.Second)
	_, ok := m.Get(ctx, "p", "k")
	require.True(t, ok)

	c.Advance(time.Second)
	_, ok = m.Get(ctx, "p", "k")
	require.False(t, ok)
	require.Equal(t, 0, m.Len())
}

func TestMemory_NonPositiveTTLIsNoop(t *testing.T) {
	m := NewMemory()
	m.Put(context.Background(), "p", "k", provider.Payload{Text: "x"}, 0)
	require.Equal(t, 0, m.Len())
}

func TestMemory_Sweep(t *testing.T) {
	ctx := context.Background()
	c := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := NewMemory(WithClock(c.Now), WithShards(4))
	for i := 0; i < 20; i++ {
		ttl := time.Minute
		if i%2 == 0 {
			ttl = time.Second
		}
		m.Put(ctx, "p", fmt.Sprint(i), provider.Payload{Text: "x"}, ttl)
	}
	c.Advance(2 * time.Second)
	require.Equal(t, 10, m.Sweep())
	require.Equal(t, 10, m.Len())
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := fmt.Sprintf("k%d", i%17)
				m.Put(ctx, "p", k, provider.Payload{Text: k}, time.Minute)
				if p, ok := m.Get(ctx, "p", k); ok && p.Text != k {
					t.Errorf("got %q for %q", p.Text, k)
				}
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 17, m.Len())
}

func TestNop(t *testing.T) {
	var s Store = Nop{}
	s.Put(context.Background(), "p", "k", provider.Payload{Text: "x"}, time.Minute)
	_, ok := s.Get(context.Background(), "p", "k")
	require.False(t, ok)
}
