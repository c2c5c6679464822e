package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"chatbroker/internal/cache"
	"chatbroker/internal/config"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func run(t *testing.T, env map[string]string, args ...string) string {
	t.Helper()
	cmd := newRootCmdWith(envOf(env))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestClassifyCommand(t *testing.T) {
	out := run(t, nil, "classify", "What", "is", "the", "price", "of", "AAPL?")
	require.Contains(t, out, "facets:")
	require.Contains(t, out, "stock")
	require.Contains(t, out, "AAPL")
}

func TestProvidersCommand_DefaultTable(t *testing.T) {
	out := run(t, map[string]string{"FINNHUB_KEY": "k"}, "providers")
	require.Contains(t, out, "NAME")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	var finnhub string
	for _, l := range lines {
		if strings.HasPrefix(l, "finnhub ") {
			finnhub = l
		}
	}
	require.NotEmpty(t, finnhub, out)
	require.Contains(t, finnhub, "true")
	require.Contains(t, out, "groq")
	require.Contains(t, out, "(fallback)")
}

func TestProvidersCommand_FromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brokerd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
providers:
  - name: quotes
    type: finnhub
    timeout: 2s
`), 0o644))
	out := run(t, nil, "providers", "--config", path)
	require.Contains(t, out, "quotes")
	require.Contains(t, out, "2s")
	require.NotContains(t, out, "newsapi")
}

func TestLoadConfig_Precedence(t *testing.T) {
	opts := &options{getenv: envOf(map[string]string{config.EnvAddr: ":9000"})}
	cfg, err := loadConfig(opts)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Addr)
	require.Equal(t, "info", cfg.LogLevel)

	opts.addr = ":7000"
	cfg, err = loadConfig(opts)
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.Addr)
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "warn", "json")
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
	require.Equal(t, zerolog.InfoLevel, newLogger(&buf, "nonsense", "").GetLevel())
}

func TestNewCacheStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log := zerolog.Nop()

	s, closeFn, err := newCacheStore(ctx, config.Cache{}, log)
	require.NoError(t, err)
	require.IsType(t, &cache.Memory{}, s)
	closeFn()

	s, _, err = newCacheStore(ctx, config.Cache{Backend: "none"}, log)
	require.NoError(t, err)
	require.IsType(t, cache.Nop{}, s)

	_, _, err = newCacheStore(ctx, config.Cache{Backend: "redis"}, log)
	require.Error(t, err)

	_, _, err = newCacheStore(ctx, config.Cache{Backend: "memcached"}, log)
	require.Error(t, err)
}

func TestBuildBroker_DefaultTableWithoutKeys(t *testing.T) {
	b, closeFn, err := buildBroker(context.Background(), config.Config{}, envOf(nil), zerolog.Nop())
	require.NoError(t, err)
	defer closeFn()
	require.False(t, b.Ready())
	resp := b.Answer(context.Background(), "What is the price of AAPL?")
	require.Empty(t, resp.ProvidersUsed)
}
