package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"chatbroker/internal/broker"
	"chatbroker/internal/cache"
	"chatbroker/internal/config"
	"chatbroker/internal/health"
	"chatbroker/internal/httpapi"
	"chatbroker/internal/provider"
	"chatbroker/internal/registry"
	"chatbroker/internal/synth"
)

const (
	defaultSweepInterval = time.Minute
	shutdownTimeout      = 5 * time.Second
)

func runServe(ctx context.Context, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, closeBroker, err := buildBroker(ctx, cfg, opts.getenv, logger)
	if err != nil {
		return err
	}
	defer closeBroker()

	httpapi.SetLogger(logger)
	httpapi.SetDefaultLogLevel(cfg.LogLevel)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetRequestTimeout(cfg.RequestTimeout.D())
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders)
	httpapi.SetBaseContext(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(b),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Int("providers", len(b.Descriptors())).Msg("brokerd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown (Ctrl+C / SIGTERM)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	logger.Info().Msg("brokerd stopped")
	return nil
}

// buildBroker wires the registry, cache store and broker from cfg. The
// returned func releases the cache store.
func buildBroker(ctx context.Context, cfg config.Config, getenv func(string) string, logger zerolog.Logger) (*broker.Broker, func(), error) {
	reg, err := registry.Build(providerTable(cfg, getenv), registry.Options{
		Client: provider.NewHTTPClient(cfg.ConnectTimeout.D()),
		Getenv: getenv,
		Logger: &logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("providers: %w", err)
	}
	store, closeStore, err := newCacheStore(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, nil, err
	}
	b := broker.New(broker.Config{
		Entries: reg.Entries,
		Cache:   store,
		Health: health.Config{
			FailureThreshold:     cfg.Health.FailureThreshold,
			FailureWindow:        cfg.Health.FailureWindow.D(),
			TransientCooldown:    cfg.Health.TransientCooldown.D(),
			RateLimitCooldown:    cfg.Health.RateLimitCooldown.D(),
			UnauthorizedCooldown: cfg.Health.UnauthorizedCooldown.D(),
			MaxCooldown:          cfg.Health.MaxCooldown.D(),
		},
		Policies: reg.Policies,
		Synth:    synth.Options{MinAnswerLength: cfg.MinAnswerLength},
		MaxWait:  cfg.MaxWait.D(),
		Logger:   &logger,
	})
	if !b.Ready() {
		logger.Warn().Msg("no providers enabled; every answer will be the unavailable message")
	}
	return b, closeStore, nil
}

// newCacheStore selects the response cache backend. The memory store is
// swept in the background until ctx is done.
func newCacheStore(ctx context.Context, c config.Cache, logger zerolog.Logger) (cache.Store, func(), error) {
	switch c.Backend {
	case "", "memory":
		var mopts []cache.MemoryOption
		if c.Shards > 0 {
			mopts = append(mopts, cache.WithShards(c.Shards))
		}
		m := cache.NewMemory(mopts...)
		interval := c.SweepInterval.D()
		if interval <= 0 {
			interval = defaultSweepInterval
		}
		go m.Run(ctx, interval)
		return m, func() {}, nil
	case "redis":
		r, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:        c.RedisAddr,
			Password:    c.RedisPassword,
			DB:          c.RedisDB,
			Prefix:      c.RedisPrefix,
			DialTimeout: 5 * time.Second,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		logger.Info().Str("addr", c.RedisAddr).Msg("using redis response cache")
		return r, func() { _ = r.Close() }, nil
	case "none":
		return cache.Nop{}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}
