package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"chatbroker/internal/provider"
)

const defaultRedisPrefix = "brokerd:cache:"

// Redis stores payloads as JSON strings with SET EX. It lets several broker
// replicas share upstream answers.
type Redis struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger
}

// RedisOptions configures the Redis store.
type RedisOptions struct {
	Addr        string
	Password    string
	DB          int
	Prefix      string
	DialTimeout time.Duration
}

// NewRedis connects and pings. The caller owns Close.
func NewRedis(ctx context.Context, opts RedisOptions, log zerolog.Logger) (*Redis, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis cache: addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisFromClient(client, opts.Prefix, log), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, prefix string, log zerolog.Logger) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix, log: log}
}

func (r *Redis) key(providerName, key string) string {
	return r.prefix + providerName + ":" + key
}

// Get returns a stored payload; redis.Nil and backend errors are misses.
func (r *Redis) Get(ctx context.Context, providerName, key string) (provider.Payload, bool) {
	raw, err := r.client.Get(ctx, r.key(providerName, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn().Err(err).Str("provider", providerName).Msg("redis cache get failed")
		}
		return provider.Payload{}, false
	}
	var p provider.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		r.log.Warn().Err(err).Str("provider", providerName).Msg("redis cache entry corrupt")
		return provider.Payload{}, false
	}
	return p, true
}

// Put writes p with ttl. Failures are logged and dropped.
func (r *Redis) Put(ctx context.Context, providerName, key string, p provider.Payload, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, r.key(providerName, key), raw, ttl).Err(); err != nil {
		r.log.Warn().Err(err).Str("provider", providerName).Msg("redis cache put failed")
	}
}

// Close releases the connection pool.
func (r *Redis) Close() error { return r.client.Close() }
