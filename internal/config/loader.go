package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main,
// the registry or the broker.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	MaxBodyBytes   int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	ConnectTimeout Duration `json:"connect_timeout" yaml:"connect_timeout" toml:"connect_timeout"`
	// MaxWait bounds the wait for a provider admission slot.
	MaxWait         Duration `json:"max_wait" yaml:"max_wait" toml:"max_wait"`
	MinAnswerLength int      `json:"min_answer_length" yaml:"min_answer_length" toml:"min_answer_length"`

	CORS      CORS       `json:"cors" yaml:"cors" toml:"cors"`
	Health    Health     `json:"health" yaml:"health" toml:"health"`
	Cache     Cache      `json:"cache" yaml:"cache" toml:"cache"`
	Providers []Provider `json:"providers" yaml:"providers" toml:"providers"`
}

// CORS is opt-in; nothing is mounted unless Enabled.
type CORS struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers"`
}

// Health carries the circuit breaker defaults shared by every provider.
type Health struct {
	FailureThreshold     int      `json:"failure_threshold" yaml:"failure_threshold" toml:"failure_threshold"`
	FailureWindow        Duration `json:"failure_window" yaml:"failure_window" toml:"failure_window"`
	TransientCooldown    Duration `json:"transient_cooldown" yaml:"transient_cooldown" toml:"transient_cooldown"`
	RateLimitCooldown    Duration `json:"rate_limit_cooldown" yaml:"rate_limit_cooldown" toml:"rate_limit_cooldown"`
	UnauthorizedCooldown Duration `json:"unauthorized_cooldown" yaml:"unauthorized_cooldown" toml:"unauthorized_cooldown"`
	MaxCooldown          Duration `json:"max_cooldown" yaml:"max_cooldown" toml:"max_cooldown"`
}

// Cache selects the response cache backend.
type Cache struct {
	// Backend is "memory" (default), "redis" or "none".
	Backend       string   `json:"backend" yaml:"backend" toml:"backend"`
	SweepInterval Duration `json:"sweep_interval" yaml:"sweep_interval" toml:"sweep_interval"`
	Shards        int      `json:"shards" yaml:"shards" toml:"shards"`
	RedisAddr     string   `json:"redis_addr" yaml:"redis_addr" toml:"redis_addr"`
	RedisPassword string   `json:"redis_password" yaml:"redis_password" toml:"redis_password"`
	RedisDB       int      `json:"redis_db" yaml:"redis_db" toml:"redis_db"`
	RedisPrefix   string   `json:"redis_prefix" yaml:"redis_prefix" toml:"redis_prefix"`
}

// Provider is one entry of the provider table.
type Provider struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Type string `json:"type" yaml:"type" toml:"type"`
	// Enabled defaults to true when omitted.
	Enabled  *bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	Kind     string   `json:"kind" yaml:"kind" toml:"kind"`
	Facets   []string `json:"facets" yaml:"facets" toml:"facets"`
	Input    string   `json:"input" yaml:"input" toml:"input"`
	Fallback bool     `json:"fallback" yaml:"fallback" toml:"fallback"`

	Timeout       Duration `json:"timeout" yaml:"timeout" toml:"timeout"`
	CacheTTL      Duration `json:"cache_ttl" yaml:"cache_ttl" toml:"cache_ttl"`
	MaxConcurrent int      `json:"max_concurrent" yaml:"max_concurrent" toml:"max_concurrent"`
	RatePerSecond float64  `json:"rate_per_second" yaml:"rate_per_second" toml:"rate_per_second"`

	BaseURL    string `json:"base_url" yaml:"base_url" toml:"base_url"`
	Model      string `json:"model" yaml:"model" toml:"model"`
	APIKey     string `json:"api_key" yaml:"api_key" toml:"api_key"`
	APIKeyEnv  string `json:"api_key_env" yaml:"api_key_env" toml:"api_key_env"`
	MaxResults int    `json:"max_results" yaml:"max_results" toml:"max_results"`
	MaxTokens  int    `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`

	// Per-provider circuit overrides.
	FailureThreshold     int      `json:"failure_threshold" yaml:"failure_threshold" toml:"failure_threshold"`
	TransientCooldown    Duration `json:"transient_cooldown" yaml:"transient_cooldown" toml:"transient_cooldown"`
	RateLimitCooldown    Duration `json:"rate_limit_cooldown" yaml:"rate_limit_cooldown" toml:"rate_limit_cooldown"`
	UnauthorizedCooldown Duration `json:"unauthorized_cooldown" yaml:"unauthorized_cooldown" toml:"unauthorized_cooldown"`
}

// IsEnabled reports the effective enabled flag.
func (p Provider) IsEnabled() bool { return p.Enabled == nil || *p.Enabled }

// Duration is a time.Duration written as a Go duration string ("5m", "1h30m").
type Duration time.Duration

// D returns the value as a time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Environment variables consulted by ApplyEnv.
const (
	EnvAddr      = "BROKERD_ADDR"
	EnvLogLevel  = "BROKERD_LOG_LEVEL"
	EnvRedisAddr = "BROKERD_REDIS_ADDR"
)

// ApplyEnv overrides file values with non-empty environment variables.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		cfg.Cache.RedisAddr = v
		if cfg.Cache.Backend == "" {
			cfg.Cache.Backend = "redis"
		}
	}
}

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/etc/brokerd.yaml
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
