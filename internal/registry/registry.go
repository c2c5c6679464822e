// Package registry turns the provider section of the configuration into the
// static descriptor table and adapter instances the broker dispatches to.
package registry

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chatbroker/internal/broker"
	"chatbroker/internal/config"
	"chatbroker/internal/health"
	"chatbroker/internal/provider"
	"chatbroker/internal/query"
)

// Cache TTL defaults per data class.
const (
	ttlMarket         = 60 * time.Second
	ttlProfile        = 30 * time.Minute
	ttlNews           = 10 * time.Minute
	ttlConversational = 5 * time.Minute

	timeoutData           = 8 * time.Second
	timeoutConversational = 15 * time.Second
)

// AnyFacet is the facet wildcard accepted in configuration.
const AnyFacet = "*"

// Options controls Build.
type Options struct {
	// Client is shared by every adapter; nil uses a default client.
	Client *http.Client
	// Getenv resolves api_key_env; nil means os.Getenv.
	Getenv func(string) string
	Logger *zerolog.Logger
}

// Registry is the built provider table.
type Registry struct {
	Entries  []broker.Entry
	Policies map[string]health.Policy
}

// KeyEnv returns the environment variable that holds the API key of a
// provider type when the configuration does not name one.
func KeyEnv(typ string) string {
	switch typ {
	case provider.TypeOpenAI:
		return "GROQ_KEY"
	case provider.TypeHuggingFace:
		return "HUGGINGFACE_KEY"
	case provider.TypeAlphaVantage:
		return "ALPHA_KEY"
	case provider.TypeFinnhub:
		return "FINNHUB_KEY"
	case provider.TypeFMP:
		return "FMP_KEY"
	case provider.TypeNewsAPI:
		return "NEWSAPI_KEY"
	}
	return ""
}

// Defaults returns the built-in provider table used when the configuration
// lists none. A provider is enabled only when its key variable is set.
//
// groq is the fallback and serves every facet, so a query that matches no
// data provider reaches groq alone.
func Defaults(getenv func(string) string) []config.Provider {
	if getenv == nil {
		getenv = os.Getenv
	}
	table := []config.Provider{
		{Name: "alphavantage", Type: provider.TypeAlphaVantage},
		{Name: "finnhub", Type: provider.TypeFinnhub, Input: string(query.InputStock)},
		{Name: "finnhub-crypto", Type: provider.TypeFinnhub, Input: string(query.InputCrypto)},
		{Name: "fmp", Type: provider.TypeFMP},
		{Name: "newsapi", Type: provider.TypeNewsAPI},
		{Name: "huggingface", Type: provider.TypeHuggingFace},
		{Name: "groq", Type: provider.TypeOpenAI, Fallback: true},
	}
	for i := range table {
		enabled := getenv(KeyEnv(table[i].Type)) != ""
		table[i].Enabled = &enabled
	}
	return table
}

// Build validates the provider table and instantiates every enabled adapter,
// preserving configuration order.
func Build(ps []config.Provider, opts Options) (*Registry, error) {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	reg := &Registry{Policies: make(map[string]health.Policy)}
	seen := make(map[string]bool, len(ps))
	fallback := ""
	var errs []error
	for _, p := range ps {
		d, err := Descriptor(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[d.Name] {
			errs = append(errs, fmt.Errorf("provider %q: duplicate name", d.Name))
			continue
		}
		seen[d.Name] = true
		if !p.IsEnabled() {
			log.Debug().Str("provider", d.Name).Msg("provider disabled")
			continue
		}
		if d.Fallback {
			if fallback != "" {
				errs = append(errs, fmt.Errorf("provider %q: %q is already the fallback provider", d.Name, fallback))
				continue
			}
			fallback = d.Name
		}
		key := resolveKey(p, opts.Getenv)
		if key == "" {
			log.Warn().Str("provider", d.Name).Msg("no api key configured")
		}
		adapter, err := provider.New(d.Type, d.Name, d.Input, provider.Options{
			BaseURL:    p.BaseURL,
			APIKey:     key,
			Model:      p.Model,
			MaxResults: p.MaxResults,
			MaxTokens:  p.MaxTokens,
			Client:     opts.Client,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("provider %q: %w", d.Name, err))
			continue
		}
		reg.Entries = append(reg.Entries, broker.Entry{Descriptor: d, Provider: adapter})
		reg.Policies[d.Name] = health.Policy{
			Name:                 d.Name,
			FailureThreshold:     p.FailureThreshold,
			TransientCooldown:    p.TransientCooldown.D(),
			RateLimitCooldown:    p.RateLimitCooldown.D(),
			UnauthorizedCooldown: p.UnauthorizedCooldown.D(),
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return reg, nil
}

func resolveKey(p config.Provider, getenv func(string) string) string {
	if p.APIKey != "" {
		return p.APIKey
	}
	env := p.APIKeyEnv
	if env == "" {
		env = KeyEnv(p.Type)
	}
	if env == "" {
		return ""
	}
	return strings.TrimSpace(getenv(env))
}

// Descriptor derives the effective descriptor of one configured provider,
// applying per-type defaults.
func Descriptor(p config.Provider) (provider.Descriptor, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return provider.Descriptor{}, errors.New("provider without name")
	}
	typ := strings.ToLower(strings.TrimSpace(p.Type))
	d := provider.Descriptor{
		Name:          name,
		Type:          typ,
		Fallback:      p.Fallback,
		Timeout:       p.Timeout.D(),
		CacheTTL:      p.CacheTTL.D(),
		MaxConcurrent: p.MaxConcurrent,
		RatePerSecond: p.RatePerSecond,
	}

	in := provider.DefaultInput(typ)
	if p.Input != "" {
		v, ok := query.ParseInput(p.Input)
		if !ok {
			return d, fmt.Errorf("provider %q: unknown input %q", name, p.Input)
		}
		in = v
	}
	d.Input = in

	switch strings.ToLower(p.Kind) {
	case "":
		d.Kind = defaultKind(typ)
	case string(provider.KindConversational):
		d.Kind = provider.KindConversational
	case string(provider.KindData):
		d.Kind = provider.KindData
	default:
		return d, fmt.Errorf("provider %q: unknown kind %q", name, p.Kind)
	}

	facets := p.Facets
	if len(facets) == 0 {
		facets = defaultFacets(typ, in)
	}
	for _, f := range facets {
		if strings.TrimSpace(f) == AnyFacet {
			d.AnyFacet = true
			continue
		}
		v, ok := query.ParseFacet(f)
		if !ok {
			return d, fmt.Errorf("provider %q: unknown facet %q", name, f)
		}
		d.Facets = d.Facets.With(v)
	}

	if d.Timeout <= 0 {
		d.Timeout = timeoutData
		if d.Kind == provider.KindConversational {
			d.Timeout = timeoutConversational
		}
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = defaultTTL(typ, d.Kind)
	}
	return d, nil
}

func defaultKind(typ string) provider.Kind {
	switch typ {
	case provider.TypeOpenAI, provider.TypeHuggingFace:
		return provider.KindConversational
	}
	return provider.KindData
}

func defaultFacets(typ string, in query.Input) []string {
	switch typ {
	case provider.TypeOpenAI:
		return []string{AnyFacet}
	case provider.TypeHuggingFace:
		return []string{query.FacetNews.String()}
	case provider.TypeNewsAPI:
		return []string{query.FacetNews.String()}
	case provider.TypeFinnhub:
		if in == query.InputCrypto {
			return []string{query.FacetCrypto.String()}
		}
	}
	return []string{query.FacetStock.String()}
}

func defaultTTL(typ string, kind provider.Kind) time.Duration {
	switch {
	case kind == provider.KindConversational:
		return ttlConversational
	case typ == provider.TypeFMP:
		return ttlProfile
	case typ == provider.TypeNewsAPI:
		return ttlNews
	}
	return ttlMarket
}
