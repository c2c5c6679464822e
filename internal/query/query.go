package query

import (
	"strings"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// Facet is a single tag describing what kind of information a query asks for.
type Facet uint8

const (
	FacetStock Facet = 1 << iota
	FacetCrypto
	FacetNews
	FacetSearch
)

var facetNames = []struct {
	f    Facet
	name string
}{
	{FacetStock, "stock"},
	{FacetCrypto, "crypto"},
	{FacetNews, "news"},
	{FacetSearch, "search"},
}

// String returns the lower-case tag name.
func (f Facet) String() string {
	for _, e := range facetNames {
		if e.f == f {
			return e.name
		}
	}
	return "unknown"
}

// ParseFacet maps a tag name to its Facet.
func ParseFacet(s string) (Facet, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, e := range facetNames {
		if e.name == s {
			return e.f, true
		}
	}
	return 0, false
}

// Facets is a set of Facet values.
type Facets uint8

// Has reports whether f is in the set.
func (s Facets) Has(f Facet) bool { return uint8(s)&uint8(f) != 0 }

// With returns the set plus f.
func (s Facets) With(f Facet) Facets { return Facets(uint8(s) | uint8(f)) }

// Intersects reports whether the two sets share at least one facet.
func (s Facets) Intersects(o Facets) bool { return uint8(s)&uint8(o) != 0 }

// Empty reports whether no facet is set.
func (s Facets) Empty() bool { return s == 0 }

// Names lists the set in a fixed order.
func (s Facets) Names() []string {
	out := make([]string, 0, len(facetNames))
	for _, e := range facetNames {
		if s.Has(e.f) {
			out = append(out, e.name)
		}
	}
	return out
}

func (s Facets) String() string { return strings.Join(s.Names(), ",") }

// Query is the classified form of one incoming question. It is created once
// by Classify and never mutated afterwards.
type Query struct {
	raw        string
	normalized string
	facets     Facets
	stock      fn.Option[string]
	crypto     fn.Option[string]
	searchKey  fn.Option[string]
}

// Raw returns the text as received.
func (q Query) Raw() string { return q.raw }

// Normalized returns the lower-cased text with collapsed whitespace.
func (q Query) Normalized() string { return q.normalized }

// Facets returns the derived facet set.
func (q Query) Facets() Facets { return q.facets }

// StockSymbol is the first candidate ticker, if any.
func (q Query) StockSymbol() fn.Option[string] { return q.stock }

// CryptoSymbol is the canonical venue symbol of the first crypto hit, if any.
func (q Query) CryptoSymbol() fn.Option[string] { return q.crypto }

// SearchKey is the keyword string used by search-like providers.
func (q Query) SearchKey() fn.Option[string] { return q.searchKey }

// Input names the Query entity a provider consumes.
type Input string

const (
	InputText   Input = "text"
	InputStock  Input = "stock"
	InputCrypto Input = "crypto"
	InputSearch Input = "search"
)

// ParseInput validates an input name; empty means InputText.
func ParseInput(s string) (Input, bool) {
	switch Input(strings.ToLower(strings.TrimSpace(s))) {
	case "", InputText:
		return InputText, true
	case InputStock:
		return InputStock, true
	case InputCrypto:
		return InputCrypto, true
	case InputSearch:
		return InputSearch, true
	}
	return "", false
}

// Value returns the entity selected by in. InputText always yields the
// normalized text; the others may be absent.
func (q Query) Value(in Input) fn.Option[string] {
	switch in {
	case InputStock:
		return q.stock
	case InputCrypto:
		return q.crypto
	case InputSearch:
		return q.searchKey
	default:
		return fn.Some(q.normalized)
	}
}

// Key derives the cache / single-flight key for a provider that consumes in.
// Two queries with the same key are interchangeable for that provider.
func (q Query) Key(in Input) string {
	return string(in) + ":" + q.Value(in).UnwrapOr("")
}
