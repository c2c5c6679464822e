package query

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	maxTickerLen  = 5
	minKeywordLen = 4
)

// Classify turns raw text into a Query. It is pure: the same text always
// yields the same Query, and it never fails. A query with no recognizable
// entity carries the search facet so there is always something to dispatch.
func Classify(text string) Query {
	q := Query{
		raw:        text,
		normalized: normalize(text),
	}
	tokens := tokenize(text)

	for _, tok := range tokens {
		if q.crypto.IsNone() {
			if sym, ok := cryptoLexicon[strings.ToLower(tok)]; ok {
				q.crypto = fn.Some(sym)
				q.facets = q.facets.With(FacetCrypto)
			}
		}
		if q.stock.IsNone() && isTicker(tok) {
			q.stock = fn.Some(tok)
			q.facets = q.facets.With(FacetStock)
		}
		if !q.facets.Has(FacetNews) {
			if _, ok := newsTokens[strings.ToLower(tok)]; ok {
				q.facets = q.facets.With(FacetNews)
			}
		}
	}

	key := searchKey(tokens)
	if key == "" {
		key = q.normalized
	}
	if key != "" {
		q.searchKey = fn.Some(key)
	}
	if q.facets.Empty() {
		q.facets = q.facets.With(FacetSearch)
	}
	return q
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// isTicker accepts 1-5 ASCII upper-case letters that are neither a common
// all-caps word nor a crypto alias.
func isTicker(tok string) bool {
	if len(tok) == 0 || len(tok) > maxTickerLen {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < 'A' || tok[i] > 'Z' {
			return false
		}
	}
	if _, ok := notTickers[tok]; ok {
		return false
	}
	if _, ok := cryptoLexicon[strings.ToLower(tok)]; ok {
		return false
	}
	return true
}

func searchKey(tokens []string) string {
	var words []string
	for _, tok := range tokens {
		w := strings.ToLower(tok)
		if utf8.RuneCountInString(w) < minKeywordLen {
			continue
		}
		if _, ok := stopWords[w]; ok {
			continue
		}
		if _, ok := newsTokens[w]; ok {
			continue
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}
