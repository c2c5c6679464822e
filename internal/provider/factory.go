package provider

import (
	"fmt"
	"net/http"

	"chatbroker/internal/query"
)

// Adapter type names accepted in configuration.
const (
	TypeOpenAI       = "openai"
	TypeHuggingFace  = "huggingface"
	TypeAlphaVantage = "alphavantage"
	TypeFinnhub      = "finnhub"
	TypeFMP          = "fmp"
	TypeNewsAPI      = "newsapi"
)

// Options carries the per-adapter settings shared by every type. Unused
// fields are ignored by adapters that do not need them.
type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxResults int
	MaxTokens  int
	Client     *http.Client
}

type unsupportedTypeError struct{ typ string }

func (e unsupportedTypeError) Error() string { return "unsupported provider type: " + e.typ }

// IsUnsupportedType reports whether err came from New with an unknown type.
func IsUnsupportedType(err error) bool {
	_, ok := err.(unsupportedTypeError)
	return ok
}

// New builds the adapter for typ. in selects the Query entity the adapter
// sends upstream for types that accept more than one.
func New(typ, name string, in query.Input, opts Options) (Provider, error) {
	switch typ {
	case TypeOpenAI:
		return NewChatCompletions(name, opts), nil
	case TypeHuggingFace:
		return NewHuggingFace(name, opts), nil
	case TypeAlphaVantage:
		return NewAlphaVantage(name, opts), nil
	case TypeFinnhub:
		if in != query.InputStock && in != query.InputCrypto {
			return nil, fmt.Errorf("%s: finnhub input must be stock or crypto, got %q", name, in)
		}
		return NewFinnhub(name, in, opts), nil
	case TypeFMP:
		return NewFMP(name, opts), nil
	case TypeNewsAPI:
		return NewNewsAPI(name, opts), nil
	default:
		return nil, unsupportedTypeError{typ: typ}
	}
}

// DefaultInput returns the Query entity a provider type consumes when the
// configuration does not say.
func DefaultInput(typ string) query.Input {
	switch typ {
	case TypeAlphaVantage, TypeFinnhub, TypeFMP:
		return query.InputStock
	case TypeNewsAPI:
		return query.InputSearch
	default:
		return query.InputText
	}
}

func missingInput(name string, in query.Input) error {
	return Errorf(name, KindBadRequest, "query has no %s entity", in)
}
