package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"

	"chatbroker/internal/query"
)

const (
	defaultNewsAPIURL     = "https://newsapi.org/v2"
	defaultNewsMaxResults = 3
)

// NewsAPI searches newsapi.org by the query's search key.
type NewsAPI struct {
	Endpoint
	maxResults int
}

// NewNewsAPI returns a NewsAPI adapter.
func NewNewsAPI(name string, opts Options) *NewsAPI {
	n := opts.MaxResults
	if n <= 0 {
		n = defaultNewsMaxResults
	}
	return &NewsAPI{
		Endpoint:   newEndpoint(name, opts.BaseURL, defaultNewsAPIURL, opts.APIKey, opts.Client),
		maxResults: n,
	}
}

// Article is the subset of a NewsAPI article the adapter renders.
type Article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

type newsResponse struct {
	Status       string    `json:"status"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

func (n *NewsAPI) Call(ctx context.Context, q query.Query) (Payload, error) {
	key, ok := optString(q.SearchKey())
	if !ok {
		return Payload{}, missingInput(n.Name(), query.InputSearch)
	}
	params := url.Values{}
	params.Set("q", key)
	params.Set("pageSize", strconv.Itoa(n.maxResults))
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	h := map[string][]string{"X-Api-Key": {n.APIKey}}
	var resp newsResponse
	if err := n.getJSON(ctx, "/everything?"+params.Encode(), h, &resp); err != nil {
		return Payload{}, err
	}
	if resp.Status == "error" {
		kind := KindBadRequest
		switch resp.Code {
		case "apiKeyInvalid", "apiKeyMissing", "apiKeyDisabled", "apiKeyExhausted":
			kind = KindUnauthorized
		case "rateLimited":
			kind = KindRateLimited
		}
		return Payload{}, Errorf(n.Name(), kind, "%s: %s", resp.Code, resp.Message)
	}
	if len(resp.Articles) == 0 {
		return Payload{Text: ""}, nil
	}
	var lines []string
	for i, a := range resp.Articles {
		if i >= n.maxResults {
			break
		}
		line := a.Title
		if a.Source.Name != "" {
			line += " (" + a.Source.Name + ")"
		}
		lines = append(lines, line)
	}
	return Payload{
		Text:   strings.Join(lines, "; "),
		Fields: map[string]string{"query": key, "total": fmt.Sprint(resp.TotalResults)},
	}, nil
}

// optString unwraps a non-empty option.
func optString(o fn.Option[string]) (string, bool) {
	s := strings.TrimSpace(o.UnwrapOr(""))
	return s, s != ""
}
