package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"chatbroker/internal/query"
)

const (
	defaultAlphaVantageURL = "https://www.alphavantage.co"
	defaultFinnhubURL      = "https://finnhub.io/api/v1"
	defaultFMPURL          = "https://financialmodelingprep.com/api/v3"
)

// quoteText renders a quote the same way for every market adapter.
func quoteText(symbol string, price, changePct float64) string {
	return fmt.Sprintf("%s: %.2f (%+.2f%%)", symbol, price, changePct)
}

func quoteFields(symbol string, price, changePct float64) map[string]string {
	return map[string]string{
		"symbol": symbol,
		"price":  strconv.FormatFloat(price, 'f', 2, 64),
		"change": strconv.FormatFloat(changePct, 'f', 2, 64) + "%",
	}
}

// AlphaVantage fetches GLOBAL_QUOTE for a stock symbol.
type AlphaVantage struct {
	Endpoint
}

// NewAlphaVantage returns an Alpha Vantage quote adapter.
func NewAlphaVantage(name string, opts Options) *AlphaVantage {
	return &AlphaVantage{Endpoint: newEndpoint(name, opts.BaseURL, defaultAlphaVantageURL, opts.APIKey, opts.Client)}
}

type alphaQuoteResponse struct {
	Quote        map[string]string `json:"Global Quote"`
	Note         string            `json:"Note"`
	Information  string            `json:"Information"`
	ErrorMessage string            `json:"Error Message"`
}

func (a *AlphaVantage) Call(ctx context.Context, q query.Query) (Payload, error) {
	symbol, ok := optString(q.StockSymbol())
	if !ok {
		return Payload{}, missingInput(a.Name(), query.InputStock)
	}
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", a.APIKey)
	var resp alphaQuoteResponse
	if err := a.getJSON(ctx, "/query?"+params.Encode(), nil, &resp); err != nil {
		return Payload{}, err
	}
	// Alpha Vantage reports throttling and key problems with HTTP 200.
	switch {
	case resp.Note != "":
		return Payload{}, Errorf(a.Name(), KindRateLimited, "%s", resp.Note)
	case resp.Information != "":
		if strings.Contains(strings.ToLower(resp.Information), "api key") {
			return Payload{}, Errorf(a.Name(), KindUnauthorized, "%s", resp.Information)
		}
		return Payload{}, Errorf(a.Name(), KindRateLimited, "%s", resp.Information)
	case resp.ErrorMessage != "":
		return Payload{}, Errorf(a.Name(), KindBadRequest, "%s", resp.ErrorMessage)
	case len(resp.Quote) == 0:
		return Payload{}, Errorf(a.Name(), KindBadRequest, "no quote for %s", symbol)
	}
	price, err := strconv.ParseFloat(resp.Quote["05. price"], 64)
	if err != nil {
		return Payload{}, Errorf(a.Name(), KindBadRequest, "price: %v", err)
	}
	change, err := strconv.ParseFloat(strings.TrimSuffix(resp.Quote["10. change percent"], "%"), 64)
	if err != nil {
		return Payload{}, Errorf(a.Name(), KindBadRequest, "change percent: %v", err)
	}
	return Payload{Text: quoteText(symbol, price, change), Fields: quoteFields(symbol, price, change)}, nil
}

// Finnhub fetches /quote for either a stock symbol or a crypto venue symbol,
// depending on the input it was built with.
type Finnhub struct {
	Endpoint
	input query.Input
}

// NewFinnhub returns a Finnhub quote adapter reading the given Query entity.
func NewFinnhub(name string, in query.Input, opts Options) *Finnhub {
	return &Finnhub{
		Endpoint: newEndpoint(name, opts.BaseURL, defaultFinnhubURL, opts.APIKey, opts.Client),
		input:    in,
	}
}

type finnhubQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

func (f *Finnhub) Call(ctx context.Context, q query.Query) (Payload, error) {
	symbol, ok := optString(q.Value(f.input))
	if !ok {
		return Payload{}, missingInput(f.Name(), f.input)
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	h := map[string][]string{"X-Finnhub-Token": {f.APIKey}}
	var resp finnhubQuote
	if err := f.getJSON(ctx, "/quote?"+params.Encode(), h, &resp); err != nil {
		return Payload{}, err
	}
	// Unknown symbols come back as an all-zero quote.
	if resp.Current == 0 && resp.Timestamp == 0 {
		return Payload{}, Errorf(f.Name(), KindBadRequest, "no quote for %s", symbol)
	}
	fields := quoteFields(symbol, resp.Current, resp.ChangePercent)
	fields["high"] = strconv.FormatFloat(resp.High, 'f', 2, 64)
	fields["low"] = strconv.FormatFloat(resp.Low, 'f', 2, 64)
	return Payload{Text: quoteText(symbol, resp.Current, resp.ChangePercent), Fields: fields}, nil
}

// FMP fetches a company profile from Financial Modeling Prep.
type FMP struct {
	Endpoint
}

// NewFMP returns an FMP company profile adapter.
func NewFMP(name string, opts Options) *FMP {
	return &FMP{Endpoint: newEndpoint(name, opts.BaseURL, defaultFMPURL, opts.APIKey, opts.Client)}
}

type fmpProfile struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Price       float64 `json:"price"`
	Industry    string  `json:"industry"`
	Sector      string  `json:"sector"`
	CEO         string  `json:"ceo"`
	Website     string  `json:"website"`
	Exchange    string  `json:"exchangeShortName"`
}

func (f *FMP) Call(ctx context.Context, q query.Query) (Payload, error) {
	symbol, ok := optString(q.StockSymbol())
	if !ok {
		return Payload{}, missingInput(f.Name(), query.InputStock)
	}
	params := url.Values{}
	params.Set("apikey", f.APIKey)
	var resp []fmpProfile
	if err := f.getJSON(ctx, "/profile/"+url.PathEscape(symbol)+"?"+params.Encode(), nil, &resp); err != nil {
		return Payload{}, err
	}
	if len(resp) == 0 {
		return Payload{}, Errorf(f.Name(), KindBadRequest, "no profile for %s", symbol)
	}
	p := resp[0]
	var b strings.Builder
	b.WriteString(p.CompanyName)
	b.WriteString(" (")
	b.WriteString(p.Symbol)
	if p.Exchange != "" {
		b.WriteString(", ")
		b.WriteString(p.Exchange)
	}
	b.WriteString(")")
	if p.Sector != "" || p.Industry != "" {
		fmt.Fprintf(&b, " - %s / %s", p.Sector, p.Industry)
	}
	if p.CEO != "" {
		fmt.Fprintf(&b, ", CEO %s", p.CEO)
	}
	return Payload{
		Text: b.String(),
		Fields: map[string]string{
			"symbol":   p.Symbol,
			"company":  p.CompanyName,
			"sector":   p.Sector,
			"industry": p.Industry,
			"website":  p.Website,
		},
	}, nil
}
