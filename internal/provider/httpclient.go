package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 4096

// NewHTTPClient returns a client shared by all adapters. Timeout is left at
// zero: every request carries its deadline through the context.
func NewHTTPClient(connectTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: tr, Timeout: 0}
}

// Endpoint is the common plumbing of an HTTP adapter.
type Endpoint struct {
	ProviderName string
	BaseURL      string
	APIKey       string
	Client       *http.Client
}

func newEndpoint(name, baseURL, defaultURL, apiKey string, client *http.Client) Endpoint {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return Endpoint{
		ProviderName: name,
		BaseURL:      strings.TrimRight(baseURL, "/"),
		APIKey:       apiKey,
		Client:       client,
	}
}

// Name returns the configured provider name.
func (e Endpoint) Name() string { return e.ProviderName }

// getJSON issues a GET and decodes a JSON body into out.
func (e Endpoint) getJSON(ctx context.Context, path string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.BaseURL+path, nil)
	if err != nil {
		return &Error{Provider: e.ProviderName, Kind: KindBadRequest, Err: err}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	return e.do(ctx, req, out)
}

// postJSON issues a POST with a JSON body and decodes the JSON reply.
func (e Endpoint) postJSON(ctx context.Context, path string, header http.Header, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return &Error{Provider: e.ProviderName, Kind: KindBadRequest, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return &Error{Provider: e.ProviderName, Kind: KindBadRequest, Err: err}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return e.do(ctx, req, out)
}

func (e Endpoint) do(ctx context.Context, req *http.Request, out any) error {
	resp, err := e.Client.Do(req)
	if err != nil {
		// Translate context timeouts/cancels
		if ctx.Err() != nil {
			return &Error{Provider: e.ProviderName, Kind: KindTimeout, Err: ctx.Err()}
		}
		return &Error{Provider: e.ProviderName, Kind: KindUnavailable, Err: err}
	}
	defer resp.Body.Close()
	if kind := KindForStatus(resp.StatusCode); kind != KindNone {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Provider: e.ProviderName,
			Kind:     kind,
			Status:   resp.StatusCode,
			Err:      bodyErr(strings.TrimSpace(string(b))),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return &Error{Provider: e.ProviderName, Kind: KindTimeout, Err: ctx.Err()}
		}
		return &Error{Provider: e.ProviderName, Kind: KindBadRequest, Err: err}
	}
	return nil
}

type bodyError string

func (b bodyError) Error() string { return string(b) }

func bodyErr(body string) error {
	if body == "" {
		return nil
	}
	return bodyError(body)
}

func bearer(key string) http.Header {
	h := http.Header{}
	if key != "" {
		h.Set("Authorization", "Bearer "+key)
	}
	return h
}
