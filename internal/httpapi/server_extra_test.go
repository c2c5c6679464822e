package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chatbroker/pkg/types"
)

// Service that blocks until the context is done; used to exercise timeout path.
type blockService struct {
	mockService
	sawDeadline bool
}

func (b *blockService) Answer(ctx context.Context, text string) types.AnswerResponse {
	_, b.sawDeadline = ctx.Deadline()
	<-ctx.Done()
	return types.AnswerResponse{Answer: "late"}
}

func TestAnswerLogsWithZerologInfo(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()

	svc := &mockService{answer: sampleAnswer()}
	rec := postJSON(NewMux(svc), "/answer?log=info", `{"query":"hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with info logging, got %d", rec.Code)
	}
	out := buf.String()
	if !strings.Contains(out, `"message":"answer end"`) || !strings.Contains(out, `"request_id"`) {
		t.Fatalf("missing answer end log line: %q", out)
	}
}

func TestAnswerLogOffByDefault(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()
	SetDefaultLogLevel("off")

	rec := postJSON(NewMux(&mockService{answer: sampleAnswer()}), "/answer", `{"query":"hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no log output, got %q", buf.String())
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	// Enable CORS temporarily
	SetCORSOptions(true, []string{"*"}, []string{"GET", "POST", "OPTIONS"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)

	svc := &mockService{ready: true}
	h := NewMux(svc)
	req := httptest.NewRequest(http.MethodGet, "/providers", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options=nosniff, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatalf("expected CORS header Access-Control-Allow-Origin to be set, got empty")
	}
}

func TestCORSDisabledByDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/providers", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected CORS header %q", got)
	}
}

func TestRequestTimeoutBoundsAnswer(t *testing.T) {
	SetRequestTimeout(50 * time.Millisecond)
	defer SetRequestTimeout(0)

	svc := &blockService{}
	start := time.Now()
	rec := postJSON(NewMux(svc), "/answer", `{"query":"x"}`)
	if el := time.Since(start); el > 2*time.Second {
		t.Fatalf("request not bounded by timeout: %v", el)
	}
	if !svc.sawDeadline {
		t.Fatalf("service context carried no deadline")
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "late") {
		t.Fatalf("expected the synthesized reply after timeout, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestBaseContextCancelSuppressesReply(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	SetBaseContext(ctx)
	defer SetBaseContext(nil)
	cancel()

	rec := postJSON(NewMux(&blockService{}), "/answer", `{"query":"x"}`)
	if rec.Body.Len() != 0 {
		t.Fatalf("expected no body after shutdown, got %q", rec.Body.String())
	}
}

func TestContentTypeCaseInsensitive(t *testing.T) {
	svc := &mockService{answer: sampleAnswer()}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/answer", bytes.NewBufferString(`{"query":"hi"}`))
	req.Header.Set("Content-Type", "Application/JSON; charset=utf-8")
	NewMux(svc).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with mixed-case content-type, got %d", rec.Code)
	}
}
