package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatbroker/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Answer(ctx context.Context, text string) types.AnswerResponse
	AnswerOnly(ctx context.Context, text, name string) (types.AnswerResponse, error)
	Providers() []types.ProviderStatus
	Reset(name string) error
	Ready() bool
}

// NewMux builds the broker's HTTP handler.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: orDefault(corsAllowedOrigins, []string{"*"}),
			AllowedMethods: orDefault(corsAllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			AllowedHeaders: orDefault(corsAllowedHeaders, []string{"Content-Type", "X-Log-Level"}),
			MaxAge:         300,
		}))
	}

	h := &handlers{svc: svc}
	r.Post("/answer", h.answer)
	r.Post("/api-call/all", h.apiCallAll)
	r.Post("/api-call/{service}", h.apiCallService)
	r.Get("/providers", h.providers)
	r.Post("/providers/{name}/reset", h.reset)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no providers enabled"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}

type handlers struct {
	svc Service
}

// decodeJSON enforces the content type and body limit, then decodes into v.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Oversized bodies also land here; report them as plain 400s.
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// countBackpressure feeds the backpressure counter from local admission skips.
func countBackpressure(resp types.AnswerResponse) {
	for _, o := range resp.Outcomes {
		switch o.Skip {
		case "busy", "throttled":
			IncrementBackpressure(o.Skip)
		}
	}
}

// answer godoc
// @Summary      Answer a free-text question
// @Description  Classifies the query, dispatches it to every relevant provider and synthesizes one reply.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      types.AnswerRequest  true  "Question"
// @Success      200      {object}  types.AnswerResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      415      {object}  types.ErrorResponse
// @Router       /answer [post]
func (h *handlers) answer(w http.ResponseWriter, r *http.Request) {
	var req types.AnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSONError(w, http.StatusBadRequest, "query is required")
		return
	}
	start := time.Now()
	lvl := requestLogLevel(r)
	if ev := requestEvent(r, lvl, LevelDebug); ev != nil {
		ev.Str("query", req.Query).Msg("answer start")
	}
	ctx, cancel := requestContext(r)
	defer cancel()
	resp := h.svc.Answer(ctx, req.Query)
	countBackpressure(resp)
	if clientGone(r) {
		return
	}
	writeJSON(w, resp)
	if ev := requestEvent(r, lvl, LevelInfo); ev != nil {
		ev.Str("id", resp.ID).Strs("providers_used", resp.ProvidersUsed).Int("status", http.StatusOK).Dur("dur", time.Since(start)).Msg("answer end")
	}
}

// apiCallAll godoc
// @Summary      Answer using every relevant provider (chat widget format)
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      types.APICallRequest  true  "Input"
// @Success      200      {object}  types.APICallResponse
// @Failure      400      {object}  types.ErrorResponse
// @Router       /api-call/all [post]
func (h *handlers) apiCallAll(w http.ResponseWriter, r *http.Request) {
	h.apiCall(w, r, "")
}

// apiCallService godoc
// @Summary      Answer using a single named provider (chat widget format)
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        service  path      string                true  "Provider name"
// @Param        request  body      types.APICallRequest  true  "Input"
// @Success      200      {object}  types.APICallResponse
// @Failure      404      {object}  types.ErrorResponse
// @Router       /api-call/{service} [post]
func (h *handlers) apiCallService(w http.ResponseWriter, r *http.Request) {
	h.apiCall(w, r, chi.URLParam(r, "service"))
}

func (h *handlers) apiCall(w http.ResponseWriter, r *http.Request, service string) {
	var req types.APICallRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		writeJSONError(w, http.StatusBadRequest, "input is required")
		return
	}
	start := time.Now()
	lvl := requestLogLevel(r)
	ctx, cancel := requestContext(r)
	defer cancel()

	var (
		resp types.AnswerResponse
		err  error
	)
	if service == "" {
		resp = h.svc.Answer(ctx, req.Input)
	} else {
		resp, err = h.svc.AnswerOnly(ctx, req.Input, service)
	}
	if err != nil {
		status := statusFor(err)
		writeJSONError(w, status, err.Error())
		logEnd(r, lvl, "api-call", status, start, err)
		return
	}
	countBackpressure(resp)
	if clientGone(r) {
		return
	}
	writeJSON(w, types.APICallResponse{Success: true, Result: resp.Answer})
	logEnd(r, lvl, "api-call", http.StatusOK, start, nil)
}

// providers godoc
// @Summary      List providers with their health
// @Tags         admin
// @Produce      json
// @Success      200  {object}  types.ProvidersResponse
// @Router       /providers [get]
func (h *handlers) providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, types.ProvidersResponse{Providers: h.svc.Providers()})
}

// reset godoc
// @Summary      Force a provider's circuit closed
// @Tags         admin
// @Produce      json
// @Param        name  path      string  true  "Provider name"
// @Success      200   {object}  types.ProviderStatus
// @Failure      404   {object}  types.ErrorResponse
// @Router       /providers/{name}/reset [post]
func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	start := time.Now()
	lvl := requestLogLevel(r)
	if err := h.svc.Reset(name); err != nil {
		status := statusFor(err)
		writeJSONError(w, status, err.Error())
		logEnd(r, lvl, "reset", status, start, err)
		return
	}
	for _, p := range h.svc.Providers() {
		if p.Name == name {
			writeJSON(w, p)
			logEnd(r, lvl, "reset", http.StatusOK, start, nil)
			return
		}
	}
	writeJSON(w, types.ProviderStatus{Name: name})
	logEnd(r, lvl, "reset", http.StatusOK, start, nil)
}
