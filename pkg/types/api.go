package types

// AnswerRequest is the body of POST /answer.
type AnswerRequest struct {
	// Free-text user question.
	// example: What is the price of AAPL?
	Query string `json:"query" example:"What is the price of AAPL?"`
}

// AnswerResponse is returned by POST /answer.
type AnswerResponse struct {
	// Resolution identifier, also present in server logs.
	// example: 5f0c6b0e-8a4e-4a53-9f0e-2b3c4d5e6f70
	ID string `json:"id" example:"5f0c6b0e-8a4e-4a53-9f0e-2b3c4d5e6f70"`
	// Synthesized answer text.
	// example: 1. [finnhub] AAPL: 150.00 (+1.20%)
	Answer string `json:"answer" example:"1. [finnhub] AAPL: 150.00 (+1.20%)"`
	// Providers whose payload contributed to the answer, in dispatch order.
	// example: ["finnhub"]
	ProvidersUsed []string `json:"providers_used" example:"finnhub"`
	// Per-candidate outcomes, in dispatch order.
	Outcomes []OutcomeStatus `json:"outcomes"`
	// Facets derived from the query.
	// example: ["stock"]
	Facets []string `json:"facets,omitempty" example:"stock"`
}

// APICallRequest is the legacy body of POST /api-call/all.
type APICallRequest struct {
	// example: bitcoin price
	Input string `json:"input" example:"bitcoin price"`
}

// APICallResponse is the legacy reply of POST /api-call/all.
type APICallResponse struct {
	// example: true
	Success bool `json:"success" example:"true"`
	// Synthesized answer text.
	Result string `json:"result"`
}

// ProvidersResponse wraps GET /providers.
type ProvidersResponse struct {
	Providers []ProviderStatus `json:"providers"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
