package provider

import (
	"context"
	"strings"

	"chatbroker/internal/query"
)

const (
	defaultGroqURL       = "https://api.groq.com/openai/v1"
	defaultChatModel     = "llama-3.1-8b-instant"
	defaultChatMaxTokens = 512
	defaultHFURL         = "https://api-inference.huggingface.co"
	defaultHFModel       = "mistralai/Mistral-7B-Instruct-v0.3"
	chatSystemPrompt     = "You are a concise financial and news assistant. Answer in plain text."
)

// ChatCompletions talks to any OpenAI-compatible /chat/completions endpoint
// (Groq, OpenAI, local llama.cpp servers).
type ChatCompletions struct {
	Endpoint
	model     string
	maxTokens int
}

// NewChatCompletions returns an OpenAI-compatible adapter. Without a base URL
// it targets Groq.
func NewChatCompletions(name string, opts Options) *ChatCompletions {
	model := opts.Model
	if model == "" {
		model = defaultChatModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultChatMaxTokens
	}
	return &ChatCompletions{
		Endpoint:  newEndpoint(name, opts.BaseURL, defaultGroqURL, opts.APIKey, opts.Client),
		model:     model,
		maxTokens: maxTokens,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Stream    bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *ChatCompletions) Call(ctx context.Context, q query.Query) (Payload, error) {
	text := strings.TrimSpace(q.Raw())
	if text == "" {
		return Payload{}, missingInput(c.Name(), query.InputText)
	}
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: chatSystemPrompt},
			{Role: "user", Content: text},
		},
		MaxTokens: c.maxTokens,
	}
	var resp chatResponse
	if err := c.postJSON(ctx, "/chat/completions", bearer(c.APIKey), req, &resp); err != nil {
		return Payload{}, err
	}
	if len(resp.Choices) == 0 {
		return Payload{}, Errorf(c.Name(), KindBadRequest, "no choices in completion")
	}
	return Payload{
		Text:   strings.TrimSpace(resp.Choices[0].Message.Content),
		Fields: map[string]string{"model": c.model},
	}, nil
}

// HuggingFace calls the hosted inference API for text generation models.
type HuggingFace struct {
	Endpoint
	model string
}

// NewHuggingFace returns a HuggingFace inference adapter.
func NewHuggingFace(name string, opts Options) *HuggingFace {
	model := opts.Model
	if model == "" {
		model = defaultHFModel
	}
	return &HuggingFace{
		Endpoint: newEndpoint(name, opts.BaseURL, defaultHFURL, opts.APIKey, opts.Client),
		model:    model,
	}
}

type hfRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func (h *HuggingFace) Call(ctx context.Context, q query.Query) (Payload, error) {
	text := strings.TrimSpace(q.Raw())
	if text == "" {
		return Payload{}, missingInput(h.Name(), query.InputText)
	}
	req := hfRequest{
		Inputs:     text,
		Parameters: map[string]any{"return_full_text": false},
	}
	var resp []hfGeneration
	if err := h.postJSON(ctx, "/models/"+h.model, bearer(h.APIKey), req, &resp); err != nil {
		return Payload{}, err
	}
	if len(resp) == 0 {
		return Payload{}, Errorf(h.Name(), KindBadRequest, "empty generation list")
	}
	return Payload{
		Text:   strings.TrimSpace(resp[0].GeneratedText),
		Fields: map[string]string{"model": h.model},
	}, nil
}
