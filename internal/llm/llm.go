// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm sends single-message prompts to a language model, either
// collecting the whole reply or streaming it token by token.
package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"time"

	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/types"
)

// ErrEmptyResponse is returned by Complete when the model replies with no
// text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Client is a language-model backend. Every request carries exactly one
// user message holding the prompt, with no system prompt and no sampling
// options.
//
// Stream returns a finite sequence. A transport or model error is yielded
// once as ("", err) and ends the sequence; tokens already yielded stand.
// Breaking out of the range closes the underlying response.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Stream(ctx context.Context, prompt string) iter.Seq2[string, error]
	Model() string
}

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// APIError carries a non-200 status or an in-band error from a backend.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, e.Message)
}

// New builds the backend named by cfg.Provider. An empty provider means
// Ollama. hc may be nil, in which case newHTTPClient(cfg.Timeout) is used.
func New(cfg types.InferenceConfig, hc *http.Client) (Client, error) {
	if hc == nil {
		hc = newHTTPClient(cfg.Timeout)
	}
	switch cfg.Provider {
	case "", types.ProviderOllama:
		return NewOllama(cfg.BaseURL, cfg.Model, hc), nil
	case types.ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key (inference.api_key or .secrets/anthropic-api-key)")
		}
		return NewAnthropic(cfg.APIKey, cfg.Model, hc), nil
	default:
		return nil, fmt.Errorf("unknown inference provider %q", cfg.Provider)
	}
}

// newHTTPClient bounds the wait for response headers only, so a slow but
// live stream is never cut off. A non-streaming reply arrives with its
// headers, which keeps Complete bounded too.
func newHTTPClient(headerTimeout time.Duration) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = headerTimeout
	return &http.Client{Transport: tr}
}
