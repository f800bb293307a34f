// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "gemma3:1b"
)

var _ Client = (*Ollama)(nil)

// Ollama talks to a local Ollama server through /api/chat.
type Ollama struct {
	client  *http.Client
	baseURL string
	model   string
}

// chatRequest is the /api/chat request body.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is one /api/chat reply, or one NDJSON line when streaming.
type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error"`
}

// NewOllama returns an Ollama backend. Empty baseURL and model take the
// defaults.
func NewOllama(baseURL, model string, hc *http.Client) *Ollama {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Ollama{client: hc, baseURL: strings.TrimRight(baseURL, "/"), model: model}
}

// Model returns the configured model name.
func (o *Ollama) Model() string { return o.model }

// Complete sends prompt with streaming off and returns the full reply.
func (o *Ollama) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.chat(ctx, prompt, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w", err)
	}
	if cr.Error != "" {
		return "", &APIError{Provider: "ollama", Message: cr.Error}
	}
	if cr.Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return cr.Message.Content, nil
}

// Stream sends prompt with streaming on and yields each message fragment
// as its NDJSON line arrives.
func (o *Ollama) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		resp, err := o.chat(ctx, prompt, true)
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		dec := json.NewDecoder(resp.Body)
		for {
			var chunk chatResponse
			if err := dec.Decode(&chunk); err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				yield("", fmt.Errorf("reading ollama stream: %w", err))
				return
			}
			if chunk.Error != "" {
				yield("", &APIError{Provider: "ollama", Message: chunk.Error})
				return
			}
			if chunk.Message.Content != "" {
				if !yield(chunk.Message.Content, nil) {
					return
				}
			}
			if chunk.Done {
				return
			}
		}
	}
}

// Ping checks that the server answers /api/tags.
func (o *Ollama) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama not reachable at %s: %w", o.baseURL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &APIError{Provider: "ollama", StatusCode: resp.StatusCode, Message: "tags endpoint unavailable"}
	}
	return nil
}

// chat posts one single-message request. On success the caller owns the
// response body.
func (o *Ollama) chat(ctx context.Context, prompt string, stream bool) (*http.Response, error) {
	body, err := json.Marshal(chatRequest{
		Model:    o.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Provider: "ollama", StatusCode: resp.StatusCode, Message: ollamaErrorMessage(msg)}
	}
	return resp, nil
}

// ollamaErrorMessage extracts {"error": "..."} from a failure body, falling
// back to the raw text.
func ollamaErrorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
