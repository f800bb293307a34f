// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
)

// anthropicAPIURL is the Messages API endpoint. Package-level var for test
// substitution.
var anthropicAPIURL = "https://api.anthropic.com/v1/messages"

const (
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	anthropicVersion      = "2023-06-01"
	anthropicMaxTokens    = 4096
)

var _ Client = (*Anthropic)(nil)

// Anthropic calls the Claude Messages API.
type Anthropic struct {
	APIKey string
	model  string
	Client *http.Client
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
	Stream    bool            `json:"stream,omitempty"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// claudeEvent is the data payload of one server-sent event.
type claudeEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropic returns a Claude backend. An empty model takes the default.
func NewAnthropic(apiKey, model string, hc *http.Client) *Anthropic {
	if model == "" || model == DefaultOllamaModel {
		model = DefaultAnthropicModel
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Anthropic{APIKey: apiKey, model: model, Client: hc}
}

// Model returns the configured model name.
func (c *Anthropic) Model() string { return c.model }

// Complete sends prompt and concatenates the text blocks of the reply.
func (c *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.post(ctx, prompt, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	var b strings.Builder
	for _, block := range cResp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

// Stream sends prompt with stream set and yields each text delta.
func (c *Anthropic) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		resp, err := c.post(ctx, prompt, true)
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		sc := bufio.NewScanner(resp.Body)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			data, ok := strings.CutPrefix(sc.Text(), "data:")
			if !ok {
				continue
			}
			var ev claudeEvent
			if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &ev); err != nil {
				yield("", fmt.Errorf("decoding Claude event: %w", err))
				return
			}
			switch ev.Type {
			case "content_block_delta":
				if ev.Delta.Type == "text_delta" && ev.Delta.Text != "" {
					if !yield(ev.Delta.Text, nil) {
						return
					}
				}
			case "error":
				yield("", &APIError{Provider: "claude", Message: ev.Error.Type + ": " + ev.Error.Message})
				return
			case "message_stop":
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield("", fmt.Errorf("reading Claude stream: %w", err))
		}
	}
}

func (c *Anthropic) post(ctx context.Context, prompt string, stream bool) (*http.Response, error) {
	bodyBytes, err := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: anthropicMaxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
		Stream:    stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Claude API: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Provider: "claude", StatusCode: resp.StatusCode, Message: string(body)}
	}
	return resp, nil
}
