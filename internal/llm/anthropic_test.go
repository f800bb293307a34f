// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withAnthropicServer(t *testing.T, h http.HandlerFunc) *Anthropic {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	old := anthropicAPIURL
	anthropicAPIURL = ts.URL
	t.Cleanup(func() { anthropicAPIURL = old })

	return NewAnthropic("test-key", "claude-test", ts.Client())
}

func TestAnthropicComplete(t *testing.T) {
	var got claudeRequest
	c := withAnthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"Boiling "},{"type":"text","text":"point"}]}`)
	})

	out, err := c.Complete(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "Boiling point", out)
	assert.Equal(t, "claude-test", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "question", got.Messages[0].Content)
}

func TestAnthropicCompleteErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		c := withAnthropicServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"type":"authentication_error"}}`)
		})
		_, err := c.Complete(context.Background(), "q")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})

	t.Run("no text blocks", func(t *testing.T) {
		c := withAnthropicServer(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"content":[]}`)
		})
		_, err := c.Complete(context.Background(), "q")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestAnthropicStream(t *testing.T) {
	c := withAnthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req claudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: message_start\ndata: {\"type\":\"message_start\"}\n\n")
		fmt.Fprint(w, "event: content_block_start\ndata: {\"type\":\"content_block_start\"}\n\n")
		for _, tok := range []string{"Water ", "boils ", "at 100 C."} {
			fmt.Fprintf(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":%q}}\n\n", tok)
		}
		fmt.Fprint(w, "event: ping\ndata: {\"type\":\"ping\"}\n\n")
		fmt.Fprint(w, "event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n")
	})

	toks, err := collect(c.Stream(context.Background(), "q"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Water ", "boils ", "at 100 C."}, toks)
}

func TestAnthropicStreamError(t *testing.T) {
	c := withAnthropicServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"Hi\"}}\n\n")
		fmt.Fprint(w, "event: error\ndata: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n\n")
	})

	toks, err := collect(c.Stream(context.Background(), "q"))
	assert.Equal(t, []string{"Hi"}, toks)
	assert.ErrorContains(t, err, "Overloaded")
}
