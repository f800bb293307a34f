// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bufio"
	"context"
	"errors"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/types"
)

type fakeAnswerer struct {
	tokens    []string
	questions []string
	release   chan struct{}
}

func (f *fakeAnswerer) Stream(_ context.Context, q string) iter.Seq[string] {
	f.questions = append(f.questions, q)
	return func(yield func(string) bool) {
		for i, tok := range f.tokens {
			if i == 1 && f.release != nil {
				<-f.release
			}
			if !yield(tok) {
				return
			}
		}
	}
}

type fakeBackend struct {
	pingErr error
}

func (b *fakeBackend) Complete(context.Context, string) (string, error) { return "", nil }

func (b *fakeBackend) Stream(context.Context, string) iter.Seq2[string, error] {
	return func(func(string, error) bool) {}
}

func (b *fakeBackend) Model() string              { return "fake" }
func (b *fakeBackend) Ping(context.Context) error { return b.pingErr }

func newTestServer(a Answerer, b *fakeBackend) *Server {
	return New(types.DefaultConfig().Server, a, b, Options{})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestChat(t *testing.T) {
	a := &fakeAnswerer{tokens: []string{"## Definition\n", "Water ", "boils."}}
	s := newTestServer(a, &fakeBackend{})

	w := do(t, s.Handler(), http.MethodPost, "/chat", `{"question":"  what is water  "}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "## Definition\nWater boils.", w.Body.String())
	assert.Equal(t, []string{"what is water"}, a.questions)
	assert.True(t, w.Flushed)
}

func TestChat_QuestionRequired(t *testing.T) {
	a := &fakeAnswerer{}
	s := newTestServer(a, &fakeBackend{})

	for _, body := range []string{`{}`, `{"question":"   "}`, `not json`, ``} {
		t.Run(body, func(t *testing.T) {
			w := do(t, s.Handler(), http.MethodPost, "/chat", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"question required"}`, w.Body.String())
		})
	}
	assert.Empty(t, a.questions)
}

func TestChat_StreamsBeforeCompletion(t *testing.T) {
	release := make(chan struct{})
	a := &fakeAnswerer{tokens: []string{"first\n", "second\n"}, release: release}
	ts := httptest.NewServer(newTestServer(a, &fakeBackend{}).Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/chat", "application/json", strings.NewReader(`{"question":"q"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "first\n", line, "first token arrives while the answer is still in progress")

	close(release)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "second\n", line)
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(&fakeAnswerer{}, &fakeBackend{})

	w := do(t, s.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, s.Handler(), http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"model":"fake"`)

	down := newTestServer(&fakeAnswerer{}, &fakeBackend{pingErr: errors.New("connection refused")})
	w = do(t, down.Handler(), http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeAnswerer{}, &fakeBackend{})
	do(t, s.Handler(), http.MethodGet, "/health", "")

	w := do(t, s.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "wikichat_http_requests_total")
}

func TestCORS(t *testing.T) {
	s := newTestServer(&fakeAnswerer{}, &fakeBackend{})

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSConfig(t *testing.T) {
	assert.True(t, corsConfig(nil).AllowAllOrigins)
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)

	cfg := corsConfig([]string{"https://example.org"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://example.org"}, cfg.AllowOrigins)
}
