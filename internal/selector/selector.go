// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selector asks the language model to choose the single search
// result that best answers a question.
package selector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/sync/errgroup"

	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/llm"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/tracing"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/logger"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/types"
)

// DefaultMaxCandidates caps how many search results are previewed.
const DefaultMaxCandidates = 5

// ErrNoCandidates is returned by RankPages for an empty candidate list.
var ErrNoCandidates = errors.New("no candidate pages to rank")

// Previewer returns a short exact-match summary for a title, or a
// placeholder when none can be loaded. It never fails.
type Previewer interface {
	Preview(ctx context.Context, title string) string
}

// rankPromptTmpl lists the previews and asks for one exact title.
var rankPromptTmpl = template.Must(template.New("rank").Parse(`
Several Wikipedia pages were found. Choose the SINGLE BEST page
that matches the user's question.

User Question: "{{.Question}}"

Pages:
{{range $i, $s := .Snippets}}{{if $i}}

{{end}}### {{$s.Title}}
{{$s.Text}}{{end}}

Return ONLY the exact page title. No explanation.
`))

// Selector ranks candidate pages. It holds no per-request state.
type Selector struct {
	previews    Previewer
	model       llm.Client
	tracer      tracing.Tracer
	max         int
	concurrency int
}

// Option configures a Selector.
type Option func(*Selector)

// WithTracer records rankings on t.
func WithTracer(t tracing.Tracer) Option {
	return func(s *Selector) { s.tracer = t }
}

// New returns a Selector that previews candidates with p and asks m.
func New(p Previewer, m llm.Client, cfg types.SelectorConfig, opts ...Option) *Selector {
	s := &Selector{
		previews:    p,
		model:       m,
		tracer:      tracing.Nop(),
		max:         cfg.MaxCandidates,
		concurrency: cfg.Concurrency,
	}
	if s.max <= 0 {
		s.max = DefaultMaxCandidates
	}
	if s.concurrency <= 0 {
		s.concurrency = s.max
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Snippets previews the first MaxCandidates titles concurrently and returns
// them in candidate order.
func (s *Selector) Snippets(ctx context.Context, candidates []string) []types.Snippet {
	if len(candidates) > s.max {
		candidates = candidates[:s.max]
	}
	out := make([]types.Snippet, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, title := range candidates {
		g.Go(func() error {
			out[i] = types.Snippet{Title: title, Text: s.previews.Preview(gctx, title)}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// RankPages previews up to MaxCandidates titles, sends one ranking prompt,
// and returns the model's reply trimmed of surrounding whitespace. The
// reply is not checked against the candidates; see Resolve.
func (s *Selector) RankPages(ctx context.Context, question string, candidates []string) (string, error) {
	ctx, span := s.tracer.Begin(ctx, "rank_pages", map[string]any{
		"question": question,
		"results":  candidates,
	})
	defer span.End()

	if len(candidates) == 0 {
		span.Record(ErrNoCandidates)
		return "", ErrNoCandidates
	}

	prompt, err := RenderPrompt(question, s.Snippets(ctx, candidates))
	if err != nil {
		span.Record(err)
		return "", fmt.Errorf("rendering rank prompt: %w", err)
	}

	callCtx, call := s.tracer.Begin(ctx, "llm_rank_call", map[string]any{"prompt": prompt})
	resp, err := s.model.Complete(callCtx, prompt)
	if err != nil {
		call.Record(err)
		call.End()
		span.Record(err)
		return "", fmt.Errorf("ranking with %s: %w", s.model.Model(), err)
	}
	selected := strings.TrimSpace(resp)
	call.Record(map[string]any{"selected": selected})
	call.End()

	logger.FromContext(ctx).Info("model selected page", "title", selected)
	span.Record(map[string]any{"best_page": selected})
	return selected, nil
}

// RenderPrompt builds the ranking prompt for question over snippets.
func RenderPrompt(question string, snippets []types.Snippet) (string, error) {
	var buf bytes.Buffer
	err := rankPromptTmpl.Execute(&buf, struct {
		Question string
		Snippets []types.Snippet
	}{question, snippets})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
