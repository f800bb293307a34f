// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline answers a question end to end: topic extraction,
// search with fallback, model-based page selection, article fetch, and
// streamed generation. Every outcome, including failure, reaches the caller
// as text.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/llm"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/metrics"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/selector"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/tracing"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/wiki"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/logger"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/types"
)

// State is a pipeline stage. DONE and ERROR are terminal.
type State string

const (
	StateStart          State = "START"
	StateTopicExtracted State = "TOPIC_EXTRACTED"
	StateSearched       State = "SEARCHED"
	StatePageSelected   State = "PAGE_SELECTED"
	StateContentFetched State = "CONTENT_FETCHED"
	StateStreaming      State = "STREAMING"
	StateDone           State = "DONE"
	StateError          State = "ERROR"
)

// TopicExtractor reduces a question to a fallback keyword.
type TopicExtractor interface {
	Extract(question string) string
}

// ContentProvider searches for and fetches articles.
type ContentProvider interface {
	wiki.Searcher
	Content(ctx context.Context, title string) (*types.Article, error)
}

// Ranker picks one title out of the candidates.
type Ranker interface {
	RankPages(ctx context.Context, question string, candidates []string) (string, error)
}

// Pipeline wires the collaborators. It is immutable after New and safe for
// concurrent use; each Answer call owns its own Run.
type Pipeline struct {
	topics    TopicExtractor
	content   ContentProvider
	ranker    Ranker
	model     llm.Client
	tracer    tracing.Tracer
	max       int
	validate  bool
	threshold float64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTracer records each run on t.
func WithTracer(t tracing.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// New returns a Pipeline. cfg supplies the candidate cap and the optional
// reply validation.
func New(topics TopicExtractor, content ContentProvider, ranker Ranker, model llm.Client, cfg types.SelectorConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		topics:    topics,
		content:   content,
		ranker:    ranker,
		model:     model,
		tracer:    tracing.Nop(),
		max:       cfg.MaxCandidates,
		validate:  cfg.Validate,
		threshold: cfg.MatchThreshold,
	}
	if p.max <= 0 {
		p.max = selector.DefaultMaxCandidates
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run is one question's pass through the pipeline. Its token sequence can
// be consumed once; the accessors report the outcome afterwards.
type Run struct {
	p        *Pipeline
	ctx      context.Context
	question string
	id       string

	mu     sync.Mutex
	used   bool
	state  State
	err    error
	title  string
	answer strings.Builder
	text   strings.Builder
}

// Answer prepares a streaming run. Nothing happens until Tokens is ranged
// over.
func (p *Pipeline) Answer(ctx context.Context, question string) *Run {
	return &Run{p: p, ctx: ctx, question: question, id: uuid.NewString(), state: StateStart}
}

// Tokens yields the answer as the model produces it, or a single
// diagnostic sentence on failure. Breaking out of the range stops
// generation. A second range yields nothing.
func (r *Run) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !r.claim() {
			return
		}
		r.p.execute(r.ctx, r, r.p.stream, yield)
	}
}

// Stream is Answer(ctx, question).Tokens().
func (p *Pipeline) Stream(ctx context.Context, question string) iter.Seq[string] {
	return p.Answer(ctx, question).Tokens()
}

// Result is the outcome of a non-streaming run.
type Result struct {
	Text  string
	Title string
	State State
	Err   error
}

// AnswerText runs the pipeline with a single non-streaming generation call
// and returns the full text. For identical collaborator replies the text
// equals the concatenated tokens of Answer.
func (p *Pipeline) AnswerText(ctx context.Context, question string) Result {
	r := p.Answer(ctx, question)
	r.claim()
	p.execute(ctx, r, p.complete, func(string) bool { return true })
	return Result{Text: r.Text(), Title: r.Title(), State: r.State(), Err: r.Err()}
}

// ID returns the request ID attached to logs and spans.
func (r *Run) ID() string { return r.id }

// State returns the stage reached so far.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Err returns the typed failure, or nil.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Title returns the page the answer was built from, once selected.
func (r *Run) Title() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.title
}

// Text returns everything yielded so far, diagnostics included.
func (r *Run) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text.String()
}

func (r *Run) claim() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.used {
		return false
	}
	r.used = true
	return true
}

func (r *Run) set(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Run) fail(err error) {
	r.mu.Lock()
	r.state = StateError
	r.err = err
	r.mu.Unlock()
}

// emitter forwards tokens to the consumer and remembers whether it asked
// to stop. inYield distinguishes consumer panics from stage panics.
type emitter struct {
	run     *Run
	yield   func(string) bool
	stopped bool
	inYield bool
}

func (e *emitter) emit(tok string) bool {
	if e.stopped {
		return false
	}
	e.run.mu.Lock()
	e.run.text.WriteString(tok)
	e.run.mu.Unlock()

	e.inYield = true
	ok := e.yield(tok)
	e.inYield = false
	if !ok {
		e.stopped = true
	}
	return ok
}

// errStopped ends generation when the consumer breaks out.
var errStopped = errors.New("consumer stopped")

// generator produces the final answer, handing each piece to emit.
type generator func(ctx context.Context, prompt string, emit func(string) bool) error

func (p *Pipeline) execute(ctx context.Context, r *Run, gen generator, yield func(string) bool) {
	ctx = logger.WithRequestID(ctx, r.id)
	ctx, outer := p.tracer.Begin(ctx, "answer_pipeline", map[string]any{"question": r.question})
	defer outer.End()

	log := logger.FromContext(ctx)
	if tid := tracing.TraceID(ctx); tid != "" {
		log = log.With("trace_id", tid)
	}
	out := &emitter{run: r, yield: yield}

	failWith := func(err error, token, outcome string) {
		r.fail(err)
		outer.Record(map[string]any{"error": err.Error()})
		metrics.AnswersTotal.WithLabelValues(outcome).Inc()
		log.Warn("answer failed", "state", StateError, "error", err)
		out.emit(token)
	}

	defer func() {
		v := recover()
		if v == nil {
			return
		}
		if out.inYield {
			panic(v)
		}
		err := &UnclassifiedError{Value: v}
		log.Error("pipeline panic", "panic", v)
		failWith(err, "\n"+err.Error(), metrics.OutcomeFatal)
	}()

	// Topic.
	start := time.Now()
	topic := p.stageTopic(ctx, r.question)
	observe("topic", start)
	r.set(StateTopicExtracted)
	log.Info("searching wikipedia", "topic", topic)

	// Search.
	start = time.Now()
	results := p.stageSearch(ctx, r.question, topic)
	observe("search", start)
	if len(results) == 0 {
		err := &NoResultsError{Topic: topic}
		failWith(err, err.Error(), metrics.OutcomeNoResults)
		return
	}
	r.set(StateSearched)

	// Selection.
	candidates := results
	if len(candidates) > p.max {
		candidates = candidates[:p.max]
	}
	log.Info("picking most relevant page", "candidates", len(candidates))
	start = time.Now()
	best, err := p.ranker.RankPages(ctx, r.question, candidates)
	observe("select", start)
	if err != nil {
		serr := &SelectionError{Err: err}
		failWith(serr, serr.Error(), metrics.OutcomeSelection)
		return
	}
	if p.validate {
		m := selector.Resolve(best, candidates, p.threshold)
		if m.Fallback {
			log.Warn("model reply matched no candidate, using top result", "reply", best, "title", m.Title)
		}
		best = m.Title
	}
	r.mu.Lock()
	r.title = best
	r.mu.Unlock()
	r.set(StatePageSelected)
	log.Info("selected page", "title", best)

	// Fetch.
	start = time.Now()
	article, err := p.stageFetch(ctx, best)
	observe("fetch", start)
	if err != nil {
		ferr := &FetchError{Title: best, Err: err}
		failWith(ferr, ferr.Error(), metrics.OutcomeFetch)
		return
	}
	r.set(StateContentFetched)

	// Generation.
	prompt, err := RenderAnswerPrompt(best, article.Content, r.question)
	if err != nil {
		panic(fmt.Errorf("rendering answer prompt: %w", err))
	}
	r.set(StateStreaming)
	log.Info("generating answer", "model", p.model.Model())

	start = time.Now()
	genCtx, span := p.tracer.Begin(ctx, "llm_stream_call", map[string]any{"prompt": prompt})
	defer span.End()
	err = gen(genCtx, prompt, func(tok string) bool {
		r.mu.Lock()
		r.answer.WriteString(tok)
		r.mu.Unlock()
		return out.emit(tok)
	})
	observe("generate", start)

	switch {
	case errors.Is(err, errStopped):
		span.Record(map[string]any{"status": "cancelled"})
		outer.Record(map[string]any{"status": "cancelled", "page_used": best})
		metrics.AnswersTotal.WithLabelValues(metrics.OutcomeCancelled).Inc()
		log.Info("consumer stopped reading")
		return
	case err != nil:
		span.Record(err)
		gerr := &GenerationError{Err: err}
		failWith(gerr, "\n"+gerr.Error(), metrics.OutcomeGenerate)
		return
	}
	span.Record(map[string]any{"status": "completed"})

	r.set(StateDone)
	r.mu.Lock()
	answer := r.answer.String()
	r.mu.Unlock()
	outer.Record(map[string]any{
		"status":       "completed",
		"page_used":    best,
		"final_answer": answer,
	})
	metrics.AnswersTotal.WithLabelValues(metrics.OutcomeDone).Inc()
	log.Info("answer complete", "title", best, "chars", len(answer))
}

func (p *Pipeline) stageTopic(ctx context.Context, question string) string {
	_, span := p.tracer.Begin(ctx, "extract_topic", map[string]any{"question": question})
	defer span.End()
	topic := p.topics.Extract(question)
	span.Record(map[string]any{"topic": topic})
	return topic
}

func (p *Pipeline) stageSearch(ctx context.Context, question, topic string) []string {
	ctx, span := p.tracer.Begin(ctx, "wikipedia_search", map[string]any{"question": question, "topic": topic})
	defer span.End()
	results := wiki.SearchWithFallback(ctx, p.content, question, topic)
	span.Record(map[string]any{"results": results})
	return results
}

func (p *Pipeline) stageFetch(ctx context.Context, title string) (*types.Article, error) {
	ctx, span := p.tracer.Begin(ctx, "fetch_page", map[string]any{"title": title})
	defer span.End()
	a, err := p.content.Content(ctx, title)
	if err != nil {
		span.Record(map[string]any{"content_found": false, "error": err.Error()})
		return nil, err
	}
	span.Record(map[string]any{"content_found": true, "truncated": a.Truncated})
	return a, nil
}

// stream forwards model tokens as they arrive. A run with no tokens at all
// counts as an empty response.
func (p *Pipeline) stream(ctx context.Context, prompt string, emit func(string) bool) error {
	n := 0
	for tok, err := range p.model.Stream(ctx, prompt) {
		if err != nil {
			return err
		}
		if tok == "" {
			continue
		}
		n++
		metrics.TokensStreamed.WithLabelValues(p.model.Model()).Inc()
		if !emit(tok) {
			return errStopped
		}
	}
	if n == 0 {
		return llm.ErrEmptyResponse
	}
	return nil
}

// complete makes one non-streaming call and emits the whole reply.
func (p *Pipeline) complete(ctx context.Context, prompt string, emit func(string) bool) error {
	text, err := p.model.Complete(ctx, prompt)
	if err != nil {
		return err
	}
	if text == "" {
		return llm.ErrEmptyResponse
	}
	metrics.TokensStreamed.WithLabelValues(p.model.Model()).Inc()
	if !emit(text) {
		return errStopped
	}
	return nil
}

func observe(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
