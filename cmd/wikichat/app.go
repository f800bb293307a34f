// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/llm"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/pipeline"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/selector"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/topic"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/tracing"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/wiki"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/logger"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/types"
)

// app holds the wired components for one command invocation.
type app struct {
	cfg      types.PipelineConfig
	wiki     *wiki.Client
	model    llm.Client
	topics   *topic.Extractor
	pipeline *pipeline.Pipeline
	shutdown func(context.Context) error
}

// newApp loads configuration and wires the pipeline. Callers must call
// close when done so buffered spans are flushed.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cfg = applySecrets(cfg)

	wc := wiki.New(&http.Client{Timeout: cfg.HTTP.Timeout}, cfg.Content, cfg.HTTP.UserAgent)

	model, err := llm.New(cfg.Inference, nil)
	if err != nil {
		return nil, err
	}

	topics, err := newExtractor(cfg.Topic)
	if err != nil {
		return nil, err
	}

	tracer, shutdown, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	ranker := selector.New(wc, model, cfg.Selector, selector.WithTracer(tracer))
	p := pipeline.New(topics, wc, ranker, model, cfg.Selector, pipeline.WithTracer(tracer))

	logger.Default().Debug("pipeline ready",
		"provider", cfg.Inference.Provider,
		"model", model.Model(),
		"tracing", cfg.Tracing.Enabled,
	)

	return &app{
		cfg:      cfg,
		wiki:     wc,
		model:    model,
		topics:   topics,
		pipeline: p,
		shutdown: shutdown,
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.shutdown(ctx); err != nil {
		logger.Default().Warn("flushing traces", "error", err)
	}
}

func newExtractor(cfg types.TopicConfig) (*topic.Extractor, error) {
	if cfg.Dictionary == "" {
		return topic.NewExtractor(topic.DefaultSpeller()), nil
	}
	sp, err := topic.LoadSpeller(cfg.Dictionary)
	if err != nil {
		return nil, err
	}
	return topic.NewExtractor(sp), nil
}
