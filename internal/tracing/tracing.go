// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tracing records pipeline stages as spans. The pipeline talks to
// the small Tracer interface; Nop discards everything and NewOTel maps
// spans onto OpenTelemetry.
package tracing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/types"
)

// Attribute keys for span payloads.
const (
	AttrInput  = "input"
	AttrOutput = "output"
)

// Tracer opens spans. Begin returns a context carrying the new span so
// nested stages become its children.
type Tracer interface {
	Begin(ctx context.Context, name string, input any) (context.Context, Span)
}

// Span is one traced stage. Record may be called any number of times before
// End; End is idempotent.
type Span interface {
	Record(output any)
	End()
}

// Nop returns a Tracer that records nothing.
func Nop() Tracer { return nopTracer{} }

type nopTracer struct{}

func (nopTracer) Begin(ctx context.Context, _ string, _ any) (context.Context, Span) {
	return ctx, nopSpan{}
}

type nopSpan struct{}

func (nopSpan) Record(any) {}
func (nopSpan) End()       {}

// NewOTel adapts an OpenTelemetry tracer. Inputs and outputs are stored as
// JSON strings; an error output, or a map output with an "error" key, marks
// the span as failed.
func NewOTel(t trace.Tracer) Tracer {
	return &otelTracer{t: t}
}

type otelTracer struct {
	t trace.Tracer
}

func (o *otelTracer) Begin(ctx context.Context, name string, input any) (context.Context, Span) {
	ctx, s := o.t.Start(ctx, name)
	if input != nil {
		s.SetAttributes(attribute.String(AttrInput, encode(input)))
	}
	return ctx, &otelSpan{s: s}
}

type otelSpan struct {
	s    trace.Span
	once sync.Once
}

func (o *otelSpan) Record(output any) {
	if err, ok := output.(error); ok {
		o.s.RecordError(err)
		o.s.SetStatus(codes.Error, err.Error())
		o.s.SetAttributes(attribute.String(AttrOutput, encode(map[string]string{"error": err.Error()})))
		return
	}
	if m, ok := output.(map[string]any); ok {
		if msg, ok := m["error"]; ok {
			o.s.SetStatus(codes.Error, fmt.Sprint(msg))
		}
	}
	o.s.SetAttributes(attribute.String(AttrOutput, encode(output)))
}

func (o *otelSpan) End() {
	o.once.Do(func() { o.s.End() })
}

func encode(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// TraceID returns the trace ID of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// Init builds the process tracer. When tracing is disabled it returns Nop
// and a shutdown func that does nothing; otherwise it installs a global
// TracerProvider exporting over OTLP/gRPC.
func Init(ctx context.Context, cfg types.TracingConfig) (Tracer, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return Nop(), noop, nil
	}
	if cfg.Endpoint == "" {
		return nil, nil, errors.New("tracing enabled but no endpoint configured")
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return NewOTel(tp.Tracer(cfg.ServiceName)), tp.Shutdown, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}
