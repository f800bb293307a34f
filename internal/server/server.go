// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the answer pipeline over HTTP. POST /chat streams
// the answer as plain text, flushing after every token.
package server

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/llm"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/metrics"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/logger"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/types"
)

// Answerer streams the answer to one question.
type Answerer interface {
	Stream(ctx context.Context, question string) iter.Seq[string]
}

// Server owns the gin engine and its dependencies.
type Server struct {
	engine   *gin.Engine
	cfg      types.ServerConfig
	answerer Answerer
	backend  llm.Client
}

// Options carries optional collaborators.
type Options struct {
	// TraceService, when set, wraps requests in otelgin spans under that
	// service name.
	TraceService string
}

type chatRequest struct {
	Question string `json:"question"`
}

// New builds the router. backend is pinged by /ready when it supports it.
func New(cfg types.ServerConfig, a Answerer, backend llm.Client, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{engine: engine, cfg: cfg, answerer: a, backend: backend}

	engine.Use(gin.Recovery())
	engine.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if opts.TraceService != "" {
		engine.Use(otelgin.Middleware(opts.TraceService))
	}
	engine.Use(requestMetrics())

	engine.POST("/chat", s.chat)
	engine.GET("/health", s.health)
	engine.GET("/ready", s.ready)
	if cfg.MetricsPath != "" {
		engine.GET(cfg.MetricsPath, gin.WrapH(promhttp.Handler()))
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on cfg.Addr until ctx is cancelled, then shuts down,
// giving in-flight answers up to ten seconds to finish.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Default().Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question required"})
		return
	}
	question := strings.TrimSpace(req.Question)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)

	// The request context is cancelled when the client goes away, which
	// also stops the model stream.
	for tok := range s.answerer.Stream(c.Request.Context(), question) {
		if _, err := c.Writer.WriteString(tok); err != nil {
			logger.FromContext(c.Request.Context()).Debug("client went away", "error", err)
			return
		}
		c.Writer.Flush()
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ready(c *gin.Context) {
	p, ok := s.backend.(llm.Pinger)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "model": s.backend.Model()})
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
