// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the streaming chat endpoint over HTTP",
	Long: `Serve starts an HTTP server. POST /chat with {"question": "..."} streams
the answer as plain text. GET /health, GET /ready, and the Prometheus
metrics path are also served.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			a.close(flushCtx)
		}()

		var opts server.Options
		if a.cfg.Tracing.Enabled {
			opts.TraceService = a.cfg.Tracing.ServiceName
		}
		return server.New(a.cfg.Server, a.pipeline, a.model, opts).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	if err := viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(serveCmd)
}
