// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/pipeline"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/logger"
)

const separator = "--------------------------------------------------"

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively",
	Long: `Chat reads questions from stdin, one per line, and streams each answer.
Type exit, quit, or bye to leave. A failed answer does not end the session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		fmt.Fprintf(os.Stdout, "Wikipedia chatbot (%s). Type 'exit' to quit.\n", a.model.Model())
		return repl(cmd.Context(), a.pipeline, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// repl answers each line of in until EOF or an exit word.
func repl(ctx context.Context, p *pipeline.Pipeline, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nYou: ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		q := strings.TrimSpace(sc.Text())
		if q == "" {
			continue
		}
		if isExit(q) {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		fmt.Fprint(out, "\nBot: ")
		if err := answer(ctx, p, q, true, out); err != nil {
			logger.Default().Debug("answer failed", "error", err)
		}
		fmt.Fprintln(out, separator)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func isExit(s string) bool {
	switch strings.ToLower(s) {
	case "exit", "quit", "bye":
		return true
	}
	return false
}
