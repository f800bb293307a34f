// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/pipeline"
)

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Answer one question from Wikipedia",
	Long: `Ask searches Wikipedia for the question, lets the model choose the best
page, and streams a structured answer (Definition, Background, Important
Details, Notes) to stdout. Diagnostics such as "No Wikipedia pages found"
are printed in place of the answer and the command exits non-zero.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noStream, _ := cmd.Flags().GetBool("no-stream")
		question := strings.Join(args, " ")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		if err := answer(cmd.Context(), a.pipeline, question, !noStream, os.Stdout); err != nil {
			return reportedError{err}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().Bool("no-stream", false, "generate the answer in one call and print it at the end")
	rootCmd.AddCommand(askCmd)
}

// reportedError marks a failure whose diagnostic was already printed as
// the answer.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// answer writes the answer for question to w and returns the run's error.
func answer(ctx context.Context, p *pipeline.Pipeline, question string, stream bool, w io.Writer) error {
	if !stream {
		res := p.AnswerText(ctx, question)
		fmt.Fprintln(w, res.Text)
		return res.Err
	}

	run := p.Answer(ctx, question)
	for tok := range run.Tokens() {
		if _, err := io.WriteString(w, tok); err != nil {
			return err
		}
	}
	fmt.Fprintln(w)
	return run.Err()
}
