// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <question...>",
	Short: "List the Wikipedia titles a question would be ranked over",
	Long: `Search runs the question through Wikipedia search, retrying with the
extracted topic when nothing matches, and prints one candidate title per
line. No model is called.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		question := strings.Join(args, " ")
		titles := a.wiki.SearchFallback(cmd.Context(), question, a.topics.Extract(question))
		if len(titles) == 0 {
			return fmt.Errorf("no Wikipedia pages found for %q", question)
		}
		for _, t := range titles {
			fmt.Println(t)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
