// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var topicCmd = &cobra.Command{
	Use:   "topic <question...>",
	Short: "Print the fallback search keyword for a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ex, err := newExtractor(cfg.Topic)
		if err != nil {
			return err
		}
		fmt.Println(ex.Extract(strings.Join(args, " ")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(topicCmd)
}
