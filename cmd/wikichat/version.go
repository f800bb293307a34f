// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/types"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version, build revision, and default backend",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString(version, buildRevision()))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func versionString(v, revision string) string {
	inf := types.DefaultConfig().Inference
	s := "wikichat " + v
	if revision != "" {
		s += " (" + revision + ")"
	}
	return fmt.Sprintf("%s\n  default backend: %s %s\n  %s %s/%s",
		s, inf.Provider, inf.Model, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// buildRevision returns the short VCS revision stamped by the go tool, if any.
func buildRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 12 {
			return s.Value[:12]
		}
	}
	return ""
}
