// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wikichat CLI: ask a question,
// chat interactively, or serve the streaming HTTP endpoint.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/secrets"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the wikichat CLI.
var rootCmd = &cobra.Command{
	Use:   "wikichat",
	Short: "Answer questions from Wikipedia with a language model",
	Long: `wikichat answers a natural-language question by searching Wikipedia,
letting a language model pick the most relevant article, and streaming a
structured answer generated from that article.

The model runs on a local Ollama server by default (gemma3:1b). Use
"ask" for one question, "chat" for an interactive session, or "serve"
for the HTTP endpoint.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger.Init(cfg.Log.Level, cfg.Log.Format, os.Stderr)

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if keys := s.Keys(); len(keys) > 0 {
			logger.Default().Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./wikichat.yaml or ~/.config/wikichat/wikichat.yaml)")
	pf.String("model", "", "model name (default gemma3:1b)")
	pf.String("provider", "", "inference provider: ollama or anthropic")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	bindFlag("inference.model", "model")
	bindFlag("inference.provider", "provider")
	bindFlag("log.level", "log-level")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	// A .env file is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wikichat")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wikichat"))
		}
	}

	viper.SetEnvPrefix("WIKICHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
