// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/secrets"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the configuration wikichat would run with after merging
defaults, the config file, WIKICHAT_* environment variables, and flags.
API keys are redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = applySecrets(cfg)
		if cfg.Inference.APIKey != "" {
			cfg.Inference.APIKey = "REDACTED"
		}
		out, err := renderConfig(cfg)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// loadConfig merges defaults, config file, environment, and bound flags.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultConfig()
	setDefaults(cfg)
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// applySecrets fills credentials from .secrets/ where config left them
// empty or at their defaults. An endpoint set in the config file or the
// environment to the default value is indistinguishable from the default
// and is replaced too.
func applySecrets(cfg types.PipelineConfig) types.PipelineConfig {
	cfg.Inference.APIKey = loadedSecrets.Get(secrets.AnthropicAPIKey, cfg.Inference.APIKey)
	if ep := loadedSecrets.Get(secrets.OTLPEndpoint, ""); ep != "" &&
		cfg.Tracing.Endpoint == types.DefaultConfig().Tracing.Endpoint {
		cfg.Tracing.Endpoint = ep
	}
	return cfg
}

// renderConfig encodes cfg as YAML with durations in the "60s" form the
// config file accepts.
func renderConfig(cfg types.PipelineConfig) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	setScalar(&doc, cfg.HTTP.Timeout.String(), "http", "timeout")
	setScalar(&doc, cfg.Inference.Timeout.String(), "inference", "timeout")
	return yaml.Marshal(&doc)
}

// setScalar replaces the scalar at path in a mapping node with a string.
func setScalar(n *yaml.Node, value string, path ...string) {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if len(path) == 0 {
		n.Kind, n.Tag, n.Value, n.Style = yaml.ScalarNode, "!!str", value, 0
		return
	}
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == path[0] {
			setScalar(n.Content[i+1], value, path[1:]...)
			return
		}
	}
}

// setDefaults registers every key with viper so environment variables can
// override keys that appear in no config file.
func setDefaults(d types.PipelineConfig) {
	viper.SetDefault("http.timeout", d.HTTP.Timeout)
	viper.SetDefault("http.user_agent", d.HTTP.UserAgent)

	viper.SetDefault("content.api_url", d.Content.APIURL)
	viper.SetDefault("content.search_limit", d.Content.SearchLimit)
	viper.SetDefault("content.preview_chars", d.Content.PreviewChars)
	viper.SetDefault("content.content_chars", d.Content.ContentChars)
	viper.SetDefault("content.max_retries", d.Content.MaxRetries)

	viper.SetDefault("inference.provider", string(d.Inference.Provider))
	viper.SetDefault("inference.base_url", d.Inference.BaseURL)
	viper.SetDefault("inference.model", d.Inference.Model)
	viper.SetDefault("inference.api_key", d.Inference.APIKey)
	viper.SetDefault("inference.timeout", d.Inference.Timeout)

	viper.SetDefault("selector.max_candidates", d.Selector.MaxCandidates)
	viper.SetDefault("selector.concurrency", d.Selector.Concurrency)
	viper.SetDefault("selector.validate", d.Selector.Validate)
	viper.SetDefault("selector.match_threshold", d.Selector.MatchThreshold)

	viper.SetDefault("topic.dictionary", d.Topic.Dictionary)

	viper.SetDefault("tracing.enabled", d.Tracing.Enabled)
	viper.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	viper.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	viper.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)

	viper.SetDefault("server.addr", d.Server.Addr)
	viper.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	viper.SetDefault("server.metrics_path", d.Server.MetricsPath)

	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
}
