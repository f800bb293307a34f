// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. Wikipedia
	// asks API clients to identify themselves with a contact string.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ContentConfig holds settings for the Wikipedia content provider.
type ContentConfig struct {
	// APIURL is the MediaWiki Action API endpoint (default English Wikipedia).
	APIURL string `json:"api_url" yaml:"api_url" mapstructure:"api_url"`

	// SearchLimit is the number of titles requested per search (default 10).
	SearchLimit int `json:"search_limit" yaml:"search_limit" mapstructure:"search_limit"`

	// PreviewChars caps disambiguation previews (default 300, no suffix).
	PreviewChars int `json:"preview_chars" yaml:"preview_chars" mapstructure:"preview_chars"`

	// ContentChars caps the article text handed to the final prompt
	// (default 6000, "..." appended when cut).
	ContentChars int `json:"content_chars" yaml:"content_chars" mapstructure:"content_chars"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// InferenceProvider identifies the language model backend.
type InferenceProvider string

const (
	ProviderOllama    InferenceProvider = "ollama"
	ProviderAnthropic InferenceProvider = "anthropic"
)

// InferenceConfig holds settings for the language model client.
type InferenceConfig struct {
	// Provider selects the backend: ollama or anthropic.
	Provider InferenceProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// BaseURL is the backend endpoint. Empty means the provider default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Model is the model identifier (e.g. "gemma3:1b").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates against hosted providers. Ignored by Ollama.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Timeout bounds the wait for the backend's response headers. A stream
	// that has started may run longer. Zero disables the timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// SelectorConfig holds settings for LLM-based page selection.
type SelectorConfig struct {
	// MaxCandidates caps how many search results are previewed (default 5).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates" mapstructure:"max_candidates"`

	// Concurrency bounds parallel preview fetches (default MaxCandidates).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// Validate maps the model's answer back onto the candidate titles
	// before the content fetch.
	Validate bool `json:"validate" yaml:"validate" mapstructure:"validate"`

	// MatchThreshold is the minimum normalized similarity (0-1) for a
	// candidate to be accepted when Validate is set (default 0.6).
	MatchThreshold float64 `json:"match_threshold" yaml:"match_threshold" mapstructure:"match_threshold"`
}

// TopicConfig holds settings for the topic extractor.
type TopicConfig struct {
	// Dictionary is an optional path to a frequency-ranked word list, one
	// word per line. Empty means the built-in list.
	Dictionary string `json:"dictionary,omitempty" yaml:"dictionary,omitempty" mapstructure:"dictionary"`
}

// TracingConfig holds OpenTelemetry export settings.
type TracingConfig struct {
	Enabled     bool    `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Endpoint    string  `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	ServiceName string  `json:"service_name" yaml:"service_name" mapstructure:"service_name"`
	SampleRate  float64 `json:"sample_rate" yaml:"sample_rate" mapstructure:"sample_rate"`
}

// ServerConfig holds settings for the HTTP chat endpoint.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// CORSOrigins lists allowed origins; "*" allows all.
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" mapstructure:"cors_origins"`

	// MetricsPath is where Prometheus metrics are served. Empty disables them.
	MetricsPath string `json:"metrics_path" yaml:"metrics_path" mapstructure:"metrics_path"`
}

// LogConfig selects the slog level and handler format.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// PipelineConfig groups all component configurations.
type PipelineConfig struct {
	HTTP      HTTPConfig      `json:"http" yaml:"http" mapstructure:"http"`
	Content   ContentConfig   `json:"content" yaml:"content" mapstructure:"content"`
	Inference InferenceConfig `json:"inference" yaml:"inference" mapstructure:"inference"`
	Selector  SelectorConfig  `json:"selector" yaml:"selector" mapstructure:"selector"`
	Topic     TopicConfig     `json:"topic" yaml:"topic" mapstructure:"topic"`
	Tracing   TracingConfig   `json:"tracing" yaml:"tracing" mapstructure:"tracing"`
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		HTTP: HTTPConfig{
			Timeout:   60 * time.Second,
			UserAgent: "wikichat/0.1 (https://github.com/adgoel29/Wikipedia-LLM-Chatbot)",
		},
		Content: ContentConfig{
			APIURL:       "https://en.wikipedia.org/w/api.php",
			SearchLimit:  10,
			PreviewChars: 300,
			ContentChars: 6000,
			MaxRetries:   5,
		},
		Inference: InferenceConfig{
			Provider: ProviderOllama,
			Model:    "gemma3:1b",
			Timeout:  120 * time.Second,
		},
		Selector: SelectorConfig{
			MaxCandidates:  5,
			Concurrency:    5,
			MatchThreshold: 0.6,
		},
		Tracing: TracingConfig{
			Endpoint:    "localhost:4317",
			ServiceName: "wikichat",
			SampleRate:  1.0,
		},
		Server: ServerConfig{
			Addr:        ":8000",
			CORSOrigins: []string{"*"},
			MetricsPath: "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
