// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the wikichat pipeline:
// the content provider's pages and articles, disambiguation snippets, and
// the configuration of every component.
package types

// Page is a Wikipedia page as returned by the content provider.
type Page struct {
	// Title is the canonical page title after redirects.
	Title string `json:"title" yaml:"title"`

	// PageID is the MediaWiki page identifier.
	PageID int `json:"page_id" yaml:"page_id"`

	// Summary is the plain-text lead section.
	Summary string `json:"summary" yaml:"summary"`

	// Content is the full plain-text article.
	Content string `json:"content" yaml:"content"`

	// URL is the canonical page URL.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Snippet pairs a candidate title with a short preview used only to build
// the disambiguation prompt.
type Snippet struct {
	Title string `json:"title" yaml:"title"`

	// Text is the first characters of the page summary, or a placeholder
	// when the preview could not be loaded.
	Text string `json:"text" yaml:"text"`
}

// Article is the bounded article text handed to the final prompt. One
// Article exists per pipeline invocation; it is never cached.
type Article struct {
	// Title is the title the provider resolved the request to.
	Title string `json:"title" yaml:"title"`

	// Content is the article text, truncated with a marker when too long.
	Content string `json:"content" yaml:"content"`

	// Truncated reports whether Content was cut.
	Truncated bool `json:"truncated" yaml:"truncated"`
}
