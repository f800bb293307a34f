// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wiki queries the MediaWiki Action API for search results, page
// previews, and full article text.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/adgoel29/Wikipedia-LLM-Chatbot/internal/httputil"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/logger"
	"github.com/adgoel29/Wikipedia-LLM-Chatbot/pkg/types"
)

// defaultAPIURL is the English Wikipedia endpoint, used when the config
// leaves APIURL empty.
var defaultAPIURL = "https://en.wikipedia.org/w/api.php"

// SummaryPlaceholder stands in for a preview that could not be loaded.
const SummaryPlaceholder = "Unable to load summary."

// ContentSuffix marks article text cut at the content limit.
const ContentSuffix = "..."

// Searcher returns page titles matching a query in provider order.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// Client talks to one MediaWiki installation. It holds no per-request state
// and is safe for concurrent use.
type Client struct {
	HTTP      *http.Client
	Config    types.ContentConfig
	UserAgent string
}

// New returns a Client for cfg.
func New(hc *http.Client, cfg types.ContentConfig, userAgent string) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{HTTP: hc, Config: cfg, UserAgent: userAgent}
}

// Search runs a full-text search and returns up to SearchLimit titles.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	titles, _, err := c.search(ctx, query, c.limit(), false)
	return titles, err
}

// SearchFallback searches for question and, if that yields nothing, for
// topic. Errors are logged and count as zero results.
func (c *Client) SearchFallback(ctx context.Context, question, topic string) []string {
	return SearchWithFallback(ctx, c, question, topic)
}

// SearchWithFallback runs the primary query (the whole question) and falls
// back to the topic keyword when the primary yields no titles.
func SearchWithFallback(ctx context.Context, s Searcher, question, topic string) []string {
	log := logger.FromContext(ctx)

	titles, err := s.Search(ctx, question)
	if err != nil {
		log.Warn("primary search failed", "query", question, "error", err)
	}
	if len(titles) > 0 {
		return titles
	}

	log.Info("primary search empty, retrying with topic", "topic", topic)
	titles, err = s.Search(ctx, topic)
	if err != nil {
		log.Warn("fallback search failed", "query", topic, "error", err)
		return nil
	}
	return titles
}

// Page fetches a page by title. With autoSuggest the title is first run
// through search and replaced by the provider's spelling suggestion, or the
// top hit when there is none.
func (c *Client) Page(ctx context.Context, title string, autoSuggest bool) (*types.Page, error) {
	if autoSuggest {
		hits, suggestion, err := c.search(ctx, title, 1, true)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", title, err)
		}
		switch {
		case suggestion != "":
			title = suggestion
		case len(hits) > 0:
			title = hits[0]
		default:
			return nil, fmt.Errorf("%q: %w", title, ErrPageNotFound)
		}
	}

	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts|pageprops|info"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"inprop":      {"url"},
		"titles":      {title},
	}
	var qr queryResponse
	if err := c.get(ctx, params, &qr); err != nil {
		return nil, err
	}
	if len(qr.Query.Pages) == 0 {
		return nil, fmt.Errorf("%q: %w", title, ErrPageNotFound)
	}

	p := qr.Query.Pages[0]
	if p.Missing || p.Invalid {
		return nil, fmt.Errorf("%q: %w", title, ErrPageNotFound)
	}
	if _, ok := p.PageProps["disambiguation"]; ok {
		opts, err := c.links(ctx, p.Title)
		if err != nil {
			logger.FromContext(ctx).Debug("listing disambiguation options", "title", p.Title, "error", err)
		}
		return nil, &DisambiguationError{Title: p.Title, Options: opts}
	}

	return &types.Page{
		Title:   p.Title,
		PageID:  p.PageID,
		Summary: leadSection(p.Extract),
		Content: p.Extract,
		URL:     p.FullURL,
	}, nil
}

// Preview returns the page's lead section cut to PreviewChars characters,
// using exact title matching. Any failure yields SummaryPlaceholder.
func (c *Client) Preview(ctx context.Context, title string) string {
	p, err := c.Page(ctx, title, false)
	if err != nil {
		logger.FromContext(ctx).Debug("preview unavailable", "title", title, "error", err)
		return SummaryPlaceholder
	}
	return Truncate(p.Summary, c.previewChars(), "")
}

// Content fetches the full article text with auto-suggest enabled and cuts
// it to ContentChars characters plus ContentSuffix. Every failure, including
// an empty article, is reported as ErrNoContent wrapping the cause.
func (c *Client) Content(ctx context.Context, title string) (*types.Article, error) {
	p, err := c.Page(ctx, title, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoContent, err)
	}
	if strings.TrimSpace(p.Content) == "" {
		return nil, fmt.Errorf("%q: %w", p.Title, ErrNoContent)
	}
	text := Truncate(p.Content, c.contentChars(), ContentSuffix)
	return &types.Article{
		Title:     p.Title,
		Content:   text,
		Truncated: text != p.Content,
	}, nil
}

// Truncate returns s unchanged if it has at most max characters, otherwise
// its first max characters followed by suffix.
func Truncate(s string, max int, suffix string) string {
	if max < 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + suffix
		}
		n++
	}
	return s
}

// leadSection returns the text before the first section heading.
func leadSection(extract string) string {
	if i := strings.Index(extract, "\n=="); i >= 0 {
		extract = extract[:i]
	}
	return strings.TrimSpace(extract)
}

func (c *Client) search(ctx context.Context, query string, limit int, suggest bool) ([]string, string, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {strconv.Itoa(limit)},
		"srprop":   {""},
	}
	if suggest {
		params.Set("srinfo", "suggestion")
	}

	var qr queryResponse
	if err := c.get(ctx, params, &qr); err != nil {
		return nil, "", err
	}

	titles := make([]string, 0, len(qr.Query.Search))
	for _, hit := range qr.Query.Search {
		titles = append(titles, hit.Title)
	}
	return titles, qr.Query.SearchInfo.Suggestion, nil
}

func (c *Client) links(ctx context.Context, title string) ([]string, error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"links"},
		"plnamespace": {"0"},
		"pllimit":     {"max"},
		"titles":      {title},
	}
	var qr queryResponse
	if err := c.get(ctx, params, &qr); err != nil {
		return nil, err
	}
	var opts []string
	for _, p := range qr.Query.Pages {
		for _, l := range p.Links {
			opts = append(opts, l.Title)
		}
	}
	return opts, nil
}

// get issues one API request and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, params url.Values, out *queryResponse) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL()+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.Config.MaxRetries)
	if err != nil {
		return fmt.Errorf("mediawiki request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing mediawiki response: %w", err)
	}
	if out.Error != nil {
		return &APIError{StatusCode: resp.StatusCode, Code: out.Error.Code, Info: out.Error.Info}
	}
	return nil
}

func (c *Client) apiURL() string {
	if c.Config.APIURL != "" {
		return c.Config.APIURL
	}
	return defaultAPIURL
}

func (c *Client) limit() int {
	if c.Config.SearchLimit > 0 {
		return c.Config.SearchLimit
	}
	return 10
}

func (c *Client) previewChars() int {
	if c.Config.PreviewChars > 0 {
		return c.Config.PreviewChars
	}
	return 300
}

func (c *Client) contentChars() int {
	if c.Config.ContentChars > 0 {
		return c.Config.ContentChars
	}
	return 6000
}

// IsAbsent reports whether err means the page could not be obtained rather
// than a programming or configuration fault.
func IsAbsent(err error) bool {
	var dis *DisambiguationError
	return errors.Is(err, ErrNoContent) || errors.Is(err, ErrPageNotFound) || errors.As(err, &dis)
}

// MediaWiki response envelope (formatversion=2).
type queryResponse struct {
	Query struct {
		SearchInfo struct {
			TotalHits  int    `json:"totalhits"`
			Suggestion string `json:"suggestion"`
		} `json:"searchinfo"`
		Search []struct {
			Title  string `json:"title"`
			PageID int    `json:"pageid"`
		} `json:"search"`
		Pages []struct {
			PageID    int               `json:"pageid"`
			Title     string            `json:"title"`
			Missing   bool              `json:"missing"`
			Invalid   bool              `json:"invalid"`
			Extract   string            `json:"extract"`
			FullURL   string            `json:"fullurl"`
			PageProps map[string]string `json:"pageprops"`
			Links     []struct {
				Title string `json:"title"`
			} `json:"links"`
		} `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}
