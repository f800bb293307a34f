// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPageNotFound is returned when the requested title does not exist
	// and no suggestion resolves it.
	ErrPageNotFound = errors.New("page not found")

	// ErrNoContent marks an article that could not be obtained. Content
	// wraps the underlying cause with it so callers can treat every
	// provider failure as absence.
	ErrNoContent = errors.New("no content")
)

// DisambiguationError is returned when a title resolves to a disambiguation
// page. Options lists the linked article titles.
type DisambiguationError struct {
	Title   string
	Options []string
}

func (e *DisambiguationError) Error() string {
	if len(e.Options) == 0 {
		return fmt.Sprintf("%q may refer to several pages", e.Title)
	}
	return fmt.Sprintf("%q may refer to: %s", e.Title, strings.Join(e.Options, ", "))
}

// APIError reports a non-200 HTTP status or an error object in the
// MediaWiki response body.
type APIError struct {
	StatusCode int
	Code       string
	Info       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("mediawiki API error %s: %s", e.Code, e.Info)
	}
	return fmt.Sprintf("mediawiki API returned HTTP %d", e.StatusCode)
}
