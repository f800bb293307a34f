// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package selector

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultMatchThreshold is the minimum similarity Resolve accepts.
const DefaultMatchThreshold = 0.6

// Match is the outcome of mapping a model reply onto the candidate titles.
type Match struct {
	// Title is the chosen candidate.
	Title string
	// Raw is the reply after cleanup, before matching.
	Raw string
	// Score is the normalized similarity of Raw to Title, 0 to 1.
	Score float64
	// Fallback is set when no candidate cleared the threshold and Title is
	// the top-ranked candidate.
	Fallback bool
}

var titlePrefix = regexp.MustCompile(`(?i)^(page\s+)?title\s*:\s*`)

// Clean reduces a free-form model reply to a bare title: the first
// non-empty line with heading markers, list bullets, emphasis, quotes,
// "Title:" prefixes and a trailing period removed.
func Clean(reply string) string {
	line := ""
	for l := range strings.SplitSeq(reply, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	line = strings.TrimLeft(line, "#-*> ")
	line = titlePrefix.ReplaceAllString(line, "")
	line = strings.TrimSuffix(line, ".")
	line = strings.Trim(line, "*_`\"'“”‘’ ")
	line = strings.TrimSuffix(line, ".")
	return strings.TrimSpace(line)
}

// Resolve maps reply onto candidates. An exact case-insensitive match wins;
// otherwise the candidate with the highest normalized Levenshtein
// similarity is chosen if it reaches threshold, else the first candidate.
// candidates must not be empty.
func Resolve(reply string, candidates []string, threshold float64) Match {
	raw := Clean(reply)
	m := Match{Raw: raw}
	if len(candidates) == 0 {
		m.Title = raw
		return m
	}
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}

	norm := strings.ToLower(raw)
	best, bestScore := -1, -1.0
	for i, c := range candidates {
		lc := strings.ToLower(c)
		if lc == norm {
			return Match{Title: c, Raw: raw, Score: 1}
		}
		if score := Similarity(norm, lc); score > bestScore {
			best, bestScore = i, score
		}
	}

	if bestScore >= threshold {
		m.Title, m.Score = candidates[best], bestScore
		return m
	}
	m.Title, m.Score, m.Fallback = candidates[0], Similarity(norm, strings.ToLower(candidates[0])), true
	return m
}

// Similarity is 1 minus the edit distance over the longer length, in
// characters. Two empty strings are identical.
func Similarity(a, b string) float64 {
	n := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if n == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(n)
}
