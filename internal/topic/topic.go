// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package topic reduces a free-text question to a single fallback search
// keyword: the last meaningful word, spelling-corrected.
package topic

import (
	"regexp"
	"strings"
	"sync"
)

// stopWords are dropped before choosing the topic word: interrogatives,
// politeness phrases, and generic descriptors.
var stopWords = map[string]bool{
	"what": true, "who": true, "why": true, "where": true, "when": true, "how": true,
	"explain": true, "define": true, "describe": true, "tell": true, "me": true,
	"about": true, "characteristics": true, "features": true, "types": true,
	"information": true, "info": true, "of": true,
}

var wordPattern = regexp.MustCompile(`[a-z]+`)

// Corrector returns the closest known word, or the input when it is already
// known or nothing better exists.
type Corrector interface {
	Correct(word string) string
}

// Extractor derives topics from questions.
type Extractor struct {
	speller Corrector
}

// NewExtractor returns an Extractor that corrects topic words with c. A nil
// c leaves topic words untouched.
func NewExtractor(c Corrector) *Extractor {
	return &Extractor{speller: c}
}

// Extract lower-cases the question, keeps runs of ASCII letters, drops stop
// words, and returns the last remaining word after spelling correction.
// When nothing remains the original question is returned unchanged.
func (e *Extractor) Extract(question string) string {
	words := Words(question)
	if len(words) == 0 {
		return question
	}
	last := words[len(words)-1]
	if e == nil || e.speller == nil {
		return last
	}
	if fixed := e.speller.Correct(last); fixed != "" {
		return fixed
	}
	return last
}

// Words returns the non-stop-word letter runs of s, lower-cased, in order.
func Words(s string) []string {
	var out []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(s), -1) {
		if !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

var (
	defaultOnce      sync.Once
	defaultExtractor *Extractor
)

// Extract runs the package-level Extractor, built on first use from the
// embedded dictionary.
func Extract(question string) string {
	defaultOnce.Do(func() {
		defaultExtractor = NewExtractor(DefaultSpeller())
	})
	return defaultExtractor.Extract(question)
}
