// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package topic

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sajari/fuzzy"
)

//go:embed words.txt
var embeddedWords string

// maxEdits is the largest edit distance a correction may span.
const maxEdits = 2

// Speller corrects single words against a word-frequency dictionary,
// preferring the candidate with the fewest edits and then the most frequent.
type Speller struct {
	model *fuzzy.Model
	known map[string]bool
}

type entry struct {
	word  string
	count int
}

// NewSpeller builds a Speller from r. Each line holds a word optionally
// followed by its corpus count. Lines without a count are ranked by
// position, most frequent first. Blank lines and lines starting with # are
// ignored.
func NewSpeller(r io.Reader) (*Speller, error) {
	var entries []entry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.ToLower(strings.TrimSpace(sc.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		e := entry{word: fields[0], count: -1}
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 1 {
				return nil, fmt.Errorf("dictionary line %q: bad count", line)
			}
			e.count = n
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("dictionary is empty")
	}

	model := fuzzy.NewModel()
	model.SetThreshold(1)
	model.SetDepth(maxEdits)
	model.SetUseAutocomplete(false)

	known := make(map[string]bool, len(entries))
	for i, e := range entries {
		if known[e.word] {
			continue
		}
		known[e.word] = true
		if e.count < 0 {
			e.count = len(entries) - i
		}
		model.SetCount(e.word, e.count, true)
	}
	return &Speller{model: model, known: known}, nil
}

// LoadSpeller reads a dictionary file from path.
func LoadSpeller(path string) (*Speller, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary %s: %w", path, err)
	}
	defer f.Close()
	return NewSpeller(f)
}

// Known reports whether w is in the dictionary.
func (s *Speller) Known(w string) bool {
	return s.known[w]
}

// Correct returns w when it is known. Otherwise it returns the known word
// within two edits that needs the fewest edits, breaking ties by frequency
// and then alphabetically, or w unchanged when there is none.
func (s *Speller) Correct(w string) string {
	if w == "" || s.known[w] {
		return w
	}
	best, bestLev, bestCount := "", maxEdits+1, 0
	for term, p := range s.model.Potentials(w, true) {
		if !s.known[term] || p.Leven > maxEdits {
			continue
		}
		if p.Leven < bestLev ||
			(p.Leven == bestLev && (p.Score > bestCount || (p.Score == bestCount && term < best))) {
			best, bestLev, bestCount = term, p.Leven, p.Score
		}
	}
	if best == "" {
		return w
	}
	return best
}

var (
	defaultSpellerOnce sync.Once
	defaultSpeller     *Speller
)

// DefaultSpeller returns the Speller built from the embedded word list.
func DefaultSpeller() *Speller {
	defaultSpellerOnce.Do(func() {
		s, err := NewSpeller(strings.NewReader(embeddedWords))
		if err != nil {
			panic(fmt.Sprintf("embedded dictionary: %v", err))
		}
		defaultSpeller = s
	})
	return defaultSpeller
}
