// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package topic

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"What is the boiling point of water?", "water"},
		{"Tell me about elephants in Africa", "africa"},
		{"Explain photosynthesys", "photosynthesis"},
		{"who was Napoleon", "napoleon"},
		{"describe the volcanoe", "volcano"},
		{"WATER", "water"},
		{"gravty", "gravity"},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.question))
		})
	}
}

func TestExtract_NothingLeft(t *testing.T) {
	tests := []string{
		"",
		"???",
		"12345 !!",
		"What is?",
		"tell me about",
	}
	for _, q := range tests {
		t.Run(q, func(t *testing.T) {
			assert.Equal(t, q, Extract(q))
		})
	}
}

func TestExtract_NonASCIILettersAreSeparators(t *testing.T) {
	// "café" splits into "caf"; the accented rune is dropped.
	got := NewExtractor(nil).Extract("what about café")
	assert.Equal(t, "caf", got)
}

func TestExtract_NilSpellerLeavesWordAlone(t *testing.T) {
	assert.Equal(t, "watr", NewExtractor(nil).Extract("what is watr"))
}

func TestWords(t *testing.T) {
	assert.Equal(t,
		[]string{"is", "the", "boiling", "point", "water"},
		Words("What is the boiling point of water?"))
	assert.Empty(t, Words("How? Why! When..."))
}

func TestSpeller(t *testing.T) {
	s, err := NewSpeller(strings.NewReader("# comment\nwater\n\nwaiter\nwafer\ncat\n"))
	require.NoError(t, err)

	assert.True(t, s.Known("water"))
	assert.False(t, s.Known("comment"))

	assert.Equal(t, "water", s.Correct("water"), "known words are unchanged")
	assert.Equal(t, "cat", s.Correct("cta"), "within two edits")
	assert.Equal(t, "xyzzyq", s.Correct("xyzzyq"), "no candidate leaves input alone")
	assert.Equal(t, "", s.Correct(""))
}

func TestSpeller_FrequencyBreaksTies(t *testing.T) {
	// "wter" is one edit from both; water ranks first.
	s, err := NewSpeller(strings.NewReader("water\nwiter\n"))
	require.NoError(t, err)
	assert.Equal(t, "water", s.Correct("wter"))
}

func TestNewSpeller_Empty(t *testing.T) {
	_, err := NewSpeller(strings.NewReader("# only comments\n\n"))
	assert.Error(t, err)
}

func TestLoadSpeller(t *testing.T) {
	path := t.TempDir() + "/words.txt"
	require.NoError(t, os.WriteFile(path, []byte("quark\nlepton\n"), 0o644))

	s, err := LoadSpeller(path)
	require.NoError(t, err)
	assert.Equal(t, "quark", s.Correct("quakr"))

	_, err = LoadSpeller(path + ".missing")
	assert.Error(t, err)
}

func TestSpeller_Counts(t *testing.T) {
	s, err := NewSpeller(strings.NewReader("witer 40\nwater 7\nvolcanic 90\nvolcano 3\n"))
	require.NoError(t, err)

	assert.Equal(t, "witer", s.Correct("wter"), "higher count wins at equal distance")
	assert.Equal(t, "volcano", s.Correct("volcanoe"), "one edit beats two regardless of count")
}

func TestSpeller_TiesAreStable(t *testing.T) {
	s, err := NewSpeller(strings.NewReader("bat 5\ncat 5\n"))
	require.NoError(t, err)
	for range 20 {
		assert.Equal(t, "bat", s.Correct("aat"))
	}
}

func TestNewSpeller_BadCount(t *testing.T) {
	for _, in := range []string{"water many\n", "water 0\n", "water -3\n"} {
		_, err := NewSpeller(strings.NewReader(in))
		assert.Error(t, err, in)
	}
}

func TestDefaultSpeller_KnowsCommonWords(t *testing.T) {
	s := DefaultSpeller()
	for _, w := range []string{"water", "history", "gravity", "elephant"} {
		assert.True(t, s.Known(w), w)
	}
	assert.Greater(t, len(s.known), 25000)
}

func TestExtract_KeepsOrdinaryWords(t *testing.T) {
	words := []string{
		"wine", "cake", "zinc", "yoga", "tofu", "pasta", "jazz", "messi",
		"pizza", "sushi", "bitcoin", "guitar", "tennis", "coffee", "chess",
		"dinosaur", "cholesterol", "hurricane", "saturn", "mozart", "karate",
		"lighthouse", "cathedral", "telescope", "democracy", "tuberculosis",
	}
	for _, w := range words {
		t.Run(w, func(t *testing.T) {
			assert.Equal(t, w, Extract("What is "+w+"?"))
		})
	}
}

func TestExtract_CorrectsMisspellings(t *testing.T) {
	tests := map[string]string{
		"elephnt":  "elephant",
		"einstien": "einstein",
		"guitr":    "guitar",
		"chocolat": "chocolate",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Extract("tell me about "+in))
		})
	}
}
