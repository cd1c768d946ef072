package moderation

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"sayit/errors"
	"strings"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// The dictionary uses specific words to avoid partial collisions (e.g., "he" inside "The")
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(dictionary, replacementChar, log)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The b***** is here",
			words:    []string{"badger"},
		},
		{
			name:     "Multiple occurrences and preserved spacing",
			input:    "badger badger badger",
			expected: "b***** b***** b*****",
			words:    []string{"badger", "badger", "badger"},
		},
		{
			name:     "Leet speak and internal punctuation",
			input:    "Look at B.4.d.g.€r !",
			expected: "Look at B.*.*.*.** !",
			words:    []string{"badger"},
		},
		{
			name:     "Uppercase and extreme noise",
			input:    "S-N-A-K-E is a B.A.D.G.E.R",
			expected: "S-*-*-*-* is a B.*.*.*.*.*",
			words:    []string{"snake", "badger"},
		},
		{
			name:     "Accents and special characters (UTF-8)",
			input:    "Un été avec un badger",
			expected: "Un été avec un b*****",
			words:    []string{"badger"},
		},
		{
			name:     "Word adjacent to trailing punctuation",
			input:    "I love badger!",
			expected: "I love b*****!",
			words:    []string{"badger"},
		},
		{
			name:     "Word inside a longer word",
			input:    "Snakes and badgering are fine",
			expected: "Snakes and badgering are fine",
			words:    nil,
		},
		{
			name:     "Word spread across spaces",
			input:    "snak e and bad ger",
			expected: "snak e and bad ger",
			words:    nil,
		},
		{
			name:     "Nothing to censor",
			input:    "SayIt is amazing",
			expected: "SayIt is amazing",
			words:    nil,
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
			words:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, words := mod.Censor(tt.input)
			req.Equal(tt.expected, content, "test=%s,", tt.name)
			req.Equal(tt.words, words, "expected=%s,words=%s", tt.expected, words)
		})
	}
}

func TestModerator_CornerCases(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given real noise and not Leet Speak associated
	dictionary := []string{"...", ",,,", "", "badger", "badger"}

	mod, err := NewModerator(dictionary, replacementChar, log)
	req.NoError(err)

	content, words := mod.Censor("The badger is safe")
	req.Equal("The b***** is safe", content)
	req.Equal([]string{"badger"}, words)

	// Then real noise is uncensored
	content, words = mod.Censor("Hello ...")
	req.Equal("Hello ...", content)
	req.Nil(words)
}

func TestModerator_RejectsListWithoutWords(t *testing.T) {
	req := require.New(t)
	_, err := NewModerator([]string{"...", ""}, replacementChar, slog.Default())
	req.ErrorIs(err, errors.ErrEmptyWords)
}

func TestModerator_Classify(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"damn"}, replacementChar, slog.Default())
	req.NoError(err)

	verdict := mod.Classify(context.Background(), "damn it")
	req.True(verdict.Flagged())
	req.Equal("d*** it", verdict.CleanText)
	req.Equal(reasonBlockedWords, verdict.Reason)

	verdict = mod.Classify(context.Background(), "darn it")
	req.Equal(StatusClean, verdict.Status)
	req.Equal("darn it", verdict.CleanText)
}

func TestModerator_WordBoundaries(t *testing.T) {
	mod, err := NewModerator([]string{"hit", "ass"}, replacementChar, slog.Default())
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   string
		flagged bool
		clean   string
	}{
		{"Match across a space", "Oh it is fine", false, "Oh it is fine"},
		{"Match inside a word", "See you in class", false, "See you in class"},
		{"Match suffix of a word", "What a hit", true, "What a h**"},
		{"Spaces around matches are kept", "hit  ass", true, "h**  a**"},
		{"Punctuation inside a match is kept", "a.s.s!", true, "a.*.*!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			verdict := mod.Classify(context.Background(), tt.input)
			req.Equal(tt.flagged, verdict.Flagged())
			req.Equal(tt.clean, verdict.CleanText)
		})
	}
}

func TestLoadWords(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "words.yaml")
	req.NoError(os.WriteFile(path, []byte("words:\n  - badger\n  - snake\n"), 0o600))
	words, err := LoadWords(path)
	req.NoError(err)
	req.Equal([]string{"badger", "snake"}, words)

	empty := filepath.Join(dir, "empty.yaml")
	req.NoError(os.WriteFile(empty, []byte("words: []\n"), 0o600))
	_, err = LoadWords(empty)
	req.True(stderrors.Is(err, errors.ErrEmptyWords))

	_, err = LoadWords(filepath.Join(dir, "missing.yaml"))
	req.Error(err)
}

func BenchmarkModerator_ClassifyLargeList(b *testing.B) {
	words := make([]string, 0, 10_000)
	for i := 0; i < 10_000; i++ {
		words = append(words, "word"+strings.Repeat("x", i%20)+string(rune('a'+i%26)))
	}
	mod, err := NewModerator(words, replacementChar, slog.Default())
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	text := "Happy birthday to my favourite person, see you at the wordxxxq party!"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mod.Classify(ctx, text)
	}
}
