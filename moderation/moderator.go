package moderation

import (
	"context"
	"log/slog"
	"sayit/errors"
	"slices"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

const reasonBlockedWords = "contains blocked words"

// Moderator flags text containing words of a local list, without any network call.
type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
	log          *slog.Logger
}

type TextMapping struct {
	Normalized []rune
	OrigIdx    []int
}

// NewModerator initializes the Aho-Corasick automaton with a normalized version of the provided censored words list.
// Words that normalize to nothing (pure punctuation) are dropped.
func NewModerator(censoredWords []string, censoredChar rune, log *slog.Logger) (*Moderator, error) {
	seen := make(map[string]struct{}, len(censoredWords))
	patterns := make([][]rune, 0, len(censoredWords))
	for _, word := range censoredWords {
		pattern := normalizeRunes([]rune(word))
		if len(pattern) == 0 {
			continue
		}
		if _, ok := seen[string(pattern)]; ok {
			continue
		}
		seen[string(pattern)] = struct{}{}
		patterns = append(patterns, pattern)
	}
	if len(patterns) == 0 {
		return nil, errors.ErrEmptyWords
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	log.Debug("Moderator ready", "patterns", len(patterns))
	return &Moderator{matcher: m, censoredChar: censoredChar, log: log}, nil
}

// Classify flags the text when at least one listed word is found.
// The suggested text keeps the first letter of every match and masks its other letters.
func (m *Moderator) Classify(_ context.Context, text string) Verdict {
	censored, words := m.Censor(text)
	if len(words) == 0 {
		return Verdict{Status: StatusClean, CleanText: text, Reason: "no issues found"}
	}
	m.log.Debug("Blocked words found", "count", len(words))
	return Verdict{Status: StatusFlagged, CleanText: censored, Reason: reasonBlockedWords}
}

// Censor identifies forbidden patterns and masks the original characters while preserving spacing.
// A match only counts when it covers whole words and does not run across whitespace.
// It returns the censored text and the matched words.
func (m *Moderator) Censor(original string) (string, []string) {
	mapping := m.normalize(original)
	if len(mapping.Normalized) == 0 {
		return original, nil
	}

	spans := m.matcher.MultiPatternSearch(mapping.Normalized, false)
	if len(spans) == 0 {
		return original, nil
	}

	source := []rune(original)
	censored := slices.Clone(source)
	var words []string
	for _, span := range spans {
		normStart := span.Pos
		normEnd := normStart + len(span.Word)

		if normStart < 0 || normEnd > len(mapping.OrigIdx) {
			continue
		}

		origStart := mapping.OrigIdx[normStart]
		origEnd := mapping.OrigIdx[normEnd-1] + 1
		if !isWholeWord(source, origStart, origEnd) {
			continue
		}

		// first letter stays readable, separators too
		for i := origStart + 1; i < origEnd; i++ {
			if !isNoise(simplifyRune(source[i])) {
				censored[i] = m.censoredChar
			}
		}
		words = append(words, string(span.Word))
	}
	if len(words) == 0 {
		return original, nil
	}
	return string(censored), words
}

// isWholeWord reports whether runes[start:end] is bounded by non-word runes and holds no whitespace.
func isWholeWord(runes []rune, start, end int) bool {
	if start > 0 && isWordRune(runes[start-1]) {
		return false
	}
	if end < len(runes) && isWordRune(runes[end]) {
		return false
	}
	return !slices.ContainsFunc(runes[start:end], unicode.IsSpace)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// normalize transforms the input string into a searchable format and tracks original rune positions.
func (m *Moderator) normalize(input string) TextMapping {
	origRunes := []rune(input)
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))

	for i, r := range origRunes {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		origIdx = append(origIdx, i)
	}
	return TextMapping{Normalized: norm, OrigIdx: origIdx}
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps common leet speak characters back to their standard alphabet counterparts.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
