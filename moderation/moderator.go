// Package moderation masks blacklisted words in outgoing chat text.
package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"strings"
	"unicode"

	apperrors "termchat/errors"

	goahocorasick "github.com/anknown/ahocorasick"
)

//go:embed censored
var censoredFS embed.FS

// DefaultWords returns the embedded blacklist. Blank lines and lines
// starting with # are skipped.
func DefaultWords() ([]string, error) {
	data, err := censoredFS.ReadFile("censored/en.txt")
	if err != nil {
		return nil, err
	}

	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, apperrors.ErrEmptyWords
	}
	return words, nil
}

// Moderator finds blacklisted words with an Aho-Corasick automaton and
// masks them in place.
type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
}

func NewModerator(words []string, censoredChar rune) (*Moderator, error) {
	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i] = lowerRunes(word)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, censoredChar: censoredChar}, nil
}

// Censor replaces every matched word with the censored character.
// Matching is case insensitive; lowering runes one to one keeps match
// positions valid in the original text.
func (m *Moderator) Censor(original string) string {
	origRunes := []rune(original)
	lowered := make([]rune, len(origRunes))
	for i, r := range origRunes {
		lowered[i] = unicode.ToLower(r)
	}

	spans := m.matcher.MultiPatternSearch(lowered, false)
	if len(spans) == 0 {
		return original
	}

	for _, span := range spans {
		end := span.Pos + len(span.Word)
		if span.Pos < 0 || end > len(origRunes) {
			continue
		}
		for i := span.Pos; i < end; i++ {
			origRunes[i] = m.censoredChar
		}
	}
	return string(origRunes)
}

func lowerRunes(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, unicode.ToLower(r))
	}
	return out
}
