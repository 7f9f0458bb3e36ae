package metrics

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Fold returns s case-folded for case-insensitive matching.
func Fold(s string) string {
	// a Caser is stateful, so one is created per call
	return cases.Fold().String(strings.ReplaceAll(s, "’", "'"))
}

// Words splits s into case-folded word tokens. Anything that is not a letter,
// digit or apostrophe separates words.
func Words(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// countSequence counts occurrences of seq as consecutive tokens in words.
func countSequence(words, seq []string) int {
	if len(seq) == 0 || len(seq) > len(words) {
		return 0
	}
	count := 0
	for i := 0; i+len(seq) <= len(words); i++ {
		match := true
		for j := range seq {
			if words[i+j] != seq[j] {
				match = false
				break
			}
		}
		if match {
			count++
		}
	}
	return count
}

// ContainsPhrase reports whether phrase occurs in text, ignoring case.
func ContainsPhrase(text, phrase string) bool {
	p := strings.TrimSpace(Fold(phrase))
	if p == "" {
		return false
	}
	return strings.Contains(Fold(text), p)
}

// HasWords reports whether the words of phrase occur consecutively in words.
func HasWords(words []string, phrase string) bool {
	return countSequence(words, Words(phrase)) > 0
}
