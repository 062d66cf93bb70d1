package ai

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxEmbedChars bounds the text sent to any provider. Longer documents are
// truncated rather than rejected so edits to huge pages still index.
const MaxEmbedChars = 8000

// TruncateRunes cuts a string to at most limit characters without
// splitting a multibyte rune at the boundary.
func TruncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// CleanForEmbedding strips markup, collapses whitespace runs, trims, and
// truncates to MaxEmbedChars. Applied identically for every provider.
func CleanForEmbedding(text string) string {
	cleaned := tagPattern.ReplaceAllString(text, " ")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	return TruncateRunes(cleaned, MaxEmbedChars)
}
