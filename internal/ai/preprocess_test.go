package ai

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanForEmbedding(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips markup tags",
			input:    "<h1>Onboarding</h1><p>Welcome to the <b>team</b></p>",
			expected: "Onboarding Welcome to the team",
		},
		{
			name:     "collapses whitespace runs",
			input:    "VPN  setup\n\n\tguide   for\tcontractors",
			expected: "VPN setup guide for contractors",
		},
		{
			name:     "trims leading and trailing whitespace",
			input:    "   expense policy   ",
			expected: "expense policy",
		},
		{
			name:     "markup only leaves nothing",
			input:    "<div><br/></div>",
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanForEmbedding(tt.input))
		})
	}
}

func TestCleanForEmbeddingTruncates(t *testing.T) {
	long := strings.Repeat("a", MaxEmbedChars+500)

	cleaned := CleanForEmbedding(long)

	assert.Len(t, cleaned, MaxEmbedChars)
}

func TestCleanForEmbeddingTruncatesByCharacterNotByte(t *testing.T) {
	long := strings.Repeat("世", MaxEmbedChars+1000)

	cleaned := CleanForEmbedding(long)

	assert.Equal(t, MaxEmbedChars, utf8.RuneCountInString(cleaned))
	assert.True(t, utf8.ValidString(cleaned))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", TruncateRunes("héllo", 10))
	assert.Equal(t, "hél", TruncateRunes("héllo", 3))
	assert.Equal(t, "世界", TruncateRunes("世界の話", 2))
	assert.Equal(t, "", TruncateRunes("", 5))
}

func TestCleanForEmbeddingIdempotent(t *testing.T) {
	inputs := []string{
		"<p>Printer troubleshooting</p>",
		"  already   messy \n text ",
		strings.Repeat("a", MaxEmbedChars+100),
	}

	for _, input := range inputs {
		once := CleanForEmbedding(input)
		twice := CleanForEmbedding(once)
		assert.Equal(t, once, twice)
	}
}
