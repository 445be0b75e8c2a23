package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   []string
	}{
		{name: "fits", text: "short", maxLen: 10, want: []string{"short"}},
		{name: "hard cut", text: "abcdefghij", maxLen: 4, want: []string{"abcd", "efgh", "ij"}},
		{name: "newline cut", text: "aaaa\nbbbb", maxLen: 6, want: []string{"aaaa\n", "bbbb"}},
		{name: "newline too early", text: "a\nbcdefgh", maxLen: 6, want: []string{"a\nbcde", "fgh"}},
		{name: "multibyte", text: "ééééé", maxLen: 2, want: []string{"éé", "éé", "é"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitMessage(tt.text, tt.maxLen))
		})
	}
}

func TestSplitMessage_ChunksWithinLimit(t *testing.T) {
	text := strings.Repeat("строка текста\n", 600)
	parts := SplitMessage(text, 4096)
	assert.Greater(t, len(parts), 1)
	for _, p := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(p), 4096)
	}
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestFixMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"use `x` here", "use `x` here"},
		{"use `x here", "use `x here`"},
		{"```go\nfmt.Println()", "```go\nfmt.Println()\n```"},
		{"```\na ` b\n```", "```\na ` b\n```"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FixMarkdown(tt.in), tt.in)
	}
}
