package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownToTelegramHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "plain", input: "Hello world", expected: "Hello world\n"},
		{name: "bold", input: "**bold**", expected: "<strong>bold</strong>\n"},
		{name: "italic", input: "*italic*", expected: "<em>italic</em>\n"},
		{name: "raw_underline_kept", input: "<u>underline</u>", expected: "<u>underline</u>\n"},
		{name: "strikethrough", input: "~~gone~~", expected: "<del>gone</del>\n"},
		{name: "inline_code", input: "`code`", expected: "<code>code</code>\n"},
		{
			name:     "code_block_with_language",
			input:    "```go\nfunc main() {}\n```",
			expected: "<pre><code class=\"language-go\">func main() {}\n</code></pre>\n",
		},
		{
			name:     "link_target_stripped",
			input:    "[link](https://example.com)",
			expected: "<a href=\"https://example.com\">link</a>\n",
		},
		{name: "header_stripped", input: "# Info", expected: "Info\n"},
		{name: "script_sanitized", input: "<script>alert('xss')</script>", expected: "\n"},
		{
			name:     "command_label",
			input:    "**Messages**  ›  `12`",
			expected: "<strong>Messages</strong>  ›  <code>12</code>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MarkdownToTelegramHTML([]byte(tt.input)))
		})
	}
}

func TestMarkdownToTelegramHTML_CollapsesBlankLines(t *testing.T) {
	got := MarkdownToTelegramHTML([]byte("# Topics\n\n\n\n- Go\n- Redis\n\n\n## Tip\n\nuse /filter"))

	assert.NotContains(t, got, "\n\n\n")
	assert.Contains(t, got, "Go")
	assert.Contains(t, got, "use /filter")
}
