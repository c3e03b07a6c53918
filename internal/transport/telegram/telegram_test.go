package telegram

import (
	"context"
	"strings"
	"testing"

	"github.com/sandevgo/smartctx/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestSplitHTML(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   []string
	}{
		{name: "short", text: "hello", maxLen: 10, want: []string{"hello"}},
		{name: "hard_cut", text: "abcdefghij", maxLen: 4, want: []string{"abcd", "efgh", "ij"}},
		{name: "newline_cut", text: "abcdef\nghijkl", maxLen: 10, want: []string{"abcdef", "ghijkl"}},
		{name: "early_newline_ignored", text: "a\nbcdefghijkl", maxLen: 9, want: []string{"a\nbcdefgh", "ijkl"}},
		{name: "empty", text: "", maxLen: 10, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitHTML(tt.text, tt.maxLen))
		})
	}
}

func TestSplitHTML_RespectsLimit(t *testing.T) {
	text := strings.Repeat("line of text\n", 1000)
	for _, chunk := range splitHTML(text, maxTelegramMsgLen) {
		assert.LessOrEqual(t, len(chunk), maxTelegramMsgLen)
	}
}

type stubCommand struct{ name, desc string }

func (c stubCommand) Name() string        { return c.name }
func (c stubCommand) Description() string { return c.desc }
func (c stubCommand) Execute(context.Context, string, []string) (string, error) {
	return "", nil
}

type stubRouter struct{ cmds []core.Command }

func (r stubRouter) Execute(context.Context, string, string) (string, bool) { return "", false }
func (r stubRouter) ListCommands() []core.Command                           { return r.cmds }

func TestBotCommands(t *testing.T) {
	got := botCommands(stubRouter{cmds: []core.Command{
		stubCommand{name: "filter", desc: "Focus context"},
		stubCommand{name: "topics", desc: "List topics"},
	}})

	assert.Len(t, got, 2)
	assert.Equal(t, "filter", got[0].Text)
	assert.Equal(t, "Focus context", got[0].Description)
	assert.Equal(t, "topics", got[1].Text)
}

func TestChatKey(t *testing.T) {
	assert.Equal(t, "telegram-42", chatKey(42))
	assert.Equal(t, "telegram--100", chatKey(-100))
}
