package topics

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/smartctx/internal/core"
)

const (
	encodingName = "cl100k_base"
	// runesPerToken approximates cl100k_base on English text when the
	// encoder cannot be loaded.
	runesPerToken = 4
)

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding(encodingName)
	})
	return tk, tkErr
}

// truncateTokens cuts text to at most maxTokens cl100k_base tokens.
func truncateTokens(text string, maxTokens int) string {
	enc, err := getTokenizer()
	if err != nil {
		return truncateRunes(text, maxTokens*runesPerToken)
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return enc.Decode(tokens[:maxTokens]) + "…"
}

func truncateRunes(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "…"
}

// formatTranscript renders one "[id] ROLE: content" line per message.
// Tool and system messages are skipped.
func formatTranscript(msgs []core.Message, maxTokens int, truncate func(string, int) string) string {
	var b strings.Builder
	for _, m := range msgs {
		if m.Role == core.RoleTool || m.Role == core.RoleSystem {
			continue
		}
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}

		b.WriteByte('[')
		b.WriteString(m.ID)
		b.WriteString("] ")
		b.WriteString(strings.ToUpper(m.Role))
		b.WriteString(": ")
		b.WriteString(strings.ReplaceAll(truncate(content, maxTokens), "\n", " "))
		b.WriteByte('\n')
	}
	return b.String()
}

const systemPrompt = "You are a conversation analysis system. Output only valid JSON."

func buildExtractionPrompt(transcript string) string {
	return fmt.Sprintf(
		`Analyze the conversation below. Each line starts with the message id in brackets.

1. Group the conversation into 3 to 10 short topic labels (2-4 words each). For every topic give the number of messages that discuss it.
2. List the ids of messages in which the user states standing instructions or preferences that should apply to the rest of the conversation (tone, format, language, constraints). Use only ids that appear in the conversation.

Output format: {"topics":[{"label":"...","count":1}],"sticky_message_ids":["..."]}

Conversation:
%s`,
		transcript,
	)
}
