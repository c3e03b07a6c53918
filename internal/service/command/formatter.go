package command

import (
	"fmt"
	"strings"

	"github.com/sandevgo/smartctx/internal/core"
)

// ResponseFormatter renders command replies as Markdown. Telegram converts
// it to HTML, the terminal prints it as is.
type ResponseFormatter struct{}

func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{}
}

func (f *ResponseFormatter) Info(title string) string {
	return fmt.Sprintf("⚙️ **%s**\n", title)
}

func (f *ResponseFormatter) Success(message string) string {
	return fmt.Sprintf("✅ **%s**\n", message)
}

func (f *ResponseFormatter) Error(command string, err error) string {
	return fmt.Sprintf("❌ **Command Error** `/%s`\n\n**Issue**: %s\n", command, err.Error())
}

func (f *ResponseFormatter) Label(label, value string) string {
	return fmt.Sprintf("**%s**  ›  `%s`\n", label, value)
}

func (f *ResponseFormatter) Usage(command string) string {
	return fmt.Sprintf("**Usage**: `%s`\n", command)
}

func (f *ResponseFormatter) List(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		fmt.Fprintf(&sb, "› %s\n", item)
	}
	return sb.String()
}

func (f *ResponseFormatter) Tip(text string) string {
	return fmt.Sprintf("**Tip**: %s\n", text)
}

// Topics renders one line per topic with its message count. The sticky
// topic is pinned.
func (f *ResponseFormatter) Topics(topics []core.Topic) []string {
	items := make([]string, 0, len(topics))
	for _, t := range topics {
		if t.Sticky {
			items = append(items, fmt.Sprintf("📌 %s (%d)", t.Label, t.Count))
			continue
		}
		items = append(items, fmt.Sprintf("%s (%d)", t.Label, t.Count))
	}
	return items
}

func (f *ResponseFormatter) Combine(sections ...string) string {
	return strings.Join(sections, "\n")
}
