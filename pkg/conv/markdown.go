// Package conv converts assistant Markdown into Telegram's HTML subset.
package conv

import (
	"regexp"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	tgPolicy   = telegramPolicy()

	// stripped block tags leave runs of empty lines behind
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// telegramPolicy allows the tags listed at
// https://core.telegram.org/bots/api#html-style
func telegramPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("class").OnElements("code")
	return p
}

func MarkdownToTelegramHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	sanitized := tgPolicy.SanitizeBytes(unsafeHTML)
	return string(blankRuns.ReplaceAll(sanitized, []byte("\n\n")))
}
