package core

const (
	AppName          = "smartctx"
	AppVersion       = "0.1.0"
	AppRepositoryURL = "https://github.com/sandevgo/smartctx"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a single transcript entry. The chat store owns it; this module
// only reads it.
type Message struct {
	ID      string `json:"id,omitempty"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Topic is a label summarizing part of a conversation. The sticky topic
// carries the ids of standing instructions that are always kept in context.
type Topic struct {
	Label      string   `json:"label"`
	Count      int      `json:"count"`
	Sticky     bool     `json:"sticky,omitempty"`
	MessageIDs []string `json:"message_ids,omitempty"`
}

// ChatData is what the chat store returns for one chat.
type ChatData struct {
	ChatID   string    `json:"chat_id"`
	Messages []Message `json:"messages"`
	Topics   []Topic   `json:"topics"`
}

// StickyIDs returns the message ids of the sticky topic, if any.
func StickyIDs(topics []Topic) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, t := range topics {
		if !t.Sticky {
			continue
		}
		for _, id := range t.MessageIDs {
			ids[id] = struct{}{}
		}
	}
	return ids
}
