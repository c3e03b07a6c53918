package core

import "context"

const (
	EventTopicsUpdated    = "topics_updated"
	EventFilterChanged    = "filter_changed"
	EventHighlightApplied = "highlight_applied"
)

type Notifier interface {
	Emit(ctx context.Context, event string, payload any)
}

type TopicsUpdated struct {
	ChatID        string  `json:"chat_id"`
	Topics        []Topic `json:"topics"`
	TotalMessages int     `json:"total_messages"`
}

type FilterChanged struct {
	ChatID       string   `json:"chat_id"`
	ActiveTopics []string `json:"active_topics"`
}

type HighlightApplied struct {
	ChatID     string   `json:"chat_id"`
	MessageIDs []string `json:"message_ids"`
}
