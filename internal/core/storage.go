package core

import "context"

type ChatStore interface {
	LoadChat(ctx context.Context, chatID string) (ChatData, error)
	SaveTopics(ctx context.Context, chatID string, topics []Topic) error
	AddMessage(ctx context.Context, chatID string, msg Message) error
}

// EmbeddingStore persists the embedding cache of a chat. Keys are
// "message_id:fingerprint".
type EmbeddingStore interface {
	LoadEmbeddings(ctx context.Context, chatID string) (map[string][]float32, error)
	StoreEmbeddings(ctx context.Context, chatID string, entries map[string][]float32) error
}
