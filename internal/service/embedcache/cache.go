// Package embedcache memoizes message embeddings per chat, keyed by message
// id and a fingerprint of the message content.
package embedcache

import (
	"context"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/pkg/log"
)

type Entry struct {
	MessageID string
	Content   string
	Vector    []float32
}

// Cache is the in-memory source of truth for one chat's embeddings. Every
// mutation is written through to the backing store.
type Cache struct {
	mu     sync.RWMutex
	chatID string
	store  core.EmbeddingStore
	data   map[string][]float32
}

// Open loads the chat's embeddings. An unreadable backing document starts
// the cache cold instead of failing.
func Open(ctx context.Context, store core.EmbeddingStore, chatID string) *Cache {
	logger := log.FromCtx(ctx).With().Str("component", "embedding_cache").Str("chat_id", chatID).Logger()

	data, err := store.LoadEmbeddings(ctx, chatID)
	if err != nil {
		logger.Warn().Err(err).Msg("embedding cache unreadable, starting cold")
		data = nil
	}
	if data == nil {
		data = make(map[string][]float32)
	}

	logger.Debug().Int("entries", len(data)).Msg("embedding cache loaded")
	return &Cache{
		chatID: chatID,
		store:  store,
		data:   data,
	}
}

// Fingerprint is a fast, non-cryptographic hash of message content.
func Fingerprint(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

func Key(messageID, content string) string {
	return messageID + ":" + Fingerprint(content)
}

// Get returns the cached vector for the message. Callers must not modify it.
func (c *Cache) Get(messageID, content string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	vec, ok := c.data[Key(messageID, content)]
	return vec, ok
}

func (c *Cache) Put(ctx context.Context, messageID, content string, vec []float32) error {
	return c.PutMany(ctx, []Entry{{MessageID: messageID, Content: content, Vector: vec}})
}

// PutMany stores all entries and persists them in a single store call. The
// in-memory entries stay even if persisting fails.
func (c *Cache) PutMany(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := make(map[string][]float32, len(entries))
	for _, e := range entries {
		vec := make([]float32, len(e.Vector))
		copy(vec, e.Vector)
		batch[Key(e.MessageID, e.Content)] = vec
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range batch {
		c.data[k] = v
	}

	if err := c.store.StoreEmbeddings(ctx, c.chatID, batch); err != nil {
		return fmt.Errorf("%w: persist %d embeddings for chat %s: %w", core.ErrStore, len(batch), c.chatID, err)
	}
	return nil
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *Cache) ChatID() string {
	return c.chatID
}
