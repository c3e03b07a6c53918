package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/pkg/log"
)

// EmbeddingStore keeps one JSON document per chat:
// {dir}/{safe_chat_id}.embeddings.json
type EmbeddingStore struct {
	dir string
	mu  sync.Mutex
}

func NewEmbeddingStore(dir string) *EmbeddingStore {
	return &EmbeddingStore{dir: dir}
}

// SafeID strips everything but letters, digits, '-' and '_' from a chat id.
// When characters were stripped the xxhash of the raw id is appended, so
// distinct ids never share a document and none maps to a hidden file.
func SafeID(chatID string) string {
	var b strings.Builder
	for _, r := range chatID {
		if r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	safe := b.String()
	if safe != "" && safe == chatID {
		return safe
	}
	if safe == "" {
		safe = "chat"
	}
	return fmt.Sprintf("%s-%016x", safe, xxhash.Sum64String(chatID))
}

func (s *EmbeddingStore) Path(chatID string) string {
	return filepath.Join(s.dir, SafeID(chatID)+".embeddings.json")
}

// LoadEmbeddings returns an empty map for a missing document and ErrStore
// for an unreadable one.
func (s *EmbeddingStore) LoadEmbeddings(ctx context.Context, chatID string) (map[string][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(chatID)
}

// StoreEmbeddings merges entries into the chat's document and rewrites it.
// A corrupt document is replaced.
func (s *EmbeddingStore) StoreEmbeddings(ctx context.Context, chatID string, entries map[string][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(chatID)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("chat_id", chatID).Msg("overwriting unreadable embedding cache")
		data = make(map[string][]float32, len(entries))
	}
	for k, v := range entries {
		data[k] = v
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal embeddings: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	path := s.Path(chatID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write embeddings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace embeddings: %w", err)
	}
	return nil
}

func (s *EmbeddingStore) read(chatID string) (map[string][]float32, error) {
	raw, err := os.ReadFile(s.Path(chatID))
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string][]float32), nil
		}
		return nil, fmt.Errorf("%w: read embeddings: %w", core.ErrStore, err)
	}

	data := make(map[string][]float32)
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: decode embeddings: %w", core.ErrStore, err)
	}
	return data, nil
}
