package embedcache

import (
	"context"
	"sync"
)

// MemoryStore keeps embeddings in process memory only. Useful for tests and
// for running without a writable runtime directory.
type MemoryStore struct {
	mu    sync.Mutex
	chats map[string]map[string][]float32
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chats: make(map[string]map[string][]float32)}
}

func (s *MemoryStore) LoadEmbeddings(_ context.Context, chatID string) (map[string][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]float32, len(s.chats[chatID]))
	for k, v := range s.chats[chatID] {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) StoreEmbeddings(_ context.Context, chatID string, entries map[string][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, ok := s.chats[chatID]
	if !ok {
		chat = make(map[string][]float32, len(entries))
		s.chats[chatID] = chat
	}
	for k, v := range entries {
		chat[k] = v
	}
	return nil
}
