package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sandevgo/smartctx/internal/config"
	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/service/embedcache"
)

type memStore struct {
	mu    sync.Mutex
	chats map[string]core.ChatData
}

func newMemStore() *memStore {
	return &memStore{chats: make(map[string]core.ChatData)}
}

func (s *memStore) LoadChat(ctx context.Context, chatID string) (core.ChatData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat := s.chats[chatID]
	chat.ChatID = chatID
	chat.Messages = append([]core.Message(nil), chat.Messages...)
	return chat, nil
}

func (s *memStore) SaveTopics(ctx context.Context, chatID string, topics []core.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat := s.chats[chatID]
	chat.Topics = topics
	s.chats[chatID] = chat
	return nil
}

func (s *memStore) AddMessage(ctx context.Context, chatID string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat := s.chats[chatID]
	chat.Messages = append(chat.Messages, msg)
	s.chats[chatID] = chat
	return nil
}

type vectorEmbedder struct {
	vectors map[string][]float32
}

func (e *vectorEmbedder) Embed(ctx context.Context, texts []string, category string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, ok := e.vectors[t]
		if !ok {
			return nil, errors.New("no vector for " + t)
		}
		out[i] = vec
	}
	return out, nil
}

type funcCompleter func(ctx context.Context, msgs []core.Message, category string, maxTokens int, temperature float64) (string, error)

func (f funcCompleter) Complete(ctx context.Context, msgs []core.Message, category string, maxTokens int, temperature float64) (string, error) {
	return f(ctx, msgs, category, maxTokens, temperature)
}

type event struct {
	name    string
	payload any
}

type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) Emit(ctx context.Context, name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{name: name, payload: payload})
}

func (r *recorder) named(name string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []any
	for _, e := range r.events {
		if e.name == name {
			out = append(out, e.payload)
		}
	}
	return out
}

type fixture struct {
	store    *memStore
	notifier *recorder
	manager  *Manager
}

func newFixture(ctx context.Context, completer core.Completer) *fixture {
	cfg := &config.AppConfig{
		SimilarityThreshold:        0.7,
		EmbeddingSearch:            true,
		EmbeddingCategory:          "embedding",
		FilterTimeout:              time.Second,
		ExtractionCategory:         "fast",
		ExtractionTimeout:          time.Second,
		ExtractionMaxMessageTokens: 200,
	}
	embedder := &vectorEmbedder{vectors: map[string][]float32{
		"Async":                {1, 0},
		"X":                    {1, 0},
		"How does async work?": {0.85, 0.5268},
		"Capital of France?":   {0.1, 0.995},
		"be concise":           {0.1, 0.995},
	}}
	if completer == nil {
		completer = funcCompleter(func(context.Context, []core.Message, string, int, float64) (string, error) {
			return `{"topics":[]}`, nil
		})
	}

	f := &fixture{
		store:    newMemStore(),
		notifier: &recorder{},
	}
	f.manager = NewManager(ctx, cfg, f.store, embedcache.NewMemoryStore(), embedder, completer, f.notifier)
	return f
}

func (f *fixture) seed(chatID string, msgs ...core.Message) {
	for _, m := range msgs {
		_ = f.store.AddMessage(context.Background(), chatID, m)
	}
}

func ids(msgs []core.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}
