package topics

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/smartctx/internal/config"
	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/pkg/retry"
)

type fakeStore struct {
	mu      sync.Mutex
	chats   map[string]core.ChatData
	saves   int
	saveErr error
	loadErr error
}

func newFakeStore(chatID string, msgs ...core.Message) *fakeStore {
	return &fakeStore{
		chats: map[string]core.ChatData{
			chatID: {ChatID: chatID, Messages: msgs},
		},
	}
}

func (s *fakeStore) LoadChat(ctx context.Context, chatID string) (core.ChatData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return core.ChatData{}, s.loadErr
	}
	return s.chats[chatID], nil
}

func (s *fakeStore) SaveTopics(ctx context.Context, chatID string, topics []core.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	chat := s.chats[chatID]
	chat.Topics = topics
	s.chats[chatID] = chat
	s.saves++
	return nil
}

func (s *fakeStore) AddMessage(ctx context.Context, chatID string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat := s.chats[chatID]
	chat.Messages = append(chat.Messages, msg)
	s.chats[chatID] = chat
	return nil
}

func (s *fakeStore) topics(chatID string) []core.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chats[chatID].Topics
}

type fakeCompleter struct {
	CompleteFunc func(ctx context.Context, messages []core.Message, category string, maxTokens int, temperature float64) (string, error)
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []core.Message, category string, maxTokens int, temperature float64) (string, error) {
	return f.CompleteFunc(ctx, messages, category, maxTokens, temperature)
}

func replyWith(reply string) *fakeCompleter {
	return &fakeCompleter{
		CompleteFunc: func(context.Context, []core.Message, string, int, float64) (string, error) {
			return reply, nil
		},
	}
}

type emitted struct {
	event   string
	payload any
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []emitted
}

func (n *fakeNotifier) Emit(ctx context.Context, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, emitted{event: event, payload: payload})
}

func (n *fakeNotifier) all() []emitted {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]emitted, len(n.events))
	copy(out, n.events)
	return out
}

func newTestExtractor(store core.ChatStore, completer core.Completer, notifier core.Notifier) *Extractor {
	cfg := &config.AppConfig{
		ExtractionCategory:         "fast",
		ExtractionTimeout:          time.Second,
		ExtractionMaxMessageTokens: 200,
	}
	e := NewExtractor(cfg, store, completer, notifier)
	e.retrier = retry.NewRetrier(&retry.Config{MaxRetries: 0})
	e.truncate = truncateRunes
	return e
}
