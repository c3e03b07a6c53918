package command

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/smartctx/internal/config"
	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/service/embedcache"
	"github.com/sandevgo/smartctx/internal/service/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu    sync.Mutex
	chats map[string]core.ChatData
}

func (s *memStore) LoadChat(ctx context.Context, chatID string) (core.ChatData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chats[chatID], nil
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

type nopEmbedder struct{}

func (nopEmbedder) Embed(ctx context.Context, texts []string, category string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type nopCompleter struct{}

func (nopCompleter) Complete(context.Context, []core.Message, string, int, float64) (string, error) {
	return "", errors.New("not used")
}

type nopNotifier struct{}

func (nopNotifier) Emit(context.Context, string, any) {}

func newTestDispatcher(t *testing.T, store *memStore) (*Dispatcher, *session.Manager) {
	t.Helper()
	cfg := &config.AppConfig{
		SimilarityThreshold: 0.4,
		EmbeddingSearch:     true,
		EmbeddingCategory:   "embedding",
		FilterTimeout:       time.Second,
		ExtractionTimeout:   time.Second,
	}
	if store == nil {
		store = &memStore{chats: map[string]core.ChatData{}}
	}
	mgr := session.NewManager(context.Background(), cfg, store, embedcache.NewMemoryStore(), nopEmbedder{}, nopCompleter{}, nopNotifier{})
	t.Cleanup(func() { _ = mgr.Shutdown(context.Background()) })
	return NewDispatcher(mgr), mgr
}

func boolPtr(b bool) *bool { return &b }

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"set_filter_ok", SetFilterRequest{ChatID: "c", Topics: []string{"a"}}, false},
		{"set_filter_clear", SetFilterRequest{ChatID: "c"}, false},
		{"set_filter_no_chat", SetFilterRequest{Topics: []string{"a"}}, true},
		{"get_topics_ok", GetTopicsRequest{ChatID: "c"}, false},
		{"get_topics_blank_chat", GetTopicsRequest{ChatID: "  "}, true},
		{"similarity_ok", SetSimilarityModeRequest{ChatID: "c", Enabled: boolPtr(false)}, false},
		{"similarity_missing_flag", SetSimilarityModeRequest{ChatID: "c"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRequest)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "set_filter", KindSetFilter.String())
	assert.Equal(t, "get_topics", KindGetTopics.String())
	assert.Equal(t, "set_similarity_mode", KindSetSimilarityMode.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}

func TestDispatcher_Dispatch(t *testing.T) {
	ctx := context.Background()
	store := &memStore{chats: map[string]core.ChatData{
		"c": {
			Messages: []core.Message{{ID: "m1", Role: core.RoleUser, Content: "hi"}},
			Topics:   []core.Topic{{Label: "Greetings", Count: 1}},
		},
	}}
	d, mgr := newTestDispatcher(t, store)

	res, err := d.Dispatch(ctx, SetFilterRequest{ChatID: "c", Topics: []string{"b", "a", "a"}})
	require.NoError(t, err)
	assert.Equal(t, SetFilterResponse{ActiveTopics: []string{"a", "b"}}, res)

	res, err = d.Dispatch(ctx, GetTopicsRequest{ChatID: "c"})
	require.NoError(t, err)
	assert.Equal(t, GetTopicsResponse{Topics: []core.Topic{{Label: "Greetings", Count: 1}}, TotalMessages: 1}, res)

	res, err = d.Dispatch(ctx, SetSimilarityModeRequest{ChatID: "c", Enabled: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, SetSimilarityModeResponse{SimilaritySearchEnabled: false, ActiveTopics: []string{}}, res)
	assert.Empty(t, mgr.Get(ctx, "c").Snapshot().ActiveTopics)

	_, err = d.Dispatch(ctx, SetSimilarityModeRequest{ChatID: "c"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRouter_SlashCommands(t *testing.T) {
	ctx := context.Background()
	d, mgr := newTestDispatcher(t, nil)
	router := New(NewCommands(d))

	_, handled := router.Execute(ctx, "c", "just chatting")
	assert.False(t, handled)

	out, handled := router.Execute(ctx, "c", "/filter Python Async, LangGraph")
	require.True(t, handled)
	assert.Contains(t, out, "Filtering by 2 topic(s)")
	assert.Equal(t, []string{"LangGraph", "Python Async"}, mgr.Get(ctx, "c").Snapshot().ActiveTopics)

	out, _ = router.Execute(ctx, "c", "/filter")
	assert.Contains(t, out, "Filter cleared")
	assert.Empty(t, mgr.Get(ctx, "c").Snapshot().ActiveTopics)

	out, _ = router.Execute(ctx, "c", "/similarity maybe")
	assert.Contains(t, out, "Command Error")

	out, _ = router.Execute(ctx, "c", "/similarity off")
	assert.Contains(t, out, "disabled")
	assert.False(t, mgr.Get(ctx, "c").Snapshot().SimilarityEnabled)

	out, _ = router.Execute(ctx, "c", "/topics@smartctx_bot")
	assert.Contains(t, out, "Topics appear after")

	out, _ = router.Execute(ctx, "c", "/help")
	assert.Contains(t, out, "/filter")
	assert.Contains(t, out, "/similarity")

	out, _ = router.Execute(ctx, "c", "/unknown")
	assert.Equal(t, "Unknown command: /unknown", out)
}

func TestSplitLabels(t *testing.T) {
	assert.Nil(t, splitLabels("   "))
	assert.Equal(t, []string{"a b", "c"}, splitLabels(" a b ,, c ,"))
}

func TestFormatTopics(t *testing.T) {
	got := NewResponseFormatter().Topics([]core.Topic{
		{Label: "Go", Count: 3},
		{Label: "Instructions & Preferences", Count: 1, Sticky: true, MessageIDs: []string{"m1"}},
	})
	assert.Equal(t, []string{"Go (3)", "📌 Instructions & Preferences (1)"}, got)
}

func TestSetSimilarityModeResponse_JSON(t *testing.T) {
	data, err := json.Marshal(SetSimilarityModeResponse{SimilaritySearchEnabled: true, ActiveTopics: []string{"Go"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"similarity_search_enabled":true,"active_topics":["Go"]}`, string(data))
}
