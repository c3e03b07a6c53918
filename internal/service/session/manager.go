package session

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/smartctx/internal/config"
	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/service/embedcache"
	"github.com/sandevgo/smartctx/internal/service/filter"
	"github.com/sandevgo/smartctx/internal/service/topics"
	"github.com/sandevgo/smartctx/pkg/log"
)

const defaultHighlightTimeout = 10 * time.Second

// Manager creates sessions on first use and owns their lifetime.
type Manager struct {
	cfg       *config.AppConfig
	store     core.ChatStore
	embStore  core.EmbeddingStore
	notifier  core.Notifier
	extractor *topics.Extractor
	scorer    *filter.Scorer

	base     context.Context
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager binds every session to ctx: once ctx is done background work
// is discarded.
func NewManager(
	ctx context.Context,
	cfg *config.AppConfig,
	store core.ChatStore,
	embStore core.EmbeddingStore,
	embedder core.Embedder,
	completer core.Completer,
	notifier core.Notifier,
) *Manager {
	return &Manager{
		cfg:       cfg,
		store:     store,
		embStore:  embStore,
		notifier:  notifier,
		extractor: topics.NewExtractor(cfg, store, completer, notifier),
		scorer:    filter.NewScorer(embedder, cfg.EmbeddingCategory),
		base:      ctx,
		sessions:  make(map[string]*Session),
	}
}

// Get returns the session of chatID, creating it if needed.
func (m *Manager) Get(ctx context.Context, chatID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[chatID]; ok {
		return s
	}

	timeout := m.cfg.FilterTimeout
	if timeout <= 0 {
		timeout = defaultHighlightTimeout
	}

	lifetime, cancel := context.WithCancel(m.base)
	s := &Session{
		chatID:    chatID,
		store:     m.store,
		notifier:  m.notifier,
		extractor: m.extractor,
		state:     filter.NewState(chatID, m.cfg.EmbeddingSearch, m.cfg.SimilarityThreshold),
		filter:    filter.NewContextFilter(m.scorer, m.cfg.FilterTimeout),
		projector: filter.NewProjector(m.scorer),
		cache:     embedcache.Open(ctx, m.embStore, chatID),
		timeout:   timeout,
		ctx:       lifetime,
		cancel:    cancel,
	}
	m.sessions[chatID] = s

	log.FromCtx(ctx).Debug().Str("chat_id", chatID).Msg("session created")
	return s
}

// Close ends one session. The next Get starts a fresh one.
func (m *Manager) Close(chatID string) {
	m.mu.Lock()
	s, ok := m.sessions[chatID]
	delete(m.sessions, chatID)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Wait drains in-flight extraction runs and highlight refreshes.
func (m *Manager) Wait() {
	m.extractor.Wait()

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Wait()
	}
}

func (m *Manager) Start(ctx context.Context) error {
	return nil
}

func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	m.extractor.Wait()

	log.FromCtx(ctx).Info().Int("sessions", len(sessions)).Msg("sessions closed")
	return nil
}
