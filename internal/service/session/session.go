// Package session ties the context filter, the topic extractor and the
// per-chat filter state together behind the hooks the agent loop calls.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/service/embedcache"
	"github.com/sandevgo/smartctx/internal/service/filter"
	"github.com/sandevgo/smartctx/internal/service/topics"
	"github.com/sandevgo/smartctx/pkg/log"
)

// Session is the context object of one chat. All mutable filter state of
// the chat lives here.
type Session struct {
	chatID string

	store     core.ChatStore
	notifier  core.Notifier
	extractor *topics.Extractor

	state     *filter.State
	filter    *filter.ContextFilter
	projector *filter.Projector
	cache     *embedcache.Cache
	timeout   time.Duration

	// lifetime of the session; background work is bound to it
	ctx    context.Context
	cancel context.CancelFunc

	highlightGen atomic.Uint64
	emitMu       sync.Mutex
	// closeMu orders wg.Add against Close
	closeMu sync.Mutex
	wg      sync.WaitGroup
}

func (s *Session) ChatID() string {
	return s.chatID
}

// PrepareContext returns the history to send with the next completion.
// It never fails; on any problem the history is returned unchanged.
func (s *Session) PrepareContext(ctx context.Context, history []core.Message) []core.Message {
	var topicSet []core.Topic
	chat, err := s.store.LoadChat(ctx, s.chatID)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("chat_id", s.chatID).Msg("failed to load topics, filtering without sticky messages")
	} else {
		topicSet = chat.Topics
	}

	return s.filter.Apply(ctx, s.state.Snapshot(), history, topicSet, s.cache)
}

// OnTurnCompleted schedules topic extraction after an assistant turn. A
// turn without assistant content is ignored.
func (s *Session) OnTurnCompleted(ctx context.Context, reply core.Message) {
	if strings.TrimSpace(reply.Content) == "" {
		log.FromCtx(ctx).Debug().Str("chat_id", s.chatID).Msg("no assistant content, skipping topic extraction")
		return
	}
	if s.ctx.Err() != nil {
		return
	}
	s.extractor.Trigger(s.ctx, s.chatID)
}

// SetFilter replaces the active topics and returns them sorted.
func (s *Session) SetFilter(ctx context.Context, labels []string) []string {
	active := s.state.SetActive(labels)

	s.notifier.Emit(ctx, core.EventFilterChanged, core.FilterChanged{
		ChatID:       s.chatID,
		ActiveTopics: active,
	})
	s.refreshHighlights()
	return active
}

// SetSimilarityMode toggles embedding search. Disabling clears the active
// topics.
func (s *Session) SetSimilarityMode(ctx context.Context, enabled bool) filter.Snapshot {
	s.state.SetEnabled(enabled)
	snap := s.state.Snapshot()

	s.notifier.Emit(ctx, core.EventFilterChanged, core.FilterChanged{
		ChatID:       s.chatID,
		ActiveTopics: snap.ActiveTopics,
	})
	s.refreshHighlights()
	return snap
}

// GetTopics returns the stored topic set and the transcript length.
func (s *Session) GetTopics(ctx context.Context) ([]core.Topic, int, error) {
	chat, err := s.store.LoadChat(ctx, s.chatID)
	if err != nil {
		return nil, 0, fmt.Errorf("load chat %s: %w", s.chatID, err)
	}
	if chat.Topics == nil {
		chat.Topics = []core.Topic{}
	}
	return chat.Topics, len(chat.Messages), nil
}

func (s *Session) Snapshot() filter.Snapshot {
	return s.state.Snapshot()
}

// Wait blocks until pending highlight refreshes have finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels background work of the session. Results that arrive later
// are discarded.
func (s *Session) Close() {
	s.closeMu.Lock()
	s.cancel()
	s.closeMu.Unlock()
	s.wg.Wait()
}

// refreshHighlights recomputes the highlighted ids in the background. Only
// the newest refresh may emit.
func (s *Session) refreshHighlights() {
	s.closeMu.Lock()
	if s.ctx.Err() != nil {
		s.closeMu.Unlock()
		return
	}
	s.wg.Add(1)
	s.closeMu.Unlock()

	gen := s.highlightGen.Add(1)
	snap := s.state.Snapshot()

	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()

		logger := log.FromCtx(ctx).With().
			Str("component", "highlight").
			Str("chat_id", s.chatID).
			Logger()

		chat, err := s.store.LoadChat(ctx, s.chatID)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load chat for highlights")
			return
		}

		ids, err := s.projector.Project(ctx, snap, chat.Messages, chat.Topics, s.cache)
		if err != nil {
			logger.Warn().Err(err).Msg("highlight projection failed")
			return
		}

		s.emitMu.Lock()
		defer s.emitMu.Unlock()
		if s.highlightGen.Load() != gen || s.ctx.Err() != nil {
			logger.Debug().Msg("stale highlight result discarded")
			return
		}
		s.notifier.Emit(s.ctx, core.EventHighlightApplied, core.HighlightApplied{
			ChatID:     s.chatID,
			MessageIDs: ids,
		})
	}()
}
