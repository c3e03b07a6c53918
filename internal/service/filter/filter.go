// Package filter decides which transcript messages reach the next
// completion call, based on the user's active topics and embedding
// similarity.
package filter

import (
	"context"
	"time"

	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/service/embedcache"
	"github.com/sandevgo/smartctx/pkg/log"
)

const defaultTimeout = 10 * time.Second

type ContextFilter struct {
	scorer  *Scorer
	timeout time.Duration
}

func NewContextFilter(scorer *Scorer, timeout time.Duration) *ContextFilter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ContextFilter{
		scorer:  scorer,
		timeout: timeout,
	}
}

// Apply rewrites history for the next turn. It never fails: any provider
// or store problem returns the history unchanged.
func (f *ContextFilter) Apply(
	ctx context.Context,
	snap Snapshot,
	history []core.Message,
	topics []core.Topic,
	cache *embedcache.Cache,
) []core.Message {
	logger := log.FromCtx(ctx).With().Str("component", "context_filter").Str("chat_id", snap.ChatID).Logger()
	sticky := core.StickyIDs(topics)

	if snap.Mode() == Inactive {
		return dedupSticky(history, sticky)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	scored, err := f.scorer.Score(ctx, cache, history, snap.ActiveTopics, sticky)
	if err != nil {
		logger.Warn().Err(err).Msg("similarity scoring failed, using full history")
		return history
	}

	filtered := make([]core.Message, 0, len(history))
	seen := make(map[string]struct{}, len(history))
	nonSticky := 0
	for _, s := range scored {
		if !s.Selected(snap.Threshold) {
			continue
		}
		if id := s.Message.ID; id != "" {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
		}
		if !s.Sticky {
			nonSticky++
		}
		filtered = append(filtered, s.Message)
	}

	if nonSticky == 0 {
		logger.Debug().
			Float64("threshold", snap.Threshold).
			Msg("no message cleared the threshold, using full history")
		return history
	}

	logger.Debug().
		Int("kept", len(filtered)).
		Int("total", len(history)).
		Msg("history filtered")
	return filtered
}

// dedupSticky drops repeated occurrences of sticky messages, keeping the
// first. Everything else passes through untouched.
func dedupSticky(history []core.Message, sticky map[string]struct{}) []core.Message {
	if len(sticky) == 0 {
		return history
	}

	out := make([]core.Message, 0, len(history))
	seen := make(map[string]struct{}, len(sticky))
	for _, msg := range history {
		if _, ok := sticky[msg.ID]; ok {
			if _, dup := seen[msg.ID]; dup {
				continue
			}
			seen[msg.ID] = struct{}{}
		}
		out = append(out, msg)
	}
	return out
}
