package filter

import (
	"context"

	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/service/embedcache"
)

// Projector computes which message ids currently satisfy the filter, for UI
// annotation. It applies the same scoring as ContextFilter but not the
// empty-result fallback.
type Projector struct {
	scorer *Scorer
}

func NewProjector(scorer *Scorer) *Projector {
	return &Projector{scorer: scorer}
}

func (p *Projector) Project(
	ctx context.Context,
	snap Snapshot,
	history []core.Message,
	topics []core.Topic,
	cache *embedcache.Cache,
) ([]string, error) {
	if snap.Mode() == Inactive {
		return []string{}, nil
	}

	scored, err := p.scorer.Score(ctx, cache, history, snap.ActiveTopics, core.StickyIDs(topics))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(scored))
	seen := make(map[string]struct{}, len(scored))
	for _, s := range scored {
		id := s.Message.ID
		if id == "" || !s.Selected(snap.Threshold) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
