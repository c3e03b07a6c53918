package filter

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/service/embedcache"
	"github.com/sandevgo/smartctx/pkg/log"
)

// Cosine returns dot(a,b)/(|a|*|b|), or 0 when either norm is zero or the
// lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

type Scored struct {
	Message core.Message
	Score   float64
	Sticky  bool
}

// Selected reports whether the message passes the filter at threshold.
func (s Scored) Selected(threshold float64) bool {
	return s.Sticky || s.Score >= threshold
}

// Scorer embeds topic labels and transcript messages and scores each
// message by its best cosine similarity against the topics. It is shared by
// the context filter and the highlight projector.
type Scorer struct {
	embedder core.Embedder
	category string
}

func NewScorer(embedder core.Embedder, category string) *Scorer {
	return &Scorer{
		embedder: embedder,
		category: category,
	}
}

// Score returns one entry per history message, in history order. Topic
// labels are embedded fresh on every call; message embeddings go through
// the cache.
func (s *Scorer) Score(
	ctx context.Context,
	cache *embedcache.Cache,
	history []core.Message,
	labels []string,
	sticky map[string]struct{},
) ([]Scored, error) {
	logger := log.FromCtx(ctx)

	topicVecs, err := s.embedTopics(ctx, labels)
	if err != nil {
		return nil, err
	}

	msgVecs, err := s.embedMessages(ctx, cache, history)
	if err != nil {
		return nil, err
	}

	scored := make([]Scored, len(history))
	for i, msg := range history {
		_, isSticky := sticky[msg.ID]
		scored[i] = Scored{
			Message: msg,
			Sticky:  msg.ID != "" && isSticky,
			Score:   maxSimilarity(msgVecs[i], topicVecs),
		}
	}

	logger.Debug().
		Int("messages", len(history)).
		Int("topics", len(labels)).
		Msg("scored transcript")
	return scored, nil
}

func (s *Scorer) embedTopics(ctx context.Context, labels []string) ([][]float32, error) {
	sorted := make([]string, len(labels))
	copy(sorted, labels)
	sort.Strings(sorted)

	vecs, err := s.embedder.Embed(ctx, sorted, s.category)
	if err != nil {
		return nil, fmt.Errorf("%w: embed topics: %w", core.ErrProvider, err)
	}
	if len(vecs) != len(sorted) {
		return nil, fmt.Errorf("%w: embed topics: got %d vectors for %d labels", core.ErrProvider, len(vecs), len(sorted))
	}
	return vecs, nil
}

// embedMessages returns a vector per message (nil for empty content). All
// cache misses are embedded in one batch and written through.
func (s *Scorer) embedMessages(ctx context.Context, cache *embedcache.Cache, history []core.Message) ([][]float32, error) {
	vecs := make([][]float32, len(history))

	var missIdx []int
	var missText []string
	for i, msg := range history {
		if msg.Content == "" {
			continue
		}
		if msg.ID != "" {
			if vec, ok := cache.Get(msg.ID, msg.Content); ok {
				vecs[i] = vec
				continue
			}
		}
		missIdx = append(missIdx, i)
		missText = append(missText, msg.Content)
	}

	if len(missText) == 0 {
		return vecs, nil
	}

	embedded, err := s.embedder.Embed(ctx, missText, s.category)
	if err != nil {
		return nil, fmt.Errorf("%w: embed messages: %w", core.ErrProvider, err)
	}
	if len(embedded) != len(missText) {
		return nil, fmt.Errorf("%w: embed messages: got %d vectors for %d messages", core.ErrProvider, len(embedded), len(missText))
	}

	entries := make([]embedcache.Entry, 0, len(missIdx))
	for j, i := range missIdx {
		vecs[i] = embedded[j]
		if history[i].ID == "" {
			continue
		}
		entries = append(entries, embedcache.Entry{
			MessageID: history[i].ID,
			Content:   history[i].Content,
			Vector:    embedded[j],
		})
	}

	if err := cache.PutMany(ctx, entries); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to persist message embeddings")
	}
	return vecs, nil
}

func maxSimilarity(vec []float32, topics [][]float32) float64 {
	if vec == nil || len(topics) == 0 {
		return 0
	}
	best := math.Inf(-1)
	for _, t := range topics {
		if sim := Cosine(vec, t); sim > best {
			best = sim
		}
	}
	return best
}
