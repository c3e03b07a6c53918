package filter

import (
	"context"
	"errors"
	"sync"

	"github.com/sandevgo/smartctx/internal/core"
)

// fakeEmbedder returns fixed vectors per text and records every batch.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	block   bool
	calls   [][]string
}

func newFakeEmbedder(vectors map[string][]float32) *fakeEmbedder {
	return &fakeEmbedder{vectors: vectors}
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string, category string) ([][]float32, error) {
	f.mu.Lock()
	batch := make([]string, len(texts))
	copy(batch, texts)
	f.calls = append(f.calls, batch)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}

	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, ok := f.vectors[t]
		if !ok {
			return nil, errors.New("no vector for " + t)
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func ids(msgs []core.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}
