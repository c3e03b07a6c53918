package redis

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/pkg/log"
)

const keyPrefix = "smartctx:embeddings:"

// EmbeddingStore keeps one hash per chat: field = cache key, value =
// base64 of the little-endian float32 vector.
type EmbeddingStore struct {
	rdb goredis.UniversalClient
}

func NewEmbeddingStore(rdb goredis.UniversalClient) *EmbeddingStore {
	return &EmbeddingStore{rdb: rdb}
}

func Key(chatID string) string {
	return keyPrefix + chatID
}

func (s *EmbeddingStore) LoadEmbeddings(ctx context.Context, chatID string) (map[string][]float32, error) {
	fields, err := s.rdb.HGetAll(ctx, Key(chatID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: redis hgetall: %w", core.ErrStore, err)
	}

	out := make(map[string][]float32, len(fields))
	for k, v := range fields {
		vec, err := decodeVector(v)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("key", k).Msg("skipping corrupt embedding field")
			continue
		}
		out[k] = vec
	}
	return out, nil
}

func (s *EmbeddingStore) StoreEmbeddings(ctx context.Context, chatID string, entries map[string][]float32) error {
	if len(entries) == 0 {
		return nil
	}

	values := make(map[string]any, len(entries))
	for k, vec := range entries {
		values[k] = encodeVector(vec)
	}

	if err := s.rdb.HSet(ctx, Key(chatID), values).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func encodeVector(vec []float32) string {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func decodeVector(s string) ([]float32, error) {
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode vector: %w", err)
	}
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("vector length %d is not a multiple of 4", len(buf))
	}

	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec, nil
}
