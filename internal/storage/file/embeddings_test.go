package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/service/embedcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"chat_abc", "chat_abc"},
		{"chat-123", "chat-123"},
		{"../../etc/passwd", fmt.Sprintf("etcpasswd-%016x", xxhash.Sum64String("../../etc/passwd"))},
		{"a b:c", fmt.Sprintf("abc-%016x", xxhash.Sum64String("a b:c"))},
		{"///", fmt.Sprintf("chat-%016x", xxhash.Sum64String("///"))},
		{"", fmt.Sprintf("chat-%016x", xxhash.Sum64String(""))},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeID(tt.in), tt.in)
	}
}

func TestSafeID_DistinctIDsDoNotCollide(t *testing.T) {
	ids := []string{"ab", "a/b", "a:b", "///", "...", ""}
	seen := make(map[string]string, len(ids))
	for _, id := range ids {
		safe := SafeID(id)
		assert.NotEmpty(t, safe)
		assert.False(t, strings.HasPrefix(safe, "."), id)
		if prev, dup := seen[safe]; dup {
			t.Fatalf("%q and %q share %q", prev, id, safe)
		}
		seen[safe] = id
	}
}

func TestEmbeddingStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), ".memory")
	store := NewEmbeddingStore(dir)

	data, err := store.LoadEmbeddings(ctx, "chat_abc")
	require.NoError(t, err, "missing document is an empty cache")
	assert.Empty(t, data)

	require.NoError(t, store.StoreEmbeddings(ctx, "chat_abc", map[string][]float32{"m1:aa": {1, 2}}))
	require.NoError(t, store.StoreEmbeddings(ctx, "chat_abc", map[string][]float32{"m2:bb": {3}}))

	data, err = store.LoadEmbeddings(ctx, "chat_abc")
	require.NoError(t, err)
	assert.Equal(t, map[string][]float32{"m1:aa": {1, 2}, "m2:bb": {3}}, data)

	_, err = os.Stat(filepath.Join(dir, "chat_abc.embeddings.json"))
	assert.NoError(t, err)
}

func TestEmbeddingStore_Corrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewEmbeddingStore(dir)

	require.NoError(t, os.WriteFile(store.Path("chat"), []byte("{not json"), 0644))

	_, err := store.LoadEmbeddings(ctx, "chat")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStore)

	// The cache starts cold and the next write replaces the corrupt file.
	cache := embedcache.Open(ctx, store, "chat")
	assert.Equal(t, 0, cache.Len())
	require.NoError(t, cache.Put(ctx, "m1", "hello", []float32{0.5}))

	reopened := embedcache.Open(ctx, store, "chat")
	got, ok := reopened.Get("m1", "hello")
	require.True(t, ok)
	assert.Equal(t, []float32{0.5}, got)
}
