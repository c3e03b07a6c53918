package embedcache

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/smartctx/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	loadErr  error
	storeErr error
	stored   []map[string][]float32
}

func (f *failingStore) LoadEmbeddings(context.Context, string) (map[string][]float32, error) {
	return nil, f.loadErr
}

func (f *failingStore) StoreEmbeddings(_ context.Context, _ string, entries map[string][]float32) error {
	f.stored = append(f.stored, entries)
	return f.storeErr
}

func TestCache_GetPut(t *testing.T) {
	ctx := context.Background()
	c := Open(ctx, NewMemoryStore(), "chat_abc")

	_, ok := c.Get("msg1", "hello world")
	assert.False(t, ok, "empty cache must miss")

	require.NoError(t, c.Put(ctx, "msg1", "hello world", []float32{0.1, 0.2, 0.3}))

	got, ok := c.Get("msg1", "hello world")
	require.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got)

	_, ok = c.Get("msg1", "hello world, edited")
	assert.False(t, ok, "content edit must be a miss")

	_, ok = c.Get("msg2", "hello world")
	assert.False(t, ok, "same content under another id must be a miss")
}

func TestCache_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, Open(ctx, store, "chat_abc").Put(ctx, "msg1", "text", []float32{1, 2}))

	got, ok := Open(ctx, store, "chat_abc").Get("msg1", "text")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, got)

	_, ok = Open(ctx, store, "other_chat").Get("msg1", "text")
	assert.False(t, ok, "caches are scoped to one chat")
}

func TestCache_CorruptStoreStartsCold(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{loadErr: errors.New("unexpected end of JSON input")}

	c := Open(ctx, store, "chat")
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.Put(ctx, "m", "x", []float32{1}))
	assert.Equal(t, 1, c.Len())
}

func TestCache_WriteThrough(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{}
	c := Open(ctx, store, "chat")

	require.NoError(t, c.PutMany(ctx, []Entry{
		{MessageID: "a", Content: "one", Vector: []float32{1}},
		{MessageID: "b", Content: "two", Vector: []float32{2}},
	}))
	require.NoError(t, c.Put(ctx, "c", "three", []float32{3}))

	require.Len(t, store.stored, 2, "each mutation persists immediately")
	assert.Len(t, store.stored[0], 2)
	assert.Contains(t, store.stored[1], Key("c", "three"))
}

func TestCache_StoreFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	c := Open(ctx, &failingStore{storeErr: errors.New("disk full")}, "chat")

	err := c.Put(ctx, "m", "x", []float32{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStore)

	_, ok := c.Get("m", "x")
	assert.True(t, ok)
}

func TestCache_PutCopiesVector(t *testing.T) {
	ctx := context.Background()
	c := Open(ctx, NewMemoryStore(), "chat")

	vec := []float32{1, 2, 3}
	require.NoError(t, c.Put(ctx, "m", "x", vec))
	vec[0] = 99

	got, _ := c.Get("m", "x")
	assert.Equal(t, float32(1), got[0])
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint("abc"), Fingerprint("abc"))
	assert.NotEqual(t, Fingerprint("abc"), Fingerprint("abd"))
	assert.Len(t, Fingerprint(""), 16)
	assert.Equal(t, "m1:"+Fingerprint("hi"), Key("m1", "hi"))
}
