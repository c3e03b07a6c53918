package session

import (
	"context"
	"sync"
	"testing"

	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/service/filter"
	"github.com/sandevgo/smartctx/internal/service/topics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history() []core.Message {
	return []core.Message{
		{ID: "m1", Role: core.RoleUser, Content: "How does async work?"},
		{ID: "m2", Role: core.RoleUser, Content: "Capital of France?"},
	}
}

func TestSession_PrepareContext(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx, nil)
	s := f.manager.Get(ctx, "chat")

	assert.Equal(t, history(), s.PrepareContext(ctx, history()), "no active topics is passthrough")

	s.SetFilter(ctx, []string{"Async"})
	assert.Equal(t, []string{"m1"}, ids(s.PrepareContext(ctx, history())))
}

func TestSession_PrepareContextKeepsSticky(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx, nil)
	require.NoError(t, f.store.SaveTopics(ctx, "chat", []core.Topic{
		{Label: topics.StickyLabel, Count: 1, Sticky: true, MessageIDs: []string{"sticky1"}},
	}))

	s := f.manager.Get(ctx, "chat")
	s.SetFilter(ctx, []string{"Async"})

	in := append([]core.Message{{ID: "sticky1", Role: core.RoleUser, Content: "be concise"}}, history()...)
	assert.Equal(t, []string{"sticky1", "m1"}, ids(s.PrepareContext(ctx, in)))
}

func TestSession_DisableSimilarity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx, nil)
	s := f.manager.Get(ctx, "chat")

	s.SetFilter(ctx, []string{"X"})
	require.Equal(t, filter.Active, s.Snapshot().Mode())

	snap := s.SetSimilarityMode(ctx, false)
	s.Wait()

	assert.Empty(t, snap.ActiveTopics)
	assert.Equal(t, filter.Inactive, snap.Mode())
	assert.Equal(t, history(), s.PrepareContext(ctx, history()))

	changes := f.notifier.named(core.EventFilterChanged)
	require.Len(t, changes, 2)
	assert.Equal(t, core.FilterChanged{ChatID: "chat", ActiveTopics: []string{}}, changes[1])
}

func TestSession_SetFilterEmitsHighlights(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx, nil)
	f.seed("chat", history()...)
	s := f.manager.Get(ctx, "chat")

	active := s.SetFilter(ctx, []string{" Async ", ""})
	s.Wait()

	assert.Equal(t, []string{"Async"}, active)
	assert.Equal(t, []any{core.FilterChanged{ChatID: "chat", ActiveTopics: []string{"Async"}}},
		f.notifier.named(core.EventFilterChanged))

	highlights := f.notifier.named(core.EventHighlightApplied)
	require.Len(t, highlights, 1)
	assert.Equal(t, core.HighlightApplied{ChatID: "chat", MessageIDs: []string{"m1"}}, highlights[0])

	s.SetFilter(ctx, nil)
	s.Wait()
	highlights = f.notifier.named(core.EventHighlightApplied)
	require.Len(t, highlights, 2)
	assert.Equal(t, core.HighlightApplied{ChatID: "chat", MessageIDs: []string{}}, highlights[1])
}

func TestSession_OnTurnCompleted(t *testing.T) {
	ctx := context.Background()
	calls := 0
	f := newFixture(ctx, funcCompleter(func(context.Context, []core.Message, string, int, float64) (string, error) {
		calls++
		return `{"topics":[{"label":"Async","count":1}],"sticky_message_ids":["m2"]}`, nil
	}))
	f.seed("chat", history()...)
	s := f.manager.Get(ctx, "chat")

	s.OnTurnCompleted(ctx, core.Message{Role: core.RoleAssistant, Content: "   "})
	f.manager.Wait()
	assert.Zero(t, calls, "blank replies do not trigger extraction")

	s.OnTurnCompleted(ctx, core.Message{Role: core.RoleAssistant, Content: "It uses an event loop."})
	f.manager.Wait()
	assert.Equal(t, 1, calls)

	got, total, err := s.GetTopics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []core.Topic{
		{Label: "Async", Count: 1},
		{Label: topics.StickyLabel, Count: 1, Sticky: true, MessageIDs: []string{"m2"}},
	}, got)

	updates := f.notifier.named(core.EventTopicsUpdated)
	require.Len(t, updates, 1)
	assert.Equal(t, 2, updates[0].(core.TopicsUpdated).TotalMessages)
}

func TestSession_GetTopicsEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx, nil)

	got, total, err := f.manager.Get(ctx, "fresh").GetTopics(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Topic{}, got)
	assert.Zero(t, total)
}

func TestSession_CloseDiscardsExtraction(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	f := newFixture(ctx, funcCompleter(func(context.Context, []core.Message, string, int, float64) (string, error) {
		close(started)
		<-release
		return `{"topics":[{"label":"Late","count":1}]}`, nil
	}))
	f.seed("chat", history()...)
	s := f.manager.Get(ctx, "chat")

	s.OnTurnCompleted(ctx, core.Message{Role: core.RoleAssistant, Content: "done"})
	<-started
	f.manager.Close("chat")
	close(release)
	f.manager.Wait()

	chat, err := f.store.LoadChat(ctx, "chat")
	require.NoError(t, err)
	assert.Empty(t, chat.Topics)
	assert.Empty(t, f.notifier.named(core.EventTopicsUpdated))
}

func TestSession_CloseDuringSetFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx, nil)
	f.seed("chat", history()...)
	s := f.manager.Get(ctx, "chat")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.SetFilter(ctx, []string{"Async"})
		}()
	}
	s.Close()
	wg.Wait()
	s.Close()

	before := len(f.notifier.named(core.EventHighlightApplied))
	s.SetFilter(ctx, []string{"Async"})
	s.Wait()
	assert.Len(t, f.notifier.named(core.EventHighlightApplied), before, "closed session starts no refresh")
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ctx, nil)

	a := f.manager.Get(ctx, "a")
	b := f.manager.Get(ctx, "b")
	assert.Same(t, a, f.manager.Get(ctx, "a"))

	a.SetFilter(ctx, []string{"X"})
	assert.Equal(t, []string{"X"}, a.Snapshot().ActiveTopics)
	assert.Empty(t, b.Snapshot().ActiveTopics)

	require.NoError(t, f.manager.Shutdown(ctx))
	assert.NotSame(t, a, f.manager.Get(ctx, "a"), "shutdown drops sessions")
}
