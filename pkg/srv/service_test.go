package srv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingService struct {
	name    string
	mu      *sync.Mutex
	order   *[]string
	started chan struct{}
	err     error
}

func (s *recordingService) Start(ctx context.Context) error {
	close(s.started)
	return nil
}

func (s *recordingService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.order = append(*s.order, s.name)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return s.err
}

func TestStartAndShutdownServices(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	a := &recordingService{name: "a", mu: &mu, order: &order, started: make(chan struct{}), err: errors.New("ignored")}
	b := &recordingService{name: "b", mu: &mu, order: &order, started: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	services := []Service{a, b}
	StartServices(ctx, services)

	for _, s := range []*recordingService{a, b} {
		select {
		case <-s.started:
		case <-time.After(time.Second):
			t.Fatalf("service %s not started", s.name)
		}
	}

	cancel()
	ShutdownServices(ctx, services)

	assert.Equal(t, []string{"a", "b"}, order)
}

func TestStop_FreshDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got error
	svc := &funcService{shutdown: func(ctx context.Context) error {
		got = ctx.Err()
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	}}

	Stop(ctx, []Service{svc}, time.Second)
	assert.NoError(t, got)
}

func TestNewCleanup(t *testing.T) {
	called := false
	s := NewCleanup(func() error { called = true; return nil })

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Shutdown(context.Background()))
	assert.True(t, called)

	assert.NoError(t, NewCleanup(nil).Shutdown(context.Background()))
}

type funcService struct {
	shutdown func(ctx context.Context) error
}

func (f *funcService) Start(context.Context) error { return nil }

func (f *funcService) Shutdown(ctx context.Context) error { return f.shutdown(ctx) }
