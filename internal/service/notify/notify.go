// Package notify fans out domain events to the configured sinks.
package notify

import (
	"context"
	"time"

	"github.com/sandevgo/smartctx/pkg/log"
)

type Event struct {
	Name    string    `json:"event"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// Notifier implements core.Notifier. Emit never fails; sink errors are
// logged.
type Notifier struct {
	sinks []Sink
	now   func() time.Time
}

func NewNotifier(sinks ...Sink) *Notifier {
	return &Notifier{
		sinks: sinks,
		now:   time.Now,
	}
}

func (n *Notifier) Emit(ctx context.Context, event string, payload any) {
	ev := Event{
		Name:    event,
		Payload: payload,
		At:      n.now().UTC(),
	}

	for _, s := range n.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			log.FromCtx(ctx).Warn().
				Err(err).
				Str("event", event).
				Msg("failed to publish event")
		}
	}
}

// LogSink writes every event to the context logger.
type LogSink struct{}

func (LogSink) Publish(ctx context.Context, ev Event) error {
	log.FromCtx(ctx).Debug().
		Str("component", "notify").
		Str("event", ev.Name).
		Interface("payload", ev.Payload).
		Msg("event emitted")
	return nil
}
