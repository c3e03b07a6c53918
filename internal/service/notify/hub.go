package notify

import (
	"context"
	"sync"
)

const defaultSubscriberBuffer = 64

// Hub delivers events to in-process subscribers such as SSE streams.
// Slow subscribers lose events instead of blocking the publisher.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

func (h *Hub) Publish(ctx context.Context, ev Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, defaultSubscriberBuffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}
