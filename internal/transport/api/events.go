package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sandevgo/smartctx/internal/service/notify"
)

const keepAliveInterval = 25 * time.Second

type EventsHandler struct {
	hub *notify.Hub
}

func NewEventsHandler(hub *notify.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream writes events as server-sent events. ?chat_id= limits the
// stream to one chat.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	chatID := r.URL.Query().Get("chat_id")

	events, cancel := h.hub.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			if chatID != "" && eventChatID(ev) != chatID {
				continue
			}
			data, err := json.Marshal(ev.Payload)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
			flusher.Flush()
		}
	}
}

func eventChatID(ev notify.Event) string {
	raw, err := json.Marshal(ev.Payload)
	if err != nil {
		return ""
	}
	var p struct {
		ChatID string `json:"chat_id"`
	}
	_ = json.Unmarshal(raw, &p)
	return p.ChatID
}
