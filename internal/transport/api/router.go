package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sandevgo/smartctx/internal/service/command"
	"github.com/sandevgo/smartctx/internal/service/notify"
)

// NewRouter exposes the typed commands and the event stream. hub may be
// nil, in which case /events is not mounted.
func NewRouter(ctx context.Context, dispatcher *command.Dispatcher, hub *notify.Hub) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger(ctx))
	r.Use(Recovery(ctx))

	chatH := NewChatHandler(dispatcher)

	r.Get("/health", Health)

	r.Route("/chats/{id}", func(r chi.Router) {
		r.Get("/topics", chatH.GetTopics)
		r.Put("/filter", chatH.SetFilter)
		r.Put("/similarity", chatH.SetSimilarityMode)
	})

	if hub != nil {
		r.Get("/events", NewEventsHandler(hub).Stream)
	}

	return r
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
