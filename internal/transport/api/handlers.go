package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sandevgo/smartctx/internal/service/command"
	"github.com/sandevgo/smartctx/pkg/log"
)

const maxBodyBytes = 1 << 20

type ChatHandler struct {
	dispatcher *command.Dispatcher
}

func NewChatHandler(dispatcher *command.Dispatcher) *ChatHandler {
	return &ChatHandler{dispatcher: dispatcher}
}

func (h *ChatHandler) GetTopics(w http.ResponseWriter, r *http.Request) {
	resp, err := h.dispatcher.GetTopics(r.Context(), command.GetTopicsRequest{ChatID: chi.URLParam(r, "id")})
	if err != nil {
		writeCommandError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req command.SetFilterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ChatID = chi.URLParam(r, "id")

	resp, err := h.dispatcher.SetFilter(r.Context(), req)
	if err != nil {
		writeCommandError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) SetSimilarityMode(w http.ResponseWriter, r *http.Request) {
	var req command.SetSimilarityModeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ChatID = chi.URLParam(r, "id")

	resp, err := h.dispatcher.SetSimilarityMode(r.Context(), req)
	if err != nil {
		writeCommandError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}

func writeCommandError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, command.ErrInvalidRequest) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.FromCtx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("command failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
