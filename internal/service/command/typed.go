package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/service/session"
)

var ErrInvalidRequest = errors.New("invalid request")

// Kind enumerates the typed commands. Every transport maps its input onto
// one of these.
type Kind int

const (
	KindSetFilter Kind = iota + 1
	KindGetTopics
	KindSetSimilarityMode
)

func (k Kind) String() string {
	switch k {
	case KindSetFilter:
		return "set_filter"
	case KindGetTopics:
		return "get_topics"
	case KindSetSimilarityMode:
		return "set_similarity_mode"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Request is implemented only by the request types of this package.
type Request interface {
	Kind() Kind
	Validate() error
	request()
}

type SetFilterRequest struct {
	ChatID string   `json:"chat_id"`
	Topics []string `json:"topics"`
}

type GetTopicsRequest struct {
	ChatID string `json:"chat_id"`
}

type SetSimilarityModeRequest struct {
	ChatID  string `json:"chat_id"`
	Enabled *bool  `json:"enabled"`
}

func (SetFilterRequest) Kind() Kind         { return KindSetFilter }
func (GetTopicsRequest) Kind() Kind         { return KindGetTopics }
func (SetSimilarityModeRequest) Kind() Kind { return KindSetSimilarityMode }

func (SetFilterRequest) request()         {}
func (GetTopicsRequest) request()         {}
func (SetSimilarityModeRequest) request() {}

func (r SetFilterRequest) Validate() error {
	return validateChatID(r.ChatID)
}

func (r GetTopicsRequest) Validate() error {
	return validateChatID(r.ChatID)
}

func (r SetSimilarityModeRequest) Validate() error {
	if err := validateChatID(r.ChatID); err != nil {
		return err
	}
	if r.Enabled == nil {
		return fmt.Errorf("%w: enabled is required", ErrInvalidRequest)
	}
	return nil
}

func validateChatID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: chat_id is required", ErrInvalidRequest)
	}
	return nil
}

type SetFilterResponse struct {
	ActiveTopics []string `json:"active_topics"`
}

type GetTopicsResponse struct {
	Topics        []core.Topic `json:"topics"`
	TotalMessages int          `json:"total_messages"`
}

type SetSimilarityModeResponse struct {
	SimilaritySearchEnabled bool     `json:"similarity_search_enabled"`
	ActiveTopics            []string `json:"active_topics"`
}

// Dispatcher executes typed requests against the chat sessions.
type Dispatcher struct {
	sessions *session.Manager
}

func NewDispatcher(sessions *session.Manager) *Dispatcher {
	return &Dispatcher{sessions: sessions}
}

// Dispatch validates req and runs it. The result is one of the response
// types above.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (any, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	switch r := req.(type) {
	case SetFilterRequest:
		return d.setFilter(ctx, r), nil
	case GetTopicsRequest:
		return d.getTopics(ctx, r)
	case SetSimilarityModeRequest:
		return d.setSimilarityMode(ctx, r), nil
	default:
		return nil, fmt.Errorf("%w: unsupported command %s", ErrInvalidRequest, req.Kind())
	}
}

func (d *Dispatcher) SetFilter(ctx context.Context, req SetFilterRequest) (SetFilterResponse, error) {
	if err := req.Validate(); err != nil {
		return SetFilterResponse{}, err
	}
	return d.setFilter(ctx, req), nil
}

func (d *Dispatcher) GetTopics(ctx context.Context, req GetTopicsRequest) (GetTopicsResponse, error) {
	if err := req.Validate(); err != nil {
		return GetTopicsResponse{}, err
	}
	return d.getTopics(ctx, req)
}

func (d *Dispatcher) SetSimilarityMode(ctx context.Context, req SetSimilarityModeRequest) (SetSimilarityModeResponse, error) {
	if err := req.Validate(); err != nil {
		return SetSimilarityModeResponse{}, err
	}
	return d.setSimilarityMode(ctx, req), nil
}

func (d *Dispatcher) setFilter(ctx context.Context, req SetFilterRequest) SetFilterResponse {
	active := d.sessions.Get(ctx, req.ChatID).SetFilter(ctx, req.Topics)
	return SetFilterResponse{ActiveTopics: active}
}

func (d *Dispatcher) getTopics(ctx context.Context, req GetTopicsRequest) (GetTopicsResponse, error) {
	topics, total, err := d.sessions.Get(ctx, req.ChatID).GetTopics(ctx)
	if err != nil {
		return GetTopicsResponse{}, err
	}
	return GetTopicsResponse{Topics: topics, TotalMessages: total}, nil
}

func (d *Dispatcher) setSimilarityMode(ctx context.Context, req SetSimilarityModeRequest) SetSimilarityModeResponse {
	snap := d.sessions.Get(ctx, req.ChatID).SetSimilarityMode(ctx, *req.Enabled)
	return SetSimilarityModeResponse{
		SimilaritySearchEnabled: snap.SimilarityEnabled,
		ActiveTopics:            snap.ActiveTopics,
	}
}
