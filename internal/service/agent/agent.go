package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sandevgo/smartctx/internal/config"
	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/internal/service/session"
	"github.com/sandevgo/smartctx/pkg/log"
)

type Agent struct {
	cfg       *config.AppConfig
	completer core.Completer
	store     core.ChatStore
	sessions  *session.Manager
	prompter  *SysPrompt
}

func NewAgent(
	cfg *config.AppConfig,
	completer core.Completer,
	store core.ChatStore,
	sessions *session.Manager,
	prompter *SysPrompt,
) *Agent {
	return &Agent{
		cfg:       cfg,
		completer: completer,
		store:     store,
		sessions:  sessions,
		prompter:  prompter,
	}
}

// Run handles one user turn: the input is stored, history is filtered for
// the chat's active topics, and the reply is stored before topic extraction
// is scheduled.
func (a *Agent) Run(ctx context.Context, chatID string, input string, onUpdate func(core.Message)) (string, error) {
	logger := log.FromCtx(ctx).With().Str("chat_id", chatID).Logger()

	userMsg := core.Message{ID: uuid.NewString(), Role: core.RoleUser, Content: input}
	if err := a.store.AddMessage(ctx, chatID, userMsg); err != nil {
		return "", fmt.Errorf("failed to save user message: %w", err)
	}

	chat, err := a.store.LoadChat(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch history: %w", err)
	}

	s := a.sessions.Get(ctx, chatID)
	history := s.PrepareContext(ctx, chat.Messages)
	logger.Debug().
		Int("history", len(chat.Messages)).
		Int("context", len(history)).
		Str("filter", s.Snapshot().Mode().String()).
		Msg("context prepared")

	messages := append(a.prompter.Build(), history...)

	content, err := a.completer.Complete(ctx, messages, a.cfg.ChatCategory, a.cfg.ChatMaxTokens, a.cfg.ChatTemperature)
	if err != nil {
		return "", fmt.Errorf("ai chat error: %w", err)
	}

	reply := core.Message{ID: uuid.NewString(), Role: core.RoleAssistant, Content: content}
	if err := a.store.AddMessage(ctx, chatID, reply); err != nil {
		logger.Error().Err(err).Msg("failed to save assistant message")
	}

	if onUpdate != nil {
		onUpdate(reply)
	}

	s.OnTurnCompleted(ctx, reply)
	return content, nil
}
