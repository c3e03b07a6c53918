// Package topics labels a conversation with topics and standing
// instructions by asking a fast model, and stores the result as the chat's
// topic set.
package topics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/smartctx/internal/config"
	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/pkg/log"
	"github.com/sandevgo/smartctx/pkg/retry"
)

const (
	extractionMaxTokens   = 1024
	extractionTemperature = 0.2
	defaultTimeout        = 60 * time.Second
	defaultMessageTokens  = 200
)

type Extractor struct {
	store     core.ChatStore
	completer core.Completer
	notifier  core.Notifier

	category      string
	messageTokens int
	timeout       time.Duration

	retrier  *retry.Retrier
	truncate func(string, int) string
	versions *versions
	wg       sync.WaitGroup
}

func NewExtractor(cfg *config.AppConfig, store core.ChatStore, completer core.Completer, notifier core.Notifier) *Extractor {
	e := &Extractor{
		store:         store,
		completer:     completer,
		notifier:      notifier,
		category:      cfg.ExtractionCategory,
		messageTokens: cfg.ExtractionMaxMessageTokens,
		timeout:       cfg.ExtractionTimeout,
		retrier: retry.NewRetrier(&retry.Config{
			MaxRetries:    2,
			BackoffFactor: 2,
			InitialDelay:  500 * time.Millisecond,
			MaxDelay:      5 * time.Second,
			Jitter:        100 * time.Millisecond,
		}),
		truncate: truncateTokens,
		versions: newVersions(),
	}
	if e.timeout <= 0 {
		e.timeout = defaultTimeout
	}
	if e.messageTokens <= 0 {
		e.messageTokens = defaultMessageTokens
	}
	return e
}

// Trigger starts an extraction run in the background. The run is bound to
// ctx: once ctx is done its result is discarded.
func (e *Extractor) Trigger(ctx context.Context, chatID string) {
	ver := e.versions.next(chatID)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.run(ctx, chatID, ver); err != nil {
			log.FromCtx(ctx).Error().
				Err(err).
				Str("component", "topic_extractor").
				Str("chat_id", chatID).
				Msg("topic extraction failed, keeping previous topics")
		}
	}()
}

// Run extracts and stores topics synchronously.
func (e *Extractor) Run(ctx context.Context, chatID string) error {
	return e.run(ctx, chatID, e.versions.next(chatID))
}

// Wait blocks until every triggered run has finished.
func (e *Extractor) Wait() {
	e.wg.Wait()
}

func (e *Extractor) run(ctx context.Context, chatID string, ver uint64) error {
	logger := log.FromCtx(ctx).With().
		Str("component", "topic_extractor").
		Str("chat_id", chatID).
		Str("run_id", uuid.NewString()).
		Uint64("version", ver).
		Logger()

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	chat, err := e.store.LoadChat(runCtx, chatID)
	if err != nil {
		return fmt.Errorf("%w: load chat: %w", core.ErrStore, err)
	}
	if len(chat.Messages) == 0 {
		logger.Debug().Msg("empty transcript, nothing to extract")
		return nil
	}

	topics, err := e.Extract(runCtx, chat.Messages)
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		logger.Debug().Msg("session closed, extraction result discarded")
		return nil
	}

	committed, err := e.versions.commit(chatID, ver, func() error {
		return e.store.SaveTopics(runCtx, chatID, topics)
	})
	if err != nil {
		return fmt.Errorf("%w: save topics: %w", core.ErrStore, err)
	}
	if !committed {
		logger.Debug().Msg("newer extraction already committed, result discarded")
		return nil
	}

	logger.Info().Int("topics", len(topics)).Msg("topics updated")
	e.notifier.Emit(ctx, core.EventTopicsUpdated, core.TopicsUpdated{
		ChatID:        chatID,
		Topics:        topics,
		TotalMessages: len(chat.Messages),
	})
	return nil
}

// Extract asks the model for the topic set of messages. It does not touch
// the store.
func (e *Extractor) Extract(ctx context.Context, messages []core.Message) ([]core.Topic, error) {
	known := make(map[string]struct{}, len(messages))
	for _, m := range messages {
		if m.ID != "" {
			known[m.ID] = struct{}{}
		}
	}

	prompt := []core.Message{
		{Role: core.RoleSystem, Content: systemPrompt},
		{Role: core.RoleUser, Content: buildExtractionPrompt(formatTranscript(messages, e.messageTokens, e.truncate))},
	}

	var reply string
	err := e.retrier.Do(ctx, func() error {
		var err error
		reply, err = e.completer.Complete(ctx, prompt, e.category, extractionMaxTokens, extractionTemperature)
		if err != nil && !retryable(err) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: extraction completion: %w", core.ErrProvider, err)
	}

	return parseExtraction(reply, known)
}

// retryable is false for errors that report themselves as final, such as
// 4xx provider replies other than 429.
func retryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return !errors.Is(err, context.Canceled)
}
