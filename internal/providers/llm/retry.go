package llm

import (
	"context"
	"errors"

	"github.com/sandevgo/smartctx/internal/core"
	"github.com/sandevgo/smartctx/pkg/retry"
)

// RetryingCompleter repeats completions that failed with a retryable
// status or a transport error.
type RetryingCompleter struct {
	next    core.Completer
	retrier *retry.Retrier
}

func NewRetryingCompleter(next core.Completer, retrier *retry.Retrier) *RetryingCompleter {
	return &RetryingCompleter{
		next:    next,
		retrier: retrier,
	}
}

func (r *RetryingCompleter) Complete(ctx context.Context, messages []core.Message, category string, maxTokens int, temperature float64) (string, error) {
	var reply string
	err := r.retrier.Do(ctx, func() error {
		var err error
		reply, err = r.next.Complete(ctx, messages, category, maxTokens, temperature)
		if err != nil && !IsRetryable(err) {
			return retry.Permanent(err)
		}
		return err
	})
	return reply, err
}

// IsRetryable is false for 4xx replies other than 429.
func IsRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return !errors.Is(err, context.Canceled)
}
