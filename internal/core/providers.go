package core

import "context"

// Completer produces a single text completion for the given messages.
// Category selects the model class ("fast", "chat", ...).
type Completer interface {
	Complete(ctx context.Context, messages []Message, category string, maxTokens int, temperature float64) (string, error)
}

// Embedder returns one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string, category string) ([][]float32, error)
}
