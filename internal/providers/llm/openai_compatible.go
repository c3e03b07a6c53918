package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/smartctx/internal/core"
	"golang.org/x/sync/errgroup"
)

const (
	defaultEmbedBatchSize   = 64
	defaultEmbedParallelism = 4
)

// OpenAICompatible talks to any /v1/chat/completions + /v1/embeddings API.
// The model is picked per call from the request category.
type OpenAICompatible struct {
	baseProvider
	modelFor     func(category string) string
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string

	embedBatchSize   int
	embedParallelism int
}

type OpenAICompatibleConfig struct {
	BaseURL      string
	APIKey       string
	ModelFor     func(category string) string
	AuthHeader   string // e.g., "Authorization"
	AuthPrefix   string // e.g., "Bearer "
	ExtraHeaders map[string]string
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	return &OpenAICompatible{
		baseProvider:     newBaseProvider(strings.TrimRight(cfg.BaseURL, "/"), cfg.APIKey),
		modelFor:         cfg.ModelFor,
		authHeader:       cfg.AuthHeader,
		authPrefix:       cfg.AuthPrefix,
		extraHeaders:     cfg.ExtraHeaders,
		embedBatchSize:   defaultEmbedBatchSize,
		embedParallelism: defaultEmbedParallelism,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (o *OpenAICompatible) Complete(ctx context.Context, messages []core.Message, category string, maxTokens int, temperature float64) (string, error) {
	msgs := make([]chatMessage, len(messages))
	for i, m := range messages {
		msgs[i] = chatMessage{Role: m.Role, Content: m.Content}
	}

	payload := map[string]any{
		"model":       o.modelFor(category),
		"messages":    msgs,
		"temperature": temperature,
	}
	if maxTokens > 0 {
		payload["max_tokens"] = maxTokens
	}

	var result struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := o.postJSON(ctx, "/v1/chat/completions", payload, o.headers(), &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}
	return result.Choices[0].Message.Content, nil
}

// Embed splits texts into batches and embeds them concurrently. The output
// keeps input order.
func (o *OpenAICompatible) Embed(ctx context.Context, texts []string, category string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	model := o.modelFor(category)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.embedParallelism)

	for start := 0; start < len(texts); start += o.embedBatchSize {
		end := min(start+o.embedBatchSize, len(texts))
		g.Go(func() error {
			vecs, err := o.embedBatch(gctx, model, texts[start:end])
			if err != nil {
				return err
			}
			copy(out[start:end], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *OpenAICompatible) embedBatch(ctx context.Context, model string, batch []string) ([][]float32, error) {
	payload := map[string]any{
		"model": model,
		"input": batch,
	}

	var result struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := o.postJSON(ctx, "/v1/embeddings", payload, o.headers(), &result); err != nil {
		return nil, err
	}
	if len(result.Data) != len(batch) {
		return nil, fmt.Errorf("got %d embeddings for %d inputs", len(result.Data), len(batch))
	}

	vecs := make([][]float32, len(batch))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(batch) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vecs[d.Index] = d.Embedding
	}
	return vecs, nil
}

func (o *OpenAICompatible) headers() map[string]string {
	headers := make(map[string]string, len(o.extraHeaders)+1)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}
	return headers
}
