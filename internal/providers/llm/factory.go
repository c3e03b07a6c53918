package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/smartctx/internal/config"
	"github.com/sandevgo/smartctx/pkg/log"
)

// NewProvider creates the provider selected by cfg. The result serves both
// completions and embeddings.
func NewProvider(ctx context.Context, cfg *config.ProviderConfig) (*OpenAICompatible, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("chat_model", cfg.ModelChat).
		Str("fast_model", cfg.ModelFast).
		Str("embedding_model", cfg.ModelEmbedding).
		Msg("starting llm provider")

	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg.APIKey, cfg.ModelFor), nil
	case "openrouter":
		return NewOpenRouter(cfg.APIKey, cfg.ModelFor), nil
	case "ollama":
		return NewOllama(cfg.BaseURL, cfg.APIKey, cfg.ModelFor), nil
	case "custom":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("custom provider requires LLM_BASE_URL")
		}
		return NewCustomOpenAI(cfg.BaseURL, cfg.APIKey, cfg.ModelFor), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
