package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type ProviderConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"openrouter"`
	APIKey   string `env:"LLM_API_KEY"`
	BaseURL  string `env:"LLM_BASE_URL"`

	// Models per category
	ModelChat      string `env:"MODEL_CHAT" envDefault:"google/gemma-3-27b-it:free"`
	ModelFast      string `env:"MODEL_FAST" envDefault:"google/gemma-3-12b-it:free"`
	ModelEmbedding string `env:"MODEL_EMBEDDING" envDefault:"text-embedding-3-small"`
}

func LoadProviderConfig() (*ProviderConfig, error) {
	c := &ProviderConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse provider config: %w", err)
	}
	return c, nil
}

// ModelFor maps a model category to a concrete model name. Unknown
// categories fall back to the chat model.
func (c ProviderConfig) ModelFor(category string) string {
	switch category {
	case "fast":
		return c.ModelFast
	case "embedding":
		return c.ModelEmbedding
	default:
		return c.ModelChat
	}
}
