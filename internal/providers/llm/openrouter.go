package llm

import "github.com/sandevgo/smartctx/internal/core"

func NewOpenRouter(apiKey string, modelFor func(string) string) *OpenAICompatible {
	return NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:    "https://openrouter.ai/api",
		APIKey:     apiKey,
		ModelFor:   modelFor,
		AuthHeader: "Authorization",
		AuthPrefix: "Bearer ",
		ExtraHeaders: map[string]string{
			"HTTP-Referer": core.AppRepositoryURL,
			"X-Title":      core.AppName,
		},
	})
}
