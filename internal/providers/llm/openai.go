package llm

// NewOpenAI creates a provider for api.openai.com.
func NewOpenAI(apiKey string, modelFor func(string) string) *OpenAICompatible {
	return NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:    "https://api.openai.com",
		APIKey:     apiKey,
		ModelFor:   modelFor,
		AuthHeader: "Authorization",
		AuthPrefix: "Bearer ",
	})
}
