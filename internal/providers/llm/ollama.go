package llm

const defaultOllamaURL = "http://localhost:11434"

// NewOllama uses Ollama's OpenAI compatible endpoints.
func NewOllama(baseURL, apiKey string, modelFor func(string) string) *OpenAICompatible {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	return NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		ModelFor:   modelFor,
		AuthHeader: "Authorization",
		AuthPrefix: "Bearer ",
	})
}
