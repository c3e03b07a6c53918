package llm

func NewCustomOpenAI(baseURL, apiKey string, modelFor func(string) string) *OpenAICompatible {
	return NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		ModelFor:   modelFor,
		AuthHeader: "Authorization",
		AuthPrefix: "Bearer ",
	})
}
