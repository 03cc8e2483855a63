package llm

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterModels lists popular OpenRouter models
var OpenRouterModels = []Model{
	{
		ID:             "google/gemini-2.0-flash-001",
		Name:           "Gemini 2.0 Flash",
		ContextWindow:  1000000,
		InputCost:      0.10,
		OutputCost:     0.40,
		SupportsImages: true,
	},
	{
		ID:             "anthropic/claude-3.5-sonnet",
		Name:           "Claude 3.5 Sonnet",
		ContextWindow:  200000,
		InputCost:      3.0,
		OutputCost:     15.0,
		SupportsImages: true,
	},
	{
		ID:             "openai/gpt-4o",
		Name:           "GPT-4o",
		ContextWindow:  128000,
		InputCost:      2.50,
		OutputCost:     10.0,
		SupportsImages: true,
	},
	{
		ID:             "deepseek/deepseek-r1",
		Name:           "DeepSeek R1",
		ContextWindow:  64000,
		InputCost:      0.55,
		OutputCost:     2.19,
		SupportsImages: false,
	},
	{
		ID:             "meta-llama/llama-4-maverick",
		Name:           "Llama 4 Maverick",
		ContextWindow:  1000000,
		InputCost:      0.25,
		OutputCost:     1.0,
		SupportsImages: true,
	},
}

// OpenRouterProvider implements the Provider interface for OpenRouter.
// OpenRouter uses an OpenAI-compatible API and provides access to many models.
type OpenRouterProvider struct {
	*OpenAICompatProvider
}

// NewOpenRouterProvider creates a new OpenRouter provider
func NewOpenRouterProvider(apiKey string, model string) (*OpenRouterProvider, error) {
	base, err := newOpenAICompatProvider(apiKey, model, openRouterBaseURL,
		ProviderOpenRouter, "OpenRouter", OpenRouterModels, "google/gemini-2.0-flash-001")
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAICompatProvider: base}, nil
}
