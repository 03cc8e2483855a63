package auth

import "github.com/yolodolo42/edumind/internal/llm"

var keyURLs = map[llm.ProviderID]string{
	llm.ProviderGemini:     "aistudio.google.com/apikey",
	llm.ProviderOpenAI:     "platform.openai.com/api-keys",
	llm.ProviderAnthropic:  "console.anthropic.com",
	llm.ProviderOpenRouter: "openrouter.ai/settings/keys",
}

// KeyHint tells the user where to get an API key for a provider.
func KeyHint(providerID llm.ProviderID) string {
	if url, ok := keyURLs[providerID]; ok {
		return "Get your API key from " + url
	}
	return "Enter your API key"
}

// ProviderNotes lists what each provider can do in edumind.
func ProviderNotes(providerID llm.ProviderID) string {
	switch providerID {
	case llm.ProviderGemini:
		return "default; images, JSON schemas, cited sources"
	case llm.ProviderOpenAI:
		return "images, JSON mode, read-aloud"
	case llm.ProviderAnthropic:
		return "images on Sonnet models"
	case llm.ProviderOpenRouter:
		return "many models behind one key"
	default:
		return ""
	}
}

// MaskKey shows only the last four characters of a key.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
