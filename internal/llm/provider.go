package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ProviderID represents a unique provider identifier
type ProviderID string

const (
	ProviderGemini     ProviderID = "gemini"
	ProviderOpenAI     ProviderID = "openai"
	ProviderAnthropic  ProviderID = "anthropic"
	ProviderOpenRouter ProviderID = "openrouter"
)

var (
	// ErrNoSpeech is returned when a speech request produced no audio.
	ErrNoSpeech = errors.New("no audio generated")

	// ErrSpeechUnsupported is returned by providers that cannot synthesize speech.
	ErrSpeechUnsupported = errors.New("provider does not support text-to-speech")
)

// Provider is the interface all LLM providers must implement
type Provider interface {
	// ID returns the unique provider identifier
	ID() ProviderID

	// Name returns the human-readable provider name
	Name() string

	// Chat sends a request and returns the response
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Models returns available models for this provider
	Models() []Model

	// DefaultModel returns the default model for this provider
	DefaultModel() string

	// SetModel switches the active model. Returns error if model ID is not
	// in the provider's supported model list.
	SetModel(modelID string) error
}

// SpeechProvider is implemented by providers with a text-to-speech endpoint.
type SpeechProvider interface {
	Speak(ctx context.Context, req *SpeechRequest) (*SpeechResponse, error)
}

// Model represents an available model
type Model struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ContextWindow  int     `json:"context_window"`
	InputCost      float64 `json:"input_cost"`  // per 1M tokens
	OutputCost     float64 `json:"output_cost"` // per 1M tokens
	SupportsImages bool    `json:"supports_images"`
}

// Message represents a conversation message
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Image is an inline image attached to the last user message.
type Image struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// DataURL returns the image as a base64 data URL.
func (i Image) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MIMEType, base64.StdEncoding.EncodeToString(i.Data))
}

// ChatRequest is a provider-agnostic chat request
type ChatRequest struct {
	SystemPrompt string    `json:"system_prompt"`
	Messages     []Message `json:"messages"`
	Images       []Image   `json:"-"`
	// Schema requests a JSON response shaped like the schema.
	Schema *Schema `json:"schema,omitempty"`
	// Grounded asks the provider to cite web sources where it can.
	Grounded  bool   `json:"grounded,omitempty"`
	Model     string `json:"model,omitempty"` // Uses default if empty
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// ChatResponse is a provider-agnostic chat response
type ChatResponse struct {
	Content    string   `json:"content"`
	Sources    []Source `json:"sources,omitempty"`
	StopReason string   `json:"stop_reason"`
	Usage      Usage    `json:"usage"`
}

// Source is a web document the response was grounded on.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Usage tracks token usage
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// SpeechRequest asks for spoken audio of Text.
type SpeechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// Speech formats returned by providers.
const (
	SpeechFormatMP3 = "mp3"
	// SpeechFormatPCM is headerless mono s16le audio at 24 kHz.
	SpeechFormatPCM = "pcm"
)

// SpeechResponse holds audio in Format.
type SpeechResponse struct {
	Audio  []byte `json:"-"`
	Format string `json:"format"`
}

const groundingInstruction = "Base the answer on current, credible web sources and cite each one as a Markdown link, e.g. [Title](https://example.com)."

// composeSystemPrompt merges the request's system prompt with the grounding
// hint and, for providers without native schema support, the schema text.
func composeSystemPrompt(req *ChatRequest, schemaText bool) string {
	var parts []string
	if s := strings.TrimSpace(req.SystemPrompt); s != "" {
		parts = append(parts, s)
	}
	if req.Grounded {
		parts = append(parts, groundingInstruction)
	}
	if schemaText && req.Schema != nil {
		parts = append(parts, req.Schema.Instruction())
	}
	return strings.Join(parts, "\n\n")
}

// UserMessage is shorthand for a single-turn request body.
func UserMessage(content string) []Message {
	return []Message{{Role: "user", Content: content}}
}

// EnvVarForProvider returns the environment variable name for a provider's API key
func EnvVarForProvider(id ProviderID) string {
	switch id {
	case ProviderGemini:
		return "GOOGLE_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	default:
		return ""
	}
}

// AllProviderIDs returns all known provider IDs in priority order
func AllProviderIDs() []ProviderID {
	return []ProviderID{
		ProviderGemini,
		ProviderOpenAI,
		ProviderAnthropic,
		ProviderOpenRouter,
	}
}

// IsKnownProvider reports whether id is one of AllProviderIDs.
func IsKnownProvider(id ProviderID) bool {
	for _, p := range AllProviderIDs() {
		if p == id {
			return true
		}
	}
	return false
}

// ValidateModelID checks whether modelID exists in the given model list.
func ValidateModelID(modelID string, models []Model) error {
	for _, m := range models {
		if m.ID == modelID {
			return nil
		}
	}
	return fmt.Errorf("unknown model %q for this provider", modelID)
}

// New creates a provider by ID. An empty model selects the provider default.
func New(ctx context.Context, id ProviderID, apiKey, model string) (Provider, error) {
	switch id {
	case ProviderGemini:
		return NewGeminiProvider(ctx, apiKey, model)
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey, model, "")
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, model)
	case ProviderOpenRouter:
		return NewOpenRouterProvider(apiKey, model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", id)
	}
}
