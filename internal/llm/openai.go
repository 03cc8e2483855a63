package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	baseURL string
	stream  bool
	speech  bool
}

// OpenAIModels lists available OpenAI models
var OpenAIModels = []Model{
	{
		ID:             "gpt-4o",
		Name:           "GPT-4o",
		ContextWindow:  128000,
		InputCost:      2.50,
		OutputCost:     10.0,
		SupportsImages: true,
	},
	{
		ID:             "gpt-4o-mini",
		Name:           "GPT-4o Mini",
		ContextWindow:  128000,
		InputCost:      0.15,
		OutputCost:     0.60,
		SupportsImages: true,
	},
	{
		ID:             "gpt-4-turbo",
		Name:           "GPT-4 Turbo",
		ContextWindow:  128000,
		InputCost:      10.0,
		OutputCost:     30.0,
		SupportsImages: true,
	},
	{
		ID:             "gpt-3.5-turbo",
		Name:           "GPT-3.5 Turbo",
		ContextWindow:  16385,
		InputCost:      0.50,
		OutputCost:     1.50,
		SupportsImages: false,
	},
}

// NewOpenAIProvider creates a new OpenAI provider. Text-to-speech is only
// enabled against the OpenAI API itself (empty baseURL).
func NewOpenAIProvider(apiKey string, model string, baseURL string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	client := openai.NewClientWithConfig(config)

	if model == "" {
		model = "gpt-4o"
	}

	return &OpenAIProvider{
		client:  client,
		model:   model,
		baseURL: baseURL,
		stream:  true,
		speech:  baseURL == "",
	}, nil
}

// ID returns the provider identifier
func (p *OpenAIProvider) ID() ProviderID {
	return ProviderOpenAI
}

// Name returns the human-readable provider name
func (p *OpenAIProvider) Name() string {
	return "OpenAI"
}

// Models returns available models
func (p *OpenAIProvider) Models() []Model {
	return OpenAIModels
}

// DefaultModel returns the default model
func (p *OpenAIProvider) DefaultModel() string {
	return p.model
}

// SetModel switches the active model after validating the ID
func (p *OpenAIProvider) SetModel(modelID string) error {
	if err := ValidateModelID(modelID, p.Models()); err != nil {
		return err
	}
	p.model = modelID
	return nil
}

// Chat sends a message and returns the response
func (p *OpenAIProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	openaiReq := buildOpenAIRequest(p.model, req)

	resp, err := p.streamChat(ctx, openaiReq)
	if err != nil {
		nonStream, err2 := p.client.CreateChatCompletion(ctx, openaiReq)
		if err2 != nil {
			return nil, fmt.Errorf("failed to create chat completion: %w", err2)
		}
		resp = &nonStream
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := resp.Choices[0]
	return &ChatResponse{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

func buildOpenAIRequest(defaultModel string, req *ChatRequest) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = defaultModel
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	system := composeSystemPrompt(req, true)

	// Convert messages to OpenAI format
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)

	// Add system prompt as first message
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for i, msg := range req.Messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}

		m := openai.ChatCompletionMessage{Role: role}
		if i == len(req.Messages)-1 && len(req.Images) > 0 {
			// Content and MultiContent are mutually exclusive.
			m.MultiContent = append(m.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: msg.Content,
			})
			for _, img := range req.Images {
				m.MultiContent = append(m.MultiContent, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    img.DataURL(),
						Detail: openai.ImageURLDetailAuto,
					},
				})
			}
		} else {
			m.Content = msg.Content
		}
		messages = append(messages, m)
	}

	openaiReq := openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  messages,
	}

	if req.Schema != nil {
		openaiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	return openaiReq
}

// streamChat runs streaming when enabled to reduce latency; falls back to non-stream if unsupported.
func (p *OpenAIProvider) streamChat(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	if !p.stream {
		return nil, fmt.Errorf("streaming disabled")
	}
	stream, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = stream.Close()
	}()

	var (
		final   openai.ChatCompletionResponse
		content strings.Builder
		finish  openai.FinishReason
		role    = openai.ChatMessageRoleAssistant
	)
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		final.Model = chunk.Model
		final.ID = chunk.ID
		for _, ch := range chunk.Choices {
			if ch.Index != 0 {
				continue
			}
			content.WriteString(ch.Delta.Content)
			if ch.Delta.Role != "" {
				role = ch.Delta.Role
			}
			if ch.FinishReason != "" {
				finish = ch.FinishReason
			}
		}
		if chunk.Usage != nil {
			final.Usage = *chunk.Usage
		}
	}

	final.Choices = []openai.ChatCompletionChoice{{
		FinishReason: finish,
		Message: openai.ChatCompletionMessage{
			Role:    role,
			Content: content.String(),
		},
	}}
	return &final, nil
}

// Speak synthesizes mp3 audio with the OpenAI speech endpoint.
func (p *OpenAIProvider) Speak(ctx context.Context, req *SpeechRequest) (*SpeechResponse, error) {
	if !p.speech {
		return nil, ErrSpeechUnsupported
	}

	voice := openai.SpeechVoice(req.Voice)
	if voice == "" {
		voice = openai.VoiceAlloy
	}

	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create speech: %w", err)
	}
	defer func() {
		_ = resp.Close()
	}()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, ErrNoSpeech
	}

	return &SpeechResponse{Audio: audio, Format: SpeechFormatMP3}, nil
}
