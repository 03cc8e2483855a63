// Package study implements the EduMind tutoring tools on top of an LLM
// provider: explanations, quizzes, image analysis, research, study plans and
// read-aloud audio.
package study

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/yolodolo42/edumind/internal/llm"
	"github.com/yolodolo42/edumind/internal/markdown"
)

// SystemPrompt frames every explanation.
const SystemPrompt = "You are EduMind, a helpful and encouraging academic tutor."

const (
	fallbackExplanation = "I couldn't generate an explanation at this time."
	fallbackAnalysis    = "Could not analyze the image."
	fallbackResearch    = "No results found."

	defaultImagePrompt = "Analyze this image and explain what is shown. If it's a problem, solve it step-by-step."
)

var (
	// ErrEmptyInput is returned when a topic, query or prompt is blank.
	ErrEmptyInput = errors.New("input is empty")

	// ErrNoResponse is returned when a structured request came back empty.
	ErrNoResponse = errors.New("no response from model")

	// ErrSpeechUnavailable is returned by Speak when no speech provider is set.
	ErrSpeechUnavailable = errors.New("text-to-speech is not configured")

	// ErrImagesUnsupported is returned by AnalyzeImage when the active model
	// is known to reject image input.
	ErrImagesUnsupported = errors.New("the selected model does not accept images")
)

// Level selects how deep an explanation goes.
type Level string

const (
	LevelSimple   Level = "simple"
	LevelDetailed Level = "detailed"
)

// ParseLevel maps user input to a Level. Empty input selects LevelDetailed.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case "", LevelDetailed:
		return LevelDetailed, nil
	case LevelSimple:
		return LevelSimple, nil
	default:
		return "", fmt.Errorf("unknown level %q (want simple or detailed)", s)
	}
}

// Service runs the study tools against a single provider.
// It holds no conversation state and is safe for concurrent use.
type Service struct {
	provider llm.Provider
	speech   llm.SpeechProvider
	voice    string
	recorder Recorder
	logger   *slog.Logger

	openRouterKey string
}

// Option configures a Service.
type Option func(*Service)

// WithSpeech enables Speak using sp and the given voice.
func WithSpeech(sp llm.SpeechProvider, voice string) Option {
	return func(s *Service) {
		s.speech = sp
		s.voice = voice
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOpenRouterKey lets AnalyzeImage look up image support in the
// OpenRouter model catalog.
func WithOpenRouterKey(key string) Option {
	return func(s *Service) {
		s.openRouterKey = key
	}
}

// NewService creates a study service. If the provider also implements
// llm.SpeechProvider it is used for Speak unless WithSpeech overrides it.
func NewService(provider llm.Provider, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if sp, ok := provider.(llm.SpeechProvider); ok {
		s.speech = sp
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the underlying provider.
func (s *Service) Provider() llm.Provider {
	return s.provider
}

// CanSpeak reports whether Speak has a backend.
func (s *Service) CanSpeak() bool {
	return s.speech != nil
}

// Explain returns a Markdown explanation of topic.
func (s *Service) Explain(ctx context.Context, topic string, level Level) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", ErrEmptyInput
	}

	var prompt string
	if level == LevelSimple {
		prompt = fmt.Sprintf("Explain the concept of \"%s\" like I am 10 years old. Keep it engaging, simple, and use analogies.", topic)
	} else {
		prompt = fmt.Sprintf("Provide a comprehensive and structured explanation of \"%s\". Include key definitions, historical context (if applicable), and examples. Format with Markdown.", topic)
	}

	resp, err := s.chat(ctx, ToolExplainer, &llm.ChatRequest{
		SystemPrompt: SystemPrompt,
		Messages:     llm.UserMessage(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("explain %q: %w", topic, err)
	}

	out := orDefault(resp.Content, fallbackExplanation)
	s.record(ctx, ToolExplainer, topic, out)
	return out, nil
}

// AnalyzeImage describes or solves what the image shows. An empty prompt
// selects the default analysis instruction.
func (s *Service) AnalyzeImage(ctx context.Context, img llm.Image, prompt string) (string, error) {
	if len(img.Data) == 0 {
		return "", ErrEmptyInput
	}

	if s.provider != nil {
		supports, known := llm.SupportsImagesForModel(ctx, s.provider, s.provider.DefaultModel(), s.openRouterKey)
		if known && !supports {
			return "", fmt.Errorf("%w: %s", ErrImagesUnsupported, s.provider.DefaultModel())
		}
	}

	prompt = orDefault(prompt, defaultImagePrompt)

	resp, err := s.chat(ctx, ToolVision, &llm.ChatRequest{
		Messages: llm.UserMessage(prompt),
		Images:   []llm.Image{img},
	})
	if err != nil {
		return "", fmt.Errorf("analyze image: %w", err)
	}

	out := orDefault(resp.Content, fallbackAnalysis)
	s.record(ctx, ToolVision, prompt, out)
	return out, nil
}

// Speak synthesizes text as audio. Markdown markers are stripped and the
// text is capped at markdown.DefaultSpeechLimit characters.
func (s *Service) Speak(ctx context.Context, text string) (*llm.SpeechResponse, error) {
	if s.speech == nil {
		return nil, ErrSpeechUnavailable
	}

	clean := strings.TrimSpace(markdown.SpeechText(text, markdown.DefaultSpeechLimit))
	if clean == "" {
		return nil, ErrEmptyInput
	}

	resp, err := s.speech.Speak(ctx, &llm.SpeechRequest{Text: clean, Voice: s.voice})
	if err != nil {
		return nil, fmt.Errorf("speak: %w", err)
	}
	if resp == nil || len(resp.Audio) == 0 {
		return nil, llm.ErrNoSpeech
	}

	s.logger.Debug("speech generated", "chars", len(clean), "bytes", len(resp.Audio), "format", resp.Format)
	return resp, nil
}

func (s *Service) chat(ctx context.Context, tool string, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("study service provider not initialized")
	}

	resp, err := s.provider.Chat(ctx, req)
	if err != nil {
		s.logger.Error("llm request failed", "tool", tool, "provider", s.provider.ID(), "error", err)
		return nil, err
	}

	s.logger.Info("llm request",
		"tool", tool,
		"provider", s.provider.ID(),
		"model", s.provider.DefaultModel(),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop_reason", resp.StopReason,
	)
	return resp, nil
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
