package testutil

import (
	"context"
	"sync"

	"github.com/yolodolo42/edumind/internal/llm"
)

// FakeProvider is a scripted llm.Provider. Each Chat call pops the next
// response (or error); once exhausted the last one repeats.
type FakeProvider struct {
	mu        sync.Mutex
	Responses []*llm.ChatResponse
	Err       error
	Requests  []*llm.ChatRequest
}

// NewFakeProvider returns a provider answering with the given contents.
func NewFakeProvider(contents ...string) *FakeProvider {
	p := &FakeProvider{}
	for _, c := range contents {
		p.Responses = append(p.Responses, &llm.ChatResponse{Content: c, StopReason: "stop"})
	}
	return p
}

func (p *FakeProvider) ID() llm.ProviderID { return llm.ProviderGemini }
func (p *FakeProvider) Name() string       { return "Fake" }
func (p *FakeProvider) Models() []llm.Model {
	return []llm.Model{{ID: "fake-model", Name: "Fake Model", SupportsImages: true}}
}
func (p *FakeProvider) DefaultModel() string { return "fake-model" }
func (p *FakeProvider) SetModel(modelID string) error {
	return llm.ValidateModelID(modelID, p.Models())
}

// Chat records req and returns the next scripted response.
func (p *FakeProvider) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Requests = append(p.Requests, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Err != nil {
		return nil, p.Err
	}
	if len(p.Responses) == 0 {
		return &llm.ChatResponse{}, nil
	}
	resp := p.Responses[0]
	if len(p.Responses) > 1 {
		p.Responses = p.Responses[1:]
	}
	return resp, nil
}

// LastRequest returns the most recent request, or nil.
func (p *FakeProvider) LastRequest() *llm.ChatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Requests) == 0 {
		return nil
	}
	return p.Requests[len(p.Requests)-1]
}

// FakeSpeech is an llm.SpeechProvider returning fixed audio.
type FakeSpeech struct {
	mu    sync.Mutex
	Audio []byte
	Err   error
	Texts []string
}

// Speak records the request text.
func (s *FakeSpeech) Speak(ctx context.Context, req *llm.SpeechRequest) (*llm.SpeechResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Texts = append(s.Texts, req.Text)
	if s.Err != nil {
		return nil, s.Err
	}
	return &llm.SpeechResponse{Audio: s.Audio, Format: "mp3"}, nil
}

// RecordedResult is one call captured by FakeRecorder.
type RecordedResult struct {
	Tool   string
	Input  string
	Output string
}

// FakeRecorder collects recorded tool results in memory.
type FakeRecorder struct {
	mu      sync.Mutex
	Err     error
	Results []RecordedResult
}

// Record appends the result, or returns Err when set.
func (r *FakeRecorder) Record(ctx context.Context, tool, input, output string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Results = append(r.Results, RecordedResult{Tool: tool, Input: input, Output: output})
	return nil
}

// All returns a copy of the recorded results.
func (r *FakeRecorder) All() []RecordedResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedResult(nil), r.Results...)
}
