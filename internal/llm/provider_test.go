package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// mockProvider is a test implementation of Provider
type mockProvider struct {
	id     ProviderID
	models []Model
}

func (m *mockProvider) ID() ProviderID { return m.id }
func (m *mockProvider) Name() string   { return string(m.id) }
func (m *mockProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	return &ChatResponse{Content: "mock response"}, nil
}
func (m *mockProvider) Models() []Model               { return m.models }
func (m *mockProvider) DefaultModel() string          { return "mock-model" }
func (m *mockProvider) SetModel(modelID string) error { return ValidateModelID(modelID, m.models) }

func TestEnvVarForProvider(t *testing.T) {
	tests := []struct {
		id   ProviderID
		want string
	}{
		{ProviderGemini, "GOOGLE_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenRouter, "OPENROUTER_API_KEY"},
		{ProviderID("unknown"), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			assert.Equal(t, tt.want, EnvVarForProvider(tt.id))
		})
	}
}

func TestAllProviderIDs(t *testing.T) {
	ids := AllProviderIDs()
	require.Len(t, ids, 4)
	assert.Equal(t, ProviderGemini, ids[0])

	for _, id := range ids {
		assert.True(t, IsKnownProvider(id))
		assert.NotEmpty(t, EnvVarForProvider(id))
	}
	assert.False(t, IsKnownProvider("venice"))
}

func TestValidateModelID(t *testing.T) {
	models := []Model{{ID: "a"}, {ID: "b"}}

	assert.NoError(t, ValidateModelID("a", models))
	err := ValidateModelID("c", models)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"c"`)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("requires api key", func(t *testing.T) {
		for _, id := range AllProviderIDs() {
			_, err := New(ctx, id, "", "")
			assert.Error(t, err, id)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := New(ctx, "nope", "key", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider")
	})

	t.Run("openai defaults", func(t *testing.T) {
		p, err := New(ctx, ProviderOpenAI, "sk-test", "")
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, p.ID())
		assert.Equal(t, "gpt-4o", p.DefaultModel())
		_, ok := p.(SpeechProvider)
		assert.True(t, ok)
	})

	t.Run("anthropic set model", func(t *testing.T) {
		p, err := New(ctx, ProviderAnthropic, "sk-ant", "")
		require.NoError(t, err)
		require.NoError(t, p.SetModel("claude-3-5-haiku-20241022"))
		assert.Equal(t, "claude-3-5-haiku-20241022", p.DefaultModel())
		assert.Error(t, p.SetModel("gpt-4o"))
	})
}

func TestOpenRouterSpeechDisabled(t *testing.T) {
	p, err := NewOpenRouterProvider("sk-or", "")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenRouter, p.ID())
	assert.Equal(t, "OpenRouter", p.Name())
	assert.Equal(t, "google/gemini-2.0-flash-001", p.DefaultModel())

	_, err = p.Speak(context.Background(), &SpeechRequest{Text: "hi"})
	assert.ErrorIs(t, err, ErrSpeechUnsupported)
}

func TestImageDataURL(t *testing.T) {
	img := Image{MIMEType: "image/png", Data: []byte("abc")}
	assert.Equal(t, "data:image/png;base64,YWJj", img.DataURL())
}

func TestBuildOpenAIRequest(t *testing.T) {
	t.Run("plain text", func(t *testing.T) {
		req := buildOpenAIRequest("gpt-4o", &ChatRequest{
			SystemPrompt: "be brief",
			Messages:     UserMessage("hello"),
		})

		assert.Equal(t, "gpt-4o", req.Model)
		assert.Equal(t, 4096, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Equal(t, "be brief", req.Messages[0].Content)
		assert.Equal(t, "hello", req.Messages[1].Content)
		assert.Nil(t, req.ResponseFormat)
	})

	t.Run("images become multi content", func(t *testing.T) {
		req := buildOpenAIRequest("gpt-4o", &ChatRequest{
			Messages: UserMessage("what is this"),
			Images:   []Image{{MIMEType: "image/jpeg", Data: []byte{1, 2}}},
			Model:    "gpt-4o-mini",
		})

		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 1)
		msg := req.Messages[0]
		assert.Empty(t, msg.Content)
		require.Len(t, msg.MultiContent, 2)
		assert.Equal(t, "what is this", msg.MultiContent[0].Text)
		require.NotNil(t, msg.MultiContent[1].ImageURL)
		assert.Equal(t, "data:image/jpeg;base64,AQI=", msg.MultiContent[1].ImageURL.URL)
	})

	t.Run("schema requests json", func(t *testing.T) {
		schema := Object(map[string]*Schema{"title": String()}, "title")
		req := buildOpenAIRequest("gpt-4o", &ChatRequest{
			SystemPrompt: "plan",
			Messages:     UserMessage("x"),
			Schema:       schema,
		})

		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
		assert.Contains(t, req.Messages[0].Content, "plan")
		assert.Contains(t, req.Messages[0].Content, `"required":["title"]`)
	})
}

func TestToGeminiSchema(t *testing.T) {
	schema := Object(map[string]*Schema{
		"questions": ArrayOf(Object(map[string]*Schema{
			"question":     String(),
			"correctIndex": Integer(),
		}, "question", "correctIndex")),
	}, "questions")

	out := toGeminiSchema(schema)
	require.NotNil(t, out)
	assert.Equal(t, genai.TypeObject, out.Type)
	assert.Equal(t, []string{"questions"}, out.Required)

	q := out.Properties["questions"]
	require.NotNil(t, q)
	assert.Equal(t, genai.TypeArray, q.Type)
	require.NotNil(t, q.Items)
	assert.Equal(t, genai.TypeInteger, q.Items.Properties["correctIndex"].Type)
	assert.Equal(t, genai.TypeString, q.Items.Properties["question"].Type)

	assert.Nil(t, toGeminiSchema(nil))
	assert.Equal(t, genai.TypeUnspecified, geminiType("date"))
}

var _ SpeechProvider = (*GeminiProvider)(nil)

func TestParseGeminiResponse_GroundingChunks(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking about it", Thought: true},
				{Text: "The telescope launched "},
				{Text: "in 2021."},
			}},
			GroundingMetadata: &genai.GroundingMetadata{
				GroundingChunks: []*genai.GroundingChunk{
					{Web: &genai.GroundingChunkWeb{Title: "nasa.gov", URI: "https://vertexaisearch.cloud.google.com/grounding-api-redirect/a"}},
					{},
					{Web: &genai.GroundingChunkWeb{Title: "no link"}},
					{Web: &genai.GroundingChunkWeb{Title: "esa.int", URI: "https://vertexaisearch.cloud.google.com/grounding-api-redirect/b"}},
				},
			},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     12,
			CandidatesTokenCount: 7,
		},
	}

	got, err := parseGeminiResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "The telescope launched in 2021.", got.Content)
	assert.Equal(t, string(genai.FinishReasonStop), got.StopReason)
	assert.Equal(t, Usage{InputTokens: 12, OutputTokens: 7}, got.Usage)
	assert.Equal(t, []Source{
		{Title: "nasa.gov", URI: "https://vertexaisearch.cloud.google.com/grounding-api-redirect/a"},
		{Title: "esa.int", URI: "https://vertexaisearch.cloud.google.com/grounding-api-redirect/b"},
	}, got.Sources)

	t.Run("no candidates", func(t *testing.T) {
		_, err := parseGeminiResponse(&genai.GenerateContentResponse{})
		assert.Error(t, err)
	})

	t.Run("ungrounded", func(t *testing.T) {
		got, err := parseGeminiResponse(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "hi"}}}}},
		})
		require.NoError(t, err)
		assert.Empty(t, got.Sources)
	})
}

func TestGeminiConfig(t *testing.T) {
	t.Run("grounded request uses the search tool", func(t *testing.T) {
		cfg := geminiConfig(&ChatRequest{
			SystemPrompt: "Be brief.",
			Messages:     UserMessage("latest on fusion"),
			Grounded:     true,
		})
		require.Len(t, cfg.Tools, 1)
		assert.NotNil(t, cfg.Tools[0].GoogleSearch)
		require.NotNil(t, cfg.SystemInstruction)
		assert.Equal(t, "Be brief.", cfg.SystemInstruction.Parts[0].Text)
		assert.Empty(t, cfg.ResponseMIMEType)
	})

	t.Run("schema request uses json output", func(t *testing.T) {
		cfg := geminiConfig(&ChatRequest{
			Messages:  UserMessage("plan"),
			Schema:    Object(map[string]*Schema{"title": String()}, "title"),
			MaxTokens: 256,
		})
		assert.Empty(t, cfg.Tools)
		assert.Equal(t, "application/json", cfg.ResponseMIMEType)
		require.NotNil(t, cfg.ResponseSchema)
		assert.Equal(t, genai.TypeObject, cfg.ResponseSchema.Type)
		assert.Equal(t, int32(256), cfg.MaxOutputTokens)
		assert.Nil(t, cfg.SystemInstruction)
	})

	t.Run("grounded schema request moves the schema into the prompt", func(t *testing.T) {
		cfg := geminiConfig(&ChatRequest{
			Messages: UserMessage("x"),
			Schema:   Object(map[string]*Schema{"title": String()}, "title"),
			Grounded: true,
		})
		assert.Nil(t, cfg.ResponseSchema)
		require.NotNil(t, cfg.SystemInstruction)
		assert.Contains(t, cfg.SystemInstruction.Parts[0].Text, "JSON schema")
	})
}

func TestGeminiContents_ImagesLeadLastMessage(t *testing.T) {
	contents := geminiContents(&ChatRequest{
		Messages: []Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
			{Role: "user", Content: "what is this?"},
		},
		Images: []Image{{MIMEType: "image/png", Data: []byte{1, 2}}},
	})

	require.Len(t, contents, 3)
	assert.Equal(t, "model", contents[1].Role)
	last := contents[2]
	require.Len(t, last.Parts, 2)
	require.NotNil(t, last.Parts[0].InlineData)
	assert.Equal(t, "image/png", last.Parts[0].InlineData.MIMEType)
	assert.Equal(t, "what is this?", last.Parts[1].Text)
}

func TestGeminiSpeechAudio(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "audio/L16;codec=pcm;rate=24000", Data: []byte{1, 2}}},
			{InlineData: &genai.Blob{MIMEType: "audio/L16;codec=pcm;rate=24000", Data: []byte{3}}},
		}}}},
	}
	assert.Equal(t, []byte{1, 2, 3}, geminiSpeechAudio(resp))
	assert.Nil(t, geminiSpeechAudio(&genai.GenerateContentResponse{}))
}

// geminiServer answers every generateContent call with body and records the
// request paths and payloads.
func geminiServer(t *testing.T, body string) (*GeminiProvider, *[]string, *[]string) {
	t.Helper()
	var paths, payloads []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		paths = append(paths, r.URL.Path)
		payloads = append(payloads, string(data))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	p, err := newGeminiProvider(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	}, "")
	require.NoError(t, err)
	return p, &paths, &payloads
}

func TestGeminiProvider_GroundedChat(t *testing.T) {
	p, paths, payloads := geminiServer(t, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Fusion news."}]},"finishReason":"STOP","groundingMetadata":{"groundingChunks":[{"web":{"uri":"https://example.org/fusion","title":"example.org"}}]}}]}`)

	resp, err := p.Chat(context.Background(), &ChatRequest{Messages: UserMessage("fusion"), Grounded: true})
	require.NoError(t, err)
	assert.Equal(t, "Fusion news.", resp.Content)
	assert.Equal(t, []Source{{Title: "example.org", URI: "https://example.org/fusion"}}, resp.Sources)

	require.Len(t, *paths, 1)
	assert.Contains(t, (*paths)[0], "gemini-2.0-flash:generateContent")
	assert.Contains(t, (*payloads)[0], `"googleSearch"`)
}

func TestGeminiProvider_Speak(t *testing.T) {
	p, paths, payloads := geminiServer(t, `{"candidates":[{"content":{"role":"model","parts":[{"inlineData":{"mimeType":"audio/L16;codec=pcm;rate=24000","data":"AQID"}}]}}]}`)

	resp, err := p.Speak(context.Background(), &SpeechRequest{Text: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, resp.Audio)
	assert.Equal(t, SpeechFormatPCM, resp.Format)

	require.Len(t, *paths, 1)
	assert.Contains(t, (*paths)[0], GeminiSpeechModel+":generateContent")
	assert.Contains(t, (*payloads)[0], `"voiceName":"Kore"`)
	assert.Contains(t, (*payloads)[0], `"AUDIO"`)

	t.Run("no audio", func(t *testing.T) {
		p, _, _ := geminiServer(t, `{"candidates":[{"content":{"role":"model","parts":[{"text":"sorry"}]}}]}`)
		_, err := p.Speak(context.Background(), &SpeechRequest{Text: "Hello", Voice: "Puck"})
		assert.ErrorIs(t, err, ErrNoSpeech)
	})
}

func TestSchemaInstruction(t *testing.T) {
	s := Object(map[string]*Schema{"a": String()}, "a")
	got := s.Instruction()
	assert.Contains(t, got, "JSON")

	var decoded map[string]any
	start := len("Respond with a single JSON object and nothing else. It must match this JSON schema: ")
	require.NoError(t, json.Unmarshal([]byte(got[start:]), &decoded))
	assert.Equal(t, "object", decoded["type"])
}

func TestSupportsImagesForModel(t *testing.T) {
	ctx := context.Background()

	t.Run("static model list", func(t *testing.T) {
		p := &mockProvider{id: ProviderOpenAI, models: OpenAIModels}
		supports, known := SupportsImagesForModel(ctx, p, "gpt-3.5-turbo", "")
		assert.True(t, known)
		assert.False(t, supports)

		supports, known = SupportsImagesForModel(ctx, p, "gpt-4o", "")
		assert.True(t, known)
		assert.True(t, supports)
	})

	t.Run("unknown falls back optimistic", func(t *testing.T) {
		p := &mockProvider{id: ProviderGemini}
		supports, known := SupportsImagesForModel(ctx, p, "gemini-exp", "")
		assert.False(t, known)
		assert.True(t, supports)
	})
}

func TestImageCapabilitiesCache_OpenRouter(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "Bearer sk-or", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[
			{"id":"vision/a","architecture":{"input_modalities":["text","image"]}},
			{"id":"legacy/b","architecture":{"modality":"text+image->text"}},
			{"id":"text/c","architecture":{"input_modalities":["text"]}}
		]}`))
	}))
	defer srv.Close()

	cache := &ImageCapabilitiesCache{
		entries: make(map[ProviderID]capEntry),
		url:     srv.URL,
		client:  srv.Client(),
	}
	ctx := context.Background()

	v, known := cache.fetchOpenRouter(ctx, "sk-or", "vision/a")
	assert.True(t, known)
	assert.True(t, v)

	v, known = cache.fetchOpenRouter(ctx, "sk-or", "legacy/b")
	assert.True(t, known)
	assert.True(t, v)

	v, known = cache.fetchOpenRouter(ctx, "sk-or", "text/c")
	assert.True(t, known)
	assert.False(t, v)
	assert.Equal(t, 1, calls)

	_, known = cache.fetchOpenRouter(ctx, "", "vision/a")
	assert.False(t, known)
}

func TestComposeSystemPrompt(t *testing.T) {
	schema := Object(map[string]*Schema{"a": String()})

	tests := []struct {
		name       string
		req        ChatRequest
		schemaText bool
		want       []string
		notWant    []string
	}{
		{
			name: "system only",
			req:  ChatRequest{SystemPrompt: "  tutor  "},
			want: []string{"tutor"},
		},
		{
			name:    "grounded adds citation hint",
			req:     ChatRequest{Grounded: true},
			want:    []string{"Markdown link"},
			notWant: []string{"JSON"},
		},
		{
			name:       "schema text when requested",
			req:        ChatRequest{SystemPrompt: "x", Schema: schema},
			schemaText: true,
			want:       []string{"x\n\n", "JSON schema"},
		},
		{
			name:    "native schema skips text",
			req:     ChatRequest{Schema: schema},
			notWant: []string{"JSON"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := composeSystemPrompt(&tt.req, tt.schemaText)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, got, w)
			}
		})
	}

	assert.Empty(t, composeSystemPrompt(&ChatRequest{}, true))
}
