package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/edumind/internal/llm"
	"github.com/yolodolo42/edumind/internal/logging"
	"github.com/yolodolo42/edumind/internal/markdown"
	"github.com/yolodolo42/edumind/internal/study"
	"github.com/yolodolo42/edumind/internal/testutil"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestServer(t *testing.T, p *testutil.FakeProvider, apiKey string) *Server {
	t.Helper()
	var svc *study.Service
	if p != nil {
		svc = study.NewService(p)
	}
	return NewServer(svc, logging.Discard(), apiKey)
}

func do(t *testing.T, s *Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	t.Run("without provider", func(t *testing.T) {
		rec := do(t, newTestServer(t, nil, ""), http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("with provider", func(t *testing.T) {
		rec := do(t, newTestServer(t, testutil.NewFakeProvider(), ""), http.MethodGet, "/health", "")
		var got map[string]any
		decode(t, rec, &got)
		assert.Equal(t, "gemini", got["provider"])
		assert.Equal(t, "fake-model", got["model"])
		assert.Equal(t, false, got["speech"])
	})
}

func TestRender(t *testing.T) {
	s := newTestServer(t, nil, "")

	rec := do(t, s, http.MethodPost, "/api/render", `{"content":"# Title\n\nSome **bold** and `+"`code`"+`.\n- first\n- second"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got renderResponse
	decode(t, rec, &got)
	require.Len(t, got.Blocks, 5)
	assert.Equal(t, markdown.Block{Kind: markdown.BlockHeading, Level: 1, Text: "Title"}, got.Blocks[0])
	assert.Equal(t, markdown.BlockBlank, got.Blocks[1].Kind)
	assert.Equal(t, []markdown.Span{
		{Kind: markdown.SpanPlain, Text: "Some "},
		{Kind: markdown.SpanBold, Text: "bold"},
		{Kind: markdown.SpanPlain, Text: " and "},
		{Kind: markdown.SpanCode, Text: "code"},
		{Kind: markdown.SpanPlain, Text: "."},
	}, got.Blocks[2].Spans)
	assert.Equal(t, markdown.BlockListItem, got.Blocks[4].Kind)
	assert.Empty(t, got.HTML)

	t.Run("html", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/api/render", `{"content":"**hi**","html":true}`)
		var got renderResponse
		decode(t, rec, &got)
		assert.Contains(t, got.HTML, "<strong>hi</strong>")
	})

	t.Run("bad body", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/api/render", `{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestToolsWithoutProvider(t *testing.T) {
	rec := do(t, newTestServer(t, nil, ""), http.MethodPost, "/api/explain", `{"topic":"gravity"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no AI provider configured")
}

func TestExplain(t *testing.T) {
	p := testutil.NewFakeProvider("## Gravity\n- pulls things")
	rec := do(t, newTestServer(t, p, ""), http.MethodPost, "/api/explain", `{"topic":"gravity","level":"simple"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got contentResponse
	decode(t, rec, &got)
	assert.Equal(t, "## Gravity\n- pulls things", got.Content)
	assert.Equal(t, "Gravity\npulls things", got.Text)
	require.Len(t, got.Blocks, 2)
	assert.Equal(t, 2, got.Blocks[0].Level)
	assert.Contains(t, p.LastRequest().Messages[0].Content, "10 years old")

	t.Run("bad level", func(t *testing.T) {
		rec := do(t, newTestServer(t, testutil.NewFakeProvider(), ""), http.MethodPost, "/api/explain", `{"topic":"x","level":"expert"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty topic", func(t *testing.T) {
		rec := do(t, newTestServer(t, testutil.NewFakeProvider(), ""), http.MethodPost, "/api/explain", `{"topic":"  "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("provider failure", func(t *testing.T) {
		p := testutil.NewFakeProvider()
		p.Err = errors.New("quota exceeded")
		rec := do(t, newTestServer(t, p, ""), http.MethodPost, "/api/explain", `{"topic":"x"}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "quota exceeded")
	})
}

func TestQuiz(t *testing.T) {
	body := `{"title":"Cells","questions":[{"question":"Powerhouse?","options":["Nucleus","Mitochondria"],"correctAnswerIndex":1,"explanation":"ATP."}]}`
	rec := do(t, newTestServer(t, testutil.NewFakeProvider(body), ""), http.MethodPost, "/api/quiz", `{"topic":"cells"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got study.Quiz
	decode(t, rec, &got)
	assert.Equal(t, "Cells", got.Title)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, 1, got.Questions[0].CorrectAnswerIndex)

	t.Run("invalid quiz from model", func(t *testing.T) {
		rec := do(t, newTestServer(t, testutil.NewFakeProvider(`{"title":"x","questions":[]}`), ""), http.MethodPost, "/api/quiz", `{"topic":"cells"}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestAnalyze(t *testing.T) {
	p := testutil.NewFakeProvider("A triangle.")
	payload, _ := json.Marshal(analyzeRequest{
		Image:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes),
		Prompt: "What shape?",
	})
	rec := do(t, newTestServer(t, p, ""), http.MethodPost, "/api/analyze", string(payload))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got contentResponse
	decode(t, rec, &got)
	assert.Equal(t, "A triangle.", got.Content)
	require.Len(t, p.LastRequest().Images, 1)
	assert.Equal(t, "image/png", p.LastRequest().Images[0].MIMEType)

	t.Run("bad base64", func(t *testing.T) {
		rec := do(t, newTestServer(t, testutil.NewFakeProvider(), ""), http.MethodPost, "/api/analyze", `{"image":"!!!"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestResearch(t *testing.T) {
	p := &testutil.FakeProvider{Responses: []*llm.ChatResponse{{
		Content: "Answer",
		Sources: []llm.Source{{Title: "A", URI: "https://a.example/x"}},
	}}}

	rec := do(t, newTestServer(t, p, ""), http.MethodPost, "/api/research", `{"query":"black holes"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got study.ResearchResult
	decode(t, rec, &got)
	assert.Equal(t, "Answer", got.Content)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "https://a.example/x", got.Sources[0].URI)
	assert.True(t, p.LastRequest().Grounded)
}

func TestPlan(t *testing.T) {
	body := `{"title":"Week","schedule":[{"day":"Day 1","focus":"Algebra","tasks":[{"time":"9:00","activity":"Practice"}]}],"tips":["Rest"]}`

	t.Run("default days", func(t *testing.T) {
		p := testutil.NewFakeProvider(body)
		rec := do(t, newTestServer(t, p, ""), http.MethodPost, "/api/plan", `{"subjects":"Math"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var got study.Plan
		decode(t, rec, &got)
		assert.Equal(t, "Week", got.Title)
		assert.Contains(t, p.LastRequest().Messages[0].Content, "5-day")
	})

	t.Run("days out of range", func(t *testing.T) {
		rec := do(t, newTestServer(t, testutil.NewFakeProvider(body), ""), http.MethodPost, "/api/plan", `{"subjects":"Math","days":30}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, nil, "secret")

	t.Run("health is public", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", "").Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/api/render", `{"content":"x"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing authorization")
	})

	t.Run("wrong token", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/api/render", `{"content":"x"}`, "Authorization", "Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/api/render", `{"content":"x"}`, "Authorization", "Bearer secret")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestBodyLimit(t *testing.T) {
	s := newTestServer(t, nil, "")
	big := bytes.Repeat([]byte("a"), maxBodyBytes+1)
	body := `{"content":"` + string(big) + `"}`
	rec := do(t, s, http.MethodPost, "/api/render", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRespond_LogsEncodeFailure(t *testing.T) {
	var logs bytes.Buffer
	s := NewServer(nil, logging.New(&logs, slog.LevelDebug), "")

	rec := httptest.NewRecorder()
	s.respond(rec, httptest.NewRequest(http.MethodGet, "/api/render", nil), http.StatusOK, map[string]float64{"x": math.Inf(1)})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, logs.String(), "write response failed")
	assert.Contains(t, logs.String(), `"path":"/api/render"`)
	assert.Contains(t, logs.String(), "unsupported value")

	t.Run("nothing logged on success", func(t *testing.T) {
		logs.Reset()
		s.respond(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil), http.StatusOK, map[string]string{"ok": "yes"})
		assert.Empty(t, logs.String())
	})
}
