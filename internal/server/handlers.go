package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yolodolo42/edumind/internal/markdown"
	"github.com/yolodolo42/edumind/internal/study"
)

type renderRequest struct {
	Content string `json:"content"`
	HTML    bool   `json:"html"`
}

type renderResponse struct {
	Blocks []markdown.Block `json:"blocks"`
	HTML   string           `json:"html,omitempty"`
}

type explainRequest struct {
	Topic string `json:"topic"`
	Level string `json:"level"`
}

type topicRequest struct {
	Topic string `json:"topic"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type planRequest struct {
	Subjects string `json:"subjects"`
	Days     int    `json:"days"`
}

type analyzeRequest struct {
	// Image is a data URL or bare base64.
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

// contentResponse carries free-text answers along with their classified
// blocks so clients can render without a Markdown library. Text is the
// answer with all markers removed.
type contentResponse struct {
	Content string           `json:"content"`
	Text    string           `json:"text"`
	Blocks  []markdown.Block `json:"blocks"`
}

func newContentResponse(content string) contentResponse {
	blocks := markdown.Render(content)
	return contentResponse{Content: content, Text: markdown.Plain(blocks), Blocks: blocks}
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp := renderResponse{Blocks: markdown.Render(req.Content)}
	if req.HTML {
		html, err := markdown.ToHTML(req.Content)
		if err != nil {
			jsonError(w, "failed to convert markdown: "+err.Error(), http.StatusInternalServerError)
			return
		}
		resp.HTML = html
	}
	s.respond(w, r, http.StatusOK, resp)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if !decodeBody(w, r, &req) {
		return
	}
	level, err := study.ParseLevel(req.Level)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	text, err := s.study.Explain(r.Context(), req.Topic, level)
	if err != nil {
		s.toolError(w, "explain", err)
		return
	}
	s.respond(w, r, http.StatusOK, newContentResponse(text))
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if !decodeBody(w, r, &req) {
		return
	}

	q, err := s.study.GenerateQuiz(r.Context(), req.Topic)
	if err != nil {
		s.toolError(w, "quiz", err)
		return
	}
	s.respond(w, r, http.StatusOK, q)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	img, err := study.DecodeImage(req.Image)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	text, err := s.study.AnalyzeImage(r.Context(), img, req.Prompt)
	if err != nil {
		s.toolError(w, "analyze", err)
		return
	}
	s.respond(w, r, http.StatusOK, newContentResponse(text))
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.study.Research(r.Context(), req.Query)
	if err != nil {
		s.toolError(w, "research", err)
		return
	}
	s.respond(w, r, http.StatusOK, result)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Days == 0 {
		req.Days = study.DefaultPlanDays
	}

	plan, err := s.study.StudyPlan(r.Context(), req.Subjects, req.Days)
	if err != nil {
		s.toolError(w, "plan", err)
		return
	}
	s.respond(w, r, http.StatusOK, plan)
}

// toolError maps study errors to status codes. Caller mistakes are 4xx;
// anything from the provider is a bad gateway.
func (s *Server) toolError(w http.ResponseWriter, tool string, err error) {
	switch {
	case errors.Is(err, study.ErrEmptyInput):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, study.ErrImagesUnsupported):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, study.ErrPlanDays):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("tool failed", "tool", tool, "error", err)
		jsonError(w, fmt.Sprintf("%s failed: %v", tool, err), http.StatusBadGateway)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// respond writes v as the JSON body. The status line is already sent when
// encoding fails, so the error is only logged.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, code int, v any) {
	if err := writeJSON(w, code, v); err != nil {
		s.log.Warn("write response failed", "path", r.URL.Path, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

// jsonError bodies always encode; a write error means the client is gone.
func jsonError(w http.ResponseWriter, msg string, code int) {
	_ = writeJSON(w, code, map[string]string{"error": msg})
}
