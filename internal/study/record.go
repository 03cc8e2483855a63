package study

import "context"

// Tool identifiers for recorded results. They match the app's view IDs.
const (
	ToolExplainer = "explainer"
	ToolQuiz      = "quiz"
	ToolVision    = "vision"
	ToolResearch  = "research"
	ToolPlanner   = "planner"
)

// Recorder stores successful tool results.
type Recorder interface {
	Record(ctx context.Context, tool, input, output string) error
}

// WithRecorder saves every successful result to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// record never fails the tool call; a broken history store only logs.
func (s *Service) record(ctx context.Context, tool, input, output string) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, tool, input, output); err != nil {
		s.logger.Warn("history record failed", "tool", tool, "error", err)
	}
}
