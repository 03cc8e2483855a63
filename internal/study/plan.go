package study

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yolodolo42/edumind/internal/llm"
)

// Bounds on the number of days a plan may cover.
const (
	MinPlanDays     = 1
	MaxPlanDays     = 14
	DefaultPlanDays = 5
)

var (
	// ErrInvalidPlan is returned when the requested or generated plan is unusable.
	ErrInvalidPlan = errors.New("invalid study plan")

	// ErrPlanDays is returned, wrapped in ErrInvalidPlan, when days is outside
	// MinPlanDays..MaxPlanDays.
	ErrPlanDays = errors.New("days out of range")
)

// Plan is a day-by-day study schedule.
type Plan struct {
	Title    string     `json:"title"`
	Schedule []StudyDay `json:"schedule"`
	Tips     []string   `json:"tips"`
}

// StudyDay is one day of a Plan.
type StudyDay struct {
	Day   string      `json:"day"`
	Focus string      `json:"focus"`
	Tasks []StudyTask `json:"tasks"`
}

// StudyTask is a timed activity.
type StudyTask struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
}

var planSchema = llm.Object(map[string]*llm.Schema{
	"title": llm.String(),
	"tips":  llm.ArrayOf(llm.String()),
	"schedule": llm.ArrayOf(llm.Object(map[string]*llm.Schema{
		"day":   llm.String(),
		"focus": llm.String(),
		"tasks": llm.ArrayOf(llm.Object(map[string]*llm.Schema{
			"time":     llm.String(),
			"activity": llm.String(),
		}, "time", "activity")),
	}, "day", "focus", "tasks")),
}, "title", "schedule", "tips")

// StudyPlan builds a plan for subjects over the given number of days.
func (s *Service) StudyPlan(ctx context.Context, subjects string, days int) (*Plan, error) {
	subjects = strings.TrimSpace(subjects)
	if subjects == "" {
		return nil, ErrEmptyInput
	}
	if days < MinPlanDays || days > MaxPlanDays {
		return nil, fmt.Errorf("%w: %w: must be between %d and %d, got %d", ErrInvalidPlan, ErrPlanDays, MinPlanDays, MaxPlanDays, days)
	}

	resp, err := s.chat(ctx, ToolPlanner, &llm.ChatRequest{
		Messages: llm.UserMessage(fmt.Sprintf("Create a %d-day study plan for these subjects: %s. Structure it day by day.", days, subjects)),
		Schema:   planSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("generate study plan: %w", err)
	}

	var plan Plan
	if err := decodeJSON(resp.Content, &plan); err != nil {
		return nil, fmt.Errorf("generate study plan: %w", err)
	}
	if len(plan.Schedule) == 0 {
		return nil, fmt.Errorf("%w: empty schedule", ErrInvalidPlan)
	}
	s.record(ctx, ToolPlanner, fmt.Sprintf("%s (%d days)", subjects, days), plan.Markdown())
	return &plan, nil
}

// Markdown renders the plan in the subset understood by the markdown package.
func (p *Plan) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", p.Title)
	for _, day := range p.Schedule {
		fmt.Fprintf(&b, "\n## %s: %s\n", day.Day, day.Focus)
		for _, task := range day.Tasks {
			fmt.Fprintf(&b, "- **%s** %s\n", task.Time, task.Activity)
		}
	}
	if len(p.Tips) > 0 {
		b.WriteString("\n### Tips\n")
		for _, tip := range p.Tips {
			fmt.Fprintf(&b, "- %s\n", tip)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
