//go:build integration
// +build integration

package cli

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/edumind/internal/config"
	"github.com/yolodolo42/edumind/internal/llm"
	"github.com/yolodolo42/edumind/internal/logging"
	"github.com/yolodolo42/edumind/internal/study"
)

// ScenarioStep is one form submission and its expectations.
type ScenarioStep struct {
	Tool       string   // menu filter typed on the dashboard
	Input      string   // typed into the first field
	ExpectSubs []string // substrings that must appear in the rendered app
}

// Scenario describes a multi-step app session against a live provider.
type Scenario struct {
	Name     string
	Provider llm.ProviderID
	Model    string
	Steps    []ScenarioStep
}

func TestScenario_Gemini_ExplainAndResearch(t *testing.T) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	runScenario(t, Scenario{
		Name:     "gemini-explain-research",
		Provider: llm.ProviderGemini,
		Model:    "gemini-2.0-flash",
		Steps: []ScenarioStep{
			{Tool: "explainer", Input: "photosynthesis", ExpectSubs: []string{"Photosynthesis"}},
			{Tool: "research", Input: "James Webb Space Telescope", ExpectSubs: []string{"Sources"}},
		},
	}, key)
}

func TestScenario_OpenRouter_Explain(t *testing.T) {
	key := os.Getenv("OPENROUTER_API_KEY")
	if key == "" {
		t.Skip("OPENROUTER_API_KEY not set")
	}

	runScenario(t, Scenario{
		Name:     "openrouter-explain",
		Provider: llm.ProviderOpenRouter,
		Model:    "openai/gpt-4o-mini",
		Steps: []ScenarioStep{
			{Tool: "explainer", Input: "gravity", ExpectSubs: []string{"ravity"}},
		},
	}, key)
}

// runScenario drives the app model against a live provider.
func runScenario(t *testing.T, scenario Scenario, apiKey string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	provider, err := llm.New(ctx, scenario.Provider, apiKey, scenario.Model)
	require.NoError(t, err)

	svc := study.NewService(provider, study.WithLogger(logging.Discard()))
	settings := config.Settings{Render: config.RenderSettings{Width: 100, Style: config.StylePlain}}

	for _, step := range scenario.Steps {
		m := newApp(ctx, svc, nil, settings, nil)
		next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 60})
		m = next.(app)

		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(step.Tool)})
		m = next.(app)
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = next.(app)

		m.fields[0].SetValue(step.Input)
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = next.(app)
		require.True(t, m.loading, "step %q did not start", step.Input)

		msg := m.runTool(toolRequest{tool: m.nav.Current, input: step.Input, level: m.level, days: study.DefaultPlanDays})()
		next, _ = m.Update(msg)
		m = next.(app)

		output := ansi.Strip(m.View())
		require.Empty(t, m.errMsg, "step %q failed", step.Input)
		for _, sub := range step.ExpectSubs {
			require.True(t, strings.Contains(output, sub), "missing %q for step %q in:\n%s", sub, step.Input, output)
		}
	}
}
