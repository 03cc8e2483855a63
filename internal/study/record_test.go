package study

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/edumind/internal/llm"
	"github.com/yolodolo42/edumind/internal/testutil"
)

func TestRecorder(t *testing.T) {
	ctx := context.Background()

	t.Run("successful tools are recorded", func(t *testing.T) {
		rec := &testutil.FakeRecorder{}
		p := testutil.NewFakeProvider(
			"Gravity pulls.",
			`{"title":"Gravity","questions":[{"question":"g?","options":["9.8","1"],"correctAnswerIndex":0,"explanation":"Earth."}]}`,
			`{"title":"Plan","schedule":[{"day":"Day 1","focus":"Forces","tasks":[]}],"tips":[]}`,
			"Newton [wiki](https://en.wikipedia.org/wiki/Gravity)",
		)
		svc := NewService(p, WithRecorder(rec))

		_, err := svc.Explain(ctx, "Gravity", LevelSimple)
		require.NoError(t, err)
		_, err = svc.GenerateQuiz(ctx, "Gravity")
		require.NoError(t, err)
		_, err = svc.StudyPlan(ctx, "Physics", 2)
		require.NoError(t, err)
		_, err = svc.Research(ctx, "who described gravity")
		require.NoError(t, err)

		got := rec.All()
		require.Len(t, got, 4)
		assert.Equal(t, testutil.RecordedResult{Tool: ToolExplainer, Input: "Gravity", Output: "Gravity pulls."}, got[0])
		assert.Equal(t, ToolQuiz, got[1].Tool)
		assert.Contains(t, got[1].Output, "- **A. 9.8**")
		assert.Equal(t, ToolPlanner, got[2].Tool)
		assert.Equal(t, "Physics (2 days)", got[2].Input)
		assert.Equal(t, ToolResearch, got[3].Tool)
		assert.Contains(t, got[3].Output, "### Sources\n- **wiki** https://en.wikipedia.org/wiki/Gravity")
	})

	t.Run("failures are not recorded", func(t *testing.T) {
		rec := &testutil.FakeRecorder{}
		p := testutil.NewFakeProvider()
		p.Err = errors.New("boom")

		_, err := NewService(p, WithRecorder(rec)).Explain(ctx, "x", LevelSimple)
		require.Error(t, err)
		assert.Empty(t, rec.All())
	})

	t.Run("recorder errors do not fail the tool", func(t *testing.T) {
		rec := &testutil.FakeRecorder{Err: errors.New("disk full")}
		got, err := NewService(testutil.NewFakeProvider("ok"), WithRecorder(rec)).Explain(ctx, "x", LevelDetailed)
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
	})
}

func TestQuizMarkdown(t *testing.T) {
	q := &Quiz{Title: "Space", Questions: []Question{{
		Question:           "Largest planet?",
		Options:            []string{"Mars", "Jupiter"},
		CorrectAnswerIndex: 1,
		Explanation:        "Jupiter is largest.",
	}}}

	assert.Equal(t, "# Space\n\n## 1. Largest planet?\n- A. Mars\n- **B. Jupiter**\nJupiter is largest.", q.Markdown())
}

func TestResearchMarkdown(t *testing.T) {
	r := &ResearchResult{Content: "Answer"}
	assert.Equal(t, "Answer", r.Markdown())

	r.Sources = []llm.Source{{Title: "NASA", URI: "https://nasa.gov"}}
	assert.Equal(t, "Answer\n\n### Sources\n- **NASA** https://nasa.gov", r.Markdown())
}
