package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/edumind/internal/study"
)

func sampleQuiz() *study.Quiz {
	return &study.Quiz{
		Title: "Planets",
		Questions: []study.Question{
			{Question: "Largest?", Options: []string{"Mars", "Jupiter", "Venus"}, CorrectAnswerIndex: 1},
			{Question: "Red?", Options: []string{"Mars", "Earth"}, CorrectAnswerIndex: 0},
		},
	}
}

func TestSession_Flow(t *testing.T) {
	s := NewSession(sampleQuiz())

	cur, total := s.Progress()
	assert.Equal(t, 1, cur)
	assert.Equal(t, 2, total)
	assert.Equal(t, -1, s.Selected())
	assert.Equal(t, []OptionState{OptionPending, OptionPending, OptionPending}, s.OptionStates())

	s = s.Answer(1)
	assert.True(t, s.Answered())
	assert.Equal(t, 1, s.Score())
	assert.Equal(t, []OptionState{OptionNeutral, OptionCorrect, OptionNeutral}, s.OptionStates())

	s = s.Next()
	assert.False(t, s.Answered())
	assert.True(t, s.IsLast())
	q, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "Red?", q.Question)

	s = s.Answer(1)
	assert.Equal(t, 1, s.Score())
	assert.Equal(t, []OptionState{OptionCorrect, OptionWrong}, s.OptionStates())

	s = s.Next()
	assert.True(t, s.Finished())
	_, ok = s.Current()
	assert.False(t, ok)
	assert.Nil(t, s.OptionStates())
	assert.Equal(t, 1, s.Score())
}

func TestSession_AnswerIgnoredAfterReveal(t *testing.T) {
	s := NewSession(sampleQuiz()).Answer(0)
	again := s.Answer(1)

	assert.Equal(t, 0, again.Selected())
	assert.Equal(t, 0, again.Score())
}

func TestSession_Immutable(t *testing.T) {
	start := NewSession(sampleQuiz())
	_ = start.Answer(1).Next()

	assert.Equal(t, 0, start.Index())
	assert.False(t, start.Answered())
	assert.Equal(t, 0, start.Score())
}

func TestSession_Guards(t *testing.T) {
	t.Run("next before answer", func(t *testing.T) {
		s := NewSession(sampleQuiz()).Next()
		assert.Equal(t, 0, s.Index())
	})

	t.Run("out of range answer", func(t *testing.T) {
		s := NewSession(sampleQuiz())
		assert.False(t, s.Answer(3).Answered())
		assert.False(t, s.Answer(-1).Answered())
	})

	t.Run("empty quiz", func(t *testing.T) {
		s := NewSession(&study.Quiz{})
		_, ok := s.Current()
		assert.False(t, ok)
		assert.Equal(t, 0, s.Total())
		assert.False(t, s.Answer(0).Answered())
	})

	t.Run("finished is terminal", func(t *testing.T) {
		s := NewSession(sampleQuiz()).Answer(1).Next().Answer(0).Next()
		require.True(t, s.Finished())
		assert.Equal(t, 2, s.Score())
		assert.Equal(t, s, s.Next())
		assert.Equal(t, s, s.Answer(0))
	})
}

func TestOptionState_String(t *testing.T) {
	assert.Equal(t, "pending", OptionPending.String())
	assert.Equal(t, "correct", OptionCorrect.String())
	assert.Equal(t, "wrong", OptionWrong.String())
	assert.Equal(t, "neutral", OptionNeutral.String())
}
