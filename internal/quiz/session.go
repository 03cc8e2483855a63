// Package quiz tracks progress through a generated quiz.
package quiz

import (
	"github.com/yolodolo42/edumind/internal/study"
)

// OptionState is how an answer option should be displayed.
type OptionState int

const (
	// OptionPending means the question is still open.
	OptionPending OptionState = iota
	// OptionCorrect marks the right answer once the question is answered.
	OptionCorrect
	// OptionWrong marks the user's incorrect pick.
	OptionWrong
	// OptionNeutral marks every other option.
	OptionNeutral
)

func (s OptionState) String() string {
	switch s {
	case OptionCorrect:
		return "correct"
	case OptionWrong:
		return "wrong"
	case OptionNeutral:
		return "neutral"
	default:
		return "pending"
	}
}

// Session is an immutable snapshot of a quiz in progress. Methods that
// change state return a new Session.
type Session struct {
	quiz     *study.Quiz
	index    int
	selected int
	answered bool
	score    int
	finished bool
}

// NewSession starts q at the first question.
func NewSession(q *study.Quiz) Session {
	return Session{quiz: q, selected: -1}
}

// Quiz returns the underlying quiz.
func (s Session) Quiz() *study.Quiz { return s.quiz }

// Index is the zero-based current question.
func (s Session) Index() int { return s.index }

// Total is the number of questions.
func (s Session) Total() int {
	if s.quiz == nil {
		return 0
	}
	return len(s.quiz.Questions)
}

// Score is the number of correct answers so far.
func (s Session) Score() int { return s.score }

// Answered reports whether the current question shows its explanation.
func (s Session) Answered() bool { return s.answered }

// Selected is the chosen option, or -1.
func (s Session) Selected() int { return s.selected }

// Finished reports whether the last question has been passed.
func (s Session) Finished() bool { return s.finished }

// Current returns the open question. ok is false when the quiz is empty or
// finished.
func (s Session) Current() (study.Question, bool) {
	if s.finished || s.index >= s.Total() {
		return study.Question{}, false
	}
	return s.quiz.Questions[s.index], true
}

// IsLast reports whether the current question is the final one.
func (s Session) IsLast() bool {
	return s.index == s.Total()-1
}

// Progress is the 1-based position for display, e.g. "Q 2 / 5".
func (s Session) Progress() (current, total int) {
	return s.index + 1, s.Total()
}

// Answer picks option i. It is ignored once the question is answered, when
// the quiz is finished, or when i is out of range.
func (s Session) Answer(i int) Session {
	q, ok := s.Current()
	if !ok || s.answered || i < 0 || i >= len(q.Options) {
		return s
	}

	s.selected = i
	s.answered = true
	if i == q.CorrectAnswerIndex {
		s.score++
	}
	return s
}

// Next moves past an answered question, finishing after the last one.
func (s Session) Next() Session {
	if s.finished || !s.answered {
		return s
	}

	if s.index < s.Total()-1 {
		s.index++
		s.selected = -1
		s.answered = false
		return s
	}

	s.finished = true
	return s
}

// OptionStates returns the display state of each option of the current
// question.
func (s Session) OptionStates() []OptionState {
	q, ok := s.Current()
	if !ok {
		return nil
	}

	states := make([]OptionState, len(q.Options))
	if !s.answered {
		return states
	}
	for i := range states {
		switch {
		case i == q.CorrectAnswerIndex:
			states[i] = OptionCorrect
		case i == s.selected:
			states[i] = OptionWrong
		default:
			states[i] = OptionNeutral
		}
	}
	return states
}
