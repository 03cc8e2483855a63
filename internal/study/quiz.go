package study

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yolodolo42/edumind/internal/llm"
)

// QuizQuestionCount is how many questions GenerateQuiz asks for.
const QuizQuestionCount = 5

// ErrInvalidQuiz is returned when the model's quiz cannot be played.
var ErrInvalidQuiz = errors.New("invalid quiz")

// Quiz is a multiple-choice quiz.
type Quiz struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Question is one multiple-choice question.
type Question struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
}

var quizSchema = llm.Object(map[string]*llm.Schema{
	"title": llm.String(),
	"questions": llm.ArrayOf(llm.Object(map[string]*llm.Schema{
		"question":           llm.String(),
		"options":            llm.ArrayOf(llm.String()),
		"correctAnswerIndex": llm.Integer(),
		"explanation":        llm.String(),
	}, "question", "options", "correctAnswerIndex", "explanation")),
}, "title", "questions")

// GenerateQuiz asks for a QuizQuestionCount-question quiz about topic.
func (s *Service) GenerateQuiz(ctx context.Context, topic string) (*Quiz, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyInput
	}

	resp, err := s.chat(ctx, ToolQuiz, &llm.ChatRequest{
		Messages: llm.UserMessage(fmt.Sprintf("Create a multiple-choice quiz about \"%s\" with %d questions.", topic, QuizQuestionCount)),
		Schema:   quizSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	var quiz Quiz
	if err := decodeJSON(resp.Content, &quiz); err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}
	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(quiz.Title) == "" {
		quiz.Title = topic
	}
	s.record(ctx, ToolQuiz, topic, quiz.Markdown())
	return &quiz, nil
}

// Validate checks that every question can be answered and scored.
func (q *Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidQuiz)
	}
	for i, question := range q.Questions {
		if strings.TrimSpace(question.Question) == "" {
			return fmt.Errorf("%w: question %d is empty", ErrInvalidQuiz, i+1)
		}
		if len(question.Options) < 2 {
			return fmt.Errorf("%w: question %d has %d options", ErrInvalidQuiz, i+1, len(question.Options))
		}
		if question.CorrectAnswerIndex < 0 || question.CorrectAnswerIndex >= len(question.Options) {
			return fmt.Errorf("%w: question %d answer index %d out of range", ErrInvalidQuiz, i+1, question.CorrectAnswerIndex)
		}
	}
	return nil
}

// Markdown renders the quiz with answers marked, for history and export.
func (q *Quiz) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", q.Title)
	for i, question := range q.Questions {
		fmt.Fprintf(&b, "\n## %d. %s\n", i+1, question.Question)
		for j, opt := range question.Options {
			if j == question.CorrectAnswerIndex {
				fmt.Fprintf(&b, "- **%c. %s**\n", 'A'+j, opt)
			} else {
				fmt.Fprintf(&b, "- %c. %s\n", 'A'+j, opt)
			}
		}
		if question.Explanation != "" {
			fmt.Fprintf(&b, "%s\n", question.Explanation)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
