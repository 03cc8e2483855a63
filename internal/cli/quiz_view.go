package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/yolodolo42/edumind/internal/quiz"
	"github.com/yolodolo42/edumind/internal/study"
	"github.com/yolodolo42/edumind/internal/ui"
)

// quizView plays a quiz.Session with the keyboard. It is embedded by the
// full-screen app and by the standalone quiz program.
type quizView struct {
	session quiz.Session
	cursor  int
	width   int
}

func newQuizView(q *study.Quiz, width int) quizView {
	return quizView{session: quiz.NewSession(q), width: width}
}

func (v quizView) finished() bool {
	return v.session.Finished()
}

func (v quizView) update(msg tea.KeyMsg) quizView {
	if v.session.Finished() {
		return v
	}
	q, ok := v.session.Current()
	if !ok {
		return v
	}

	switch msg.String() {
	case "up", "k":
		if !v.session.Answered() && v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if !v.session.Answered() && v.cursor < len(q.Options)-1 {
			v.cursor++
		}
	case "enter", " ":
		if v.session.Answered() {
			v.session = v.session.Next()
			v.cursor = 0
		} else {
			v.session = v.session.Answer(v.cursor)
		}
	case "n":
		if v.session.Answered() {
			v.session = v.session.Next()
			v.cursor = 0
		}
	default:
		if idx, ok := optionIndex(msg.String(), len(q.Options)); ok && !v.session.Answered() {
			v.cursor = idx
			v.session = v.session.Answer(idx)
		}
	}
	return v
}

// optionIndex maps "1".."9" and "a".."i" to an option index.
func optionIndex(key string, n int) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	var idx int
	switch {
	case c >= '1' && c <= '9':
		idx = int(c - '1')
	case c >= 'a' && c <= 'i':
		idx = int(c - 'a')
	default:
		return 0, false
	}
	return idx, idx < n
}

func (v quizView) view() string {
	q := v.session.Quiz()
	if q == nil {
		return ""
	}
	width := v.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	if v.session.Finished() {
		b.WriteString(ui.TitleStyle.Render("QUIZ COMPLETE"))
		b.WriteString("\n\n")
		b.WriteString(ui.H1Style.Render(fmt.Sprintf("%d/%d", v.session.Score(), v.session.Total())))
		b.WriteString("\n")
		b.WriteString(ui.HelpStyle.Render("FINAL SCORE"))
		return b.String()
	}

	question, _ := v.session.Current()
	current, total := v.session.Progress()
	b.WriteString(ui.TitleStyle.Render(strings.ToUpper(q.Title)))
	b.WriteString("\n")
	b.WriteString(ui.HelpStyle.Render(fmt.Sprintf("Q %d / %d   SCORE: %d", current, total, v.session.Score())))
	b.WriteString("\n\n")
	b.WriteString(ui.H2Style.Render(wordwrap.String(question.Question, width)))
	b.WriteString("\n\n")

	states := v.session.OptionStates()
	for i, opt := range question.Options {
		label := fmt.Sprintf("%c. %s", 'A'+i, opt)
		switch states[i] {
		case quiz.OptionCorrect:
			b.WriteString(ui.OptionCorrectStyle.Render(ui.SymbolCheck + " " + label))
		case quiz.OptionWrong:
			b.WriteString(ui.OptionWrongStyle.Render(ui.SymbolCross + " " + label))
		case quiz.OptionNeutral:
			b.WriteString(ui.OptionNeutralStyle.Render("  " + label))
		default:
			if i == v.cursor {
				b.WriteString(ui.SelectorCursor.Render(ui.SymbolArrow) + " " + ui.SelectorActive.Render(label))
			} else {
				b.WriteString("  " + ui.OptionPendingStyle.Render(label))
			}
		}
		b.WriteString("\n")
	}

	if v.session.Answered() {
		b.WriteString("\n")
		b.WriteString(ui.ExplanationStyle.Render(wordwrap.String("EXPLANATION\n"+question.Explanation, width-4)))
		b.WriteString("\n\n")
		next := "enter: next question"
		if v.session.IsLast() {
			next = "enter: finish quiz"
		}
		b.WriteString(ui.HelpStyle.Render(next))
	} else {
		b.WriteString("\n")
		b.WriteString(ui.HelpStyle.Render("↑/↓ choose • enter answer • 1-9 quick answer"))
	}
	return b.String()
}

// quizProgram runs a single quiz full-screen for `edumind quiz`.
type quizProgram struct {
	view quizView
}

func (m quizProgram) Init() tea.Cmd { return nil }

func (m quizProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
		if m.view.finished() && msg.Type == tea.KeyEnter {
			return m, tea.Quit
		}
		m.view = m.view.update(msg)
	case tea.WindowSizeMsg:
		m.view.width = msg.Width - 2
	}
	return m, nil
}

func (m quizProgram) View() string {
	out := m.view.view()
	if m.view.finished() {
		out += "\n\n" + ui.HelpStyle.Render("enter or q to exit")
	}
	return out + "\n"
}
