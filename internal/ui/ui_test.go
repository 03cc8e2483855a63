package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/edumind/internal/markdown"
)

func plain(s string) string {
	return ansi.Strip(s)
}

func TestRenderBlocks_Document(t *testing.T) {
	content := "# Title\n\nSome **bold** and `code`.\n- first\n- second"

	out := plain(RenderBlocks(80, markdown.Render(content)))
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 5)
	assert.Equal(t, "Title", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "Some bold and code.", lines[2])
	assert.Equal(t, SymbolBullet+" first", lines[3])
	assert.Equal(t, SymbolBullet+" second", lines[4])
}

func TestRenderBlocks_Headings(t *testing.T) {
	out := plain(RenderMarkdown(80, "## Section\n### Details"))
	assert.Equal(t, "Section\nDETAILS", out)
}

func TestRenderBlocks_Empty(t *testing.T) {
	assert.Equal(t, "", RenderBlocks(80, nil))
	assert.Equal(t, "", RenderMarkdown(80, ""))
}

func TestRenderBlocks_WrapsParagraphs(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta"
	out := plain(RenderMarkdown(20, text))

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), 20)
	}
	assert.Equal(t, text, strings.Join(strings.Fields(out), " "))
}

func TestRenderBlocks_WrapsListItemsWithHangingIndent(t *testing.T) {
	out := plain(RenderMarkdown(20, "- alpha beta gamma delta epsilon zeta"))
	lines := strings.Split(out, "\n")

	require.Greater(t, len(lines), 1)
	assert.True(t, strings.HasPrefix(lines[0], SymbolBullet+" "))
	for _, line := range lines[1:] {
		assert.True(t, strings.HasPrefix(line, "  "), "continuation %q", line)
	}
}

func TestRenderSpans(t *testing.T) {
	spans := markdown.ParseInline("use `go test` for **speed**")
	assert.Equal(t, "use go test for speed", plain(RenderSpans(spans)))
}

func TestRenderRich(t *testing.T) {
	out, err := RenderRich("# Hello\n\nworld", 40)
	require.NoError(t, err)
	assert.Contains(t, plain(out), "Hello")
	assert.Contains(t, plain(out), "world")
}

func TestRenderTable(t *testing.T) {
	out := plain(RenderTable(80, &Table{
		Title:   "History",
		Headers: []string{"ID", "Tool"},
		Rows:    [][]string{{"1", "explainer"}, {"2", "quiz"}},
	}))

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "History", lines[0])
	assert.Equal(t, "ID | Tool", lines[1])
	assert.Equal(t, "--------------", lines[2])
	assert.Equal(t, "1  | explainer", lines[3])
	assert.Equal(t, "2  | quiz", lines[4])
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Equal(t, "", RenderTable(80, &Table{}))
}

func TestRenderTable_ShrinksToWidth(t *testing.T) {
	out := plain(RenderTable(20, &Table{
		Headers: []string{"Name", "Value"},
		Rows:    [][]string{{"key", strings.Repeat("x", 50)}},
	}))
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), 20)
	}
	assert.Contains(t, out, "...")
}

func TestRenderKV(t *testing.T) {
	out := plain(RenderKV(80, &KV{
		Title: "Config",
		Items: []KVItem{{Key: "provider", Value: "gemini"}, {Key: "width", Value: "80"}},
	}))
	assert.Equal(t, "Config\nprovider  gemini\nwidth     80", out)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		w    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 2, "he"},
		{"hello", 0, "hello"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(tt.in, tt.w))
	}
}

func testItems() []SelectorItem {
	return []SelectorItem{
		{ID: "explainer", Label: "Concept Explainer"},
		{ID: "quiz", Label: "Quiz Generator"},
		{ID: "research", Label: "Research Assistant", Current: true},
	}
}

func typeText(s *Selector, text string) {
	for _, r := range text {
		s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestSelector_StartsOnCurrent(t *testing.T) {
	s := NewSelector("Tools", testItems())
	s.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, s.Active())
	assert.Equal(t, "research", s.Selected())
}

func TestSelector_Navigate(t *testing.T) {
	s := NewSelector("Tools", testItems()[:2])
	s.Update(tea.KeyMsg{Type: tea.KeyDown})
	s.Update(tea.KeyMsg{Type: tea.KeyDown})
	s.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "quiz", s.Selected())
}

func TestSelector_FuzzyFilter(t *testing.T) {
	s := NewSelector("Tools", testItems())
	typeText(&s, "Quiz")

	assert.Equal(t, "Quiz", s.Filter())
	assert.Equal(t, []string{"quiz"}, s.Visible())

	s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "quiz", s.Selected())
}

func TestSelector_FilterNoMatchIgnoresEnter(t *testing.T) {
	s := NewSelector("Tools", testItems())
	typeText(&s, "zzz")

	assert.Empty(t, s.Visible())
	s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, s.Active())
	assert.Contains(t, s.View(), "no matches")
}

func TestSelector_BackspaceAndEsc(t *testing.T) {
	s := NewSelector("Tools", testItems())
	typeText(&s, "Qx")
	s.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "Q", s.Filter())

	s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "", s.Filter())
	assert.Len(t, s.Visible(), 3)
	assert.True(t, s.Active())

	s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, s.Cancelled())
	assert.Equal(t, "", s.Selected())
	assert.Equal(t, "", s.View())
}

func TestPrompt(t *testing.T) {
	p := NewPrompt("Topic", "e.g. photosynthesis")
	assert.True(t, p.Focused())
	assert.Equal(t, "Topic", p.Label())

	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("cells")})
	assert.Equal(t, "cells", p.Value())
	assert.Contains(t, plain(p.View()), "Topic")

	p.Reset()
	assert.Equal(t, "", p.Value())

	p.Blur()
	assert.False(t, p.Focused())
}
