package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

// SelectorItem represents an item in the selector
type SelectorItem struct {
	ID          string
	Label       string
	Description string
	Current     bool
}

func (it SelectorItem) display() string {
	if it.Label != "" {
		return it.Label
	}
	return it.ID
}

// Selector is an interactive list selector. Typing narrows the list with a
// fuzzy match on item labels.
type Selector struct {
	title    string
	items    []SelectorItem
	visible  []int
	filter   string
	cursor   int
	selected int
	active   bool
	width    int
}

// NewSelector creates a new selector
func NewSelector(title string, items []SelectorItem) Selector {
	// Find currently selected item
	selected := 0
	for i, item := range items {
		if item.Current {
			selected = i
			break
		}
	}

	s := Selector{
		title:    title,
		items:    items,
		cursor:   selected,
		selected: selected,
		active:   true,
		width:    80,
	}
	s.applyFilter()
	s.cursor = selected
	return s
}

// SetWidth sets the selector width
func (s *Selector) SetWidth(w int) {
	s.width = w
}

// Active returns whether the selector is active
func (s *Selector) Active() bool {
	return s.active
}

// Reset reopens the selector with an empty filter.
func (s *Selector) Reset() {
	s.active = true
	s.filter = ""
	s.applyFilter()
}

// Filter returns the current filter text.
func (s *Selector) Filter() string {
	return s.filter
}

// SetFilter replaces the filter text and moves the cursor to the best match.
func (s *Selector) SetFilter(q string) {
	s.filter = q
	s.applyFilter()
}

// Visible returns the IDs of the items matching the filter, best first.
func (s *Selector) Visible() []string {
	ids := make([]string, len(s.visible))
	for i, idx := range s.visible {
		ids[i] = s.items[idx].ID
	}
	return ids
}

// Selected returns the selected item ID, or empty if cancelled
func (s *Selector) Selected() string {
	if s.selected >= 0 && s.selected < len(s.items) {
		return s.items[s.selected].ID
	}
	return ""
}

// Cancelled returns whether the selector was cancelled
func (s *Selector) Cancelled() bool {
	return !s.active && s.selected == -1
}

func (s *Selector) applyFilter() {
	s.cursor = 0
	s.visible = s.visible[:0]
	if s.filter == "" {
		for i := range s.items {
			s.visible = append(s.visible, i)
		}
		return
	}
	labels := make([]string, len(s.items))
	for i, it := range s.items {
		labels[i] = it.display()
	}
	for _, m := range fuzzy.Find(s.filter, labels) {
		s.visible = append(s.visible, m.Index)
	}
}

// Update handles selector input
func (s *Selector) Update(msg tea.Msg) (*Selector, tea.Cmd) {
	if !s.active {
		return s, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch keyMsg.Type {
	case tea.KeyUp, tea.KeyCtrlP:
		if s.cursor > 0 {
			s.cursor--
		}
	case tea.KeyDown, tea.KeyCtrlN:
		if s.cursor < len(s.visible)-1 {
			s.cursor++
		}
	case tea.KeyEnter:
		if len(s.visible) == 0 {
			return s, nil
		}
		s.selected = s.visible[s.cursor]
		s.active = false
	case tea.KeyEsc:
		if s.filter != "" {
			s.SetFilter("")
			return s, nil
		}
		s.selected = -1
		s.active = false
	case tea.KeyBackspace:
		if s.filter != "" {
			r := []rune(s.filter)
			s.SetFilter(string(r[:len(r)-1]))
		}
	case tea.KeyRunes, tea.KeySpace:
		s.SetFilter(s.filter + string(keyMsg.Runes))
	}

	return s, nil
}

// View renders the selector
func (s *Selector) View() string {
	if !s.active {
		return ""
	}

	var b strings.Builder

	b.WriteString(HelpStyle.Render(s.title + " (type to filter, ↑/↓ navigate, enter select, esc cancel)"))
	b.WriteString("\n")
	if s.filter != "" {
		b.WriteString(PromptStyle.Render(SymbolPrompt) + " " + s.filter)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(s.visible) == 0 {
		b.WriteString(SelectorDim.Render("  no matches"))
		b.WriteString("\n")
	}

	for pos, idx := range s.visible {
		item := s.items[idx]
		isCursor := pos == s.cursor

		if isCursor {
			b.WriteString(SelectorCursor.Render(SymbolArrow) + " ")
		} else {
			b.WriteString("  ")
		}

		label := fmt.Sprintf("%-24s", item.display())
		if isCursor {
			b.WriteString(SelectorActive.Render(label))
		} else {
			b.WriteString(SelectorItemStyle.Render(label))
		}

		if item.Description != "" {
			desc := item.Description
			if item.Current {
				desc += " (current)"
			}
			b.WriteString(SelectorDim.Render(Truncate(desc, s.width-28)))
		}

		b.WriteString("\n")
	}

	return b.String()
}
