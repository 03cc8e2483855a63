// Package view holds the app's navigation state.
package view

import "strings"

// View is a screen of the app.
type View int

const (
	Dashboard View = iota
	Explainer
	Quiz
	Vision
	Research
	Planner
)

type info struct {
	id          string
	title       string
	description string
}

var infos = map[View]info{
	Dashboard: {"dashboard", "Dashboard", "Minimalist AI-powered study companion. Select a tool to begin."},
	Explainer: {"explainer", "Explainer", "Get structured explanations tailored to your level."},
	Quiz:      {"quiz", "Quiz Gen", "Generate practice quizzes on any subject."},
	Vision:    {"vision", "Visual", "Analyze and explain diagrams or problems."},
	Research:  {"research", "Research", "Find credible sources with search grounding."},
	Planner:   {"planner", "Planner", "Organize your week with AI schedules."},
}

// Tools lists the dashboard cards in display order.
var Tools = []View{Explainer, Quiz, Vision, Research, Planner}

// ID is the stable lowercase name, e.g. for history records.
func (v View) ID() string { return infos[v].id }

// Title is the card heading.
func (v View) Title() string { return infos[v].title }

// Description is the card blurb.
func (v View) Description() string { return infos[v].description }

func (v View) String() string { return v.ID() }

// Parse looks a view up by ID or title, case-insensitively.
func Parse(s string) (View, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for v, in := range infos {
		if s == in.id || s == strings.ToLower(in.title) {
			return v, true
		}
	}
	return Dashboard, false
}

// State is an immutable navigation snapshot.
type State struct {
	Current  View
	MenuOpen bool
}

// Navigate switches to v and closes the menu.
func (s State) Navigate(v View) State {
	if _, ok := infos[v]; !ok {
		return s
	}
	return State{Current: v}
}

// ToggleMenu opens or closes the navigation menu.
func (s State) ToggleMenu() State {
	s.MenuOpen = !s.MenuOpen
	return s
}

// Back returns to the dashboard.
func (s State) Back() State {
	return s.Navigate(Dashboard)
}
