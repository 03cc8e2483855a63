package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_Navigate(t *testing.T) {
	s := State{}
	assert.Equal(t, Dashboard, s.Current)
	assert.False(t, s.MenuOpen)

	s = s.ToggleMenu()
	assert.True(t, s.MenuOpen)

	s = s.Navigate(Quiz)
	assert.Equal(t, Quiz, s.Current)
	assert.False(t, s.MenuOpen, "navigating closes the menu")

	s = s.ToggleMenu().ToggleMenu()
	assert.False(t, s.MenuOpen)

	assert.Equal(t, State{Current: Dashboard}, s.ToggleMenu().Back())
}

func TestState_NavigateUnknown(t *testing.T) {
	s := State{Current: Planner, MenuOpen: true}
	assert.Equal(t, s, s.Navigate(View(42)))
}

func TestViewInfo(t *testing.T) {
	assert.Len(t, Tools, 5)
	for _, v := range append([]View{Dashboard}, Tools...) {
		assert.NotEmpty(t, v.ID())
		assert.NotEmpty(t, v.Title())
		assert.NotEmpty(t, v.Description())
	}
	assert.Equal(t, "Quiz Gen", Quiz.Title())
	assert.Equal(t, "vision", Vision.String())
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want View
		ok   bool
	}{
		{"research", Research, true},
		{"Quiz Gen", Quiz, true},
		{" PLANNER ", Planner, true},
		{"settings", Dashboard, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
