package setup

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/yolodolo42/edumind/internal/ui"
)

var (
	// Box style for welcome/complete screens
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorPrimary).
			Padding(1, 2)

	TitleStyle = ui.TitleStyle

	// Subtitle/description
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ui.ColorDim)

	SuccessStyle = ui.SuccessStyle

	DimStyle = ui.SystemStyle

	ErrorStyle = ui.ErrorStyle

	HelpStyle = ui.HelpStyle

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ui.ColorPrimary)
)
