package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary   = lipgloss.Color("63")  // Indigo
	ColorSuccess   = lipgloss.Color("35")  // Green
	ColorWarning   = lipgloss.Color("214") // Gold/yellow
	ColorError     = lipgloss.Color("196") // Red
	ColorDim       = lipgloss.Color("241") // Gray
	ColorAccent    = lipgloss.Color("39")  // Blue
	ColorHighlight = lipgloss.Color("105") // Light indigo
	ColorCodeBg    = lipgloss.Color("236")
	ColorText      = lipgloss.Color("252")
)

const (
	SymbolPrompt   = "❯"
	SymbolBullet   = "●"
	SymbolArrow    = "▸"
	SymbolCheck    = "✓"
	SymbolCross    = "✗"
	SymbolThinking = "◐"
	SymbolSpeaker  = "♪"
)

var (
	PromptStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	SystemStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	SelectorCursor = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	SelectorItemStyle = lipgloss.NewStyle().
				Foreground(ColorText)

	SelectorDim = lipgloss.NewStyle().
			Foreground(ColorDim)

	SelectorActive = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorDim)
)

// Rendered Markdown blocks.
var (
	H1Style = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Underline(true)

	H2Style = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	H3Style = lipgloss.NewStyle().
		Foreground(ColorHighlight).
		Bold(true)

	BulletStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	BoldSpanStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	CodeSpanStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Background(ColorCodeBg)

	SourceStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Underline(true)
)

// Quiz options.
var (
	OptionPendingStyle = lipgloss.NewStyle().
				Foreground(ColorText)

	OptionCorrectStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess).
				Bold(true)

	OptionWrongStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Strikethrough(true)

	OptionNeutralStyle = lipgloss.NewStyle().
				Foreground(ColorDim)

	ExplanationStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				BorderStyle(lipgloss.NormalBorder()).
				BorderLeft(true).
				BorderForeground(ColorAccent).
				PaddingLeft(1)
)
