package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// RichStyle is the glamour theme used for rich rendering.
const RichStyle = "dracula"

// RenderRich renders full CommonMark through glamour. It is the alternative to
// RenderBlocks when render.style is "rich".
func RenderRich(content string, width int) (string, error) {
	if width < minWrapWidth {
		width = minWrapWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(RichStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}
