package ui

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/yolodolo42/edumind/internal/markdown"
)

const minWrapWidth = 20

// RenderBlocks styles classified Markdown blocks for the terminal, word
// wrapping paragraphs and list items to width. One output line is produced per
// block before wrapping, so blank spacers keep their vertical rhythm.
func RenderBlocks(width int, blocks []markdown.Block) string {
	if len(blocks) == 0 {
		return ""
	}
	if width < minWrapWidth {
		width = minWrapWidth
	}

	lines := make([]string, 0, len(blocks))
	for _, blk := range blocks {
		lines = append(lines, renderBlock(width, blk))
	}
	return strings.Join(lines, "\n")
}

// RenderMarkdown classifies content and renders it in one step.
func RenderMarkdown(width int, content string) string {
	return RenderBlocks(width, markdown.Render(content))
}

func renderBlock(width int, blk markdown.Block) string {
	switch blk.Kind {
	case markdown.BlockHeading:
		return renderHeading(width, blk)
	case markdown.BlockListItem:
		body := wordwrap.String(RenderSpans(blk.Spans), width-2)
		parts := strings.Split(body, "\n")
		for i := range parts {
			if i == 0 {
				parts[i] = BulletStyle.Render(SymbolBullet) + " " + parts[i]
			} else {
				parts[i] = "  " + parts[i]
			}
		}
		return strings.Join(parts, "\n")
	case markdown.BlockBlank:
		return ""
	default:
		return wordwrap.String(RenderSpans(blk.Spans), width)
	}
}

func renderHeading(width int, blk markdown.Block) string {
	text := wordwrap.String(blk.Text, width)
	switch blk.Level {
	case 1:
		return H1Style.Render(text)
	case 2:
		return H2Style.Render(text)
	default:
		return H3Style.Render(strings.ToUpper(text))
	}
}

// RenderSpans styles inline spans and concatenates them.
func RenderSpans(spans []markdown.Span) string {
	var b strings.Builder
	for _, s := range spans {
		switch s.Kind {
		case markdown.SpanBold:
			b.WriteString(BoldSpanStyle.Render(s.Text))
		case markdown.SpanCode:
			b.WriteString(CodeSpanStyle.Render(s.Text))
		default:
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
