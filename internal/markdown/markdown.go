// Package markdown classifies the restricted Markdown produced by the study
// tools into typed blocks and inline spans. It performs no I/O and keeps no
// state between calls, so it is safe for concurrent use.
package markdown

import (
	"regexp"
	"strings"
)

// BlockKind identifies the variant of a Block.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockListItem  BlockKind = "list_item"
	BlockBlank     BlockKind = "blank"
	BlockParagraph BlockKind = "paragraph"
)

// SpanKind identifies the variant of a Span.
type SpanKind string

const (
	SpanPlain SpanKind = "plain"
	SpanBold  SpanKind = "bold"
	SpanCode  SpanKind = "code"
)

// Span is a styled fragment of a block's text. Delimiters are not included.
type Span struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text"`
}

// Block is one classified line.
//
// Headings carry their text verbatim in Text and have no spans. List items and
// paragraphs carry inline spans. Blank spacers carry nothing.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Level int       `json:"level,omitempty"`
	Text  string    `json:"text,omitempty"`
	Spans []Span    `json:"spans,omitempty"`
}

var headingPrefixes = []struct {
	prefix string
	level  int
}{
	{"### ", 3},
	{"## ", 2},
	{"# ", 1},
}

// inlinePattern matches the shortest **bold** or `code` run. Go's regexp uses
// leftmost-first alternation, so bold wins when both start at the same byte.
var inlinePattern = regexp.MustCompile("\\*\\*.*?\\*\\*|`.*?`")

// Render splits content on line feeds and classifies every line. It returns
// exactly one block per line; the empty string is one empty line and yields a
// single blank spacer.
func Render(content string) []Block {
	lines := strings.Split(content, "\n")
	blocks := make([]Block, len(lines))
	for i, line := range lines {
		blocks[i] = classify(line)
	}
	return blocks
}

func classify(line string) Block {
	for _, h := range headingPrefixes {
		if strings.HasPrefix(line, h.prefix) {
			return Block{Kind: BlockHeading, Level: h.level, Text: line[len(h.prefix):]}
		}
	}

	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		return Block{Kind: BlockListItem, Spans: ParseInline(trimmed[2:])}
	}
	if trimmed == "" {
		return Block{Kind: BlockBlank}
	}
	return Block{Kind: BlockParagraph, Spans: ParseInline(line)}
}

// ParseInline splits text into plain, bold and code spans, scanning left to
// right. Unterminated markers stay in the surrounding plain text. Empty plain
// runs between adjacent matches are dropped.
func ParseInline(text string) []Span {
	matches := inlinePattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		if text == "" {
			return nil
		}
		return []Span{{Kind: SpanPlain, Text: text}}
	}

	spans := make([]Span, 0, 2*len(matches)+1)
	pos := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > pos {
			spans = append(spans, Span{Kind: SpanPlain, Text: text[pos:start]})
		}
		tok := text[start:end]
		if strings.HasPrefix(tok, "**") {
			spans = append(spans, Span{Kind: SpanBold, Text: tok[2 : len(tok)-2]})
		} else {
			spans = append(spans, Span{Kind: SpanCode, Text: tok[1 : len(tok)-1]})
		}
		pos = end
	}
	if pos < len(text) {
		spans = append(spans, Span{Kind: SpanPlain, Text: text[pos:]})
	}
	return spans
}

// PlainText returns the block's text without any delimiters.
func (b Block) PlainText() string {
	if b.Kind == BlockHeading {
		return b.Text
	}
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Plain joins the plain text of blocks with line feeds, so that
// Plain(Render(s)) has the same line count as s.
func Plain(blocks []Block) string {
	lines := make([]string, len(blocks))
	for i, b := range blocks {
		lines[i] = b.PlainText()
	}
	return strings.Join(lines, "\n")
}
