package ui

import (
	"fmt"
	"strings"
)

// Table is a titled grid of cells for plain terminal output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// KVItem is one key/value line.
type KVItem struct {
	Key   string
	Value string
}

// KV is a titled list of aligned key/value pairs.
type KV struct {
	Title string
	Items []KVItem
}

// RenderKV renders kv with keys padded to a shared column (capped at 24).
func RenderKV(width int, kv *KV) string {
	var b strings.Builder
	if kv.Title != "" {
		b.WriteString(TitleStyle.Render(kv.Title))
		b.WriteString("\n")
	}
	maxKey := 0
	for _, it := range kv.Items {
		if len(it.Key) > maxKey {
			maxKey = len(it.Key)
		}
	}
	if maxKey > 24 {
		maxKey = 24
	}

	for _, it := range kv.Items {
		key := it.Key
		if len(key) > maxKey {
			key = key[:maxKey]
		}
		line := fmt.Sprintf("%-*s  %s", maxKey, key, it.Value)
		b.WriteString(Truncate(line, width))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderTable renders t, shrinking the rightmost columns until it fits width.
func RenderTable(width int, t *Table) string {
	cols := len(t.Headers)
	if cols == 0 {
		return ""
	}

	colW := make([]int, cols)
	for c := 0; c < cols; c++ {
		colW[c] = len(t.Headers[c])
	}
	for _, row := range t.Rows {
		for c := 0; c < cols && c < len(row); c++ {
			if l := len(row[c]); l > colW[c] {
				colW[c] = l
			}
		}
	}

	sep := 3 // " | "
	avail := width
	if avail < minWrapWidth {
		avail = minWrapWidth
	}
	for totalWidth(colW, sep) > avail {
		shrunk := false
		for c := cols - 1; c >= 0; c-- {
			if colW[c] > 6 {
				colW[c]--
				shrunk = true
				break
			}
		}
		if !shrunk {
			break
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString(TitleStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(renderTableRow(t.Headers, colW))
	b.WriteString("\n")
	b.WriteString(renderTableSep(colW, sep))
	for _, row := range t.Rows {
		b.WriteString("\n")
		b.WriteString(renderTableRow(row, colW))
	}
	return b.String()
}

func totalWidth(colW []int, sep int) int {
	total := 0
	for _, w := range colW {
		total += w
	}
	total += sep * (len(colW) - 1)
	return total
}

func renderTableSep(colW []int, sep int) string {
	var b strings.Builder
	for c, w := range colW {
		if c > 0 {
			b.WriteString(strings.Repeat("-", sep))
		}
		b.WriteString(strings.Repeat("-", w))
	}
	return b.String()
}

func renderTableRow(cells []string, colW []int) string {
	var b strings.Builder
	for c, w := range colW {
		if c > 0 {
			b.WriteString(" | ")
		}
		val := ""
		if c < len(cells) {
			val = cells[c]
		}
		b.WriteString(padRight(Truncate(val, w), w))
	}
	return strings.TrimRight(b.String(), " ")
}

func padRight(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}

// Truncate shortens s to w bytes, ending in "..." when there is room.
func Truncate(s string, w int) string {
	if w <= 0 || len(s) <= w {
		return s
	}
	if w <= 3 {
		return s[:w]
	}
	return s[:w-3] + "..."
}
