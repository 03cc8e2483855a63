package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/yolodolo42/edumind/internal/config"
	"github.com/yolodolo42/edumind/internal/ui"
)

// printMarkdown writes content rendered in the configured style.
func printMarkdown(w io.Writer, s config.Settings, content string) error {
	if s.Render.Style == config.StyleRich {
		out, err := ui.RenderRich(content, s.Render.Width)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, out)
		return err
	}
	_, err := fmt.Fprintln(w, ui.RenderMarkdown(s.Render.Width, content))
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
