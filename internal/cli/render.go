package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yolodolo42/edumind/internal/config"
	"github.com/yolodolo42/edumind/internal/markdown"
	"github.com/yolodolo42/edumind/internal/ui"
)

var renderCmd = &cobra.Command{
	Use:   "render [file|-]",
	Short: "Render Markdown in the terminal",
	Long: `Render headings, bullets, bold and code spans the way the study tools
show their answers. Reads stdin when no file (or "-") is given.

  --rich   render full Markdown with glamour
  --html   convert to HTML
  --json   print the classified blocks`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().Bool("rich", false, "render with glamour")
	renderCmd.Flags().Bool("html", false, "write HTML")
	renderCmd.Flags().Bool("json", false, "write the classified blocks as JSON")
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func runRender(cmd *cobra.Command, args []string) error {
	rich, _ := cmd.Flags().GetBool("rich")
	asHTML, _ := cmd.Flags().GetBool("html")
	asJSON, _ := cmd.Flags().GetBool("json")

	content, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch {
	case asJSON:
		return printJSON(w, markdown.Render(content))
	case asHTML:
		html, err := markdown.ToHTML(content)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, html)
		return err
	}

	settings := config.Load(viper.GetViper(), "")
	if rich {
		settings.Render.Style = config.StyleRich
	}
	if settings.Render.Style == config.StyleRich {
		return printMarkdown(w, settings, content)
	}
	_, err = fmt.Fprintln(w, ui.RenderBlocks(settings.Render.Width, markdown.Render(content)))
	return err
}
