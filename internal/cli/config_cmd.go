package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yolodolo42/edumind/internal/config"
	"github.com/yolodolo42/edumind/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configShowCmd.Flags().Bool("json", false, "print settings as JSON")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	v := viper.GetViper()
	settings := config.Redacted(v)
	if asJSON {
		return printJSON(cmd.OutOrStdout(), settings)
	}

	flat := make(map[string]string)
	flatten("", settings, flat)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := &ui.KV{Title: "Configuration"}
	if f := v.ConfigFileUsed(); f != "" {
		kv.Items = append(kv.Items, ui.KVItem{Key: "file", Value: f})
	}
	for _, k := range keys {
		kv.Items = append(kv.Items, ui.KVItem{Key: k, Value: flat[k]})
	}

	width := config.Load(v, "").Render.Width
	_, err := fmt.Fprintln(cmd.OutOrStdout(), ui.RenderKV(width, kv))
	return err
}

// flatten turns nested settings into dotted keys.
func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = fmt.Sprint(v)
	}
}
