package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yolodolo42/edumind/internal/history"
	"github.com/yolodolo42/edumind/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved results",
	Long:  `Every successful explanation, quiz, analysis, research answer and plan is saved locally.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent results",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved result",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy-search saved results by input",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistorySearch,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all saved results",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyListCmd.Flags().IntP("limit", "n", history.DefaultListLimit, "maximum results to list")
	historySearchCmd.Flags().IntP("limit", "n", history.DefaultListLimit, "maximum results to list")
	historyShowCmd.Flags().Bool("json", false, "print the record as JSON")
}

func printRecords(cmd *cobra.Command, width int, title string, records []history.Record) error {
	w := cmd.OutOrStdout()
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No saved results.")
		return err
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			strconv.FormatInt(r.ID, 10),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Tool,
			oneLine(r.Input),
		}
	}
	_, err := fmt.Fprintln(w, ui.RenderTable(width, &ui.Table{
		Title:   title,
		Headers: []string{"ID", "When", "Tool", "Input"},
		Rows:    rows,
	}))
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	records, err := rt.history.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return printRecords(cmd, rt.settings.Render.Width, "History", records)
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	query := joinArgs(args)
	records, err := rt.history.Search(cmd.Context(), query, limit)
	if err != nil {
		return err
	}
	return printRecords(cmd, rt.settings.Render.Width, fmt.Sprintf("Results for %q", query), records)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	rec, err := rt.history.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), rec)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, ui.RenderKV(rt.settings.Render.Width, &ui.KV{
		Title: fmt.Sprintf("Result #%d", rec.ID),
		Items: []ui.KVItem{
			{Key: "Tool", Value: rec.Tool},
			{Key: "Input", Value: oneLine(rec.Input)},
			{Key: "Saved", Value: rec.CreatedAt.Local().Format("2006-01-02 15:04:05")},
		},
	}))
	fmt.Fprintln(w)
	return printMarkdown(w, rt.settings, rec.Output)
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	n, err := rt.history.Clear(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d saved results\n", n)
	return nil
}
