package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/yolodolo42/edumind/internal/llm"
	"github.com/yolodolo42/edumind/internal/setup"
	"github.com/yolodolo42/edumind/internal/study"
)

var explainCmd = &cobra.Command{
	Use:   "explain <topic>",
	Short: "Explain a concept",
	Long: `Explain a concept at one of two depths.

  simple    - an analogy-first explanation for beginners
  detailed  - a structured explanation with worked detail (default)`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExplain,
}

var quizCmd = &cobra.Command{
	Use:   "quiz <topic>",
	Short: "Generate and take a practice quiz",
	Long: `Generate a five-question multiple-choice quiz on a topic.

In a terminal the quiz is played interactively. Use --print to write it as
text instead, or --json for the raw quiz.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuiz,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Analyze a diagram or photographed problem",
	Long: `Analyze an image file or a base64 data URL.

PNG, JPEG, WebP and GIF images up to 20 MB are accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var researchCmd = &cobra.Command{
	Use:   "research <query>",
	Short: "Research a topic with cited sources",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResearch,
}

var planCmd = &cobra.Command{
	Use:   "plan <subjects>",
	Short: "Build a day-by-day study plan",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(planCmd)

	explainCmd.Flags().StringP("level", "l", string(study.LevelDetailed), "explanation depth (simple or detailed)")

	quizCmd.Flags().Bool("json", false, "print the quiz as JSON")
	quizCmd.Flags().Bool("print", false, "print the quiz instead of playing it")

	analyzeCmd.Flags().StringP("prompt", "p", "", "question to ask about the image")

	researchCmd.Flags().Bool("json", false, "print the answer and sources as JSON")

	planCmd.Flags().IntP("days", "d", study.DefaultPlanDays, fmt.Sprintf("number of days (%d-%d)", study.MinPlanDays, study.MaxPlanDays))
	planCmd.Flags().Bool("json", false, "print the plan as JSON")
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runExplain(cmd *cobra.Command, args []string) error {
	levelFlag, _ := cmd.Flags().GetString("level")
	level, err := study.ParseLevel(levelFlag)
	if err != nil {
		return err
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	svc, err := rt.service(cmd.Context())
	if err != nil {
		return err
	}

	text, err := svc.Explain(cmd.Context(), joinArgs(args), level)
	if err != nil {
		return err
	}
	return printMarkdown(cmd.OutOrStdout(), rt.settings, text)
}

func runQuiz(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	printOnly, _ := cmd.Flags().GetBool("print")

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	svc, err := rt.service(cmd.Context())
	if err != nil {
		return err
	}

	q, err := svc.GenerateQuiz(cmd.Context(), joinArgs(args))
	if err != nil {
		return err
	}

	switch {
	case asJSON:
		return printJSON(cmd.OutOrStdout(), q)
	case printOnly || !setup.IsInteractive():
		return printMarkdown(cmd.OutOrStdout(), rt.settings, q.Markdown())
	}

	program := tea.NewProgram(quizProgram{view: newQuizView(q, rt.settings.Render.Width)}, tea.WithContext(cmd.Context()))
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("quiz: %w", err)
	}
	if m, ok := final.(quizProgram); ok && m.view.finished() {
		fmt.Fprintf(cmd.OutOrStdout(), "Final score: %d/%d\n", m.view.session.Score(), m.view.session.Total())
	}
	return nil
}

// loadImageArg accepts a path or a data URL.
func loadImageArg(arg string) (llm.Image, error) {
	if strings.HasPrefix(arg, "data:") {
		return study.DecodeImage(arg)
	}
	return study.LoadImage(arg)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	prompt, _ := cmd.Flags().GetString("prompt")

	img, err := loadImageArg(args[0])
	if err != nil {
		return err
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	svc, err := rt.service(cmd.Context())
	if err != nil {
		return err
	}

	text, err := svc.AnalyzeImage(cmd.Context(), img, prompt)
	if errors.Is(err, study.ErrImagesUnsupported) {
		return fmt.Errorf("%w; pick a vision model with --model", err)
	}
	if err != nil {
		return err
	}
	return printMarkdown(cmd.OutOrStdout(), rt.settings, text)
}

func runResearch(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	svc, err := rt.service(cmd.Context())
	if err != nil {
		return err
	}

	result, err := svc.Research(cmd.Context(), joinArgs(args))
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}
	return printMarkdown(cmd.OutOrStdout(), rt.settings, result.Markdown())
}

func runPlan(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")
	asJSON, _ := cmd.Flags().GetBool("json")

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	svc, err := rt.service(cmd.Context())
	if err != nil {
		return err
	}

	plan, err := svc.StudyPlan(cmd.Context(), joinArgs(args), days)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), plan)
	}
	return printMarkdown(cmd.OutOrStdout(), rt.settings, plan.Markdown())
}
