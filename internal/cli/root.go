package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yolodolo42/edumind/internal/config"
	"github.com/yolodolo42/edumind/internal/setup"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "edumind",
		Short: "Terminal-first AI study companion",
		Long: `edumind is a study assistant for the terminal.

It explains concepts at two depths, generates practice quizzes, analyzes
diagrams and photographed problems, researches topics with cited sources,
builds day-by-day study plans and reads results aloud.

Run without arguments for the full-screen app.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := config.DataDir()
			if err != nil {
				return err
			}

			if setup.NeedsSetup(dataDir) {
				if !setup.IsInteractive() {
					setup.PrintEnvInstructions()
					return fmt.Errorf("setup required: run edumind interactively or set an API key environment variable")
				}

				result, err := setup.RunWizard(dataDir)
				if err != nil {
					return fmt.Errorf("setup failed: %w", err)
				}

				// If user cancelled setup, exit cleanly
				if result == nil || result.Cancelled {
					return nil
				}
			}

			return RunTUI(cmd.Context())
		},
	}
)

// Execute runs the root command. Cancelling ctx stops long-running commands
// such as serve and the full-screen app.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.edumind/config.yaml)")
	flags.String("provider", "", "AI provider (gemini, openai, anthropic, openrouter)")
	flags.String("model", "", "model ID for the provider")
	flags.Int("width", 0, "wrap width for rendered output")

	_ = viper.BindPFlag("provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("model", flags.Lookup("model"))
	_ = viper.BindPFlag("render.width", flags.Lookup("width"))
}

func initConfig() {
	dataDir, err := config.DataDir()
	cobra.CheckErr(err)

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create config directory: %v\n", err)
	}

	if err := config.Init(viper.GetViper(), cfgFile, dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}
