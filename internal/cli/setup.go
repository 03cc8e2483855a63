package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yolodolo42/edumind/internal/config"
	"github.com/yolodolo42/edumind/internal/setup"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the setup wizard",
	Long: `Run the interactive setup wizard to configure edumind.

The wizard picks an AI provider, checks your API key with a small request and
saves it as the default. Run it again to switch providers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !setup.IsInteractive() {
			setup.PrintEnvInstructions()
			return fmt.Errorf("setup requires an interactive terminal")
		}

		dataDir, err := config.DataDir()
		if err != nil {
			return err
		}

		result, err := setup.RunWizard(dataDir)
		if err != nil {
			return fmt.Errorf("setup failed: %w", err)
		}

		if result == nil || result.Cancelled {
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\nSetup complete! Using %s. Run 'edumind' to start.\n", result.ProviderID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
