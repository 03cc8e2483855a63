package setup

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/yolodolo42/edumind/internal/auth"
	"github.com/yolodolo42/edumind/internal/llm"
)

// SetupStatus represents the current setup state
type SetupStatus struct {
	HasProvider bool
	IsComplete  bool
	ProviderID  llm.ProviderID
	KeySource   auth.KeySource
}

// DetectSetupStatus checks the current setup state
func DetectSetupStatus(dataDir string) (*SetupStatus, error) {
	status := &SetupStatus{}

	authManager, err := auth.NewManager(dataDir)
	if err != nil {
		return status, nil // No auth setup yet
	}

	connected := authManager.ListConnected()
	if len(connected) > 0 {
		status.HasProvider = true
		status.ProviderID = authManager.GetDefaultProvider()
		if !authManager.HasCredential(status.ProviderID) {
			status.ProviderID = connected[0]
		}
		status.KeySource = authManager.KeySource(status.ProviderID)
	}

	status.IsComplete = status.HasProvider

	return status, nil
}

// NeedsSetup returns true if interactive setup should run
func NeedsSetup(dataDir string) bool {
	status, _ := DetectSetupStatus(dataDir)
	return !status.IsComplete
}

// PrintEnvInstructions prints setup instructions for non-interactive environments
func PrintEnvInstructions() {
	fmt.Println("edumind requires an AI provider API key.")
	fmt.Println("")
	fmt.Println("Set one of these environment variables:")
	for _, id := range llm.AllProviderIDs() {
		fmt.Printf("  %s=...   (%s)\n", llm.EnvVarForProvider(id), id)
	}
	fmt.Println("")
	fmt.Println("Or run 'edumind auth connect <provider>' or 'edumind setup' in a terminal.")
}

// IsInteractive returns true if running in a terminal
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
