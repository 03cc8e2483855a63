package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yolodolo42/edumind/internal/auth"
	"github.com/yolodolo42/edumind/internal/config"
	"github.com/yolodolo42/edumind/internal/llm"
	"github.com/yolodolo42/edumind/internal/setup"
	"github.com/yolodolo42/edumind/internal/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage AI provider API keys",
	Long:  `Connect, disconnect, and manage API keys for AI providers.`,
}

var authConnectCmd = &cobra.Command{
	Use:   "connect [provider]",
	Short: "Connect to an AI provider",
	Long: `Connect to an AI provider by providing an API key.

Supported providers:
  gemini      - Google Gemini (default; images, structured output, cited research)
  openai      - OpenAI GPT (images, read-aloud)
  anthropic   - Anthropic Claude
  openrouter  - OpenRouter (many models behind one key)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthConnect,
}

var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connected providers",
	RunE:  runAuthList,
}

var authDisconnectCmd = &cobra.Command{
	Use:   "disconnect <provider>",
	Short: "Remove a stored key",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthDisconnect,
}

var authDefaultCmd = &cobra.Command{
	Use:   "default [provider]",
	Short: "Get or set the default provider",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthDefault,
}

var authTestCmd = &cobra.Command{
	Use:   "test <provider>",
	Short: "Test a provider's key with a small request",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthTest,
}

// keyValidator checks keys for `auth connect --test` and `auth test`. Tests
// replace it.
var keyValidator setup.KeyValidator = setup.PingProvider

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authConnectCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authDisconnectCmd)
	authCmd.AddCommand(authDefaultCmd)
	authCmd.AddCommand(authTestCmd)

	authConnectCmd.Flags().String("key", "", "API key (will prompt if not provided)")
	authConnectCmd.Flags().Bool("test", false, "validate the key before saving it")
}

func getAuthManager() (*auth.Manager, error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, err
	}
	return auth.NewManager(dataDir)
}

func parseProvider(s string) (llm.ProviderID, error) {
	id := llm.ProviderID(strings.ToLower(strings.TrimSpace(s)))
	if !llm.IsKnownProvider(id) {
		return "", fmt.Errorf("unknown provider: %s", s)
	}
	return id, nil
}

func runAuthConnect(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	var providerID llm.ProviderID
	if len(args) == 0 {
		fmt.Fprintln(w, "Select a provider to connect:")
		providers := llm.AllProviderIDs()
		for i, p := range providers {
			fmt.Fprintf(w, "  %d. %-11s %s\n", i+1, p, auth.ProviderNotes(p))
		}
		fmt.Fprint(w, "\nEnter number: ")

		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || choice < 1 || choice > len(providers) {
			return fmt.Errorf("invalid selection")
		}
		providerID = providers[choice-1]
	} else {
		id, err := parseProvider(args[0])
		if err != nil {
			return err
		}
		providerID = id
	}

	manager, err := getAuthManager()
	if err != nil {
		return err
	}

	apiKey, _ := cmd.Flags().GetString("key")
	if apiKey == "" {
		if envVar := llm.EnvVarForProvider(providerID); envVar != "" {
			fmt.Fprintf(w, "Tip: You can also set the %s environment variable\n", envVar)
		}
		fmt.Fprintf(w, "%s\n\n", auth.KeyHint(providerID))

		fmt.Fprintf(w, "Enter API key for %s: ", providerID)
		keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		apiKey = strings.TrimSpace(string(keyBytes))
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required")
	}

	if test, _ := cmd.Flags().GetBool("test"); test {
		fmt.Fprintf(w, "Testing connection to %s...\n", providerID)
		if err := pingWithTimeout(cmd, providerID, apiKey); err != nil {
			return err
		}
	}

	if err := manager.SetAPIKey(providerID, apiKey); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	if len(manager.ListConnected()) == 1 {
		_ = manager.SetDefaultProvider(providerID)
	}

	fmt.Fprintf(w, "%s Connected to %s\n", ui.SymbolCheck, providerID)
	return nil
}

func pingWithTimeout(cmd *cobra.Command, id llm.ProviderID, key string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()
	return keyValidator(ctx, id, key)
}

func runAuthList(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	manager, err := getAuthManager()
	if err != nil {
		return err
	}

	connected := manager.ListConnected()
	defaultProvider := manager.GetDefaultProvider()

	if len(connected) == 0 {
		fmt.Fprintln(w, "No providers connected.")
		fmt.Fprintln(w, "\nUse 'edumind auth connect <provider>' to connect a provider.")
		fmt.Fprintln(w, "Or set one of these environment variables:")
		for _, id := range llm.AllProviderIDs() {
			if envVar := llm.EnvVarForProvider(id); envVar != "" {
				fmt.Fprintf(w, "  %s\n", envVar)
			}
		}
		return nil
	}

	rows := make([][]string, 0, len(connected))
	for _, id := range connected {
		marker := ""
		if id == defaultProvider {
			marker = "*"
		}
		key, _ := manager.GetAPIKey(id)
		rows = append(rows, []string{marker, string(id), string(manager.KeySource(id)), auth.MaskKey(key)})
	}
	fmt.Fprintln(w, ui.RenderTable(80, &ui.Table{
		Title:   "Connected providers",
		Headers: []string{" ", "Provider", "Source", "Key"},
		Rows:    rows,
	}))
	fmt.Fprintln(w, "\n* = default provider")
	return nil
}

func runAuthDisconnect(cmd *cobra.Command, args []string) error {
	providerID, err := parseProvider(args[0])
	if err != nil {
		return err
	}

	manager, err := getAuthManager()
	if err != nil {
		return err
	}

	if err := manager.RemoveCredential(providerID); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Disconnected from %s\n", providerID)
	if source := manager.KeySource(providerID); source != auth.SourceNone {
		fmt.Fprintf(cmd.OutOrStdout(), "Note: a key is still provided by %s\n", source)
	}
	return nil
}

func runAuthDefault(cmd *cobra.Command, args []string) error {
	manager, err := getAuthManager()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Default provider: %s\n", manager.GetDefaultProvider())
		return nil
	}

	providerID, err := parseProvider(args[0])
	if err != nil {
		return err
	}
	if !manager.HasCredential(providerID) {
		return fmt.Errorf("provider %s is not connected. Connect it first with 'edumind auth connect %s'", providerID, providerID)
	}

	if err := manager.SetDefaultProvider(providerID); err != nil {
		return fmt.Errorf("failed to set default provider: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Default provider set to: %s\n", providerID)
	return nil
}

func runAuthTest(cmd *cobra.Command, args []string) error {
	providerID, err := parseProvider(args[0])
	if err != nil {
		return err
	}

	manager, err := getAuthManager()
	if err != nil {
		return err
	}

	apiKey, err := manager.GetAPIKey(providerID)
	if err != nil {
		return fmt.Errorf("no credentials found for %s", providerID)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Testing connection to %s (key %s from %s)...\n",
		providerID, auth.MaskKey(apiKey), manager.KeySource(providerID))

	if err := pingWithTimeout(cmd, providerID, apiKey); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s is working\n", ui.SymbolCheck, providerID)
	return nil
}
