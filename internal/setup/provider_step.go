package setup

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yolodolo42/edumind/internal/auth"
	"github.com/yolodolo42/edumind/internal/llm"
)

// KeyValidator checks an API key before it is saved.
type KeyValidator func(ctx context.Context, id llm.ProviderID, key string) error

// PingProvider validates a key with a minimal chat request.
func PingProvider(ctx context.Context, id llm.ProviderID, key string) error {
	provider, err := llm.New(ctx, id, key, "")
	if err != nil {
		return err
	}
	if c, ok := provider.(io.Closer); ok {
		defer func() {
			_ = c.Close()
		}()
	}

	_, err = provider.Chat(ctx, &llm.ChatRequest{
		SystemPrompt: "You are a test assistant.",
		Messages:     llm.UserMessage("Say 'ok' and nothing else."),
		MaxTokens:    10,
	})
	if err != nil {
		return fmt.Errorf("API test failed: %w", err)
	}
	return nil
}

// validateKey validates the API key by making a test API call
func (m WizardModel) validateKey() tea.Cmd {
	apiKey := m.apiKeyInput.Value()
	provider := m.selectedProvider
	validate := m.validate

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := validate(ctx, provider, apiKey); err != nil {
			return keyValidatedMsg{success: false, err: err}
		}
		return keyValidatedMsg{success: true}
	}
}

// saveProviderKey saves the API key to auth.json and makes it the default
func (m WizardModel) saveProviderKey() error {
	authManager, err := auth.NewManager(m.dataDir)
	if err != nil {
		return fmt.Errorf("failed to create auth manager: %w", err)
	}

	if err := authManager.SetAPIKey(m.selectedProvider, m.apiKeyInput.Value()); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}

	if err := authManager.SetDefaultProvider(m.selectedProvider); err != nil {
		return fmt.Errorf("failed to set default provider: %w", err)
	}

	return nil
}
