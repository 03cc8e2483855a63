// Package auth resolves provider API keys from the environment, the config
// file and ~/.edumind/auth.json.
package auth

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/yolodolo42/edumind/internal/llm"
)

// KeySource names where a key was found.
type KeySource string

const (
	SourceNone   KeySource = ""
	SourceEnv    KeySource = "env"
	SourceConfig KeySource = "config"
	SourceStore  KeySource = "auth.json"
)

var envRef = regexp.MustCompile(`\{env:([^}]+)\}`)

// Manager handles authentication for LLM providers
type Manager struct {
	store *Store
}

// NewManager creates a new auth manager
func NewManager(dataDir string) (*Manager, error) {
	store, err := NewStore(dataDir)
	if err != nil {
		return nil, err
	}

	return &Manager{
		store: store,
	}, nil
}

// GetAPIKey returns the API key for a provider using priority resolution:
// 1. Environment variable
// 2. Config file (with env substitution)
// 3. Stored auth.json
func (m *Manager) GetAPIKey(providerID llm.ProviderID) (string, error) {
	key, source := m.lookup(providerID)
	if source == SourceNone {
		return "", fmt.Errorf("no API key found for provider: %s", providerID)
	}
	return key, nil
}

// KeySource reports where the provider's key would be read from.
func (m *Manager) KeySource(providerID llm.ProviderID) KeySource {
	_, source := m.lookup(providerID)
	return source
}

func (m *Manager) lookup(providerID llm.ProviderID) (string, KeySource) {
	if envVar := llm.EnvVarForProvider(providerID); envVar != "" {
		if key := os.Getenv(envVar); key != "" {
			return key, SourceEnv
		}
	}

	configKey := fmt.Sprintf("llm.providers.%s.api_key", providerID)
	if key := viper.GetString(configKey); key != "" {
		if resolved := resolveEnvSubstitution(key); resolved != "" {
			return resolved, SourceConfig
		}
	}

	if cred, err := m.store.GetCredential(providerID); err == nil {
		return cred.Key, SourceStore
	}

	return "", SourceNone
}

// SetAPIKey stores an API key for a provider
func (m *Manager) SetAPIKey(providerID llm.ProviderID, key string) error {
	if !llm.IsKnownProvider(providerID) {
		return fmt.Errorf("unknown provider: %s", providerID)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	return m.store.SetKey(providerID, key)
}

// RemoveCredential removes stored credentials for a provider
func (m *Manager) RemoveCredential(providerID llm.ProviderID) error {
	return m.store.RemoveCredential(providerID)
}

// HasCredential checks if a provider has a key from any source
func (m *Manager) HasCredential(providerID llm.ProviderID) bool {
	return m.KeySource(providerID) != SourceNone
}

// ListConnected returns all providers with credentials, in priority order
func (m *Manager) ListConnected() []llm.ProviderID {
	connected := make([]llm.ProviderID, 0)
	for _, id := range llm.AllProviderIDs() {
		if m.HasCredential(id) {
			connected = append(connected, id)
		}
	}
	return connected
}

// GetDefaultProvider returns the default provider ID
func (m *Manager) GetDefaultProvider() llm.ProviderID {
	return m.store.GetDefaultProvider()
}

// SetDefaultProvider sets the default provider
func (m *Manager) SetDefaultProvider(providerID llm.ProviderID) error {
	if !llm.IsKnownProvider(providerID) {
		return fmt.Errorf("unknown provider: %s", providerID)
	}
	return m.store.SetDefaultProvider(providerID)
}

// NewProvider creates a provider from its resolved API key.
func (m *Manager) NewProvider(ctx context.Context, providerID llm.ProviderID, model string) (llm.Provider, error) {
	key, err := m.GetAPIKey(providerID)
	if err != nil {
		return nil, err
	}
	return llm.New(ctx, providerID, key, model)
}

// ResolveProvider creates the preferred provider, or the default one when
// preferred is empty. If that has no key it falls back to the first
// connected provider, ignoring model.
func (m *Manager) ResolveProvider(ctx context.Context, preferred llm.ProviderID, model string) (llm.Provider, error) {
	target := preferred
	if target == "" {
		target = m.GetDefaultProvider()
	}

	provider, err := m.NewProvider(ctx, target, model)
	if err == nil {
		return provider, nil
	}
	if preferred != "" && m.HasCredential(preferred) {
		// The key exists but the provider rejected the settings.
		return nil, err
	}

	connected := m.ListConnected()
	if len(connected) == 0 {
		return nil, fmt.Errorf("no LLM providers connected. Run 'edumind auth connect <provider>' or set an API key environment variable")
	}

	for _, id := range connected {
		provider, err = m.NewProvider(ctx, id, "")
		if err == nil {
			return provider, nil
		}
	}
	return nil, fmt.Errorf("failed to initialize any LLM provider: %w", err)
}

// resolveEnvSubstitution replaces {env:VAR_NAME} with environment variable values
func resolveEnvSubstitution(value string) string {
	if !strings.Contains(value, "{env:") {
		return value
	}

	return envRef.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[5 : len(match)-1]
		return os.Getenv(varName)
	})
}
