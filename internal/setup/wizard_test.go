package setup

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/edumind/internal/auth"
	"github.com/yolodolo42/edumind/internal/llm"
	"github.com/yolodolo42/edumind/internal/testutil"
)

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func send(t *testing.T, m WizardModel, msg tea.Msg) (WizardModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	wm, ok := next.(WizardModel)
	require.True(t, ok)
	return wm, cmd
}

func TestNewWizard_Initialization(t *testing.T) {
	clearProviderEnv(t)

	t.Run("initializes with StepWelcome", func(t *testing.T) {
		m := NewWizard(testutil.TempDir(t))
		assert.Equal(t, StepWelcome, m.step)
		assert.Equal(t, "", m.apiKeyInput.Prompt)
	})

	t.Run("has provider list with gemini first", func(t *testing.T) {
		m := NewWizard(testutil.TempDir(t))
		require.NotEmpty(t, m.providerList)
		assert.Equal(t, llm.ProviderGemini, m.providerList[0].id)
		assert.True(t, m.providerList[0].recommended)
	})

	t.Run("skips to complete when already configured", func(t *testing.T) {
		dir := testutil.TempDir(t)
		mgr, err := auth.NewManager(dir)
		require.NoError(t, err)
		require.NoError(t, mgr.SetAPIKey(llm.ProviderOpenRouter, "sk-or-test"))

		m := NewWizard(dir)
		assert.Equal(t, StepComplete, m.step)
		assert.Equal(t, llm.ProviderOpenRouter, m.selectedProvider)
	})
}

func TestWizard_EnvKeyDetected(t *testing.T) {
	clearProviderEnv(t)
	testutil.SetEnv(t, "GOOGLE_API_KEY", "AIza-env")

	m := NewWizard(testutil.TempDir(t))
	// An env key already counts as configured.
	assert.Equal(t, StepComplete, m.step)
	assert.True(t, m.envKeyDetected)
	assert.Equal(t, llm.ProviderGemini, m.envKeyProvider)
}

func TestWizard_ConnectFlow(t *testing.T) {
	clearProviderEnv(t)
	dir := testutil.TempDir(t)

	var gotProvider llm.ProviderID
	var gotKey string
	wm := NewWizard(dir).WithValidator(func(_ context.Context, id llm.ProviderID, key string) error {
		gotProvider, gotKey = id, key
		return nil
	})
	m := *wm

	m, _ = send(t, m, key(tea.KeyEnter))
	require.Equal(t, StepProviderSelect, m.step)

	m, _ = send(t, m, key(tea.KeyDown))
	m, _ = send(t, m, key(tea.KeyEnter))
	require.Equal(t, StepProviderKey, m.step)
	assert.Equal(t, llm.ProviderOpenAI, m.selectedProvider)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("sk-test-key")})
	m, cmd := send(t, m, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, m.validatingKey)

	m, _ = send(t, m, cmd())
	assert.Equal(t, StepComplete, m.step)
	assert.Empty(t, m.keyError)
	assert.Equal(t, llm.ProviderOpenAI, gotProvider)
	assert.Equal(t, "sk-test-key", gotKey)

	mgr, err := auth.NewManager(dir)
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenAI, mgr.GetDefaultProvider())
	assert.Equal(t, auth.SourceStore, mgr.KeySource(llm.ProviderOpenAI))

	m, cmd = send(t, m, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	require.NotNil(t, m.Result())
	assert.Equal(t, llm.ProviderOpenAI, m.Result().ProviderID)
	assert.False(t, m.Result().Cancelled)
}

func TestWizard_EmptyKeyRejected(t *testing.T) {
	clearProviderEnv(t)
	m := *NewWizard(testutil.TempDir(t))

	m, _ = send(t, m, key(tea.KeyEnter))
	m, _ = send(t, m, key(tea.KeyEnter))
	m, cmd := send(t, m, key(tea.KeyEnter))

	assert.Nil(t, cmd)
	assert.Equal(t, StepProviderKey, m.step)
	assert.Equal(t, "API key is required", m.keyError)
}

func TestWizard_ValidationFailureStaysOnKeyStep(t *testing.T) {
	clearProviderEnv(t)
	wm := NewWizard(testutil.TempDir(t)).WithValidator(func(context.Context, llm.ProviderID, string) error {
		return errors.New("status 401: unauthorized")
	})
	m := *wm

	m, _ = send(t, m, key(tea.KeyEnter))
	m, _ = send(t, m, key(tea.KeyEnter))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("bad")})
	m, cmd := send(t, m, key(tea.KeyEnter))
	require.NotNil(t, cmd)

	m, _ = send(t, m, cmd())
	assert.Equal(t, StepProviderKey, m.step)
	assert.Contains(t, m.keyError, "Invalid key")
	assert.Contains(t, m.keyError, "aistudio.google.com")
}

func TestWizard_EscGoesBack(t *testing.T) {
	clearProviderEnv(t)
	m := *NewWizard(testutil.TempDir(t))

	m, _ = send(t, m, key(tea.KeyEnter))
	m, _ = send(t, m, key(tea.KeyEnter))
	require.Equal(t, StepProviderKey, m.step)

	m, _ = send(t, m, key(tea.KeyEsc))
	assert.Equal(t, StepProviderSelect, m.step)

	m, _ = send(t, m, key(tea.KeyEsc))
	assert.Equal(t, StepWelcome, m.step)
}

func TestWizard_CtrlCCancels(t *testing.T) {
	clearProviderEnv(t)
	m := *NewWizard(testutil.TempDir(t))

	m, cmd := send(t, m, key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.True(t, m.Result().Cancelled)
	assert.Contains(t, m.View(), "Setup cancelled")
}

func TestFormatKeyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "Invalid API key. Please try again."},
		{"network", errors.New("dial tcp: no such host"), "Connection failed. Check your internet and try again."},
		{"rate", errors.New("status 429"), "Rate limited. Wait a moment and try again."},
		{"short", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatKeyError(tt.err, llm.ProviderGemini))
		})
	}
}
