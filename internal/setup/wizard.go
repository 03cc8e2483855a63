package setup

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yolodolo42/edumind/internal/auth"
	"github.com/yolodolo42/edumind/internal/llm"
	"github.com/yolodolo42/edumind/internal/ui"
)

// WizardStep represents the current step in the wizard
type WizardStep int

const (
	StepWelcome WizardStep = iota
	StepProviderSelect
	StepProviderKey
	StepComplete
)

const totalSteps = 2 // Provider, Ready

// SetupResult contains the result of the setup wizard
type SetupResult struct {
	ProviderID llm.ProviderID
	Cancelled  bool
}

// WizardModel is the main wizard Bubbletea model
type WizardModel struct {
	step     WizardStep
	status   *SetupStatus
	dataDir  string
	quitting bool
	validate KeyValidator

	// Provider step
	providerList     []providerItem
	providerSelector ui.Selector
	selectedProvider llm.ProviderID
	apiKeyInput      textinput.Model
	validatingKey    bool
	keyError         string
	envKeyDetected   bool
	envKeyProvider   llm.ProviderID

	// UI
	spinner  spinner.Model
	progress progress.Model

	// Result
	result *SetupResult
}

type providerItem struct {
	id          llm.ProviderID
	name        string
	recommended bool
}

// Message types
type keyValidatedMsg struct {
	success bool
	err     error
}

func providerSelectorItems(providers []providerItem) []ui.SelectorItem {
	items := make([]ui.SelectorItem, 0, len(providers))
	for _, p := range providers {
		desc := auth.ProviderNotes(p.id)
		if p.recommended {
			desc = "recommended - " + desc
		}
		items = append(items, ui.SelectorItem{
			ID:          string(p.id),
			Label:       p.name,
			Description: desc,
		})
	}
	return items
}

// NewWizard creates a new wizard model
func NewWizard(dataDir string) *WizardModel {
	status, _ := DetectSetupStatus(dataDir)

	// Spinner
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	// Progress bar
	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	// API key input
	apiInput := textinput.New()
	apiInput.Prompt = ""
	apiInput.Placeholder = "Paste your API key here..."
	apiInput.EchoMode = textinput.EchoPassword
	apiInput.EchoCharacter = '•'
	apiInput.CharLimit = 200
	apiInput.Width = 50

	providers := []providerItem{
		{id: llm.ProviderGemini, name: "Google (Gemini)", recommended: true},
		{id: llm.ProviderOpenAI, name: "OpenAI (GPT-4o)"},
		{id: llm.ProviderAnthropic, name: "Anthropic (Claude)"},
		{id: llm.ProviderOpenRouter, name: "OpenRouter"},
	}

	m := &WizardModel{
		step:             StepWelcome,
		status:           status,
		dataDir:          dataDir,
		validate:         PingProvider,
		providerList:     providers,
		providerSelector: ui.NewSelector("Choose an AI provider", providerSelectorItems(providers)),
		spinner:          sp,
		progress:         prog,
		apiKeyInput:      apiInput,
	}

	// Check for environment keys
	m.detectEnvKeys()

	// Skip straight to the summary if a provider is already configured
	if status.HasProvider {
		m.selectedProvider = status.ProviderID
		m.step = StepComplete
	}

	return m
}

// WithValidator replaces the API key check, which by default makes a test call.
func (m *WizardModel) WithValidator(v KeyValidator) *WizardModel {
	m.validate = v
	return m
}

// detectEnvKeys checks for API keys in environment variables
func (m *WizardModel) detectEnvKeys() {
	for _, p := range m.providerList {
		envVar := llm.EnvVarForProvider(p.id)
		if envVar != "" && os.Getenv(envVar) != "" {
			m.envKeyDetected = true
			m.envKeyProvider = p.id
			return
		}
	}
}

// Result returns the outcome once the wizard has quit.
func (m WizardModel) Result() *SetupResult {
	return m.result
}

// Init initializes the wizard
func (m WizardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

// Update handles messages
func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keys (don't swallow Esc; selectors use it).
		if msg.Type == tea.KeyCtrlC {
			m.result = &SetupResult{Cancelled: true}
			m.quitting = true
			return m, tea.Quit
		}

		switch m.step {
		case StepWelcome:
			if msg.Type == tea.KeyEnter {
				if m.envKeyDetected {
					m.selectedProvider = m.envKeyProvider
					m.step = StepComplete
				} else {
					m.step = StepProviderSelect
				}
			}
			return m, nil

		case StepProviderSelect:
			return m.updateProviderSelect(msg)

		case StepProviderKey:
			if msg.Type == tea.KeyEsc {
				m.apiKeyInput.Blur()
				m.apiKeyInput.Reset()
				m.keyError = ""
				m.providerSelector = ui.NewSelector("Choose an AI provider", providerSelectorItems(m.providerList))
				m.step = StepProviderSelect
				return m, nil
			}
			if msg.Type == tea.KeyEnter {
				return m.updateProviderKey()
			}
			// Fall through to let input update happen

		case StepComplete:
			if msg.Type == tea.KeyEnter {
				m.result = &SetupResult{ProviderID: m.selectedProvider}
				m.quitting = true
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.progress.Width = min(40, msg.Width-20)
		m.providerSelector.SetWidth(msg.Width)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case keyValidatedMsg:
		m.validatingKey = false
		if msg.success {
			m.keyError = ""
			if err := m.saveProviderKey(); err != nil {
				m.keyError = fmt.Sprintf("Failed to save: %v", err)
			} else {
				m.step = StepComplete
			}
		} else {
			m.keyError = formatKeyError(msg.err, m.selectedProvider)
		}
		return m, nil
	}

	if m.step == StepProviderKey && !m.validatingKey {
		var cmd tea.Cmd
		m.apiKeyInput, cmd = m.apiKeyInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// formatKeyError returns a user-friendly error message
func formatKeyError(err error, provider llm.ProviderID) string {
	if err == nil {
		return "Invalid API key. Please try again."
	}

	errStr := err.Error()

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return "Connection failed. Check your internet and try again."
	}

	// Auth errors
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") ||
		strings.Contains(strings.ToLower(errStr), "unauthorized") ||
		strings.Contains(errStr, "API key not valid") {
		return "Invalid key. " + auth.KeyHint(provider)
	}

	// Rate limit
	if strings.Contains(errStr, "429") || strings.Contains(errStr, "rate") {
		return "Rate limited. Wait a moment and try again."
	}

	// Truncate long errors
	if len(errStr) > 60 {
		return errStr[:57] + "..."
	}

	return errStr
}

func (m WizardModel) updateProviderSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	_, cmd := m.providerSelector.Update(msg)
	if cmd != nil {
		return m, cmd
	}

	if m.providerSelector.Active() {
		return m, nil
	}

	if m.providerSelector.Cancelled() {
		m.step = StepWelcome
		m.providerSelector = ui.NewSelector("Choose an AI provider", providerSelectorItems(m.providerList))
		return m, nil
	}

	m.selectedProvider = llm.ProviderID(m.providerSelector.Selected())
	m.apiKeyInput.Focus()
	m.step = StepProviderKey
	return m, nil
}

func (m WizardModel) updateProviderKey() (tea.Model, tea.Cmd) {
	if m.validatingKey {
		return m, nil
	}

	key := strings.TrimSpace(m.apiKeyInput.Value())
	if key == "" {
		m.keyError = "API key is required"
		return m, nil
	}
	m.validatingKey = true
	m.keyError = ""
	return m, m.validateKey()
}

// View renders the wizard
func (m WizardModel) View() string {
	if m.quitting {
		if m.result != nil && m.result.Cancelled {
			return DimStyle.Render("\n  Setup cancelled.\n\n")
		}
		return ""
	}

	var b strings.Builder

	if m.step > StepWelcome && m.step < StepComplete {
		b.WriteString("\n")
		b.WriteString(m.renderProgress())
		b.WriteString("\n")
	}

	switch m.step {
	case StepWelcome:
		b.WriteString(m.viewWelcome())
	case StepProviderSelect:
		b.WriteString("\n" + m.providerSelector.View())
	case StepProviderKey:
		b.WriteString(m.viewProviderKey())
	case StepComplete:
		b.WriteString(m.viewComplete())
	}

	return b.String()
}

func (m WizardModel) renderProgress() string {
	currentStep := 1
	if m.step == StepComplete {
		currentStep = 2
	}

	percent := float64(currentStep) / float64(totalSteps)
	bar := m.progress.ViewAs(percent)

	labels := "  Provider            Ready"
	return fmt.Sprintf("  %s\n%s", bar, DimStyle.Render(labels))
}

func (m WizardModel) viewWelcome() string {
	var b strings.Builder
	b.WriteString("\n\n")

	header := TitleStyle.Render("Welcome to EduMind") + "\n" +
		SubtitleStyle.Render("Your AI study companion in the terminal") + "\n\n"

	if m.envKeyDetected {
		envVar := llm.EnvVarForProvider(m.envKeyProvider)
		b.WriteString(BoxStyle.Render(header +
			SuccessStyle.Render(fmt.Sprintf("✓ Found %s in environment!", envVar)) + "\n" +
			fmt.Sprintf("  Using: %s", m.providerName(m.envKeyProvider))))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("  Press Enter to continue with detected key..."))
	} else {
		b.WriteString(BoxStyle.Render(header + "Connect an AI provider to get started."))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("  Press Enter to continue..."))
	}

	return b.String()
}

func (m WizardModel) viewProviderKey() string {
	var b strings.Builder
	b.WriteString("\n")

	b.WriteString(TitleStyle.Render(fmt.Sprintf("  Enter %s API Key", m.providerName(m.selectedProvider))))
	b.WriteString("\n\n")
	b.WriteString(SubtitleStyle.Render("  " + auth.KeyHint(m.selectedProvider) + "\n\n"))

	b.WriteString("  ")
	b.WriteString(m.apiKeyInput.View())
	b.WriteString("\n")

	if m.validatingKey {
		b.WriteString(fmt.Sprintf("\n  %s Testing connection...\n", m.spinner.View()))
	} else if m.keyError != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", ErrorStyle.Render(ui.SymbolCross+" "+m.keyError)))
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("  Enter to validate • Esc back"))
	return b.String()
}

func (m WizardModel) viewComplete() string {
	var b strings.Builder
	b.WriteString("\n\n")

	content := fmt.Sprintf(
		"%s\n\n"+
			"Provider: %s\n\n"+
			"%s\n"+
			"  %s\n"+
			"  %s\n"+
			"  %s",
		TitleStyle.Render("You're all set!"),
		m.providerName(m.selectedProvider),
		DimStyle.Render("Try these:"),
		"edumind explain photosynthesis --level simple",
		"edumind quiz \"French Revolution\"",
		"edumind plan \"Calculus, Biology\" --days 5",
	)

	b.WriteString(BoxStyle.Render(content))
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("  Press Enter to start EduMind..."))
	return b.String()
}

func (m WizardModel) providerName(id llm.ProviderID) string {
	for _, p := range m.providerList {
		if p.id == id {
			return p.name
		}
	}
	return string(id)
}

// RunWizard runs the setup wizard and returns the result
func RunWizard(dataDir string) (*SetupResult, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	m := NewWizard(dataDir)

	p := tea.NewProgram(*m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	return finalModel.(WizardModel).result, nil
}
