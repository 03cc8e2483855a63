package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yolodolo42/edumind/internal/audio"
	"github.com/yolodolo42/edumind/internal/config"
	"github.com/yolodolo42/edumind/internal/study"
	"github.com/yolodolo42/edumind/internal/ui"
	"github.com/yolodolo42/edumind/internal/view"
)

const (
	toolTimeout = 90 * time.Second

	// chromeHeight is the number of lines around the result viewport.
	chromeHeight = 14
)

// toolRequest is a submitted tool form.
type toolRequest struct {
	tool  view.View
	input string
	extra string
	level study.Level
	days  int
}

// toolResultMsg is sent when a tool call returns.
type toolResultMsg struct {
	tool    view.View
	content string
	quiz    *study.Quiz
	err     error
}

// audioMsg relays a read-aloud state change from the player goroutine.
type audioMsg struct {
	state audio.State
	err   error
}

// app is the full-screen study app: a dashboard of tools, one form per tool
// and a scrollable result.
type app struct {
	ctx      context.Context
	svc      *study.Service
	svcErr   error
	settings config.Settings
	player   *audio.Player
	audioCh  chan audioMsg

	nav    view.State
	menu   ui.Selector
	fields []ui.Prompt
	focus  int
	level  study.Level

	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	loading    bool
	content    string
	quiz       *quizView
	errMsg     string
	notice     string
	audioState audio.State
	quitting   bool
}

func toolItems() []ui.SelectorItem {
	items := make([]ui.SelectorItem, len(view.Tools))
	for i, v := range view.Tools {
		items[i] = ui.SelectorItem{ID: v.ID(), Label: v.Title(), Description: v.Description()}
	}
	return items
}

// newApp builds the app model. svc may be nil when no provider could be
// resolved; svcErr then explains why. player may be nil when read-aloud is
// unavailable.
func newApp(ctx context.Context, svc *study.Service, svcErr error, settings config.Settings, player *audio.Player) app {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.PromptStyle

	m := app{
		ctx:      ctx,
		svc:      svc,
		svcErr:   svcErr,
		settings: settings,
		player:   player,
		nav:      view.State{Current: view.Dashboard},
		menu:     ui.NewSelector("Tools", toolItems()),
		level:    study.LevelSimple,
		spinner:  sp,
		width:    settings.Render.Width,
	}

	if player != nil {
		ch := make(chan audioMsg, 8)
		player.OnChange(func(state audio.State, err error) {
			select {
			case ch <- audioMsg{state: state, err: err}:
			default:
			}
		})
		m.audioCh = ch
	}
	return m
}

func (m app) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitAudio())
}

func (m app) waitAudio() tea.Cmd {
	if m.audioCh == nil {
		return nil
	}
	ch := m.audioCh
	return func() tea.Msg {
		return <-ch
	}
}

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vh := max(msg.Height-chromeHeight, 3)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vh)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vh
		}
		m.menu.SetWidth(msg.Width)
		for i := range m.fields {
			m.fields[i].SetWidth(msg.Width - 2)
		}
		if m.quiz != nil {
			m.quiz.width = m.contentWidth()
		}
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toolResultMsg:
		return m.handleResult(msg), nil

	case audioMsg:
		m.audioState = msg.state
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.errMsg = fmt.Sprintf("Read-aloud failed: %v", msg.err)
		}
		return m, m.waitAudio()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m app) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.stopAudio()
		m.quitting = true
		return m, tea.Quit
	}

	if m.nav.Current == view.Dashboard || m.nav.MenuOpen {
		return m.updateMenu(msg)
	}

	if msg.Type == tea.KeyCtrlK {
		m.nav = m.nav.ToggleMenu()
		m.menu.Reset()
		return m, nil
	}

	if m.quiz != nil {
		return m.updateQuiz(msg)
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.stopAudio()
		m.nav = m.nav.Back()
		m.menu.Reset()
		m.clearResult()
		return m, nil
	case tea.KeyCtrlR:
		return m.toggleAudio()
	case tea.KeyTab:
		return m.cycleField(1)
	case tea.KeyShiftTab:
		return m.cycleField(-1)
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.loading || len(m.fields) == 0 {
		return m, nil
	}
	_, cmd := m.fields[m.focus].Update(msg)
	return m, cmd
}

func (m app) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlK && m.nav.MenuOpen {
		m.nav = m.nav.ToggleMenu()
		m.menu.Reset()
		return m, nil
	}

	m.menu.Update(msg)
	if m.menu.Active() {
		return m, nil
	}

	if m.menu.Cancelled() {
		if m.nav.MenuOpen {
			m.nav = m.nav.ToggleMenu()
		}
		m.menu.Reset()
		return m, nil
	}

	v, ok := view.Parse(m.menu.Selected())
	m.menu.Reset()
	if !ok {
		return m, nil
	}
	return m.open(v)
}

// open switches to tool v with a fresh form.
func (m app) open(v view.View) (tea.Model, tea.Cmd) {
	m.stopAudio()
	m.nav = m.nav.Navigate(v)
	m.clearResult()
	m.fields = formFields(v)
	m.focus = 0
	for i := range m.fields {
		m.fields[i].SetWidth(max(m.width-2, 20))
	}
	if len(m.fields) == 0 {
		return m, nil
	}
	return m, m.fields[0].Focus()
}

func formFields(v view.View) []ui.Prompt {
	var fields []ui.Prompt
	switch v {
	case view.Explainer:
		fields = append(fields, ui.NewPrompt("Topic", "e.g. Photosynthesis, The Cold War..."))
	case view.Quiz:
		fields = append(fields, ui.NewPrompt("Subject", "e.g. Solar System"))
	case view.Vision:
		fields = append(fields,
			ui.NewPrompt("Image file", "path/to/diagram.png"),
			ui.NewPrompt("Question (optional)", "Any specific questions? (e.g. 'Solve for x')"),
		)
	case view.Research:
		fields = append(fields, ui.NewPrompt("Query", "e.g. Impact of AI on education..."))
	case view.Planner:
		days := ui.NewPrompt(fmt.Sprintf("Days (%d-%d)", study.MinPlanDays, study.MaxPlanDays), "")
		days.SetCharLimit(2)
		days.SetValue(strconv.Itoa(study.DefaultPlanDays))
		fields = append(fields,
			ui.NewPrompt("Subjects", "e.g. Calculus, European History..."),
			days,
		)
	}
	for i := 1; i < len(fields); i++ {
		fields[i].Blur()
	}
	return fields
}

// cycleField moves focus between form fields. The explainer has a single
// field, so tab switches its level instead.
func (m app) cycleField(delta int) (tea.Model, tea.Cmd) {
	if m.nav.Current == view.Explainer {
		if m.level == study.LevelSimple {
			m.level = study.LevelDetailed
		} else {
			m.level = study.LevelSimple
		}
		return m, nil
	}
	if len(m.fields) < 2 {
		return m, nil
	}
	m.fields[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	return m, m.fields[m.focus].Focus()
}

func (m app) submit() (tea.Model, tea.Cmd) {
	if m.loading || len(m.fields) == 0 {
		return m, nil
	}

	input := strings.TrimSpace(m.fields[0].Value())
	if strings.HasPrefix(input, "/") {
		m.fields[0].Reset()
		return m.handleCommand(input)
	}
	if input == "" {
		return m, nil
	}
	if m.svc == nil {
		m.errMsg = fmt.Sprintf("No AI provider configured: %v", m.svcErr)
		return m, nil
	}

	req := toolRequest{tool: m.nav.Current, input: input, level: m.level}
	switch m.nav.Current {
	case view.Vision:
		req.extra = strings.TrimSpace(m.fields[1].Value())
	case view.Planner:
		days, err := strconv.Atoi(strings.TrimSpace(m.fields[1].Value()))
		if err != nil || days < study.MinPlanDays || days > study.MaxPlanDays {
			m.errMsg = fmt.Sprintf("Days must be a number from %d to %d.", study.MinPlanDays, study.MaxPlanDays)
			return m, nil
		}
		req.days = days
	}

	m.stopAudio()
	m.clearResult()
	m.loading = true
	return m, tea.Batch(m.spinner.Tick, m.runTool(req))
}

func (m app) runTool(req toolRequest) tea.Cmd {
	svc, parent := m.svc, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, toolTimeout)
		defer cancel()

		res := toolResultMsg{tool: req.tool}
		switch req.tool {
		case view.Explainer:
			res.content, res.err = svc.Explain(ctx, req.input, req.level)
		case view.Quiz:
			res.quiz, res.err = svc.GenerateQuiz(ctx, req.input)
		case view.Vision:
			img, err := loadImageArg(req.input)
			if err != nil {
				res.err = err
				return res
			}
			res.content, res.err = svc.AnalyzeImage(ctx, img, req.extra)
		case view.Research:
			result, err := svc.Research(ctx, req.input)
			if err == nil {
				res.content = result.Markdown()
			}
			res.err = err
		case view.Planner:
			plan, err := svc.StudyPlan(ctx, req.input, req.days)
			if err == nil {
				res.content = plan.Markdown()
			}
			res.err = err
		}
		return res
	}
}

func (m app) handleResult(msg toolResultMsg) app {
	m.loading = false
	if msg.tool != m.nav.Current {
		return m
	}
	if msg.err != nil {
		m.errMsg = errorText(msg.tool, msg.err)
		return m
	}
	if msg.quiz != nil {
		qv := newQuizView(msg.quiz, m.contentWidth())
		m.quiz = &qv
		return m
	}
	m.content = msg.content
	m.refreshViewport()
	m.viewport.GotoTop()
	return m
}

func errorText(tool view.View, err error) string {
	if tool == view.Explainer {
		return fmt.Sprintf("Sorry, I encountered an error while trying to explain that topic: %v", err)
	}
	return fmt.Sprintf("Sorry, I encountered an error: %v", err)
}

func (m app) updateQuiz(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc || (m.quiz.finished() && msg.Type == tea.KeyEnter) {
		m.quiz = nil
		if len(m.fields) > 0 {
			m.fields[0].Reset()
			return m, m.fields[0].Focus()
		}
		return m, nil
	}
	qv := m.quiz.update(msg)
	m.quiz = &qv
	return m, nil
}

func (m app) toggleAudio() (tea.Model, tea.Cmd) {
	if m.content == "" {
		return m, nil
	}
	if m.player == nil {
		m.errMsg = "Read-aloud needs a provider with text-to-speech (openai) and an audio player."
		return m, nil
	}
	state, err := m.player.Toggle(m.ctx, m.content)
	m.audioState = state
	if err != nil {
		m.errMsg = fmt.Sprintf("Read-aloud failed: %v", err)
	}
	return m, nil
}

func (m *app) stopAudio() {
	if m.player != nil {
		m.player.Stop()
	}
	m.audioState = audio.Idle
}

func (m *app) clearResult() {
	m.content = ""
	m.quiz = nil
	m.errMsg = ""
	m.notice = ""
	m.refreshViewport()
}

func (m app) contentWidth() int {
	w := m.settings.Render.Width
	if m.width > 0 && m.width-2 < w {
		w = m.width - 2
	}
	return w
}

func (m *app) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderContent())
}

func (m app) renderContent() string {
	if m.content == "" {
		return ""
	}
	if m.settings.Render.Style == config.StyleRich {
		if out, err := ui.RenderRich(m.content, m.contentWidth()); err == nil {
			return out
		}
	}
	return ui.RenderMarkdown(m.contentWidth(), m.content)
}

// handleCommand handles slash commands typed into the first field.
func (m app) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.SplitN(input, " ", 2)
	cmd := strings.ToLower(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	m.errMsg = ""
	m.notice = ""

	switch cmd {
	case "/quit", "/exit", "/q":
		m.stopAudio()
		m.quitting = true
		return m, tea.Quit

	case "/clear":
		m.stopAudio()
		m.clearResult()
		return m, nil

	case "/model":
		return m.handleModelCommand(arg)

	case "/help", "/?":
		m.notice = `Commands:
  /help, /?       Show this help
  /model          List available models
  /model <id>     Switch to a different model
  /clear          Clear the result
  /quit, /exit    Exit edumind

Keys: enter submit • tab next field or level • ctrl+r read aloud • ctrl+k menu • esc dashboard`
		return m, nil

	default:
		m.errMsg = fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)
		return m, nil
	}
}

// handleModelCommand lists models or switches to a new one.
func (m app) handleModelCommand(modelID string) (tea.Model, tea.Cmd) {
	if m.svc == nil || m.svc.Provider() == nil {
		m.errMsg = "No AI provider configured."
		return m, nil
	}
	provider := m.svc.Provider()

	if modelID == "" {
		current := provider.DefaultModel()
		var b strings.Builder
		fmt.Fprintf(&b, "Models for %s:\n", provider.Name())
		for _, md := range provider.Models() {
			marker := "  "
			if md.ID == current {
				marker = ui.SymbolArrow + " "
			}
			tag := ""
			if !md.SupportsImages {
				tag = " (no images)"
			}
			fmt.Fprintf(&b, "  %s%-30s %s%s\n", marker, md.ID, md.Name, tag)
		}
		fmt.Fprintf(&b, "\nActive: %s\nUsage: /model <id>", current)
		m.notice = b.String()
		return m, nil
	}

	if err := provider.SetModel(modelID); err != nil {
		m.errMsg = fmt.Sprintf("Failed to switch model: %v", err)
		return m, nil
	}
	m.notice = fmt.Sprintf("Switched to %s.", modelID)
	return m, nil
}

func (m app) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("EDUMIND"))
	b.WriteString("  ")
	b.WriteString(ui.HelpStyle.Render(m.providerLabel()))
	b.WriteString("\n\n")

	if m.nav.Current == view.Dashboard || m.nav.MenuOpen {
		if m.nav.Current == view.Dashboard {
			b.WriteString(view.Dashboard.Description())
			b.WriteString("\n\n")
		}
		b.WriteString(m.menu.View())
		b.WriteString("\n")
		help := "ctrl+c quit"
		if m.nav.MenuOpen {
			help = "ctrl+k close menu • ctrl+c quit"
		}
		b.WriteString(ui.HelpStyle.Render(help))
		return b.String()
	}

	current := m.nav.Current
	b.WriteString(ui.H2Style.Render(current.Title()))
	b.WriteString("\n")
	b.WriteString(ui.HelpStyle.Render(current.Description()))
	b.WriteString("\n\n")

	if m.quiz != nil {
		b.WriteString(m.quiz.view())
		b.WriteString("\n\n")
		b.WriteString(ui.HelpStyle.Render("esc new quiz • ctrl+k menu • ctrl+c quit"))
		return b.String()
	}

	for i := range m.fields {
		b.WriteString(m.fields[i].View())
		b.WriteString("\n")
	}
	if current == view.Explainer {
		b.WriteString(m.levelView())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		fmt.Fprintf(&b, "%s Thinking...\n\n", m.spinner.View())
	case m.errMsg != "":
		b.WriteString(ui.ErrorStyle.Render(m.errMsg))
		b.WriteString("\n\n")
	case m.notice != "":
		b.WriteString(ui.SystemStyle.Render(m.notice))
		b.WriteString("\n\n")
	}

	if m.content != "" {
		if m.player != nil {
			b.WriteString(ui.HelpStyle.Render(fmt.Sprintf("%s read aloud: %s (ctrl+r)", ui.SymbolSpeaker, m.audioState)))
			b.WriteString("\n")
		}
		if m.ready {
			b.WriteString(m.viewport.View())
		} else {
			b.WriteString(m.renderContent())
		}
		b.WriteString("\n")
	}

	b.WriteString(ui.HelpStyle.Render("enter submit • tab switch • ↑/↓ scroll • ctrl+k menu • esc dashboard • /help"))
	return b.String()
}

func (m app) levelView() string {
	render := func(l study.Level) string {
		label := strings.ToUpper(string(l))
		if m.level == l {
			return ui.SelectorActive.Render("[" + label + "]")
		}
		return ui.SelectorDim.Render(" " + label + " ")
	}
	return "Level: " + render(study.LevelSimple) + " " + render(study.LevelDetailed) + ui.HelpStyle.Render("  (tab)")
}

func (m app) providerLabel() string {
	if m.svc == nil || m.svc.Provider() == nil {
		return "no provider"
	}
	p := m.svc.Provider()
	return fmt.Sprintf("%s · %s", p.ID(), p.DefaultModel())
}

// RunTUI starts the full-screen app.
func RunTUI(ctx context.Context) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	svc, svcErr := rt.service(ctx)
	if svcErr != nil {
		rt.logger.Warn("no provider", "error", svcErr)
	}

	var player *audio.Player
	if svc != nil && svc.CanSpeak() {
		sink, err := audio.NewExecSink(rt.settings.Speech.Player)
		if err != nil {
			rt.logger.Warn("read-aloud disabled", "error", err)
		} else {
			player = audio.NewPlayer(svc.Speak, sink, rt.logger)
		}
	}

	p := tea.NewProgram(
		newApp(ctx, svc, svcErr, rt.settings, player),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err = p.Run()
	if player != nil {
		player.Stop()
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
