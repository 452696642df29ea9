// internal/tui/app.go
//
// This is the main TUI for Airwave. It uses bubbletea, which follows The Elm
// Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/airwavefm/airwave/internal/config"
	"github.com/airwavefm/airwave/internal/database"
	"github.com/airwavefm/airwave/internal/llm"
	"github.com/airwavefm/airwave/internal/logbook"
	"github.com/airwavefm/airwave/internal/news"
	"github.com/airwavefm/airwave/internal/pipeline"
	"github.com/airwavefm/airwave/internal/profile"
	"github.com/airwavefm/airwave/internal/script"
)

// appState represents which "screen" we're on
type appState int

const (
	stateDashboard appState = iota // Script list, profile summary, main menu
	stateGenerate                  // A pipeline run in progress
	statePrompt                    // Teleprompter playback
)

type boardFocus int

const (
	focusMenu boardFocus = iota
	focusScripts
)

// dashboardRefreshMsg carries a fresh profile and script list.
type dashboardRefreshMsg struct {
	prof    *profile.Profile
	scripts []script.Script
	err     error
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithSource overrides the news source.
func WithSource(source news.Source) AppOption {
	return func(a *App) {
		if source != nil {
			a.source = source
		}
	}
}

// WithCompleter overrides the LLM completer.
func WithCompleter(completer llm.Completer) AppOption {
	return func(a *App) {
		if completer != nil {
			a.completer = completer
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state  appState
	config *config.Config
	book   *logbook.Logbook

	profiles  *profile.Store
	scripts   *script.Store
	source    news.Source
	completer llm.Completer
	userID    string

	generateView *generateView
	promptView   *promptView

	// UI components
	mainMenu  list.Model
	statusMsg string

	// Dashboard data
	boardFocus      boardFocus
	prof            *profile.Profile
	scriptItems     []script.Script
	scriptSelection int
	boardErr        string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// NewApp creates a new App instance wired against the configured database,
// news sources, and LLM endpoint.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	db, err := database.Open(database.Config{Path: cfg.DBPath()})
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	book, err := logbook.New(cfg.LogbookPath())
	if err == nil {
		book.Info("Session opened · user %s", cfg.UserID())
	}

	endpoints := make([]news.Endpoint, 0, len(cfg.Sources()))
	for _, src := range cfg.Sources() {
		endpoints = append(endpoints, news.Endpoint{Name: src.Name, Feed: src.Feed, Page: src.Page})
	}

	var completer llm.Completer
	if cfg.App.LLM.APIKey != "" {
		completer = llm.NewClient(cfg.App.LLM.APIURL, cfg.App.LLM.Model, cfg.App.LLM.APIKey)
	} else {
		if book != nil {
			book.Warn("No LLM API key configured, using mock completer")
		}
		completer = llm.Mock{}
	}

	mainMenu := list.New(buildMainMenu(), list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "◉ AIRWAVE"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)

	app := &App{
		state:     stateDashboard,
		config:    cfg,
		book:      book,
		profiles:  profile.NewStore(db),
		scripts:   script.NewStore(db),
		source:    news.NewFetcher(endpoints, news.WithLogbook(book)),
		completer: completer,
		userID:    cfg.UserID(),
		mainMenu:  mainMenu,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app, nil
}

func buildMainMenu() []list.Item {
	return []list.Item{
		menuItem{title: "Generate Script", desc: "Fetch news and produce a new show script"},
		menuItem{title: "Open Teleprompter", desc: "Play the selected script"},
		menuItem{title: "Refresh", desc: "Reload profile and scripts"},
		menuItem{title: "Exit", desc: "Quit Airwave"},
	}
}

func (a *App) logInfo(format string, args ...any) {
	if a.book == nil {
		return
	}
	a.book.Info(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.book == nil {
		return
	}
	a.book.Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.fetchDashboard()
}

// fetchDashboard loads the profile and script list off the Update loop.
func (a *App) fetchDashboard() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		prof, err := a.profiles.Get(ctx, a.userID)
		if err != nil {
			return dashboardRefreshMsg{err: err}
		}
		scripts, err := a.scripts.ListByOwner(ctx, a.userID)
		if err != nil {
			return dashboardRefreshMsg{prof: prof, err: err}
		}
		return dashboardRefreshMsg{prof: prof, scripts: scripts}
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		return a, nil

	case dashboardRefreshMsg:
		if msg.err != nil {
			a.boardErr = msg.err.Error()
		} else {
			a.boardErr = ""
		}
		if msg.prof != nil {
			a.prof = msg.prof
		}
		a.scriptItems = msg.scripts
		if len(a.scriptItems) == 0 {
			a.scriptSelection = 0
		} else if a.scriptSelection >= len(a.scriptItems) {
			a.scriptSelection = len(a.scriptItems) - 1
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateDashboard {
				return a, tea.Quit
			}
		case "esc":
			if a.state != stateDashboard {
				return a.returnToDashboard()
			}
		case "r":
			if a.state == stateDashboard {
				a.statusMsg = "Refreshing..."
				return a, a.fetchDashboard()
			}
		case "tab":
			if a.state == stateDashboard {
				if a.boardFocus == focusMenu && len(a.scriptItems) > 0 {
					a.boardFocus = focusScripts
				} else {
					a.boardFocus = focusMenu
				}
			}
		case "left", "h":
			if a.state == stateDashboard {
				a.boardFocus = focusMenu
			}
		case "up":
			if a.state == stateDashboard && a.boardFocus == focusScripts && a.scriptSelection > 0 {
				a.scriptSelection--
				return a, nil
			}
		case "down":
			if a.state == stateDashboard && a.boardFocus == focusScripts && a.scriptSelection < len(a.scriptItems)-1 {
				a.scriptSelection++
				return a, nil
			}
		case "enter":
			if a.state == stateDashboard {
				if a.boardFocus == focusScripts {
					return a.openSelectedScript()
				}
				return a.handleMainMenuSelection()
			}
			if a.state == stateGenerate && a.generateView != nil && a.generateView.done {
				return a.openGeneratedScript()
			}
		}
	}

	var cmds []tea.Cmd
	switch a.state {
	case stateDashboard:
		if a.boardFocus == focusMenu {
			var menuCmd tea.Cmd
			a.mainMenu, menuCmd = a.mainMenu.Update(msg)
			if menuCmd != nil {
				cmds = append(cmds, menuCmd)
			}
		}
	case stateGenerate:
		if a.generateView != nil {
			if cmd := a.generateView.Update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	case statePrompt:
		if a.promptView != nil {
			if cmd := a.promptView.Update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}
	return a, tea.Batch(cmds...)
}

// handleMainMenuSelection processes menu item selection
func (a *App) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}

	switch item.title {
	case "Generate Script":
		a.logInfo("Menu · Generate Script selected")
		return a.startGeneration()

	case "Open Teleprompter":
		a.logInfo("Menu · Open Teleprompter selected")
		return a.openSelectedScript()

	case "Refresh":
		a.statusMsg = "Refreshing..."
		return a, a.fetchDashboard()

	case "Exit":
		a.logInfo("Menu · Exit selected")
		return a, tea.Quit
	}
	return a, nil
}

// startGeneration launches a pipeline run.
func (a *App) startGeneration() (tea.Model, tea.Cmd) {
	a.state = stateGenerate
	a.generateView = newGenerateView(a)
	return a, a.generateView.Init()
}

// openSelectedScript opens the highlighted script in the teleprompter.
func (a *App) openSelectedScript() (tea.Model, tea.Cmd) {
	if len(a.scriptItems) == 0 {
		a.statusMsg = "No scripts yet. Generate one first."
		return a, nil
	}
	sc := a.scriptItems[a.scriptSelection]
	var tele pipeline.TeleprompterScript
	if err := json.Unmarshal(sc.Teleprompter, &tele); err != nil {
		a.statusMsg = fmt.Sprintf("Script is unreadable: %v", err)
		a.logError("Open script %s: %v", sc.ID, err)
		return a, nil
	}
	return a.openPrompter(sc.Title, tele.Chunks)
}

// openGeneratedScript jumps from a finished run straight into playback.
func (a *App) openGeneratedScript() (tea.Model, tea.Cmd) {
	gv := a.generateView
	if gv == nil || !gv.done {
		return a, nil
	}
	title := "Untitled Script"
	if gv.sc != nil {
		title = gv.sc.Title
	}
	return a.openPrompter(title, gv.tele.Chunks)
}

func (a *App) openPrompter(title string, chunks []pipeline.Chunk) (tea.Model, tea.Cmd) {
	a.state = statePrompt
	a.generateView = nil
	a.promptView = newPromptView(a, title, chunks)
	a.logInfo("Teleprompter opened · %s (%d chunks)", title, len(chunks))
	return a, nil
}

// returnToDashboard transitions back to the dashboard.
func (a *App) returnToDashboard() (tea.Model, tea.Cmd) {
	a.state = stateDashboard
	a.generateView = nil
	a.promptView = nil
	a.statusMsg = ""
	return a, a.fetchDashboard()
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}

	switch a.state {
	case stateGenerate:
		if a.generateView != nil {
			return a.generateView.View()
		}
	case statePrompt:
		if a.promptView != nil {
			return a.promptView.View()
		}
	}

	rightWidth := max(32, width/3)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
	}
	if leftWidth < 20 {
		leftWidth = width
		rightWidth = 0
	}
	if a.boardFocus == focusMenu {
		a.mainMenu.SetSize(max(20, leftWidth-4), max(10, a.height-12))
	}
	return a.renderDashboard(leftWidth, rightWidth)
}

func (a *App) renderDashboard(leftWidth, rightWidth int) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF8C42")).
		MarginBottom(1).
		Render("◉ AIRWAVE · ON AIR PREP")
	left := lipgloss.JoinVertical(lipgloss.Left,
		a.renderProfilePanel(leftWidth-4),
		"",
		a.mainMenu.View(),
	)
	leftBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, leftWidth)).
		Render(left)
	var body string
	if rightWidth > 0 {
		rightBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(max(20, rightWidth)).
			Render(a.renderScriptsPanel(rightWidth - 4))
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	} else {
		body = leftBox
	}
	sections := []string{header, body}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderProfilePanel(width int) string {
	lines := []string{"Presenter: " + a.userID}
	if a.prof != nil {
		lines = append(lines,
			fmt.Sprintf("Voice: %s · %s", a.prof.SpeakingSpeed, a.prof.FormalityLevel),
			fmt.Sprintf("Sections: %d", len(a.prof.ShowStructure)),
		)
		if !a.prof.OnboardingCompleted {
			lines = append(lines, "⚠ Onboarding incomplete")
		}
	}
	if a.boardErr != "" {
		lines = append(lines, fmt.Sprintf("⚠ %s", a.boardErr))
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderScriptsPanel(width int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("Scripts (%d)", len(a.scriptItems)))
	if len(a.scriptItems) == 0 {
		note := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).
			Render("No scripts yet. Generate one to get started.")
		return lipgloss.JoinVertical(lipgloss.Left, title, note)
	}
	var rows []string
	for i, sc := range a.scriptItems {
		selected := a.boardFocus == focusScripts && i == a.scriptSelection
		rows = append(rows, a.renderScriptItem(sc, selected, width))
	}
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		MarginTop(1).
		Render("Enter → open in teleprompter")
	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n"), hint)
}

func (a *App) renderScriptItem(sc script.Script, selected bool, width int) string {
	line1 := sc.Title
	line2 := fmt.Sprintf("%s · %s", sc.Status, sc.CreatedAt.Local().Format("Jan 2 15:04"))
	content := line1 + "\n" + line2
	style := lipgloss.NewStyle().Width(max(20, width)).Padding(0, 0, 1, 0)
	if selected {
		style = style.Bold(true).Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#5B8DEF")).Padding(0, 1)
	}
	return style.Render(content)
}

func (a *App) renderLogPanel() string {
	if a.book == nil {
		return ""
	}
	lines := a.book.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("LOG")
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(head + "\n" + body)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
