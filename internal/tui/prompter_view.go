package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/airwavefm/airwave/internal/pipeline"
	"github.com/airwavefm/airwave/internal/prompter"
)

var (
	promptHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF8C42"))
	promptActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#2D3748"))
	promptEmphasisStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	promptDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	promptNotesStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#5B8DEF"))
	promptStatusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	promptPausedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
)

// promptView wraps a prompter engine and translates bubbletea messages
// into engine calls. The engine owns all playback state so the view
// stays a thin shell.
type promptView struct {
	app       *App
	engine    *prompter.Engine
	title     string
	showNotes bool
}

type promptTickMsg struct{}

type promptPauseExpireMsg struct {
	gen int
}

func newPromptView(app *App, title string, chunks []pipeline.Chunk) *promptView {
	view := &promptView{
		app:    app,
		engine: prompter.New(chunks),
		title:  title,
	}
	if app.width > 0 && app.height > 0 {
		view.engine.SetViewport(app.width, max(1, app.height-8))
	}
	return view
}

// scheduleTick drives the scroll loop while the engine is playing.
func (v *promptView) scheduleTick() tea.Cmd {
	return tea.Tick(prompter.TickInterval, func(time.Time) tea.Msg {
		return promptTickMsg{}
	})
}

func (v *promptView) schedulePauseExpire(pause time.Duration, gen int) tea.Cmd {
	return tea.Tick(pause, func(time.Time) tea.Msg {
		return promptPauseExpireMsg{gen: gen}
	})
}

func (v *promptView) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		v.engine.SetViewport(m.Width, max(1, m.Height-8))
		return nil

	case promptTickMsg:
		result := v.engine.Tick()
		if result.AutoPaused {
			return v.schedulePauseExpire(result.PauseFor, result.Gen)
		}
		if v.engine.State() == prompter.StatePlaying {
			return v.scheduleTick()
		}
		return nil

	case promptPauseExpireMsg:
		v.engine.PauseExpire(m.gen)
		if v.engine.State() == prompter.StatePlaying {
			return v.scheduleTick()
		}
		return nil

	case tea.KeyMsg:
		return v.handleKey(m.String())
	}
	return nil
}

func (v *promptView) handleKey(key string) tea.Cmd {
	switch key {
	case " ", "k":
		wasPlaying := v.engine.State() == prompter.StatePlaying
		v.engine.TogglePlay()
		if !wasPlaying && v.engine.State() == prompter.StatePlaying {
			return v.scheduleTick()
		}
	case "up":
		v.engine.AdjustSpeed(10)
	case "down":
		v.engine.AdjustSpeed(-10)
	case "right", "l":
		v.engine.NextChunk()
	case "left":
		v.engine.PrevChunk()
	case "m":
		v.engine.ToggleMirror()
	case "r":
		v.engine.Restart()
	case "+", "=":
		v.engine.FontLarger()
	case "-", "_":
		v.engine.FontSmaller()
	case "n":
		v.showNotes = !v.showNotes
	}
	return nil
}

func (v *promptView) View() string {
	width := v.app.width
	if width <= 0 {
		width = 100
	}

	header := promptHeaderStyle.Render("◉ TELEPROMPTER · " + v.title)
	if !v.engine.Playable() {
		empty := promptDimStyle.Render("This script has no teleprompter content yet.")
		hint := promptStatusStyle.Render("Esc → back to dashboard")
		return strings.Join([]string{header, "", empty, "", hint}, "\n")
	}

	body := v.renderChunks(width - 4)
	bar := v.renderProgressBar(width - 4)
	status := v.renderStatusLine()
	hints := promptStatusStyle.Render("space/k play · ←/→ chunk · ↑/↓ speed · +/- font · m mirror · n notes · r restart · esc back")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, width-2)).
		Render(body)
	return strings.Join([]string{header, box, bar, status, hints}, "\n")
}

// renderChunks paints a window of chunks around the active one. Break
// markers render as separators so presenters can see section edges
// coming.
func (v *promptView) renderChunks(width int) string {
	chunks := v.engine.Chunks()
	active := v.engine.Active()

	from := active - 2
	if from < 0 {
		from = 0
	}
	to := active + 5
	if to > len(chunks) {
		to = len(chunks)
	}

	var rows []string
	for i := from; i < to; i++ {
		chunk := chunks[i]
		text := chunk.Text
		if chunk.SectionType == "break" {
			rows = append(rows, promptDimStyle.Render(strings.Repeat("·", max(8, width/3))))
			continue
		}
		if v.engine.Mirrored() {
			text = reverseRunes(text)
		}
		style := promptDimStyle
		switch {
		case i == active:
			style = promptActiveStyle
		case chunk.Emphasis:
			style = promptEmphasisStyle
		}
		line := style.Width(max(20, width)).Render(text)
		rows = append(rows, line)
		if i == active && v.showNotes && chunk.Notes != "" {
			rows = append(rows, promptNotesStyle.Render("  ♪ "+chunk.Notes))
		}
	}
	return strings.Join(rows, "\n")
}

func (v *promptView) renderProgressBar(width int) string {
	if width < 10 {
		width = 10
	}
	filled := int(v.engine.Progress() * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return promptStatusStyle.Render(strings.Repeat("█", filled) + strings.Repeat("░", width-filled))
}

func (v *promptView) renderStatusLine() string {
	elapsed := v.engine.Elapsed()
	clock := fmt.Sprintf("%02d:%02d", int(elapsed.Minutes()), int(elapsed.Seconds())%60)

	var state string
	switch v.engine.State() {
	case prompter.StatePlaying:
		state = stageDoneStyle.Render("▶ PLAYING")
	case prompter.StatePaused:
		if v.engine.ManuallyPaused() {
			state = promptPausedStyle.Render("⏸ PAUSED")
		} else {
			state = promptPausedStyle.Render("⏸ PAUSE MARK")
		}
	default:
		state = promptDimStyle.Render("■ STOPPED")
	}

	mirror := ""
	if v.engine.Mirrored() {
		mirror = " · mirror"
	}
	return fmt.Sprintf("%s  %s  speed %d · font %s%s  chunk %d/%d",
		state,
		promptStatusStyle.Render(clock),
		v.engine.Speed(),
		v.engine.Font(),
		mirror,
		v.engine.Active()+1,
		len(v.engine.Chunks()),
	)
}

func reverseRunes(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
