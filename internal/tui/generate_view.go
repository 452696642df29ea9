package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/airwavefm/airwave/internal/news"
	"github.com/airwavefm/airwave/internal/pipeline"
	"github.com/airwavefm/airwave/internal/profile"
	"github.com/airwavefm/airwave/internal/script"
)

const stageTimeout = 2 * time.Minute

var (
	stageDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	stageRunningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	stagePendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	stageErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	stageDetailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
)

// generateView runs the production pipeline one stage at a time so the
// dashboard can paint progress between stages.
type generateView struct {
	app *App

	stage   int
	details []string
	err     error
	done    bool

	prof      *profile.Profile
	sc        *script.Script
	raw       []news.Item
	cleaned   []pipeline.CleanedItem
	styled    []pipeline.StyledItem
	populated pipeline.PopulatedScript
	tele      pipeline.TeleprompterScript
}

var generateStages = []string{
	"Fetch news",
	"Clean stories",
	"Apply presenter style",
	"Populate show template",
	"Generate teleprompter",
}

type genFetchedMsg struct {
	prof *profile.Profile
	sc   *script.Script
	raw  []news.Item
	err  error
}

type genCleanedMsg struct {
	cleaned []pipeline.CleanedItem
	err     error
}

type genStyledMsg struct {
	styled []pipeline.StyledItem
	err    error
}

type genPopulatedMsg struct {
	populated pipeline.PopulatedScript
	err       error
}

type genReadyMsg struct {
	tele pipeline.TeleprompterScript
	err  error
}

func newGenerateView(app *App) *generateView {
	return &generateView{app: app}
}

func (v *generateView) Init() tea.Cmd {
	return v.fetchCmd()
}

// fetchCmd loads the profile, pulls the news batch, and opens a draft
// script row so partial results survive a failed stage.
func (v *generateView) fetchCmd() tea.Cmd {
	app := v.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), stageTimeout)
		defer cancel()

		prof, err := app.profiles.Get(ctx, app.userID)
		if err != nil {
			return genFetchedMsg{err: fmt.Errorf("load profile: %w", err)}
		}

		var names []string
		for _, src := range app.config.Sources() {
			names = append(names, src.Name)
		}
		categories := prof.TopicPreferences
		if len(categories) == 0 {
			categories = app.config.App.News.Categories
		}
		items, err := app.source.FetchBatch(ctx, names, categories, app.config.App.News.Limit)
		if err != nil {
			return genFetchedMsg{prof: prof, err: fmt.Errorf("fetch news: %w", err)}
		}

		title := fmt.Sprintf("Script - %s", time.Now().Format("Jan 2, 2006"))
		sc, err := app.scripts.Create(ctx, app.userID, title)
		if err != nil {
			return genFetchedMsg{prof: prof, raw: items, err: fmt.Errorf("create script: %w", err)}
		}
		payload, _ := json.Marshal(items)
		sc.RawNews = payload
		sc.Status = script.StatusProcessing
		if err := app.scripts.Update(ctx, sc); err != nil {
			return genFetchedMsg{prof: prof, sc: sc, raw: items, err: fmt.Errorf("save raw news: %w", err)}
		}
		return genFetchedMsg{prof: prof, sc: sc, raw: items}
	}
}

func (v *generateView) cleanCmd() tea.Cmd {
	app := v.app
	raw := v.raw
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), stageTimeout)
		defer cancel()
		cleaned := pipeline.CleanBatch(ctx, app.completer, raw, app.book)
		return genCleanedMsg{cleaned: cleaned, err: v.persist(ctx, func(sc *script.Script) error {
			payload, err := json.Marshal(cleaned)
			if err != nil {
				return err
			}
			sc.CleanedNews = payload
			return nil
		})}
	}
}

func (v *generateView) styleCmd() tea.Cmd {
	app := v.app
	prof := v.prof
	cleaned := v.cleaned
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), stageTimeout)
		defer cancel()
		styled := pipeline.StyleBatch(ctx, app.completer, cleaned, prof, app.book)
		return genStyledMsg{styled: styled, err: v.persist(ctx, func(sc *script.Script) error {
			payload, err := json.Marshal(styled)
			if err != nil {
				return err
			}
			sc.StyledNews = payload
			return nil
		})}
	}
}

func (v *generateView) populateCmd() tea.Cmd {
	prof := v.prof
	styled := v.styled
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), stageTimeout)
		defer cancel()
		populated := pipeline.PopulateTemplate(styled, prof.ShowStructure, prof)
		return genPopulatedMsg{populated: populated, err: v.persist(ctx, func(sc *script.Script) error {
			payload, err := json.Marshal(populated)
			if err != nil {
				return err
			}
			sc.Populated = payload
			return nil
		})}
	}
}

func (v *generateView) teleprompterCmd() tea.Cmd {
	populated := v.populated
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), stageTimeout)
		defer cancel()
		tele := pipeline.GenerateTeleprompter(populated)
		return genReadyMsg{tele: tele, err: v.persist(ctx, func(sc *script.Script) error {
			payload, err := json.Marshal(tele)
			if err != nil {
				return err
			}
			sc.Teleprompter = payload
			sc.Status = script.StatusReady
			return nil
		})}
	}
}

// persist applies mutate to the working script row and writes it back.
// Runs without a script row when creation failed earlier.
func (v *generateView) persist(ctx context.Context, mutate func(*script.Script) error) error {
	if v.sc == nil {
		return nil
	}
	if err := mutate(v.sc); err != nil {
		return err
	}
	return v.app.scripts.Update(ctx, v.sc)
}

func (v *generateView) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case genFetchedMsg:
		v.prof = m.prof
		v.sc = m.sc
		v.raw = m.raw
		if m.err != nil {
			return v.fail(m.err)
		}
		v.advance(fmt.Sprintf("%d stories", len(m.raw)))
		return v.cleanCmd()
	case genCleanedMsg:
		v.cleaned = m.cleaned
		if m.err != nil {
			return v.fail(m.err)
		}
		v.advance(fmt.Sprintf("%d cleaned", len(m.cleaned)))
		return v.styleCmd()
	case genStyledMsg:
		v.styled = m.styled
		if m.err != nil {
			return v.fail(m.err)
		}
		v.advance(fmt.Sprintf("%d styled", len(m.styled)))
		return v.populateCmd()
	case genPopulatedMsg:
		v.populated = m.populated
		if m.err != nil {
			return v.fail(m.err)
		}
		v.advance(fmt.Sprintf("%d sections", len(m.populated.Sections)))
		return v.teleprompterCmd()
	case genReadyMsg:
		v.tele = m.tele
		if m.err != nil {
			return v.fail(m.err)
		}
		v.advance(fmt.Sprintf("%d chunks", len(m.tele.Chunks)))
		v.done = true
		v.app.logInfo("Script ready · %d chunks", len(m.tele.Chunks))
		return nil
	}
	return nil
}

func (v *generateView) advance(detail string) {
	v.details = append(v.details, detail)
	v.stage++
}

func (v *generateView) fail(err error) tea.Cmd {
	v.err = err
	v.app.logError("Generation failed at %q: %v", generateStages[v.stage], err)
	return nil
}

func (v *generateView) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF8C42")).
		MarginBottom(1).
		Render("◉ GENERATING SCRIPT")

	var rows []string
	for i, name := range generateStages {
		switch {
		case v.err != nil && i == v.stage:
			rows = append(rows, stageErrorStyle.Render("✗ "+name))
		case i < v.stage:
			line := stageDoneStyle.Render("✓ " + name)
			if i < len(v.details) && v.details[i] != "" {
				line += stageDetailStyle.Render("  " + v.details[i])
			}
			rows = append(rows, line)
		case i == v.stage:
			rows = append(rows, stageRunningStyle.Render("▸ "+name+"..."))
		default:
			rows = append(rows, stagePendingStyle.Render("· "+name))
		}
	}

	var footer string
	switch {
	case v.err != nil:
		footer = stageErrorStyle.Render(fmt.Sprintf("Error: %v", v.err)) + "\n" +
			stageDetailStyle.Render("Esc → back to dashboard")
	case v.done:
		footer = stageDoneStyle.Render("Script is ready.") + "\n" +
			stageDetailStyle.Render("Enter → open teleprompter · Esc → dashboard")
	default:
		footer = stageDetailStyle.Render("Working... Esc cancels and returns to the dashboard")
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(1, 2).
		Render(strings.Join(rows, "\n"))
	return strings.Join([]string{header, box, footer}, "\n")
}
