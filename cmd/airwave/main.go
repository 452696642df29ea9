// cmd/airwave/main.go
//
// This is the entry point for the Airwave TUI.
// It loads ~/.airwave (config, sqlite database, session log), builds the
// application model, and hands control to bubbletea.

package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/airwavefm/airwave/internal/config"
	"github.com/airwavefm/airwave/internal/tui"
)

func main() {
	airwaveDir := flag.String("dir", "", "path to the airwave data directory (defaults to ~/.airwave)")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *airwaveDir != "" {
		cfg, err = config.NewAt(*airwaveDir)
	} else {
		cfg, err = config.New()
	}
	if err != nil {
		die("load config: %v", err)
	}

	app, err := tui.NewApp(cfg)
	if err != nil {
		die("start airwave: %v", err)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		die("run TUI: %v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
