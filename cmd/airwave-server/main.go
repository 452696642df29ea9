// cmd/airwave-server/main.go
//
// REST entry point. Serves the same pipeline the TUI drives, for stations
// that front Airwave with their own dashboard.

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/airwavefm/airwave/internal/config"
	"github.com/airwavefm/airwave/internal/database"
	"github.com/airwavefm/airwave/internal/httpapi"
	"github.com/airwavefm/airwave/internal/llm"
	"github.com/airwavefm/airwave/internal/logbook"
	"github.com/airwavefm/airwave/internal/news"
	"github.com/airwavefm/airwave/internal/pipeline"
	"github.com/airwavefm/airwave/internal/profile"
	"github.com/airwavefm/airwave/internal/script"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
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
		log.Fatalf("load config: %v", err)
	}

	db := database.MustOpen(database.Config{Path: cfg.DBPath()})
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	book, err := logbook.New(cfg.LogbookPath())
	if err != nil {
		log.Printf("logbook unavailable: %v", err)
	}

	endpoints := make([]news.Endpoint, 0, len(cfg.Sources()))
	for _, src := range cfg.Sources() {
		endpoints = append(endpoints, news.Endpoint{Name: src.Name, Feed: src.Feed, Page: src.Page})
	}
	source := news.NewFetcher(endpoints, news.WithLogbook(book))

	var completer llm.Completer
	if cfg.App.LLM.APIKey != "" {
		completer = llm.NewClient(cfg.App.LLM.APIURL, cfg.App.LLM.Model, cfg.App.LLM.APIKey)
	} else {
		log.Println("no LLM API key configured, serving mock completions")
		completer = llm.Mock{}
	}

	scripts := script.NewStore(db)
	runner := pipeline.NewRunner(source, completer,
		pipeline.WithScriptStore(scripts),
		pipeline.WithLogbook(book),
	)
	srv := httpapi.NewServer(profile.NewStore(db), scripts, runner, book)

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("airwave-server listening on %s", *addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
