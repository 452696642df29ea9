package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/airwavefm/airwave/internal/database"
	"github.com/airwavefm/airwave/internal/news"
	"github.com/airwavefm/airwave/internal/script"
)

type fakeSource struct {
	items []news.Item
	err   error
}

func (f fakeSource) FetchBatch(ctx context.Context, sources, categories []string, limit int) ([]news.Item, error) {
	return f.items, f.err
}

func newTestScriptStore(t *testing.T) *script.Store {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return script.NewStore(db)
}

func stageCompleter() fakeCompleter {
	return fakeCompleter{fn: func(prompt string) (string, error) {
		if strings.Contains(prompt, "relevanceScore") {
			return `{"title":"Cleaned","summary":"A short summary.","relevanceScore":8,"category":"general"}`, nil
		}
		return "In the presenter's voice, here is the story!", nil
	}}
}

func TestRunExecutesAllStages(t *testing.T) {
	store := newTestScriptStore(t)
	source := fakeSource{items: []news.Item{
		{ID: "a", Source: "metro-fm", Title: "One", Content: "First content."},
		{ID: "b", Source: "metro-fm", Title: "Two", Content: "Second content."},
	}}

	var stages []string
	runner := NewRunner(source, stageCompleter(),
		WithScriptStore(store),
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC) }),
		WithProgress(func(stage string) { stages = append(stages, stage) }),
	)

	result, err := runner.Run(context.Background(), "sofia", testProfile(), Options{Limit: 10})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(result.Cleaned) != 2 || len(result.Styled) != 2 {
		t.Fatalf("stage outputs wrong: %d cleaned, %d styled", len(result.Cleaned), len(result.Styled))
	}
	if len(result.Populated.Sections) != 7 {
		t.Fatalf("expected 7 sections, got %d", len(result.Populated.Sections))
	}
	if len(result.Teleprompter.Chunks) == 0 {
		t.Fatal("no teleprompter chunks produced")
	}
	if len(stages) != 5 {
		t.Fatalf("expected 5 progress callbacks, got %v", stages)
	}

	if result.Script == nil {
		t.Fatal("script was not persisted")
	}
	if result.Script.Title != "Script - Jun 1, 2025" {
		t.Fatalf("script title wrong: %q", result.Script.Title)
	}
	persisted, err := store.Get(context.Background(), result.Script.ID)
	if err != nil {
		t.Fatalf("load persisted script: %v", err)
	}
	if persisted.Status != script.StatusReady {
		t.Fatalf("persisted status = %s, want ready", persisted.Status)
	}
	var tp TeleprompterScript
	if err := json.Unmarshal(persisted.Teleprompter, &tp); err != nil {
		t.Fatalf("unmarshal persisted teleprompter: %v", err)
	}
	if len(tp.Chunks) != len(result.Teleprompter.Chunks) {
		t.Fatalf("persisted chunks = %d, want %d", len(tp.Chunks), len(result.Teleprompter.Chunks))
	}
}

func TestRunWithoutStoreStillProducesResult(t *testing.T) {
	source := fakeSource{items: []news.Item{{ID: "a", Title: "One", Content: "Content."}}}
	runner := NewRunner(source, stageCompleter())
	result, err := runner.Run(context.Background(), "sofia", testProfile(), Options{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Script != nil {
		t.Fatal("expected no persisted script without a store")
	}
	if len(result.Teleprompter.Chunks) == 0 {
		t.Fatal("no chunks produced")
	}
}

func TestRunRequiresProfile(t *testing.T) {
	runner := NewRunner(fakeSource{}, stageCompleter())
	if _, err := runner.Run(context.Background(), "sofia", nil, Options{}); !errors.Is(err, ErrNoProfile) {
		t.Fatalf("expected ErrNoProfile, got %v", err)
	}
}

func TestRunPropagatesFetchFailure(t *testing.T) {
	runner := NewRunner(fakeSource{err: errors.New("network down")}, stageCompleter())
	if _, err := runner.Run(context.Background(), "sofia", testProfile(), Options{}); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
}
