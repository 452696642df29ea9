package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsMostRecentLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines := book.Tail(3)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestLevelsAreRecorded(t *testing.T) {
	dir := t.TempDir()
	book, err := New(filepath.Join(dir, "session.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.Info("fetched %d items", 4)
	book.Warn("source %s degraded", "metro-fm")
	book.Error("llm call failed: %v", "timeout")
	lines := book.Tail(10)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"INFO", "WARN", "ERROR"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing level %s", idx, lines[idx], want)
		}
	}
}

func TestNilLogbookIsInert(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	if lines := book.Tail(5); lines != nil {
		t.Fatalf("nil logbook tail = %v, want nil", lines)
	}
	if book.Path() != "" {
		t.Fatalf("nil logbook path = %q, want empty", book.Path())
	}
}
