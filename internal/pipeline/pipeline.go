// internal/pipeline/pipeline.go
//
// The five-stage run: fetch, clean, style, populate, chunk. Stages execute
// sequentially and each artifact is persisted as it lands, so a crashed run
// leaves a processing script with everything up to the failure.

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/airwavefm/airwave/internal/llm"
	"github.com/airwavefm/airwave/internal/logbook"
	"github.com/airwavefm/airwave/internal/news"
	"github.com/airwavefm/airwave/internal/profile"
	"github.com/airwavefm/airwave/internal/script"
)

// ErrNoProfile means the run was started without a presenter profile.
var ErrNoProfile = errors.New("presenter profile is required")

const llmCallTimeout = 30 * time.Second

// complete issues one completion with a bounded per-call timeout.
func complete(ctx context.Context, c llm.Completer, prompt string, maxTokens int) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()
	return c.Complete(callCtx, prompt, maxTokens)
}

// Options control one pipeline run.
type Options struct {
	Sources    []string
	Categories []string
	Limit      int
}

// Result bundles every stage artifact of a completed run.
type Result struct {
	RawNews      []news.Item
	Cleaned      []CleanedItem
	Styled       []StyledItem
	Populated    PopulatedScript
	Teleprompter TeleprompterScript
	Script       *script.Script
}

// Runner executes pipeline runs. The script store is optional; without it a
// run still produces a Result, it just isn't persisted.
type Runner struct {
	source    news.Source
	completer llm.Completer
	scripts   *script.Store
	book      *logbook.Logbook
	now       func() time.Time
	progress  func(stage string)
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithScriptStore enables persistence of run artifacts.
func WithScriptStore(store *script.Store) RunnerOption {
	return func(r *Runner) { r.scripts = store }
}

// WithLogbook attaches a session logbook.
func WithLogbook(book *logbook.Logbook) RunnerOption {
	return func(r *Runner) { r.book = book }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// WithProgress installs a per-stage callback. The TUI uses it to report
// stage boundaries.
func WithProgress(fn func(stage string)) RunnerOption {
	return func(r *Runner) { r.progress = fn }
}

// NewRunner wires a news source and a completer.
func NewRunner(source news.Source, completer llm.Completer, opts ...RunnerOption) *Runner {
	r := &Runner{
		source:    source,
		completer: completer,
		now:       time.Now,
		progress:  func(string) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes all five stages for userID with the given profile. The script
// row is created with status processing before the first LLM call and flips
// to ready only after chunking lands.
func (r *Runner) Run(ctx context.Context, userID string, p *profile.Profile, opts Options) (*Result, error) {
	if p == nil {
		return nil, ErrNoProfile
	}

	result := &Result{}

	r.progress("fetching news")
	raw, err := r.source.FetchBatch(ctx, opts.Sources, opts.Categories, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	result.RawNews = raw
	r.book.Info("pipeline: fetched %d items", len(raw))

	sc, err := r.createScript(ctx, userID, raw)
	if err != nil {
		return nil, err
	}
	result.Script = sc

	r.progress("cleaning news")
	result.Cleaned = CleanBatch(ctx, r.completer, raw, r.book)
	if err := r.persist(ctx, sc, "cleaned_news", &sc.CleanedNews, result.Cleaned); err != nil {
		return nil, err
	}

	r.progress("styling news")
	result.Styled = StyleBatch(ctx, r.completer, result.Cleaned, p, r.book)
	if err := r.persist(ctx, sc, "styled_news", &sc.StyledNews, result.Styled); err != nil {
		return nil, err
	}

	r.progress("populating template")
	result.Populated = PopulateTemplate(result.Styled, p.ShowStructure, p)
	if err := r.persist(ctx, sc, "populated", &sc.Populated, result.Populated); err != nil {
		return nil, err
	}

	r.progress("generating teleprompter")
	result.Teleprompter = GenerateTeleprompter(result.Populated)
	if sc != nil {
		payload, err := json.Marshal(result.Teleprompter)
		if err != nil {
			return nil, fmt.Errorf("marshal teleprompter: %w", err)
		}
		sc.Teleprompter = payload
		sc.Status = script.StatusReady
		if err := r.scripts.Update(ctx, sc); err != nil {
			return nil, fmt.Errorf("persist teleprompter: %w", err)
		}
	}

	r.book.Info("pipeline: run complete, %d chunks", len(result.Teleprompter.Chunks))
	return result, nil
}

func (r *Runner) createScript(ctx context.Context, userID string, raw []news.Item) (*script.Script, error) {
	if r.scripts == nil {
		return nil, nil
	}
	title := fmt.Sprintf("Script - %s", r.now().Format("Jan 2, 2006"))
	sc, err := r.scripts.Create(ctx, userID, title)
	if err != nil {
		return nil, fmt.Errorf("create script: %w", err)
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal raw news: %w", err)
	}
	sc.RawNews = payload
	sc.Status = script.StatusProcessing
	if err := r.scripts.Update(ctx, sc); err != nil {
		return nil, fmt.Errorf("persist raw news: %w", err)
	}
	return sc, nil
}

func (r *Runner) persist(ctx context.Context, sc *script.Script, field string, dst *json.RawMessage, artifact any) error {
	if sc == nil {
		return nil
	}
	payload, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", field, err)
	}
	*dst = payload
	if err := r.scripts.Update(ctx, sc); err != nil {
		return fmt.Errorf("persist %s: %w", field, err)
	}
	return nil
}
