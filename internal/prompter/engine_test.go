package prompter

import (
	"testing"
	"time"

	"github.com/airwavefm/airwave/internal/pipeline"
)

// testChunks builds a three-chunk script where the second chunk carries a
// pause, sized so the first Tick at default speed crosses into it.
func testChunks() []pipeline.Chunk {
	return []pipeline.Chunk{
		{Text: "First sentence of the show.", SectionType: "intro"},
		{Text: "Now, a dramatic pause.", Pause: 1200, SectionType: "intro"},
		{Text: "And we carry on with the stories.", SectionType: "intro"},
	}
}

func newTestEngine(chunks []pipeline.Chunk) (*Engine, *time.Time) {
	clock := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	e := New(chunks,
		WithClock(func() time.Time { return clock }),
		WithViewport(80, 2),
	)
	return e, &clock
}

func TestPlayPauseToggle(t *testing.T) {
	e, _ := newTestEngine(testChunks())
	if e.State() != StateStopped {
		t.Fatalf("initial state = %s, want stopped", e.State())
	}
	e.Play()
	if e.State() != StatePlaying {
		t.Fatalf("state after Play = %s", e.State())
	}
	e.TogglePlay()
	if e.State() != StatePaused || !e.ManuallyPaused() {
		t.Fatalf("toggle should manually pause, state = %s", e.State())
	}
	e.TogglePlay()
	if e.State() != StatePlaying {
		t.Fatalf("toggle should resume, state = %s", e.State())
	}
}

func TestPlayOnEmptyScriptIsNoOp(t *testing.T) {
	e, _ := newTestEngine(nil)
	if e.Playable() {
		t.Fatal("empty script should not be playable")
	}
	e.Play()
	if e.State() != StateStopped {
		t.Fatalf("empty script must stay stopped, state = %s", e.State())
	}
	if r := e.Tick(); r.AutoPaused {
		t.Fatal("tick on empty script paused")
	}
}

func TestTickAdvancesScrollBySpeed(t *testing.T) {
	e, _ := newTestEngine(testChunks())
	e.Play()
	before := e.Scroll()
	e.Tick()
	if got := e.Scroll() - before; got != float64(e.Speed())/20 {
		t.Fatalf("scroll advanced by %v, want %v", got, float64(e.Speed())/20)
	}
}

func TestTickIsNoOpUnlessPlaying(t *testing.T) {
	e, _ := newTestEngine(testChunks())
	e.Tick()
	if e.Scroll() != 0 {
		t.Fatalf("stopped tick moved scroll to %v", e.Scroll())
	}
	e.Play()
	e.Pause()
	e.Tick()
	if e.Scroll() != 0 {
		t.Fatalf("paused tick moved scroll to %v", e.Scroll())
	}
}

func TestAutoPauseAndResume(t *testing.T) {
	e, _ := newTestEngine(testChunks())
	e.Play()

	var result TickResult
	for i := 0; i < 100; i++ {
		result = e.Tick()
		if result.AutoPaused {
			break
		}
	}
	if !result.AutoPaused {
		t.Fatal("never entered the pausing chunk")
	}
	if result.PauseFor != 1200*time.Millisecond {
		t.Fatalf("pause duration = %v, want 1.2s", result.PauseFor)
	}
	if e.State() != StatePaused || e.ManuallyPaused() {
		t.Fatalf("expected automatic pause, state = %s manual = %v", e.State(), e.ManuallyPaused())
	}

	e.PauseExpire(result.Gen)
	if e.State() != StatePlaying {
		t.Fatalf("expiry should resume, state = %s", e.State())
	}
}

func TestManualPauseWinsOverPendingResume(t *testing.T) {
	e, _ := newTestEngine(testChunks())
	e.Play()

	var result TickResult
	for i := 0; i < 100; i++ {
		if result = e.Tick(); result.AutoPaused {
			break
		}
	}
	if !result.AutoPaused {
		t.Fatal("never entered the pausing chunk")
	}

	// Presenter pauses during the automatic pause window.
	e.Pause()
	if !e.ManuallyPaused() {
		t.Fatal("pause should be manual now")
	}

	// The scheduled expiry fires late with its stale generation.
	e.PauseExpire(result.Gen)
	if e.State() != StatePaused || !e.ManuallyPaused() {
		t.Fatalf("stale expiry resumed over a manual pause: %s", e.State())
	}
}

func TestStaleExpiryAfterRestartIsIgnored(t *testing.T) {
	e, _ := newTestEngine(testChunks())
	e.Play()

	var result TickResult
	for i := 0; i < 100; i++ {
		if result = e.Tick(); result.AutoPaused {
			break
		}
	}
	e.Restart()
	e.PauseExpire(result.Gen)
	if e.State() != StateStopped {
		t.Fatalf("stale expiry changed state after restart: %s", e.State())
	}
}

func TestRestartResetsEverything(t *testing.T) {
	e, clock := newTestEngine(testChunks())
	e.Play()
	for i := 0; i < 10; i++ {
		e.Tick()
	}
	*clock = clock.Add(90 * time.Second)
	if e.Elapsed() != 90*time.Second {
		t.Fatalf("elapsed = %v, want 90s", e.Elapsed())
	}

	e.Restart()
	if e.State() != StateStopped {
		t.Fatalf("state after restart = %s", e.State())
	}
	if e.Scroll() != 0 || e.Active() != 0 {
		t.Fatalf("scroll/active not reset: %v / %d", e.Scroll(), e.Active())
	}
	if e.Elapsed() != 0 {
		t.Fatalf("elapsed not reset: %v", e.Elapsed())
	}
}

func TestSpeedClamping(t *testing.T) {
	e, _ := newTestEngine(testChunks())
	e.SetSpeed(500)
	if e.Speed() != 200 {
		t.Fatalf("speed = %d, want 200", e.Speed())
	}
	e.SetSpeed(-5)
	if e.Speed() != 10 {
		t.Fatalf("speed = %d, want 10", e.Speed())
	}
	e.AdjustSpeed(-100)
	if e.Speed() != 10 {
		t.Fatalf("adjust below floor gave %d", e.Speed())
	}
	e.SetSpeed(120)
	e.AdjustSpeed(10)
	if e.Speed() != 130 {
		t.Fatalf("adjust gave %d, want 130", e.Speed())
	}
}

func TestFontStepsAreBounded(t *testing.T) {
	e, _ := newTestEngine(testChunks())
	if e.Font() != FontMedium {
		t.Fatalf("default font = %s", e.Font())
	}
	e.FontLarger()
	e.FontLarger()
	e.FontLarger()
	if e.Font() != FontXLarge {
		t.Fatalf("font above xlarge: %s", e.Font())
	}
	for i := 0; i < 5; i++ {
		e.FontSmaller()
	}
	if e.Font() != FontSmall {
		t.Fatalf("font below small: %s", e.Font())
	}
}

func TestMirrorDoesNotTouchPlayback(t *testing.T) {
	e, _ := newTestEngine(testChunks())
	e.Play()
	e.ToggleMirror()
	if !e.Mirrored() {
		t.Fatal("mirror not toggled")
	}
	if e.State() != StatePlaying {
		t.Fatalf("mirror changed state: %s", e.State())
	}
}

func TestNextPrevChunkSkipBreaks(t *testing.T) {
	chunks := []pipeline.Chunk{
		{Text: "One.", SectionType: "intro"},
		{Text: "", Pause: 2000, SectionType: "break"},
		{Text: "Two.", SectionType: "weather"},
	}
	e, _ := newTestEngine(chunks)
	e.NextChunk()
	if e.Active() != 2 {
		t.Fatalf("next should skip break, active = %d", e.Active())
	}
	e.PrevChunk()
	if e.Active() != 0 {
		t.Fatalf("prev should skip break, active = %d", e.Active())
	}
}
