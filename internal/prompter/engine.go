// internal/prompter/engine.go
//
// Playback engine for the teleprompter. The engine is a pure state machine:
// the TUI drives it with Tick every 50ms and schedules pause expiries as
// one-shot timers. Every transition is synchronous and deterministic, which
// is what makes the playback behavior testable.
//
// States: Stopped, Playing, Paused. A pause is either manual (presenter hit
// pause) or automatic (an active chunk carried a pause duration). Automatic
// pauses expire and resume playback; manual pauses only end on Play. Each
// scheduled expiry carries a generation token, and any transition that should
// invalidate in-flight expiries bumps the generation, so a stale timer firing
// late is a no-op.

package prompter

import (
	"time"

	"github.com/airwavefm/airwave/internal/pipeline"
)

// State is the playback state.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// FontSize is the 4-step display scale.
type FontSize int

const (
	FontSmall FontSize = iota
	FontMedium
	FontLarge
	FontXLarge
)

func (f FontSize) String() string {
	switch f {
	case FontSmall:
		return "small"
	case FontLarge:
		return "large"
	case FontXLarge:
		return "xlarge"
	default:
		return "medium"
	}
}

// lineHeight returns the scroll units one rendered line occupies.
func (f FontSize) lineHeight() float64 {
	switch f {
	case FontSmall:
		return 20
	case FontLarge:
		return 32
	case FontXLarge:
		return 40
	default:
		return 24
	}
}

const (
	// TickInterval is the cadence the TUI drives the engine at.
	TickInterval = 50 * time.Millisecond

	minSpeed = 10
	maxSpeed = 200

	// centerTolerance is how close (in scroll units) a chunk's center must
	// be to the viewport center to become active.
	centerTolerance = 100

	// cellHeight converts terminal rows to scroll units.
	cellHeight = 24
)

// TickResult reports what a Tick did. When AutoPaused is set the caller must
// schedule a one-shot timer for PauseFor and deliver PauseExpire(Gen) when it
// fires.
type TickResult struct {
	AutoPaused bool
	PauseFor   time.Duration
	Gen        int
}

// Engine holds playback state for one teleprompter script.
type Engine struct {
	chunks []pipeline.Chunk

	state       State
	manualPause bool
	pauseGen    int

	scroll float64
	speed  int
	font   FontSize
	mirror bool
	active int

	width  int
	height int

	startTime time.Time
	now       func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the time source used for the elapsed timer.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithViewport sets the terminal viewport in cells.
func WithViewport(width, height int) Option {
	return func(e *Engine) { e.width = width; e.height = height }
}

// New builds an engine over the script's chunks, stopped at the top.
func New(chunks []pipeline.Chunk, opts ...Option) *Engine {
	e := &Engine{
		chunks: chunks,
		speed:  50,
		font:   FontMedium,
		width:  80,
		height: 24,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Playable reports whether there is anything to play.
func (e *Engine) Playable() bool { return len(e.chunks) > 0 }

// State returns the current playback state.
func (e *Engine) State() State { return e.state }

// Chunks returns the script chunks.
func (e *Engine) Chunks() []pipeline.Chunk { return e.chunks }

// Active returns the index of the active chunk.
func (e *Engine) Active() int { return e.active }

// Speed returns the scroll speed in units per second.
func (e *Engine) Speed() int { return e.speed }

// Font returns the current font size.
func (e *Engine) Font() FontSize { return e.font }

// Mirrored reports whether mirror rendering is on.
func (e *Engine) Mirrored() bool { return e.mirror }

// Scroll returns the current scroll offset in units.
func (e *Engine) Scroll() float64 { return e.scroll }

// ManuallyPaused reports whether the current pause was presenter-requested.
func (e *Engine) ManuallyPaused() bool { return e.state == StatePaused && e.manualPause }

// SetViewport resizes the viewport. Scroll position is kept.
func (e *Engine) SetViewport(width, height int) {
	if width > 0 {
		e.width = width
	}
	if height > 0 {
		e.height = height
	}
}

// Play starts or resumes playback. Starting from Stopped latches the show
// timer. A no-op when already playing or when there is nothing to play.
func (e *Engine) Play() {
	if !e.Playable() || e.state == StatePlaying {
		return
	}
	if e.startTime.IsZero() {
		e.startTime = e.now()
	}
	e.state = StatePlaying
	e.manualPause = false
	e.pauseGen++
}

// Pause is the presenter's pause. It wins over any pending automatic resume.
func (e *Engine) Pause() {
	if e.state != StatePlaying {
		if e.state == StatePaused {
			// Upgrading an automatic pause to a manual one cancels the
			// scheduled resume.
			e.manualPause = true
			e.pauseGen++
		}
		return
	}
	e.state = StatePaused
	e.manualPause = true
	e.pauseGen++
}

// TogglePlay flips between playing and paused.
func (e *Engine) TogglePlay() {
	if e.state == StatePlaying {
		e.Pause()
	} else {
		e.Play()
	}
}

// Restart resets playback to the top and stops.
func (e *Engine) Restart() {
	e.state = StateStopped
	e.manualPause = false
	e.pauseGen++
	e.scroll = 0
	e.active = 0
	e.startTime = time.Time{}
}

// Tick advances playback by one interval. Outside Playing it is a no-op.
func (e *Engine) Tick() TickResult {
	if e.state != StatePlaying {
		return TickResult{}
	}

	e.scroll += float64(e.speed) / 20
	if max := e.maxScroll(); e.scroll > max {
		e.scroll = max
	}

	prev := e.active
	e.active = e.chunkNearCenter()
	if e.active != prev {
		pause := e.chunks[e.active].Pause
		if pause > 0 {
			e.state = StatePaused
			e.manualPause = false
			e.pauseGen++
			return TickResult{
				AutoPaused: true,
				PauseFor:   time.Duration(pause) * time.Millisecond,
				Gen:        e.pauseGen,
			}
		}
	}
	return TickResult{}
}

// PauseExpire ends the automatic pause that scheduled it. Stale generations
// and manual pauses are ignored.
func (e *Engine) PauseExpire(gen int) {
	if gen != e.pauseGen || e.state != StatePaused || e.manualPause {
		return
	}
	e.state = StatePlaying
}

// AdjustSpeed nudges the scroll speed, clamped to [10, 200].
func (e *Engine) AdjustSpeed(delta int) {
	e.SetSpeed(e.speed + delta)
}

// SetSpeed sets the scroll speed, clamped to [10, 200].
func (e *Engine) SetSpeed(speed int) {
	if speed < minSpeed {
		speed = minSpeed
	}
	if speed > maxSpeed {
		speed = maxSpeed
	}
	e.speed = speed
}

// FontLarger steps the font up one size.
func (e *Engine) FontLarger() {
	if e.font < FontXLarge {
		e.font++
	}
}

// FontSmaller steps the font down one size.
func (e *Engine) FontSmaller() {
	if e.font > FontSmall {
		e.font--
	}
}

// ToggleMirror flips mirror rendering. Playback state is untouched.
func (e *Engine) ToggleMirror() { e.mirror = !e.mirror }

// NextChunk recenters on the next non-break chunk.
func (e *Engine) NextChunk() {
	for i := e.active + 1; i < len(e.chunks); i++ {
		if e.chunks[i].SectionType != "break" {
			e.centerOn(i)
			return
		}
	}
}

// PrevChunk recenters on the previous non-break chunk.
func (e *Engine) PrevChunk() {
	for i := e.active - 1; i >= 0; i-- {
		if e.chunks[i].SectionType != "break" {
			e.centerOn(i)
			return
		}
	}
}

// Elapsed returns time on air since the first Play, zero when never started.
// The clock keeps running through pauses, like a studio timer would.
func (e *Engine) Elapsed() time.Duration {
	if e.startTime.IsZero() {
		return 0
	}
	return e.now().Sub(e.startTime)
}

// Progress returns scroll completion in [0, 1].
func (e *Engine) Progress() float64 {
	max := e.maxScroll()
	if max <= 0 {
		return 0
	}
	p := e.scroll / max
	if p > 1 {
		p = 1
	}
	return p
}

// chunkHeight returns the scroll units a chunk occupies. Break chunks render
// as one blank line but still take up space so their pause timing fires.
func (e *Engine) chunkHeight(c pipeline.Chunk) float64 {
	lh := e.font.lineHeight()
	if c.SectionType == "break" || c.Text == "" {
		return lh
	}
	wrapWidth := int(float64(e.width) * 20 / lh)
	if wrapWidth < 1 {
		wrapWidth = 1
	}
	lines := (len([]rune(c.Text)) + wrapWidth - 1) / wrapWidth
	if lines < 1 {
		lines = 1
	}
	return float64(lines) * lh
}

func (e *Engine) totalHeight() float64 {
	var total float64
	for _, c := range e.chunks {
		total += e.chunkHeight(c)
	}
	return total
}

func (e *Engine) viewportUnits() float64 {
	return float64(e.height) * cellHeight
}

func (e *Engine) maxScroll() float64 {
	max := e.totalHeight() - e.viewportUnits()
	if max < 0 {
		return 0
	}
	return max
}

// chunkNearCenter finds the chunk whose center is nearest the viewport
// center, within tolerance. Falls back to the current active chunk.
func (e *Engine) chunkNearCenter() int {
	center := e.scroll + e.viewportUnits()/2
	best := e.active
	bestDist := float64(centerTolerance)
	var top float64
	for i, c := range e.chunks {
		h := e.chunkHeight(c)
		chunkCenter := top + h/2
		if d := abs(chunkCenter - center); d < bestDist {
			best = i
			bestDist = d
		}
		top += h
	}
	return best
}

// centerOn scrolls so chunk i sits at the viewport center.
func (e *Engine) centerOn(i int) {
	var top float64
	for j := 0; j < i; j++ {
		top += e.chunkHeight(e.chunks[j])
	}
	target := top + e.chunkHeight(e.chunks[i])/2 - e.viewportUnits()/2
	if target < 0 {
		target = 0
	}
	if max := e.maxScroll(); target > max {
		target = max
	}
	e.scroll = target
	e.active = i
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
