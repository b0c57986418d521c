package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-capreplay/capreplay/decode"
	"github.com/valerio/go-capreplay/capreplay/platform"
)

// stubProcessor is a scriptable frame source. It advances until totalFrames
// is reached, or fails with a sticky error once failAtFrame would be
// processed.
type stubProcessor struct {
	frame       uint32
	totalFrames uint32
	failAtFrame uint32 // 0 = never fail
	errState    decode.ErrorState
	idleCalls   int
}

func (p *stubProcessor) CurrentFrameNumber() uint32 { return p.frame }

func (p *stubProcessor) ProcessNextFrame() bool {
	if p.errState != decode.ErrorNone {
		return false
	}
	if p.failAtFrame != 0 && p.frame+1 == p.failAtFrame {
		p.errState = decode.ErrorOccurred
		return false
	}
	if p.frame >= p.totalFrames {
		return false
	}
	p.frame++
	return true
}

func (p *stubProcessor) WaitIdle()                     { p.idleCalls++ }
func (p *stubProcessor) ErrorState() decode.ErrorState { return p.errState }

// scriptPlatform returns pre-scripted events keyed by loop iteration.
type scriptPlatform struct {
	events      map[int][]platform.Event
	updateErrAt int // iteration at which Update fails, -1 = never
	iteration   int
	initialized bool
	cleaned     bool
}

func newScriptPlatform() *scriptPlatform {
	return &scriptPlatform{events: make(map[int][]platform.Event), updateErrAt: -1}
}

func (s *scriptPlatform) on(iteration int, action platform.Action) {
	s.events[iteration] = append(s.events[iteration], platform.Event{Action: action})
}

func (s *scriptPlatform) Init(config platform.Config) error {
	s.initialized = true
	return nil
}

func (s *scriptPlatform) Update(status platform.Status, waitForInput bool) ([]platform.Event, error) {
	defer func() { s.iteration++ }()
	if s.updateErrAt >= 0 && s.iteration == s.updateErrAt {
		return nil, assert.AnError
	}
	return s.events[s.iteration], nil
}

func (s *scriptPlatform) Cleanup() error {
	s.cleaned = true
	return nil
}

func newTestApp(t *testing.T, proc *stubProcessor, plat *scriptPlatform) *Application {
	t.Helper()

	a := New("test", plat)
	a.console = &bytes.Buffer{}
	require.NoError(t, a.Initialize(proc))
	assert.True(t, plat.initialized)
	return a
}

func TestRunStopsAtEndOfCapture(t *testing.T) {
	proc := &stubProcessor{totalFrames: 5}
	a := newTestApp(t, proc, newScriptPlatform())

	err := a.Run(DefaultRunConfig())

	assert.NoError(t, err)
	assert.False(t, a.Running())
	assert.Equal(t, uint32(5), proc.CurrentFrameNumber())
}

func TestRunStopsOnQuitEvent(t *testing.T) {
	proc := &stubProcessor{totalFrames: 100}
	plat := newScriptPlatform()
	plat.on(3, platform.ActionQuit)
	a := newTestApp(t, proc, plat)

	err := a.Run(DefaultRunConfig())

	assert.NoError(t, err)
	// Three frames were processed before the quit event was seen.
	assert.Equal(t, uint32(3), proc.CurrentFrameNumber())
}

func TestRunReturnsErrorOnProcessorFailure(t *testing.T) {
	proc := &stubProcessor{totalFrames: 100, failAtFrame: 4}
	a := newTestApp(t, proc, newScriptPlatform())

	err := a.Run(DefaultRunConfig())

	assert.Error(t, err)
	assert.False(t, a.Running())
	assert.Equal(t, uint32(3), proc.CurrentFrameNumber())
}

func TestRunStopsWhenEventProcessingFails(t *testing.T) {
	proc := &stubProcessor{totalFrames: 100}
	plat := newScriptPlatform()
	plat.updateErrAt = 2
	a := newTestApp(t, proc, plat)

	err := a.Run(DefaultRunConfig())

	assert.NoError(t, err)
	assert.Equal(t, uint32(2), proc.CurrentFrameNumber())
}

func TestAutoPauseAtConfiguredFrame(t *testing.T) {
	proc := &stubProcessor{totalFrames: 100}
	plat := newScriptPlatform()
	// By iteration 5 the pause must have happened; quit to end the run.
	plat.on(5, platform.ActionQuit)
	a := newTestApp(t, proc, plat)
	a.SetPauseFrame(3)

	pauseNotices := countPauseNotices(t, func() {
		require.NoError(t, a.Run(DefaultRunConfig()))
	})

	assert.True(t, a.Paused())
	assert.Equal(t, uint32(3), proc.CurrentFrameNumber(), "no frames advance past the pause frame")
	assert.Equal(t, 1, pauseNotices, "pausing is announced exactly once")
}

func TestManualStepWhilePaused(t *testing.T) {
	proc := &stubProcessor{totalFrames: 100}
	plat := newScriptPlatform()
	plat.on(1, platform.ActionPauseToggle)
	plat.on(2, platform.ActionStepFrame)
	plat.on(3, platform.ActionStepFrame)
	plat.on(4, platform.ActionQuit)
	a := newTestApp(t, proc, plat)

	require.NoError(t, a.Run(DefaultRunConfig()))

	assert.True(t, a.Paused())
	// One frame before the pause, then exactly one per step event.
	assert.Equal(t, uint32(3), proc.CurrentFrameNumber())
}

func TestStepFrameIgnoredWhileRunning(t *testing.T) {
	proc := &stubProcessor{totalFrames: 100}
	plat := newScriptPlatform()
	plat.on(1, platform.ActionStepFrame)
	plat.on(2, platform.ActionQuit)
	a := newTestApp(t, proc, plat)

	require.NoError(t, a.Run(DefaultRunConfig()))

	assert.Equal(t, uint32(2), proc.CurrentFrameNumber())
}

func TestPauseToggleResumes(t *testing.T) {
	proc := &stubProcessor{totalFrames: 100}
	plat := newScriptPlatform()
	plat.on(2, platform.ActionPauseToggle)
	plat.on(4, platform.ActionPauseToggle)
	plat.on(6, platform.ActionQuit)
	a := newTestApp(t, proc, plat)

	require.NoError(t, a.Run(DefaultRunConfig()))

	assert.False(t, a.Paused())
	// Frames advanced on iterations 0, 1, 4 and 5.
	assert.Equal(t, uint32(4), proc.CurrentFrameNumber())
}

func TestPlaySingleFrameWithoutProcessor(t *testing.T) {
	a := New("test", newScriptPlatform())
	a.console = &bytes.Buffer{}
	a.running = true

	assert.False(t, a.PlaySingleFrame())
	assert.False(t, a.Running())
}

func TestInitializeRejectsNilProcessor(t *testing.T) {
	a := New("test", newScriptPlatform())

	assert.Error(t, a.Initialize(nil))
}

func TestSetPausedNoticeRequiresProgress(t *testing.T) {
	proc := &stubProcessor{totalFrames: 10}
	a := newTestApp(t, proc, newScriptPlatform())

	// No frame has been processed yet, pausing stays silent.
	notices := countPauseNotices(t, func() { a.SetPaused(true) })
	assert.Equal(t, 0, notices)

	proc.ProcessNextFrame()
	notices = countPauseNotices(t, func() { a.SetPaused(true) })
	assert.Equal(t, 1, notices)
}

// countPauseNotices runs fn with a slog handler installed that counts
// emitted pause notices.
func countPauseNotices(t *testing.T, fn func()) int {
	t.Helper()

	counter := &pauseNoticeCounter{}
	prev := slog.Default()
	slog.SetDefault(slog.New(counter))
	defer slog.SetDefault(prev)

	fn()
	return counter.count
}

type pauseNoticeCounter struct {
	count int
}

func (c *pauseNoticeCounter) Enabled(context.Context, slog.Level) bool { return true }

func (c *pauseNoticeCounter) Handle(_ context.Context, record slog.Record) error {
	if strings.Contains(record.Message, "paused") {
		c.count++
	}
	return nil
}

func (c *pauseNoticeCounter) WithAttrs([]slog.Attr) slog.Handler { return c }
func (c *pauseNoticeCounter) WithGroup(string) slog.Handler      { return c }
