// Package app implements the playback controller for capture replay: a
// run loop that polls platform events, advances the frame processor one
// frame at a time, and reports FPS over an optional measurement range.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/valerio/go-capreplay/capreplay/decode"
	"github.com/valerio/go-capreplay/capreplay/platform"
	"github.com/valerio/go-capreplay/capreplay/util/datetime"
	"github.com/valerio/go-capreplay/capreplay/window"
)

// NoPauseFrame disables automatic pausing.
const NoPauseFrame = math.MaxUint32

// NoEndFrame leaves the measurement range open ended.
const NoEndFrame = math.MaxUint32

// Application drives replay playback. It owns the run/pause state and the
// window registry, but borrows the frame processor and platform from the
// caller. All state transitions happen on the control goroutine; there is
// no internal locking.
type Application struct {
	name       string
	platform   platform.Platform
	processor  decode.FrameProcessor
	windows    []window.Window
	running    bool
	paused     bool
	pauseFrame uint32

	console io.Writer
	now     func() int64
}

// New creates an application with the given display name. The platform
// supplies event polling and is initialized later by Initialize.
func New(name string, plat platform.Platform) *Application {
	return &Application{
		name:       name,
		platform:   plat,
		pauseFrame: NoPauseFrame,
		console:    os.Stdout,
		now:        datetime.Timestamp,
	}
}

// Name returns the display name the application was created with.
func (a *Application) Name() string { return a.name }

// Running reports whether the run loop should keep iterating.
func (a *Application) Running() bool { return a.running }

// Paused reports whether frame advancement is suspended.
func (a *Application) Paused() bool { return a.paused }

// SetPauseFrame configures the frame at which replay pauses automatically.
func (a *Application) SetPauseFrame(frame uint32) { a.pauseFrame = frame }

// StopRunning requests the run loop to exit after the current iteration.
func (a *Application) StopRunning() { a.running = false }

// Initialize binds the frame processor and initializes the platform.
func (a *Application) Initialize(processor decode.FrameProcessor) error {
	if processor == nil {
		return errors.New("no frame processor provided")
	}
	a.processor = processor

	return a.platform.Init(platform.Config{
		Title:     a.name,
		Registrar: a,
	})
}

// RunConfig controls the measurement range for a run.
type RunConfig struct {
	// MeasurementStartFrame is the frame at which the FPS measurement
	// starts.
	MeasurementStartFrame uint32
	// MeasurementEndFrame is the frame at which the measurement ends,
	// excluded from the measured interval.
	MeasurementEndFrame uint32
	// QuitAfterRange stops the run loop once the end frame is reached.
	QuitAfterRange bool
	// FlushRange waits for the processor to go idle before sampling each
	// boundary timestamp, so in-flight work doesn't skew the measurement.
	FlushRange bool
}

// DefaultRunConfig returns a config that measures the whole run.
func DefaultRunConfig() RunConfig {
	return RunConfig{MeasurementEndFrame: NoEndFrame}
}

// Run executes the playback loop until a quit is requested or the frame
// processor can no longer advance, then reports measurement range FPS.
// Returns an error if the processor ended in a failure state.
func (a *Application) Run(cfg RunConfig) error {
	a.running = true
	m := &measurement{
		startFrame:     cfg.MeasurementStartFrame,
		endFrame:       cfg.MeasurementEndFrame,
		quitAfterRange: cfg.QuitAfterRange,
		flush:          cfg.FlushRange,
		now:            a.now,
	}

	for a.running {
		a.processEvents()

		// Only process the next frame if a quit event was not seen and
		// replay is not paused.
		if a.running && !a.paused {
			m.check(a)

			if a.running {
				a.PlaySingleFrame()
			}
		}
	}

	m.report(a)

	if a.processor != nil && a.processor.ErrorState() != decode.ErrorNone {
		return fmt.Errorf("replay failed: %s", a.processor.ErrorState())
	}
	return nil
}

// SetPaused suspends or resumes frame advancement. Event polling continues
// while paused. Has no effect on the frame processor itself.
func (a *Application) SetPaused(paused bool) {
	a.paused = paused

	if a.paused && a.processor != nil {
		if frame := a.processor.CurrentFrameNumber(); frame > 0 {
			slog.Info("Replay paused", "frame", frame)
		}
	}
}

// PlaySingleFrame advances the frame processor by one frame. Returns false
// and stops the run loop if no processor is bound or the advance fails.
func (a *Application) PlaySingleFrame() bool {
	if a.processor == nil {
		slog.Error("Cannot advance frame, no frame processor is bound")
		a.running = false
		return false
	}

	if !a.processor.ProcessNextFrame() {
		a.running = false
		return false
	}

	if a.processor.CurrentFrameNumber() == a.pauseFrame {
		a.paused = true
	}

	// Checked separately from the pause-frame match above so that both
	// automatic pausing and a manual single-step while already paused
	// produce the same notice.
	if a.paused {
		slog.Info("Replay paused", "frame", a.processor.CurrentFrameNumber())
	}

	return true
}

// processEvents lets the platform render state and poll for input, then
// applies any resulting control events. While paused the platform may block
// waiting for input instead of spinning.
func (a *Application) processEvents() {
	status := platform.Status{
		Title:  a.name,
		Paused: a.paused,
	}
	if a.processor != nil {
		status.Frame = a.processor.CurrentFrameNumber()
	}

	events, err := a.platform.Update(status, a.paused)
	if err != nil {
		slog.Error("Event processing failed", "error", err)
		a.StopRunning()
		return
	}

	for _, ev := range events {
		switch ev.Action {
		case platform.ActionQuit:
			a.StopRunning()
		case platform.ActionPauseToggle:
			a.SetPaused(!a.paused)
		case platform.ActionStepFrame:
			if a.paused {
				a.PlaySingleFrame()
			}
		}
	}
}
