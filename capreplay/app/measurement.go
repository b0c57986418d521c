package app

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-capreplay/capreplay/decode"
	"github.com/valerio/go-capreplay/capreplay/util/datetime"
)

// measurement tracks the [startFrame, endFrame) interval over which replay
// FPS is computed. Boundary timestamps are sampled before the matching frame
// replays, which is what keeps the end frame out of the measured interval.
type measurement struct {
	startFrame     uint32
	endFrame       uint32
	quitAfterRange bool
	flush          bool

	startTime int64
	endTime   int64
	now       func() int64
}

// check samples a boundary timestamp when the current frame matches either
// end of the range. Called once per loop iteration, before the frame
// advances.
func (m *measurement) check(a *Application) {
	if a.processor == nil {
		return
	}

	current := a.processor.CurrentFrameNumber()

	if current == m.startFrame {
		if m.flush {
			a.processor.WaitIdle()
		}

		m.startTime = m.now()
	} else if current == m.endFrame {
		// End frame has not replayed yet, non-inclusive range.
		if m.flush {
			a.processor.WaitIdle()
		}

		m.endTime = m.now()

		if m.quitAfterRange {
			a.StopRunning()
		}
	}
}

// report writes the measurement range FPS line to the application console.
// When no value can be computed it explains why instead.
func (m *measurement) report(a *Application) {
	if a.processor == nil {
		slog.Warn("No frame processor was bound, cannot calculate measurement range FPS")
		return
	}

	if a.processor.ErrorState() != decode.ErrorNone {
		slog.Error("A failure has occurred during replay, cannot calculate measurement range FPS")
		return
	}

	current := a.processor.CurrentFrameNumber()

	if a.running && current < m.endFrame {
		slog.Warn("Replay is still running and has not yet reached the measurement range end frame, cannot calculate measurement range FPS",
			"current_frame", current, "end_frame", m.endFrame)
		return
	}

	if m.startFrame >= m.endFrame {
		slog.Warn("Measurement range start frame is greater than or equal to the end frame, cannot calculate measurement range FPS",
			"start_frame", m.startFrame, "end_frame", m.endFrame)
		return
	}

	if current < m.startFrame {
		slog.Warn("Measurement range start frame is greater than the last replayed frame, measurements were never started, cannot calculate measurement range FPS",
			"start_frame", m.startFrame, "last_frame", current)
		return
	}

	// The loop ended before revisiting the configured end frame; clip the
	// range to the last frame actually replayed.
	endFrame := m.endFrame
	if current < endFrame {
		a.processor.WaitIdle()
		m.endTime = m.now()
		endFrame = current
	}

	elapsed := datetime.Seconds(datetime.Diff(m.startTime, m.endTime))
	totalFrames := endFrame - m.startFrame
	fps := float64(totalFrames) / elapsed

	plural := ""
	if totalFrames > 1 {
		plural = "s"
	}
	fmt.Fprintf(a.console, "Measurement range FPS: %f fps, %f seconds, %d frame%s, 1 loop, framerange [%d-%d)\n",
		fps, elapsed, totalFrames, plural, m.startFrame, endFrame)
}
