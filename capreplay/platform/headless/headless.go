// Package headless implements the platform interface for automated and
// batch replay, with no display and no input sources.
package headless

import (
	"log/slog"

	"github.com/valerio/go-capreplay/capreplay/platform"
)

const progressInterval = 100

// Platform replays without a display. An optional frame limit emits a quit
// event once reached; otherwise the run ends when the capture is exhausted.
type Platform struct {
	maxFrames uint32
	lastFrame uint32
}

// New creates a headless platform. maxFrames of zero means no limit.
func New(maxFrames uint32) *Platform {
	return &Platform{maxFrames: maxFrames}
}

func (h *Platform) Init(config platform.Config) error {
	if h.maxFrames > 0 {
		slog.Info("Running headless", "title", config.Title, "max_frames", h.maxFrames)
	} else {
		slog.Info("Running headless", "title", config.Title)
	}
	return nil
}

// Update logs replay progress and enforces the frame limit. Headless replay
// has no input sources, so waitForInput is ignored; a paused headless run
// only ever resumes through the frame limit quit.
func (h *Platform) Update(status platform.Status, waitForInput bool) ([]platform.Event, error) {
	if status.Frame != h.lastFrame && status.Frame%progressInterval == 0 {
		slog.Info("Frame progress", "completed", status.Frame)
	}
	h.lastFrame = status.Frame

	if h.maxFrames > 0 && status.Frame >= h.maxFrames {
		slog.Info("Headless replay reached the frame limit", "frames", status.Frame)
		return []platform.Event{{Action: platform.ActionQuit}}, nil
	}

	return nil, nil
}

func (h *Platform) Cleanup() error {
	return nil
}
