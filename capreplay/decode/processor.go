// Package decode provides the frame processing side of replay: the
// FrameProcessor contract consumed by the application run loop, and a
// capture-file backed implementation of it.
package decode

// ErrorState reports whether a processor has hit an unrecoverable failure.
// Once set to a non-None value it stays set.
type ErrorState int

const (
	// ErrorNone means no failure has occurred.
	ErrorNone ErrorState = iota
	// ErrorInvalidCapture means the capture data could not be parsed.
	ErrorInvalidCapture
	// ErrorOccurred is a generic replay failure.
	ErrorOccurred
)

func (e ErrorState) String() string {
	switch e {
	case ErrorNone:
		return "none"
	case ErrorInvalidCapture:
		return "invalid capture"
	default:
		return "error occurred"
	}
}

// FrameProcessor advances replay one frame at a time. The application borrows
// a processor for the duration of a run but never owns it.
type FrameProcessor interface {
	// CurrentFrameNumber returns the number of frames processed so far.
	// Monotonically non-decreasing across successful advances.
	CurrentFrameNumber() uint32

	// ProcessNextFrame advances replay by exactly one frame. Returns false
	// when no further frame can be processed, either because the capture is
	// exhausted (ErrorState stays None) or because a failure occurred.
	ProcessNextFrame() bool

	// WaitIdle blocks until all asynchronous work tied to frames already
	// issued has completed.
	WaitIdle()

	// ErrorState reports the sticky failure state.
	ErrorState() ErrorState
}
