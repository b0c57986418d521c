// Package platform abstracts how replay is presented and how input events
// are sourced. The application drives a Platform once per loop iteration;
// the platform renders current playback state and returns any control
// events it collected. Variants are selected at construction: a terminal
// frontend for interactive playback and a headless one for batch runs.
package platform

import "github.com/valerio/go-capreplay/capreplay/window"

// Action identifies a playback control request produced by a platform.
type Action int

const (
	ActionNone Action = iota
	// ActionQuit requests the run loop to stop.
	ActionQuit
	// ActionPauseToggle toggles the paused state.
	ActionPauseToggle
	// ActionStepFrame advances a single frame while paused.
	ActionStepFrame
)

// Event is a single control event collected during an update.
type Event struct {
	Action Action
}

// Status is the playback state a platform may render.
type Status struct {
	Title  string
	Frame  uint32
	Paused bool
}

// Config holds platform initialization parameters.
type Config struct {
	Title string
	// Registrar tracks display windows the platform creates. May be nil
	// for platforms that create none.
	Registrar window.Registrar
}

// Platform is the capability set the application is polymorphic over:
// binding at initialization and event polling during the run loop.
type Platform interface {
	// Init configures the platform. Platforms that create display windows
	// register them with config.Registrar here.
	Init(config Config) error

	// Update renders the given status and polls for input, returning any
	// control events. When waitForInput is set the platform may block
	// until an event arrives instead of returning immediately, so a
	// paused loop doesn't spin.
	Update(status Status, waitForInput bool) ([]Event, error)

	// Cleanup releases platform resources and unregisters its windows.
	Cleanup() error
}
