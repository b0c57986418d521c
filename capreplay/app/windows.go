package app

import (
	"log/slog"

	"github.com/valerio/go-capreplay/capreplay/window"
)

// RegisterWindow adds a window to the registry. The application does not
// take ownership; the caller remains responsible for destroying the window
// and unregistering it first.
func (a *Application) RegisterWindow(w window.Window) bool {
	if w == nil {
		slog.Warn("Cannot register a nil window")
		return false
	}

	for _, registered := range a.windows {
		if registered == w {
			slog.Info("A window was registered with the application more than once")
			return false
		}
	}

	a.windows = append(a.windows, w)

	return true
}

// UnregisterWindow removes a previously registered window.
func (a *Application) UnregisterWindow(w window.Window) bool {
	if w == nil {
		slog.Warn("Cannot unregister a nil window")
		return false
	}

	for i, registered := range a.windows {
		if registered == w {
			a.windows = append(a.windows[:i], a.windows[i+1:]...)
			return true
		}
	}

	slog.Info("A remove window request was made for a window that was never registered with the application")

	return false
}

// WindowCount returns the number of currently registered windows.
func (a *Application) WindowCount() int { return len(a.windows) }

// Close releases any windows still registered, in registration order.
// Normal operation expects owners to unregister their windows before the
// application is closed; this sweep is a fallback, not the intended
// ownership path.
func (a *Application) Close() {
	if len(a.windows) == 0 {
		return
	}

	slog.Info("Application is destroying windows that were not previously destroyed by their owner",
		"count", len(a.windows))

	for _, w := range a.windows {
		w.Destroy()
	}
	a.windows = nil
}
