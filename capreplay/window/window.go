// Package window defines the display surface handle tracked by the replay
// application. The application never creates windows; it only keeps
// non-owning references so it can release anything a platform leaks at
// shutdown.
package window

// Window is an opaque display surface handle. Identity is pointer equality;
// the application requires nothing else from a window beyond the ability to
// destroy it during the shutdown sweep.
type Window interface {
	Destroy()
}

// Registrar tracks windows on behalf of their owner. Implemented by
// app.Application and handed to platforms through their config.
type Registrar interface {
	// RegisterWindow adds a window to the registry. Returns false if the
	// window is nil or already registered.
	RegisterWindow(w Window) bool

	// UnregisterWindow removes a previously registered window. Returns false
	// if the window is nil or was never registered.
	UnregisterWindow(w Window) bool
}
