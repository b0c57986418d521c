// Package term implements the windowed platform variant using tcell for
// terminal rendering and input.
package term

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-capreplay/capreplay/platform"
	"github.com/valerio/go-capreplay/capreplay/platform/term/render"
	"github.com/valerio/go-capreplay/capreplay/window"
)

const logViewLines = 8

// Platform renders playback status to a terminal screen and translates key
// presses into control events.
type Platform struct {
	screen    tcell.Screen
	win       *surfaceWindow
	registrar window.Registrar
	logBuffer *render.LogBuffer
	title     string
}

// New creates a terminal platform.
func New() *Platform {
	return &Platform{}
}

func (t *Platform) Init(config platform.Config) error {
	t.title = config.Title
	t.registrar = config.Registrar

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	t.screen = screen
	t.win = &surfaceWindow{screen: screen}

	// Capture logs instead of letting them write over the screen.
	t.logBuffer = render.NewLogBuffer(100)
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, slog.LevelDebug)))
	slog.Info("Terminal platform initialized", "title", t.title)

	if t.registrar != nil {
		t.registrar.RegisterWindow(t.win)
	}

	return nil
}

// Update draws the status lines and collects key events. While waiting for
// input it blocks on the event queue instead of polling, so a paused replay
// doesn't spin the CPU.
func (t *Platform) Update(status platform.Status, waitForInput bool) ([]platform.Event, error) {
	t.render(status)

	var events []platform.Event

	if waitForInput && !t.screen.HasPendingEvent() {
		events = t.handleEvent(t.screen.PollEvent(), events)
	}
	for t.screen.HasPendingEvent() {
		events = t.handleEvent(t.screen.PollEvent(), events)
	}

	return events, nil
}

func (t *Platform) Cleanup() error {
	if t.registrar != nil && t.win != nil {
		t.registrar.UnregisterWindow(t.win)
	}
	if t.screen != nil {
		t.screen.Fini()
		t.screen = nil
	}
	if t.win != nil {
		t.win.screen = nil
		t.win = nil
	}
	return nil
}

func (t *Platform) handleEvent(ev tcell.Event, events []platform.Event) []platform.Event {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			events = append(events, platform.Event{Action: platform.ActionQuit})
		case ev.Key() == tcell.KeyRight:
			events = append(events, platform.Event{Action: platform.ActionStepFrame})
		case ev.Rune() == 'q':
			events = append(events, platform.Event{Action: platform.ActionQuit})
		case ev.Rune() == ' ' || ev.Rune() == 'p':
			events = append(events, platform.Event{Action: platform.ActionPauseToggle})
		case ev.Rune() == 'n':
			events = append(events, platform.Event{Action: platform.ActionStepFrame})
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return events
}

func (t *Platform) render(status platform.Status) {
	style := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)

	state := "running"
	if status.Paused {
		state = "paused"
	}

	t.screen.Clear()
	drawText(t.screen, 0, 0, style.Bold(true), status.Title)
	drawText(t.screen, 0, 1, style, fmt.Sprintf("frame %d (%s)", status.Frame, state))
	drawText(t.screen, 0, 2, style.Dim(true), "keys: space/p pause, n/right step, q/esc quit")

	for i, entry := range t.logBuffer.Recent(logViewLines) {
		drawText(t.screen, 0, 4+i, style.Dim(true), render.FormatEntry(entry))
	}

	t.screen.Show()
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range text {
		s.SetContent(x+i, y, r, nil, style)
	}
}

// surfaceWindow is the display surface handle the platform registers with
// the application. Destroy is only called by the application's shutdown
// sweep when the platform never cleaned up.
type surfaceWindow struct {
	screen tcell.Screen
}

func (w *surfaceWindow) Destroy() {
	if w.screen != nil {
		w.screen.Fini()
		w.screen = nil
	}
}
