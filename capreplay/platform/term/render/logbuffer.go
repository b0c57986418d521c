// Package render holds terminal rendering helpers for the term platform.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// LogEntry is a single captured log line.
type LogEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
}

// LogBuffer is a thread-safe circular buffer of recent log entries. The
// term platform captures logs here instead of letting them scribble over
// the screen.
type LogBuffer struct {
	entries []LogEntry
	index   int
	count   int
	mutex   sync.RWMutex
}

// NewLogBuffer creates a buffer holding the last size entries.
func NewLogBuffer(size int) *LogBuffer {
	return &LogBuffer{entries: make([]LogEntry, size)}
}

// Add inserts a log entry, evicting the oldest once full.
func (lb *LogBuffer) Add(entry LogEntry) {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()

	lb.entries[lb.index] = entry
	lb.index = (lb.index + 1) % len(lb.entries)
	if lb.count < len(lb.entries) {
		lb.count++
	}
}

// Recent returns up to maxCount entries, newest first.
func (lb *LogBuffer) Recent(maxCount int) []LogEntry {
	lb.mutex.RLock()
	defer lb.mutex.RUnlock()

	count := lb.count
	if maxCount > 0 && maxCount < count {
		count = maxCount
	}
	if count == 0 {
		return nil
	}

	result := make([]LogEntry, count)
	for i := 0; i < count; i++ {
		entryIndex := (lb.index - 1 - i + len(lb.entries)) % len(lb.entries)
		result[i] = lb.entries[entryIndex]
	}

	return result
}

// LogBufferHandler is a slog.Handler that writes records into a LogBuffer.
type LogBufferHandler struct {
	buffer *LogBuffer
	level  slog.Level
}

// NewLogBufferHandler creates a handler capturing records at or above level.
func NewLogBufferHandler(buffer *LogBuffer, level slog.Level) *LogBufferHandler {
	return &LogBufferHandler{buffer: buffer, level: level}
}

func (h *LogBufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *LogBufferHandler) Handle(_ context.Context, record slog.Record) error {
	message := record.Message
	record.Attrs(func(a slog.Attr) bool {
		message += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})

	h.buffer.Add(LogEntry{
		Time:    record.Time,
		Level:   record.Level,
		Message: message,
	})
	return nil
}

// WithAttrs returns the handler unchanged; attribute accumulation isn't
// needed for the on-screen log view.
func (h *LogBufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }

func (h *LogBufferHandler) WithGroup(name string) slog.Handler { return h }

// FormatEntry renders an entry as a single display line.
func FormatEntry(entry LogEntry) string {
	level := "???"
	switch entry.Level {
	case slog.LevelDebug:
		level = "DBG"
	case slog.LevelInfo:
		level = "INF"
	case slog.LevelWarn:
		level = "WRN"
	case slog.LevelError:
		level = "ERR"
	}

	return fmt.Sprintf("%s [%s] %s", entry.Time.Format("15:04:05"), level, entry.Message)
}
