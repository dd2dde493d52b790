package logging

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"
)

// LogCallback receives every entry after it is buffered. main uses it to put
// log lines on the event bus, which this package cannot import.
type LogCallback func(entry LogEntry)

const defaultModule = "colornode"

// BufferHandler is a slog.Handler that stores flattened records in a
// RingBuffer. Attributes added with WithAttrs are flattened once, when the
// derived handler is built.
type BufferHandler struct {
	buffer   *RingBuffer
	level    slog.Leveler
	callback LogCallback

	module string
	prefix string
	base   map[string]any
}

// NewBufferHandler creates a handler that writes to buffer.
func NewBufferHandler(buffer *RingBuffer, level slog.Leveler, callback LogCallback) *BufferHandler {
	return &BufferHandler{
		buffer:   buffer,
		level:    level,
		callback: callback,
		module:   defaultModule,
	}
}

// Enabled implements slog.Handler.
func (h *BufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *BufferHandler) Handle(_ context.Context, r slog.Record) error {
	module := h.module
	attrs := make(map[string]any, len(h.base)+r.NumAttrs())
	maps.Copy(attrs, h.base)

	r.Attrs(func(a slog.Attr) bool {
		if h.prefix == "" && a.Key == "module" {
			module = a.Value.String()
			return true
		}
		flatten(attrs, h.prefix, a)
		return true
	})

	entry := h.buffer.Write(LogEntry{
		Timestamp:  r.Time,
		Level:      levelName(r.Level),
		Module:     module,
		Message:    r.Message,
		Attributes: attrs,
	})

	if h.callback != nil {
		h.callback(entry)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *BufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	next.base = maps.Clone(h.base)
	if next.base == nil {
		next.base = make(map[string]any, len(attrs))
	}
	for _, a := range attrs {
		if h.prefix == "" && a.Key == "module" {
			next.module = a.Value.String()
			continue
		}
		flatten(next.base, h.prefix, a)
	}
	return next
}

// WithGroup implements slog.Handler.
func (h *BufferHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.prefix = h.prefix + name + "."
	return next
}

func (h *BufferHandler) clone() *BufferHandler {
	c := *h
	return &c
}

// flatten stores a under prefix+key; groups become dotted keys.
func flatten(dst map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	key := prefix + a.Key

	switch a.Value.Kind() {
	case slog.KindGroup:
		for _, ga := range a.Value.Group() {
			flatten(dst, key+".", ga)
		}
	case slog.KindTime:
		dst[key] = a.Value.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		dst[key] = a.Value.Duration().String()
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			dst[key] = err.Error()
			return
		}
		dst[key] = a.Value.Any()
	default:
		dst[key] = a.Value.Any()
	}
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}

// FormatLogLine renders an entry as one line, attributes sorted by key.
func FormatLogLine(entry LogEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] [%s] %s",
		entry.Timestamp.Format(time.RFC3339Nano),
		strings.ToUpper(entry.Level),
		entry.Module,
		entry.Message)

	for _, k := range slices.Sorted(maps.Keys(entry.Attributes)) {
		fmt.Fprintf(&sb, " %s=%v", k, entry.Attributes[k])
	}
	return sb.String()
}
