package logging

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

// SyslogIdentifier tags every journal entry; filter with journalctl -t.
const SyslogIdentifier = "colornode"

// JournalHandler is a slog.Handler that sends records to the systemd journal
// as structured fields. Like BufferHandler it flattens WithAttrs once.
type JournalHandler struct {
	level  slog.Leveler
	prefix string
	base   map[string]string
}

// NewJournalHandler creates a journal handler.
func NewJournalHandler(level slog.Leveler) *JournalHandler {
	return &JournalHandler{
		level: level,
		base:  map[string]string{"SYSLOG_IDENTIFIER": SyslogIdentifier},
	}
}

// Enabled implements slog.Handler.
func (h *JournalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *JournalHandler) Handle(_ context.Context, r slog.Record) error {
	fields := maps.Clone(h.base)
	r.Attrs(func(a slog.Attr) bool {
		journalField(fields, h.prefix, a)
		return true
	})

	if err := journal.Send(r.Message, mapLevelToPriority(r.Level), fields); err != nil {
		fmt.Fprintf(os.Stderr, "journal send: %v\n", err)
		return err
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *JournalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &JournalHandler{level: h.level, prefix: h.prefix, base: maps.Clone(h.base)}
	for _, a := range attrs {
		journalField(next.base, h.prefix, a)
	}
	return next
}

// WithGroup implements slog.Handler.
func (h *JournalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &JournalHandler{level: h.level, prefix: h.prefix + name + "_", base: h.base}
}

func mapLevelToPriority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// journalField stores a as an upper-case journal field. Groups are joined
// with underscores.
func journalField(fields map[string]string, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := journalKey(prefix + a.Key)

	switch a.Value.Kind() {
	case slog.KindGroup:
		for _, ga := range a.Value.Group() {
			journalField(fields, prefix+a.Key+"_", ga)
		}
	case slog.KindTime:
		fields[key] = a.Value.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		fields[key] = a.Value.Duration().String()
	default:
		fields[key] = a.Value.String()
	}
}

// journalKey maps a key onto the journal's field alphabet: A-Z, 0-9 and
// underscore, not starting with an underscore.
func journalKey(key string) string {
	key = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	return strings.TrimLeft(key, "_")
}

// IsJournalAvailable reports whether the journal socket is reachable.
func IsJournalAvailable() bool {
	return journal.Enabled()
}
