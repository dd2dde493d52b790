package logging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

func resetState() {
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	isInitialized = false
	globalConfig = Config{}
	logCallback = nil
	logBuffer = NewRingBuffer(defaultBufferSize)
	mutex.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	resetState()

	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"led":  "debug",
			"http": "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"led", true, true, true},
		{"http", false, false, true},
		{"other", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()
			ctx := context.Background()

			if got := handler.Enabled(ctx, slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("module %q: Debug enabled = %v, want %v", tt.module, got, tt.wantDebug)
			}
			if got := handler.Enabled(ctx, slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("module %q: Info enabled = %v, want %v", tt.module, got, tt.wantInfo)
			}
			if got := handler.Enabled(ctx, slog.LevelWarn); got != tt.wantWarn {
				t.Errorf("module %q: Warn enabled = %v, want %v", tt.module, got, tt.wantWarn)
			}
		})
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetState()

	loggerBefore := GetLogger("led")
	handlerBefore := loggerBefore.Handler()

	if handlerBefore.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Logger created before Initialize should NOT have debug enabled")
	}

	Initialize(Config{
		Level:   "info",
		Format:  "text",
		Modules: map[string]string{"led": "debug"},
	})

	if GetLogger("led") == nil {
		t.Fatal("GetLogger returned nil after Initialize")
	}
	// The LevelVar is shared, so the old handler follows the new level.
	if !handlerBefore.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Logger created before Initialize should follow the new level")
	}
}

func TestUpdateLevels(t *testing.T) {
	resetState()
	Initialize(Config{Level: "info", Format: "text"})

	logger := GetLogger("api")
	handler := logger.Handler()
	if handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should be off at info level")
	}

	UpdateLevels(Config{Level: "info", Modules: map[string]string{"api": "debug"}})
	if !handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be on after UpdateLevels")
	}
	if GetLogger("api") != logger {
		t.Error("UpdateLevels should not replace loggers")
	}

	UpdateLevels(Config{Level: "error"})
	if handler.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn should be off after dropping to error")
	}
}

func TestLogCallbackReceivesEntries(t *testing.T) {
	resetState()
	Initialize(Config{Level: "debug", Format: "text"})

	var mu sync.Mutex
	var got []LogEntry
	SetLogCallback(func(e LogEntry) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	defer SetLogCallback(nil)

	GetLogger("led").Info("Set duties", "anode", 1023, "error", errors.New("boom"))

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("callback got %d entries, want 1", len(got))
	}
	e := got[0]
	if e.Module != "led" || e.Message != "Set duties" || e.Level != "info" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Seq == 0 {
		t.Error("entry should carry a sequence number")
	}
	if e.Attributes["error"] != "boom" {
		t.Errorf("error attribute = %v, want boom", e.Attributes["error"])
	}
	if GetBuffer().Count() == 0 {
		t.Error("entry should also be in the ring buffer")
	}
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(3)
	if rb.ReadAll() != nil {
		t.Error("empty buffer should return nil")
	}

	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		rb.Write(LogEntry{Message: msg})
	}

	all := rb.ReadAll()
	if len(all) != 3 || rb.Count() != 3 {
		t.Fatalf("len = %d, count = %d, want 3", len(all), rb.Count())
	}
	for i, want := range []string{"c", "d", "e"} {
		if all[i].Message != want {
			t.Errorf("entry %d = %q, want %q", i, all[i].Message, want)
		}
	}
	if all[2].Seq != 5 {
		t.Errorf("last seq = %d, want 5", all[2].Seq)
	}
}

func TestMultiHandlerDebugOutput(t *testing.T) {
	var buf bytes.Buffer

	debugHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	infoHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(NewMultiHandler(debugHandler, infoHandler)).With("module", "test")
	logger.Debug("debug only message")

	output := buf.String()
	if count := strings.Count(output, "debug only message"); count != 1 {
		t.Errorf("Expected 1 debug message, got %d. Output: %s", count, output)
	}

	logger.WithGroup("g").Info("info message", "k", "v")
	if count := strings.Count(buf.String(), "info message"); count != 2 {
		t.Errorf("Expected info from both handlers, got %d", count)
	}
}

func TestBufferHandlerGroups(t *testing.T) {
	rb := NewRingBuffer(10)
	var level slog.LevelVar
	logger := slog.New(NewBufferHandler(rb, &level, nil)).With("module", "api")

	logger.WithGroup("req").Info("handled", "status", 200, "took", 5*time.Millisecond)

	entries := rb.ReadAll()
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	if e.Module != "api" {
		t.Errorf("Module = %q, want api", e.Module)
	}
	if e.Attributes["req.took"] != "5ms" {
		t.Errorf("req.took = %v", e.Attributes["req.took"])
	}
	if _, ok := e.Attributes["req.status"]; !ok {
		t.Errorf("missing req.status in %v", e.Attributes)
	}

	logger.Debug("hidden")
	if rb.Count() != 1 {
		t.Error("debug should be filtered at info level")
	}
}

func TestFormatLogLine(t *testing.T) {
	e := LogEntry{
		Timestamp:  time.Date(2025, 1, 9, 10, 30, 0, 0, time.UTC),
		Level:      "warn",
		Module:     "led",
		Message:    "Failed to apply colour",
		Attributes: map[string]any{"mechanism": "pwm", "color": "#ff0000"},
	}
	want := "2025-01-09T10:30:00Z [WARN] [led] Failed to apply colour color=#ff0000 mechanism=pwm"
	if got := FormatLogLine(e); got != want {
		t.Errorf("FormatLogLine() = %q, want %q", got, want)
	}
}

func TestParseLevelValues(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		isNil bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"invalid", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input)
			if tt.isNil {
				if got != nil {
					t.Errorf("parseLevel(%q) = %v, want nil", tt.input, *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMapLevelToPriority(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  journal.Priority
	}{
		{slog.LevelDebug, journal.PriDebug},
		{slog.LevelInfo, journal.PriInfo},
		{slog.LevelWarn, journal.PriWarning},
		{slog.LevelError, journal.PriErr},
		{slog.LevelError + 4, journal.PriErr},
	}
	for _, tt := range tests {
		if got := mapLevelToPriority(tt.level); got != tt.want {
			t.Errorf("mapLevelToPriority(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("sink down")
}

func TestMultiHandlerKeepsGoingOnError(t *testing.T) {
	rb := NewRingBuffer(4)
	var level slog.LevelVar
	h := NewMultiHandler(
		failingHandler{slog.NewTextHandler(io.Discard, nil)},
		NewBufferHandler(rb, &level, nil),
	)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still buffered", 0))
	if err == nil || !strings.Contains(err.Error(), "sink down") {
		t.Errorf("Handle() error = %v, want sink down", err)
	}
	if rb.Count() != 1 {
		t.Errorf("buffer has %d entries, want 1", rb.Count())
	}
}

func TestJournalField(t *testing.T) {
	fields := map[string]string{}
	journalField(fields, "", slog.String("module", "led"))
	journalField(fields, "req_", slog.Duration("took", 5*time.Millisecond))
	journalField(fields, "", slog.Group("pwm", slog.Int("max.duty", 1023)))
	journalField(fields, "", slog.String("_private", "x"))

	want := map[string]string{
		"MODULE":       "led",
		"REQ_TOOK":     "5ms",
		"PWM_MAX_DUTY": "1023",
		"PRIVATE":      "x",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("fields[%q] = %q, want %q", k, fields[k], v)
		}
	}
}
