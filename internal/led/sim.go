package led

import (
	"log/slog"
	"sync"

	"github.com/smazurov/colornode/internal/color"
)

// SimChannel is an in-memory PWM channel for machines without LED hardware.
type SimChannel struct {
	mu      sync.Mutex
	name    string
	maxDuty uint32
	enabled bool
	duty    uint32
	writes  int
	failOn  error
	logger  *slog.Logger
}

// NewSimChannel creates a simulated channel with the given resolution.
func NewSimChannel(name string, maxDuty uint32, logger *slog.Logger) *SimChannel {
	return &SimChannel{
		name:    name,
		maxDuty: maxDuty,
		logger:  logger,
	}
}

// Enable marks the channel enabled.
func (s *SimChannel) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
	return nil
}

// MaxDuty returns the configured resolution.
func (s *SimChannel) MaxDuty() uint32 {
	return s.maxDuty
}

// SetDuty records duty, or returns the injected failure.
func (s *SimChannel) SetDuty(duty uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != nil {
		return s.failOn
	}
	s.duty = duty
	s.writes++
	if s.logger != nil {
		s.logger.Debug("PWM duty set (sim)", "channel", s.name, "duty", duty, "max_duty", s.maxDuty)
	}
	return nil
}

// Duty returns the last duty written.
func (s *SimChannel) Duty() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duty
}

// Enabled reports whether Enable has been called.
func (s *SimChannel) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Writes counts successful SetDuty calls.
func (s *SimChannel) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// FailWith makes every following SetDuty return err. nil clears it.
func (s *SimChannel) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn = err
}

// SimPixel is an in-memory addressable pixel.
type SimPixel struct {
	mu     sync.Mutex
	color  color.RGB
	sent   int
	failOn error
	logger *slog.Logger
}

// NewSimPixel creates a simulated pixel.
func NewSimPixel(logger *slog.Logger) *SimPixel {
	return &SimPixel{logger: logger}
}

// SetPixel records c, or returns the injected failure.
func (p *SimPixel) SetPixel(c color.RGB) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOn != nil {
		return p.failOn
	}
	p.color = c
	p.sent++
	if p.logger != nil {
		p.logger.Debug("Pixel set (sim)", "color", c.Hex())
	}
	return nil
}

// Color returns the last colour transmitted.
func (p *SimPixel) Color() color.RGB {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.color
}

// Sent counts successful transmissions.
func (p *SimPixel) Sent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent
}

// FailWith makes every following SetPixel return err. nil clears it.
func (p *SimPixel) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failOn = err
}
