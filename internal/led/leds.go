package led

import (
	"log/slog"
	"sync"

	"github.com/smazurov/colornode/internal/color"
)

// Leds owns the addressable pixel and both PWM triples as one unit. Only one
// SetColor runs against the hardware at a time, so the six PWM channels never
// mix two requests.
type Leds struct {
	mu       sync.Mutex
	pixel    Pixel
	bank     *Bank
	poisoned bool
	logger   *slog.Logger
	closers  []func() error
}

// NewLeds composes a pixel and a PWM bank.
func NewLeds(pixel Pixel, bank *Bank, logger *slog.Logger) *Leds {
	if logger == nil {
		logger = slog.Default()
	}
	return &Leds{
		pixel:  pixel,
		bank:   bank,
		logger: logger,
	}
}

// SetColor pushes c to the pixel, then to the PWM bank, and returns the duty
// values written. The first failing mechanism aborts the call with an
// *ActuationError; a mechanism already updated is left as is.
func (l *Leds) SetColor(c color.RGB) (d Duties, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.poisoned {
		return d, ErrPoisoned
	}

	// A panic in a driver leaves the outputs in an unknown state.
	defer func() {
		if r := recover(); r != nil {
			l.poisoned = true
			panic(r)
		}
	}()

	if err := l.pixel.SetPixel(c); err != nil {
		return d, &ActuationError{Mechanism: MechanismPixel, Cause: err}
	}

	d, err = l.bank.Apply(c)
	if err != nil {
		return d, &ActuationError{Mechanism: MechanismPWM, Cause: err}
	}

	l.logger.Info("Set duties",
		"color", c.Hex(),
		"anode", d.Anode,
		"cathode", d.Cathode)
	return d, nil
}

// Poisoned reports whether a driver panicked while holding the hardware lock.
func (l *Leds) Poisoned() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.poisoned
}

// Bank returns the PWM bank.
func (l *Leds) Bank() *Bank {
	return l.bank
}

// Close releases hardware handles registered by the factory.
func (l *Leds) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, c := range l.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.closers = nil
	return firstErr
}

func (l *Leds) onClose(fn func() error) {
	l.closers = append(l.closers, fn)
}
