package led

import (
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/smazurov/colornode/internal/color"
	"github.com/smazurov/colornode/internal/events"
	"github.com/smazurov/colornode/internal/metrics"
)

// Sources reported with colour events.
const (
	SourceStartup = "startup"
	SourceForm    = "form"
	SourceAPI     = "api"
	SourceCLI     = "cli"
)

// Actuator pushes a colour to hardware.
type Actuator interface {
	SetColor(c color.RGB) (Duties, error)
}

// EventPublisher publishes events.
type EventPublisher interface {
	Publish(ev events.Event)
}

// Manager is the request-facing side of the LEDs. It keeps the shared
// colour store and the hardware in step and reports what happened.
type Manager struct {
	store    *Store
	actuator Actuator
	eventBus EventPublisher
	logger   *slog.Logger

	// applyMu orders store and actuation as one step, so the stored colour
	// is always the one the LEDs were last driven with. Current does not
	// take it.
	applyMu sync.Mutex

	dutiesMu sync.RWMutex
	duties   Duties
	applied  bool

	// fatal is called once the hardware handle is poisoned.
	fatal func(error)
}

// NewManager creates a manager over store and actuator. eventBus may be nil.
func NewManager(store *Store, actuator Actuator, eventBus EventPublisher, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		store:    store,
		actuator: actuator,
		eventBus: eventBus,
		logger:   logger,
	}
	m.fatal = func(err error) {
		m.logger.Error("LED hardware unusable, exiting", "error", err)
		os.Exit(1)
	}
	return m
}

// SetFatalHandler replaces the default handler (log and exit) run when the
// hardware handle is poisoned.
func (m *Manager) SetFatalHandler(fn func(error)) {
	m.fatal = fn
}

// Start pushes the stored colour to the hardware once. A failure is logged
// and returned; the stored colour is kept.
func (m *Manager) Start() error {
	c := m.store.Get()
	m.logger.Info("Applying startup colour", "color", c.Hex())
	_, err := m.ApplyAndStore(SourceStartup, &c)
	return err
}

// Current returns the stored colour without touching the hardware.
func (m *Manager) Current() color.RGB {
	return m.store.Get()
}

// ApplyAndStore records c as the current colour and then drives it to the
// LEDs. With c nil nothing is changed and the stored colour is returned.
//
// The store is updated before the hardware. If actuation fails the error is
// returned and the store keeps c, so Current may report a colour the LEDs do
// not show. Concurrent calls are serialized from store to actuation, so a
// successful call always leaves Current matching the LEDs.
func (m *Manager) ApplyAndStore(source string, c *color.RGB) (color.RGB, error) {
	if c == nil {
		return m.store.Get(), nil
	}

	m.applyMu.Lock()
	defer m.applyMu.Unlock()

	m.store.Set(*c)
	metrics.SetColor(c.R, c.G, c.B)

	d, err := m.actuator.SetColor(*c)
	if err != nil {
		m.reportFailure(source, *c, err)
		return *c, err
	}

	m.dutiesMu.Lock()
	m.duties = d
	m.applied = true
	m.dutiesMu.Unlock()

	metrics.RecordApply()
	metrics.SetDuties("anode", d.Anode)
	metrics.SetDuties("cathode", d.Cathode)

	if m.eventBus != nil {
		m.eventBus.Publish(events.ColorChangedEvent{
			Color:     c.Hex(),
			Anode:     d.Anode,
			Cathode:   d.Cathode,
			Source:    source,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
	return *c, nil
}

// Duties returns the duties written by the last successful actuation. ok is
// false until one has happened.
func (m *Manager) Duties() (d Duties, ok bool) {
	m.dutiesMu.RLock()
	defer m.dutiesMu.RUnlock()
	return m.duties, m.applied
}

func (m *Manager) reportFailure(source string, c color.RGB, err error) {
	mechanism := "unknown"
	var actErr *ActuationError
	if errors.As(err, &actErr) {
		mechanism = string(actErr.Mechanism)
	}

	m.logger.Error("Failed to apply colour",
		"color", c.Hex(),
		"source", source,
		"mechanism", mechanism,
		"error", err)
	metrics.RecordActuationFailure(mechanism)

	if m.eventBus != nil {
		m.eventBus.Publish(events.ActuationFailedEvent{
			Color:     c.Hex(),
			Mechanism: mechanism,
			Error:     err.Error(),
			Source:    source,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	if errors.Is(err, ErrPoisoned) && m.fatal != nil {
		m.fatal(err)
	}
}
