package events

// Event type constants for kelindar/event.
const (
	TypeColorChanged uint32 = iota + 1
	TypeActuationFailed
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ColorChangedEvent is published after a colour reached every LED.
type ColorChangedEvent struct {
	Color     string    `json:"color" example:"#ff0080" doc:"Applied colour"`
	Anode     [3]uint32 `json:"anode" doc:"Anode duties written, red/green/blue"`
	Cathode   [3]uint32 `json:"cathode" doc:"Cathode duties written, red/green/blue"`
	Source    string    `json:"source" example:"form" doc:"Who requested the change: form, api, startup, cli"`
	Timestamp string    `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ColorChangedEvent.
func (e ColorChangedEvent) Type() uint32 { return TypeColorChanged }

// ActuationFailedEvent is published when a colour was stored but could not
// be pushed to every LED.
type ActuationFailedEvent struct {
	Color     string `json:"color" example:"#ff0080" doc:"Requested colour"`
	Mechanism string `json:"mechanism" example:"pwm" doc:"Output mechanism that failed: pixel or pwm"`
	Error     string `json:"error" doc:"Driver error"`
	Source    string `json:"source" example:"api" doc:"Who requested the change"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ActuationFailedEvent.
func (e ActuationFailedEvent) Type() uint32 { return TypeActuationFailed }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"led" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
