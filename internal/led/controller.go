package led

import "github.com/smazurov/colornode/internal/color"

// Pixel drives a single addressable RGB LED.
type Pixel interface {
	// SetPixel transmits c to the LED, replacing whatever it showed before.
	// It is not retried on failure.
	SetPixel(c color.RGB) error
}

// Channel is one PWM output bound to a pin and a shared timer.
type Channel interface {
	// Enable turns the output on. Calling it on an enabled channel is harmless.
	Enable() error

	// MaxDuty reports the channel's duty resolution. It is read from the
	// hardware and may differ between channels.
	MaxDuty() uint32

	// SetDuty sets the raw duty, 0..MaxDuty.
	SetDuty(duty uint32) error
}

// Polarity describes how a channel's duty relates to perceived brightness.
type Polarity int

const (
	// ActiveHigh outputs (common cathode) get brighter as duty grows.
	ActiveHigh Polarity = iota
	// ActiveLow outputs (common anode) get dimmer as duty grows.
	ActiveLow
)

func (p Polarity) String() string {
	if p == ActiveLow {
		return "active-low"
	}
	return "active-high"
}

// Duties holds the raw duty values chosen by the last actuation, anode
// triple first. It is only used for observability.
type Duties struct {
	Anode   [3]uint32 `json:"anode" doc:"Anode (active-low) duties, red/green/blue"`
	Cathode [3]uint32 `json:"cathode" doc:"Cathode (active-high) duties, red/green/blue"`
}
