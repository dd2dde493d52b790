package led

import (
	"fmt"

	"github.com/smazurov/colornode/internal/color"
)

var componentNames = [3]string{"red", "green", "blue"}

// Triple is a red/green/blue set of PWM channels wired to one RGB LED.
// Polarity decides whether duty is intensity (ActiveHigh) or its inverse
// (ActiveLow).
type Triple struct {
	name     string
	polarity Polarity
	channels [3]Channel
}

// NewTriple groups three channels. Every channel must report a non-zero
// max duty; an unconfigured timer is a setup error, not a per-call one.
func NewTriple(name string, polarity Polarity, red, green, blue Channel) (*Triple, error) {
	t := &Triple{
		name:     name,
		polarity: polarity,
		channels: [3]Channel{red, green, blue},
	}
	for i, ch := range t.channels {
		if ch == nil {
			return nil, fmt.Errorf("%s: %s channel missing", name, componentNames[i])
		}
		if ch.MaxDuty() == 0 {
			return nil, fmt.Errorf("%s %s: %w", name, componentNames[i], ErrZeroMaxDuty)
		}
	}
	return t, nil
}

// Name returns the triple's label, e.g. "anode".
func (t *Triple) Name() string {
	return t.name
}

// Polarity returns the wiring polarity of the triple.
func (t *Triple) Polarity() Polarity {
	return t.polarity
}

// Channel returns the channel for component i (0 red, 1 green, 2 blue).
func (t *Triple) Channel(i int) Channel {
	return t.channels[i]
}

// drive enables component i, computes its duty and writes it.
func (t *Triple) drive(i int, value uint8) (uint32, error) {
	ch := t.channels[i]
	label := t.name + "." + componentNames[i]

	if err := ch.Enable(); err != nil {
		return 0, newDriverError(OpEnable, label, err)
	}

	duty := Duty(value, ch.MaxDuty(), t.polarity)
	if err := ch.SetDuty(duty); err != nil {
		return 0, newDriverError(OpSetDuty, label, err)
	}
	return duty, nil
}

// Duty scales an 8-bit intensity to a channel's resolution, truncating
// toward zero. ActiveLow inverts the intensity before scaling, so the
// result is truncate((1 - value/255) * maxDuty).
func Duty(value uint8, maxDuty uint32, polarity Polarity) uint32 {
	v := uint64(value)
	if polarity == ActiveLow {
		v = 255 - v
	}
	return uint32(v * uint64(maxDuty) / 255)
}

// Bank drives an anode (active-low) and a cathode (active-high) triple that
// share one time base.
type Bank struct {
	anode   *Triple
	cathode *Triple
}

// NewBank pairs the two triples. The anode triple must be ActiveLow and the
// cathode triple ActiveHigh.
func NewBank(anode, cathode *Triple) (*Bank, error) {
	if anode == nil || cathode == nil {
		return nil, fmt.Errorf("pwm bank needs both triples")
	}
	if anode.polarity != ActiveLow {
		return nil, fmt.Errorf("anode triple %q must be %s", anode.name, ActiveLow)
	}
	if cathode.polarity != ActiveHigh {
		return nil, fmt.Errorf("cathode triple %q must be %s", cathode.name, ActiveHigh)
	}
	return &Bank{anode: anode, cathode: cathode}, nil
}

// Apply drives all six channels to represent c. Red, green and blue are
// handled in turn, the anode channel before the cathode one. The first
// failing channel aborts the call; channels written before it keep their
// new duty.
func (b *Bank) Apply(c color.RGB) (Duties, error) {
	var d Duties
	values := [3]uint8{c.R, c.G, c.B}

	for i, v := range values {
		duty, err := b.anode.drive(i, v)
		if err != nil {
			return d, err
		}
		d.Anode[i] = duty

		duty, err = b.cathode.drive(i, v)
		if err != nil {
			return d, err
		}
		d.Cathode[i] = duty
	}
	return d, nil
}

// Anode returns the active-low triple.
func (b *Bank) Anode() *Triple {
	return b.anode
}

// Cathode returns the active-high triple.
func (b *Bank) Cathode() *Triple {
	return b.cathode
}
