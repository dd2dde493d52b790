package led

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/nrzled"

	"github.com/smazurov/colornode/internal/color"
)

// PixelSPIFreq is the SPI clock nrzled needs: three SPI bits per 800kHz
// NRZ bit, with headroom. nrzled rejects any other rate.
const PixelSPIFreq = 2500 * physic.KiloHertz

// pixelFrameLen is what one SetPixel puts on the bus: four SPI bytes per
// colour byte plus a three byte latch.
const pixelFrameLen = 4*3 + 3

// NRZPixel drives one WS2812-class LED through an SPI port using periph's
// NRZ encoder.
type NRZPixel struct {
	mu  sync.Mutex
	dev *nrzled.Dev
}

// NewNRZPixel opens an NRZ encoder for a single RGB pixel on port.
func NewNRZPixel(port spi.Port) (*NRZPixel, error) {
	opts := nrzled.Opts{
		NumPixels: 1,
		Channels:  3,
		Freq:      PixelSPIFreq,
	}
	dev, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open nrzled: %w", err)
	}
	return &NRZPixel{dev: dev}, nil
}

// SetPixel encodes c and writes it to the SPI bus. A transmission already in
// flight makes the call fail with ErrBusy instead of queueing.
func (p *NRZPixel) SetPixel(c color.RGB) error {
	if !p.mu.TryLock() {
		return newDriverError(OpTransmit, "pixel", ErrBusy)
	}
	defer p.mu.Unlock()

	if _, err := p.dev.Write(c.Bytes()); err != nil {
		return newDriverError(OpTransmit, "pixel", err)
	}
	return nil
}

// Halt turns the pixel off.
func (p *NRZPixel) Halt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dev.Halt()
}

func (p *NRZPixel) String() string {
	return p.dev.String()
}

// GPIOChannel is a PWM channel on a periph GPIO pin. periph expresses duty as
// a fraction of gpio.DutyMax; the channel exposes a fixed integer resolution
// of 2^bits-1 on top of it.
type GPIOChannel struct {
	mu      sync.Mutex
	pin     gpio.PinOut
	freq    physic.Frequency
	maxDuty uint32
	duty    uint32
	enabled bool
}

// NewGPIOChannel wraps pin with a duty resolution of bits.
func NewGPIOChannel(pin gpio.PinOut, freq physic.Frequency, bits uint) (*GPIOChannel, error) {
	if pin == nil {
		return nil, fmt.Errorf("nil pin")
	}
	if bits == 0 || bits > 24 {
		return nil, fmt.Errorf("pwm resolution %d bits out of range 1..24", bits)
	}
	if freq == 0 {
		return nil, fmt.Errorf("pin %s: pwm frequency not set", pin)
	}
	return &GPIOChannel{
		pin:     pin,
		freq:    freq,
		maxDuty: 1<<bits - 1,
	}, nil
}

// Enable starts the PWM output at the last duty written.
func (g *GPIOChannel) Enable() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.enabled {
		return nil
	}
	if err := g.pin.PWM(g.scaled(g.duty), g.freq); err != nil {
		return err
	}
	g.enabled = true
	return nil
}

// MaxDuty returns 2^bits-1.
func (g *GPIOChannel) MaxDuty() uint32 {
	return g.maxDuty
}

// SetDuty updates the pin's duty cycle.
func (g *GPIOChannel) SetDuty(duty uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if duty > g.maxDuty {
		return fmt.Errorf("duty %d exceeds max %d", duty, g.maxDuty)
	}
	if err := g.pin.PWM(g.scaled(duty), g.freq); err != nil {
		return err
	}
	g.duty = duty
	return nil
}

// Halt stops the output.
func (g *GPIOChannel) Halt() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.enabled = false
	return g.pin.Halt()
}

func (g *GPIOChannel) scaled(duty uint32) gpio.Duty {
	return gpio.Duty(uint64(duty) * uint64(gpio.DutyMax) / uint64(g.maxDuty))
}
