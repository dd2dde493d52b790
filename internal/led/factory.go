package led

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// Driver names accepted in Config.Driver.
const (
	DriverAuto   = "auto"
	DriverSim    = "sim"
	DriverPeriph = "periph"
	DriverSysfs  = "sysfs"
)

// Config selects and wires the LED hardware.
type Config struct {
	Driver string

	// Pixel (periph only)
	SPIPort string

	// PWM
	PWMFreqHz int
	PWMBits   int
	// AnodePins and CathodePins are periph pin names, red/green/blue.
	AnodePins   []string
	CathodePins []string
	// AnodeChannels and CathodeChannels are sysfs "chip:index" pairs.
	AnodeChannels   []string
	CathodeChannels []string
	SysfsRoot       string

	// SimMaxDuty is the resolution of simulated channels.
	SimMaxDuty int
}

// New builds the LED hardware described by cfg. With DriverAuto the board is
// detected and unsupported boards, or boards whose hardware fails to open,
// get the simulated driver. The returned string is the driver in use.
func New(cfg Config, logger *slog.Logger) (*Leds, string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	driver := strings.ToLower(cfg.Driver)
	if driver == "" || driver == DriverAuto {
		boardModel := detectBoard()
		logger.Info("Detecting board for LED control", "board_model", boardModel)

		if !strings.Contains(boardModel, "Raspberry Pi") {
			logger.Info("No LED hardware support detected, using simulated LEDs", "board_model", boardModel)
			leds, err := newSim(cfg, logger)
			return leds, DriverSim, err
		}

		leds, err := newPeriph(cfg, logger)
		if err != nil {
			logger.Warn("periph LED init failed; falling back to simulated LEDs", "error", err)
			leds, err = newSim(cfg, logger)
			return leds, DriverSim, err
		}
		return leds, DriverPeriph, nil
	}

	var (
		leds *Leds
		err  error
	)
	switch driver {
	case DriverSim:
		leds, err = newSim(cfg, logger)
	case DriverPeriph:
		leds, err = newPeriph(cfg, logger)
	case DriverSysfs:
		leds, err = newSysfs(cfg, logger)
	default:
		return nil, "", fmt.Errorf("unknown LED driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, "", err
	}
	return leds, driver, nil
}

func newSim(cfg Config, logger *slog.Logger) (*Leds, error) {
	maxDuty := uint32(cfg.SimMaxDuty)
	if maxDuty == 0 {
		maxDuty = 1023
	}

	var anode, cathode [3]Channel
	for i, name := range componentNames {
		anode[i] = NewSimChannel("anode."+name, maxDuty, logger)
		cathode[i] = NewSimChannel("cathode."+name, maxDuty, logger)
	}
	bank, err := buildBank(anode, cathode)
	if err != nil {
		return nil, err
	}
	return NewLeds(NewSimPixel(logger), bank, logger), nil
}

func newPeriph(cfg Config, logger *slog.Logger) (*Leds, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	port, err := spireg.Open(cfg.SPIPort)
	if err != nil {
		return nil, fmt.Errorf("open SPI port %q: %w", cfg.SPIPort, err)
	}

	pixel, err := NewNRZPixel(port)
	if err != nil {
		_ = port.Close()
		return nil, err
	}

	anode, err := periphChannels(cfg.AnodePins, cfg)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("anode: %w", err)
	}
	cathode, err := periphChannels(cfg.CathodePins, cfg)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("cathode: %w", err)
	}

	bank, err := buildBank(anode, cathode)
	if err != nil {
		_ = port.Close()
		return nil, err
	}

	leds := NewLeds(pixel, bank, logger)
	for _, ch := range append(anode[:], cathode[:]...) {
		leds.onClose(ch.(*GPIOChannel).Halt)
	}
	leds.onClose(pixel.Halt)
	leds.onClose(port.Close)

	logger.Info("periph LEDs ready", "spi", cfg.SPIPort, "pixel", pixel.String(),
		"anode_pins", cfg.AnodePins, "cathode_pins", cfg.CathodePins)
	return leds, nil
}

func periphChannels(pins []string, cfg Config) ([3]Channel, error) {
	var out [3]Channel
	if len(pins) != 3 {
		return out, fmt.Errorf("need 3 pins (red, green, blue), got %d", len(pins))
	}
	bits := cfg.PWMBits
	if bits <= 0 {
		bits = 10
	}
	for i, name := range pins {
		p := gpioreg.ByName(name)
		if p == nil {
			return out, fmt.Errorf("pin %q not found", name)
		}
		ch, err := NewGPIOChannel(p, physic.Frequency(cfg.PWMFreqHz)*physic.Hertz, uint(bits))
		if err != nil {
			return out, err
		}
		out[i] = ch
	}
	return out, nil
}

func newSysfs(cfg Config, logger *slog.Logger) (*Leds, error) {
	period := time.Duration(0)
	if cfg.PWMFreqHz > 0 {
		period = time.Second / time.Duration(cfg.PWMFreqHz)
	}

	anode, err := sysfsChannels(cfg.SysfsRoot, cfg.AnodeChannels, period)
	if err != nil {
		return nil, fmt.Errorf("anode: %w", err)
	}
	cathode, err := sysfsChannels(cfg.SysfsRoot, cfg.CathodeChannels, period)
	if err != nil {
		return nil, fmt.Errorf("cathode: %w", err)
	}
	bank, err := buildBank(anode, cathode)
	if err != nil {
		return nil, err
	}

	// sysfs exposes no addressable pixel, so it is simulated.
	leds := NewLeds(NewSimPixel(logger), bank, logger)
	for _, ch := range append(anode[:], cathode[:]...) {
		leds.onClose(ch.(*sysfsChannel).Disable)
	}
	return leds, nil
}

func sysfsChannels(root string, specs []string, period time.Duration) ([3]Channel, error) {
	var out [3]Channel
	if len(specs) != 3 {
		return out, fmt.Errorf("need 3 PWM channels (red, green, blue), got %d", len(specs))
	}
	for i, spec := range specs {
		chip, index, err := parseChannelSpec(spec)
		if err != nil {
			return out, err
		}
		ch, err := newSysfsChannel(root, chip, index, period)
		if err != nil {
			return out, err
		}
		out[i] = ch
	}
	return out, nil
}

// parseChannelSpec parses "chip:index".
func parseChannelSpec(spec string) (int, int, error) {
	chipStr, indexStr, ok := strings.Cut(spec, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid PWM channel %q, want chip:index", spec)
	}
	chip, err := strconv.Atoi(strings.TrimSpace(chipStr))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid PWM chip in %q: %w", spec, err)
	}
	index, err := strconv.Atoi(strings.TrimSpace(indexStr))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid PWM index in %q: %w", spec, err)
	}
	return chip, index, nil
}

func buildBank(anode, cathode [3]Channel) (*Bank, error) {
	a, err := NewTriple("anode", ActiveLow, anode[0], anode[1], anode[2])
	if err != nil {
		return nil, err
	}
	c, err := NewTriple("cathode", ActiveHigh, cathode[0], cathode[1], cathode[2])
	if err != nil {
		return nil, err
	}
	return NewBank(a, c)
}

// detectBoard reads the device tree model to identify the board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}

	// Device tree model contains null bytes, trim them
	return strings.TrimRight(string(data), "\x00")
}
