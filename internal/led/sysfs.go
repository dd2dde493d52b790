package led

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const sysfsPWMPath = "/sys/class/pwm"

// sysfsChannel implements Channel using the Linux sysfs PWM interface. Duty
// is expressed in nanoseconds, so MaxDuty is the configured period.
type sysfsChannel struct {
	mu      sync.Mutex
	dir     string
	maxDuty uint32
	enabled bool
}

// newSysfsChannel exports pwmchip<chip>/pwm<index> under root if needed, sets
// its period and reads it back as the channel's max duty.
func newSysfsChannel(root string, chip, index int, period time.Duration) (*sysfsChannel, error) {
	if root == "" {
		root = sysfsPWMPath
	}
	chipDir := filepath.Join(root, fmt.Sprintf("pwmchip%d", chip))
	dir := filepath.Join(chipDir, fmt.Sprintf("pwm%d", index))

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		exportPath := filepath.Join(chipDir, "export")
		if err := os.WriteFile(exportPath, []byte(strconv.Itoa(index)), 0644); err != nil {
			return nil, fmt.Errorf("failed to export PWM channel %s: %w", dir, err)
		}
	}

	if period > 0 {
		if err := os.WriteFile(filepath.Join(dir, "period"), []byte(strconv.FormatInt(period.Nanoseconds(), 10)), 0644); err != nil {
			return nil, fmt.Errorf("failed to set PWM period: %w", err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, "period"))
	if err != nil {
		return nil, fmt.Errorf("failed to read PWM period: %w", err)
	}
	ns, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid PWM period %q: %w", strings.TrimSpace(string(raw)), err)
	}

	return &sysfsChannel{
		dir:     dir,
		maxDuty: uint32(ns),
	}, nil
}

// Enable writes 1 to the channel's enable attribute once.
func (s *sysfsChannel) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enabled {
		return nil
	}
	if err := os.WriteFile(filepath.Join(s.dir, "enable"), []byte("1"), 0644); err != nil {
		return fmt.Errorf("failed to enable PWM: %w", err)
	}
	s.enabled = true
	return nil
}

// MaxDuty returns the period in nanoseconds.
func (s *sysfsChannel) MaxDuty() uint32 {
	return s.maxDuty
}

// SetDuty writes the duty cycle in nanoseconds.
func (s *sysfsChannel) SetDuty(duty uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if duty > s.maxDuty {
		return fmt.Errorf("duty %d exceeds period %d", duty, s.maxDuty)
	}
	if err := os.WriteFile(filepath.Join(s.dir, "duty_cycle"), []byte(strconv.FormatUint(uint64(duty), 10)), 0644); err != nil {
		return fmt.Errorf("failed to set PWM duty cycle: %w", err)
	}
	return nil
}

// Disable turns the output off.
func (s *sysfsChannel) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return nil
	}
	if err := os.WriteFile(filepath.Join(s.dir, "enable"), []byte("0"), 0644); err != nil {
		return fmt.Errorf("failed to disable PWM: %w", err)
	}
	s.enabled = false
	return nil
}
