package led

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy reports that the transmit resource was in use.
	ErrBusy = errors.New("transmit resource busy")

	// ErrPoisoned is returned once a previous holder of the hardware lock
	// panicked. The output state is undefined from then on.
	ErrPoisoned = errors.New("led hardware lock poisoned")

	// ErrZeroMaxDuty rejects channels that report no duty resolution.
	ErrZeroMaxDuty = errors.New("channel max duty is 0")
)

// Driver operations reported in DriverError.
const (
	OpTransmit = "transmit"
	OpEnable   = "enable"
	OpSetDuty  = "set_duty"
)

// Mechanism identifies an output mechanism in ActuationError.
type Mechanism string

const (
	MechanismPixel Mechanism = "pixel"
	MechanismPWM   Mechanism = "pwm"
)

// DriverError is a failed hardware call.
type DriverError struct {
	Op      string
	Channel string
	Cause   error
}

func (e *DriverError) Error() string {
	if e.Channel != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Channel, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *DriverError) Unwrap() error {
	return e.Cause
}

// ActuationError wraps the DriverError of the mechanism that failed while
// applying a colour.
type ActuationError struct {
	Mechanism Mechanism
	Cause     error
}

func (e *ActuationError) Error() string {
	return fmt.Sprintf("actuate %s: %v", e.Mechanism, e.Cause)
}

func (e *ActuationError) Unwrap() error {
	return e.Cause
}

func newDriverError(op, channel string, cause error) *DriverError {
	return &DriverError{
		Op:      op,
		Channel: channel,
		Cause:   cause,
	}
}
