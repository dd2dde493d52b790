// Package color holds the logical colour value passed between the HTTP
// boundary and the LED hardware.
package color

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned when a colour string cannot be decoded.
var ErrInvalidColor = errors.New("invalid colour")

// RGB is an 8-bit per channel colour. It is a plain value type and is always
// copied, never shared.
type RGB struct {
	R uint8 `json:"r" minimum:"0" maximum:"255" doc:"Red intensity"`
	G uint8 `json:"g" minimum:"0" maximum:"255" doc:"Green intensity"`
	B uint8 `json:"b" minimum:"0" maximum:"255" doc:"Blue intensity"`
}

// Default is the colour shown before any request has been handled.
var Default = RGB{R: 0x80, G: 0x80, B: 0x80}

// ParseHex decodes a CSS style hex colour ("#RRGGBB"). The leading '#' is
// optional and digits are case-insensitive.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("%w: %q must have 6 hex digits", ErrInvalidColor, s)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
	}

	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// MustParseHex is like ParseHex but panics on error. Intended for constants
// and tests.
func MustParseHex(s string) RGB {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex renders the colour as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return c.Hex()
}

// Bytes returns the colour in R, G, B order.
func (c RGB) Bytes() []byte {
	return []byte{c.R, c.G, c.B}
}
