package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smazurov/colornode/internal/led"
)

func simLeds() (*led.Leds, string, error) {
	return led.New(led.Config{Driver: led.DriverSim, SimMaxDuty: 255}, nil)
}

func TestApply(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runApply(&out, simLeds, "#ff0000"))

	assert.Contains(t, out.String(), "#ff0000 applied via sim")
	assert.Contains(t, out.String(), "anode   [0 255 255]")
	assert.Contains(t, out.String(), "cathode [255 0 0]")
}

func TestApplyInvalidColor(t *testing.T) {
	called := false
	factory := func() (*led.Leds, string, error) {
		called = true
		return simLeds()
	}

	var out bytes.Buffer
	assert.Error(t, runApply(&out, factory, "nope"))
	assert.False(t, called, "hardware must not be opened for a bad colour")
}

func TestApplyFactoryError(t *testing.T) {
	factory := func() (*led.Leds, string, error) {
		return nil, "", errors.New("no SPI")
	}
	err := runApply(&bytes.Buffer{}, factory, "#000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no SPI")
}

func TestProbe(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runProbe(&out, simLeds))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "driver: sim", lines[0])
	assert.Equal(t, "anode (active-low): 255 255 255", lines[1])
	assert.Equal(t, "cathode (active-high): 255 255 255", lines[2])
}

func TestCommandsWireArgs(t *testing.T) {
	apply := CreateApplyCmd(simLeds)
	var out bytes.Buffer
	apply.SetOut(&out)
	apply.SetArgs([]string{"00ff00"})
	require.NoError(t, apply.Execute())
	assert.Contains(t, out.String(), "#00ff00")

	apply = CreateApplyCmd(simLeds)
	apply.SetArgs([]string{})
	apply.SetOut(&bytes.Buffer{})
	apply.SetErr(&bytes.Buffer{})
	assert.Error(t, apply.Execute())
}
