package led

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smazurov/colornode/internal/color"
)

func TestLedsSetColor(t *testing.T) {
	rig := newSimRig(t, 1023)
	c := color.RGB{R: 255, G: 0, B: 128}

	d, err := rig.leds.SetColor(c)
	require.NoError(t, err)

	assert.Equal(t, c, rig.pixel.Color())
	assert.Equal(t, 1, rig.pixel.Sent())
	assert.Equal(t, Duties{
		Anode:   [3]uint32{0, 1023, 509},
		Cathode: [3]uint32{1023, 0, 513},
	}, d)
}

func TestLedsSetColorIdempotent(t *testing.T) {
	rig := newSimRig(t, 1023)
	c := color.MustParseHex("#336699")

	first, err := rig.leds.SetColor(c)
	require.NoError(t, err)
	second, err := rig.leds.SetColor(c)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, c, rig.pixel.Color())
	assert.Equal(t, first.Anode, rig.anodeDuties())
	assert.Equal(t, first.Cathode, rig.cathodeDuties())
}

func TestLedsPixelFailure(t *testing.T) {
	rig := newSimRig(t, 1023)
	rig.pixel.FailWith(newDriverError(OpTransmit, "pixel", ErrBusy))

	_, err := rig.leds.SetColor(color.RGB{R: 1, G: 2, B: 3})
	require.Error(t, err)

	var actErr *ActuationError
	require.ErrorAs(t, err, &actErr)
	assert.Equal(t, MechanismPixel, actErr.Mechanism)
	assert.ErrorIs(t, err, ErrBusy)

	// PWM is never reached.
	for i := range 3 {
		assert.Equal(t, 0, rig.anode[i].Writes())
		assert.Equal(t, 0, rig.cathode[i].Writes())
	}
}

func TestLedsPWMFailureKeepsPixel(t *testing.T) {
	rig := newSimRig(t, 1023)
	rig.cathode[2].FailWith(errors.New("no such device"))
	c := color.RGB{R: 10, G: 20, B: 30}

	_, err := rig.leds.SetColor(c)
	require.Error(t, err)

	var actErr *ActuationError
	require.ErrorAs(t, err, &actErr)
	assert.Equal(t, MechanismPWM, actErr.Mechanism)

	var drvErr *DriverError
	require.ErrorAs(t, err, &drvErr)
	assert.Equal(t, "cathode.blue", drvErr.Channel)

	// No rollback of the pixel.
	assert.Equal(t, c, rig.pixel.Color())
	assert.False(t, rig.leds.Poisoned())

	// The handle stays usable after an ordinary failure.
	rig.cathode[2].FailWith(nil)
	_, err = rig.leds.SetColor(c)
	assert.NoError(t, err)
}

type panicPixel struct{}

func (panicPixel) SetPixel(color.RGB) error {
	panic("spi controller wedged")
}

func TestLedsPanicPoisons(t *testing.T) {
	rig := newSimRig(t, 1023)
	leds := NewLeds(panicPixel{}, rig.leds.Bank(), discardLogger())

	assert.Panics(t, func() {
		_, _ = leds.SetColor(color.RGB{R: 1})
	})
	assert.True(t, leds.Poisoned())

	_, err := leds.SetColor(color.RGB{R: 2})
	assert.ErrorIs(t, err, ErrPoisoned)
	for i := range 3 {
		assert.Equal(t, 0, rig.anode[i].Writes())
	}
}

// journalChannel appends every write to a shared journal.
type journalChannel struct {
	name    string
	journal *dutyJournal
}

type dutyJournal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journalChannel) Enable() error   { return nil }
func (j *journalChannel) MaxDuty() uint32 { return 255 }
func (j *journalChannel) SetDuty(d uint32) error {
	j.journal.mu.Lock()
	j.journal.entries = append(j.journal.entries, fmt.Sprintf("%s=%d", j.name, d))
	j.journal.mu.Unlock()
	return nil
}

func TestLedsConcurrentNoTearing(t *testing.T) {
	journal := &dutyJournal{}
	var anode, cathode [3]Channel
	for i, name := range componentNames {
		anode[i] = &journalChannel{name: "a." + name, journal: journal}
		cathode[i] = &journalChannel{name: "c." + name, journal: journal}
	}
	bank, err := buildBank(anode, cathode)
	require.NoError(t, err)
	pixel := NewSimPixel(nil)
	leds := NewLeds(pixel, bank, discardLogger())

	const workers = 8
	const perWorker = 50
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(v uint8) {
			defer wg.Done()
			for range perWorker {
				_, err := leds.SetColor(color.RGB{R: v, G: v, B: v})
				assert.NoError(t, err)
			}
		}(uint8(w * 30))
	}
	wg.Wait()

	journal.mu.Lock()
	entries := journal.entries
	journal.mu.Unlock()
	require.Len(t, entries, workers*perWorker*6)

	// Each apply is six contiguous writes for one grey level.
	for i := 0; i < len(entries); i += 6 {
		var v uint32
		_, err := fmt.Sscanf(entries[i], "a.red=%d", &v)
		require.NoError(t, err)
		grey := 255 - v
		want := []string{
			fmt.Sprintf("a.red=%d", v), fmt.Sprintf("c.red=%d", grey),
			fmt.Sprintf("a.green=%d", v), fmt.Sprintf("c.green=%d", grey),
			fmt.Sprintf("a.blue=%d", v), fmt.Sprintf("c.blue=%d", grey),
		}
		require.Equal(t, want, entries[i:i+6], "torn apply at entry %d", i)
	}

	// The pixel and PWM end on the same colour.
	last := entries[len(entries)-1]
	var b uint32
	_, err = fmt.Sscanf(last, "c.blue=%d", &b)
	require.NoError(t, err)
	assert.Equal(t, uint8(b), pixel.Color().B)
}
