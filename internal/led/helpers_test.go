package led

import (
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type simRig struct {
	leds    *Leds
	pixel   *SimPixel
	anode   [3]*SimChannel
	cathode [3]*SimChannel
}

func newSimRig(t *testing.T, maxDuty uint32) *simRig {
	t.Helper()
	logger := discardLogger()

	rig := &simRig{pixel: NewSimPixel(logger)}
	var anode, cathode [3]Channel
	for i, name := range componentNames {
		rig.anode[i] = NewSimChannel("anode."+name, maxDuty, logger)
		rig.cathode[i] = NewSimChannel("cathode."+name, maxDuty, logger)
		anode[i] = rig.anode[i]
		cathode[i] = rig.cathode[i]
	}
	bank, err := buildBank(anode, cathode)
	if err != nil {
		t.Fatalf("buildBank() error = %v", err)
	}
	rig.leds = NewLeds(rig.pixel, bank, logger)
	return rig
}

func (r *simRig) anodeDuties() [3]uint32 {
	return [3]uint32{r.anode[0].Duty(), r.anode[1].Duty(), r.anode[2].Duty()}
}

func (r *simRig) cathodeDuties() [3]uint32 {
	return [3]uint32{r.cathode[0].Duty(), r.cathode[1].Duty(), r.cathode[2].Duty()}
}
