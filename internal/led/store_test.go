package led

import (
	"sync"
	"testing"

	"github.com/smazurov/colornode/internal/color"
)

func TestStore(t *testing.T) {
	s := NewStore(color.Default)
	if got := s.Get(); got != color.Default {
		t.Errorf("Get() = %v, want %v", got, color.Default)
	}

	red := color.RGB{R: 255}
	s.Set(red)
	if got := s.Get(); got != red {
		t.Errorf("Get() after Set = %v, want %v", got, red)
	}

	// Overwriting with the same value is fine.
	s.Set(red)
	if got := s.Get(); got != red {
		t.Errorf("Get() after second Set = %v, want %v", got, red)
	}
}

func TestStoreConcurrent(t *testing.T) {
	s := NewStore(color.RGB{})
	var wg sync.WaitGroup

	written := make(map[color.RGB]bool)
	for i := range 20 {
		c := color.RGB{R: uint8(i), G: uint8(i), B: uint8(i)}
		written[c] = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				s.Set(c)
				got := s.Get()
				if got.R != got.G || got.G != got.B {
					t.Errorf("torn read %v", got)
				}
			}
		}()
	}
	wg.Wait()

	if !written[s.Get()] {
		t.Errorf("final value %v was never written", s.Get())
	}
}
