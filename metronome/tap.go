package metronome

import (
	"math"
	"sync"
	"time"
)

// TapWindow is how far back taps still count towards the estimate.
const TapWindow = 2500 * time.Millisecond

// TapTempo estimates a tempo from the spacing of recent taps.
type TapTempo struct {
	mu     sync.Mutex
	window time.Duration
	taps   []time.Time
}

func NewTapTempo() *TapTempo {
	return &TapTempo{window: TapWindow}
}

// Tap records a tap at now and returns the estimated tempo. ok is false while
// fewer than two taps fall inside the window.
func (t *TapTempo) Tap(now time.Time) (bpm int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.taps[:0]
	for _, at := range t.taps {
		if now.Sub(at) < t.window {
			kept = append(kept, at)
		}
	}
	t.taps = append(kept, now)

	if len(t.taps) < 2 {
		return 0, false
	}

	var total time.Duration
	for i := 1; i < len(t.taps); i++ {
		total += t.taps[i].Sub(t.taps[i-1])
	}
	avgMs := float64(total) / float64(time.Millisecond) / float64(len(t.taps)-1)
	if avgMs <= 0 {
		return MaxBPM, true
	}
	return clampInt(int(math.Round(60000/avgMs)), MinBPM, MaxBPM), true
}

// Reset forgets every recorded tap.
func (t *TapTempo) Reset() {
	t.mu.Lock()
	t.taps = nil
	t.mu.Unlock()
}
