package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dimfu/pulso/metronome"
	"github.com/gosuri/uilive"
	"go.uber.org/zap"
)

const (
	LED_FIRST_ON  = "◆"
	LED_FIRST_OFF = "◇"
	LED_ON        = "●"
	LED_OFF       = "○"
	NO_TAP        = "—"

	PULSE_ACCENT = "✹"
	PULSE        = "•"
	PULSE_IDLE   = " "

	PENDULUM_LEFT  = "╲"
	PENDULUM_RIGHT = "╱"
	PENDULUM_REST  = "│"

	PULSE_DURATION = 100 * time.Millisecond
)

type IndicatorOption func(*Indicator)

func WithIndicatorLogger(l *zap.Logger) IndicatorOption {
	return func(ind *Indicator) { ind.log = l }
}

// withPulseTimer replaces time.AfterFunc for clearing the pulse marker.
func withPulseTimer(after func(time.Duration, func())) IndicatorOption {
	return func(ind *Indicator) { ind.after = after }
}

// Indicator draws the beat lights and the current settings on a single
// redrawn terminal block.
type Indicator struct {
	mu        sync.Mutex
	w         io.Writer
	flush     func() error
	settings  metronome.Source
	noteValue int
	active    int
	tap       string
	log       *zap.Logger

	pulse    string
	pulseGen uint64
	swings   int
	after    func(time.Duration, func())

	renderFailed bool
}

func NewIndicator(settings metronome.Source, noteValue int, opts ...IndicatorOption) *Indicator {
	w := uilive.New()
	w.Out = os.Stdout
	return newIndicator(w, w.Flush, settings, noteValue, opts...)
}

func newIndicator(w io.Writer, flush func() error, settings metronome.Source, noteValue int, opts ...IndicatorOption) *Indicator {
	ind := &Indicator{
		w:         w,
		flush:     flush,
		settings:  settings,
		noteValue: noteValue,
		active:    metronome.NoBeat,
		tap:       NO_TAP,
		log:       zap.NewNop(),
		pulse:     PULSE_IDLE,
		after:     func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
	for _, opt := range opts {
		opt(ind)
	}
	return ind
}

func (ind *Indicator) SetActive(beat int) {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	if beat < 0 {
		beat = metronome.NoBeat
		ind.swings = 0
		ind.pulse = PULSE_IDLE
		ind.pulseGen++
	}
	ind.active = beat
	ind.renderLocked()
}

// Pulse flashes the pulse marker for one tick, stronger on accents, and swings
// the pendulum on every beat. The marker clears after PULSE_DURATION or half
// the tick interval, whichever is shorter.
func (ind *Indicator) Pulse(tk metronome.Tick) {
	ind.mu.Lock()
	defer ind.mu.Unlock()

	ind.pulse = PULSE
	if tk.Accent {
		ind.pulse = PULSE_ACCENT
	}
	if tk.Sub == 0 {
		ind.swings++
	}
	ind.pulseGen++
	gen := ind.pulseGen
	ind.renderLocked()

	d := PULSE_DURATION
	if half := tk.Interval / 2; half > 0 && half < d {
		d = half
	}
	ind.after(d, func() { ind.clearPulse(gen) })
}

func (ind *Indicator) clearPulse(gen uint64) {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	if gen != ind.pulseGen {
		return
	}
	ind.pulse = PULSE_IDLE
	ind.renderLocked()
}

// SetTap shows the outcome of the last tap.
func (ind *Indicator) SetTap(res metronome.TapResult) {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	ind.tap = NO_TAP
	if res.OK {
		ind.tap = fmt.Sprintf("%d BPM", res.BPM)
	}
	ind.renderLocked()
}

// Refresh redraws with the current settings.
func (ind *Indicator) Refresh() {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	ind.renderLocked()
}

func (ind *Indicator) renderLocked() {
	status := renderStatus(ind.settings.Tempo(), statusView{
		noteValue: ind.noteValue,
		active:    ind.active,
		tap:       ind.tap,
		pulse:     ind.pulse,
		swings:    ind.swings,
	})
	_, err := fmt.Fprint(ind.w, status)
	if err == nil && ind.flush != nil {
		err = ind.flush()
	}
	// Report only the first failure.
	if err != nil && !ind.renderFailed {
		ind.renderFailed = true
		ind.log.Debug("rendering status failed", zap.Error(err))
	}
}

func renderLights(beats, active int) string {
	leds := make([]string, beats)
	for i := range leds {
		on := i == active
		switch {
		case i == 0 && on:
			leds[i] = LED_FIRST_ON
		case i == 0:
			leds[i] = LED_FIRST_OFF
		case on:
			leds[i] = LED_ON
		default:
			leds[i] = LED_OFF
		}
	}
	return strings.Join(leds, " ")
}

type statusView struct {
	noteValue int
	active    int
	tap       string
	pulse     string
	swings    int
}

func renderPendulum(active, swings int) string {
	switch {
	case active < 0:
		return PENDULUM_REST
	case swings%2 == 0:
		return PENDULUM_LEFT
	default:
		return PENDULUM_RIGHT
	}
}

// renderStatus ends lines with \r\n: the keyboard puts the terminal in raw mode.
func renderStatus(t metronome.TempoSettings, v statusView) string {
	state := "stopped"
	if v.active >= 0 {
		state = "playing"
	}
	pulse := v.pulse
	if pulse == "" {
		pulse = PULSE_IDLE
	}
	accent := "off"
	if t.Accent {
		accent = "on"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  %s  %s %s  beat %.2fs\r\n",
		renderLights(t.BeatsPerMeasure, v.active), renderPendulum(v.active, v.swings), pulse, 60/float64(metronome.ClampBPM(t.BPM)))
	fmt.Fprintf(&b, "  %d BPM  %d/%d  sub %d  accent %s  vol %d%%  %s  [%s]\r\n",
		t.BPM, t.BeatsPerMeasure, v.noteValue, t.Subdivision, accent, int(t.Volume*100+0.5), t.Sound, state)
	fmt.Fprintf(&b, "  tap %s\r\n", v.tap)
	b.WriteString("  space play/stop  ↑↓ ±1  pgup/pgdn ±5  t tap  r reset  a accent  1-4 sub  [ ] meter  -/= vol  n sound  q quit\r\n")
	return b.String()
}

// logIndicator reports beats through the logger when there is no terminal to draw on.
type logIndicator struct {
	log *zap.Logger
}

func (l logIndicator) SetActive(beat int) {
	if beat < 0 {
		l.log.Info("beat lights cleared")
		return
	}
	l.log.Info("beat", zap.Int("beat", beat+1))
}
