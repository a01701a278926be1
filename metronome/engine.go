// Package metronome implements the timing engine of a metronome: it turns a
// tempo, a meter and a subdivision into a stream of clicks and beat changes,
// and keeps that stream running while the settings change underneath it.
package metronome

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// NoBeat clears every indicator slot.
const NoBeat = -1

// SoundPlayer plays one click. volume is the configured master volume in [0,1];
// the player decides how an accent maps onto it.
type SoundPlayer interface {
	Play(sound string, accent bool, volume float64)
}

// BeatIndicator shows which beat of the measure is sounding. NoBeat (or any
// negative index) clears it.
type BeatIndicator interface {
	SetActive(beat int)
}

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The engine never keeps more than one pending.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// PlaybackState is the engine's position inside the measure.
type PlaybackState struct {
	Running bool
	Beat    int
	Sub     int
}

// Tick describes a single fired event.
type Tick struct {
	Beat     int
	Sub      int
	Accent   bool
	Sound    string
	Interval time.Duration
}

// Change tells ApplyLiveChange which kind of setting moved.
type Change int

const (
	ChangeTempo Change = iota
	ChangeSubdivision
	ChangeMeter
)

func (c Change) String() string {
	switch c {
	case ChangeTempo:
		return "tempo"
	case ChangeSubdivision:
		return "subdivision"
	case ChangeMeter:
		return "meter"
	default:
		return "unknown"
	}
}

// TickInterval returns the time between two ticks in milliseconds for an
// already normalized tempo.
func TickInterval(bpm, subdivision int) float64 {
	beatMs := 60000 / float64(bpm)
	return beatMs / float64(subdivision)
}

// Interval is TickInterval for arbitrary settings, as a time.Duration.
func Interval(t TempoSettings) time.Duration {
	t = t.Normalize()
	return time.Duration(TickInterval(t.BPM, t.Subdivision) * float64(time.Millisecond))
}

type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithTickHook registers a function called after every tick, with the engine
// lock held. It must not call back into the engine.
func WithTickHook(fn func(Tick)) Option {
	return func(e *Engine) { e.onTick = fn }
}

// Engine owns the playback state and the single pending tick. It is safe for
// use from multiple goroutines; collaborators are invoked with the engine
// lock held and must not call back into it.
type Engine struct {
	mu        sync.Mutex
	settings  Source
	sound     SoundPlayer
	indicator BeatIndicator
	clock     Clock
	log       *zap.Logger
	onTick    func(Tick)

	state   PlaybackState
	pending Timer
	// generation invalidates callbacks whose timer could not be stopped in time.
	generation uint64
}

func NewEngine(settings Source, sound SoundPlayer, indicator BeatIndicator, opts ...Option) *Engine {
	e := &Engine{
		settings:  settings,
		sound:     sound,
		indicator: indicator,
		clock:     realClock{},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start rewinds to the first beat and schedules the first tick one interval
// from now. Calling it while running restarts the measure.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLocked()
}

// Stop cancels the pending tick and clears the indicator. No tick fires after
// Stop returns until the next Start.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// Toggle starts a stopped engine or stops a running one and reports whether
// it is running afterwards.
func (e *Engine) Toggle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Running {
		e.stopLocked()
		return false
	}
	e.startLocked()
	return true
}

func (e *Engine) startLocked() {
	e.cancelLocked()
	e.state = PlaybackState{Running: true}
	e.indicator.SetActive(0)

	d := e.scheduleLocked()
	e.log.Info("metronome started", zap.Duration("interval", d))
}

func (e *Engine) stopLocked() {
	wasRunning := e.state.Running
	e.cancelLocked()
	e.state.Running = false
	e.indicator.SetActive(NoBeat)
	if wasRunning {
		e.log.Info("metronome stopped")
	}
}

func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Running
}

func (e *Engine) State() PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ApplyLiveChange reacts to a setting that moved. A tempo change keeps the
// position inside the measure and a subdivision change rewinds the
// subdivision; for both, a running engine replaces the pending tick with one
// scheduled from the fresh interval. A meter change only rewinds to the first
// beat and leaves the pending tick alone, the interval does not depend on it.
func (e *Engine) ApplyLiveChange(c Change) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch c {
	case ChangeSubdivision:
		e.state.Sub = 0
	case ChangeMeter:
		e.state.Beat = 0
		e.state.Sub = 0
		if !e.state.Running {
			e.indicator.SetActive(NoBeat)
			return
		}
		e.indicator.SetActive(0)
		e.log.Debug("live change applied", zap.Stringer("change", c))
		return
	}

	if !e.state.Running {
		return
	}
	e.cancelLocked()
	d := e.scheduleLocked()
	e.log.Debug("live change applied", zap.Stringer("change", c), zap.Duration("interval", d))
}

func (e *Engine) cancelLocked() {
	e.generation++
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}

func (e *Engine) scheduleLocked() time.Duration {
	d := Interval(e.settings.Tempo())
	gen := e.generation
	e.pending = e.clock.AfterFunc(d, func() { e.fire(gen) })
	return d
}

func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation || !e.state.Running {
		return
	}
	e.pending = nil
	e.tickLocked()
}

func (e *Engine) tickLocked() {
	t := e.settings.Tempo().Normalize()

	// The settings may have shrunk since the last tick without a live change.
	if e.state.Beat >= t.BeatsPerMeasure {
		e.state.Beat %= t.BeatsPerMeasure
	}
	if e.state.Sub >= t.Subdivision {
		e.state.Sub = 0
	}

	beat, sub := e.state.Beat, e.state.Sub
	accent := t.Accent && beat == 0 && sub == 0

	e.sound.Play(t.Sound, accent, t.Volume)
	if sub == 0 {
		e.indicator.SetActive(beat)
	}

	e.state.Sub++
	if e.state.Sub >= t.Subdivision {
		e.state.Sub = 0
		e.state.Beat = (e.state.Beat + 1) % t.BeatsPerMeasure
	}

	d := e.scheduleLocked()
	e.log.Debug("tick",
		zap.Int("beat", beat),
		zap.Int("sub", sub),
		zap.Bool("accent", accent),
		zap.Duration("interval", d),
	)
	if e.onTick != nil {
		e.onTick(Tick{Beat: beat, Sub: sub, Accent: accent, Sound: t.Sound, Interval: d})
	}
}
