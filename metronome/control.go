package metronome

import (
	"time"

	"go.uber.org/zap"
)

// TapResult is the outcome of the most recent tap.
type TapResult struct {
	BPM int
	OK  bool
}

// Controller binds the user-facing actions (play/stop, reset, tempo nudges,
// tap tempo, meter and subdivision changes) to a Store and an Engine.
type Controller struct {
	store  *Store
	engine *Engine
	taps   *TapTempo
	now    func() time.Time
	log    *zap.Logger

	// OnChange, when set, is called after every action that changed settings
	// or playback.
	OnChange func(TempoSettings)
}

type ControllerOption func(*Controller)

func WithNow(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

func WithControllerLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) { c.log = l }
}

func NewController(store *Store, engine *Engine, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:  store,
		engine: engine,
		taps:   NewTapTempo(),
		now:    time.Now,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Settings() TempoSettings { return c.store.Tempo() }

func (c *Controller) Running() bool { return c.engine.Running() }

func (c *Controller) changed() {
	if c.OnChange != nil {
		c.OnChange(c.store.Tempo())
	}
}

func (c *Controller) Toggle() bool {
	running := c.engine.Toggle()
	c.changed()
	return running
}

func (c *Controller) Start() {
	c.engine.Start()
	c.changed()
}

func (c *Controller) Stop() {
	c.engine.Stop()
	c.changed()
}

// Reset stops playback and restores the default tempo, subdivision, accent
// and volume.
// Reset stops playback, restores the default tempo settings and forgets any
// tap sequence in progress.
func (c *Controller) Reset() {
	c.engine.Stop()
	c.taps.Reset()
	t := c.store.ResetDefaults()
	c.log.Info("settings reset", zap.Int("bpm", t.BPM))
	c.changed()
}

func (c *Controller) SetBPM(bpm int) int {
	bpm = c.store.SetBPM(bpm)
	c.engine.ApplyLiveChange(ChangeTempo)
	c.changed()
	return bpm
}

func (c *Controller) NudgeBPM(delta int) int {
	bpm := c.store.NudgeBPM(delta)
	c.engine.ApplyLiveChange(ChangeTempo)
	c.changed()
	return bpm
}

func (c *Controller) SetSubdivision(n int) int {
	n = c.store.SetSubdivision(n)
	c.engine.ApplyLiveChange(ChangeSubdivision)
	c.changed()
	return n
}

func (c *Controller) SetBeatsPerMeasure(n int) int {
	n = c.store.SetBeatsPerMeasure(n)
	c.engine.ApplyLiveChange(ChangeMeter)
	c.changed()
	return n
}

func (c *Controller) SetAccent(on bool) {
	c.store.SetAccent(on)
	c.changed()
}

func (c *Controller) ToggleAccent() bool {
	on := !c.store.Tempo().Accent
	c.SetAccent(on)
	return on
}

func (c *Controller) SetVolume(v float64) float64 {
	v = c.store.SetVolume(v)
	c.changed()
	return v
}

func (c *Controller) NudgeVolume(delta float64) float64 {
	return c.SetVolume(c.store.Tempo().Volume + delta)
}

func (c *Controller) SetSound(name string) string {
	name = c.store.SetSound(name)
	c.changed()
	return name
}

// Tap feeds a tap into the estimator. Once two taps fall inside the window the
// estimate becomes the new tempo and is applied live.
func (c *Controller) Tap() TapResult {
	bpm, ok := c.taps.Tap(c.now())
	if !ok {
		c.log.Debug("tap registered, no estimate yet")
		return TapResult{}
	}
	c.log.Debug("tap estimate", zap.Int("bpm", bpm))
	return TapResult{BPM: c.SetBPM(bpm), OK: true}
}
