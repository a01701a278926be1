package metronome

import (
	"math"
	"strconv"
	"strings"
	"sync"
)

const (
	MinBPM = 30
	MaxBPM = 300

	DefaultBPM             = 120
	DefaultBeatsPerMeasure = 4
	DefaultSubdivision     = 1
	DefaultVolume          = 0.8
	DefaultSound           = "click"

	MinSubdivision = 1
	MaxSubdivision = 4
)

// TempoSettings is the set of user-facing values the engine reads on every tick.
type TempoSettings struct {
	BPM             int
	BeatsPerMeasure int
	Subdivision     int
	Accent          bool
	Volume          float64
	Sound           string
}

// DefaultTempo returns the settings a fresh metronome starts with.
func DefaultTempo() TempoSettings {
	return TempoSettings{
		BPM:             DefaultBPM,
		BeatsPerMeasure: DefaultBeatsPerMeasure,
		Subdivision:     DefaultSubdivision,
		Accent:          true,
		Volume:          DefaultVolume,
		Sound:           DefaultSound,
	}
}

// Normalize clamps or defaults every field into its valid range.
func (t TempoSettings) Normalize() TempoSettings {
	t.BPM = ClampBPM(t.BPM)
	if t.BeatsPerMeasure < 1 {
		t.BeatsPerMeasure = DefaultBeatsPerMeasure
	}
	t.Subdivision = clampInt(t.Subdivision, MinSubdivision, MaxSubdivision)
	t.Volume = ClampVolume(t.Volume)
	if strings.TrimSpace(t.Sound) == "" {
		t.Sound = DefaultSound
	}
	return t
}

// ClampBPM treats zero as "no value" and falls back to DefaultBPM, everything
// else is clamped into [MinBPM, MaxBPM].
func ClampBPM(bpm int) int {
	if bpm == 0 {
		return DefaultBPM
	}
	return clampInt(bpm, MinBPM, MaxBPM)
}

// ParseBPM converts user input into a usable tempo. Non-numeric input yields DefaultBPM.
func ParseBPM(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return DefaultBPM
	}
	if math.IsInf(f, 1) {
		return MaxBPM
	}
	if math.IsInf(f, -1) {
		return MinBPM
	}
	return ClampBPM(int(math.Round(f)))
}

// ParseVolume converts user input into a volume in [0,1]. Non-numeric input
// yields DefaultVolume.
func ParseVolume(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return DefaultVolume
	}
	return ClampVolume(v)
}

func ClampVolume(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultVolume
	}
	return math.Max(0, math.Min(1, v))
}

func clampInt(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// Source supplies the current settings at read time. Implementations must not
// hand out values cached from an earlier read.
type Source interface {
	Tempo() TempoSettings
}

// Store is a concurrency safe Source backed by a single TempoSettings value.
// Every setter normalizes its input.
type Store struct {
	mu sync.RWMutex
	t  TempoSettings
}

func NewStore(initial TempoSettings) *Store {
	return &Store{t: initial.Normalize()}
}

func (s *Store) Tempo() TempoSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t
}

func (s *Store) update(fn func(t *TempoSettings)) TempoSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.t)
	s.t = s.t.Normalize()
	return s.t
}

func (s *Store) SetBPM(bpm int) int {
	return s.update(func(t *TempoSettings) { t.BPM = bpm }).BPM
}

// NudgeBPM adds delta to the current tempo and returns the clamped result.
func (s *Store) NudgeBPM(delta int) int {
	return s.update(func(t *TempoSettings) {
		t.BPM = clampInt(t.BPM+delta, MinBPM, MaxBPM)
	}).BPM
}

func (s *Store) SetBeatsPerMeasure(n int) int {
	return s.update(func(t *TempoSettings) { t.BeatsPerMeasure = n }).BeatsPerMeasure
}

func (s *Store) SetSubdivision(n int) int {
	return s.update(func(t *TempoSettings) { t.Subdivision = n }).Subdivision
}

func (s *Store) SetAccent(on bool) {
	s.update(func(t *TempoSettings) { t.Accent = on })
}

func (s *Store) SetVolume(v float64) float64 {
	return s.update(func(t *TempoSettings) { t.Volume = v }).Volume
}

func (s *Store) SetSound(name string) string {
	return s.update(func(t *TempoSettings) { t.Sound = name }).Sound
}

// ResetDefaults restores tempo, subdivision, accent and volume. The meter and
// the selected sound are left alone.
func (s *Store) ResetDefaults() TempoSettings {
	return s.update(func(t *TempoSettings) {
		d := DefaultTempo()
		t.BPM = d.BPM
		t.Subdivision = d.Subdivision
		t.Accent = d.Accent
		t.Volume = d.Volume
	})
}
