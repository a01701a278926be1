package metronome

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   TempoSettings
		want TempoSettings
	}{
		{
			name: "valid settings are untouched",
			in:   TempoSettings{BPM: 90, BeatsPerMeasure: 3, Subdivision: 2, Accent: true, Volume: 0.5, Sound: "kick"},
			want: TempoSettings{BPM: 90, BeatsPerMeasure: 3, Subdivision: 2, Accent: true, Volume: 0.5, Sound: "kick"},
		},
		{
			name: "zero values get defaults",
			in:   TempoSettings{},
			want: TempoSettings{BPM: DefaultBPM, BeatsPerMeasure: DefaultBeatsPerMeasure, Subdivision: MinSubdivision, Sound: DefaultSound},
		},
		{
			name: "out of range values are clamped",
			in:   TempoSettings{BPM: 999, BeatsPerMeasure: -2, Subdivision: 8, Volume: 3, Sound: "click"},
			want: TempoSettings{BPM: MaxBPM, BeatsPerMeasure: DefaultBeatsPerMeasure, Subdivision: MaxSubdivision, Volume: 1, Sound: "click"},
		},
		{
			name: "negative bpm and volume",
			in:   TempoSettings{BPM: -40, BeatsPerMeasure: 5, Subdivision: 1, Volume: -1, Sound: "  "},
			want: TempoSettings{BPM: MinBPM, BeatsPerMeasure: 5, Subdivision: 1, Volume: 0, Sound: DefaultSound},
		},
		{
			name: "nan volume",
			in:   TempoSettings{BPM: 60, BeatsPerMeasure: 4, Subdivision: 1, Volume: math.NaN(), Sound: "click"},
			want: TempoSettings{BPM: 60, BeatsPerMeasure: 4, Subdivision: 1, Volume: DefaultVolume, Sound: "click"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParseBPM(t *testing.T) {
	tests := map[string]int{
		"120":    120,
		" 95 ":   95,
		"72.6":   73,
		"abc":    DefaultBPM,
		"":       DefaultBPM,
		"0":      DefaultBPM,
		"5":      MinBPM,
		"4000":   MaxBPM,
		"NaN":    DefaultBPM,
		"+Inf":   MaxBPM,
		"-Inf":   MinBPM,
		"-12":    MinBPM,
		"300.2":  MaxBPM,
		"30.0":   MinBPM,
		"1e2":    100,
		"12 bpm": DefaultBPM,
	}
	for in, want := range tests {
		if got := ParseBPM(in); got != want {
			t.Errorf("ParseBPM(%q): expected %d, got %d", in, want, got)
		}
	}
}

func TestParseVolume(t *testing.T) {
	tests := map[string]float64{
		"0.5":    0.5,
		" 1 ":    1,
		"0":      0,
		"2":      1,
		"-2":     0,
		"xyz":    DefaultVolume,
		"":       DefaultVolume,
		"NaN":    DefaultVolume,
		"+Inf":   1,
		"-Inf":   0,
		"50%":    DefaultVolume,
		"2.5e-1": 0.25,
	}
	for in, want := range tests {
		if got := ParseVolume(in); got != want {
			t.Errorf("ParseVolume(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestStoreSetters(t *testing.T) {
	s := NewStore(DefaultTempo())

	if got := s.NudgeBPM(5); got != 125 {
		t.Fatalf("expected 125, got %d", got)
	}
	if got := s.NudgeBPM(1000); got != MaxBPM {
		t.Fatalf("expected %d, got %d", MaxBPM, got)
	}
	if got := s.NudgeBPM(-1000); got != MinBPM {
		t.Fatalf("expected %d, got %d", MinBPM, got)
	}
	if got := s.SetSubdivision(7); got != MaxSubdivision {
		t.Fatalf("expected %d, got %d", MaxSubdivision, got)
	}
	if got := s.SetBeatsPerMeasure(0); got != DefaultBeatsPerMeasure {
		t.Fatalf("expected %d, got %d", DefaultBeatsPerMeasure, got)
	}
	if got := s.SetVolume(1.5); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	if got := s.SetSound(""); got != DefaultSound {
		t.Fatalf("expected %q, got %q", DefaultSound, got)
	}
	s.SetAccent(false)
	if s.Tempo().Accent {
		t.Fatal("expected accent off")
	}
}

func TestStoreResetKeepsMeterAndSound(t *testing.T) {
	s := NewStore(TempoSettings{BPM: 200, BeatsPerMeasure: 7, Subdivision: 3, Accent: false, Volume: 0.1, Sound: "snare"})
	got := s.ResetDefaults()
	want := TempoSettings{BPM: DefaultBPM, BeatsPerMeasure: 7, Subdivision: DefaultSubdivision, Accent: true, Volume: DefaultVolume, Sound: "snare"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}
