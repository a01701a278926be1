package main

import (
	"path/filepath"
	"testing"

	"github.com/dimfu/pulso/metronome"
	"go.uber.org/zap/zapcore"
)

func parseArgs(t *testing.T, args ...string) (metronome.TempoSettings, TimeSignature, error) {
	t.Helper()
	var o options
	fs := newFlagSet(&o)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return resolveSettings(fs, o)
}

func TestResolveSettingsFromFlags(t *testing.T) {
	got, ts, err := parseArgs(t)
	if err != nil {
		t.Fatal(err)
	}
	if got != metronome.DefaultTempo() || ts != (TimeSignature{4, 4}) {
		t.Fatalf("expected defaults, got %+v %v", got, ts)
	}

	got, ts, err = parseArgs(t, "-t", "90", "-s", "3/4", "-d", "2", "--accent=false", "-v", "0.3", "--sound", "snare")
	if err != nil {
		t.Fatal(err)
	}
	want := metronome.TempoSettings{BPM: 90, BeatsPerMeasure: 3, Subdivision: 2, Accent: false, Volume: 0.3, Sound: "snare"}
	if got != want || ts != (TimeSignature{3, 4}) {
		t.Fatalf("expected %+v 3/4, got %+v %v", want, got, ts)
	}
}

func TestResolveSettingsClampsNumbers(t *testing.T) {
	got, _, err := parseArgs(t, "--tempo", "1000", "--subdivision", "9", "--volume=-2")
	if err != nil {
		t.Fatal(err)
	}
	if got.BPM != metronome.MaxBPM || got.Subdivision != metronome.MaxSubdivision || got.Volume != 0 {
		t.Fatalf("expected clamped values, got %+v", got)
	}
}

func TestResolveSettingsFallsBackOnMalformedNumbers(t *testing.T) {
	got, _, err := parseArgs(t, "--tempo", "abc", "--volume", "xyz")
	if err != nil {
		t.Fatal(err)
	}
	if got.BPM != metronome.DefaultBPM || got.Volume != metronome.DefaultVolume {
		t.Fatalf("expected default tempo and volume, got %+v", got)
	}

	got, _, err = parseArgs(t, "-t", "72.6", "-v", "NaN")
	if err != nil {
		t.Fatal(err)
	}
	if got.BPM != 73 || got.Volume != metronome.DefaultVolume {
		t.Fatalf("expected 73 bpm at default volume, got %+v", got)
	}
}

func TestResolveSettingsRejectsBadInput(t *testing.T) {
	if _, _, err := parseArgs(t, "--timesig", "11/16"); err == nil {
		t.Fatal("expected an error for an unknown time signature")
	}
	if _, _, err := parseArgs(t, "--sound", "cowbell"); err == nil {
		t.Fatal("expected an error for an unknown sound")
	}
}

func TestResolveSettingsPresetWithOverrides(t *testing.T) {
	path := writePresets(t, testPresets)

	got, ts, err := parseArgs(t, "--config", path, "--preset", "waltz", "--tempo", "100")
	if err != nil {
		t.Fatal(err)
	}
	want := metronome.TempoSettings{BPM: 100, BeatsPerMeasure: 3, Subdivision: 2, Accent: false, Volume: 0.5, Sound: "kick"}
	if got != want || ts != (TimeSignature{3, 4}) {
		t.Fatalf("expected %+v 3/4, got %+v %v", want, got, ts)
	}

	if _, _, err := parseArgs(t, "--config", path, "--preset", "missing"); err == nil {
		t.Fatal("expected an error for an unknown preset")
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger("loud", "", false); err == nil {
		t.Fatal("expected an error for an unknown level")
	}

	log, err := newLogger("debug", "", true)
	if err != nil {
		t.Fatal(err)
	}
	if log.Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("expected interactive logging without a file to keep only errors")
	}

	log, err = newLogger("debug", filepath.Join(t.TempDir(), "pulso.log"), true)
	if err != nil {
		t.Fatal(err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug logging to the file")
	}
}
