package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dimfu/pulso/metronome"
)

const testPresets = `[
	{"key": "waltz", "tempo": 90, "timesig": "3/4", "subdivision": 2, "accent": false, "volume": 0.5, "sound": "kick"},
	{"key": "tempo-only", "tempo": 72},
	{"key": "bad-sig", "timesig": "11/16"},
	{"key": "bad-sound", "sound": "cowbell"}
]`

func writePresets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".pulso.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cm := NewConfigManager(writePresets(t, testPresets))
	if err := cm.LoadConfig(); err != nil {
		t.Fatal(err)
	}
	if len(cm.Config) != 4 {
		t.Fatalf("expected 4 presets, got %d", len(cm.Config))
	}
	if p := cm.GetConfigByKey("waltz"); p == nil || p.Tempo != 90 {
		t.Fatalf("expected waltz preset, got %+v", p)
	}
	if p := cm.GetConfigByKey("missing"); p != nil {
		t.Fatalf("expected no preset, got %+v", p)
	}
}

func TestLoadConfigMissingOrEmpty(t *testing.T) {
	cm := NewConfigManager(filepath.Join(t.TempDir(), "nope.json"))
	if err := cm.LoadConfig(); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}

	cm = NewConfigManager(writePresets(t, ""))
	if err := cm.LoadConfig(); err != nil {
		t.Fatalf("expected empty file to be ignored, got %v", err)
	}
	if len(cm.Config) != 0 {
		t.Fatalf("expected no presets, got %d", len(cm.Config))
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	cm := NewConfigManager(writePresets(t, `{"key": `))
	if err := cm.LoadConfig(); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestPresetApply(t *testing.T) {
	cm := NewConfigManager(writePresets(t, testPresets))
	if err := cm.LoadConfig(); err != nil {
		t.Fatal(err)
	}

	got, err := cm.GetConfigByKey("waltz").Apply(metronome.DefaultTempo())
	if err != nil {
		t.Fatal(err)
	}
	want := metronome.TempoSettings{BPM: 90, BeatsPerMeasure: 3, Subdivision: 2, Accent: false, Volume: 0.5, Sound: "kick"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	got, err = cm.GetConfigByKey("tempo-only").Apply(metronome.DefaultTempo())
	if err != nil {
		t.Fatal(err)
	}
	want = metronome.DefaultTempo()
	want.BPM = 72
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	for _, key := range []string{"bad-sig", "bad-sound"} {
		if _, err := cm.GetConfigByKey(key).Apply(metronome.DefaultTempo()); err == nil {
			t.Errorf("%s: expected an error", key)
		}
	}
}

func TestLoadPreset(t *testing.T) {
	path := writePresets(t, testPresets)
	if _, err := loadPreset(path, "waltz"); err != nil {
		t.Fatal(err)
	}
	if _, err := loadPreset(path, "missing"); err == nil {
		t.Fatal("expected an error for an unknown preset")
	}
}
