package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/dimfu/pulso/metronome"
	"github.com/pkg/errors"
)

// Preset is a named set of startup settings. Fields left out of the file keep
// the built-in defaults.
type Preset struct {
	Key         string   `json:"key"`
	Tempo       int      `json:"tempo"`
	Timesig     string   `json:"timesig"`
	Subdivision int      `json:"subdivision"`
	Accent      *bool    `json:"accent,omitempty"`
	Volume      *float64 `json:"volume,omitempty"`
	Sound       string   `json:"sound"`
}

// ConfigManager reads presets from a JSON file. It never writes the file back.
type ConfigManager struct {
	Config     []Preset
	ConfigPath string
}

func NewConfigManager(path string) *ConfigManager {
	return &ConfigManager{
		ConfigPath: path,
		Config:     []Preset{},
	}
}

// LoadConfig reads the preset file. A missing or empty file leaves the manager
// with no presets.
func (cm *ConfigManager) LoadConfig() error {
	f, err := os.Open(cm.ConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "opening presets %s", cm.ConfigPath)
	}
	defer f.Close()

	return cm.decode(f)
}

func (cm *ConfigManager) decode(r io.Reader) error {
	var presets []Preset
	if err := json.NewDecoder(r).Decode(&presets); err != nil {
		if err == io.EOF {
			return nil
		}
		return errors.Wrapf(err, "decoding presets %s", cm.ConfigPath)
	}
	cm.Config = presets
	return nil
}

func (cm *ConfigManager) GetConfigByKey(key string) *Preset {
	for i := range cm.Config {
		if cm.Config[i].Key == key {
			return &cm.Config[i]
		}
	}
	return nil
}

// Apply layers the preset on top of base.
func (p Preset) Apply(base metronome.TempoSettings) (metronome.TempoSettings, error) {
	if p.Tempo != 0 {
		base.BPM = p.Tempo
	}
	if p.Timesig != "" {
		ts, err := ValidTimeSig(p.Timesig)
		if err != nil {
			return base, errors.Wrapf(err, "preset %q", p.Key)
		}
		base.BeatsPerMeasure = ts.Beats
	}
	if p.Subdivision != 0 {
		base.Subdivision = p.Subdivision
	}
	if p.Accent != nil {
		base.Accent = *p.Accent
	}
	if p.Volume != nil {
		base.Volume = *p.Volume
	}
	if p.Sound != "" {
		if !validSound(p.Sound) {
			return base, errors.Errorf("preset %q: unknown sound %q", p.Key, p.Sound)
		}
		base.Sound = p.Sound
	}
	return base.Normalize(), nil
}

// loadPreset returns the preset named key from path.
func loadPreset(path, key string) (*Preset, error) {
	cm := NewConfigManager(path)
	if err := cm.LoadConfig(); err != nil {
		return nil, err
	}
	p := cm.GetConfigByKey(key)
	if p == nil {
		return nil, errors.Errorf("`%v` preset not found in %s", key, path)
	}
	return p, nil
}
