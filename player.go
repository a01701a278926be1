package main

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DEFAULT_UNACCENTED_RATIO scales a sample's volume on beats that carry no accent.
	DEFAULT_UNACCENTED_RATIO = 0.85

	SYNTH_DURATION     = 40 * time.Millisecond
	SYNTH_FREQ         = 1000.0
	SYNTH_FREQ_ACCENT  = 1400.0
	SYNTH_GAIN         = 0.45
	SYNTH_GAIN_ACCENT  = 0.7
	RESAMPLE_QUALITY   = 4
	SPEAKER_BUFFER_DIV = 30
)

// output is where finished click streamers go. The speaker in production.
type output interface {
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
}

type speakerOutput struct{}

func (speakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (speakerOutput) Lock()                   { speaker.Lock() }
func (speakerOutput) Unlock()                 { speaker.Unlock() }

// silentOutput drops every click. Used when no audio device could be opened.
type silentOutput struct{}

func (silentOutput) Play(...beep.Streamer) {}
func (silentOutput) Lock()                 {}
func (silentOutput) Unlock()               {}

func initSpeaker(sr beep.SampleRate) (output, error) {
	if err := speaker.Init(sr, sr.N(time.Second/SPEAKER_BUFFER_DIV)); err != nil {
		return silentOutput{}, errors.Wrap(err, "initializing speaker")
	}
	return speakerOutput{}, nil
}

// clickSource renders one click for a sound.
type clickSource interface {
	Click(accent bool, volume float64) beep.Streamer
}

type sampleSource struct {
	buffer     *beep.Buffer
	unaccented float64
}

func (s sampleSource) Click(accent bool, volume float64) beep.Streamer {
	gain := volume
	if !accent {
		gain *= s.unaccented
	}
	return withGain(s.buffer.Streamer(0, s.buffer.Len()), gain)
}

type synthSource struct {
	sampleRate beep.SampleRate
}

func (s synthSource) Click(accent bool, volume float64) beep.Streamer {
	freq, gain := SYNTH_FREQ, volume*SYNTH_GAIN
	if accent {
		freq, gain = SYNTH_FREQ_ACCENT, volume*SYNTH_GAIN_ACCENT
	}
	return squareWave(s.sampleRate, freq, s.sampleRate.N(SYNTH_DURATION), clamp01(gain))
}

// squareWave plays n samples of a square wave at amplitude amp.
func squareWave(sr beep.SampleRate, freq float64, n int, amp float64) beep.Streamer {
	period := float64(sr) / freq
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= n {
			return 0, false
		}
		i := 0
		for ; i < len(samples) && pos < n; i++ {
			v := amp
			if math.Mod(float64(pos), period) >= period/2 {
				v = -amp
			}
			samples[i][0] = v
			samples[i][1] = v
			pos++
		}
		return i, true
	})
}

func withGain(s beep.Streamer, gain float64) beep.Streamer {
	gain = clamp01(gain)
	return &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   math.Log2(gain),
		Silent:   gain <= 0,
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

type PlayerOption func(*AudioPlayer)

func WithUnaccentedRatio(r float64) PlayerOption {
	return func(ap *AudioPlayer) { ap.unaccented = clamp01(r) }
}

func WithPlayerLogger(l *zap.Logger) PlayerOption {
	return func(ap *AudioPlayer) { ap.log = l }
}

// AudioPlayer plays clicks through beep. Sounds with a loaded sample play the
// sample, everything else falls back to a synthesized square wave.
type AudioPlayer struct {
	mu         sync.Mutex
	out        output
	format     beep.Format
	samples    map[string]clickSource
	synth      clickSource
	ctrl       *beep.Ctrl
	warned     map[string]bool
	unaccented float64
	log        *zap.Logger
}

func NewAudioPlayer(out output, sr beep.SampleRate, opts ...PlayerOption) *AudioPlayer {
	ap := &AudioPlayer{
		out:        out,
		format:     beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2},
		samples:    map[string]clickSource{},
		synth:      synthSource{sampleRate: sr},
		warned:     map[string]bool{},
		unaccented: DEFAULT_UNACCENTED_RATIO,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ap)
	}
	return ap
}

func Read(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, errors.Wrap(err, "reading audio file failed")
	}

	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, errors.Wrapf(err, "decoding %s", path)
	}

	return streamer, format, nil
}

// LoadSample decodes a WAV file into memory and registers it under name.
func (ap *AudioPlayer) LoadSample(name, path string) error {
	streamer, format, err := Read(path)
	if err != nil {
		return err
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != ap.format.SampleRate {
		s = beep.Resample(RESAMPLE_QUALITY, format.SampleRate, ap.format.SampleRate, streamer)
	}

	buffer := beep.NewBuffer(ap.format)
	buffer.Append(s)
	if buffer.Len() == 0 {
		return errors.Errorf("sample %s is empty", path)
	}

	ap.mu.Lock()
	ap.samples[name] = sampleSource{buffer: buffer, unaccented: ap.unaccented}
	delete(ap.warned, name)
	ap.mu.Unlock()

	ap.log.Debug("sample loaded", zap.String("sound", name), zap.String("path", path), zap.Int("frames", buffer.Len()))
	return nil
}

// LoadSampleDir loads <dir>/<sound>.wav for every sample-backed sound. Missing
// files are skipped, those sounds stay synthesized.
func (ap *AudioPlayer) LoadSampleDir(dir string) int {
	loaded := 0
	for _, name := range SOUNDS {
		if name == SOUND_CLICK {
			continue
		}
		path := filepath.Join(dir, name+".wav")
		if err := ap.LoadSample(name, path); err != nil {
			ap.log.Warn("sample unavailable, using synthesized click", zap.String("sound", name), zap.Error(err))
			continue
		}
		loaded++
	}
	return loaded
}

func (ap *AudioPlayer) source(name string) clickSource {
	ap.mu.Lock()
	defer ap.mu.Unlock()
	if src, ok := ap.samples[name]; ok {
		return src
	}
	if name != SOUND_CLICK && !ap.warned[name] {
		ap.warned[name] = true
		ap.log.Warn("no sample for sound, using synthesized click", zap.String("sound", name))
	}
	return ap.synth
}

// Play starts a click, cutting off the previous one if it is still sounding.
func (ap *AudioPlayer) Play(sound string, accent bool, volume float64) {
	s := ap.source(sound).Click(accent, clamp01(volume))
	ctrl := &beep.Ctrl{Streamer: s}

	ap.mu.Lock()
	prev := ap.ctrl
	ap.ctrl = ctrl
	ap.mu.Unlock()

	if prev != nil {
		ap.out.Lock()
		prev.Streamer = nil
		ap.out.Unlock()
	}
	ap.out.Play(ctrl)
}
