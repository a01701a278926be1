package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/dimfu/pulso/metronome"
	"github.com/eiannone/keyboard"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// tempo and volume are parsed leniently by resolveSettings.
type options struct {
	tempo       string
	timesig     string
	subdivision int
	accent      bool
	volume      string
	sound       string
	samples     string
	preset      string
	config      string
	logLevel    string
	logFile     string
	debugDump   bool
}

func newFlagSet(o *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("pulso", pflag.ContinueOnError)
	fs.StringVarP(&o.tempo, "tempo", "t", strconv.Itoa(metronome.DefaultBPM), "the speed at which a passage of this metronome should be played")
	fs.StringVarP(&o.timesig, "timesig", "s", "4/4", "indicate how many beats are in each measure")
	fs.IntVarP(&o.subdivision, "subdivision", "d", metronome.DefaultSubdivision, "clicks per beat (1-4)")
	fs.BoolVar(&o.accent, "accent", true, "accent the first beat of every measure")
	fs.StringVarP(&o.volume, "volume", "v", strconv.FormatFloat(metronome.DefaultVolume, 'g', -1, 64), "master volume (0-1)")
	fs.StringVar(&o.sound, "sound", metronome.DefaultSound, "click sound: click, kick, snare or cymbal")
	fs.StringVar(&o.samples, "samples", "", "directory with kick.wav, snare.wav and cymbal.wav")
	fs.StringVarP(&o.preset, "preset", "p", "", "start from a named preset")
	fs.StringVar(&o.config, "config", defaultConfigPath(), "preset file")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.StringVar(&o.logFile, "log-file", "", "write logs to this file")
	fs.BoolVar(&o.debugDump, "debug-dump", false, "dump the effective settings at debug level")
	return fs
}

// resolveSettings layers defaults, the optional preset and explicitly set flags.
func resolveSettings(fs *pflag.FlagSet, o options) (metronome.TempoSettings, TimeSignature, error) {
	settings := metronome.DefaultTempo()
	ts := TIME_SIGNATURES[0]

	if o.preset != "" {
		p, err := loadPreset(o.config, o.preset)
		if err != nil {
			return settings, ts, err
		}
		if settings, err = p.Apply(settings); err != nil {
			return settings, ts, err
		}
		if p.Timesig != "" {
			// Apply already validated it.
			ts, _ = ValidTimeSig(p.Timesig)
		}
	}

	if o.preset == "" || fs.Changed("timesig") {
		validSig, err := ValidTimeSig(o.timesig)
		if err != nil {
			return settings, ts, err
		}
		ts = validSig
		settings.BeatsPerMeasure = ts.Beats
	}
	if o.preset == "" || fs.Changed("tempo") {
		settings.BPM = metronome.ParseBPM(o.tempo)
	}
	if o.preset == "" || fs.Changed("subdivision") {
		settings.Subdivision = o.subdivision
	}
	if o.preset == "" || fs.Changed("accent") {
		settings.Accent = o.accent
	}
	if o.preset == "" || fs.Changed("volume") {
		settings.Volume = metronome.ParseVolume(o.volume)
	}
	if o.preset == "" || fs.Changed("sound") {
		if !validSound(o.sound) {
			return settings, ts, errors.Errorf("unknown sound %q", o.sound)
		}
		settings.Sound = o.sound
	}
	return settings.Normalize(), ts, nil
}

func main() {
	var o options
	fs := newFlagSet(&o)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	log, err := newLogger(o.logLevel, o.logFile, interactive)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(o, fs, interactive, log); err != nil {
		log.Error("pulso failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(o options, fs *pflag.FlagSet, interactive bool, log *zap.Logger) error {
	settings, ts, err := resolveSettings(fs, o)
	if err != nil {
		return err
	}
	if o.debugDump {
		log.Debug("effective settings", zap.String("settings", spew.Sdump(settings)), zap.String("timesig", ts.String()))
	}

	sr := beep.SampleRate(SAMPLE_RATE)
	out, err := initSpeaker(sr)
	if err != nil {
		log.Warn("audio unavailable, running silently", zap.Error(err))
	} else {
		defer func() {
			speaker.Clear()
			speaker.Close()
		}()
	}

	player := NewAudioPlayer(out, sr, WithPlayerLogger(log))
	if o.samples != "" {
		n := player.LoadSampleDir(o.samples)
		log.Info("samples loaded", zap.String("dir", o.samples), zap.Int("count", n))
	}

	store := metronome.NewStore(settings)

	var (
		ui        *Indicator
		indicator metronome.BeatIndicator = logIndicator{log: log}
	)
	engineOpts := []metronome.Option{metronome.WithLogger(log)}
	if interactive {
		if err := ClearTerminal(); err != nil {
			log.Debug("clearing terminal failed", zap.Error(err))
		}
		ui = NewIndicator(store, ts.NoteValue, WithIndicatorLogger(log))
		indicator = ui
		engineOpts = append(engineOpts, metronome.WithTickHook(ui.Pulse))
	}

	engine := metronome.NewEngine(store, player, indicator, engineOpts...)
	ctrl := metronome.NewController(store, engine, metronome.WithControllerLogger(log))
	if ui != nil {
		ctrl.OnChange = func(metronome.TempoSettings) { ui.Refresh() }
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	ctrl.Start()
	defer ctrl.Stop()

	if !interactive {
		<-sig
		return nil
	}

	done := make(chan struct{})
	defer close(done)
	quit, err := listenKeys(ctrl, ui, log, done)
	if err != nil {
		return err
	}
	defer keyboard.Close()

	select {
	case <-quit:
	case <-sig:
	}
	return nil
}
