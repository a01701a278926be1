package main

import (
	"github.com/dimfu/pulso/metronome"
	"github.com/eiannone/keyboard"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// tapDisplay receives tap estimates. Satisfied by *Indicator.
type tapDisplay interface {
	SetTap(metronome.TapResult)
}

// handleKey applies one key press and reports whether the program should quit.
func handleKey(ctrl *metronome.Controller, ui tapDisplay, ev keyboard.KeyEvent) bool {
	switch ev.Key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return true
	case keyboard.KeySpace:
		ctrl.Toggle()
		return false
	case keyboard.KeyArrowUp:
		ctrl.NudgeBPM(BPM_STEP)
		return false
	case keyboard.KeyArrowDown:
		ctrl.NudgeBPM(-BPM_STEP)
		return false
	case keyboard.KeyPgup:
		ctrl.NudgeBPM(BPM_STEP_FAST)
		return false
	case keyboard.KeyPgdn:
		ctrl.NudgeBPM(-BPM_STEP_FAST)
		return false
	}

	switch ev.Rune {
	case 'q', 'Q':
		return true
	case ' ':
		ctrl.Toggle()
	case 't', 'T':
		res := ctrl.Tap()
		if ui != nil {
			ui.SetTap(res)
		}
	case 'r', 'R':
		ctrl.Reset()
		if ui != nil {
			ui.SetTap(metronome.TapResult{})
		}
	case 'a', 'A':
		ctrl.ToggleAccent()
	case '1', '2', '3', '4':
		ctrl.SetSubdivision(int(ev.Rune - '0'))
	case '[':
		ctrl.SetBeatsPerMeasure(ctrl.Settings().BeatsPerMeasure - 1)
	case ']':
		ctrl.SetBeatsPerMeasure(ctrl.Settings().BeatsPerMeasure + 1)
	case '-', '_':
		ctrl.NudgeVolume(-VOLUME_STEP)
	case '=', '+':
		ctrl.NudgeVolume(VOLUME_STEP)
	case 'n', 'N':
		ctrl.SetSound(nextSound(ctrl.Settings().Sound))
	}
	return false
}

// listenKeys feeds key presses to handleKey until a quit key arrives or done
// is closed. The returned channel is closed when the user asked to quit.
func listenKeys(ctrl *metronome.Controller, ui tapDisplay, log *zap.Logger, done <-chan struct{}) (<-chan struct{}, error) {
	events, err := keyboard.GetKeys(10)
	if err != nil {
		return nil, errors.Wrap(err, "opening keyboard")
	}

	quit := make(chan struct{})
	go func() {
		defer close(quit)
		for {
			select {
			case <-done:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Err != nil {
					log.Error("keyboard read failed", zap.Error(ev.Err))
					return
				}
				if handleKey(ctrl, ui, ev) {
					return
				}
			}
		}
	}()
	return quit, nil
}
