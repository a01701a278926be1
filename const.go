package main

type TimeSignature struct {
	Beats     int // number of beats per meassure
	NoteValue int // note that represent that one beat
}

const (
	SOUND_CLICK  = "click"
	SOUND_KICK   = "kick"
	SOUND_SNARE  = "snare"
	SOUND_CYMBAL = "cymbal"

	SAMPLE_RATE = 44100

	BPM_STEP      = 1
	BPM_STEP_FAST = 5
	VOLUME_STEP   = 0.05
)

// SOUNDS is the cycle order for the sound selector. click is always synthesized.
var SOUNDS = []string{SOUND_CLICK, SOUND_KICK, SOUND_SNARE, SOUND_CYMBAL}

var TIME_SIGNATURES = []TimeSignature{
	{4, 4},
	{3, 4},
	{2, 4},
	{2, 2},
	{3, 8},
	{5, 8},
	{6, 8},
	{7, 8},
	{9, 8},
	{12, 8},
	{5, 4},
	{6, 4},
	{7, 4},
}
