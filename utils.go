package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func ValidTimeSig(input string) (TimeSignature, error) {
	parts := strings.Split(strings.TrimSpace(input), "/")
	if len(parts) != 2 {
		return TimeSignature{}, errors.Errorf("invalid time signature format %q", input)
	}

	beats, err1 := strconv.Atoi(parts[0])
	noteValue, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return TimeSignature{}, errors.Errorf("invalid number in time signature %q", input)
	}

	for _, ts := range TIME_SIGNATURES {
		if ts.Beats == beats && ts.NoteValue == noteValue {
			return ts, nil
		}
	}

	return TimeSignature{}, errors.Errorf("time signature %q not found", input)
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Beats, ts.NoteValue)
}

// nextSound returns the sound after current in SOUNDS, wrapping around.
func nextSound(current string) string {
	for i, s := range SOUNDS {
		if s == current {
			return SOUNDS[(i+1)%len(SOUNDS)]
		}
	}
	return SOUNDS[0]
}

func validSound(name string) bool {
	for _, s := range SOUNDS {
		if s == name {
			return true
		}
	}
	return false
}

func runCmd(name string, arg ...string) error {
	cmd := exec.Command(name, arg...)
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func ClearTerminal() error {
	switch runtime.GOOS {
	case "windows":
		return runCmd("cmd", "/c", "cls")
	default:
		return runCmd("clear")
	}
}

func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	if runtime.GOOS == "windows" {
		home := os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		if home == "" {
			home = os.Getenv("USERPROFILE")
		}
		return home
	}
	return os.Getenv("HOME")
}

func defaultConfigPath() string {
	return filepath.Join(UserHomeDir(), ".pulso.json")
}
