// Package mode picks between in-memory and file-streaming processing.
package mode

import (
	"fmt"
	"strings"
)

type Mode string

const (
	Auto    Mode = "auto"
	Lite    Mode = "lite"
	Backend Mode = "backend"
)

// videos at least this long are streamed from disk
const BackendThreshold = 120.0

// Select resolves requested against the video duration in seconds.
// Explicit lite/backend requests are returned unchanged. Any duration,
// including NaN, maps to a mode.
func Select(duration float64, requested Mode) Mode {
	switch requested {
	case Lite, Backend:
		return requested
	}
	if duration >= BackendThreshold {
		return Backend
	}
	return Lite
}

func Parse(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Auto, nil
	case Auto, Lite, Backend:
		return m, nil
	default:
		return "", fmt.Errorf("unknown processing mode %q (want auto, lite or backend)", s)
	}
}

func (m Mode) String() string {
	return string(m)
}
