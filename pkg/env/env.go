package env

import (
	"fmt"
	"log/slog"
	"strings"
)

type Mode string

const (
	Test  Mode = "test"
	Local Mode = "local"
	Dev   Mode = "dev"
	Prod  Mode = "prod"
)

var currentMode = Test

func SetMode(mode Mode) {
	if !mode.Validate() {
		panic("invalid mode: " + mode.String())
	}
	currentMode = mode
}

func Current() Mode {
	return currentMode
}

// Parse accepts the mode names case-insensitively; an empty string means Local.
func Parse(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Local, nil
	}
	m := Mode(s)
	if !m.Validate() {
		return "", fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}

func (e Mode) String() string {
	return string(e)
}

func (e Mode) Validate() bool {
	switch e {
	case Local, Test, Dev, Prod:
		return true
	default:
		return false
	}
}

// IsDevelopment is true for modes where mail goes to the log and CORS is relaxed.
func (e Mode) IsDevelopment() bool {
	return e == Local || e == Dev || e == Test
}

func (e Mode) SlogLevel() slog.Level {
	switch e {
	case Test, Local, Dev:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
