// Package term provides color state and terminal detection.
//
// Colors are package-level variables because multiple packages (logging,
// display, pipeline) need them for output formatting. [Configure] decides
// once during startup whether they emit escape sequences; when colors are
// disabled every Sprint call returns its input unchanged.
package term

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/backmassage/skipfix/internal/config"
)

// Palette used by the logger and console output.
var (
	Red     = color.New(color.Bold, color.FgHiRed)
	Green   = color.New(color.Bold, color.FgHiGreen)
	Yellow  = color.New(color.Bold, color.FgHiYellow)
	Blue    = color.New(color.Bold, color.FgHiBlue)
	Cyan    = color.New(color.Bold, color.FgHiCyan)
	Magenta = color.New(color.Bold, color.FgHiMagenta)
)

// Configure resolves the color mode and toggles color output globally.
// Call once during startup (from [logging.NewLogger]).
func Configure(mode config.ColorMode) {
	color.NoColor = !resolve(mode)
}

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
