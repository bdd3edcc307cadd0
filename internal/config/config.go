// Package config holds runtime configuration: defaults, the optional TOML
// config file, CLI flag binding, and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// --- Enum types for validated string fields ---

// Mode selects whether the run mutates the filesystem.
type Mode string

const (
	ModePreview Mode = "preview" // Report planned actions only (default).
	ModeApply   Mode = "apply"   // Transcode, verify, and replace sources.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// ErrRootInvalid is returned by [ValidateRoot] when the library root does not
// exist or is not a directory.
var ErrRootInvalid = errors.New("root directory is not usable")

// Config holds all runtime settings. It is populated by [DefaultConfig], then
// by [ApplyFile], then by CLI flags, before being passed (by pointer) to the
// packages that need it.
type Config struct {
	// Inputs.
	ReportPath string
	RootDir    string

	// Behavior.
	Mode             Mode
	FFmpegPath       string  // Default: "ffmpeg" (resolved on PATH).
	FFprobePath      string  // Default: "ffprobe".
	CompressionLevel int     // Default: 8. FLAC compression level 0..12.
	MinDuration      float64 // Default: 0.5 seconds. Verified outputs must be longer.

	// Display and logging.
	Verbose      bool
	ShowProgress bool      // Default: true. Live ffmpeg progress.
	ColorMode    ColorMode // Default: "auto".
	LogFile      string    // Optional structured log file path.
	CheckOnly    bool      // Run diagnostics and exit.
}

// DefaultConfig returns a Config in preview mode with the stock encoder
// settings. Used as the base before the config file and flags apply.
func DefaultConfig() Config {
	return Config{
		Mode:             ModePreview,
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		CompressionLevel: 8,
		MinDuration:      0.5,
		ShowProgress:     true,
		ColorMode:        ColorAuto,
	}
}

// Apply reports whether the run is allowed to mutate the filesystem.
func (c *Config) Apply() bool { return c.Mode == ModeApply }

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum and numeric fields. When not in CheckOnly mode it also
// requires both the report path and the root directory.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModePreview, ModeApply:
		// valid
	default:
		return fmt.Errorf("invalid mode %q (use 'preview' or 'apply')", c.Mode)
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.CompressionLevel < 0 || c.CompressionLevel > 12 {
		return fmt.Errorf("compression level must be between 0 and 12 (got %d)", c.CompressionLevel)
	}
	if c.MinDuration <= 0 {
		return fmt.Errorf("minimum duration must be greater than zero (got %g)", c.MinDuration)
	}
	if strings.TrimSpace(c.FFmpegPath) == "" || strings.TrimSpace(c.FFprobePath) == "" {
		return errors.New("ffmpeg and ffprobe paths must not be empty")
	}

	if c.CheckOnly {
		return nil
	}
	if c.ReportPath == "" || c.RootDir == "" {
		return errors.New("need both --report and --root")
	}
	return nil
}

// ValidateRoot checks that RootDir is an existing directory and returns its
// absolute, symlink-resolved form. Failures wrap [ErrRootInvalid].
func (c *Config) ValidateRoot() (string, error) {
	abs, err := filepath.Abs(NormalizeDirArg(c.RootDir))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRootInvalid, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRootInvalid, err)
	}
	info, err := os.Stat(real)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRootInvalid, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrRootInvalid, c.RootDir)
	}
	return real, nil
}

// AuditLogPath is the CSV audit log location for the active mode. The file
// lives in the root so it travels with the library it describes.
func (c *Config) AuditLogPath() string {
	return filepath.Join(c.RootDir, "fix_log_"+string(c.Mode)+".csv")
}
