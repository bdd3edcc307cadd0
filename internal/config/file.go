package config

// This file loads the optional TOML config file. Values from the file sit
// between built-in defaults and CLI flags: a flag the user actually passed
// always wins.

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors the TOML keys. Pointer fields distinguish "absent" from
// a zero value.
type fileConfig struct {
	FFmpeg             *string  `toml:"ffmpeg"`
	FFprobe            *string  `toml:"ffprobe"`
	CompressionLevel   *int     `toml:"compression_level"`
	MinDurationSeconds *float64 `toml:"min_duration_seconds"`
	Color              *string  `toml:"color"`
	LogFile            *string  `toml:"log_file"`
	Verbose            *bool    `toml:"verbose"`
	Progress           *bool    `toml:"progress"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/skipfix/config.toml, falling
// back to ~/.config/skipfix/config.toml. It returns "" when neither base
// directory can be determined.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "skipfix", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "skipfix", "config.toml")
}

// ApplyFile merges the TOML file at path into cfg. Keys whose matching flag
// reports changed are skipped. When required is false a missing file is not
// an error; an explicit --config path sets required.
func ApplyFile(cfg *Config, path string, required bool, changed func(flag string) bool) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if changed == nil {
		changed = func(string) bool { return false }
	}

	if fc.FFmpeg != nil && !changed("ffmpeg") {
		cfg.FFmpegPath = *fc.FFmpeg
	}
	if fc.FFprobe != nil && !changed("ffprobe") {
		cfg.FFprobePath = *fc.FFprobe
	}
	if fc.CompressionLevel != nil && !changed("compression-level") {
		cfg.CompressionLevel = *fc.CompressionLevel
	}
	if fc.MinDurationSeconds != nil {
		cfg.MinDuration = *fc.MinDurationSeconds
	}
	if fc.Color != nil && !changed("color") && !changed("no-color") {
		v := colorModeValue{&cfg.ColorMode}
		if err := v.Set(*fc.Color); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
	}
	if fc.LogFile != nil && !changed("log") {
		cfg.LogFile = *fc.LogFile
	}
	if fc.Verbose != nil && !changed("verbose") {
		cfg.Verbose = *fc.Verbose
	}
	if fc.Progress != nil && !changed("no-progress") {
		cfg.ShowProgress = *fc.Progress
	}
	return nil
}
