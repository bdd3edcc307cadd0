package config

// This file binds CLI flags onto a Config. Flags are grouped into inputs,
// behavior, tools, and display. Negated and mode flags are captured
// separately and applied after parsing so Config defaults hold unless set.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Flags holds values that are applied to Config after parsing rather than
// bound directly (mode switch, negations, config path).
type Flags struct {
	ConfigPath string

	apply      bool
	noColor    bool
	noProgress bool
}

// BindFlags registers every run flag on fs, writing directly into cfg where
// possible. Call [Flags.Finish] after the flag set has been parsed.
func BindFlags(fs *pflag.FlagSet, cfg *Config) *Flags {
	f := &Flags{}
	defineInputFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg, f)
	defineToolFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, f)
	return f
}

// defineInputFlags registers -r/--report (and its --xlsx alias) and --root.
func defineInputFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.ReportPath, "report", "r", "", "Report of problem files (.xlsx, .csv, .tsv, .html)")
	fs.StringVar(&cfg.ReportPath, "xlsx", "", "Same as --report")
	fs.StringVar(&cfg.RootDir, "root", "", "Library root the report paths refer to")
}

// defineBehaviorFlags registers --apply, --config, and --compression-level.
func defineBehaviorFlags(fs *pflag.FlagSet, cfg *Config, f *Flags) {
	fs.BoolVar(&f.apply, "apply", false, "Perform changes (default is preview only)")
	fs.StringVar(&f.ConfigPath, "config", "", "TOML config file (default: $XDG_CONFIG_HOME/skipfix/config.toml)")
	fs.IntVar(&cfg.CompressionLevel, "compression-level", cfg.CompressionLevel, "FLAC compression level (0-12)")
}

// defineToolFlags registers --ffmpeg and --ffprobe.
func defineToolFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "ffmpeg binary")
	fs.StringVar(&cfg.FFprobePath, "ffprobe", cfg.FFprobePath, "ffprobe binary")
}

// defineDisplayFlags registers --color, --no-color, --no-progress, -v, -l.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config, f *Flags) {
	fs.Var(&colorModeValue{&cfg.ColorMode}, "color", "Colored output: auto | always | never")
	fs.Lookup("color").NoOptDefVal = string(ColorAlways)
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&f.noProgress, "no-progress", false, "Do not show live ffmpeg progress")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	fs.StringVarP(&cfg.LogFile, "log", "l", "", "Write a JSON log to file")
}

// Finish copies mode and negated flag values into cfg.
func (f *Flags) Finish(cfg *Config) {
	if f.apply {
		cfg.Mode = ModeApply
	}
	if f.noColor {
		cfg.ColorMode = ColorNever
	}
	if f.noProgress {
		cfg.ShowProgress = false
	}
	if cfg.RootDir != "" {
		cfg.RootDir = NormalizeDirArg(cfg.RootDir)
	}
}

// pflag.Value adapter so ColorMode can be used with fs.Var.

type colorModeValue struct{ p *ColorMode }

func (c *colorModeValue) String() string { return string(*c.p) }
func (c *colorModeValue) Type() string   { return "mode" }
func (c *colorModeValue) Set(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		*c.p = ColorAuto
	case "always", "true":
		*c.p = ColorAlways
	case "never", "false":
		*c.p = ColorNever
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
	return nil
}
