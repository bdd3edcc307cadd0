package planner

import (
	"path/filepath"
	"strings"
)

// TargetExt is the extension every action writes.
const TargetExt = ".flac"

// Kind is the remediation an action performs.
type Kind int

const (
	KindConvert Kind = iota // Lossy source re-encoded as FLAC.
	KindRepair              // FLAC that fails decoding, re-encoded.
)

// String returns the label written to logs and the audit file.
func (k Kind) String() string {
	switch k {
	case KindConvert:
		return "convert_m4a"
	case KindRepair:
		return "repair_flac"
	default:
		return "unknown"
	}
}

// Note is the short human description recorded with each action.
func (k Kind) Note() string {
	switch k {
	case KindConvert:
		return "m4a→flac"
	case KindRepair:
		return "re-encode flac"
	default:
		return ""
	}
}

// Family groups recognized input extensions.
type Family int

const (
	FamilyNone     Family = iota // Not a recognized audio file.
	FamilyLossy                  // .m4a, .mp4
	FamilyLossless               // .flac
)

var families = map[string]Family{
	".m4a":  FamilyLossy,
	".mp4":  FamilyLossy,
	".flac": FamilyLossless,
}

// FamilyOf classifies path by its extension, case-insensitively.
func FamilyOf(path string) Family {
	return families[strings.ToLower(filepath.Ext(path))]
}

// SupportedExt reports whether path has a recognized audio extension.
func SupportedExt(path string) bool { return FamilyOf(path) != FamilyNone }

// Action is one planned remediation.
type Action struct {
	Kind        Kind
	Source      string
	Desired     string   // Natural destination before collision handling.
	Destination string   // Allocated destination at planning time.
	Args        []string // Full ffmpeg argv, output last.
	Note        string
	Diagnostics []string // Decode-test stderr tail (repairs only).
}
