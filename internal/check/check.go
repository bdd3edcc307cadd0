// Package check provides system diagnostics (the check subcommand) and the
// pre-flight tool validation ([Require]) for ffmpeg and ffprobe.
package check

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/backmassage/skipfix/internal/config"
)

// ErrToolMissing is matched by [MissingToolsError] via errors.Is.
var ErrToolMissing = errors.New("required tool not found")

// MissingToolsError lists every required tool that could not be resolved.
type MissingToolsError struct {
	Tools []string
}

func (e *MissingToolsError) Error() string {
	return "missing required tools: " + strings.Join(e.Tools, ", ")
}

// Is reports true for [ErrToolMissing].
func (e *MissingToolsError) Is(target error) bool { return target == ErrToolMissing }

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RequiredTools returns the tool binaries a run depends on.
func RequiredTools(cfg *config.Config) []string {
	return []string{cfg.FFmpegPath, cfg.FFprobePath}
}

// Require verifies every tool resolves to an executable (a bare name is
// searched on PATH). It reports all missing tools at once.
func Require(tools ...string) error {
	var missing []string
	for _, t := range tools {
		if _, err := exec.LookPath(t); err != nil {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return &MissingToolsError{Tools: missing}
	}
	return nil
}

// RunCheck runs the interactive diagnostics: availability and versions of
// ffmpeg and ffprobe, the FLAC encoder listing, and a short test encode.
// It returns false when anything a run needs is unusable.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkVersion(ctx, log, "ffmpeg", cfg.FFmpegPath)
	ok = checkVersion(ctx, log, "ffprobe", cfg.FFprobePath) && ok
	if !ok {
		return false
	}
	checkFLACEncoder(ctx, cfg, log)
	return checkTestEncode(ctx, cfg, log)
}

// checkVersion verifies bin resolves and logs the first line of -version.
func checkVersion(ctx context.Context, log Logger, name, bin string) bool {
	if _, err := exec.LookPath(bin); err != nil {
		log.Error("%s not found (%s)", name, bin)
		return false
	}
	out, err := exec.CommandContext(ctx, bin, "-version").Output()
	if err != nil {
		log.Warn("%s found but -version failed: %v", name, err)
		return true
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("%s: %s", name, firstLine)
	return true
}

// checkFLACEncoder lists FLAC encoders reported by ffmpeg.
func checkFLACEncoder(ctx context.Context, cfg *config.Config, log Logger) {
	out, err := exec.CommandContext(ctx, cfg.FFmpegPath, "-hide_banner", "-encoders").Output()
	if err != nil {
		log.Warn("Could not list encoders: %v", err)
		return
	}
	found := false
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "flac" {
			log.Info("  %s", strings.TrimSpace(line))
			found = true
		}
	}
	if !found {
		log.Warn("ffmpeg does not list a flac encoder")
	}
}

// checkTestEncode runs a minimal FLAC encode of a generated tone.
func checkTestEncode(ctx context.Context, cfg *config.Config, log Logger) bool {
	log.Info("Testing FLAC encode...")
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if runSilent(ctx, cfg.FFmpegPath, testEncodeArgs(cfg.CompressionLevel)...) {
		log.Success("FLAC encoder works")
		return true
	}
	log.Error("FLAC test encode failed")
	return false
}

// testEncodeArgs returns the ffmpeg arguments for a minimal FLAC encode.
func testEncodeArgs(level int) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
		"-c:a", "flac", "-compression_level", strconv.Itoa(level),
		"-f", "null", "-",
	}
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(ctx context.Context, name string, args ...string) bool {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
