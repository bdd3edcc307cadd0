package probe

import (
	"errors"
	"fmt"
)

// Verification failures. Both are wrapped with the measured facts.
var (
	ErrNoAudio  = errors.New("no audio stream")
	ErrTooShort = errors.New("duration too short")
)

// Verify applies the output integrity check: at least one audio stream and
// a duration strictly greater than minDuration seconds.
func Verify(pr *ProbeResult, minDuration float64) error {
	if pr == nil || !pr.HasAudio() {
		return ErrNoAudio
	}
	if d := pr.Duration(); d <= minDuration {
		return fmt.Errorf("%w: %.3fs (need > %.3fs)", ErrTooShort, d, minDuration)
	}
	return nil
}
