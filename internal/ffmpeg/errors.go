package ffmpeg

import (
	"regexp"
	"strconv"
	"strings"
)

// ExitError reports a non-zero ffmpeg exit with the last stderr lines.
type ExitError struct {
	Code int
	Tail []string
}

func (e *ExitError) Error() string {
	msg := "ffmpeg exited with status " + strconv.Itoa(e.Code)
	if s := Summary(e.Tail); s != "" {
		msg += ": " + s
	}
	return msg
}

// reDiagnostic matches stderr lines that describe the actual failure, as
// opposed to progress or banner noise.
var reDiagnostic = regexp.MustCompile(
	`(?i)error|invalid|corrupt|no such file|permission denied|not supported|` +
		`could not|unable to|failed|missing|truncat`)

// Summary picks the most informative line from a stderr tail: the last
// line that looks like a diagnostic, else the last line.
func Summary(tail []string) string {
	for i := len(tail) - 1; i >= 0; i-- {
		if reDiagnostic.MatchString(tail[i]) {
			return strings.TrimSpace(tail[i])
		}
	}
	if len(tail) == 0 {
		return ""
	}
	return strings.TrimSpace(tail[len(tail)-1])
}
