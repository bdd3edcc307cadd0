package ffmpeg

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reTime  = regexp.MustCompile(`time=(\d+):(\d+):(\d+(?:\.\d+)?)`)
	reSpeed = regexp.MustCompile(`speed=\s*([0-9.]+x)`)
)

// Progress is one parsed ffmpeg status line.
type Progress struct {
	Position time.Duration
	Speed    string // e.g. "2.10x"; empty when not reported.
}

// Percent returns Position as a percentage of total, clamped to [0, 100].
// It returns false when total is unknown.
func (p Progress) Percent(total time.Duration) (float64, bool) {
	if total <= 0 {
		return 0, false
	}
	pct := float64(p.Position) / float64(total) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, true
}

// ParseProgress extracts time= and speed= from a status line. The boolean
// is false when the line carries no time= token.
func ParseProgress(line string) (Progress, bool) {
	m := reTime.FindStringSubmatch(line)
	if m == nil {
		return Progress{}, false
	}
	pos, ok := hmsToDuration(m[1], m[2], m[3])
	if !ok {
		return Progress{}, false
	}
	p := Progress{Position: pos}
	if s := reSpeed.FindStringSubmatch(line); s != nil {
		p.Speed = s[1]
	}
	return p, true
}

// IsStatusLine reports whether line is an ffmpeg status line (one that
// carries time= or size=), parsed or not.
func IsStatusLine(line string) bool {
	return strings.Contains(line, "time=") || strings.Contains(line, "size=")
}

// Seconds converts fractional seconds (as reported by ffprobe) to a duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func hmsToDuration(h, m, s string) (time.Duration, bool) {
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, false
	}
	mins, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	total := float64(hours)*3600 + float64(mins)*60 + secs
	return Seconds(total), true
}
