package display

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// rawWidth caps how much of an unparsed status line is shown.
const rawWidth = 100

// Progress shows live transcode progress on a terminal. With a known total
// it is a percentage bar; without one it is a spinner that echoes ffmpeg's
// status lines. A disabled Progress prints nothing.
type Progress struct {
	bar   *progressbar.ProgressBar
	title string
	total time.Duration
}

// NewProgress starts a progress display titled title. total <= 0 means the
// source duration is unknown.
func NewProgress(w io.Writer, title string, total time.Duration, enabled bool) *Progress {
	p := &Progress{title: title, total: total}
	if !enabled {
		return p
	}
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(title),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100 * time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(false),
	}
	max := int64(-1)
	if total > 0 {
		max = total.Milliseconds()
	} else {
		opts = append(opts, progressbar.OptionSpinnerType(14))
	}
	p.bar = progressbar.NewOptions64(max, opts...)
	return p
}

// Update moves the bar to pos. Without a known total it only refreshes
// the description.
func (p *Progress) Update(pos time.Duration, speed string) {
	if p.bar == nil {
		return
	}
	desc := fmt.Sprintf("%s  time=%s", p.title, FormatClock(pos))
	if speed != "" {
		desc += "  speed=" + speed
	}
	p.bar.Describe(desc)
	if p.total > 0 {
		_ = p.bar.Set64(pos.Milliseconds())
		return
	}
	_ = p.bar.Add64(1)
}

// Raw shows an unparsed ffmpeg status line, truncated.
func (p *Progress) Raw(line string) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(p.title + "  " + Truncate(line, rawWidth))
	_ = p.bar.Add64(0)
}

// Done clears the progress display.
func (p *Progress) Done() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	_ = p.bar.Clear()
}
