package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/backmassage/skipfix/internal/audit"
	"github.com/backmassage/skipfix/internal/config"
	"github.com/backmassage/skipfix/internal/display"
	"github.com/backmassage/skipfix/internal/ffmpeg"
	"github.com/backmassage/skipfix/internal/logging"
	"github.com/backmassage/skipfix/internal/naming"
	"github.com/backmassage/skipfix/internal/planner"
	"github.com/backmassage/skipfix/internal/probe"
	"github.com/backmassage/skipfix/internal/term"
)

// Recorder receives one audit record per action.
type Recorder interface {
	Record(audit.Record) error
}

// Prober inspects media files.
type Prober interface {
	Probe(ctx context.Context, path string) (*probe.ProbeResult, error)
}

// Engine executes planned actions one at a time. In preview mode it only
// allocates names and records what would happen.
type Engine struct {
	Mode         config.Mode
	MinDuration  float64
	Verbose      bool
	ShowProgress bool

	Log    *logging.Logger
	Audit  Recorder
	Prober Prober
	Alloc  *naming.Allocator

	// Progress is where the live progress bar is drawn.
	Progress io.Writer

	// Remove deletes files; os.Remove by default.
	Remove func(string) error
}

// NewEngine wires an Engine from cfg. alloc should be the allocator used
// during planning so preview and apply agree on names.
func NewEngine(cfg *config.Config, log *logging.Logger, rec Recorder, alloc *naming.Allocator) *Engine {
	return &Engine{
		Mode:         cfg.Mode,
		MinDuration:  cfg.MinDuration,
		Verbose:      cfg.Verbose,
		ShowProgress: showProgress(cfg.ShowProgress, os.Stderr),
		Log:          log,
		Audit:        rec,
		Prober:       probe.Prober{Binary: cfg.FFprobePath},
		Alloc:        alloc,
		Progress:     os.Stderr,
		Remove:       os.Remove,
	}
}

// showProgress reports whether a live bar should be drawn on w: only when
// wanted and w is a terminal.
func showProgress(want bool, w io.Writer) bool {
	f, ok := w.(*os.File)
	return want && ok && term.IsTerminal(f)
}

// Execute runs actions in order and returns aggregate counts. Failures are
// counted and do not stop the batch; a cancelled ctx stops it before the
// next action and marks the counts Stopped.
func (e *Engine) Execute(ctx context.Context, actions []*planner.Action) Counts {
	var c Counts
	total := len(actions)
	for i, a := range actions {
		if ctx.Err() != nil {
			e.Log.Warn("Interrupted, %d action(s) not started", total-i)
			c.Stopped = true
			break
		}
		e.executeOne(ctx, i+1, total, a, &c)
	}
	// Cancelled while the last action was running.
	if ctx.Err() != nil {
		c.Stopped = true
	}
	return c
}

// executeOne drives a single action through
// allocate → (preview | transcode → verify → commit).
func (e *Engine) executeOne(ctx context.Context, idx, total int, a *planner.Action, c *Counts) {
	dst := e.Alloc.Allocate(a.Source, a.Desired)
	rec := audit.Record{
		Kind:        a.Kind.String(),
		Source:      a.Source,
		Destination: dst,
		Note:        a.Note,
	}
	srcName, dstName := filepath.Base(a.Source), filepath.Base(dst)

	// --- Preview ---
	if e.Mode != config.ModeApply {
		e.Log.Preview("%s: '%s' -> '%s'", a.Kind, srcName, dstName)
		rec.Status = audit.StatusPreview
		e.record(rec)
		c.Previewed++
		return
	}

	// --- Running ---
	e.Log.Info("▶ Converting [%d/%d] %s", idx, total, srcName)
	for _, line := range a.Diagnostics {
		e.Log.Debug(e.Verbose, "  decode: %s", line)
	}
	var inSize int64
	if fi, err := os.Stat(a.Source); err == nil {
		inSize = fi.Size()
	}
	var duration time.Duration
	if pr, err := e.Prober.Probe(ctx, a.Source); err == nil {
		duration = ffmpeg.Seconds(pr.Duration())
	} else {
		e.Log.Debug(e.Verbose, "  source duration unknown: %v", err)
	}

	start := time.Now()
	last, err := e.transcode(ctx, ffmpeg.WithOutput(a.Args, dst), fmt.Sprintf("[%d/%d] %s", idx, total, srcName), duration)
	if err != nil {
		e.discard(dst)
		rec.Status = audit.StatusError
		e.record(rec)
		c.Failed++
		if ctx.Err() != nil {
			e.Log.Warn("Interrupted: %s%s (partial output removed)", srcName, reached(last, duration))
			return
		}
		e.Log.Error("✗ Failed: %s", srcName)
		if r := reached(last, duration); r != "" {
			e.Log.Debug(e.Verbose, "  stopped%s", r)
		}
		var ee *ffmpeg.ExitError
		if errors.As(err, &ee) {
			for _, line := range ee.Tail {
				e.Log.Error("  %s", line)
			}
		} else {
			e.Log.Error("  %v", err)
		}
		return
	}

	// --- Verifying ---
	if err := e.verify(ctx, dst); err != nil {
		e.Log.Error("✗ Output verification failed: %s (%v)", srcName, err)
		e.discard(dst)
		rec.Status = audit.StatusErrorVerify
		e.record(rec)
		c.Failed++
		return
	}

	// --- Committing ---
	var outSize int64
	if fi, err := os.Stat(dst); err == nil {
		outSize = fi.Size()
	}
	if err := e.Remove(a.Source); err != nil {
		e.Log.Warn("Failed to remove '%s': %v", a.Source, err)
	}
	e.Log.Success("✓ Done: %s  →  %s", srcName, dstName)
	e.Log.Debug(e.Verbose, "  %s in %ds", a.Kind, int(time.Since(start).Seconds()))
	rec.Status = audit.StatusOK
	e.record(rec)
	c.Succeeded++
	c.BytesIn += inSize
	c.BytesOut += outSize
}

// transcode runs ffmpeg, feeding status lines to the progress display. It
// returns the last parsed progress.
func (e *Engine) transcode(ctx context.Context, args []string, title string, duration time.Duration) (ffmpeg.Progress, error) {
	var last ffmpeg.Progress
	proc, err := ffmpeg.Start(ctx, args)
	if err != nil {
		return last, err
	}
	bar := display.NewProgress(e.Progress, title, duration, e.ShowProgress)
	for line := range proc.Lines() {
		if p, ok := ffmpeg.ParseProgress(line); ok {
			last = p
			bar.Update(p.Position, p.Speed)
		} else if ffmpeg.IsStatusLine(line) {
			bar.Raw(line)
		}
	}
	bar.Done()
	return last, proc.Wait()
}

// reached describes how far a stopped transcode got, or "" when unknown.
func reached(p ffmpeg.Progress, total time.Duration) string {
	if pct, ok := p.Percent(total); ok && p.Position > 0 {
		return fmt.Sprintf(" at %.0f%%", pct)
	}
	if p.Position > 0 {
		return " at " + display.FormatClock(p.Position)
	}
	return ""
}

// verify checks that dst exists, probes cleanly, and passes the integrity
// check.
func (e *Engine) verify(ctx context.Context, dst string) error {
	if _, err := os.Stat(dst); err != nil {
		return fmt.Errorf("output missing: %w", err)
	}
	pr, err := e.Prober.Probe(ctx, dst)
	if err != nil {
		return err
	}
	return probe.Verify(pr, e.MinDuration)
}

// discard removes a partial or rejected output and frees its name.
func (e *Engine) discard(dst string) {
	if _, err := os.Lstat(dst); err == nil {
		if err := e.Remove(dst); err != nil {
			e.Log.Warn("Failed to remove '%s': %v", dst, err)
		}
	}
	e.Alloc.Release(dst)
}

func (e *Engine) record(r audit.Record) {
	if err := e.Audit.Record(r); err != nil {
		e.Log.Error("Audit log: %v", err)
	}
}
