package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/backmassage/skipfix/internal/audit"
	"github.com/backmassage/skipfix/internal/config"
	"github.com/backmassage/skipfix/internal/display"
	"github.com/backmassage/skipfix/internal/logging"
	"github.com/backmassage/skipfix/internal/naming"
	"github.com/backmassage/skipfix/internal/planner"
	"github.com/backmassage/skipfix/internal/report"
	"github.com/backmassage/skipfix/internal/resolve"
)

// ErrLocked is returned when another apply run holds the root's lock.
var ErrLocked = errors.New("another skipfix run is applying changes under this root")

// lockName is created in the root while an apply run is in progress.
const lockName = ".skipfix.lock"

// maxPlanRows caps the planning table; the counts above it stay exact.
const maxPlanRows = 2000

// Run is the top-level entry point. It reads the report, builds the plan,
// prints it, executes every action in order, and writes the audit log.
// cfg.RootDir should already be validated. Per-action failures are counted
// in the returned stats, not returned as an error.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (RunStats, error) {
	stats := RunStats{RunID: uuid.NewString(), AuditLog: cfg.AuditLogPath()}
	log.SetRunID(stats.RunID)
	out := log.Out()

	logBatchHeader(cfg, log, &stats)

	// --- Read report ---
	grids, err := report.Read(cfg.ReportPath)
	if err != nil {
		return stats, err
	}
	candidates := report.NewExtractor().Candidates(grids)
	stats.Rows = len(candidates)
	log.Debug(cfg.Verbose, "Read %d sheet(s)/table(s), %d candidate path(s)", len(grids), len(candidates))

	resolver, err := resolve.New(cfg.RootDir)
	if err != nil {
		return stats, fmt.Errorf("%w: %v", config.ErrRootInvalid, err)
	}

	// --- Lock (apply only) ---
	if cfg.Apply() {
		unlock, err := acquireLock(cfg.RootDir)
		if err != nil {
			return stats, err
		}
		defer unlock()
	}

	// --- Plan ---
	alloc := naming.NewAllocator()
	plan, err := BuildPlan(ctx, candidates, resolver, planner.New(cfg, alloc))
	if err != nil {
		return stats, err
	}
	stats.Planned = plan.Planned()
	stats.NotFound = plan.Count(resolve.NotFound)
	stats.Unsupported = plan.Count(resolve.Unsupported)
	for _, r := range plan.Rows {
		if r.Status == statusHealthy {
			stats.Healthy++
		}
	}
	printPlan(out, log, plan, &stats)

	// --- Execute ---
	aw, err := audit.Create(stats.AuditLog)
	if err != nil {
		return stats, err
	}
	engine := NewEngine(cfg, log, aw, alloc)
	stats.Counts = engine.Execute(ctx, plan.Actions)
	log.Debug(cfg.Verbose, "Audit log %s: %d row(s) for %d action(s)", aw.Path(), aw.Rows(), stats.Processed())
	if err := aw.Close(); err != nil {
		log.Error("Audit log: %v", err)
	}

	logSummary(cfg, log, &stats)
	if stats.Stopped {
		return stats, ctx.Err()
	}
	return stats, nil
}

// acquireLock takes an exclusive, non-blocking lock in root. The returned
// func releases it and removes the lock file.
func acquireLock(root string) (func(), error) {
	path := filepath.Join(root, lockName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		_ = lock.Unlock()
		_ = os.Remove(path)
	}, nil
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	mode := "PREVIEW"
	if cfg.Apply() {
		mode = "APPLY"
	}
	log.Info("=== %s MODE ===", mode)
	log.Info("Report: %s", cfg.ReportPath)
	log.Info("Root:   %s", cfg.RootDir)
	log.Debug(cfg.Verbose, "Run ID: %s", stats.RunID)
	log.Debug(cfg.Verbose, "Encoder: flac, compression level %d; verify: audio stream, duration > %gs",
		cfg.CompressionLevel, cfg.MinDuration)
}

func printPlan(out io.Writer, log *logging.Logger, plan *Plan, stats *RunStats) {
	log.Info("Rows parsed: %d", stats.Rows)
	log.Info("Files planned for fix: %d", stats.Planned)
	log.Info("Not found: %d", stats.NotFound)
	if stats.Unsupported > 0 {
		log.Info("Unsupported: %d", stats.Unsupported)
	}

	if len(plan.Rows) > 0 {
		rows := make([][]string, 0, min(len(plan.Rows), maxPlanRows))
		for i, r := range plan.Rows {
			if i == maxPlanRows {
				break
			}
			resolved := r.Resolution.Path
			if resolved == "" {
				resolved = "<missing>"
			}
			rows = append(rows, []string{strconv.Itoa(i + 1), r.Resolution.Candidate, resolved, r.Status})
		}
		fmt.Fprintln(out, display.RenderTable(
			[]string{"#", "Candidate", "Resolved", "Status"},
			rows,
			[]display.Align{display.AlignRight},
		))
		if extra := len(plan.Rows) - maxPlanRows; extra > 0 {
			fmt.Fprintf(out, "... and %d more\n", extra)
		}
	}

	fmt.Fprintln(out, "\nPlanned actions:")
	if len(plan.Actions) == 0 {
		fmt.Fprintln(out, "(none)")
		return
	}
	for _, a := range plan.Actions {
		fmt.Fprintf(out, "* %s: '%s' -> '%s' [%s]\n",
			a.Kind, filepath.Base(a.Source), filepath.Base(a.Destination), a.Note)
	}
	fmt.Fprintln(out)
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	if cfg.Apply() {
		log.Info("Done. Success: %d, Errors: %d", stats.Succeeded, stats.Failed)
		if stats.Succeeded > 0 {
			saved := stats.SpaceSaved()
			log.Info("  Sources %s -> outputs %s (%s)",
				display.FormatBytes(stats.BytesIn),
				display.FormatBytes(stats.BytesOut),
				display.FormatBytesWithSign(-saved))
		}
	} else {
		log.Info("Done. Previewed: %d (no changes made; rerun with --apply)", stats.Previewed)
	}
	log.Info("Log written to: %s", stats.AuditLog)
}
