package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/skipfix/internal/audit"
	"github.com/backmassage/skipfix/internal/config"
	"github.com/backmassage/skipfix/internal/ffmpeg"
	"github.com/backmassage/skipfix/internal/logging"
	"github.com/backmassage/skipfix/internal/naming"
	"github.com/backmassage/skipfix/internal/planner"
	"github.com/backmassage/skipfix/internal/resolve"
	"github.com/backmassage/skipfix/internal/testsupport"
)

// --- Helpers ---

func newLogger(t *testing.T, cfg *config.Config) (*logging.Logger, *bytes.Buffer) {
	t.Helper()
	log, err := logging.NewLogger(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	var buf bytes.Buffer
	log.SetOutput(&buf, &buf)
	return log, &buf
}

func writeReport(t *testing.T, paths ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skipped.csv")
	testsupport.WriteFile(t, path, "Title,Path\n"+rows(paths)+"\n")
	return path
}

func rows(paths []string) string {
	lines := make([]string, len(paths))
	for i, p := range paths {
		lines[i] = "x," + p
	}
	return strings.Join(lines, "\n")
}

func readAudit(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Equal(t, audit.Header, recs[0])
	return recs[1:]
}

type stubResolver map[string]resolve.Resolution

func (s stubResolver) Resolve(c string) resolve.Resolution {
	if r, ok := s[c]; ok {
		r.Candidate = c
		return r
	}
	return resolve.Resolution{Candidate: c, Status: resolve.NotFound}
}

type stubPlanner struct {
	actions map[string]*planner.Action
	calls   []string
	err     error
}

func (s *stubPlanner) Plan(_ context.Context, path string) (*planner.Action, error) {
	s.calls = append(s.calls, path)
	return s.actions[path], s.err
}

type memRecorder struct{ recs []audit.Record }

func (m *memRecorder) Record(r audit.Record) error {
	m.recs = append(m.recs, r)
	return nil
}

// --- BuildPlan ---

func TestBuildPlan_Statuses(t *testing.T) {
	fix := &planner.Action{Kind: planner.KindConvert, Source: "/m/a.m4a"}
	res := stubResolver{
		"a.m4a":     {Path: "/m/a.m4a", Status: resolve.Resolved, Route: resolve.RoutePath},
		"x/a.m4a":   {Path: "/m/a.m4a", Status: resolve.Resolved, Route: resolve.RouteFilename},
		"ok.flac":   {Path: "/m/ok.flac", Status: resolve.Resolved, Route: resolve.RoutePath},
		"cover.jpg": {Path: "/m/cover.jpg", Status: resolve.Unsupported, Route: resolve.RoutePath},
	}
	pl := &stubPlanner{actions: map[string]*planner.Action{"/m/a.m4a": fix}}

	plan, err := BuildPlan(context.Background(),
		[]string{"a.m4a", "gone.flac", "x/a.m4a", "ok.flac", "cover.jpg"}, res, pl)
	require.NoError(t, err)

	var got []string
	for _, r := range plan.Rows {
		got = append(got, r.Status)
	}
	assert.Equal(t, []string{
		"PLAN: convert_m4a",
		"NOT FOUND",
		"SKIP (duplicate of an earlier entry)",
		"OK (no fix required)",
		"SKIP (unsupported ext: .jpg)",
	}, got)
	assert.Equal(t, []*planner.Action{fix}, plan.Actions)
	assert.Equal(t, 1, plan.Planned())
	assert.Equal(t, 1, plan.Count(resolve.NotFound))
	assert.Equal(t, 1, plan.Count(resolve.Unsupported))
	assert.Equal(t, []string{"/m/a.m4a", "/m/ok.flac"}, pl.calls, "duplicates and skips are not planned")
}

func TestBuildPlan_Errors(t *testing.T) {
	res := stubResolver{"a.flac": {Path: "/m/a.flac", Status: resolve.Resolved}}

	_, err := BuildPlan(context.Background(), []string{"a.flac"}, res, &stubPlanner{err: errors.New("boom")})
	assert.ErrorContains(t, err, "boom")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = BuildPlan(ctx, []string{"a.flac"}, res, &stubPlanner{})
	assert.ErrorIs(t, err, context.Canceled)
}

// --- Run ---

func TestRun_PreviewMakesNoChanges(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := filepath.Join(cfg.RootDir, "track.m4a")
	testsupport.WriteFile(t, src, "AAC")
	cfg.ReportPath = writeReport(t, "track.m4a", "Artist/missing.m4a")
	log, out := newLogger(t, cfg)

	stats, err := Run(context.Background(), cfg, log)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, 1, stats.Planned)
	assert.Equal(t, 1, stats.NotFound)
	assert.Equal(t, 1, stats.Previewed)
	assert.Zero(t, stats.Succeeded+stats.Failed)
	assert.NotEmpty(t, stats.RunID)

	assert.True(t, testsupport.Exists(t, src))
	assert.False(t, testsupport.Exists(t, filepath.Join(cfg.RootDir, "track.flac")))
	assert.False(t, testsupport.Exists(t, filepath.Join(cfg.RootDir, lockName)))

	recs := readAudit(t, filepath.Join(cfg.RootDir, "fix_log_preview.csv"))
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"convert_m4a", src, filepath.Join(cfg.RootDir, "track.flac"), "PREVIEW", "m4a→flac"}, recs[0])

	text := out.String()
	assert.Contains(t, text, "=== PREVIEW MODE ===")
	assert.Contains(t, text, "Files planned for fix: 1")
	assert.Contains(t, text, "* convert_m4a: 'track.m4a' -> 'track.flac' [m4a→flac]")
	assert.Contains(t, text, "convert_m4a: 'track.m4a' -> 'track.flac'")
	assert.Contains(t, text, "Log written to: ")
}

func TestRun_ApplyOutcomes(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithApply())
	root := cfg.RootDir
	for name, body := range map[string]string{
		"track.m4a":    "AAC",
		"track.flac":   "EXISTING",
		"broken.m4a":   "AAC",
		"stub.m4a":     "AAC",
		"corrupt.flac": "FLAC",
		"good.flac":    "FLAC",
	} {
		testsupport.WriteFile(t, filepath.Join(root, name), body)
	}
	cfg.ReportPath = writeReport(t, "track.m4a", "broken.m4a", "stub.m4a", "corrupt.flac", "good.flac")
	log, out := newLogger(t, cfg)

	stats, err := Run(context.Background(), cfg, log)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Planned)
	assert.Equal(t, 1, stats.Healthy)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 2, stats.Failed)

	recs := readAudit(t, filepath.Join(root, "fix_log_apply.csv"))
	require.Len(t, recs, 4, "one row per action")
	byName := make(map[string][]string)
	for _, r := range recs {
		byName[filepath.Base(r[1])] = r
		// The source survives exactly when the action did not succeed.
		assert.Equal(t, r[3] != "OK", testsupport.Exists(t, r[1]), "source %s status %s", r[1], r[3])
	}

	assert.Equal(t, "OK", byName["track.m4a"][3])
	assert.Equal(t, filepath.Join(root, "track (2).flac"), byName["track.m4a"][2])
	assert.Equal(t, "FLAC", testsupport.ReadFile(t, filepath.Join(root, "track (2).flac")))
	assert.Equal(t, "EXISTING", testsupport.ReadFile(t, filepath.Join(root, "track.flac")), "existing file untouched")

	assert.Equal(t, "ERROR", byName["broken.m4a"][3])
	assert.False(t, testsupport.Exists(t, filepath.Join(root, "broken.flac")), "partial output removed")

	assert.Equal(t, "ERROR: verify", byName["stub.m4a"][3])
	assert.False(t, testsupport.Exists(t, filepath.Join(root, "stub.flac")), "rejected output removed")

	assert.Equal(t, "OK", byName["corrupt.flac"][3])
	assert.Equal(t, "repair_flac", byName["corrupt.flac"][0])
	assert.Equal(t, filepath.Join(root, "corrupt (2).flac"), byName["corrupt.flac"][2])
	assert.True(t, testsupport.Exists(t, filepath.Join(root, "corrupt (2).flac")))

	assert.True(t, testsupport.Exists(t, filepath.Join(root, "good.flac")))
	assert.False(t, testsupport.Exists(t, filepath.Join(root, lockName)), "lock released")

	text := out.String()
	assert.Contains(t, text, "=== APPLY MODE ===")
	assert.Contains(t, text, "✓ Done: track.m4a  →  track (2).flac")
	assert.Contains(t, text, "✗ Failed: broken.m4a")
	assert.Contains(t, text, "✗ Output verification failed: stub.m4a")
	assert.Contains(t, text, "Done. Success: 2, Errors: 2")
}

func TestRun_NoActions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.ReportPath = writeReport(t, "nowhere/a.flac")
	log, out := newLogger(t, cfg)

	stats, err := Run(context.Background(), cfg, log)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NotFound)
	assert.Contains(t, out.String(), "(none)")
	assert.Empty(t, readAudit(t, cfg.AuditLogPath()))
}

func TestRun_ApplyRefusesWhenLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithApply())
	cfg.ReportPath = writeReport(t, "a.m4a")
	testsupport.WriteFile(t, filepath.Join(cfg.RootDir, "a.m4a"), "AAC")

	held := flock.New(filepath.Join(cfg.RootDir, lockName))
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Unlock()

	log, _ := newLogger(t, cfg)
	_, err = Run(context.Background(), cfg, log)
	assert.ErrorIs(t, err, ErrLocked)
	assert.True(t, testsupport.Exists(t, filepath.Join(cfg.RootDir, "a.m4a")))
}

func TestRun_UnreadableReport(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.ReportPath = filepath.Join(t.TempDir(), "missing.xlsx")
	log, _ := newLogger(t, cfg)

	_, err := Run(context.Background(), cfg, log)
	assert.Error(t, err)
}

// --- Engine ---

func convertAction(cfg *config.Config, src string) *planner.Action {
	dst := naming.WithExt(src, planner.TargetExt)
	return &planner.Action{
		Kind:        planner.KindConvert,
		Source:      src,
		Desired:     dst,
		Destination: dst,
		Args:        ffmpeg.Transcode(cfg.FFmpegPath, src, dst, cfg.CompressionLevel),
		Note:        planner.KindConvert.Note(),
	}
}

func TestEngine_CancelledBeforeStart(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithApply())
	src := filepath.Join(cfg.RootDir, "a.m4a")
	testsupport.WriteFile(t, src, "AAC")
	log, out := newLogger(t, cfg)
	rec := &memRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewEngine(cfg, log, rec, naming.NewAllocator()).Execute(ctx, []*planner.Action{convertAction(cfg, src)})

	assert.True(t, c.Stopped)
	assert.Zero(t, c.Processed())
	assert.Empty(t, rec.recs)
	assert.True(t, testsupport.Exists(t, src))
	assert.Contains(t, out.String(), "Interrupted, 1 action(s) not started")
}

func TestEngine_RemoveFailureIsOnlyAWarning(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithApply())
	src := filepath.Join(cfg.RootDir, "a.m4a")
	testsupport.WriteFile(t, src, "AAC")
	log, out := newLogger(t, cfg)
	rec := &memRecorder{}

	e := NewEngine(cfg, log, rec, naming.NewAllocator())
	e.Remove = func(string) error { return errors.New("read-only file system") }
	c := e.Execute(context.Background(), []*planner.Action{convertAction(cfg, src)})

	assert.Equal(t, 1, c.Succeeded)
	require.Len(t, rec.recs, 1)
	assert.Equal(t, audit.StatusOK, rec.recs[0].Status)
	assert.Contains(t, out.String(), "Failed to remove '"+src+"': read-only file system")
	assert.True(t, testsupport.Exists(t, filepath.Join(cfg.RootDir, "a.flac")))
}

func TestEngine_FailedActionReleasesName(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithApply())
	broken := filepath.Join(cfg.RootDir, "broken.m4a")
	testsupport.WriteFile(t, broken, "AAC")
	alloc := naming.NewAllocator()
	log, _ := newLogger(t, cfg)

	c := NewEngine(cfg, log, &memRecorder{}, alloc).Execute(context.Background(), []*planner.Action{convertAction(cfg, broken)})
	assert.Equal(t, 1, c.Failed)

	// A later claimant gets the base name again.
	want := filepath.Join(cfg.RootDir, "broken.flac")
	assert.Equal(t, want, alloc.Allocate("/other/broken.mp4", want))
}

func TestReached(t *testing.T) {
	tests := []struct {
		p     ffmpeg.Progress
		total time.Duration
		want  string
	}{
		{ffmpeg.Progress{Position: 30 * time.Second}, 2 * time.Minute, " at 25%"},
		{ffmpeg.Progress{Position: 90 * time.Second}, 0, " at 01:30"},
		{ffmpeg.Progress{}, time.Minute, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reached(tt.p, tt.total))
	}
}

func TestRun_InterruptedDuringTranscode(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithApply())
	src := filepath.Join(cfg.RootDir, "slow.m4a")
	testsupport.WriteFile(t, src, "AAC")
	cfg.ReportPath = writeReport(t, "slow.m4a")
	log, out := newLogger(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	timer := time.AfterFunc(700*time.Millisecond, cancel)
	defer timer.Stop()

	start := time.Now()
	stats, err := Run(ctx, cfg, log)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 20*time.Second, "ffmpeg group should be killed, not waited out")
	assert.True(t, stats.Stopped)
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, stats.Succeeded)

	assert.True(t, testsupport.Exists(t, src), "source kept")
	assert.False(t, testsupport.Exists(t, filepath.Join(cfg.RootDir, "slow.flac")), "partial output removed")
	assert.False(t, testsupport.Exists(t, filepath.Join(cfg.RootDir, lockName)), "lock released")

	recs := readAudit(t, filepath.Join(cfg.RootDir, "fix_log_apply.csv"))
	require.Len(t, recs, 1)
	assert.Equal(t, "ERROR", recs[0][3])
	assert.Contains(t, out.String(), "Interrupted: slow.m4a")
}

func TestEngine_CancelDuringLastActionStops(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithApply())
	src := filepath.Join(cfg.RootDir, "slow.m4a")
	testsupport.WriteFile(t, src, "AAC")
	log, _ := newLogger(t, cfg)
	rec := &memRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	timer := time.AfterFunc(700*time.Millisecond, cancel)
	defer timer.Stop()

	c := NewEngine(cfg, log, rec, naming.NewAllocator()).Execute(ctx, []*planner.Action{convertAction(cfg, src)})
	assert.True(t, c.Stopped)
	assert.Equal(t, 1, c.Failed)
	require.Len(t, rec.recs, 1)
	assert.Equal(t, audit.StatusError, rec.recs[0].Status)
}

func TestShowProgress_TerminalOnly(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "stderr.log"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, showProgress(true, f), "regular file is not a terminal")
	assert.False(t, showProgress(true, &bytes.Buffer{}), "non-file writer")
	assert.False(t, showProgress(false, f))

	cfg := testsupport.NewConfig(t)
	cfg.ShowProgress = true
	log, _ := newLogger(t, cfg)
	e := NewEngine(cfg, log, &memRecorder{}, naming.NewAllocator())
	assert.Equal(t, showProgress(true, os.Stderr), e.ShowProgress)
}
