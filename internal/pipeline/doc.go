// Package pipeline orchestrates a run: read the report, resolve and plan
// every candidate, print the plan, then execute actions strictly in order
// and summarize.
//
// Files:
//   - runner.go: Run, the top-level entry point (report → plan → execute → summary)
//   - plan.go: BuildPlan, one planning row per candidate
//   - engine.go: Engine, the per-action state machine
//     (preview, or transcode → verify → commit)
//   - stats.go: RunStats and Counts
package pipeline
