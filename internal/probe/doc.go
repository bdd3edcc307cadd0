// Package probe provides ffprobe-based media inspection, typed result
// structures, and the integrity check applied to freshly written outputs.
//
// A single JSON call per file (-show_streams -show_format) yields both the
// source duration used for progress reporting and the stream/duration facts
// [Verify] needs.
package probe
