// Package planner decides the per-file remediation for a resolved path and
// builds the [Action] the execution engine consumes.
//
// Lossy files (.m4a, .mp4) always convert to FLAC. Lossless files (.flac)
// are decoded in full and re-encoded only when the decode fails. Anything
// else gets no action. Both kinds share one transcode command; the
// destination is a sibling .flac, allocated so that no existing file is
// overwritten.
package planner
