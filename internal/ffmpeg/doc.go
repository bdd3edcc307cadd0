// Package ffmpeg builds and executes ffmpeg commands for FLAC conversion and
// decode testing.
//
// A running transcode is exposed as a [Process] whose stderr is consumed as a
// pull-style sequence of lines ([Process.Lines]); ffmpeg terminates progress
// updates with carriage returns, so both '\r' and '\n' end a line. Progress
// tokens (time=, speed=) are parsed by [ParseProgress]. On unix the child runs
// in its own process group so cancelling the context tears down ffmpeg and
// anything it spawned.
package ffmpeg
