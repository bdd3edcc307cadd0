// Package main hosts the skipfix CLI entrypoint.
//
// The root command reads a report of problem audio files, reconciles it
// against a library root, and converts or repairs each listed file. It
// previews by default; --apply makes changes. The check subcommand runs the
// ffmpeg/ffprobe diagnostics and version prints build information.
//
// Exit codes: 0 normal (per-file failures included), 1 unusable flags,
// config, report or root, 2 missing ffmpeg/ffprobe, 130 interrupted.
package main
