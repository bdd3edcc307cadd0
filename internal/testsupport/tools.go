// Package testsupport provides fixtures shared by package tests: temp
// library roots, seeded configs, and scripted stand-ins for ffmpeg and
// ffprobe.
package testsupport

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/backmassage/skipfix/internal/config"
)

// The fake ffmpeg keys its behavior off the input file name:
//   - decode test (output "-"): fails when the input name contains "corrupt"
//   - "broken": writes a partial output and exits 1
//   - "slow": writes a partial output and sleeps (for cancellation tests)
//   - "stub": writes an output that probes with a near-zero duration
//   - anything else: emits progress lines and writes a valid output
const fakeFFmpeg = `#!/bin/sh
in=""
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-i" ]; then in="$a"; fi
  if [ "$a" = "-encoders" ]; then
    printf ' A..... flac                 FLAC (Free Lossless Audio Codec)\n'
    exit 0
  fi
  prev="$a"
  out="$a"
done
if [ "$1" = "-version" ]; then
  echo "ffmpeg version 6.1-fake Copyright (c) the FFmpeg developers"
  exit 0
fi
case "$in" in
  sine=*) exit 0 ;;
esac
if [ "$out" = "-" ]; then
  case "$in" in
    *corrupt*)
      echo "[flac @ 0x5581] invalid sync code" >&2
      echo "[flac @ 0x5581] decode_frame() failed" >&2
      echo "$in: Invalid data found when processing input" >&2
      exit 1 ;;
  esac
  exit 0
fi
case "$in" in
  *broken*)
    printf 'PARTIAL' > "$out"
    echo "Error while decoding stream #0:0: Invalid data found when processing input" >&2
    exit 1 ;;
  *slow*)
    printf 'PARTIAL' > "$out"
    sleep 30
    exit 0 ;;
esac
printf 'size=       1kB time=00:00:01.50 bitrate=   5.4kbits/s speed=2.00x\r' >&2
printf 'size=       2kB time=00:00:03.00 bitrate=   5.4kbits/s speed=2.10x\n' >&2
case "$in" in
  *stub*) printf 'STUB' > "$out" ;;
  *) printf 'FLAC' > "$out" ;;
esac
exit 0
`

// The fake ffprobe reports a 3 second audio stream for any existing file.
// Files containing exactly "STUB" report 0.1 seconds and files containing
// "NOAUDIO" report a video stream only.
const fakeFFprobe = `#!/bin/sh
if [ "$1" = "-version" ]; then
  echo "ffprobe version 6.1-fake Copyright (c) the FFmpeg developers"
  exit 0
fi
f=""
for a in "$@"; do f="$a"; done
if [ ! -f "$f" ]; then
  echo "$f: No such file or directory" >&2
  exit 1
fi
content=$(cat "$f")
dur="3.000000"
if [ "$content" = "STUB" ]; then dur="0.100000"; fi
if [ "$content" = "NOAUDIO" ]; then
  printf '{"streams":[{"index":0,"codec_type":"video","codec_name":"mjpeg"}],"format":{"format_name":"mov,mp4,m4a","duration":"%s"}}\n' "$dur"
  exit 0
fi
printf '{"streams":[{"index":0,"codec_type":"audio","codec_name":"flac","sample_rate":"44100","channels":2,"duration":"%s"}],"format":{"format_name":"flac","duration":"%s","size":"4"}}\n' "$dur" "$dur"
`

// RequireShell skips the test on platforms that cannot run the POSIX shell
// fakes.
func RequireShell(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are POSIX shell scripts")
	}
}

// WriteFakeTools writes the scripted ffmpeg and ffprobe into a temp bin
// directory and returns their absolute paths.
func WriteFakeTools(t testing.TB) (ffmpeg, ffprobe string) {
	t.Helper()
	RequireShell(t)
	binDir := filepath.Join(t.TempDir(), "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	ffmpeg = filepath.Join(binDir, "ffmpeg")
	ffprobe = filepath.Join(binDir, "ffprobe")
	if err := os.WriteFile(ffmpeg, []byte(fakeFFmpeg), 0o755); err != nil {
		t.Fatalf("write fake ffmpeg: %v", err)
	}
	if err := os.WriteFile(ffprobe, []byte(fakeFFprobe), 0o755); err != nil {
		t.Fatalf("write fake ffprobe: %v", err)
	}
	return ffmpeg, ffprobe
}

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// WithApply switches the config to apply mode.
func WithApply() ConfigOption {
	return func(c *config.Config) { c.Mode = config.ModeApply }
}

// NewConfig produces a config whose root is a fresh temp directory and whose
// tools are the scripted fakes. Colors and progress are off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()
	ffmpeg, ffprobe := WriteFakeTools(t)
	root := filepath.Join(t.TempDir(), "library")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir root: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.FFmpegPath = ffmpeg
	cfg.FFprobePath = ffprobe
	cfg.RootDir = root
	cfg.ColorMode = config.ColorNever
	cfg.ShowProgress = false
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}
