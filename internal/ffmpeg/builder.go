package ffmpeg

import "strconv"

// Transcode returns the complete argv (binary first) that re-encodes the
// first audio stream of src as FLAC at dst. Container metadata is carried
// over and dst is overwritten; callers allocate a free dst beforehand.
func Transcode(bin, src, dst string, compressionLevel int) []string {
	return []string{
		bin, "-hide_banner", "-nostdin", "-y",
		"-i", src,
		"-map_metadata", "0",
		"-c:a", "flac", "-compression_level", strconv.Itoa(compressionLevel),
		"-map", "0:a:0",
		dst,
	}
}

// DecodeTest returns the argv for a full decode of path with output
// discarded. -xerror makes the first decode error fatal.
func DecodeTest(bin, path string) []string {
	return []string{
		bin, "-v", "error", "-xerror", "-nostdin",
		"-i", path,
		"-f", "null", "-",
	}
}

// WithOutput returns a copy of args with the trailing output path replaced.
// Used when the destination is re-allocated between planning and execution.
func WithOutput(args []string, dst string) []string {
	out := make([]string, len(args))
	copy(out, args)
	if len(out) > 0 {
		out[len(out)-1] = dst
	}
	return out
}
