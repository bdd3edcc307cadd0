package probe

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename       string
	NbStreams      int
	FormatName     string
	FormatLongName string
	Duration       float64
	Size           int64
	BitRate        int64
	Tags           map[string]string
}

// AudioStream holds the parsed properties of a single audio stream.
type AudioStream struct {
	Index         int
	Codec         string
	Channels      int
	ChannelLayout string
	SampleRate    int
	BitRate       int64
	Duration      float64
	Language      string
	IsDefault     bool
}

// ProbeResult is the parsed output of a single ffprobe JSON call. Non-audio
// streams (cover art, data) are counted but not described.
type ProbeResult struct {
	Format       FormatInfo
	AudioStreams []AudioStream
	OtherStreams int
}

// HasAudio reports whether at least one audio stream was found.
func (p *ProbeResult) HasAudio() bool { return len(p.AudioStreams) > 0 }

// Duration returns the container duration in seconds, falling back to the
// longest audio stream when the container does not report one.
func (p *ProbeResult) Duration() float64 {
	if p.Format.Duration > 0 {
		return p.Format.Duration
	}
	var best float64
	for _, a := range p.AudioStreams {
		if a.Duration > best {
			best = a.Duration
		}
	}
	return best
}
