package planner

import (
	"context"
	"fmt"

	"github.com/backmassage/skipfix/internal/config"
	"github.com/backmassage/skipfix/internal/ffmpeg"
	"github.com/backmassage/skipfix/internal/naming"
)

// DecodeTester runs a full decode of a file. ok is false when decoding
// fails; err is reserved for the test itself being unable to run.
type DecodeTester interface {
	DecodeTest(ctx context.Context, path string) (ok bool, tail []string, err error)
}

// Allocator hands out non-colliding destination paths.
type Allocator interface {
	Allocate(owner, desired string) string
}

// Planner turns resolved paths into actions.
type Planner struct {
	FFmpeg           string
	CompressionLevel int
	Decoder          DecodeTester
	Alloc            Allocator
}

// New returns a Planner using the configured ffmpeg for decode tests and
// transcodes. alloc may be shared with the execution engine.
func New(cfg *config.Config, alloc Allocator) *Planner {
	return &Planner{
		FFmpeg:           cfg.FFmpegPath,
		CompressionLevel: cfg.CompressionLevel,
		Decoder:          ffmpeg.Decoder{Binary: cfg.FFmpegPath},
		Alloc:            alloc,
	}
}

// Plan returns the action for path, or nil when the file needs none.
//
// Flow:
//  1. Classify by extension family
//  2. Lossy: always convert
//  3. Lossless: decode test, repair only on failure
//  4. Allocate the sibling .flac and build the transcode argv
func (p *Planner) Plan(ctx context.Context, path string) (*Action, error) {
	var a Action
	switch FamilyOf(path) {
	case FamilyLossy:
		a.Kind = KindConvert
	case FamilyLossless:
		ok, tail, err := p.Decoder.DecodeTest(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("decode test %s: %w", path, err)
		}
		if ok {
			return nil, nil
		}
		a.Kind = KindRepair
		a.Diagnostics = tail
	default:
		return nil, nil
	}

	a.Source = path
	a.Note = a.Kind.Note()
	a.Desired = naming.WithExt(path, TargetExt)
	a.Destination = p.allocate(path, a.Desired)
	a.Args = ffmpeg.Transcode(p.FFmpeg, a.Source, a.Destination, p.CompressionLevel)
	return &a, nil
}

func (p *Planner) allocate(owner, desired string) string {
	if p.Alloc == nil {
		return naming.Allocate(desired)
	}
	return p.Alloc.Allocate(owner, desired)
}
