package ffmpeg

import (
	"context"
	"errors"
)

// Decoder runs full decode tests. The zero value uses "ffmpeg" from PATH.
type Decoder struct {
	Binary string
}

// DecodeTest decodes path to a null sink. ok is false when ffmpeg reports a
// decode error; tail then holds its last diagnostic lines. err is non-nil
// only when the test itself could not run (missing binary, cancellation).
func (d Decoder) DecodeTest(ctx context.Context, path string) (ok bool, tail []string, err error) {
	bin := d.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	tail, err = Run(ctx, DecodeTest(bin, path))
	if err == nil {
		return true, tail, nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return false, ee.Tail, nil
	}
	return false, tail, err
}
