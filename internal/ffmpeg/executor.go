package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os/exec"
	"strings"
)

// TailLines is how many trailing stderr lines are kept for diagnostics.
const TailLines = 6

const maxLineBytes = 1 << 20

// Process is a running ffmpeg command whose stderr is read line by line.
// Lines and Wait must be called from the same goroutine.
type Process struct {
	ctx     context.Context
	cmd     *exec.Cmd
	stderr  io.ReadCloser
	scanner *bufio.Scanner
	tail    []string
}

// Start launches args (binary first). Stdout is discarded; stderr is
// exposed through [Process.Lines].
func Start(ctx context.Context, args []string) (*Process, error) {
	if len(args) == 0 {
		return nil, errors.New("ffmpeg: empty command")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	configureProcess(cmd)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg: start: %w", err)
	}

	sc := bufio.NewScanner(stderr)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	sc.Split(scanStatusLines)
	return &Process{ctx: ctx, cmd: cmd, stderr: stderr, scanner: sc}, nil
}

// Lines yields each non-blank stderr line as it arrives. Both '\r' and '\n'
// terminate a line. Breaking out early is allowed; Wait drains the rest.
func (p *Process) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for p.scanner.Scan() {
			line := strings.TrimRight(p.scanner.Text(), " \t")
			if strings.TrimSpace(line) == "" {
				continue
			}
			p.remember(line)
			if !yield(line) {
				return
			}
		}
	}
}

// Tail returns the last [TailLines] stderr lines seen so far.
func (p *Process) Tail() []string {
	out := make([]string, len(p.tail))
	copy(out, p.tail)
	return out
}

// Wait drains any unread stderr and waits for exit. A non-zero exit is
// returned as *ExitError; a cancelled context is returned as its error.
func (p *Process) Wait() error {
	for range p.Lines() {
	}
	if p.scanner.Err() != nil {
		_, _ = io.Copy(io.Discard, p.stderr)
	}

	err := p.cmd.Wait()
	if ctxErr := p.ctx.Err(); ctxErr != nil {
		return fmt.Errorf("ffmpeg: %w", ctxErr)
	}
	if err == nil {
		return nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &ExitError{Code: ee.ExitCode(), Tail: p.Tail()}
	}
	return fmt.Errorf("ffmpeg: %w", err)
}

// Run starts args and waits for it, discarding progress. The returned tail
// holds the last stderr lines whether or not the command failed.
func Run(ctx context.Context, args []string) ([]string, error) {
	p, err := Start(ctx, args)
	if err != nil {
		return nil, err
	}
	err = p.Wait()
	return p.Tail(), err
}

func (p *Process) remember(line string) {
	if len(p.tail) == TailLines {
		copy(p.tail, p.tail[1:])
		p.tail = p.tail[:TailLines-1]
	}
	p.tail = append(p.tail, line)
}

// scanStatusLines is a bufio.SplitFunc that ends tokens at '\r' or '\n'.
// "\r\n" produces an empty token, which Lines skips.
func scanStatusLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
