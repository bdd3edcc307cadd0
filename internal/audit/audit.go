// Package audit writes the per-run CSV log of every action taken or
// previewed. The file is truncated at the start of each run and flushed
// after every row, so an interrupted run still leaves a complete record of
// the actions that finished.
package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
)

// Status is the outcome column of an audit row.
type Status string

const (
	StatusPreview     Status = "PREVIEW"
	StatusOK          Status = "OK"
	StatusError       Status = "ERROR"
	StatusErrorVerify Status = "ERROR: verify"
)

// Header is the first row of every audit file.
var Header = []string{"kind", "source", "destination", "status", "note"}

// Record is one audit row.
type Record struct {
	Kind        string
	Source      string
	Destination string
	Status      Status
	Note        string
}

// Writer appends records to an audit file. Safe for concurrent use.
type Writer struct {
	mu   sync.Mutex
	path string
	f    *os.File
	w    *csv.Writer
	rows int
}

// Create truncates (or creates) path and writes the header row.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create audit log: %w", err)
	}
	aw := &Writer{path: path, f: f, w: csv.NewWriter(f)}
	if err := aw.write(Header); err != nil {
		f.Close()
		return nil, err
	}
	return aw, nil
}

// Path returns the audit file location.
func (a *Writer) Path() string { return a.path }

// Rows returns how many records have been written, excluding the header.
func (a *Writer) Rows() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rows
}

// Record writes r and flushes it to disk.
func (a *Writer) Record(r Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.write([]string{r.Kind, r.Source, r.Destination, string(r.Status), r.Note}); err != nil {
		return err
	}
	a.rows++
	return nil
}

func (a *Writer) write(row []string) error {
	if a.w == nil {
		return fmt.Errorf("audit log %s is closed", a.path)
	}
	if err := a.w.Write(row); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	a.w.Flush()
	if err := a.w.Error(); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// Close flushes and closes the file. Further Record calls fail.
func (a *Writer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.w == nil {
		return nil
	}
	a.w.Flush()
	err := a.w.Error()
	a.w = nil
	if cerr := a.f.Close(); err == nil {
		err = cerr
	}
	return err
}
