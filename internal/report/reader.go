// Package report reads problem-file reports into tabular grids and
// extracts candidate file paths from them.
//
// Supported inputs are Excel workbooks (every sheet), CSV/TSV text (UTF-8 or
// UTF-16 with a byte order mark), and HTML documents (every table). Each
// sheet or table becomes one [Grid] whose first row is the header row.
package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

var (
	// ErrUnreadable wraps any failure to open or parse a report.
	ErrUnreadable = errors.New("report unreadable")
	// ErrUnsupportedFormat is returned for extensions no reader handles.
	ErrUnsupportedFormat = errors.New("unsupported report format")
)

// Grid is one sheet or table: a header row and data rows of text cells.
// Rows may be ragged.
type Grid struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Read parses the report at path, choosing a reader by extension. Errors
// wrap [ErrUnreadable] or [ErrUnsupportedFormat].
func Read(path string) ([]Grid, error) {
	var (
		grids []Grid
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		grids, err = readXLSX(path)
	case ".csv":
		grids, err = readDelimited(path, ',')
	case ".tsv", ".tab":
		grids, err = readDelimited(path, '\t')
	case ".txt":
		grids, err = readDelimited(path, 0)
	case ".html", ".htm":
		grids, err = readHTML(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	return grids, nil
}

// splitHeader turns raw rows into a Grid, treating the first row as headers.
func splitHeader(name string, rows [][]string) Grid {
	g := Grid{Name: name}
	if len(rows) == 0 {
		return g
	}
	g.Headers = rows[0]
	g.Rows = rows[1:]
	return g
}

// cleanCell normalizes whitespace around a cell value. Interior text is
// left untouched so file names still match exactly.
func cleanCell(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})
}
