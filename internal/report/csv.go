package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readDelimited reads a CSV/TSV file as a single grid. A comma of 0 sniffs
// the delimiter from the first line (tab if present, else comma). Input
// with a UTF-8 or UTF-16 byte order mark is decoded accordingly. Input
// without one is taken as UTF-8, or Windows-1252 when it is not valid UTF-8
// (the usual "CSV" export from Excel on Windows).
func readDelimited(path string, comma rune) ([]Grid, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err := decodeText(raw)
	if err != nil {
		return nil, err
	}
	if comma == 0 {
		comma = sniffDelimiter(data)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		for i := range row {
			row[i] = cleanCell(row[i])
		}
	}
	return []Grid{splitHeader(filepath.Base(path), rows)}, nil
}

// decodeText converts raw report text to UTF-8.
func decodeText(raw []byte) ([]byte, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	if !hasBOM(raw) && !utf8.Valid(raw) {
		dec = charmap.Windows1252.NewDecoder()
	}
	data, _, err := transform.Bytes(dec, raw)
	return data, err
}

func hasBOM(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(b, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(b, []byte{0xFE, 0xFF})
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.IndexByte(line, '\t') >= 0 {
		return '\t'
	}
	return ','
}
