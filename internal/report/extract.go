package report

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// DefaultKeywords mark a header as a path column when it contains any of
// them, case-insensitively.
var DefaultKeywords = []string{
	"path", "file", "location", "filename", "track file",
	"file path", "source", "fullpath", "url",
}

// pathSuffixes are the extensions a cell must end with to count as a
// candidate.
var pathSuffixes = []string{".flac", ".m4a", ".mp4"}

// ColumnScorer decides whether a header names a column of file paths.
type ColumnScorer interface {
	IsPathColumn(header string) bool
}

// HeaderKeywordScorer matches headers against keywords using Unicode case
// folding.
type HeaderKeywordScorer struct {
	keywords []string // folded
}

// NewHeaderKeywordScorer returns a scorer for keywords, or for
// [DefaultKeywords] when none are given.
func NewHeaderKeywordScorer(keywords ...string) HeaderKeywordScorer {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	s := HeaderKeywordScorer{keywords: make([]string, 0, len(keywords))}
	for _, k := range keywords {
		s.keywords = append(s.keywords, fold(k))
	}
	return s
}

// IsPathColumn reports whether header contains any keyword.
func (s HeaderKeywordScorer) IsPathColumn(header string) bool {
	h := fold(strings.TrimSpace(header))
	if h == "" {
		return false
	}
	for _, k := range s.keywords {
		if strings.Contains(h, k) {
			return true
		}
	}
	return false
}

// fold uses a fresh Caser per call; Casers are not safe for concurrent use.
func fold(s string) string {
	return cases.Fold().String(s)
}

// LooksLikePath reports whether a cell is a plausible audio file reference:
// at least five characters, ending in a supported extension.
func LooksLikePath(s string) bool {
	if utf8.RuneCountInString(s) < 5 {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, ext := range pathSuffixes {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Extractor pulls candidate paths out of grids.
type Extractor struct {
	Scorer   ColumnScorer
	Classify func(cell string) bool
}

// NewExtractor returns an Extractor with the default keyword scorer and
// [LooksLikePath].
func NewExtractor() *Extractor {
	return &Extractor{Scorer: NewHeaderKeywordScorer(), Classify: LooksLikePath}
}

// Candidates returns path-like cells from all grids, deduplicated by exact
// text in first-seen order. Within each grid the path columns are read
// first; only when they yield nothing is every data cell scanned.
func (e *Extractor) Candidates(grids []Grid) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(cells []string) {
		for _, c := range cells {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	for _, g := range grids {
		found := e.fromPathColumns(g)
		if len(found) == 0 {
			found = e.fromAllCells(g)
		}
		add(found)
	}
	return out
}

func (e *Extractor) fromPathColumns(g Grid) []string {
	var cols []int
	for i, h := range g.Headers {
		if e.Scorer.IsPathColumn(h) {
			cols = append(cols, i)
		}
	}
	var found []string
	// Column-major, matching how a reader scans one column at a time.
	for _, c := range cols {
		for _, row := range g.Rows {
			if c < len(row) && e.Classify(row[c]) {
				found = append(found, strings.TrimSpace(row[c]))
			}
		}
	}
	return found
}

func (e *Extractor) fromAllCells(g Grid) []string {
	var found []string
	for _, row := range g.Rows {
		for _, cell := range row {
			if e.Classify(cell) {
				found = append(found, strings.TrimSpace(cell))
			}
		}
	}
	return found
}
