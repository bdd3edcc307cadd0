// Package resolve maps candidate strings from a report onto files under the
// library root.
//
// Two routes are tried in order. The primary route treats the candidate as
// a path (joined to the root when relative) and accepts it only if it is a
// regular file that, after resolving symlinks, lies inside the root. The
// fallback takes the candidate's file name alone and looks for it directly
// in the root; it never searches subdirectories. Because the fallback
// ignores directories, two report entries such as "A/track.flac" and
// "B/track.flac" can both resolve to "root/track.flac".
package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/skipfix/internal/planner"
)

// Status is the outcome of resolving one candidate.
type Status int

const (
	Resolved    Status = iota // Path names a supported file under the root.
	NotFound                  // Neither route found a regular file.
	Unsupported               // A file was found but its extension is not handled.
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case NotFound:
		return "not found"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Route records which lookup produced a resolution.
type Route int

const (
	RouteNone     Route = iota
	RoutePath           // Candidate used as a path.
	RouteFilename       // Candidate's file name found directly in the root.
)

// Resolution is the result for one candidate.
type Resolution struct {
	Candidate string
	Path      string // Empty when Status is NotFound.
	Status    Status
	Route     Route
}

// Label is the planning-report status for non-resolved outcomes.
func (r Resolution) Label() string {
	switch r.Status {
	case NotFound:
		return "NOT FOUND"
	case Unsupported:
		return "SKIP (unsupported ext: " + filepath.Ext(r.Path) + ")"
	default:
		return ""
	}
}

// Resolver resolves candidates against one root.
type Resolver struct {
	root     string // as given, used to build result paths
	realRoot string // symlink-resolved, used for containment
}

// New returns a Resolver for root. root must be an existing directory.
func New(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	return &Resolver{root: abs, realRoot: real}, nil
}

// Resolve maps candidate to a file under the root.
func (r *Resolver) Resolve(candidate string) Resolution {
	res := Resolution{Candidate: candidate, Status: NotFound}
	text := strings.TrimSpace(candidate)
	if text == "" {
		return res
	}

	if p, ok := r.byPath(text); ok {
		res.Path, res.Route = p, RoutePath
	} else if p, ok := r.byFilename(text); ok {
		res.Path, res.Route = p, RouteFilename
	} else {
		return res
	}

	if planner.SupportedExt(res.Path) {
		res.Status = Resolved
	} else {
		res.Status = Unsupported
	}
	return res
}

func (r *Resolver) byPath(text string) (string, bool) {
	p := text
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.root, p)
	}
	p = filepath.Clean(p)
	if !isRegular(p) {
		return "", false
	}
	real, err := filepath.EvalSymlinks(p)
	if err != nil || !within(r.realRoot, real) {
		return "", false
	}
	return p, true
}

func (r *Resolver) byFilename(text string) (string, bool) {
	base := Basename(text)
	if base == "" || base == "." || base == ".." {
		return "", false
	}
	p := filepath.Join(r.root, base)
	if !isRegular(p) {
		return "", false
	}
	return p, true
}

// Basename returns the final element of a path written with either '/' or
// '\' separators, since reports are often produced on Windows hosts.
func Basename(s string) string {
	s = strings.TrimRight(s, `/\`)
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		return s[i+1:]
	}
	return s
}

// isRegular follows symlinks: a link to a regular file counts.
func isRegular(p string) bool {
	info, err := os.Stat(p)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
