package naming

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Variant returns the Nth collision variant of path: "dir/stem (N).ext".
func Variant(path string, n int) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+" ("+strconv.Itoa(n)+")"+ext)
}

// WithExt returns path with its extension replaced by ext.
func WithExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// Allocate returns desired if nothing exists there, else the first free
// variant. Existence is checked without following symlinks, so a dangling
// link still counts as taken.
func Allocate(desired string) string {
	if !exists(desired) {
		return desired
	}
	for n := 2; ; n++ {
		if c := Variant(desired, n); !exists(c) {
			return c
		}
	}
}

// Allocator tracks output paths claimed during a run in addition to the
// filesystem. All methods are goroutine-safe.
type Allocator struct {
	mu     sync.Mutex
	owners map[string]string // claimed output path → source that owns it
}

// NewAllocator creates a ready-to-use allocator.
func NewAllocator() *Allocator {
	return &Allocator{owners: make(map[string]string)}
}

// Allocate returns the first path among desired and its variants that is
// absent on disk and not claimed by a different owner, and claims it for
// owner. Asking again for the same owner returns the same path while it is
// still free on disk.
func (a *Allocator) Allocate(owner, desired string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	candidate := desired
	for n := 2; ; n++ {
		if o, claimed := a.owners[candidate]; (!claimed || o == owner) && !exists(candidate) {
			a.releaseOwnerLocked(owner, candidate)
			a.owners[candidate] = owner
			return candidate
		}
		candidate = Variant(desired, n)
	}
}

// Release drops the claim on path, typically after the action that claimed
// it failed and its partial output was removed.
func (a *Allocator) Release(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.owners, path)
}

// releaseOwnerLocked drops stale claims by owner so each source holds at
// most one destination.
func (a *Allocator) releaseOwnerLocked(owner, keep string) {
	for p, o := range a.owners {
		if o == owner && p != keep {
			delete(a.owners, p)
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
