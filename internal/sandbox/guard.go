// Package sandbox restricts which directories the engine may write to or
// reveal in the system file manager.
package sandbox

import (
	"errors"
	"strings"
	"sync"

	"github.com/whiterabbit74/kinopub-wnldr/internal/utils"
)

// ErrAccessDenied is returned when a path falls outside every authorized
// directory. It is never bypassed.
var ErrAccessDenied = errors.New("directory is not accessible to the application")

// Guard is an append-only registry of directories the engine is authorized
// to write into. It is seeded with the platform downloads directory and
// grows only through trusted interactions: an explicit folder pick or the
// destination of a completed authorized download. Safe for concurrent use.
type Guard struct {
	mu      sync.RWMutex
	allowed map[string]struct{}
	sep     string
}

// NewGuard returns a guard seeded with the platform downloads directory.
func NewGuard() *Guard {
	return NewGuardWithRoot(utils.DefaultDownloadsDir())
}

// NewGuardWithRoot returns a guard seeded with the given root directory.
func NewGuardWithRoot(root string) *Guard {
	g := &Guard{
		allowed: make(map[string]struct{}),
		sep:     string(separator),
	}
	g.Remember(root)
	return g
}

// Remember authorizes a directory. Paths are normalized to absolute form;
// remembering the same directory twice is a no-op. The set never shrinks.
func (g *Guard) Remember(dir string) {
	if dir == "" {
		return
	}
	abs := normalize(dir)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.allowed[abs] = struct{}{}
}

// IsAuthorized reports whether path equals, or is a separator-bounded
// descendant of, one of the authorized directories. A sibling that merely
// shares a string prefix (/data/music vs /data/mu) does not qualify.
func (g *Guard) IsAuthorized(path string) bool {
	if path == "" {
		return false
	}
	abs := normalize(path)

	g.mu.RLock()
	defer g.mu.RUnlock()
	for dir := range g.allowed {
		if abs == dir || strings.HasPrefix(abs, dir+g.sep) {
			return true
		}
	}
	return false
}

// Check returns ErrAccessDenied unless the path is authorized.
func (g *Guard) Check(path string) error {
	if !g.IsAuthorized(path) {
		return ErrAccessDenied
	}
	return nil
}

// Roots returns a snapshot of the authorized directories, for diagnostics.
func (g *Guard) Roots() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	roots := make([]string, 0, len(g.allowed))
	for dir := range g.allowed {
		roots = append(roots, dir)
	}
	return roots
}
