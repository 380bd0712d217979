// Package home owns xargo's on-disk cache layout:
//
//	<root>/lib/rustlib/<triple>/.sentinel   lock target
//	<root>/lib/rustlib/<triple>/.hash       fingerprint of the last build
//	<root>/lib/rustlib/<triple>/lib/        compiled artifacts
//	<root>/lib/rustlib/<host>/bin/          mirrored linker binaries
//
// In native mode the root gains a HOST suffix so host-mode and cross-mode
// caches are disjoint and never contend on a lock.
package home

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/xargo-dev/xargo/internal/config"
	"github.com/xargo-dev/xargo/internal/flock"
	"github.com/xargo-dev/xargo/internal/rustc"
)

// Home is the root of the per-mode sysroot cache.
type Home struct {
	fs flock.Filesystem
}

// New resolves the cache root for the given compilation mode.
func New(mode rustc.CompilationMode) (*Home, error) {
	root, err := config.CacheRoot()
	if err != nil {
		return nil, err
	}

	if mode.IsNative() {
		root = filepath.Join(root, config.HostSubdir)
	}

	return &Home{fs: flock.NewFilesystem(root)}, nil
}

// At returns a Home rooted at an explicit path. Used by tests.
func At(root string) *Home {
	return &Home{fs: flock.NewFilesystem(root)}
}

// Path returns the cache root. This is the directory passed to the child
// compiler via --sysroot.
func (h *Home) Path() string {
	return h.fs.Path()
}

// TripleDir returns the cache subtree for one triple.
func (h *Home) TripleDir(triple string) string {
	return filepath.Join(h.fs.Path(), "lib", "rustlib", triple)
}

// LockRO takes the shared lock on a triple's subtree. Held while the child
// build driver runs.
func (h *Home) LockRO(triple string) (*flock.FileLock, error) {
	lock, err := h.fs.Join("lib", "rustlib", triple).OpenRO(".sentinel", triple+"'s sysroot")
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't lock %s's sysroot as read-only", triple)
	}
	return lock, nil
}

// LockRW takes the exclusive lock on a triple's subtree, creating it if
// needed. Held around the build/populate cycle.
func (h *Home) LockRW(triple string) (*flock.FileLock, error) {
	lock, err := h.fs.Join("lib", "rustlib", triple).OpenRW(".sentinel", triple+"'s sysroot")
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't lock %s's sysroot as read-write", triple)
	}
	return lock, nil
}

// ReadHash returns the fingerprint of the last successful build in the locked
// subtree, or ok=false when the subtree has never been populated.
func ReadHash(lock *flock.FileLock) (string, bool, error) {
	path := filepath.Join(lock.Parent(), ".hash")

	bytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "couldn't read %s", path)
	}

	return strings.TrimSpace(string(bytes)), true, nil
}

// WriteHash records the fingerprint of a completed build. Written last, so a
// missing hash always means "rebuild".
func WriteHash(lock *flock.FileLock, hash string) error {
	path := filepath.Join(lock.Parent(), ".hash")
	if err := os.WriteFile(path, []byte(hash), 0644); err != nil {
		return errors.Wrapf(err, "couldn't write to %s", path)
	}
	return nil
}
