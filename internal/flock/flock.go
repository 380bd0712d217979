// Package flock implements the advisory file-lock protocol that guards each
// per-triple sysroot in the cache.
//
// Locks are try-first-then-block: a contended acquisition prints a single
// notice to stderr before parking. On filesystems that don't support advisory
// locking (NFS, and macOS filesystems returning ENOTSUP) the lock silently
// degrades to a no-op.
package flock

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrLockContended marks a non-recoverable locking error, distinct from the
// ordinary "blocking and waiting" path which is logged, not raised.
var ErrLockContended = errors.New("non-recoverable file lock error")

// Notices is where contention notices are written. Overridden in tests.
var Notices io.Writer = os.Stderr

// FileLock is a held advisory lock on a sentinel file. The lock is released
// by Close, and by the OS if the process dies first.
type FileLock struct {
	file *os.File
	path string
}

// Path returns the sentinel file's path.
func (l *FileLock) Path() string {
	return l.path
}

// Parent returns the directory the sentinel guards.
func (l *FileLock) Parent() string {
	return filepath.Dir(l.path)
}

// RemoveSiblings deletes everything in the guarded directory except the
// sentinel itself. Requires the exclusive lock.
func (l *FileLock) RemoveSiblings() error {
	parent := l.Parent()
	entries, err := os.ReadDir(parent)
	if err != nil {
		return errors.Wrapf(err, "couldn't read %s", parent)
	}

	sentinel := filepath.Base(l.path)
	for _, e := range entries {
		if e.Name() == sentinel {
			continue
		}
		if err := os.RemoveAll(filepath.Join(parent, e.Name())); err != nil {
			return errors.Wrapf(err, "couldn't remove %s", filepath.Join(parent, e.Name()))
		}
	}

	return nil
}

// Close releases the lock and closes the sentinel file. Safe to call on all
// exit paths; releasing twice is a no-op.
func (l *FileLock) Close() error {
	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil

	unlockErr := unlock(f)
	closeErr := f.Close()
	if unlockErr != nil {
		return errors.Wrapf(unlockErr, "couldn't unlock %s", l.path)
	}
	return closeErr
}

// Filesystem is a path prefix under which locked files are opened.
type Filesystem struct {
	path string
}

// NewFilesystem returns a Filesystem rooted at path.
func NewFilesystem(path string) Filesystem {
	return Filesystem{path: path}
}

// Join returns a Filesystem rooted at a subpath.
func (f Filesystem) Join(elem ...string) Filesystem {
	return Filesystem{path: filepath.Join(append([]string{f.path}, elem...)...)}
}

// Path returns the filesystem's root path.
func (f Filesystem) Path() string {
	return f.path
}

// OpenRO opens name under the filesystem root and takes a shared lock on it.
// The label names the resource in the contention notice.
func (f Filesystem) OpenRO(name, label string) (*FileLock, error) {
	path := filepath.Join(f.path, name)

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}

	if err := acquire(file, path, label, false); err != nil {
		file.Close()
		return nil, err
	}

	return &FileLock{file: file, path: path}, nil
}

// OpenRW creates name under the filesystem root (and any missing parent
// directories) and takes an exclusive lock on it.
func (f Filesystem) OpenRW(name, label string) (*FileLock, error) {
	path := filepath.Join(f.path, name)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, "couldn't create %s", filepath.Dir(path))
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}

	if err := acquire(file, path, label, true); err != nil {
		file.Close()
		return nil, err
	}

	return &FileLock{file: file, path: path}, nil
}

// acquire implements the try-first-then-block idiom.
func acquire(file *os.File, path, label string, exclusive bool) error {
	if isOnNFSMount(path) {
		return nil
	}

	err := tryLock(file, exclusive)
	if err == nil {
		return nil
	}
	if isUnsupported(err) {
		return nil
	}
	if !isContended(err) {
		return errors.Wrapf(ErrLockContended, "failed to lock file %s: %v", path, err)
	}

	fmt.Fprintf(Notices, "Blocking waiting for file lock on %s\n", label)

	if err := blockLock(file, exclusive); err != nil {
		return errors.Wrapf(ErrLockContended, "failed to lock file %s: %v", path, err)
	}
	return nil
}
