//go:build unix

package flock

import (
	"os"

	"golang.org/x/sys/unix"
)

func flockHow(exclusive bool) int {
	if exclusive {
		return unix.LOCK_EX
	}
	return unix.LOCK_SH
}

func tryLock(f *os.File, exclusive bool) error {
	return unix.Flock(int(f.Fd()), flockHow(exclusive)|unix.LOCK_NB)
}

func blockLock(f *os.File, exclusive bool) error {
	return unix.Flock(int(f.Fd()), flockHow(exclusive))
}

func unlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}

func isContended(err error) bool {
	return err == unix.EWOULDBLOCK || err == unix.EAGAIN
}

// macOS returns ENOTSUP for flock on filesystems like SMB shares; treat the
// lock as unavailable rather than failing.
func isUnsupported(err error) bool {
	return err == unix.ENOTSUP || err == unix.EOPNOTSUPP || err == unix.ENOSYS
}
