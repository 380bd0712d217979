//go:build windows

package flock

import (
	"os"

	"golang.org/x/sys/windows"
)

func lockFlags(exclusive bool) uint32 {
	if exclusive {
		return windows.LOCKFILE_EXCLUSIVE_LOCK
	}
	return 0
}

func tryLock(f *os.File, exclusive bool) error {
	var ol windows.Overlapped
	return windows.LockFileEx(windows.Handle(f.Fd()),
		lockFlags(exclusive)|windows.LOCKFILE_FAIL_IMMEDIATELY, 0, 1, 0, &ol)
}

func blockLock(f *os.File, exclusive bool) error {
	var ol windows.Overlapped
	return windows.LockFileEx(windows.Handle(f.Fd()), lockFlags(exclusive), 0, 1, 0, &ol)
}

func unlock(f *os.File) error {
	var ol windows.Overlapped
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, &ol)
}

func isContended(err error) bool {
	return err == windows.ERROR_LOCK_VIOLATION
}

func isUnsupported(err error) bool {
	return err == windows.ERROR_INVALID_FUNCTION || err == windows.ERROR_NOT_SUPPORTED
}
