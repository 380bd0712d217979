// Package fsutil has the small filesystem helpers the cache engine needs.
package fsutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// CopyFile copies one regular file. The destination is created or truncated.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "couldn't open %s", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "couldn't create %s", dst)
	}

	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		return errors.Wrapf(copyErr, "couldn't copy %s to %s", src, dst)
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, "couldn't write %s", dst)
	}
	return nil
}

// CopyDir recursively copies the contents of src into dst, creating dst if
// needed. Files are copied, not renamed, so src may live on a different
// filesystem (temporary directories often do).
func CopyDir(src, dst string) error {
	err := copyDir(src, dst)
	return errors.Wrapf(err, "failed to recursively copy %s to %s", src, dst)
}

func copyDir(src, dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, e := range entries {
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())

		if e.IsDir() {
			if err := copyDir(from, to); err != nil {
				return err
			}
			continue
		}
		if err := CopyFile(from, to); err != nil {
			return err
		}
	}

	return nil
}
