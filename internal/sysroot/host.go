package sysroot

import (
	"os"
	"path/filepath"

	"github.com/xargo-dev/xargo/internal/fsutil"
	"github.com/xargo-dev/xargo/internal/home"
	"github.com/xargo-dev/xargo/internal/log"
	"github.com/xargo-dev/xargo/internal/rustc"
)

// MirrorHost copies the toolchain's prebuilt host standard library (and, when
// present, its linker binaries) into the cache's host subtree, so the child
// build driver sees a complete sysroot during cross builds. Keyed on the
// compiler commit hash: identical hash, no work.
func MirrorHost(h *home.Home, meta *rustc.VersionMeta, toolchainSysroot string) error {
	lock, err := h.LockRW(meta.Host)
	if err != nil {
		return err
	}
	defer lock.Close()

	hash := meta.CommitHash
	if hash == "" {
		hash = meta.Semver.String()
	}

	cached, ok, err := home.ReadHash(lock)
	if err != nil {
		return err
	}
	if ok && cached == hash {
		return nil
	}

	log.Info("mirroring host sysroot", "host", meta.Host)

	if err := lock.RemoveSiblings(); err != nil {
		return err
	}

	hostDir := filepath.Join(toolchainSysroot, "lib", "rustlib", meta.Host)

	if err := fsutil.CopyDir(filepath.Join(hostDir, "lib"), filepath.Join(lock.Parent(), "lib")); err != nil {
		return err
	}

	// Some toolchains ship the self-contained linker next to the libraries.
	if fi, err := os.Stat(filepath.Join(hostDir, "bin")); err == nil && fi.IsDir() {
		if err := fsutil.CopyDir(filepath.Join(hostDir, "bin"), filepath.Join(lock.Parent(), "bin")); err != nil {
			return err
		}
	}

	return home.WriteHash(lock, hash)
}
