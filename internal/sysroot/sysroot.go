// Package sysroot materializes a blueprint as ephemeral cargo packages,
// drives the child build driver once per stage, and populates the on-disk
// cache under the exclusive per-triple lock.
package sysroot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/xargo-dev/xargo/internal/blueprint"
	"github.com/xargo-dev/xargo/internal/cargo"
	"github.com/xargo-dev/xargo/internal/fingerprint"
	"github.com/xargo-dev/xargo/internal/fsutil"
	"github.com/xargo-dev/xargo/internal/home"
	"github.com/xargo-dev/xargo/internal/log"
	"github.com/xargo-dev/xargo/internal/rustc"
)

// Mode selects the child subcommand used to compile the sysroot crates.
type Mode int

const (
	// ModeBuild produces artifacts (`cargo build`).
	ModeBuild Mode = iota

	// ModeCheck only type-checks (`cargo check`); used by xargo-check.
	ModeCheck
)

func (m Mode) subcommand() string {
	if m == ModeCheck {
		return "check"
	}
	return "build"
}

// BuildError reports a stage whose child build returned non-zero. The engine
// exits with the child's code.
type BuildError struct {
	Command string
	Code    int
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("`%s` failed with exit code %d", e.Command, e.Code)
}

// windowsStartupObjects are required to link binaries for windows-gnu
// targets; they are prebuilt in the toolchain, not produced by the stage
// builds.
var windowsStartupObjects = []string{"rsbegin.o", "rsend.o", "crt2.o", "dllcrt2.o"}

// Update brings the cache entry for cmode's triple up to date: it computes
// the fingerprint of the requested sysroot and rebuilds the entry when the
// cached fingerprint differs. The whole read-compare-rebuild cycle runs under
// the exclusive write lock on the triple.
func Update(
	cmode rustc.CompilationMode,
	h *home.Home,
	root *cargo.Root,
	rustflags cargo.Flags,
	meta *rustc.VersionMeta,
	src string,
	toolchainSysroot string,
	verbose bool,
	messageFormat string,
	mode Mode,
) error {
	manifest, err := blueprint.LoadManifest(root.Dir)
	if err != nil {
		return err
	}

	bp, err := blueprint.Build(manifest, cmode.Triple(), src)
	if err != nil {
		return err
	}

	profile, err := cargo.CanonicalProfile(root.Profile())
	if err != nil {
		return err
	}

	hash := fingerprint.String(fingerprint.Compute(bp, rustflags.List, cmode, profile, meta))

	lock, err := h.LockRW(cmode.Triple())
	if err != nil {
		return err
	}
	defer lock.Close()

	cached, ok, err := home.ReadHash(lock)
	if err != nil {
		return err
	}
	if ok && cached == hash {
		log.Info("sysroot up to date", "triple", cmode.Triple(), "hash", hash)
		return nil
	}

	log.Info("rebuilding sysroot", "triple", cmode.Triple(), "stages", len(bp.Stages))

	if err := lock.RemoveSiblings(); err != nil {
		return err
	}

	libDir := filepath.Join(lock.Parent(), "lib")
	if err := os.MkdirAll(libDir, 0755); err != nil {
		return errors.Wrapf(err, "couldn't create %s", libDir)
	}

	if strings.HasSuffix(cmode.Triple(), "windows-gnu") {
		objDir := filepath.Join(toolchainSysroot, "lib", "rustlib", cmode.Triple(), "lib")
		for _, obj := range windowsStartupObjects {
			if err := fsutil.CopyFile(filepath.Join(objDir, obj), filepath.Join(libDir, obj)); err != nil {
				return err
			}
		}
	}

	b := &stageBuilder{
		cmode:         cmode,
		home:          h,
		libDir:        libDir,
		rustflags:     rustflags,
		src:           src,
		profile:       root.Profile(),
		verbose:       verbose,
		messageFormat: messageFormat,
		mode:          mode,
	}
	for _, stage := range bp.Stages {
		if err := b.run(stage, bp); err != nil {
			return err
		}
	}

	return home.WriteHash(lock, hash)
}
