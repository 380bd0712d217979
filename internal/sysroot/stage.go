package sysroot

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/xargo-dev/xargo/internal/blueprint"
	"github.com/xargo-dev/xargo/internal/cargo"
	"github.com/xargo-dev/xargo/internal/config"
	"github.com/xargo-dev/xargo/internal/fsutil"
	"github.com/xargo-dev/xargo/internal/home"
	"github.com/xargo-dev/xargo/internal/log"
	"github.com/xargo-dev/xargo/internal/rustc"
)

// libMetadata is injected as __CARGO_DEFAULT_LIB_METADATA for every stage
// build. It keeps sysroot artifact hashes distinct from the hashes a user
// project would produce for the same crate; without it a crate shared
// between the sysroot and the project links twice with identical symbol
// hashes.
const libMetadata = "XARGO"

// forceUnstableFlag lets the unmarked crates in the sysroot package use
// unstable features the way the in-tree standard library does.
const forceUnstableFlag = "-Z force-unstable-if-unmarked"

type stageBuilder struct {
	cmode         rustc.CompilationMode
	home          *home.Home
	libDir        string
	rustflags     cargo.Flags
	src           string
	profile       map[string]interface{}
	verbose       bool
	messageFormat string
	mode          Mode
}

// stageManifest is the ephemeral package compiled by one stage.
type stageManifest struct {
	Package      packageSection                            `toml:"package"`
	Dependencies map[string]blueprint.CargoDecl            `toml:"dependencies"`
	Patch        map[string]map[string]blueprint.CargoDecl `toml:"patch,omitempty"`
	Profile      map[string]interface{}                    `toml:"profile,omitempty"`
}

type packageSection struct {
	Authors []string `toml:"authors"`
	Name    string   `toml:"name"`
	Version string   `toml:"version"`
}

// run materializes one stage in a fresh workspace, invokes the child build
// driver, and copies the stage's artifacts into the cache.
func (b *stageBuilder) run(stage blueprint.Stage, bp *blueprint.Blueprint) error {
	td, err := os.MkdirTemp("", "xargo")
	if err != nil {
		return errors.Wrap(err, "couldn't create a temporary directory")
	}
	if config.KeepTemp() {
		log.Info("keeping stage workspace", "stage", stage.Number, "dir", td)
	} else {
		defer os.RemoveAll(td)
	}

	if err := b.populate(td, stage, bp); err != nil {
		return err
	}

	if err := b.invoke(td, stage); err != nil {
		return err
	}

	depsDir := filepath.Join(td, "target", b.cmode.Triple(), "release", "deps")
	return fsutil.CopyDir(depsDir, b.libDir)
}

// populate writes the ephemeral package: Cargo.toml, the source tree's
// lockfile (when it has one), and an empty lib.rs.
func (b *stageBuilder) populate(td string, stage blueprint.Stage, bp *blueprint.Blueprint) error {
	manifest := stageManifest{
		Package: packageSection{
			Authors: []string{"The Rust Project Developers"},
			Name:    "sysroot",
			Version: "0.0.0",
		},
		Dependencies: stage.Dependencies,
		Patch:        bp.Patch,
		Profile:      b.profile,
	}

	manifestPath := filepath.Join(td, "Cargo.toml")
	f, err := os.Create(manifestPath)
	if err != nil {
		return errors.Wrapf(err, "couldn't create %s", manifestPath)
	}
	encodeErr := toml.NewEncoder(f).Encode(manifest)
	closeErr := f.Close()
	if encodeErr != nil {
		return errors.Wrapf(encodeErr, "couldn't write %s", manifestPath)
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, "couldn't write %s", manifestPath)
	}

	// The source tree's lockfile pins the sysroot crate graph to the
	// versions the toolchain was built with. Copy if present, proceed if
	// absent; the read-only bit from the component install must not stick.
	for _, lockfile := range []string{
		filepath.Join(b.src, "Cargo.lock"),
		filepath.Join(filepath.Dir(b.src), "Cargo.lock"),
	} {
		if _, err := os.Stat(lockfile); err != nil {
			continue
		}
		dst := filepath.Join(td, "Cargo.lock")
		if err := fsutil.CopyFile(lockfile, dst); err != nil {
			return err
		}
		if err := os.Chmod(dst, 0644); err != nil {
			return errors.Wrapf(err, "couldn't make %s writable", dst)
		}
		break
	}

	srcDir := filepath.Join(td, "src")
	if err := os.Mkdir(srcDir, 0755); err != nil {
		return errors.Wrapf(err, "couldn't create %s", srcDir)
	}
	libRS := filepath.Join(srcDir, "lib.rs")
	if err := os.WriteFile(libRS, nil, 0644); err != nil {
		return errors.Wrapf(err, "couldn't create %s", libRS)
	}

	return nil
}

// invoke runs the child build driver for one stage from inside the
// workspace.
func (b *stageBuilder) invoke(td string, stage blueprint.Stage) error {
	args := []string{
		b.mode.subcommand(),
		"--release",
		"--manifest-path", filepath.Join(td, "Cargo.toml"),
		"--target", b.targetArg(),
	}
	if b.messageFormat != "" {
		args = append(args, "--message-format", b.messageFormat)
	}
	if b.verbose {
		args = append(args, "-v")
	}
	for _, crate := range stage.Crates {
		args = append(args, "-p", crate)
	}

	cmd := exec.Command("cargo", args...)
	cmd.Dir = td
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = b.env(td)

	log.Info("running", "cmd", "cargo "+strings.Join(args, " "), "stage", stage.Number)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &BuildError{
				Command: "cargo " + strings.Join(args, " "),
				Code:    exitCode(exitErr),
			}
		}
		return errors.Wrap(err, "couldn't execute `cargo`")
	}

	return nil
}

func (b *stageBuilder) targetArg() string {
	if t := b.cmode.Target; t != nil && t.Kind != rustc.BuiltIn {
		return t.JSONPath
	}
	return b.cmode.Triple()
}

// env builds the child environment for a stage build.
func (b *stageBuilder) env(td string) []string {
	flags := append(append([]string{}, b.rustflags.List...),
		"--sysroot", b.home.Path(), forceUnstableFlag)

	env := append(os.Environ(),
		"RUSTFLAGS="+strings.Join(flags, " "),

		// Defeat any CARGO_TARGET_DIR / build.target-dir override from the
		// project's own config; stage outputs must land in the workspace.
		"CARGO_TARGET_DIR="+td,

		"__CARGO_DEFAULT_LIB_METADATA="+libMetadata,
	)

	if t := b.cmode.Target; t != nil && t.Kind != rustc.BuiltIn {
		if _, set := os.LookupEnv(config.EnvTargetPath); !set {
			env = append(env, config.EnvTargetPath+"="+filepath.Dir(t.JSONPath))
		}
	}

	return env
}

func exitCode(err *exec.ExitError) int {
	if code := err.ExitCode(); code >= 0 {
		return code
	}
	// Killed by a signal: no code to mirror.
	return 1
}
