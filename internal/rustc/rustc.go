// Package rustc probes the ambient Rust toolchain: version metadata, the
// sysroot path, the bundled standard-library source, and the built-in target
// list. It also resolves --target arguments into Target values.
package rustc

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/xargo-dev/xargo/internal/config"
	"github.com/xargo-dev/xargo/internal/log"
)

// Channel is the release channel of the probed compiler.
type Channel string

const (
	ChannelStable  Channel = "stable"
	ChannelBeta    Channel = "beta"
	ChannelNightly Channel = "nightly"
	ChannelDev     Channel = "dev"
)

// VersionMeta is the parsed output of `rustc -vV`.
type VersionMeta struct {
	// Semver is the release version, including any channel pre-release tag.
	Semver *semver.Version

	// CommitHash is the full commit hash, empty for builds without VCS info.
	CommitHash string

	// CommitDate is the commit date, empty for builds without VCS info.
	CommitDate string

	Channel Channel

	// Host is the triple the compiler itself runs on.
	Host string
}

// Version runs `rustc -vV` and parses its output.
func Version() (*VersionMeta, error) {
	out, err := runRustc("-vV")
	if err != nil {
		return nil, err
	}
	meta, err := parseVersionMeta(out)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't parse the output of `rustc -vV`")
	}
	return meta, nil
}

func parseVersionMeta(out string) (*VersionMeta, error) {
	var release, host, commitHash, commitDate string

	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		switch key {
		case "release":
			release = value
		case "host":
			host = value
		case "commit-hash":
			commitHash = value
		case "commit-date":
			commitDate = value
		}
	}

	if release == "" || host == "" {
		return nil, errors.New("missing `release` or `host` field")
	}

	version, err := semver.NewVersion(release)
	if err != nil {
		return nil, errors.Wrapf(err, "release %q is not a valid version", release)
	}

	channel := ChannelStable
	switch {
	case strings.Contains(release, "-dev"):
		channel = ChannelDev
	case strings.Contains(release, "-nightly"):
		channel = ChannelNightly
	case strings.Contains(release, "-beta"):
		channel = ChannelBeta
	}

	// rustup and some distros report "unknown" instead of omitting the field.
	if commitHash == "unknown" {
		commitHash = ""
	}
	if commitDate == "unknown" {
		commitDate = ""
	}

	return &VersionMeta{
		Semver:     version,
		CommitHash: commitHash,
		CommitDate: commitDate,
		Channel:    channel,
		Host:       host,
	}, nil
}

// Sysroot returns the toolchain's own sysroot directory.
func Sysroot() (string, error) {
	out, err := runRustc("--print", "sysroot")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// TargetList returns the set of built-in triples the compiler recognizes.
func TargetList() (map[string]bool, error) {
	out, err := runRustc("--print", "target-list")
	if err != nil {
		return nil, err
	}

	targets := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			targets[line] = true
		}
	}
	return targets, nil
}

// MissingRustSrcError reports that the standard-library source tree could
// not be located: XARGO_RUST_SRC is unset and the sysroot carries no
// rust-src component.
type MissingRustSrcError struct {
	Sysroot string
}

func (e *MissingRustSrcError) Error() string {
	return fmt.Sprintf("`rust-src` component not found in `%s`. Run `rustup component add rust-src`.",
		e.Sysroot)
}

// SrcFromEnv returns the XARGO_RUST_SRC override, or "" if unset.
func SrcFromEnv() string {
	return os.Getenv(config.EnvRustSrc)
}

// Src locates the standard-library source workspace: the XARGO_RUST_SRC
// override if set, otherwise the rust-src component inside sysroot. The
// returned directory contains the library crates themselves (core/, alloc/,
// std/, ...).
func Src(sysroot string) (string, error) {
	if src := SrcFromEnv(); src != "" {
		return src, nil
	}

	base := filepath.Join(sysroot, "lib", "rustlib", "src", "rust")

	// Current source layout keeps the workspace under library/; very old
	// toolchains used src/ with lib-prefixed crate directories.
	if isFile(filepath.Join(base, "library", "std", "Cargo.toml")) {
		return filepath.Join(base, "library"), nil
	}
	if isFile(filepath.Join(base, "src", "libstd", "Cargo.toml")) {
		return filepath.Join(base, "src"), nil
	}

	return "", &MissingRustSrcError{Sysroot: sysroot}
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// runRustc executes $RUSTC (default "rustc") with args and returns stdout.
func runRustc(args ...string) (string, error) {
	path := config.RustcPath()
	log.Debug("running rustc", "path", path, "args", strings.Join(args, " "))

	cmd := exec.Command(path, args...)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		return "", errors.Wrapf(err, "couldn't execute `%s %s`", path, strings.Join(args, " "))
	}
	return string(out), nil
}
