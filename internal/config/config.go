// Package config centralizes the environment variables xargo reads and the
// resolution of the on-disk cache root.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// EnvXargoHome overrides the default cache root (~/.xargo).
	EnvXargoHome = "XARGO_HOME"

	// EnvRustSrc overrides the standard-library source path. Required on the
	// dev channel, where the toolchain does not ship its own source.
	EnvRustSrc = "XARGO_RUST_SRC"

	// EnvKeepTemp preserves the per-stage temporary workspace after a
	// successful build, for debugging generated manifests.
	EnvKeepTemp = "XARGO_KEEP_TEMP"

	// EnvTargetPath is cargo's search path for custom-target JSON files.
	// Read during target resolution; set for the child when the user has
	// not set it themselves.
	EnvTargetPath = "RUST_TARGET_PATH"

	// EnvRustc is the path of the compiler to probe. Defaults to "rustc".
	EnvRustc = "RUSTC"

	// EnvBacktrace enables backtraces on engine errors when set to "1".
	EnvBacktrace = "RUST_BACKTRACE"

	// EnvLog sets the engine log level ("debug", "info", "warn", "error")
	// independently of the forwarded -v flags.
	EnvLog = "XARGO_LOG"

	// HostSubdir is appended to the cache root in native mode so that
	// host-mode and cross-mode caches never share a lock.
	HostSubdir = "HOST"
)

// CacheRoot returns the root of xargo's on-disk cache: $XARGO_HOME if set,
// otherwise $HOME/.xargo.
func CacheRoot() (string, error) {
	if h := os.Getenv(EnvXargoHome); h != "" {
		return h, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "couldn't find your home directory. Is $HOME set?")
	}

	return filepath.Join(home, ".xargo"), nil
}

// RustcPath returns the compiler to invoke: $RUSTC or "rustc".
func RustcPath() string {
	if p := os.Getenv(EnvRustc); p != "" {
		return p
	}
	return "rustc"
}

// KeepTemp reports whether stage workspaces should be preserved.
func KeepTemp() bool {
	return os.Getenv(EnvKeepTemp) != ""
}

// ShowBacktrace reports whether engine errors should carry a backtrace.
func ShowBacktrace() bool {
	return os.Getenv(EnvBacktrace) == "1"
}
