// Package launcher assembles and runs the final child build-driver
// invocation, holding the shared cache locks for the child's lifetime.
package launcher

import (
	"os"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/xargo-dev/xargo/internal/cargo"
	"github.com/xargo-dev/xargo/internal/cli"
	"github.com/xargo-dev/xargo/internal/home"
	"github.com/xargo-dev/xargo/internal/log"
	"github.com/xargo-dev/xargo/internal/rustc"
)

// Run forwards the full argument list to cargo with the sysroot wired in via
// the flag environment variables. Both the host and target cache subtrees
// stay read-locked until the child exits, so no concurrent invocation can
// rewrite the sysroot mid-build. Returns the child's exit status verbatim.
func Run(
	args cli.Args,
	cmode rustc.CompilationMode,
	rustflags cargo.Flags,
	h *home.Home,
	meta *rustc.VersionMeta,
	config *cargo.Config,
) (int, error) {
	cmd := exec.Command("cargo", args.All...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()

	if args.Subcommand == cargo.SubcommandDoc {
		docflags := cargo.Rustdocflags(config, cmode.Triple())
		cmd.Env = append(cmd.Env, "RUSTDOCFLAGS="+docflags.WithSysroot(h.TripleDir(cmode.Triple())))
	}

	cmd.Env = append(cmd.Env, "RUSTFLAGS="+rustflags.WithSysroot(h.Path()))

	hostLock, err := h.LockRO(meta.Host)
	if err != nil {
		return 0, err
	}
	defer hostLock.Close()

	targetLock, err := h.LockRO(cmode.Triple())
	if err != nil {
		return 0, err
	}
	defer targetLock.Close()

	log.Info("launching", "cmd", "cargo", "args", len(args.All), "sysroot", h.Path())

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if code := exitErr.ExitCode(); code >= 0 {
				return code, nil
			}
			// Killed by a signal with no code.
			return 1, nil
		}
		return 0, errors.Wrap(err, "couldn't execute `cargo`")
	}

	return 0, nil
}

// Forward runs cargo with the argument list untouched and no sysroot
// injection. Used for subcommands that don't compile, unsupported channels,
// and invocations outside a cargo project.
func Forward(args cli.Args) (int, error) {
	cmd := exec.Command("cargo", args.All...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if code := exitErr.ExitCode(); code >= 0 {
				return code, nil
			}
			return 1, nil
		}
		return 0, errors.Wrap(err, "couldn't execute `cargo`")
	}

	return 0, nil
}
