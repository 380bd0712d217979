// Package engine wires the probe, resolver, cache, and launcher into the
// single-invocation state machine:
//
//	version/help only              → forward
//	subcommand needs no sysroot    → forward
//	channel is stable/beta         → warn, forward
//	no target                      → native path
//	target                         → cross path
//
// then: probe → resolve target → update sysroot → mirror host → launch.
package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/xargo-dev/xargo/internal/buildinfo"
	"github.com/xargo-dev/xargo/internal/cargo"
	"github.com/xargo-dev/xargo/internal/cli"
	"github.com/xargo-dev/xargo/internal/home"
	"github.com/xargo-dev/xargo/internal/launcher"
	"github.com/xargo-dev/xargo/internal/rustc"
	"github.com/xargo-dev/xargo/internal/sysroot"
)

// Run executes one engine invocation over the forwarded argument list and
// returns the exit status to report. mode selects between the xargo and
// xargo-check front-ends.
func Run(argv []string, mode sysroot.Mode) (int, error) {
	args := cli.Scan(argv)

	if args.Version() {
		fmt.Fprintf(os.Stderr, "xargo %s\n", buildinfo.Version())
		return launcher.Forward(args)
	}

	if args.Subcommand == "" && mode == sysroot.ModeBuild {
		return launcher.Forward(args)
	}
	if args.Subcommand != "" && !args.Subcommand.NeedsSysroot() {
		return launcher.Forward(args)
	}

	meta, err := rustc.Version()
	if err != nil {
		return 0, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return 0, errors.Wrap(err, "couldn't get the current directory")
	}

	start := cwd
	if args.ManifestPath != "" {
		abs, err := filepath.Abs(args.ManifestPath)
		if err != nil {
			return 0, errors.Wrapf(err, "couldn't canonicalize %s", args.ManifestPath)
		}
		start = filepath.Dir(abs)
	}

	root, err := cargo.LoadRoot(start)
	if err != nil {
		return 0, err
	}
	if root == nil {
		// Not inside a cargo project; nothing to build a sysroot for.
		return launcher.Forward(args)
	}

	config, err := cargo.LoadConfig(start)
	if err != nil {
		return 0, err
	}

	// Building the standard library needs unstable compiler features.
	switch meta.Channel {
	case rustc.ChannelStable, rustc.ChannelBeta:
		fmt.Fprintf(os.Stderr,
			"WARNING: the sysroot can't be built for the %s channel. Switch to nightly.\n",
			meta.Channel)
		return launcher.Forward(args)
	case rustc.ChannelDev:
		if rustc.SrcFromEnv() == "" {
			return 0, errors.New(
				"The XARGO_RUST_SRC env variable must be set and point to the " +
					"Rust source directory when working with the 'dev' channel")
		}
	}

	toolchainSysroot, err := rustc.Sysroot()
	if err != nil {
		return 0, err
	}

	src, err := rustc.Src(toolchainSysroot)
	if err != nil {
		return 0, err
	}

	triple := args.Target
	if triple == "" {
		triple = config.Target()
	}

	var cmode rustc.CompilationMode
	if triple == "" || triple == meta.Host {
		cmode = rustc.Native(meta.Host)
	} else {
		builtins, err := rustc.TargetList()
		if err != nil {
			return 0, err
		}
		target, err := rustc.ResolveTarget(triple, builtins, cwd)
		if err != nil {
			return 0, err
		}
		cmode = rustc.Cross(target)
	}

	h, err := home.New(cmode)
	if err != nil {
		return 0, err
	}

	rustflags := cargo.Rustflags(config, cmode.Triple())

	if err := sysroot.Update(cmode, h, root, rustflags, meta, src, toolchainSysroot,
		args.Verbose(), args.MessageFormat, mode); err != nil {
		return 0, err
	}

	if !cmode.IsNative() {
		if err := sysroot.MirrorHost(h, meta, toolchainSysroot); err != nil {
			return 0, err
		}
	}

	// xargo-check with no subcommand only refreshes the sysroot.
	if mode == sysroot.ModeCheck && args.Subcommand == "" {
		return 0, nil
	}

	return launcher.Run(args, cmode, rustflags, h, meta, config)
}
