// Package cli scans the forwarded argument list for the few flags the engine
// consumes. Everything is forwarded to cargo untouched; scanning never
// removes or reorders arguments.
package cli

import (
	"strings"

	"github.com/xargo-dev/xargo/internal/cargo"
)

// Args is the scanned view of the forwarded command line.
type Args struct {
	// All is the complete forwarded argument list, in order.
	All []string

	// Subcommand is the first positional argument, or "".
	Subcommand cargo.Subcommand

	// Target is the value of --target, or "".
	Target string

	// MessageFormat is the value of --message-format, or "".
	MessageFormat string

	// ManifestPath is the value of --manifest-path, or "".
	ManifestPath string
}

// Scan extracts the recognized flags from argv (the arguments after the
// program name).
func Scan(argv []string) Args {
	args := Args{All: argv}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		if !strings.HasPrefix(arg, "-") && args.Subcommand == "" {
			args.Subcommand = cargo.Subcommand(arg)
		}

		next := func() string {
			if i+1 < len(argv) {
				i++
				return argv[i]
			}
			return ""
		}

		switch {
		case arg == "--target":
			args.Target = next()
		case strings.HasPrefix(arg, "--target="):
			args.Target = strings.TrimPrefix(arg, "--target=")
		case arg == "--message-format":
			args.MessageFormat = next()
		case strings.HasPrefix(arg, "--message-format="):
			args.MessageFormat = strings.TrimPrefix(arg, "--message-format=")
		case arg == "--manifest-path":
			args.ManifestPath = next()
		case strings.HasPrefix(arg, "--manifest-path="):
			args.ManifestPath = strings.TrimPrefix(arg, "--manifest-path=")
		}
	}

	return args
}

// Verbose reports whether the forwarded arguments ask for verbose output.
func (a Args) Verbose() bool {
	for _, arg := range a.All {
		if arg == "-v" || arg == "--verbose" || arg == "-vv" {
			return true
		}
	}
	return false
}

// VeryVerbose reports whether -vv was given.
func (a Args) VeryVerbose() bool {
	for _, arg := range a.All {
		if arg == "-vv" {
			return true
		}
	}
	return false
}

// Version reports whether -V/--version was given.
func (a Args) Version() bool {
	for _, arg := range a.All {
		if arg == "-V" || arg == "--version" {
			return true
		}
	}
	return false
}
