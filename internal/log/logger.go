// Package log is the engine's diagnostic channel. The wrapped cargo process
// owns stdout and most of stderr; everything here goes to stderr and is off
// by default below WARN.
//
// Verbosity is taken from the forwarded argument list, since xargo has no
// flags of its own: -v/--verbose raises the level to INFO and -vv to DEBUG,
// mirroring what the flags already do to the child. XARGO_LOG overrides the
// default when no flag is present.
//
// The package exposes plain functions (Debug/Info/Warn/Error) rather than a
// logger value: the engine is a single-invocation pipeline with exactly one
// diagnostic stream, so threading a logger through every layer would only
// add plumbing.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/xargo-dev/xargo/internal/config"
)

var (
	mu     sync.RWMutex
	logger = slog.New(cliHandler{level: slog.LevelError + 128, w: io.Discard, mu: &sync.Mutex{}})
)

// Init configures logging for one invocation from the forwarded arguments
// and the environment. Called once by main before the engine starts; until
// then everything is discarded.
func Init(argv []string) {
	Configure(levelFor(argv), os.Stderr)
}

// Configure installs a handler writing records at or above level to w.
// Split out of Init so tests can capture output.
func Configure(level slog.Level, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(cliHandler{level: level, w: w, mu: &sync.Mutex{}})
}

// levelFor maps the forwarded verbosity flags, then XARGO_LOG, to a level.
func levelFor(argv []string) slog.Level {
	verbose := false
	for _, arg := range argv {
		switch arg {
		case "-vv":
			return slog.LevelDebug
		case "-v", "--verbose":
			verbose = true
		}
	}
	if verbose {
		return slog.LevelInfo
	}

	switch strings.ToLower(os.Getenv(config.EnvLog)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}

	return slog.LevelWarn
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug records internal state: fingerprint inputs, resolved blueprint
// stages, probe invocations.
func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// Info records operational context: cache decisions, child command lines.
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// Warn records recoverable conditions, like a patch entry that had to be
// narrowed.
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// Error records failures that abort the invocation.
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}
