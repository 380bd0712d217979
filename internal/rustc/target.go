package rustc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/xargo-dev/xargo/internal/config"
)

// TargetKind classifies how a target was resolved.
type TargetKind int

const (
	// BuiltIn is a triple the compiler recognizes without a JSON file.
	BuiltIn TargetKind = iota

	// CustomByPath is a <triple>.json found in the invocation directory.
	CustomByPath

	// CustomByName is a <triple>.json found on RUST_TARGET_PATH.
	CustomByName
)

// Target is a resolved compilation target. For the custom kinds, JSONBytes is
// the canonical byte content of the specification file: two targets with
// byte-identical JSON produce equal fingerprints.
type Target struct {
	Kind      TargetKind
	Triple    string
	JSONPath  string
	JSONBytes []byte
}

// UnknownTargetError reports a triple that is neither built-in nor backed by
// a specification file.
type UnknownTargetError struct {
	Triple string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("no target specification file found for `%s`, and it's not a built-in target", e.Triple)
}

// ResolveTarget classifies triple against the built-in list, the invocation
// directory, and RUST_TARGET_PATH, in that order. File arguments are
// rejected to force canonical triple naming.
func ResolveTarget(triple string, builtins map[string]bool, cwd string) (*Target, error) {
	if strings.HasSuffix(triple, ".json") {
		return nil, errors.Errorf(
			"xargo doesn't support files as an argument to --target. "+
				"Use `--target %s` instead of `--target %s`.",
			strings.TrimSuffix(filepath.Base(triple), ".json"), triple)
	}

	if builtins[triple] {
		return &Target{Kind: BuiltIn, Triple: triple}, nil
	}

	json := triple + ".json"

	if path := filepath.Join(cwd, json); isFile(path) {
		return readTarget(CustomByPath, triple, path)
	}

	for _, dir := range filepath.SplitList(os.Getenv(config.EnvTargetPath)) {
		if dir == "" {
			continue
		}
		if path := filepath.Join(dir, json); isFile(path) {
			return readTarget(CustomByName, triple, path)
		}
	}

	return nil, &UnknownTargetError{Triple: triple}
}

func readTarget(kind TargetKind, triple, path string) (*Target, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't canonicalize %s", path)
	}

	bytes, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read %s", abs)
	}

	return &Target{Kind: kind, Triple: triple, JSONPath: abs, JSONBytes: bytes}, nil
}
