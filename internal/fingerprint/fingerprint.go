// Package fingerprint canonicalizes every input that affects a sysroot's
// binary output into a single 64-bit digest. The digest decides cache
// validity: equal fingerprint, no rebuild.
package fingerprint

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/xargo-dev/xargo/internal/blueprint"
	"github.com/xargo-dev/xargo/internal/rustc"
)

// Compute digests, in fixed order:
//
//  1. each stage's (crate name, canonical declaration) pairs, stages
//     ascending, crates in declaration order
//  2. the tool-flag list, in order
//  3. the compilation mode: triple, plus the target JSON bytes for
//     non-built-in targets
//  4. the canonical [profile] section, if any
//  5. the compiler commit hash, or its version when the hash is absent
//
// Unrelated inputs (file permissions, irrelevant manifest sections, key
// order that doesn't change canonical forms) never reach the digest.
func Compute(bp *blueprint.Blueprint, flags []string, mode rustc.CompilationMode,
	profile string, meta *rustc.VersionMeta) uint64 {

	d := xxhash.New()

	for _, stage := range bp.Stages {
		for _, name := range stage.Crates {
			feed(d, name)
			feed(d, stage.Dependencies[name].Canonical())
		}
	}

	for _, flag := range flags {
		feed(d, flag)
	}

	feed(d, mode.Triple())
	if mode.Target != nil && mode.Target.Kind != rustc.BuiltIn {
		d.Write(mode.Target.JSONBytes)
		d.Write([]byte{0})
	}

	if profile != "" {
		feed(d, profile)
	}

	if meta.CommitHash != "" {
		feed(d, meta.CommitHash)
	} else {
		feed(d, meta.Semver.String())
	}

	return d.Sum64()
}

// String renders a fingerprint the way it is stored in .hash files.
func String(hash uint64) string {
	return strconv.FormatUint(hash, 10)
}

// feed writes s followed by a terminator so adjacent fields can't alias.
func feed(d *xxhash.Digest, s string) {
	d.WriteString(s)
	d.Write([]byte{0})
}
