package blueprint

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/xargo-dev/xargo/internal/log"
)

// Stage is one ordered build phase: the crates compiled by a single child
// invocation, in declaration order.
type Stage struct {
	Number       int
	Crates       []string
	Dependencies map[string]CargoDecl
}

// Blueprint is the resolved plan for building one sysroot: stages in
// ascending order plus the shared patch table. Built once per invocation;
// never persisted.
type Blueprint struct {
	Stages []Stage
	Patch  map[string]map[string]CargoDecl

	// PatchRegistries lists the registries of Patch in manifest declaration
	// order; a crates-io table created only for injected workspace patches
	// comes last.
	PatchRegistries []string
}

// stdWorkspaceCrates are the workspace-support shims the standard-library
// source expects to be patched over their crates.io placeholders.
var stdWorkspaceCrates = []string{
	"rustc-std-workspace-core",
	"rustc-std-workspace-alloc",
	"rustc-std-workspace-std",
}

// defaultDeps is the dependency table used when the manifest declares none:
// a freestanding core, then compiler_builtins with its memory intrinsics.
func defaultDeps() Decls {
	var d Decls
	d.add("core", Declaration{Stage: 0})
	d.add("compiler_builtins", Declaration{
		Stage:    1,
		Version:  "0.1",
		Features: []string{"mem"},
	})
	return d
}

// Build transforms manifest declarations plus defaults into the staged crate
// graph for triple. src is the standard-library source workspace, used to
// resolve crate paths and inject workspace patches. manifest may be nil.
func Build(manifest *Manifest, triple, src string) (*Blueprint, error) {
	manifestDir := ""
	if manifest != nil {
		manifestDir = manifest.Dir
	}

	patch, registries := composePatch(manifest, manifestDir, src)

	deps, err := composeDeps(manifest, triple)
	if err != nil {
		return nil, err
	}

	stages := make(map[int]*Stage)
	var numbers []int
	for _, name := range deps.Names {
		decl := deps.Table[name]

		if decl.Path == "" && decl.Git == "" {
			if found := probeCrate(src, name); found != "" {
				decl.Path = found
			}
		} else if decl.Path != "" && !filepath.IsAbs(decl.Path) {
			decl.Path = filepath.Join(manifestDir, decl.Path)
		}

		stage, ok := stages[decl.Stage]
		if !ok {
			stage = &Stage{Number: decl.Stage, Dependencies: make(map[string]CargoDecl)}
			stages[decl.Stage] = stage
			numbers = append(numbers, decl.Stage)
		}
		stage.Crates = append(stage.Crates, name)
		stage.Dependencies[name] = decl.Cargo()
	}

	sort.Ints(numbers)
	bp := &Blueprint{Patch: patch, PatchRegistries: registries}
	for _, n := range numbers {
		bp.Stages = append(bp.Stages, *stages[n])
	}

	return bp, nil
}

// composePatch canonicalizes the manifest's patch table and injects the
// standard-library workspace patches the user didn't supply.
func composePatch(manifest *Manifest, manifestDir, src string) (map[string]map[string]CargoDecl, []string) {
	patch := make(map[string]map[string]CargoDecl)
	var registries []string

	if manifest != nil {
		for _, registry := range manifest.patchOrder {
			decls := manifest.Patch[registry]
			table := make(map[string]CargoDecl, len(decls.Names))
			for _, name := range decls.Names {
				decl := decls.Table[name]
				if decl.Path != "" && decl.Git != "" {
					log.Warn("patch entry has both `path` and `git`; using `path`",
						"registry", registry, "crate", name)
					decl.Git, decl.Branch, decl.Rev, decl.Tag = "", "", "", ""
				}
				if decl.Path != "" && !filepath.IsAbs(decl.Path) {
					decl.Path = filepath.Join(manifestDir, decl.Path)
				}
				table[name] = decl.Cargo()
			}
			patch[registry] = table
			registries = append(registries, registry)
		}
	}

	for _, name := range stdWorkspaceCrates {
		if _, given := patch["crates-io"][name]; given {
			continue
		}
		path := probeWorkspaceCrate(src, name)
		if path == "" {
			continue
		}
		if patch["crates-io"] == nil {
			patch["crates-io"] = make(map[string]CargoDecl)
			registries = append(registries, "crates-io")
		}
		patch["crates-io"][name] = CargoDecl{Path: path}
	}

	return patch, registries
}

// composeDeps merges the general and per-target dependency tables. A crate
// listed in both is a manifest error, not an override.
func composeDeps(manifest *Manifest, triple string) (Decls, error) {
	if manifest == nil {
		return defaultDeps(), nil
	}

	general := manifest.Dependencies
	target := manifest.TargetDeps[triple]

	if len(general.Names) == 0 && len(target.Names) == 0 {
		return defaultDeps(), nil
	}

	var merged Decls
	for _, name := range general.Names {
		merged.add(name, general.Table[name])
	}
	for _, name := range target.Names {
		if _, dup := merged.Table[name]; dup {
			return Decls{}, &ManifestShapeError{
				Path: filepath.Join(manifest.Dir, "Xargo.toml"),
				Msg: "dependency `" + name + "` is listed in both [dependencies] and [target." +
					triple + ".dependencies]",
			}
		}
		merged.add(name, target.Table[name])
	}

	return merged, nil
}

// probeCrate looks for a crate's source under <src>/<name> or <src>/lib<name>.
func probeCrate(src, name string) string {
	for _, dir := range []string{filepath.Join(src, name), filepath.Join(src, "lib"+name)} {
		if isCrate(dir) {
			return dir
		}
	}
	return ""
}

// probeWorkspaceCrate looks under <src>/<name> and <src>/tools/<name>.
func probeWorkspaceCrate(src, name string) string {
	for _, dir := range []string{filepath.Join(src, name), filepath.Join(src, "tools", name)} {
		if isCrate(dir) {
			return dir
		}
	}
	return ""
}

func isCrate(dir string) bool {
	fi, err := os.Stat(filepath.Join(dir, "Cargo.toml"))
	return err == nil && fi.Mode().IsRegular()
}
