// Package blueprint turns the sysroot-builder manifest (Xargo.toml) into the
// staged crate graph a sysroot build is materialized from.
package blueprint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestShapeError reports a structural problem in Xargo.toml.
type ManifestShapeError struct {
	Path string
	Msg  string
}

func (e *ManifestShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// CargoDecl is a crate declaration in the form cargo understands: the fields
// of a dependency or patch table entry, minus xargo's own stage marker.
type CargoDecl struct {
	Version         string   `toml:"version,omitempty"`
	Path            string   `toml:"path,omitempty"`
	Git             string   `toml:"git,omitempty"`
	Branch          string   `toml:"branch,omitempty"`
	Rev             string   `toml:"rev,omitempty"`
	Tag             string   `toml:"tag,omitempty"`
	Features        []string `toml:"features,omitempty"`
	DefaultFeatures *bool    `toml:"default-features,omitempty"`
	Optional        bool     `toml:"optional,omitempty"`
}

// Canonical returns the canonical textual form of the declaration: its TOML
// encoding, which is independent of how the user formatted the manifest.
func (d CargoDecl) Canonical() string {
	var sb strings.Builder
	// Encoding a flat struct cannot fail.
	toml.NewEncoder(&sb).Encode(d)
	return sb.String()
}

// Declaration is a dependency entry in Xargo.toml: a CargoDecl plus the build
// stage it belongs to.
type Declaration struct {
	Stage           int      `toml:"stage"`
	Version         string   `toml:"version"`
	Path            string   `toml:"path"`
	Git             string   `toml:"git"`
	Branch          string   `toml:"branch"`
	Rev             string   `toml:"rev"`
	Tag             string   `toml:"tag"`
	Features        []string `toml:"features"`
	DefaultFeatures *bool    `toml:"default-features"`
	Optional        bool     `toml:"optional"`
}

// Cargo strips the stage marker, leaving what gets written into the ephemeral
// build manifest.
func (d Declaration) Cargo() CargoDecl {
	return CargoDecl{
		Version:         d.Version,
		Path:            d.Path,
		Git:             d.Git,
		Branch:          d.Branch,
		Rev:             d.Rev,
		Tag:             d.Tag,
		Features:        d.Features,
		DefaultFeatures: d.DefaultFeatures,
		Optional:        d.Optional,
	}
}

// Decls is a crate-name → declaration table that remembers declaration order.
type Decls struct {
	Names []string
	Table map[string]Declaration
}

func (d *Decls) add(name string, decl Declaration) {
	if d.Table == nil {
		d.Table = make(map[string]Declaration)
	}
	if _, dup := d.Table[name]; !dup {
		d.Names = append(d.Names, name)
	}
	d.Table[name] = decl
}

// Manifest is a parsed Xargo.toml together with the directory containing it,
// against which relative paths inside are resolved.
type Manifest struct {
	Dir string

	Dependencies Decls
	TargetDeps   map[string]Decls
	Patch        map[string]Decls

	patchOrder []string
}

type rawManifest struct {
	Dependencies map[string]Declaration `toml:"dependencies"`
	Target       map[string]struct {
		Dependencies map[string]Declaration `toml:"dependencies"`
	} `toml:"target"`
	Patch map[string]map[string]Declaration `toml:"patch"`
}

// LoadManifest searches upward from start for Xargo.toml. Returns nil with no
// error when the project has none.
func LoadManifest(start string) (*Manifest, error) {
	for dir := start; ; dir = filepath.Dir(dir) {
		path := filepath.Join(dir, "Xargo.toml")
		if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
			return parseManifest(path, dir)
		}
		if filepath.Dir(dir) == dir {
			return nil, nil
		}
	}
}

func parseManifest(path, dir string) (*Manifest, error) {
	var raw rawManifest
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, &ManifestShapeError{Path: path, Msg: err.Error()}
	}

	m := &Manifest{Dir: dir, TargetDeps: make(map[string]Decls), Patch: make(map[string]Decls)}

	// MetaData.Keys reports keys in file order; that order decides crate
	// compilation order within a stage.
	for _, key := range meta.Keys() {
		parts := []string(key)
		switch {
		case len(parts) == 2 && parts[0] == "dependencies":
			m.Dependencies.add(parts[1], raw.Dependencies[parts[1]])

		case len(parts) == 4 && parts[0] == "target" && parts[2] == "dependencies":
			triple := parts[1]
			decls := m.TargetDeps[triple]
			decls.add(parts[3], raw.Target[triple].Dependencies[parts[3]])
			m.TargetDeps[triple] = decls

		case len(parts) == 3 && parts[0] == "patch":
			registry := parts[1]
			decls, seen := m.Patch[registry]
			if !seen {
				m.patchOrder = append(m.patchOrder, registry)
			}
			decls.add(parts[2], raw.Patch[registry][parts[2]])
			m.Patch[registry] = decls
		}
	}

	return m, nil
}
