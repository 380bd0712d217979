// Package cargo reads the project-side configuration the engine consumes: the
// build-tool config (.cargo/config) and the project manifest's [profile]
// section. Both are found by searching upward from the invocation directory.
package cargo

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config is a parsed .cargo/config together with the directory that contains
// the .cargo directory, so relative paths inside can be resolved.
type Config struct {
	Dir string

	raw tomlConfig
}

type tomlConfig struct {
	Build  buildSection             `toml:"build"`
	Target map[string]targetSection `toml:"target"`
}

type buildSection struct {
	Target       string   `toml:"target"`
	Rustflags    []string `toml:"rustflags"`
	Rustdocflags []string `toml:"rustdocflags"`
}

type targetSection struct {
	Rustflags    []string `toml:"rustflags"`
	Rustdocflags []string `toml:"rustdocflags"`
}

// LoadConfig searches upward from start for .cargo/config (or
// .cargo/config.toml) and parses it. Returns nil with no error when the
// project has no config.
func LoadConfig(start string) (*Config, error) {
	dir, path := searchConfig(start)
	if path == "" {
		return nil, nil
	}

	var raw tomlConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, errors.Wrapf(err, "couldn't parse %s", path)
	}

	return &Config{Dir: dir, raw: raw}, nil
}

func searchConfig(start string) (dir, path string) {
	for dir := start; ; dir = filepath.Dir(dir) {
		for _, name := range []string{"config", "config.toml"} {
			p := filepath.Join(dir, ".cargo", name)
			if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
				return dir, p
			}
		}
		if filepath.Dir(dir) == dir {
			return "", ""
		}
	}
}

// Target returns build.target, or "" if unset.
func (c *Config) Target() string {
	if c == nil {
		return ""
	}
	return c.raw.Build.Target
}

// Root is the directory containing the project's Cargo.toml, plus that
// manifest's raw table.
type Root struct {
	Dir string

	manifest map[string]interface{}
}

// LoadRoot searches upward from start for Cargo.toml. Returns nil with no
// error when the invocation is not inside a cargo project.
func LoadRoot(start string) (*Root, error) {
	for dir := start; ; dir = filepath.Dir(dir) {
		path := filepath.Join(dir, "Cargo.toml")
		if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
			var manifest map[string]interface{}
			if _, err := toml.DecodeFile(path, &manifest); err != nil {
				return nil, errors.Wrapf(err, "couldn't parse %s", path)
			}
			return &Root{Dir: dir, manifest: manifest}, nil
		}
		if filepath.Dir(dir) == dir {
			return nil, nil
		}
	}
}

// Profile returns the manifest's [profile] table, or nil when absent.
func (r *Root) Profile() map[string]interface{} {
	if r == nil {
		return nil
	}
	profile, ok := r.manifest["profile"].(map[string]interface{})
	if !ok {
		return nil
	}
	return profile
}
