package cargo

import (
	"os"
	"strings"
)

// FlagsOrigin records which precedence level supplied a flag list.
type FlagsOrigin int

const (
	// OriginNone means no source supplied flags.
	OriginNone FlagsOrigin = iota

	// OriginEnv means the RUSTFLAGS/RUSTDOCFLAGS environment variable.
	OriginEnv

	// OriginTarget means target.<triple>.<tool> in .cargo/config.
	OriginTarget

	// OriginBuild means build.<tool> in .cargo/config.
	OriginBuild
)

// Flags is an ordered flag list for one compiler tool, tagged with its
// origin. Order is preserved as given; --sysroot is appended by xargo,
// never by the user.
type Flags struct {
	Tool   string
	Origin FlagsOrigin
	List   []string
}

// Rustflags resolves the flag list for rustc. The highest-precedence source
// wins wholesale: environment, then target.<triple>.rustflags, then
// build.rustflags. Lists are never merged across levels.
func Rustflags(config *Config, triple string) Flags {
	return flags(config, triple, "rustflags")
}

// Rustdocflags resolves the flag list for rustdoc, with the same precedence
// as Rustflags.
func Rustdocflags(config *Config, triple string) Flags {
	return flags(config, triple, "rustdocflags")
}

func flags(config *Config, triple, tool string) Flags {
	if value, ok := os.LookupEnv(strings.ToUpper(tool)); ok {
		return Flags{Tool: tool, Origin: OriginEnv, List: strings.Fields(value)}
	}

	if config != nil {
		if list := config.targetFlags(triple, tool); list != nil {
			return Flags{Tool: tool, Origin: OriginTarget, List: list}
		}
		if list := config.buildFlags(tool); list != nil {
			return Flags{Tool: tool, Origin: OriginBuild, List: list}
		}
	}

	return Flags{Tool: tool, Origin: OriginNone}
}

func (c *Config) targetFlags(triple, tool string) []string {
	section, ok := c.raw.Target[triple]
	if !ok {
		return nil
	}
	if tool == "rustdocflags" {
		return section.Rustdocflags
	}
	return section.Rustflags
}

func (c *Config) buildFlags(tool string) []string {
	if tool == "rustdocflags" {
		return c.raw.Build.Rustdocflags
	}
	return c.raw.Build.Rustflags
}

// WithSysroot returns the flag list with --sysroot=<path> appended, joined
// into the space-separated form the environment variable expects.
func (f Flags) WithSysroot(path string) string {
	parts := append(append([]string{}, f.List...), "--sysroot="+path)
	return strings.Join(parts, " ")
}

// Env returns the flag list in environment-variable form, without a sysroot.
func (f Flags) Env() string {
	return strings.Join(f.List, " ")
}
