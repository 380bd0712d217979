package cargo

// Subcommand is a recognized cargo subcommand. Only the subcommands that
// compile or document code need a sysroot; everything else is forwarded
// untouched.
type Subcommand string

const (
	SubcommandBuild   Subcommand = "build"
	SubcommandCheck   Subcommand = "check"
	SubcommandClippy  Subcommand = "clippy"
	SubcommandDoc     Subcommand = "doc"
	SubcommandRun     Subcommand = "run"
	SubcommandRustc   Subcommand = "rustc"
	SubcommandRustdoc Subcommand = "rustdoc"
	SubcommandTest    Subcommand = "test"
	SubcommandBench   Subcommand = "bench"
)

var needsSysroot = map[Subcommand]bool{
	SubcommandBuild:   true,
	SubcommandCheck:   true,
	SubcommandClippy:  true,
	SubcommandDoc:     true,
	SubcommandRun:     true,
	SubcommandRustc:   true,
	SubcommandRustdoc: true,
	SubcommandTest:    true,
	SubcommandBench:   true,
}

// NeedsSysroot reports whether the subcommand compiles against a sysroot.
// Unrecognized subcommands (clean, init, new, update, search, third-party
// plugins, ...) don't.
func (s Subcommand) NeedsSysroot() bool {
	return needsSysroot[s]
}
