package rustc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xargo-dev/xargo/internal/config"
)

func writeJSON(t *testing.T, dir, triple string) string {
	t.Helper()
	path := filepath.Join(dir, triple+".json")
	content := `{"arch": "arm", "os": "none", "target-pointer-width": "32"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveTarget_RejectsJSONArgument(t *testing.T) {
	_, err := ResolveTarget("foo.json", nil, t.TempDir())
	if err == nil {
		t.Fatal("ResolveTarget() accepted a .json argument")
	}
}

func TestResolveTarget_BuiltIn(t *testing.T) {
	builtins := map[string]bool{"thumbv7m-none-eabi": true}

	target, err := ResolveTarget("thumbv7m-none-eabi", builtins, t.TempDir())
	if err != nil {
		t.Fatalf("ResolveTarget() error = %v", err)
	}
	if target.Kind != BuiltIn {
		t.Errorf("Kind = %v, want BuiltIn", target.Kind)
	}
	if target.JSONBytes != nil {
		t.Error("built-in target carries JSON bytes")
	}
}

func TestResolveTarget_CustomByPath(t *testing.T) {
	cwd := t.TempDir()
	writeJSON(t, cwd, "custom-triple")

	target, err := ResolveTarget("custom-triple", nil, cwd)
	if err != nil {
		t.Fatalf("ResolveTarget() error = %v", err)
	}
	if target.Kind != CustomByPath {
		t.Errorf("Kind = %v, want CustomByPath", target.Kind)
	}
	if target.Triple != "custom-triple" {
		t.Errorf("Triple = %q", target.Triple)
	}
	if len(target.JSONBytes) == 0 {
		t.Error("JSONBytes empty")
	}
}

func TestResolveTarget_CustomByName(t *testing.T) {
	specs := t.TempDir()
	writeJSON(t, specs, "searched-triple")
	t.Setenv(config.EnvTargetPath, t.TempDir()+string(os.PathListSeparator)+specs)

	target, err := ResolveTarget("searched-triple", nil, t.TempDir())
	if err != nil {
		t.Fatalf("ResolveTarget() error = %v", err)
	}
	if target.Kind != CustomByName {
		t.Errorf("Kind = %v, want CustomByName", target.Kind)
	}
	if filepath.Dir(target.JSONPath) != specs {
		t.Errorf("JSONPath = %q, want under %q", target.JSONPath, specs)
	}
}

func TestResolveTarget_CwdBeatsSearchPath(t *testing.T) {
	cwd := t.TempDir()
	writeJSON(t, cwd, "both")
	specs := t.TempDir()
	writeJSON(t, specs, "both")
	t.Setenv(config.EnvTargetPath, specs)

	target, err := ResolveTarget("both", nil, cwd)
	if err != nil {
		t.Fatal(err)
	}
	if target.Kind != CustomByPath {
		t.Errorf("Kind = %v, want CustomByPath", target.Kind)
	}
}

func TestResolveTarget_Unknown(t *testing.T) {
	t.Setenv(config.EnvTargetPath, "")

	_, err := ResolveTarget("no-such-triple", map[string]bool{"other": true}, t.TempDir())

	var unknown *UnknownTargetError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want UnknownTargetError", err)
	}
	if unknown.Triple != "no-such-triple" {
		t.Errorf("Triple = %q", unknown.Triple)
	}
}

func TestSrc_EnvOverride(t *testing.T) {
	t.Setenv(config.EnvRustSrc, "/custom/rust/src")

	src, err := Src("/toolchain/sysroot")
	if err != nil {
		t.Fatal(err)
	}
	if src != "/custom/rust/src" {
		t.Errorf("Src() = %q", src)
	}
}

func TestSrc_ModernLayout(t *testing.T) {
	t.Setenv(config.EnvRustSrc, "")
	os.Unsetenv(config.EnvRustSrc)

	sysroot := t.TempDir()
	std := filepath.Join(sysroot, "lib", "rustlib", "src", "rust", "library", "std")
	if err := os.MkdirAll(std, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(std, "Cargo.toml"), []byte("[package]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := Src(sysroot)
	if err != nil {
		t.Fatalf("Src() error = %v", err)
	}
	if want := filepath.Join(sysroot, "lib", "rustlib", "src", "rust", "library"); src != want {
		t.Errorf("Src() = %q, want %q", src, want)
	}
}

func TestSrc_Missing(t *testing.T) {
	t.Setenv(config.EnvRustSrc, "")
	os.Unsetenv(config.EnvRustSrc)

	sysroot := t.TempDir()
	_, err := Src(sysroot)
	if err == nil {
		t.Fatal("Src() found a source tree in an empty sysroot")
	}

	var missing *MissingRustSrcError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingRustSrcError", err)
	}
	if missing.Sysroot != sysroot {
		t.Errorf("Sysroot = %q, want %q", missing.Sysroot, sysroot)
	}
	if !strings.Contains(err.Error(), "rustup component add rust-src") {
		t.Errorf("message doesn't point at the fix: %q", err.Error())
	}
}

func TestCompilationMode(t *testing.T) {
	native := Native("x86_64-unknown-linux-gnu")
	if !native.IsNative() {
		t.Error("Native mode reported non-native")
	}
	if native.Triple() != "x86_64-unknown-linux-gnu" {
		t.Errorf("Triple() = %q", native.Triple())
	}

	cross := Cross(&Target{Kind: BuiltIn, Triple: "thumbv7m-none-eabi"})
	if cross.IsNative() {
		t.Error("Cross mode reported native")
	}
	if cross.Triple() != "thumbv7m-none-eabi" {
		t.Errorf("Triple() = %q", cross.Triple())
	}
}
