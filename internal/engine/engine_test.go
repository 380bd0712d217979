//go:build unix

package engine

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xargo-dev/xargo/internal/sysroot"
)

const stableVV = `rustc 1.82.0 (f6e511eec 2024-10-15)
binary: rustc
commit-hash: f6e511eec7342f59a25f7c0534f1dbea00d01b14
commit-date: 2024-10-15
host: x86_64-unknown-linux-gnu
release: 1.82.0
LLVM version: 19.1.1
`

// newToolchain installs stub rustc and cargo binaries on PATH. The cargo stub
// records its argument list and exits with exitCode.
func newToolchain(t *testing.T, versionOutput string, exitCode int) string {
	t.Helper()
	bin := t.TempDir()
	argsFile := filepath.Join(bin, "args.txt")

	vvFile := filepath.Join(bin, "vv.txt")
	if err := os.WriteFile(vvFile, []byte(versionOutput), 0644); err != nil {
		t.Fatal(err)
	}

	rustc := "#!/bin/sh\ncat " + vvFile + "\n"
	if err := os.WriteFile(filepath.Join(bin, "rustc"), []byte(rustc), 0755); err != nil {
		t.Fatal(err)
	}

	cargo := "#!/bin/sh\necho \"$@\" > " + argsFile + "\nexit " + strconv.Itoa(exitCode) + "\n"
	if err := os.WriteFile(filepath.Join(bin, "cargo"), []byte(cargo), 0755); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("RUSTC", filepath.Join(bin, "rustc"))
	return argsFile
}

func TestRun_ForwardsNonCompilingSubcommand(t *testing.T) {
	argsFile := newToolchain(t, stableVV, 3)

	code, err := Run([]string{"clean", "--target", "thumbv7m-none-eabi"}, sysroot.ModeBuild)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != 3 {
		t.Errorf("code = %d, want the child's 3", code)
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("cargo never ran: %v", err)
	}
	if got, want := string(args), "clean --target thumbv7m-none-eabi\n"; got != want {
		t.Errorf("forwarded args = %q, want %q", got, want)
	}
}

func TestRun_ForwardsWithoutSubcommand(t *testing.T) {
	argsFile := newToolchain(t, stableVV, 0)

	if _, err := Run([]string{"--list"}, sysroot.ModeBuild); err != nil {
		t.Fatal(err)
	}
	if _, err := os.ReadFile(argsFile); err != nil {
		t.Fatalf("cargo never ran: %v", err)
	}
}

func TestRun_StableChannelWarnsAndForwards(t *testing.T) {
	argsFile := newToolchain(t, stableVV, 0)

	// A cargo project: on nightly this would try to build a sysroot, which
	// the stub toolchain can't do.
	project := t.TempDir()
	if err := os.WriteFile(filepath.Join(project, "Cargo.toml"),
		[]byte("[package]\nname = \"app\"\nversion = \"0.1.0\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	code, err := Run([]string{"build", "--manifest-path", filepath.Join(project, "Cargo.toml")}, sysroot.ModeBuild)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != 0 {
		t.Errorf("code = %d", code)
	}

	if _, err := os.ReadFile(argsFile); err != nil {
		t.Fatalf("stable channel did not forward to cargo: %v", err)
	}
}

func TestRun_OutsideProjectForwards(t *testing.T) {
	argsFile := newToolchain(t, stableVV, 0)

	// --manifest-path pointing into an empty tree: no Cargo.toml anywhere
	// above, so there is nothing to build a sysroot for.
	empty := t.TempDir()
	code, err := Run([]string{"build", "--manifest-path", filepath.Join(empty, "Cargo.toml")}, sysroot.ModeBuild)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != 0 {
		t.Errorf("code = %d", code)
	}
	if _, err := os.ReadFile(argsFile); err != nil {
		t.Fatalf("cargo never ran: %v", err)
	}
}
