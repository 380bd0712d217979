package cargo

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	config, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config != nil {
		t.Fatal("LoadConfig() = non-nil for a dir without .cargo/config")
	}
}

func TestLoadConfig_SearchesUpward(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".cargo", "config"), "[build]\ntarget = \"thumbv6m-none-eabi\"\n")

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(nested)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config == nil {
		t.Fatal("LoadConfig() = nil, want config found in ancestor")
	}
	if config.Dir != root {
		t.Errorf("Dir = %q, want %q", config.Dir, root)
	}
	if config.Target() != "thumbv6m-none-eabi" {
		t.Errorf("Target() = %q", config.Target())
	}
}

func TestLoadConfig_ConfigToml(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".cargo", "config.toml"), "[build]\ntarget = \"t1\"\n")

	config, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config == nil || config.Target() != "t1" {
		t.Fatalf("config.toml not picked up: %+v", config)
	}
}

func TestLoadRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), `
[package]
name = "app"
version = "0.1.0"

[profile.release]
panic = "abort"
`)

	nested := filepath.Join(root, "src")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	r, err := LoadRoot(nested)
	if err != nil {
		t.Fatalf("LoadRoot() error = %v", err)
	}
	if r == nil {
		t.Fatal("LoadRoot() = nil")
	}
	if r.Dir != root {
		t.Errorf("Dir = %q, want %q", r.Dir, root)
	}

	profile := r.Profile()
	if profile == nil {
		t.Fatal("Profile() = nil")
	}
	release, ok := profile["release"].(map[string]interface{})
	if !ok || release["panic"] != "abort" {
		t.Errorf("profile.release = %#v", profile["release"])
	}
}

func TestFlags_Precedence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".cargo", "config"), `
[build]
rustflags = ["--cfg", "from_build"]

[target.custom-triple]
rustflags = ["--cfg", "from_target"]
`)
	config, err := LoadConfig(root)
	if err != nil {
		t.Fatal(err)
	}

	// t.Setenv registers the restore; the test needs the variable absent.
	t.Setenv("RUSTFLAGS", "")
	os.Unsetenv("RUSTFLAGS")

	// target.<triple> wins over build.
	flags := Rustflags(config, "custom-triple")
	if flags.Origin != OriginTarget {
		t.Errorf("Origin = %v, want OriginTarget", flags.Origin)
	}
	if len(flags.List) != 2 || flags.List[1] != "from_target" {
		t.Errorf("List = %v", flags.List)
	}

	// build applies for other triples.
	flags = Rustflags(config, "other-triple")
	if flags.Origin != OriginBuild {
		t.Errorf("Origin = %v, want OriginBuild", flags.Origin)
	}

	// The environment wins wholesale.
	t.Setenv("RUSTFLAGS", "--cfg from_env")
	flags = Rustflags(config, "custom-triple")
	if flags.Origin != OriginEnv {
		t.Errorf("Origin = %v, want OriginEnv", flags.Origin)
	}
	if len(flags.List) != 2 || flags.List[0] != "--cfg" || flags.List[1] != "from_env" {
		t.Errorf("List = %v", flags.List)
	}
}

func TestFlags_NoSources(t *testing.T) {
	t.Setenv("RUSTFLAGS", "")
	os.Unsetenv("RUSTFLAGS")

	flags := Rustflags(nil, "any")
	if flags.Origin != OriginNone {
		t.Errorf("Origin = %v, want OriginNone", flags.Origin)
	}
	if got := flags.WithSysroot("/home/user/.xargo"); got != "--sysroot=/home/user/.xargo" {
		t.Errorf("WithSysroot() = %q", got)
	}
}

func TestFlags_WithSysrootPreservesOrder(t *testing.T) {
	flags := Flags{Tool: "rustflags", Origin: OriginEnv, List: []string{"--cfg", "xargo"}}
	if got := flags.WithSysroot("/x"); got != "--cfg xargo --sysroot=/x" {
		t.Errorf("WithSysroot() = %q", got)
	}
}

func TestCanonicalProfile_DropsLto(t *testing.T) {
	with, err := CanonicalProfile(map[string]interface{}{
		"release": map[string]interface{}{"lto": true, "panic": "abort"},
	})
	if err != nil {
		t.Fatal(err)
	}
	without, err := CanonicalProfile(map[string]interface{}{
		"release": map[string]interface{}{"panic": "abort"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if with != without {
		t.Errorf("lto changed the canonical profile:\n%q\nvs\n%q", with, without)
	}
}

func TestCanonicalProfile_LtoOnlyIsEmpty(t *testing.T) {
	got, err := CanonicalProfile(map[string]interface{}{
		"release": map[string]interface{}{"lto": true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("CanonicalProfile() = %q, want empty", got)
	}
}

func TestCanonicalProfile_SensitiveToSettings(t *testing.T) {
	abort, err := CanonicalProfile(map[string]interface{}{
		"release": map[string]interface{}{"panic": "abort"},
	})
	if err != nil {
		t.Fatal(err)
	}
	unwind, err := CanonicalProfile(map[string]interface{}{
		"release": map[string]interface{}{"panic": "unwind"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if abort == unwind {
		t.Error("panic setting did not change the canonical profile")
	}
}

func TestNeedsSysroot(t *testing.T) {
	needs := []Subcommand{"build", "check", "clippy", "doc", "run", "rustc", "rustdoc", "test", "bench"}
	for _, s := range needs {
		if !s.NeedsSysroot() {
			t.Errorf("%s.NeedsSysroot() = false", s)
		}
	}

	skips := []Subcommand{"clean", "init", "new", "update", "search", "publish", "metadata", "some-plugin"}
	for _, s := range skips {
		if s.NeedsSysroot() {
			t.Errorf("%s.NeedsSysroot() = true", s)
		}
	}
}
