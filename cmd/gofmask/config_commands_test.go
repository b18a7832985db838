package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gofmask/internal/config"
	"gofmask/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubFmask())

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigInitSkipsBrokenConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, env.configPath); err != nil {
		t.Fatalf("config init should not load the existing config: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "show"}, env.configPath); err == nil {
		t.Fatal("expected config show to reject invalid logging.format")
	}
}

func TestConfigShowPrintsEffectiveValues(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# "+env.configPath)
	requireContains(t, out, env.cfg.Fmask.MRDir)
}

func TestUpdateToolPaths(t *testing.T) {
	env := setupCLITestEnv(t)
	launcher := filepath.Join(env.baseDir, "Fmask_4_6", "run_Fmask_4_6.sh")
	testsupport.WriteStubFmask(t, launcher)
	runtimeDir := filepath.Join(env.baseDir, "v910")
	if err := os.MkdirAll(runtimeDir, 0o755); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"update-fmask-dir", launcher}, env.configPath)
	if err != nil {
		t.Fatalf("update-fmask-dir: %v", err)
	}
	if strings.TrimSpace(out) != "fmask_dir: "+launcher {
		t.Fatalf("unexpected output %q", out)
	}

	if _, _, err := runCLI(t, []string{"update-mr-dir", runtimeDir}, env.configPath); err != nil {
		t.Fatalf("update-mr-dir: %v", err)
	}

	out, _, err = runCLI(t, []string{"update-mr-dir"}, env.configPath)
	if err != nil {
		t.Fatalf("update-mr-dir without argument: %v", err)
	}
	if strings.TrimSpace(out) != "mr_dir: "+runtimeDir {
		t.Fatalf("unexpected output %q", out)
	}

	cfg, _, _, err := config.Load(env.configPath)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if cfg.Fmask.FmaskDir != launcher || cfg.Fmask.MRDir != runtimeDir {
		t.Fatalf("config not persisted: %+v", cfg.Fmask)
	}
}

func TestUpdateToolPathRejectsMissingPath(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"update-mr-dir", filepath.Join(env.baseDir, "nope")}, env.configPath); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestVersionFlag(t *testing.T) {
	out, _, err := runCLI(t, []string{"--version"}, "")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	requireContains(t, out, version)
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubFmask())
	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "MATLAB Runtime")
	requireContains(t, out, "OK")

	broken := setupCLITestEnv(t)
	out, _, err = runCLI(t, []string{"check"}, broken.configPath)
	if err == nil {
		t.Fatal("expected check to fail without the toolchain")
	}
	requireContains(t, out, "FAIL")
}
