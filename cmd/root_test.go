package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

const harness = `
metadata: {id: WH-1, title: CLI, revision: A, date: 2024-01-01}
connectors:
  J1: {pincount: 2, manufacturer: Molex, mpn: "43025-0200"}
  J2: {pincount: 2}
  J3: {pincount: 1}
cables:
  W1: {colors: [RD, BK]}
connections:
  - - J1: [1, 2]
    - W1: [1, 2]
    - J2: [1, 2]
`

// run executes the root command with args and returns stdout, stderr and
// the command error. Flag variables are reset first since they outlive a
// single Execute.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	flagOutputDir = "build"
	flagLogFile = false
	flagLogLevel = "debug"
	flagImageDirs = nil
	flagAllowMissingImages = false
	flagStrict = false
	flagVerbose = false
	flagConfig = ""
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) { f.Changed = false })

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeHarness(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "wh1.harness.yml")
	if err := os.WriteFile(path, []byte(harness), 0o644); err != nil {
		t.Fatal(err)
	}
	// an empty config keeps any .wiredoc.yaml in the working directory out
	if err := os.WriteFile(filepath.Join(dir, "none.yaml"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, path
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if strings.TrimSpace(stdout) != "wiredoc v"+toolVersion {
		t.Errorf("version output = %q", stdout)
	}
}

func TestBuildWithWarnings(t *testing.T) {
	dir, path := writeHarness(t)
	out := filepath.Join(dir, "dist")

	_, stderr, err := run(t, "build", path, "--output-dir", out, "--allow-missing-images", "--config", filepath.Join(dir, "none.yaml"))
	if code := exitCode(err); code != 2 {
		t.Fatalf("exit code = %d (%v), want 2\n%s", code, err, stderr)
	}
	if !strings.Contains(stderr, "warning: Connector 'J3' has no connections") {
		t.Errorf("warning not printed:\n%s", stderr)
	}
	for _, name := range []string{"bom.tsv", "wiring_table.tsv", "wireviz.yml", "bom.cdx.json", "topology.json"} {
		if _, err := os.Stat(filepath.Join(out, "WH-1", name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestBuildFailsOnMissingImages(t *testing.T) {
	dir, path := writeHarness(t)

	_, stderr, err := run(t, "build", path, "-o", filepath.Join(dir, "dist"), "--config", filepath.Join(dir, "none.yaml"))
	if code := exitCode(err); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "missing images") {
		t.Errorf("missing image error not printed:\n%s", stderr)
	}
}

func TestBuildNoMatches(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, "build", filepath.Join(dir, "*.yml"))
	if err == nil || !strings.Contains(err.Error(), "no matching files") {
		t.Errorf("err = %v, want no matching files", err)
	}
}

func TestLint(t *testing.T) {
	dir, path := writeHarness(t)
	cfg := filepath.Join(dir, "none.yaml")

	_, stderr, err := run(t, "lint", path, "--config", cfg)
	if err != nil {
		t.Fatalf("lint failed: %v", err)
	}
	if !strings.Contains(stderr, "Validation passed with 1 warning(s)") {
		t.Errorf("unexpected lint output:\n%s", stderr)
	}

	_, _, err = run(t, "lint", path, "--strict", "--config", cfg)
	if code := exitCode(err); code != 1 {
		t.Errorf("strict lint exit code = %d, want 1", code)
	}
}

func TestLintParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(path, []byte("connectors: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(dir, "none.yaml")
	if err := os.WriteFile(cfg, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := run(t, "lint", path, "--config", cfg)
	if code := exitCode(err); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "✗ "+path) {
		t.Errorf("failure not reported:\n%s", stderr)
	}
}

func TestImages(t *testing.T) {
	dir, path := writeHarness(t)
	imgDir := filepath.Join(dir, "img")
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(imgDir, "Molex_43025_0200.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := run(t, "images", path, "--image-dir", imgDir, "--config", filepath.Join(dir, "none.yaml"))
	if err != nil {
		t.Fatalf("images failed: %v", err)
	}
	if !strings.Contains(stdout, "J1\t"+filepath.Join(imgDir, "Molex_43025_0200.png")) {
		t.Errorf("J1 not resolved:\n%s", stdout)
	}
	if !strings.Contains(stdout, "J2\tmissing\tPN_J2.png") {
		t.Errorf("J2 not reported missing:\n%s", stdout)
	}
}
