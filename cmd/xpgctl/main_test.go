package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunSingleAxp(t *testing.T) {
	stdout, stderr := newPipe(t), newPipe(t)
	code := run([]string{"../../examples/fixtures/s1.xpg"}, stdout, stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, readAll(t, stderr))
	}
	out := readAll(t, stdout)
	if !strings.Contains(out, "AXp: f0") {
		t.Fatalf("stdout = %q, want it to contain \"AXp: f0\"", out)
	}
}

func TestRunEnumerate(t *testing.T) {
	stdout, stderr := newPipe(t), newPipe(t)
	code := run([]string{"--all", "../../examples/fixtures/s2.xpg"}, stdout, stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, readAll(t, stderr))
	}
	out := readAll(t, stdout)
	if strings.Count(out, "AXp:") != 1 {
		t.Fatalf("stdout = %q, want exactly one AXp line", out)
	}
	if strings.Count(out, "CXp:") != 3 {
		t.Fatalf("stdout = %q, want exactly three CXp lines", out)
	}
}

func TestRunMissingFile(t *testing.T) {
	stdout, stderr := newPipe(t), newPipe(t)
	code := run([]string{"does-not-exist.xpg"}, stdout, stderr)
	if code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
}

func TestRunBadArgCount(t *testing.T) {
	stdout, stderr := newPipe(t), newPipe(t)
	code := run([]string{}, stdout, stderr)
	if code != 2 {
		t.Fatalf("exit code %d, want 2", code)
	}
}

func newPipe(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "xpgctl-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func readAll(t *testing.T, f *os.File) string {
	t.Helper()
	path := f.Name()
	f.Sync()
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}
