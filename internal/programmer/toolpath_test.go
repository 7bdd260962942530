package programmer

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTool(t *testing.T, dir string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, toolExeName())
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveToolFile(t *testing.T) {
	tool := writeTool(t, t.TempDir())
	if got := ResolveTool(tool); got != tool {
		t.Errorf("ResolveTool(%q) = %q, want unchanged", tool, got)
	}
}

func TestResolveToolInstallDir(t *testing.T) {
	root := t.TempDir()
	tool := writeTool(t, filepath.Join(root, "bin"))
	if got := ResolveTool(root); got != tool {
		t.Errorf("ResolveTool(%q) = %q, want %q", root, got, tool)
	}
}

func TestResolveToolBinDir(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "bin")
	tool := writeTool(t, bin)
	if got := ResolveTool(bin); got != tool {
		t.Errorf("ResolveTool(%q) = %q, want %q", bin, got, tool)
	}
}

func TestResolveToolUnknown(t *testing.T) {
	empty := t.TempDir()
	if got := ResolveTool(empty); got != empty {
		t.Errorf("ResolveTool(%q) = %q, want unchanged", empty, got)
	}
	missing := filepath.Join(empty, "nope")
	if got := ResolveTool(missing); got != missing {
		t.Errorf("ResolveTool(%q) = %q, want unchanged", missing, got)
	}
}
