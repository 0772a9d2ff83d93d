package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverBasic(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "main.go"), "package main\n")
	write(t, filepath.Join(dir, "app.py"), "def main(): pass\n")

	files, err := Discover(context.Background(), dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 python file, got %d: %+v", len(files), files)
	}
	if files[0].RelPath != "app.py" {
		t.Errorf("expected app.py, got %s", files[0].RelPath)
	}
}

func TestDiscoverSkipsNonSourceDirs(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "pkg", "a.py"), "x = 1\n")
	write(t, filepath.Join(dir, ".venv", "lib", "b.py"), "x = 2\n")
	write(t, filepath.Join(dir, "__pycache__", "c.py"), "x = 3\n")

	files, err := Discover(context.Background(), dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 || files[0].RelPath != "pkg/a.py" {
		t.Fatalf("expected only pkg/a.py, got %+v", files)
	}
}

func TestDiscoverHonorsGitignore(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, ".gitignore"), "generated/\n")
	write(t, filepath.Join(dir, "pkg", "a.py"), "x = 1\n")
	write(t, filepath.Join(dir, "generated", "b.py"), "x = 2\n")

	files, err := Discover(context.Background(), dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 || files[0].RelPath != "pkg/a.py" {
		t.Fatalf("expected only pkg/a.py, got %+v", files)
	}
}

func TestDiscoverSorted(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "z.py"), "")
	write(t, filepath.Join(dir, "a.py"), "")
	write(t, filepath.Join(dir, "m.py"), "")

	files, err := Discover(context.Background(), dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"a.py", "m.py", "z.py"}
	for i, w := range want {
		if files[i].RelPath != w {
			t.Errorf("index %d: expected %s, got %s", i, w, files[i].RelPath)
		}
	}
}
