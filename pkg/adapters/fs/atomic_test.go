package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	doc := []byte("---\ntitle: Atomic\n---\nBody")

	t.Run("Writes Entry Document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "entry.md")
		if err := WriteFileAtomic(path, doc, 0644); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back: %v", err)
		}
		if string(got) != string(doc) {
			t.Errorf("content = %q, want %q", got, doc)
		}
	})

	t.Run("Replaces Previous Revision", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "entry.md")
		if err := os.WriteFile(path, []byte("---\ntitle: Old\n---\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := WriteFileAtomic(path, doc, 0644); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}

		got, _ := os.ReadFile(path)
		if strings.Contains(string(got), "Old") {
			t.Errorf("old revision survived: %q", got)
		}
	})

	t.Run("Applies Permissions", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("unix permissions")
		}
		path := filepath.Join(t.TempDir(), "entry.md")
		if err := WriteFileAtomic(path, doc, 0600); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("perm = %o, want 600", perm)
		}
	})

	t.Run("Leaves No Scratch Files", func(t *testing.T) {
		dir := t.TempDir()
		if err := WriteFileAtomic(filepath.Join(dir, "entry.md"), doc, 0644); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}

		names, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range names {
			if strings.HasPrefix(n.Name(), TempFilePrefix) {
				t.Errorf("scratch file left behind: %s", n.Name())
			}
		}
		if len(names) != 1 {
			t.Errorf("expected only entry.md, got %v", names)
		}
	})

	t.Run("Requires Parent Directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "entry.md")
		if err := WriteFileAtomic(path, doc, 0644); err == nil {
			t.Error("expected an error when the entry directory is missing")
		}
	})
}
