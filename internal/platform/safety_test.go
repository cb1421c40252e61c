package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveRoot(t *testing.T) {
	t.Parallel()

	tempRoot := os.TempDir()
	devBase := filepath.Join(tempRoot, DevDir)

	tests := []struct {
		name     string
		root     string
		sandbox  bool
		expected string
	}{
		{name: "Normal Mode - Empty", root: "", sandbox: false, expected: "."},
		{name: "Normal Mode - Specific Path", root: "/srv/content", sandbox: false, expected: "/srv/content"},
		{name: "Sandbox - Empty Path", root: "", sandbox: true, expected: filepath.Join(devBase, "default")},
		{name: "Sandbox - Current Dir", root: ".", sandbox: true, expected: filepath.Join(devBase, "default")},
		{name: "Sandbox - Relative Name", root: "content", sandbox: true, expected: filepath.Join(devBase, "content")},
		{name: "Sandbox - Traversal", root: "../bad/path", sandbox: true, expected: filepath.Join(devBase, "path")},
		{name: "Sandbox - Parent Only", root: "..", sandbox: true, expected: filepath.Join(devBase, "default")},
		{name: "Sandbox - Already In Temp", root: filepath.Join(tempRoot, "my-test"), sandbox: true, expected: filepath.Join(tempRoot, "my-test")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRoot(tt.root, tt.sandbox)
			if got != tt.expected {
				t.Errorf("ResolveRoot(%q, %v) = %q; want %q", tt.root, tt.sandbox, got, tt.expected)
			}
		})
	}
}

func TestIsDevRun(t *testing.T) {
	if !IsDevRun() {
		t.Errorf("IsDevRun() = false; want true inside go test")
	}
}
