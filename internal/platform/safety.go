package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DevDir is the directory under os.TempDir that sandboxed roots live in.
const DevDir = "tilth-dev"

// IsDevRun reports whether the current process was built by `go run` or
// `go test`. Both place the binary in a temporary directory.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveRoot returns the directory a store should operate on. When
// sandbox is false it is root itself ("." for an empty root). Otherwise a
// root outside the temporary directory is re-rooted under DevDir, keeping
// only its base name.
func ResolveRoot(root string, sandbox bool) string {
	if !sandbox {
		if root == "" {
			return "."
		}
		return root
	}

	clean := filepath.Clean(root)
	if rel, err := filepath.Rel(os.TempDir(), clean); err == nil && filepath.IsAbs(clean) && !strings.HasPrefix(rel, "..") {
		return clean
	}

	name := filepath.Base(clean)
	if root == "" || name == "." || name == string(os.PathSeparator) || name == ".." {
		name = "default"
	}
	return filepath.Join(os.TempDir(), DevDir, name)
}
