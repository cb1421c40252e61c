package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrRootNotFound is returned by FindRoot when no marker is found.
var ErrRootNotFound = errors.New("root not found")

// SettingsFiles are the settings file names recognised at a root, in
// lookup order.
var SettingsFiles = []string{"tilth.yaml", "tilth.yml", "tilth.jsonc", "tilth.json"}

// FindRoot walks upwards from startDir looking for a directory that holds
// a settings file or a .tilth directory, and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ".tilth") || SettingsFile(dir) != "" {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

// SettingsFile returns the path of the first settings file in dir, or "".
func SettingsFile(dir string) string {
	for _, name := range SettingsFiles {
		if hasFile(dir, name) {
			return filepath.Join(dir, name)
		}
	}
	return ""
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
