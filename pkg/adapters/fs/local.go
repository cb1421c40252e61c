// Package fs implements the filesystem collaborator of the entry store on
// top of the local disk.
package fs

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/tilth/pkg/core"
)

// Local implements core.FileSystem with the os package.
type Local struct {
	FileMode os.FileMode
	DirMode  os.FileMode
	Logger   *slog.Logger
}

// NewLocal creates a Local filesystem with 0644 files and 0755 directories.
func NewLocal(logger *slog.Logger) *Local {
	return &Local{FileMode: 0644, DirMode: 0755, Logger: logger}
}

var _ core.FileSystem = (*Local)(nil)

func (l *Local) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (l *Local) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile replaces path atomically. The parent directory must exist.
func (l *Local) WriteFile(path string, data []byte) error {
	return WriteFileAtomic(path, data, l.FileMode)
}

func (l *Local) DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// CreateDirectory creates missing parents, then the leaf with a single
// mkdir so that of two racing callers exactly one reports true.
func (l *Local) CreateDirectory(path string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), l.DirMode); err != nil {
		return false, fmt.Errorf("failed to create parent directories: %w", err)
	}
	if err := os.Mkdir(path, l.DirMode); err != nil {
		if errors.Is(err, iofs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create directory: %w", err)
	}
	return true, nil
}

func (l *Local) DeleteDirectory(path string) (bool, error) {
	if !l.DirectoryExists(path) {
		return false, nil
	}
	if err := os.RemoveAll(path); err != nil {
		return false, fmt.Errorf("failed to delete directory: %w", err)
	}
	return true, nil
}

// MoveDirectory renames from to to. It refuses to overwrite an existing
// destination and reports false when the parent of to does not exist.
func (l *Local) MoveDirectory(from, to string) (bool, error) {
	if !l.DirectoryExists(from) {
		return false, nil
	}
	if _, err := os.Stat(to); err == nil {
		return false, nil
	}
	if isWithin(from, to) {
		return false, nil
	}
	if !l.DirectoryExists(filepath.Dir(to)) {
		return false, nil
	}
	if err := os.Rename(from, to); err != nil {
		return false, fmt.Errorf("failed to move directory: %w", err)
	}
	return true, nil
}

// CopyDirectory copies the tree at from into to. An existing destination,
// a missing source, or a destination nested in the source yields false.
func (l *Local) CopyDirectory(from, to string) (bool, error) {
	if !l.DirectoryExists(from) {
		return false, nil
	}
	if _, err := os.Stat(to); err == nil {
		return false, nil
	}
	if isWithin(from, to) {
		return false, nil
	}

	err := filepath.WalkDir(from, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(from, path)
		if err != nil {
			return err
		}
		target := filepath.Join(to, rel)

		if d.IsDir() {
			return os.MkdirAll(target, l.DirMode)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
	if err != nil {
		return false, fmt.Errorf("failed to copy directory: %w", err)
	}
	return true, nil
}

// ListContents walks path recursively. A missing path yields no items.
func (l *Local) ListContents(path string) ([]core.FileInfo, error) {
	if !l.DirectoryExists(path) {
		return nil, nil
	}

	var items []core.FileInfo
	err := filepath.WalkDir(path, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			if l.Logger != nil {
				l.Logger.Warn("skipping unreadable path", "path", p, "error", err)
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == path {
			return nil
		}
		if strings.HasPrefix(d.Name(), TempFilePrefix) {
			return nil
		}

		typ := core.TypeFile
		if d.IsDir() {
			typ = core.TypeDirectory
		} else if !d.Type().IsRegular() {
			return nil
		}

		items = append(items, core.FileInfo{
			Path:     filepath.ToSlash(filepath.Dir(p)),
			Filename: d.Name(),
			Type:     typ,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (l *Local) LastModified(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// isWithin reports whether child is parent itself or nested inside it.
func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(child))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
