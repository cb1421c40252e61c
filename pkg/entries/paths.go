package entries

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/aretw0/tilth/pkg/cache"
	"github.com/aretw0/tilth/pkg/core"
)

// CleanID normalises a slash-delimited entry id. Surrounding slashes are
// dropped and "." or ".." segments resolved; an id that resolves outside
// the root is rejected with core.ErrInvalidID. The root itself is "".
func CleanID(id string) (string, error) {
	id = strings.Trim(strings.ReplaceAll(id, `\`, "/"), "/")
	if id == "" {
		return "", nil
	}
	clean := path.Clean(id)
	if clean == "." {
		return "", nil
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q escapes the entries root", core.ErrInvalidID, id)
	}
	return clean, nil
}

// DirectoryLocation returns the directory of the entry id.
func (s *Store) DirectoryLocation(id string) string {
	return filepath.Join(s.Root, filepath.FromSlash(id))
}

// FileLocation returns the document file of the entry id.
func (s *Store) FileLocation(id string) string {
	return filepath.Join(s.DirectoryLocation(id), s.Filename())
}

// CacheKey returns the fingerprint under which the decoded entry is
// cached: the entry path plus its modification time, so any write that
// changes the mtime changes the key. It is "" when caching is disabled.
func (s *Store) CacheKey(id string) string {
	if !s.cache.Enabled() {
		return ""
	}
	file := s.FileLocation(id)
	mtime, ok := s.fs.LastModified(file)
	return cache.FileKey(CacheTag, file, mtime, ok)
}

// relativeID turns the directory of a listed entry file into an id.
func (s *Store) relativeID(dir string) (string, bool) {
	rel, err := filepath.Rel(s.Root, filepath.FromSlash(dir))
	if err != nil {
		return "", false
	}
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if rel == "." {
		return "", true
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}
