package core

import "time"

// FileType distinguishes listing items.
type FileType string

const (
	TypeFile      FileType = "file"
	TypeDirectory FileType = "dir"
)

// FileInfo describes one item returned by FileSystem.ListContents.
type FileInfo struct {
	// Path is the directory holding the item, slash separated.
	Path     string
	Filename string
	Type     FileType
}

// FileSystem is the storage collaborator of the entry store.
// Implementations report expected absence through booleans; errors are
// reserved for failures the caller should see.
type FileSystem interface {
	FileExists(path string) bool
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	DirectoryExists(path string) bool
	// CreateDirectory creates path and any missing parents. It returns
	// false when path already exists.
	CreateDirectory(path string) (bool, error)
	DeleteDirectory(path string) (bool, error)
	// MoveDirectory renames from to to. It returns false when to exists or
	// its parent does not.
	MoveDirectory(from, to string) (bool, error)
	// CopyDirectory copies from recursively. A (false, nil) result means
	// nothing was copied and no cause was reported.
	CopyDirectory(from, to string) (bool, error)
	// ListContents returns every item below path, recursively.
	ListContents(path string) ([]FileInfo, error)
	// LastModified returns the modification time of path, and false when
	// it cannot be determined.
	LastModified(path string) (time.Time, bool)
}

// CacheBackend is the generic key-value store behind the cache facade.
type CacheBackend interface {
	Has(key string) bool
	Contains(key string) bool
	Get(key string) (any, bool)
	Fetch(key string) (any, bool)
	Set(key string, value any) error
	Save(key string, value any) error
}

// Settings is a read-only view over nested configuration addressed by
// dotted keys (e.g. "entries.extension").
type Settings interface {
	Get(key string) any
}
