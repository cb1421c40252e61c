package tilth

import (
	"log/slog"

	"github.com/aretw0/tilth/internal/platform"
	"github.com/aretw0/tilth/pkg/core"
	"github.com/aretw0/tilth/pkg/entries"
	"github.com/aretw0/tilth/pkg/events"
	"github.com/aretw0/tilth/pkg/fields"
)

// --- Types ---

// Store is the entry store returned by New.
type Store = entries.Store

// Data is the decoded form of an entry.
type Data = core.Data

// Collection maps entry ids to their data.
type Collection = core.Collection

// Result is the outcome of a write operation.
type Result = core.Result

// --- Configuration ---

// Option defines a functional option for configuring a store.
type Option = platform.Option

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithFileSystem replaces the local disk with another core.FileSystem.
func WithFileSystem(fs core.FileSystem) Option {
	return platform.WithFileSystem(fs)
}

// WithDispatcher shares a listener dispatcher with the store.
func WithDispatcher(d *events.Dispatcher) Option {
	return platform.WithDispatcher(d)
}

// WithSettingsFile loads a YAML or JSONC settings file.
func WithSettingsFile(path string) Option {
	return platform.WithSettingsFile(path)
}

// WithSetting overrides a single dotted settings key.
func WithSetting(key string, value any) Option {
	return platform.WithSetting(key, value)
}

// WithExtension sets the extension of entry files.
func WithExtension(ext string) Option {
	return platform.WithExtension(ext)
}

// WithCache selects the cache driver ("memory", "disk" or "none").
func WithCache(driver string) Option {
	return platform.WithCache(driver)
}

// WithCacheDir sets the directory of the disk cache.
func WithCacheDir(dir string) Option {
	return platform.WithCacheDir(dir)
}

// WithCompression sets the disk cache compression.
func WithCompression(name string) Option {
	return platform.WithCompression(name)
}

// WithStrict decodes numbers as json.Number.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithFields enables field listeners by name.
func WithFields(names ...string) Option {
	return platform.WithFields(names...)
}

// WithFieldOptions configures the field listeners.
func WithFieldOptions(opts ...fields.Option) Option {
	return platform.WithFieldOptions(opts...)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the root directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// --- Factory ---

// New creates an entry store rooted at root.
func New(root string, opts ...Option) (*Store, error) {
	return platform.New(root, opts...)
}

// NewLegacy wraps a store with the boolean / empty-map outcome shim.
func NewLegacy(s *Store) *entries.Legacy {
	return entries.NewLegacy(s)
}

// --- Safety & Utils ---

// ResolveRoot determines the actual root directory based on safety rules.
func ResolveRoot(root string, sandbox bool) string {
	return platform.ResolveRoot(root, sandbox)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot recursively looks upwards for a directory holding a tilth
// settings file or a .tilth directory.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// SettingsFile returns the settings file found in dir, or "".
func SettingsFile(dir string) string {
	return platform.SettingsFile(dir)
}
