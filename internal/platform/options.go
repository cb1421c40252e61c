package platform

import (
	"log/slog"

	"github.com/aretw0/tilth/pkg/core"
	"github.com/aretw0/tilth/pkg/events"
	"github.com/aretw0/tilth/pkg/fields"
	"github.com/aretw0/tilth/pkg/settings"
)

// options holds the internal configuration for a tilth store.
type options struct {
	logger       *slog.Logger
	fs           core.FileSystem
	dispatcher   *events.Dispatcher
	settingsFile string
	overrides    map[string]any
	extension    string
	strict       bool
	readOnly     bool
	devSafety    bool
	forceTemp    bool
	mustExist    bool
	fieldOpts    []fields.Option
}

// Option defines a functional option for configuring a store.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		overrides: make(map[string]any),
		devSafety: true,
	}
}

// WithLogger sets the logger for the store and its collaborators.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFileSystem replaces the local disk with another core.FileSystem
// (e.g. an in-memory fake in tests).
func WithFileSystem(fs core.FileSystem) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithDispatcher shares a dispatcher with the caller so it can register
// its own listeners. By default a private dispatcher is created.
func WithDispatcher(d *events.Dispatcher) Option {
	return func(o *options) {
		o.dispatcher = d
	}
}

// WithSettingsFile loads a YAML or JSONC settings file over the defaults.
// Options applied explicitly still win over the file.
func WithSettingsFile(path string) Option {
	return func(o *options) {
		o.settingsFile = path
	}
}

// WithSetting overrides a single dotted settings key.
func WithSetting(key string, value any) Option {
	return func(o *options) {
		o.overrides[key] = value
	}
}

// WithExtension sets the extension of entry files (without the dot).
func WithExtension(ext string) Option {
	return func(o *options) {
		o.extension = ext
	}
}

// WithCache selects the cache driver: "memory", "disk" or "none".
func WithCache(driver string) Option {
	return func(o *options) {
		if driver == "none" {
			o.overrides[settings.CacheEnabled] = false
			return
		}
		o.overrides[settings.CacheEnabled] = true
		o.overrides[settings.CacheDriver] = driver
	}
}

// WithCacheDir sets the directory of the disk cache. Setting it implies
// the disk driver.
func WithCacheDir(dir string) Option {
	return func(o *options) {
		o.overrides[settings.CacheDriver] = "disk"
		o.overrides[settings.CacheDir] = dir
	}
}

// WithCompression sets the disk cache compression: "none", "lz4" or "zstd".
func WithCompression(name string) Option {
	return func(o *options) {
		o.overrides[settings.CacheCompression] = name
	}
}

// WithStrict makes the YAML codec decode every number as json.Number to
// preserve the precision of large integers.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithFields enables the given field listeners (e.g. fields.UUID) on top
// of whatever the settings already enable.
func WithFields(names ...string) Option {
	return func(o *options) {
		for _, name := range names {
			o.overrides[settings.FieldEnabled(name)] = true
		}
	}
}

// WithFieldOptions configures the field listeners, typically to inject a
// clock or an id generator.
func WithFieldOptions(opts ...fields.Option) Option {
	return func(o *options) {
		o.fieldOpts = append(o.fieldOpts, opts...)
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Write operations return core.ErrReadOnly.
// 2. The root directory is never created.
// 3. The disk cache is replaced by an in-memory one.
// 4. The dev safety sandbox is bypassed (uses the real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or
// `go test`. By default the root is moved into a temporary directory so a
// development build never writes to real content.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithForceTemp forces the sandbox even outside development runs.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithMustExist fails when the root directory does not exist instead of
// creating it.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}
