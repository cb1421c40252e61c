// Package cache is the content-addressable layer in front of a generic
// key-value backend. Every caller derives keys through Key or FileKey so
// identical inputs map to identical keys regardless of call site.
package cache

import (
	"encoding/hex"
	"log/slog"
	"strconv"
	"time"

	"github.com/zeebo/blake3"

	"github.com/aretw0/tilth/pkg/core"
)

// EnabledSetting is the settings key that turns caching on or off globally.
const EnabledSetting = "cache.enabled"

// Key fingerprints raw input. The tag keeps caches of different kinds
// (e.g. "yaml" and "frontmatter") from colliding on the same input.
func Key(tag, input string) string {
	sum := blake3.Sum256([]byte(tag + input))
	return hex.EncodeToString(sum[:])
}

// FileKey fingerprints a file-backed value by tag, path and modification
// time. When the mtime is unknown (ok == false) it contributes "".
func FileKey(tag, path string, mtime time.Time, ok bool) string {
	stamp := ""
	if ok {
		stamp = strconv.FormatInt(mtime.UnixNano(), 10)
	}
	return Key(tag, path+stamp)
}

// Facade is a pass-through to a core.CacheBackend. A nil *Facade, or one
// without a backend, behaves as an always-empty cache.
type Facade struct {
	backend  core.CacheBackend
	settings core.Settings
	logger   *slog.Logger
}

// New creates a Facade. settings may be nil, in which case caching is
// enabled whenever a backend is present.
func New(backend core.CacheBackend, settings core.Settings, logger *slog.Logger) *Facade {
	return &Facade{backend: backend, settings: settings, logger: logger}
}

// Enabled reports whether the facade has a backend and the global
// cache.enabled setting is not false.
func (f *Facade) Enabled() bool {
	if f == nil || f.backend == nil {
		return false
	}
	if f.settings == nil {
		return true
	}
	if v, ok := f.settings.Get(EnabledSetting).(bool); ok {
		return v
	}
	return true
}

// Has reports whether key is present.
func (f *Facade) Has(key string) bool {
	if f == nil || f.backend == nil {
		return false
	}
	return f.backend.Has(key)
}

// Get returns the value stored at key.
func (f *Facade) Get(key string) (any, bool) {
	if f == nil || f.backend == nil {
		return nil, false
	}
	return f.backend.Get(key)
}

// Set stores value at key. Backend failures are logged and dropped: the
// cache is an accelerator, never the source of truth.
func (f *Facade) Set(key string, value any) {
	if f == nil || f.backend == nil {
		return
	}
	if err := f.backend.Set(key, value); err != nil && f.logger != nil {
		f.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// GetData returns the value at key as core.Data. Backends that serialise
// values hand back plain maps, which are converted here.
func (f *Facade) GetData(key string) (core.Data, bool) {
	v, ok := f.Get(key)
	if !ok {
		return nil, false
	}
	switch d := v.(type) {
	case core.Data:
		return d, true
	case map[string]any:
		return core.Data(d), true
	default:
		return nil, false
	}
}
