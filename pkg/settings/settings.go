// Package settings is the configuration registry read by every tilth
// component. Values live in a nested map and are addressed by dotted keys
// such as "entries.extension".
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/tilth/pkg/core"
)

// Well-known keys.
const (
	EntriesExtension = "entries.extension"
	CacheEnabled     = "cache.enabled"
	CacheDriver      = "cache.driver"
	CacheDir         = "cache.dir"
	CacheCompression = "cache.compression"
)

// FieldNames lists the built-in entry fields that can be toggled with
// "entries.fields.<name>.enabled".
var FieldNames = []string{"created_by", "created_at", "modified_at", "uuid", "title"}

// FieldEnabled returns the settings key toggling the named field.
func FieldEnabled(name string) string {
	return "entries.fields." + name + ".enabled"
}

// Defaults returns a fresh copy of the built-in settings.
func Defaults() map[string]any {
	fields := make(map[string]any, len(FieldNames))
	for _, name := range FieldNames {
		fields[name] = map[string]any{"enabled": false}
	}
	return map[string]any{
		"entries": map[string]any{
			"extension": "md",
			"fields":    fields,
		},
		"cache": map[string]any{
			"enabled":     true,
			"driver":      "memory",
			"dir":         "",
			"compression": "zstd",
		},
	}
}

// Registry is a concurrency-safe settings tree.
type Registry struct {
	mu   sync.RWMutex
	data map[string]any
}

// New creates a registry seeded with Defaults.
func New() *Registry {
	return &Registry{data: Defaults()}
}

var _ core.Settings = (*Registry)(nil)

// Get returns the value at key, or nil.
func (r *Registry) Get(key string) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, _ := core.Lookup(r.data, key)
	return v
}

// Has reports whether key is set.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := core.Lookup(r.data, key)
	return ok
}

// Set writes v at key, creating intermediate maps.
func (r *Registry) Set(key string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	core.Assign(r.data, key, v)
}

// String returns the value at key formatted as a string, or "" when unset.
func (r *Registry) String(key string) string {
	switch v := r.Get(key).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns the value at key when it is a boolean, and false otherwise.
func (r *Registry) Bool(key string) bool {
	b, _ := r.Get(key).(bool)
	return b
}

// Merge deep-merges values over the registry. Nested maps are merged key
// by key; any other value replaces what was there.
func (r *Registry) Merge(values map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	merge(r.data, values)
}

// Load merges the settings file at path over the registry. The format is
// picked from the extension: .yaml and .yml are YAML, .json and .jsonc are
// JSON with comments and trailing commas allowed.
func (r *Registry) Load(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	values, err := Parse(raw, filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	r.Merge(values)
	return nil
}

// Parse decodes settings text in the format named by ext.
func Parse(raw []byte, ext string) (map[string]any, error) {
	values := make(map[string]any)
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &values); err != nil {
			return nil, &core.FormatError{Format: "yaml", Op: "decode", Err: err}
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(raw), &values); err != nil {
			return nil, &core.FormatError{Format: "json", Op: "decode", Err: err}
		}
	default:
		return nil, fmt.Errorf("unsupported settings format %q", ext)
	}
	return values, nil
}

func merge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				merge(existing, sub)
				continue
			}
			fresh := make(map[string]any, len(sub))
			merge(fresh, sub)
			dst[k] = fresh
			continue
		}
		dst[k] = v
	}
}
