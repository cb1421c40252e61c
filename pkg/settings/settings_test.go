package settings

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/aretw0/tilth/pkg/core"
)

func write(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	r := New()
	if got := r.String(EntriesExtension); got != "md" {
		t.Errorf("extension = %q, want md", got)
	}
	if !r.Bool(CacheEnabled) {
		t.Error("cache should be enabled by default")
	}
	if got := r.String(CacheDriver); got != "memory" {
		t.Errorf("driver = %q, want memory", got)
	}
	for _, name := range FieldNames {
		if !r.Has(FieldEnabled(name)) || r.Bool(FieldEnabled(name)) {
			t.Errorf("field %s should default to disabled", name)
		}
	}
	if r.Has("nope.missing") || r.Get("nope.missing") != nil {
		t.Error("unknown keys should be absent")
	}
}

func TestSet(t *testing.T) {
	r := New()
	r.Set("entries.extension", "markdown")
	r.Set("plugins.site.title", "Hello")

	if got := r.String(EntriesExtension); got != "markdown" {
		t.Errorf("extension = %q", got)
	}
	if got := r.String("plugins.site.title"); got != "Hello" {
		t.Errorf("plugins.site.title = %q", got)
	}
	if got := r.Get("plugins.site"); !reflect.DeepEqual(got, map[string]any{"title": "Hello"}) {
		t.Errorf("plugins.site = %#v", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(dir, "settings.yaml")
		write(t, path, "cache:\n  enabled: false\nentries:\n  fields:\n    uuid:\n      enabled: true\n")

		r := New()
		if err := r.Load(path); err != nil {
			t.Fatalf("Load: %v", err)
		}
		if r.Bool(CacheEnabled) {
			t.Error("cache.enabled should be false")
		}
		if !r.Bool(FieldEnabled("uuid")) || r.Bool(FieldEnabled("title")) {
			t.Error("only the uuid field should be enabled")
		}
		if got := r.String(EntriesExtension); got != "md" {
			t.Errorf("untouched default lost in the merge: extension = %q", got)
		}
	})

	t.Run("JSONC", func(t *testing.T) {
		path := filepath.Join(dir, "settings.jsonc")
		write(t, path, `{
  // entry files are plain text here
  "entries": {"extension": "txt",},
  /* keep caching on disk */
  "cache": {"driver": "disk", "compression": "lz4"},
}`)

		r := New()
		if err := r.Load(path); err != nil {
			t.Fatalf("Load: %v", err)
		}
		for key, want := range map[string]string{
			EntriesExtension: "txt",
			CacheDriver:      "disk",
			CacheCompression: "lz4",
		} {
			if got := r.String(key); got != want {
				t.Errorf("%s = %q, want %q", key, got, want)
			}
		}
		if !r.Bool(CacheEnabled) {
			t.Error("cache.enabled default lost")
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yml")
		write(t, path, "cache: [oops")
		if err := New().Load(path); !errors.Is(err, core.ErrFormat) {
			t.Errorf("Load = %v, want a format error", err)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		path := filepath.Join(dir, "settings.toml")
		write(t, path, "x = 1")
		if err := New().Load(path); err == nil {
			t.Error("Load(.toml) should fail")
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if err := New().Load(filepath.Join(dir, "absent.yaml")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Load = %v, want os.ErrNotExist", err)
		}
	})
}
