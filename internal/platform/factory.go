// Package platform is the composition root of tilth: it turns functional
// options into a fully wired entries.Store.
package platform

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/tilth/pkg/cache"
	"github.com/aretw0/tilth/pkg/core"
	"github.com/aretw0/tilth/pkg/entries"
	"github.com/aretw0/tilth/pkg/events"
	"github.com/aretw0/tilth/pkg/fields"
	"github.com/aretw0/tilth/pkg/serializer/frontmatter"
	"github.com/aretw0/tilth/pkg/serializer/yaml"
	"github.com/aretw0/tilth/pkg/settings"
)

// New wires a store rooted at root:
//
//	store, err := tilth.New("./content", tilth.WithCache("disk"))
//
// Settings are the defaults, then the settings file, then explicit options.
func New(root string, opts ...Option) (*entries.Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	reg := settings.New()
	if o.settingsFile != "" {
		if err := reg.Load(o.settingsFile); err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
	}
	for key, value := range o.overrides {
		reg.Set(key, value)
	}

	path, err := resolve(root, o, logger)
	if err != nil {
		return nil, err
	}

	backend, err := newBackend(reg, o.readOnly, logger)
	if err != nil {
		return nil, err
	}
	var facade *cache.Facade
	if backend != nil {
		facade = cache.New(backend, reg, logger)
	}

	header := yaml.New(facade)
	header.Strict = o.strict
	codec := frontmatter.New(header, facade)

	dispatcher := o.dispatcher
	if dispatcher == nil {
		dispatcher = events.New()
	}
	fields.New(o.fieldOpts...).Register(dispatcher, reg)

	return entries.New(entries.Config{
		Root:      path,
		Extension: o.extension,
		FS:        o.fs,
		Cache:     facade,
		Codec:     codec,
		Settings:  reg,
		Events:    dispatcher,
		Logger:    logger,
		ReadOnly:  o.readOnly,
	}), nil
}

// resolve applies the dev sandbox and makes sure the root exists.
func resolve(root string, o *options, logger *slog.Logger) (string, error) {
	bypass := o.readOnly || !o.devSafety
	sandbox := o.forceTemp || (IsDevRun() && !bypass)
	path := ResolveRoot(root, sandbox)

	if IsDevRun() {
		switch {
		case sandbox:
			logger.Debug("running in SAFE mode (dev sandbox enabled)", "original_path", root, "path", path)
		case o.readOnly:
			logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", path)
		default:
			logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", path)
		}
	}

	if o.fs != nil {
		return path, nil
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return "", fmt.Errorf("root %s is not a directory", path)
	case err == nil:
		return path, nil
	case !os.IsNotExist(err):
		return "", fmt.Errorf("failed to stat root: %w", err)
	case o.mustExist:
		return "", fmt.Errorf("root %s does not exist", path)
	case o.readOnly:
		return path, nil
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create root: %w", err)
	}
	return path, nil
}

// newBackend builds the cache backend named by the settings. A disabled
// cache yields nil.
func newBackend(reg *settings.Registry, readOnly bool, logger *slog.Logger) (core.CacheBackend, error) {
	if !reg.Bool(settings.CacheEnabled) {
		return nil, nil
	}

	switch driver := reg.String(settings.CacheDriver); driver {
	case "", "memory":
		return cache.NewMemory(), nil
	case "disk":
		if readOnly {
			logger.Debug("read-only mode, using memory cache instead of disk")
			return cache.NewMemory(), nil
		}
		compression, err := cache.ParseCompression(reg.String(settings.CacheCompression))
		if err != nil {
			return nil, err
		}
		dir := reg.String(settings.CacheDir)
		if dir == "" {
			dir = DefaultCacheDir()
		}
		return cache.NewDisk(dir, compression, logger)
	default:
		return nil, fmt.Errorf("unknown cache driver: %q", driver)
	}
}

// DefaultCacheDir returns the user cache directory for tilth, falling back
// to the temporary directory.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "tilth")
}
