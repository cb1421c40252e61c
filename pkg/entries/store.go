// Package entries is the entry store: it maps entry ids to directories
// below a root, reads and writes the front-matter document each directory
// holds, enumerates collections and caches decoded entries.
//
// Every operation raises a notification through the configured
// core.Emitter before it touches the filesystem. Listeners receive the
// operation's transient state and may rewrite it.
package entries

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tilth/pkg/adapters/fs"
	"github.com/aretw0/tilth/pkg/cache"
	"github.com/aretw0/tilth/pkg/core"
	"github.com/aretw0/tilth/pkg/serializer/frontmatter"
	"github.com/aretw0/tilth/pkg/serializer/yaml"
	"github.com/aretw0/tilth/pkg/settings"
)

// CacheTag prefixes the fingerprint of file-backed entries.
const CacheTag = "entry"

// DefaultExtension is used when neither the config nor the settings name
// one.
const DefaultExtension = "md"

// Config holds the collaborators of a Store.
type Config struct {
	// Root is the entries directory.
	Root string
	// Extension overrides the "entries.extension" setting.
	Extension string
	FS        core.FileSystem
	Cache     *cache.Facade
	Codec     *frontmatter.Codec
	Settings  core.Settings
	Events    core.Emitter
	Logger    *slog.Logger
	ReadOnly  bool
}

// Store implements the entry operations over a core.FileSystem.
type Store struct {
	Root string

	fs       core.FileSystem
	cache    *cache.Facade
	codec    *frontmatter.Codec
	settings core.Settings
	events   core.Emitter
	logger   *slog.Logger
	config   Config

	mu            sync.RWMutex
	counts        map[core.OperationKind]uint64
	watcherActive bool
	lastChange    *time.Time
}

// New creates a Store. Missing collaborators get defaults: the local disk,
// the default settings, no cache and no listeners.
func New(config Config) *Store {
	if config.FS == nil {
		config.FS = fs.NewLocal(config.Logger)
	}
	if config.Settings == nil {
		config.Settings = settings.New()
	}
	if config.Codec == nil {
		config.Codec = frontmatter.New(yaml.New(config.Cache), config.Cache)
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	return &Store{
		Root:     config.Root,
		fs:       config.FS,
		cache:    config.Cache,
		codec:    config.Codec,
		settings: config.Settings,
		events:   config.Events,
		logger:   config.Logger,
		config:   config,
		counts:   make(map[core.OperationKind]uint64),
	}
}

// Extension returns the extension of entry files, without the dot.
func (s *Store) Extension() string {
	if s.config.Extension != "" {
		return s.config.Extension
	}
	if ext, ok := s.settings.Get(settings.EntriesExtension).(string); ok && ext != "" {
		return ext
	}
	return DefaultExtension
}

// Filename returns the name of the document file inside an entry
// directory.
func (s *Store) Filename() string {
	return "entry." + s.Extension()
}

// count records one call of a public operation.
func (s *Store) count(kind core.OperationKind) {
	s.mu.Lock()
	s.counts[kind]++
	s.mu.Unlock()
}

func (s *Store) emit(ctx context.Context, event core.EventName, op *core.Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.events == nil {
		return nil
	}
	return s.events.Emit(ctx, event, op)
}

// Fetch returns the entry at id, or the collection below it when
// asCollection is true. A single entry is returned as a one-element
// collection keyed by id, or an empty one when absent.
func (s *Store) Fetch(ctx context.Context, id string, asCollection bool, filter core.Filter) (core.Collection, error) {
	if asCollection {
		return s.FetchCollection(ctx, id, filter)
	}
	data, err := s.FetchSingle(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return core.Collection{}, nil
	}
	clean, _ := CleanID(id)
	return core.Collection{clean: data}, nil
}

// FetchSingle returns the decoded entry at id. An absent or unreadable
// entry yields an empty Data and no error; malformed documents yield a
// *core.FormatError.
func (s *Store) FetchSingle(ctx context.Context, id string) (core.Data, error) {
	s.count(core.OpFetchSingle)
	return s.fetchSingle(ctx, id)
}

func (s *Store) fetchSingle(ctx context.Context, id string) (core.Data, error) {
	clean, err := CleanID(id)
	if err != nil {
		return nil, err
	}

	op := &core.Operation{Kind: core.OpFetchSingle, ID: clean}
	if err := s.emit(ctx, core.EventEntryInitialized, op); err != nil {
		return nil, err
	}
	if op.Result != nil {
		return op.Result, nil
	}
	if clean, err = CleanID(op.ID); err != nil {
		return nil, err
	}

	key := s.CacheKey(clean)
	if key != "" {
		if data, ok := s.cache.GetData(key); ok {
			op.Data = data.DeepClone()
			if err := s.emit(ctx, core.EventEntryAfterCacheInitialized, op); err != nil {
				return nil, err
			}
			return op.Data, nil
		}
	}

	if !s.has(ctx, clean) {
		return core.Data{}, nil
	}

	path := s.FileLocation(clean)
	raw, err := s.fs.ReadFile(path)
	if err != nil {
		s.logger.Warn("failed to read entry", "id", clean, "path", path, "error", err)
		return core.Data{}, nil
	}

	data, err := s.codec.Decode(string(raw), true)
	if err != nil {
		return nil, fmt.Errorf("entry %q: %w", clean, err)
	}
	op.Data = data

	if err := s.emit(ctx, core.EventEntryAfterInitialized, op); err != nil {
		return nil, err
	}

	if key != "" && s.cacheable(op.Data) {
		s.cache.Set(key, op.Data.DeepClone())
	}
	return op.Data, nil
}

// cacheable honours a per-entry "cache.enabled" field, falling back to the
// global setting.
func (s *Store) cacheable(data core.Data) bool {
	if v, ok := core.Lookup(data, cache.EnabledSetting); ok {
		if enabled, isBool := v.(bool); isBool {
			return enabled
		}
	}
	return s.cache.Enabled()
}

// FetchCollection returns every entry below id, keyed by id relative to
// the root, after applying filter. A missing directory yields an empty
// collection.
func (s *Store) FetchCollection(ctx context.Context, id string, filter core.Filter) (core.Collection, error) {
	s.count(core.OpFetchCollection)
	clean, err := CleanID(id)
	if err != nil {
		return nil, err
	}

	op := &core.Operation{
		Kind:       core.OpFetchCollection,
		ID:         clean,
		Filter:     filter,
		Collection: core.Collection{},
	}
	if err := s.emit(ctx, core.EventEntriesInitialized, op); err != nil {
		return nil, err
	}
	if clean, err = CleanID(op.ID); err != nil {
		return nil, err
	}

	dir := s.DirectoryLocation(clean)
	items, err := s.fs.ListContents(dir)
	if err != nil {
		s.logger.Warn("failed to list entries", "id", clean, "path", dir, "error", err)
		return op.Collection, nil
	}

	name := s.Filename()
	for _, item := range items {
		if item.Type != core.TypeFile || item.Filename != name {
			continue
		}
		entryID, ok := s.relativeID(item.Path)
		if !ok {
			continue
		}
		data, err := s.fetchSingle(ctx, entryID)
		if err != nil {
			return nil, err
		}
		op.Collection[entryID] = data
	}

	if len(op.Collection) == 0 {
		return op.Collection, nil
	}

	if op.Filter != nil {
		op.Collection = op.Filter(op.Collection)
	}
	if err := s.emit(ctx, core.EventEntriesAfterInitialized, op); err != nil {
		return nil, err
	}

	s.logger.Debug("fetched collection", "id", clean, "count", len(op.Collection))
	return op.Collection, nil
}

// Has reports whether the entry file of id exists.
func (s *Store) Has(ctx context.Context, id string) bool {
	s.count(core.OpHas)
	return s.has(ctx, id)
}

func (s *Store) has(ctx context.Context, id string) bool {
	clean, err := CleanID(id)
	if err != nil {
		return false
	}
	op := &core.Operation{Kind: core.OpHas, ID: clean}
	if err := s.emit(ctx, core.EventEntryHas, op); err != nil {
		s.logger.Debug("has aborted", "id", clean, "error", err)
		return false
	}
	if clean, err = CleanID(op.ID); err != nil {
		return false
	}
	return s.fs.FileExists(s.FileLocation(clean))
}
