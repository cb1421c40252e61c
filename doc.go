// Package tilth is the Composition Root for the tilth entry store.
//
// tilth keeps structured content as a tree of directories: every directory
// below the root that holds an entry file (entry.md by default) is an
// entry, addressed by its slash-separated path. The file is a YAML front
// matter header followed by an opaque body.
//
// Features:
//
//   - **Flat Files**: No database. Entries are plain documents on disk.
//   - **Hooks**: Every operation raises a synchronous notification that
//     listeners may use to rewrite or abort it.
//   - **Caching**: Decoded entries are cached under a key derived from the
//     file path and modification time, in memory or on disk (CBOR with
//     zstd or lz4 compression).
//   - **Fields**: Optional listeners fill uuid, timestamps and titles.
//   - **Typed Retrieval**: Generic wrapper (`NewTyped[T]`) for type-safe
//     access to front matter.
//
// Usage:
//
//	store, err := tilth.New("./content",
//		tilth.WithLogger(logger),
//		tilth.WithFields(fields.UUID),
//	)
//
//	res, err := store.Create(ctx, "blog/hello", tilth.Data{
//		"title":   "Hello",
//		"content": "First post.",
//	})
package tilth
