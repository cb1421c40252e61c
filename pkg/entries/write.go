package entries

import (
	"context"
	"fmt"

	"github.com/aretw0/tilth/pkg/core"
)

// writable validates id for a write: it must not be the root.
func (s *Store) writable(id string) (string, error) {
	if s.config.ReadOnly {
		return "", core.ErrReadOnly
	}
	clean, err := CleanID(id)
	if err != nil {
		return "", err
	}
	if clean == "" {
		return "", fmt.Errorf("%w: the entries root is not an entry", core.ErrInvalidID)
	}
	return clean, nil
}

// Create writes a new entry. It fails with PreconditionFailed when the
// entry directory or file already exists, including when a concurrent
// Create wins the race for the directory.
func (s *Store) Create(ctx context.Context, id string, data core.Data) (core.Result, error) {
	s.count(core.OpCreate)
	clean, err := s.writable(id)
	if err != nil {
		return core.Result{}, err
	}

	op := &core.Operation{Kind: core.OpCreate, ID: clean, Data: data.Clone()}
	if err := s.emit(ctx, core.EventEntryCreate, op); err != nil {
		return core.Result{}, err
	}
	if clean, err = s.writable(op.ID); err != nil {
		return core.Result{}, err
	}

	body, err := s.codec.Encode(op.Data)
	if err != nil {
		return core.Result{}, fmt.Errorf("entry %q: %w", clean, err)
	}

	dir := s.DirectoryLocation(clean)
	if s.fs.DirectoryExists(dir) {
		return core.PreconditionFailed("entry directory already exists"), nil
	}
	created, err := s.fs.CreateDirectory(dir)
	if err != nil {
		return core.Result{}, fmt.Errorf("create entry %q: %w", clean, err)
	}
	if !created {
		return core.PreconditionFailed("entry directory was created concurrently"), nil
	}

	file := s.FileLocation(clean)
	if s.fs.FileExists(file) {
		return core.PreconditionFailed("entry file already exists"), nil
	}
	if err := s.fs.WriteFile(file, []byte(body)); err != nil {
		return core.Result{}, fmt.Errorf("create entry %q: %w", clean, err)
	}

	s.logger.Debug("entry created", "id", clean)
	return core.Success(), nil
}

// Update shallow-merges data over the stored entry and writes it back.
// Keys in data replace existing ones; nested values are not merged.
func (s *Store) Update(ctx context.Context, id string, data core.Data) (core.Result, error) {
	s.count(core.OpUpdate)
	clean, err := s.writable(id)
	if err != nil {
		return core.Result{}, err
	}

	op := &core.Operation{Kind: core.OpUpdate, ID: clean, Data: data.Clone()}
	if err := s.emit(ctx, core.EventEntryUpdate, op); err != nil {
		return core.Result{}, err
	}
	if clean, err = s.writable(op.ID); err != nil {
		return core.Result{}, err
	}

	file := s.FileLocation(clean)
	if !s.fs.FileExists(file) {
		return core.NotFound("entry file does not exist"), nil
	}

	raw, err := s.fs.ReadFile(file)
	if err != nil {
		return core.Result{}, fmt.Errorf("update entry %q: %w", clean, err)
	}
	current, err := s.codec.Decode(string(raw), true)
	if err != nil {
		return core.Result{}, fmt.Errorf("entry %q: %w", clean, err)
	}

	body, err := s.codec.Encode(current.Merge(op.Data))
	if err != nil {
		return core.Result{}, fmt.Errorf("entry %q: %w", clean, err)
	}
	if err := s.fs.WriteFile(file, []byte(body)); err != nil {
		return core.Result{}, fmt.Errorf("update entry %q: %w", clean, err)
	}

	s.logger.Debug("entry updated", "id", clean)
	return core.Success(), nil
}

// Delete removes the entry directory and everything below it, nested
// entries included.
func (s *Store) Delete(ctx context.Context, id string) (core.Result, error) {
	s.count(core.OpDelete)
	clean, err := s.writable(id)
	if err != nil {
		return core.Result{}, err
	}

	op := &core.Operation{Kind: core.OpDelete, ID: clean}
	if err := s.emit(ctx, core.EventEntryDelete, op); err != nil {
		return core.Result{}, err
	}
	if clean, err = s.writable(op.ID); err != nil {
		return core.Result{}, err
	}

	dir := s.DirectoryLocation(clean)
	if !s.fs.DirectoryExists(dir) {
		return core.NotFound("entry directory does not exist"), nil
	}
	deleted, err := s.fs.DeleteDirectory(dir)
	if err != nil {
		return core.Result{}, fmt.Errorf("delete entry %q: %w", clean, err)
	}
	if !deleted {
		return core.NotFound("entry directory disappeared"), nil
	}

	s.logger.Debug("entry deleted", "id", clean)
	return core.Success(), nil
}

// Move renames the entry directory of id to newID. The parent of newID
// must already exist.
func (s *Store) Move(ctx context.Context, id, newID string) (core.Result, error) {
	return s.relocate(ctx, core.OpMove, core.EventEntryMove, id, newID)
}

// Copy duplicates the entry directory of id, nested entries included, at
// newID.
func (s *Store) Copy(ctx context.Context, id, newID string) (core.Result, error) {
	return s.relocate(ctx, core.OpCopy, core.EventEntryCopy, id, newID)
}

func (s *Store) relocate(ctx context.Context, kind core.OperationKind, event core.EventName, id, newID string) (core.Result, error) {
	s.count(kind)
	from, err := s.writable(id)
	if err != nil {
		return core.Result{}, err
	}
	to, err := s.writable(newID)
	if err != nil {
		return core.Result{}, err
	}

	op := &core.Operation{Kind: kind, ID: from, NewID: to}
	if err := s.emit(ctx, event, op); err != nil {
		return core.Result{}, err
	}
	if from, err = s.writable(op.ID); err != nil {
		return core.Result{}, err
	}
	if to, err = s.writable(op.NewID); err != nil {
		return core.Result{}, err
	}

	if s.has(ctx, to) || s.fs.DirectoryExists(s.DirectoryLocation(to)) {
		return core.PreconditionFailed("destination already exists"), nil
	}
	src := s.DirectoryLocation(from)
	if !s.fs.DirectoryExists(src) {
		return core.NotFound("source entry does not exist"), nil
	}

	var ok bool
	if kind == core.OpMove {
		ok, err = s.fs.MoveDirectory(src, s.DirectoryLocation(to))
	} else {
		ok, err = s.fs.CopyDirectory(src, s.DirectoryLocation(to))
	}
	if err != nil {
		return core.Result{}, fmt.Errorf("%s entry %q to %q: %w", kind, from, to, err)
	}
	if !ok {
		return core.PreconditionFailed("destination cannot accommodate the entry"), nil
	}

	s.logger.Debug("entry relocated", "op", string(kind), "id", from, "new_id", to)
	return core.Success(), nil
}
