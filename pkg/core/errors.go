package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrReadOnly  = errors.New("store is in read-only mode")
	ErrInvalidID = errors.New("invalid entry id")
	ErrFormat    = errors.New("malformed structured text")
	ErrAborted   = errors.New("operation aborted by listener")
)

// FormatError reports structured text that could not be parsed or emitted.
// It wraps the diagnostic of the underlying parser.
type FormatError struct {
	Format string // "yaml", "frontmatter"
	Op     string // "decode", "encode"
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.Format, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFormat) true for every FormatError.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }
