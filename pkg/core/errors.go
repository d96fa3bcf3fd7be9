package core

import (
	"errors"
	"fmt"
	"io/fs"
)

// Common errors.
var (
	// ErrFileNotFound matches any IOError caused by a missing file.
	ErrFileNotFound = errors.New("file not found")
)

// ParseError reports malformed input syntax or a value of the wrong shape.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parse error: %v", e.Err)
	}
	return fmt.Sprintf("parse error in %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingFieldError reports an entry without one of its required fields.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("entry %d: missing required field %q", e.Index, e.Field)
}

// IOError reports a failed read or write of one of the pipeline files.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if errors.Is(e.Err, fs.ErrNotExist) {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, ErrFileNotFound)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrFileNotFound) match missing files.
func (e *IOError) Is(target error) bool {
	return target == ErrFileNotFound && errors.Is(e.Err, fs.ErrNotExist)
}

// RenderError reports a template that failed to parse or execute.
type RenderError struct {
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
