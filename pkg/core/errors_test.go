package core

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestIOErrorMatchesFileNotFound(t *testing.T) {
	err := fmt.Errorf("stage: %w", &IOError{Op: "read", Path: "summaries.yml", Err: fs.ErrNotExist})

	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected wrapped fs.ErrNotExist")
	}

	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Path != "summaries.yml" {
		t.Errorf("errors.As failed: %v", err)
	}
}

func TestIOErrorPermission(t *testing.T) {
	err := &IOError{Op: "write", Path: "index.html", Err: fs.ErrPermission}
	if errors.Is(err, ErrFileNotFound) {
		t.Errorf("permission error must not match ErrFileNotFound")
	}
}

func TestMissingFieldErrorMessage(t *testing.T) {
	err := &MissingFieldError{Index: 2, Field: "url"}
	want := `entry 2: missing required field "url"`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestRecordHasTag(t *testing.T) {
	r := Record{Tags: []string{"nutrition", "cold"}}
	if !r.HasTag("cold") {
		t.Errorf("expected tag cold")
	}
	if r.HasTag("flu") {
		t.Errorf("unexpected tag flu")
	}
}
