package types

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by the catalog matches exactly one of
// these with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("recipe not found")
	ErrPersistence = errors.New("persistence failed")
)

// Field validation errors, wrapped by ValidationError.
var (
	ErrInvalidID          = errors.New("invalid recipe ID")
	ErrDuplicateID        = errors.New("recipe ID already in use")
	ErrInvalidName        = errors.New("name must not be empty")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidIngredients = errors.New("ingredients must not be empty")
	ErrInvalidSteps       = errors.New("steps must not be empty")
	ErrInvalidSelector    = errors.New("invalid category selector")
)

// Blob format errors, wrapped by PersistenceError.
var (
	ErrForeignFormat  = errors.New("unrecognized blob format")
	ErrMalformedEntry = errors.New("malformed entry")
)

// ValidationError reports a user-supplied field that is empty or outside its
// allowed values. Callers block the action and re-prompt.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is reports ValidationError as ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a mutation that referenced an identifier no recipe
// carries, usually a stale reference held by the caller.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("recipe %q not found", e.ID)
}

// Is reports NotFoundError as ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Blob names. Each backend persists exactly these two blobs.
const (
	BlobRecipes   = "recipes"
	BlobFavorites = "favorites"
)

// PersistenceError reports a failed read or write of one persisted blob.
// Op is "load" or "save".
type PersistenceError struct {
	Op   string
	Blob string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Blob, e.Err)
	}
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Blob, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is reports PersistenceError as ErrPersistence.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// FailedBlobs returns the names of the blobs that err reports as failed.
// err may be a single PersistenceError or an errors.Join of several.
func FailedBlobs(err error) map[string]bool {
	failed := make(map[string]bool)
	collectFailedBlobs(err, failed)
	return failed
}

func collectFailedBlobs(err error, failed map[string]bool) {
	switch e := err.(type) {
	case nil:
		return
	case *PersistenceError:
		failed[e.Blob] = true
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			collectFailedBlobs(inner, failed)
		}
	case interface{ Unwrap() error }:
		collectFailedBlobs(e.Unwrap(), failed)
	}
}
