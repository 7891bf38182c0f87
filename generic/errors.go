/*
errors.go - Centralized error types for the simulation core

PURPOSE:
  All error types in one place for consistency and discoverability.
  Game modules and persistence backends wrap these with context.

ERROR CATEGORIES:
  1. Save errors - Blob read/write failures and malformed blobs
  2. Lookup errors - Unknown resource kinds, staff roles, tech items
  3. Config errors - Invalid catalogs and balance files

NOT ERRORS:
  Insufficient funds and invalid state transitions are ordinary outcomes.
  Actions report them by returning false.

USAGE:
    ok, err := g.LoadGame(ctx)
    if errors.Is(err, generic.ErrLoadFailed) {
        // backend unreachable, state untouched
    }

SEE ALSO:
  - store.go: Backends return these errors
  - game/snapshot.go: Save blob encode/decode
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMalformedSave is returned when a blob is not a valid save document.
	ErrMalformedSave = errors.New("malformed save data")

	// ErrLoadFailed is returned when the backend cannot be read.
	ErrLoadFailed = errors.New("load failed")

	// ErrSaveFailed is returned when the backend cannot be written.
	ErrSaveFailed = errors.New("save failed")

	// ErrUnknownResource is returned for a resource kind with no registered spec.
	ErrUnknownResource = errors.New("unknown resource kind")

	// ErrUnknownRole is returned for a staff role id that is not configured.
	ErrUnknownRole = errors.New("unknown staff role")

	// ErrUnknownItem is returned for a tech tree item id absent from the catalog.
	ErrUnknownItem = errors.New("unknown tech item")

	// ErrInvalidPhase is returned when a phase name cannot be parsed.
	ErrInvalidPhase = errors.New("invalid game phase")

	// ErrInvalidConfig is returned when a catalog or balance file fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// SaveError describes a failed backend operation on the save blob.
// errors.Is matches both the operation sentinel and the backend cause.
type SaveError struct {
	Key string
	Op  string // "load", "save" or "remove"
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *SaveError) Unwrap() []error {
	if e.Op == "load" {
		return []error{ErrLoadFailed, e.Err}
	}
	return []error{ErrSaveFailed, e.Err}
}

// LookupError names the id that failed to resolve.
type LookupError struct {
	ID  string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.ID)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// UnknownRole builds a LookupError for a staff role.
func UnknownRole(id string) error { return &LookupError{ID: id, Err: ErrUnknownRole} }

// UnknownItem builds a LookupError for a tech item.
func UnknownItem(id string) error { return &LookupError{ID: id, Err: ErrUnknownItem} }

// ConfigError reports an invalid field in a catalog or balance file.
type ConfigError struct {
	Source string // e.g. "balance.yaml", "techtree.json"
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Source, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error is an unknown id lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownRole) ||
		errors.Is(err, ErrUnknownItem) ||
		errors.Is(err, ErrUnknownResource)
}

// IsClientError returns true if the error was caused by caller input.
func IsClientError(err error) bool {
	return IsNotFound(err) ||
		errors.Is(err, ErrInvalidPhase) ||
		errors.Is(err, ErrMalformedSave)
}
