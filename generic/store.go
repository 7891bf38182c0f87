/*
store.go - Persistence contract for the save blob

PURPOSE:
  Defines the interface between the orchestrator and whatever holds the
  save blob. The whole game state is one string value under one key, so
  the contract is a minimal key/value store.

CONTRACT:
  Get:    Returns (value, true, nil) when present, ("", false, nil) when
          absent. Any other failure is an error.
  Set:    Overwrites the value under key.
  Remove: Deletes the key. Removing an absent key is not an error.

IMPLEMENTATIONS:
  - generic/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go: Local file (default)
  - store/postgres/postgres.go: Shared database
  - store/s3/s3.go: Object storage

EXAMPLE:
  raw, ok, err := store.Get(ctx, "marchOfMindSave")
  if err != nil {
      return &SaveError{Key: key, Op: "load", Err: err}
  }
  if !ok {
      // fresh game
  }

SEE ALSO:
  - game/snapshot.go: The blob layout
*/
package generic

import "context"

// =============================================================================
// STORE - Key/value persistence for the save blob
// =============================================================================

type Store interface {
	// Get returns the value under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Absent keys are ignored.
	Remove(ctx context.Context, key string) error
}
