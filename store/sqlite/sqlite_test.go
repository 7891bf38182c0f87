package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/march-of-mind/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, ok, err := s.Get(ctx, "marchOfMindSave")
	require.NoError(t, err)
	assert.False(t, ok, "absent key")

	require.NoError(t, s.Set(ctx, "marchOfMindSave", `{"v":1}`))
	require.NoError(t, s.Set(ctx, "marchOfMindSave", `{"v":2}`))

	v, ok, err := s.Get(ctx, "marchOfMindSave")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"v":2}`, v, "second write overwrites")

	require.NoError(t, s.Remove(ctx, "marchOfMindSave"))
	require.NoError(t, s.Remove(ctx, "marchOfMindSave"), "removing an absent key is fine")
	_, ok, err = s.Get(ctx, "marchOfMindSave")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	// GIVEN: A file-backed store with one save
	// WHEN: The store is closed and reopened
	// THEN: The save is still there

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "march.db")

	s, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Close())

	s, err = sqlite.New(path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestStore_CanceledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Get(ctx, "k")
	assert.Error(t, err)
}
