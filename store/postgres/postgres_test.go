package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/march-of-mind/store/postgres"
)

// Runs against a live database only when MOM_POSTGRES_DSN is set.
func TestStore_GetSetRemove(t *testing.T) {
	dsn := os.Getenv("MOM_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MOM_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	s, err := postgres.New(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	key := "test_" + t.Name()
	t.Cleanup(func() { _ = s.Remove(ctx, key) })

	_, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, key, "a"))
	require.NoError(t, s.Set(ctx, key, "b"))
	v, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	require.NoError(t, s.Remove(ctx, key))
	_, ok, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNew_RequiresDSN(t *testing.T) {
	_, err := postgres.New(context.Background(), "")
	assert.Error(t, err)
}
