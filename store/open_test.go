package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/march-of-mind/generic"
	"github.com/warp/march-of-mind/store"
)

func TestOpen_LocalBackends(t *testing.T) {
	ctx := context.Background()
	for _, opts := range []store.Options{
		{Kind: store.KindMemory},
		{Kind: store.KindSQLite, Path: ":memory:"},
	} {
		t.Run(opts.Kind, func(t *testing.T) {
			b, err := store.Open(ctx, opts)
			require.NoError(t, err)
			defer b.Close()

			require.NoError(t, b.Set(ctx, "k", "v"))
			v, ok, err := b.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v", v)
		})
	}
}

func TestOpen_UnknownKind(t *testing.T) {
	_, err := store.Open(context.Background(), store.Options{Kind: "floppy"})
	assert.ErrorIs(t, err, generic.ErrInvalidConfig)
}
