package memstore_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/materials-admin/tokenstore"
	"github.com/jrsteele09/materials-admin/tokenstore/memstore"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	_, err := s.Get(ctx)
	require.ErrorIs(t, err, tokenstore.ErrNoToken)

	present, err := tokenstore.Present(ctx, s)
	require.NoError(t, err)
	require.False(t, present)

	require.NoError(t, s.Set(ctx, "T"))
	tok, err := s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "T", tok)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))
	_, err = s.Get(ctx)
	require.ErrorIs(t, err, tokenstore.ErrNoToken)
}

func TestBucket(t *testing.T) {
	ctx := context.Background()
	b := memstore.NewBucket()

	a := b.For("a")
	require.NoError(t, a.Set(ctx, "token-a"))
	require.Same(t, a, b.For("a"))

	_, err := b.For("b").Get(ctx)
	require.ErrorIs(t, err, tokenstore.ErrNoToken)
	require.Equal(t, 2, b.Len())

	b.Forget("a")
	require.Equal(t, 1, b.Len())
	_, err = b.For("a").Get(ctx)
	require.ErrorIs(t, err, tokenstore.ErrNoToken)
}
