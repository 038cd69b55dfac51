package redisstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/materials-admin/tokenstore"
	"github.com/jrsteele09/materials-admin/tokenstore/redisstore"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	require.Equal(t, "materials-admin:token:abc", redisstore.Key("abc"))
}

// TestStore needs a reachable Redis; set REDIS_ADDR to run it.
func TestStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()

	client, err := redisstore.Connect(ctx, addr, os.Getenv("REDIS_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	s := redisstore.New(client, uuid.NewString(), time.Minute)
	t.Cleanup(func() { _ = s.Clear(ctx) })

	_, err = s.Get(ctx)
	require.ErrorIs(t, err, tokenstore.ErrNoToken)

	require.NoError(t, s.Set(ctx, "T"))
	tok, err := s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "T", tok)

	require.NoError(t, s.Clear(ctx))
	_, err = s.Get(ctx)
	require.ErrorIs(t, err, tokenstore.ErrNoToken)
}

func TestSlots(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()

	client, err := redisstore.Connect(ctx, addr, os.Getenv("REDIS_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	slots := redisstore.NewSlots(client, time.Minute)
	id := uuid.NewString()
	require.NoError(t, slots.For(id).Set(ctx, "T"))

	// A second handle for the same id sees the same token.
	tok, err := slots.For(id).Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "T", tok)

	slots.Forget(id)
	_, err = slots.For(id).Get(ctx)
	require.ErrorIs(t, err, tokenstore.ErrNoToken)
}
