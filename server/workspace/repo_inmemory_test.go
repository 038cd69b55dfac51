package workspace_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/materials-admin/apiclient"
	apperrors "github.com/jrsteele09/materials-admin/internal/errors"
	"github.com/jrsteele09/materials-admin/internal/fakeapi"
	"github.com/jrsteele09/materials-admin/server/workspace"
	"github.com/jrsteele09/materials-admin/tokenstore/memstore"
	"github.com/jrsteele09/materials-admin/users"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T, options ...workspace.Option) (*workspace.InMemoryRepo, *memstore.Bucket) {
	t.Helper()
	api := fakeapi.New(t)
	api.AddUser("admin", "admin@example.com", "secret")
	client, err := apiclient.New(api.URL)
	require.NoError(t, err)

	bucket := memstore.NewBucket()
	return workspace.NewInMemoryRepo(client, bucket, options...), bucket
}

func TestCreate_KeepThenFind(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	ws := repo.Create()
	_, err := uuid.Parse(ws.ID)
	require.NoError(t, err)

	_, found := repo.Find(ctx, ws.ID)
	require.False(t, found, "not kept yet")

	repo.Keep(ws)
	again, found := repo.Find(ctx, ws.ID)
	require.True(t, found)
	require.Same(t, ws, again)

	got, err := repo.Get(ws.ID)
	require.NoError(t, err)
	require.Same(t, ws, got)
}

func TestCreate_IDsAreUnique(t *testing.T) {
	repo, _ := newRepo(t)
	require.NotEqual(t, repo.Create().ID, repo.Create().ID)
}

func TestFind_UnknownIDIsNotAdopted(t *testing.T) {
	repo, bucket := newRepo(t)
	ctx := context.Background()

	for _, id := range []string{"", "not-a-uuid", uuid.NewString()} {
		ws, found := repo.Find(ctx, id)
		require.False(t, found, id)
		require.Nil(t, ws, id)
	}
	require.Zero(t, repo.Len())
	require.Zero(t, bucket.Len(), "probing a slot must not leave it behind")
}

func TestFind_ResumesSlotThatHoldsAToken(t *testing.T) {
	repo, bucket := newRepo(t)
	id := uuid.NewString()
	require.NoError(t, bucket.For(id).Set(context.Background(), "persisted"))

	ws, found := repo.Find(context.Background(), id)
	require.True(t, found)
	require.Equal(t, id, ws.ID)
	require.Equal(t, 1, repo.Len())

	tok, err := ws.Tokens().Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "persisted", tok)
}

func TestDelete_ReleasesUnkeptWorkspace(t *testing.T) {
	repo, bucket := newRepo(t)
	ws := repo.Create()
	require.Equal(t, 1, bucket.Len())

	require.NoError(t, repo.Delete(ws.ID))
	require.Zero(t, bucket.Len())
}

func TestWorkspaceSharesTokenSlot(t *testing.T) {
	repo, _ := newRepo(t)
	ws := repo.Create()
	ctx := context.Background()

	require.NoError(t, ws.Session.Login(ctx, users.Credentials{Email: "admin@example.com", Password: "secret"}))
	require.NoError(t, ws.Materials.FetchAll(ctx))
	require.NoError(t, ws.Clients.FetchAll(ctx))
	require.NoError(t, ws.Purchases.FetchAll(ctx))

	require.NoError(t, ws.Session.Logout(ctx))
	require.Error(t, ws.Materials.FetchAll(ctx))
}

func TestWorkspacesAreIsolated(t *testing.T) {
	repo, _ := newRepo(t)
	a := repo.Create()
	b := repo.Create()
	ctx := context.Background()

	require.NoError(t, a.Session.Login(ctx, users.Credentials{Email: "admin@example.com", Password: "secret"}))
	require.True(t, a.Session.IsAuthenticated())
	require.False(t, b.Session.IsAuthenticated())
	require.Error(t, b.Materials.FetchAll(ctx))
}

func TestDelete(t *testing.T) {
	repo, bucket := newRepo(t)
	ws := repo.Create()
	repo.Keep(ws)

	require.NoError(t, repo.Delete(ws.ID))
	_, err := repo.Get(ws.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Zero(t, bucket.Len())
}

func TestIdleWorkspacesAreSwept(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	repo, bucket := newRepo(t,
		workspace.WithIdleTTL(time.Hour),
		workspace.WithNowFunc(func() time.Time { return now }),
	)

	old := repo.Create()
	repo.Keep(old)
	now = now.Add(2 * time.Hour)
	fresh := repo.Create()
	repo.Keep(fresh)

	require.Equal(t, 1, repo.Len())
	_, err := repo.Get(old.ID)
	require.Error(t, err)
	_, err = repo.Get(fresh.ID)
	require.NoError(t, err)
	require.Equal(t, 1, bucket.Len())
}
