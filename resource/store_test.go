package resource_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/materials-admin/apiclient"
	apperrors "github.com/jrsteele09/materials-admin/internal/errors"
	"github.com/jrsteele09/materials-admin/internal/fakeapi"
	"github.com/jrsteele09/materials-admin/resource"
	"github.com/jrsteele09/materials-admin/tokenstore/memstore"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

func (w widget) RecordID() int64 { return w.ID }

var fullEndpoint = resource.Endpoint{
	Name:         "widgets",
	Path:         "/widgets",
	Capabilities: resource.CanUpdate | resource.CanRemove,
	Messages: resource.Messages{
		Fetch:  "Failed to fetch widgets",
		Add:    "Failed to add widget",
		Update: "Failed to update widget",
		Remove: "Failed to delete widget",
	},
}

type fixture struct {
	api   *fakeapi.Server
	store *resource.Store[widget]
}

func newFixture(t *testing.T, endpoint resource.Endpoint) fixture {
	t.Helper()
	api := fakeapi.New(t)
	token := api.IssueToken(api.AddUser("admin", "admin@example.com", "secret"))

	client, err := apiclient.New(api.URL)
	require.NoError(t, err)

	return fixture{
		api:   api,
		store: resource.New[widget](client, memstore.NewWithToken(token), endpoint),
	}
}

func TestFetchAll_ReplacesList(t *testing.T) {
	f := newFixture(t, fullEndpoint)
	f.api.Seed("widgets", map[string]any{"name": "a"}, map[string]any{"name": "b"})
	ctx := context.Background()

	require.NoError(t, f.store.FetchAll(ctx))
	require.Equal(t, []widget{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}, f.store.Items())

	f.api.Seed("widgets", map[string]any{"name": "c"})
	require.NoError(t, f.store.FetchAll(ctx))
	require.Len(t, f.store.Items(), 3)
	require.False(t, f.store.Loading())
	require.Empty(t, f.store.Err())
}

func TestFetchAll_EmptyCollection(t *testing.T) {
	f := newFixture(t, fullEndpoint)

	require.NoError(t, f.store.FetchAll(context.Background()))
	require.NotNil(t, f.store.Items())
	require.Empty(t, f.store.Items())
}

func TestFetchAll_FailureKeepsList(t *testing.T) {
	f := newFixture(t, fullEndpoint)
	f.api.Seed("widgets", map[string]any{"name": "a"})
	ctx := context.Background()
	require.NoError(t, f.store.FetchAll(ctx))

	f.api.FailNext(http.MethodGet, "/widgets", http.StatusInternalServerError, "")
	err := f.store.FetchAll(ctx)
	require.Error(t, err)
	require.True(t, apiclient.IsKind(err, apiclient.KindServer))

	require.Equal(t, []widget{{ID: 1, Name: "a"}}, f.store.Items())
	require.Equal(t, "Failed to fetch widgets", f.store.Err())
	require.False(t, f.store.Loading())
}

func TestFetchAll_UsesServerMessage(t *testing.T) {
	f := newFixture(t, fullEndpoint)
	f.api.FailNext(http.MethodGet, "/widgets", http.StatusServiceUnavailable, "Maintenance")

	require.Error(t, f.store.FetchAll(context.Background()))
	require.Equal(t, "Maintenance", f.store.Err())
}

func TestErrorClearedOnNextCall(t *testing.T) {
	f := newFixture(t, fullEndpoint)
	ctx := context.Background()

	f.api.FailNext(http.MethodGet, "/widgets", http.StatusInternalServerError, "")
	require.Error(t, f.store.FetchAll(ctx))
	require.NotEmpty(t, f.store.Err())

	require.NoError(t, f.store.FetchAll(ctx))
	require.Empty(t, f.store.Err())
}

func TestAdd_AppendsServerRecord(t *testing.T) {
	f := newFixture(t, fullEndpoint)
	f.api.Seed("widgets", map[string]any{"name": "a"})
	ctx := context.Background()
	require.NoError(t, f.store.FetchAll(ctx))

	created, err := f.store.Add(ctx, widget{Name: "b"})
	require.NoError(t, err)
	require.Equal(t, widget{ID: 2, Name: "b"}, created)
	require.Equal(t, []widget{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}, f.store.Items())
	require.Len(t, f.api.Items("widgets"), 2)
}

func TestAdd_FailureLeavesListUnchanged(t *testing.T) {
	f := newFixture(t, fullEndpoint)
	f.api.FailNext(http.MethodPost, "/widgets", http.StatusBadRequest, "name is required")

	_, err := f.store.Add(context.Background(), widget{})
	require.Error(t, err)
	require.Empty(t, f.store.Items())
	require.Equal(t, "name is required", f.store.Err())
}

func TestAdd_EmptyResponseDoesNotAppend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)
	client, err := apiclient.New(srv.URL)
	require.NoError(t, err)
	store := resource.New[widget](client, memstore.NewWithToken("T"), fullEndpoint)

	_, err = store.Add(context.Background(), widget{Name: "x"})
	require.True(t, apiclient.IsKind(err, apiclient.KindDecode))
	require.Empty(t, store.Items())
	require.Equal(t, "Failed to add widget", store.Err())
}

func TestUpdate_ReplacesMatchingItem(t *testing.T) {
	f := newFixture(t, fullEndpoint)
	f.api.Seed("widgets", map[string]any{"name": "a"}, map[string]any{"name": "b"})
	ctx := context.Background()
	require.NoError(t, f.store.FetchAll(ctx))

	updated, err := f.store.Update(ctx, 2, widget{ID: 2, Name: "bee"})
	require.NoError(t, err)
	require.Equal(t, widget{ID: 2, Name: "bee"}, updated)
	require.Equal(t, []widget{{ID: 1, Name: "a"}, {ID: 2, Name: "bee"}}, f.store.Items())
}

func TestUpdate_UnknownLocalIDDoesNotInsert(t *testing.T) {
	f := newFixture(t, fullEndpoint)
	// The server knows the item but this store never fetched it.
	f.api.Seed("widgets", map[string]any{"name": "a"})

	_, err := f.store.Update(context.Background(), 1, widget{ID: 1, Name: "z"})
	require.NoError(t, err)
	require.Empty(t, f.store.Items())
}

func TestUpdate_FailureKeepsItem(t *testing.T) {
	f := newFixture(t, fullEndpoint)
	f.api.Seed("widgets", map[string]any{"name": "a"})
	ctx := context.Background()
	require.NoError(t, f.store.FetchAll(ctx))

	f.api.FailNext(http.MethodPut, "/widgets/1", http.StatusInternalServerError, "")
	_, err := f.store.Update(ctx, 1, widget{ID: 1, Name: "z"})
	require.Error(t, err)
	require.Equal(t, []widget{{ID: 1, Name: "a"}}, f.store.Items())
	require.Equal(t, "Failed to update widget", f.store.Err())
}

func TestRemove_DropsItem(t *testing.T) {
	f := newFixture(t, fullEndpoint)
	f.api.Seed("widgets", map[string]any{"name": "a"}, map[string]any{"name": "b"})
	ctx := context.Background()
	require.NoError(t, f.store.FetchAll(ctx))

	require.NoError(t, f.store.Remove(ctx, 1))
	require.Equal(t, []widget{{ID: 2, Name: "b"}}, f.store.Items())
	_, found := f.store.Find(1)
	require.False(t, found)
}

func TestRemove_FailureKeepsItem(t *testing.T) {
	f := newFixture(t, fullEndpoint)
	f.api.Seed("widgets", map[string]any{"name": "a"})
	ctx := context.Background()
	require.NoError(t, f.store.FetchAll(ctx))

	f.api.FailNext(http.MethodDelete, "/widgets/1", http.StatusForbidden, "")
	err := f.store.Remove(ctx, 1)
	require.True(t, apiclient.IsKind(err, apiclient.KindAuth))
	require.Len(t, f.store.Items(), 1)
	require.Equal(t, "Failed to delete widget", f.store.Err())
}

func TestUnsupportedOperations(t *testing.T) {
	readOnly := fullEndpoint
	readOnly.Capabilities = 0
	f := newFixture(t, readOnly)
	ctx := context.Background()

	_, err := f.store.Update(ctx, 1, widget{ID: 1})
	require.ErrorIs(t, err, apperrors.ErrUnsupported)
	require.ErrorIs(t, f.store.Remove(ctx, 1), apperrors.ErrUnsupported)

	require.Zero(t, f.api.CallCount(http.MethodPut, "/widgets/1"))
	require.Zero(t, f.api.CallCount(http.MethodDelete, "/widgets/1"))
	require.Empty(t, f.store.Err())
}

func TestMissingTokenFailsWithoutCall(t *testing.T) {
	api := fakeapi.New(t)
	client, err := apiclient.New(api.URL)
	require.NoError(t, err)
	store := resource.New[widget](client, memstore.New(), fullEndpoint)

	err = store.FetchAll(context.Background())
	require.True(t, apiclient.IsKind(err, apiclient.KindAuth))
	require.ErrorIs(t, err, apperrors.ErrNoToken)
	require.Equal(t, "Failed to fetch widgets", store.Err())
	require.Empty(t, api.Calls())
}

func TestRevokedTokenReportsServerMessage(t *testing.T) {
	f := newFixture(t, fullEndpoint)
	f.api.RevokeAll()

	err := f.store.FetchAll(context.Background())
	require.True(t, apiclient.IsKind(err, apiclient.KindAuth))
	require.Equal(t, "Unauthorized", f.store.Err())
}

func TestItemsReturnsCopy(t *testing.T) {
	f := newFixture(t, fullEndpoint)
	f.api.Seed("widgets", map[string]any{"name": "a"})
	require.NoError(t, f.store.FetchAll(context.Background()))

	items := f.store.Items()
	items[0].Name = "mutated"
	require.Equal(t, "a", f.store.Items()[0].Name)
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t, fullEndpoint)
	f.api.FailNext(http.MethodGet, "/widgets", http.StatusInternalServerError, "")
	_ = f.store.FetchAll(context.Background())

	snap := f.store.Snapshot()
	require.False(t, snap.Loading)
	require.Equal(t, "Failed to fetch widgets", snap.Error)
	require.Empty(t, snap.Items)
}
