package clients_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/materials-admin/apiclient"
	"github.com/jrsteele09/materials-admin/clients"
	apperrors "github.com/jrsteele09/materials-admin/internal/errors"
	"github.com/jrsteele09/materials-admin/internal/fakeapi"
	"github.com/jrsteele09/materials-admin/tokenstore/memstore"
	"github.com/stretchr/testify/require"
)

func TestClientsStore(t *testing.T) {
	api := fakeapi.New(t)
	token := api.IssueToken(api.AddUser("admin", "admin@example.com", "secret"))
	api.Seed("clients", map[string]any{"name": "Acme Builders", "phone": "555-0101"})

	client, err := apiclient.New(api.URL)
	require.NoError(t, err)
	store := clients.NewStore(client, memstore.NewWithToken(token))
	ctx := context.Background()

	require.NoError(t, store.FetchAll(ctx))
	_, err = store.Add(ctx, clients.Client{Name: "Northside Roofing"})
	require.NoError(t, err)

	items := store.Items()
	require.Len(t, items, 2)
	require.Equal(t, int64(1), items[0].ID)
	require.Equal(t, "Acme Builders", items[0].Name)
	require.Equal(t, "555-0101", items[0].Phone)
	require.Equal(t, int64(2), items[1].ID)
	require.Equal(t, "Northside Roofing", items[1].Name)

	_, err = store.Update(ctx, 1, clients.Client{ID: 1})
	require.ErrorIs(t, err, apperrors.ErrUnsupported)
	require.ErrorIs(t, store.Remove(ctx, 1), apperrors.ErrUnsupported)
}

func TestClientJSON_KeepsServerFields(t *testing.T) {
	var c clients.Client
	require.NoError(t, json.Unmarshal([]byte(`{"id":4,"name":"Acme","phone":5550101,"vatNumber":"GB123"}`), &c))
	require.Equal(t, "5550101", c.Phone)
	require.Equal(t, "GB123", c.Attributes["vatNumber"])

	c.Name = "Acme Ltd"
	out, err := json.Marshal(c)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":4,"name":"Acme Ltd","phone":"5550101","vatNumber":"GB123"}`, string(out))

	out, err = json.Marshal(clients.Client{Name: "New"})
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"New"}`, string(out))
}

func TestByID(t *testing.T) {
	index := clients.ByID([]clients.Client{{ID: 3, Name: "c"}, {ID: 7, Name: "g"}})
	require.Equal(t, "g", index[7].Name)
	_, ok := index[1]
	require.False(t, ok)
}
