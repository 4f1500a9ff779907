package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopping-list/internal/auth"
	"shopping-list/internal/manager"
	"shopping-list/internal/models"
	"shopping-list/internal/server"
	"shopping-list/internal/storage"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	sessions := auth.NewSessions(auth.Options{
		Username: "admin",
		Password: "password123",
		Secret:   "test-secret",
		TTL:      time.Hour,
	})
	im := manager.NewItemManager(storage.NewMemoryStorage(), models.SortOldestFirst)
	srv := httptest.NewServer(server.NewRouter(im, sessions, server.Options{}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	srv := newBackend(t)
	ctx := context.Background()

	c, err := New(srv.URL + "/")
	require.NoError(t, err)

	_, err = c.List(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Login(ctx, "admin", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)

	sess, err := c.Login(ctx, "admin", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, sess.Token, c.Token())

	milk, err := c.Add(ctx, "Milk")
	require.NoError(t, err)
	assert.Equal(t, "Milk", milk.Name)

	eggs, err := c.Add(ctx, "Eggs")
	require.NoError(t, err)

	name := "Whole milk"
	renamed, err := c.Update(ctx, milk.ID, models.UpdateItemRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Whole milk", renamed.Name)

	toggled, err := c.Toggle(ctx, eggs.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	items, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	removed, err := c.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	require.NoError(t, c.Delete(ctx, milk.ID))

	err = c.Delete(ctx, milk.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "Item not found", apiErr.Message)
	assert.NotErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.Token())
	_, err = c.List(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClientValidationError(t *testing.T) {
	srv := newBackend(t)
	ctx := context.Background()

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.Login(ctx, "admin", "password123")
	require.NoError(t, err)

	_, err = c.Add(ctx, "  ")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "Item name is required", apiErr.Message)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)

	_, err = New("://")
	assert.Error(t, err)
}
