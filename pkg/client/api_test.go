package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-notes/config"
	"github.com/oksasatya/go-ddd-notes/internal/container"
	"github.com/oksasatya/go-ddd-notes/internal/router"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		AppName:    "notes-test",
		Storage:    "memory",
		JWTSecret:  "test-secret",
		SessionTTL: time.Hour,
		CookieName: "auth_token",
	}
	c := container.New(cfg, helpers.NewNopLogger())
	c.UseMemory()
	srv := httptest.NewServer(router.NewEngine(c))
	t.Cleanup(srv.Close)
	return srv
}

func TestAPI_SessionAndNotesLifecycle(t *testing.T) {
	srv := newAPIServer(t)
	api, err := NewAPI(srv.URL + "/api/")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = api.Me(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Not authenticated", apiErr.Message)

	user, err := api.Register(ctx, "Ana", "ana@example.com", "secret1")
	require.NoError(t, err)
	me, err := api.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, me)

	n, err := api.CreateNote(ctx, NotePatch{Content: str("hello")})
	require.NoError(t, err)
	assert.Equal(t, "Untitled", n.Title)
	assert.Equal(t, []string{}, n.Tags)

	tags := []string{"greeting"}
	updated, err := api.UpdateNote(ctx, n.ID, NotePatch{Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Content)
	assert.Equal(t, tags, updated.Tags)

	notes, err := api.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	require.NoError(t, api.DeleteNote(ctx, n.ID))
	notes, err = api.ListNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	require.NoError(t, api.Logout(ctx))
	_, err = api.ListNotes(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestAPI_StoreAgainstServer(t *testing.T) {
	srv := newAPIServer(t)
	api, err := NewAPI(srv.URL + "/api")
	require.NoError(t, err)
	ctx := context.Background()

	s := NewStore(api, WithSyncDelay(20*time.Millisecond), WithLogger(helpers.NewNopLogger()))
	defer s.Close()

	require.NoError(t, s.Register(ctx, "Ana", "ana@example.com", "secret1"))
	n, err := s.CreateNote(ctx, NotePatch{Title: str("Draft")})
	require.NoError(t, err)

	s.UpdateNote(n.ID, NotePatch{Content: str("first")})
	s.UpdateNote(n.ID, NotePatch{Content: str("second")})
	s.Flush()

	fresh, err := api.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "Draft", fresh[0].Title)
	assert.Equal(t, "second", fresh[0].Content)
}
