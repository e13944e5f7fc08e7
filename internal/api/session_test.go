package api

import (
	"context"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnadmin/internal/auth"
	"github.com/learnhub/learnadmin/internal/config"
	"github.com/learnhub/learnadmin/internal/models"
)

// backend accepts "Bearer good" and refreshes with refresh token "r1".
type backend struct {
	listCalls    int32
	refreshCalls int32
	refreshOK    bool
}

func (b *backend) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	switch r.URL.Path {
	case PathRefresh:
		atomic.AddInt32(&b.refreshCalls, 1)
		if !b.refreshOK {
			w.WriteHeader(nethttp.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Refresh token expired"}`)
			return
		}
		_, _ = io.WriteString(w, `{"accessToken":"good","refreshToken":"r2"}`)
	default:
		atomic.AddInt32(&b.listCalls, 1)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(nethttp.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"jwt expired"}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":[{"id":"c1","name":"Asha","email":"asha@example.com"}]}`)
	}
}

func newSessionClient(t *testing.T, b *backend) (*Client, *auth.Session, *auth.Store) {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	store, err := auth.NewStore(filepath.Join(t.TempDir(), "credentials"))
	require.NoError(t, err)
	require.NoError(t, store.SaveTokens(models.AuthTokens{AccessToken: "stale", RefreshToken: "r1"}))

	sess := auth.NewSession(store, "", nil, nil)
	cfg := config.NewConfig()
	cfg.BaseURL = srv.URL
	client, err := NewClient(cfg, WithAuth(sess.Hooks()))
	require.NoError(t, err)
	sess.SetRefresher(client)
	return client, sess, store
}

func TestExpiredTokenIsRefreshedOnce(t *testing.T) {
	b := &backend{refreshOK: true}
	client, sess, store := newSessionClient(t, b)

	contacts, err := NewResource[models.Contact](client, Endpoints{List: "/admin/crm/contacts", ListUnwrap: "data"}).List(context.Background())
	require.NoError(t, err)
	require.Len(t, contacts, 1)

	assert.EqualValues(t, 2, b.listCalls, "original request plus one retry")
	assert.EqualValues(t, 1, b.refreshCalls)
	assert.Equal(t, "good", store.AccessToken())
	assert.Equal(t, "r2", store.RefreshToken())
	assert.True(t, sess.LoggedIn())
}

func TestFailedRefreshLogsOut(t *testing.T) {
	b := &backend{refreshOK: false}
	client, sess, store := newSessionClient(t, b)

	_, err := NewResource[models.Contact](client, Endpoints{List: "/admin/crm/contacts", ListUnwrap: "data"}).List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.EqualValues(t, 1, b.listCalls, "no retry after failed refresh")
	assert.EqualValues(t, 1, b.refreshCalls, "refresh endpoint 401 does not recurse")
	assert.False(t, sess.LoggedIn())
	assert.Empty(t, store.AccessToken())
	assert.Empty(t, store.RefreshToken())
}
