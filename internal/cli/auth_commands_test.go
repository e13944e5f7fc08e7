package cli

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnadmin/internal/auth"
	"github.com/learnhub/learnadmin/internal/config"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

// authServer accepts one password and records logout calls.
type authServer struct {
	access   string
	mu       sync.Mutex
	logouts  []string
	password string
}

func (s *authServer) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	body, _ := io.ReadAll(r.Body)
	var req map[string]string
	_ = json.Unmarshal(body, &req)

	switch r.URL.Path {
	case "/auth/login":
		if req["password"] != s.password {
			reply(w, 401, map[string]string{"message": "Invalid credentials"})
			return
		}
		reply(w, 200, map[string]any{
			"accessToken":  s.access,
			"refreshToken": "refresh-1",
			"user":         map[string]string{"id": "u1", "email": req["email"], "role": "admin"},
		})
	case "/auth/logout":
		s.mu.Lock()
		s.logouts = append(s.logouts, req["refreshToken"])
		s.mu.Unlock()
		reply(w, 200, map[string]string{"message": "Logged out"})
	default:
		reply(w, 404, map[string]string{"message": "no route"})
	}
}

func TestLoginWhoamiLogout(t *testing.T) {
	access := signedToken(t, jwt.MapClaims{
		"id":    "u1",
		"email": "admin@example.com",
		"role":  "admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	srv := &authServer{access: access, password: "hunter2"}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	cfg := newTestConfig(t, ts.URL)
	t.Setenv(config.EnvToken, "")

	res := runCLI(t, "hunter2\n", "--config", cfg, "login", "--email", "admin@example.com", "--password-stdin")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stderr, "Logged in as admin@example.com")

	store, err := auth.NewStore(filepath.Join(filepath.Dir(cfg), "credentials"))
	require.NoError(t, err)
	assert.Equal(t, access, store.AccessToken())
	assert.Equal(t, "refresh-1", store.RefreshToken())
	assert.Equal(t, "admin@example.com", store.Email())

	res = runCLI(t, "", "--config", cfg, "--json", "whoami")
	require.NoError(t, res.err, res.stderr)
	var info whoami
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.Equal(t, "admin@example.com", info.Email)
	assert.Equal(t, "admin", info.Role)
	assert.Equal(t, "u1", info.Subject)
	assert.False(t, info.Expired)
	assert.Equal(t, "credential store", info.Source)

	res = runCLI(t, "", "--config", cfg, "logout")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stderr, "Logged out")
	assert.NotContains(t, res.stderr, "session has expired")
	assert.Equal(t, []string{"refresh-1"}, srv.logouts)
	assert.Empty(t, store.AccessToken())

	res = runCLI(t, "", "--config", cfg, "whoami")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "not logged in")
}

func TestLoginRejected(t *testing.T) {
	srv := &authServer{access: "unused", password: "right"}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	cfg := newTestConfig(t, ts.URL)
	t.Setenv(config.EnvToken, "")

	res := runCLI(t, "wrong\n", "--config", cfg, "login", "--email", "admin@example.com", "--password-stdin")
	require.Error(t, res.err)
	assert.True(t, isReported(res.err))
	assert.Contains(t, res.stderr, "Invalid credentials")
	assert.NotContains(t, res.stderr, "session has expired")
}

func TestLoginRequiresEmailWithPasswordStdin(t *testing.T) {
	cfg := newTestConfig(t, "http://127.0.0.1:1")

	res := runCLI(t, "secret\n", "--config", cfg, "login", "--password-stdin")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "--email is required")
}

func TestWhoamiFromEnvironmentToken(t *testing.T) {
	cfg := newTestConfig(t, "http://127.0.0.1:1")
	t.Setenv(config.EnvToken, signedToken(t, jwt.MapClaims{"sub": "svc-1", "role": "support"}))

	res := runCLI(t, "", "--config", cfg, "whoami")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Subject: svc-1")
	assert.Contains(t, res.stdout, "Role:    support")
	assert.Contains(t, res.stdout, "Expires: never")
	assert.Contains(t, res.stdout, "Source:  environment")
}

func TestWhoamiRejectsOpaqueToken(t *testing.T) {
	cfg := newTestConfig(t, "http://127.0.0.1:1")

	res := runCLI(t, "", "--config", cfg, "whoami")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "cannot be decoded")
}
