package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnadmin/internal/config"
	"github.com/learnhub/learnadmin/internal/models"
	"github.com/learnhub/learnadmin/internal/validation"
)

func newTestClient(t *testing.T, handler nethttp.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.NewConfig()
	cfg.BaseURL = srv.URL
	client, err := NewClient(cfg, opts...)
	require.NoError(t, err)
	return client, srv
}

var courseEndpoints = Endpoints{
	List:       "/admin/assets/get-courses",
	ListUnwrap: "courses",
	Get:        "/admin/assets/get-course/:id",
	ItemUnwrap: "course",
	Create:     "/admin/assets/create-course",
	Update:     "/admin/assets/update-course/:id",
	Delete:     "/admin/assets/delete-course/:id",
	Status:     "/admin/assets/course/:id/status",
}

// TestNewClientRejectsEmptyBaseURL verifies that NewClient fails with a clear error
// when the base URL is empty, instead of creating a broken client that produces
// "unsupported protocol scheme" errors on every request.
func TestNewClientRejectsEmptyBaseURL(t *testing.T) {
	cfg := config.NewConfig()
	cfg.BaseURL = ""

	_, err := NewClient(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API base URL is empty")
}

func TestNewClientBaseURLOverride(t *testing.T) {
	cfg := config.NewConfig()
	client, err := NewClient(cfg, WithBaseURL("https://api.example.com/api/"))
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api", client.BaseURL())
}

func TestResourceListUnwrapsEnvelope(t *testing.T) {
	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodGet, r.Method)
		assert.Equal(t, "/admin/assets/get-courses", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"courses":[{"id":"1","title":"Alpha","price":"100"},{"id":2,"title":"Beta","price":50}]}`)
	}))

	courses, err := NewResource[models.Course](client, courseEndpoints).List(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, models.ID("1"), courses[0].ID)
	assert.Equal(t, models.Price(100), courses[0].Price)
	assert.Equal(t, models.ID("2"), courses[1].ID)
}

func TestResourceListShapes(t *testing.T) {
	tests := []struct {
		name      string
		unwrap    string
		body      string
		wantLen   int
		wantShape bool
	}{
		{name: "bare array", unwrap: "", body: `[{"id":"t1","name":"vip"}]`, wantLen: 1},
		{name: "data envelope", unwrap: "data", body: `{"data":[{"id":"t1"},{"id":"t2"}]}`, wantLen: 2},
		{name: "nested envelope", unwrap: "data.items", body: `{"data":{"items":[{"id":"t1"}],"total":1}}`, wantLen: 1},
		{name: "null payload is empty", unwrap: "data", body: `{"data":null}`, wantLen: 0},
		{name: "missing envelope", unwrap: "data", body: `{"tags":[]}`, wantShape: true},
		{name: "envelope not array", unwrap: "data", body: `{"data":{"id":"t1"}}`, wantShape: true},
		{name: "bare object when array expected", unwrap: "", body: `{"id":"t1"}`, wantShape: true},
		{name: "not json", unwrap: "", body: `<html>`, wantShape: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))

			tags, err := NewResource[models.Tag](client, Endpoints{List: "/admin/crm/tags", ListUnwrap: tt.unwrap}).List(context.Background())
			if tt.wantShape {
				assert.ErrorIs(t, err, ErrUnexpectedShape)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, tags)
			assert.Len(t, tags, tt.wantLen)
		})
	}
}

func TestResourceListIssuesExactlyOneRequest(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(nethttp.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message":"Database unavailable"}`)
	}))

	_, err := NewResource[models.Course](client, courseEndpoints).List(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "Database unavailable", apiErr.Message)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "no retry on error responses")
}

func TestResourceCRUD(t *testing.T) {
	type seen struct {
		method, path, body string
	}
	var requests []seen

	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, seen{r.Method, r.URL.EscapedPath(), string(body)})

		switch r.Method {
		case nethttp.MethodGet:
			_, _ = io.WriteString(w, `{"course":{"id":"c 1","title":"Fetched"}}`)
		case nethttp.MethodPost:
			_, _ = io.WriteString(w, `{"message":"created","course":{"id":"c9","title":"New course"}}`)
		case nethttp.MethodPut:
			_, _ = io.WriteString(w, `{"course":{"id":"c1","title":"Renamed"}}`)
		default:
			_, _ = io.WriteString(w, `{"message":"ok"}`)
		}
	}))

	res := NewResource[models.Course](client, courseEndpoints)
	ctx := context.Background()

	got, err := res.Get(ctx, "c 1")
	require.NoError(t, err)
	assert.Equal(t, "Fetched", got.Title)

	created, err := res.Create(ctx, models.Course{Title: "New course"})
	require.NoError(t, err)
	assert.Equal(t, models.ID("c9"), created.ID)

	updated, err := res.Update(ctx, "c1", models.Course{ID: "c1", Title: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	require.NoError(t, res.Delete(ctx, "c1"))
	require.NoError(t, res.SetStatus(ctx, "c1", models.StatusInactive))

	require.Len(t, requests, 5)
	assert.Equal(t, "/admin/assets/get-course/c%201", requests[0].path, "id is path-escaped")
	assert.Equal(t, nethttp.MethodPost, requests[1].method)
	assert.Contains(t, requests[1].body, `"title":"New course"`)
	assert.Equal(t, "/admin/assets/update-course/c1", requests[2].path)
	assert.Equal(t, nethttp.MethodDelete, requests[3].method)
	assert.Equal(t, "/admin/assets/delete-course/c1", requests[3].path)
	assert.Equal(t, nethttp.MethodPatch, requests[4].method)
	assert.Equal(t, "/admin/assets/course/c1/status", requests[4].path)
	assert.JSONEq(t, `{"status":"inactive"}`, requests[4].body)
}

func TestResourceUnsupportedActions(t *testing.T) {
	client, _ := newTestClient(t, nethttp.NotFoundHandler())
	res := NewResource[models.Transaction](client, Endpoints{List: "/admin/payments/transactions", ListUnwrap: "data"})
	ctx := context.Background()

	assert.True(t, res.Supports("list"))
	assert.False(t, res.Supports("delete"))

	_, err := res.Create(ctx, models.Transaction{})
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.ErrorIs(t, res.Delete(ctx, "x"), ErrUnsupported)
	assert.ErrorIs(t, res.SetStatus(ctx, "x", models.StatusActive), ErrUnsupported)
	_, err = res.Get(ctx, "x")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestNotFoundMatchesSentinel(t *testing.T) {
	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Course not found"}`)
	}))

	_, err := NewResource[models.Course](client, courseEndpoints).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Course not found", UserMessage(err))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(nethttp.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := config.NewConfig()
	cfg.BaseURL = url
	client, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = NewResource[models.Course](client, courseEndpoints).List(context.Background())
	var tErr *TransportError
	require.True(t, errors.As(err, &tErr), "got %T: %v", err, err)
	assert.Equal(t, "/admin/assets/get-courses", tErr.Path)
	assert.Contains(t, UserMessage(err), "Could not reach the server")
	assert.EqualValues(t, 1, client.Stats().Failures)
}

func TestCancelledContext(t *testing.T) {
	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResource[models.Course](client, courseEndpoints).List(ctx)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, "Cancelled", UserMessage(err))
}

func TestRequestsCarryRequestID(t *testing.T) {
	var id string
	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id = r.Header.Get("X-Request-ID")
		_, _ = io.WriteString(w, `[]`)
	}))

	_, err := NewResource[models.Tag](client, Endpoints{List: "/admin/crm/tags"}).List(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestThrottleResponseSetsCooldown(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(nethttp.StatusTooManyRequests)
	}))
	tags := NewResource[models.Tag](client, Endpoints{List: "/admin/crm/tags"})

	_, err := tags.List(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, nethttp.StatusTooManyRequests, apiErr.Status)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = tags.List(ctx)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, int32(1), calls.Load(), "no request during the cooldown")
}

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   string
	}{
		{400, `{"message":"Title is required"}`, "Title is required"},
		{400, `{"error":"Invalid slug"}`, "Invalid slug"},
		{400, `{"error":{"message":"Nested"}}`, "Nested"},
		{400, `{"msg":"Short"}`, "Short"},
		{422, `{"errors":[{"msg":"price must be positive"}]}`, "price must be positive"},
		{500, `{"message":""}`, "Internal Server Error (500)"},
		{502, `<html>bad gateway</html>`, "Bad Gateway (502)"},
		{599, ``, "Unexpected response (599)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractMessage(tt.status, []byte(tt.body)), tt.body)
	}
}

func TestUserMessage(t *testing.T) {
	verr := validation.Struct(models.Tag{})
	require.Error(t, verr)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", verr, "name is required"},
		{"api", fmt.Errorf("delete: %w", &APIError{Status: 409, Message: "Course has enrolments"}), "Course has enrolments"},
		{"unauthorized", &APIError{Status: 401, Message: "jwt expired"}, "Your session has expired. Please log in again."},
		{"deadline", context.DeadlineExceeded, "The server took too long to respond"},
		{"busy", ErrBusy, "another action is still in progress"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestLoginParsesTokenVariants(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantAccess  string
		wantRefresh string
		wantEmail   string
	}{
		{"flat", `{"accessToken":"a1","refreshToken":"r1","user":{"id":"u1","email":"admin@example.com"}}`, "a1", "r1", "admin@example.com"},
		{"token key", `{"token":"a2"}`, "a2", "", ""},
		{"data envelope", `{"data":{"accessToken":"a3","refreshToken":"r3","user":{"email":"x@example.com"}}}`, "a3", "r3", "x@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
				assert.Equal(t, PathLogin, r.URL.Path)
				var req models.LoginRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "admin@example.com", req.Email)
				_, _ = io.WriteString(w, tt.body)
			}))

			result, err := client.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "pw"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantAccess, result.Tokens.AccessToken)
			assert.Equal(t, tt.wantRefresh, result.Tokens.RefreshToken)
			assert.Equal(t, tt.wantEmail, result.User.Email)
		})
	}
}

func TestLoginValidatesBeforeSending(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	_, err := client.Login(context.Background(), models.LoginRequest{Email: "nope"})
	assert.ErrorIs(t, err, validation.ErrInvalid)
	assert.EqualValues(t, 0, calls)
}

func TestLoginWithoutAccessToken(t *testing.T) {
	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	}))

	_, err := client.Login(context.Background(), models.LoginRequest{Email: "a@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestRefreshSession(t *testing.T) {
	client, _ := newTestClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, PathRefresh, r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"refreshToken":"r1"}`, string(body))
		_, _ = io.WriteString(w, `{"accessToken":"a2"}`)
	}))

	tokens, err := client.RefreshSession(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "a2", tokens.AccessToken)
	assert.Empty(t, tokens.RefreshToken)
}

func TestUnwrap(t *testing.T) {
	out, err := Unwrap([]byte(`{"course":{"id":"1"}}`), "course")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(out))

	out, err = Unwrap([]byte(`{"id":"1"}`), "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(out))

	_, err = Unwrap([]byte(`{"id":"1"}`), "course")
	assert.ErrorIs(t, err, ErrUnexpectedShape)
	assert.True(t, strings.Contains(err.Error(), `"course"`))
}
