package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"

	"github.com/learnhub/learnadmin/internal/logging"
)

// AuthHooks are the session callbacks injected into AuthTransport.
// Token is required; the others may be nil.
type AuthHooks struct {
	// Token returns the current access token ("" sends no Authorization header).
	Token func() string

	// Unauthorized is called when a request comes back 401, before refreshing.
	Unauthorized func()

	// Refresh performs exactly one token refresh and stores the new tokens.
	Refresh func(ctx context.Context) error

	// RefreshFailed is called when Refresh returns an error. The session
	// clears its stored credentials and forces logout here.
	RefreshFailed func(err error)
}

type skipRefreshKey struct{}

// WithoutRefresh marks ctx so that a 401 is returned as-is. Used for the
// login and refresh calls themselves.
func WithoutRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipRefreshKey{}, true)
}

func skipRefresh(ctx context.Context) bool {
	v, _ := ctx.Value(skipRefreshKey{}).(bool)
	return v
}

// AuthTransport attaches "Authorization: Bearer <token>" and, on a 401,
// refreshes the session once and replays the request once.
type AuthTransport struct {
	Base   nethttp.RoundTripper
	Hooks  AuthHooks
	Logger *logging.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *nethttp.Request) (*nethttp.Response, error) {
	logger := logging.OrNop(t.Logger)
	ctx := req.Context()

	getBody, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	first, err := t.prepare(req, getBody)
	if err != nil {
		return nil, err
	}

	resp, err := t.base().RoundTrip(first)
	if err != nil || resp.StatusCode != nethttp.StatusUnauthorized || skipRefresh(ctx) || t.Hooks.Refresh == nil {
		return resp, err
	}

	// Keep the 401 body so it can be returned if the refresh fails.
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("failed to read 401 response: %w", readErr)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if t.Hooks.Unauthorized != nil {
		t.Hooks.Unauthorized()
	}

	logger.Debug().Str("path", req.URL.Path).Msg("Access token rejected, refreshing session")

	if refreshErr := t.Hooks.Refresh(ctx); refreshErr != nil {
		if t.Hooks.RefreshFailed != nil {
			t.Hooks.RefreshFailed(refreshErr)
		}
		if errors.Is(refreshErr, context.Canceled) || errors.Is(refreshErr, context.DeadlineExceeded) {
			return nil, refreshErr
		}
		logger.Warn().Err(refreshErr).Msg("Session refresh failed")
		return resp, nil
	}

	retry, err := t.prepare(req, getBody)
	if err != nil {
		return nil, err
	}

	// The retried response is final, even if it is another 401.
	return t.base().RoundTrip(retry)
}

// replayableBody returns a function yielding a fresh copy of the request
// body, or nil when the request has none. A body without GetBody is read
// into memory once.
func replayableBody(req *nethttp.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == nethttp.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		return req.GetBody, nil
	}

	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to buffer request body: %w", err)
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, nil
}

// prepare clones req with the current bearer token and a fresh body.
func (t *AuthTransport) prepare(req *nethttp.Request, getBody func() (io.ReadCloser, error)) (*nethttp.Request, error) {
	r := req.Clone(req.Context())

	if getBody != nil {
		body, err := getBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		r.Body = body
		r.GetBody = getBody
	}

	r.Header.Del("Authorization")
	if t.Hooks.Token != nil {
		if token := t.Hooks.Token(); token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return r, nil
}

func (t *AuthTransport) base() nethttp.RoundTripper {
	if t.Base == nil {
		return nethttp.DefaultTransport
	}
	return t.Base
}
