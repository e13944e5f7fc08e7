package http

import (
	"context"
	nethttp "net/http"

	"github.com/google/uuid"

	"github.com/learnhub/learnadmin/internal/version"
)

// HeaderRequestID is sent on every request and echoed in debug logs.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID pins the request id used for requests made with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id pinned by WithRequestID, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type requestIDTransport struct {
	base nethttp.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *nethttp.Request) (*nethttp.Response, error) {
	r := req.Clone(req.Context())
	if r.Header.Get(HeaderRequestID) == "" {
		id := RequestIDFrom(req.Context())
		if id == "" {
			id = uuid.NewString()
		}
		r.Header.Set(HeaderRequestID, id)
	}
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", version.UserAgent())
	}
	if r.Header.Get("Accept") == "" {
		r.Header.Set("Accept", "application/json")
	}
	return t.base.RoundTrip(r)
}
