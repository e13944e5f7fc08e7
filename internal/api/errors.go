package api

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/learnhub/learnadmin/internal/validation"
)

// Sentinel errors, matched with errors.Is.
var (
	// ErrNotFound matches any 404 response.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized matches any 401 response that survived the refresh flow.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBusy is returned when an action is submitted while another one on the
	// same list is still in flight.
	ErrBusy = errors.New("another action is still in progress")

	// ErrCancelled wraps context cancellation of a call.
	ErrCancelled = errors.New("cancelled")

	// ErrUnsupported is returned for actions a resource does not offer.
	ErrUnsupported = errors.New("action not supported for this resource")

	// ErrUnexpectedShape is returned when a response does not have the
	// envelope the endpoint declares.
	ErrUnexpectedShape = errors.New("unexpected response shape")
)

// messageFields are tried in order to find the backend's human-readable message.
var messageFields = []string{"message", "error.message", "error", "msg", "errors.0.message", "errors.0.msg"}

// TransportError is a request that never produced an HTTP response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx response.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string // backend message, or a generic status text
	Body    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Is maps status codes onto the sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == nethttp.StatusNotFound
	case ErrUnauthorized:
		return e.Status == nethttp.StatusUnauthorized
	}
	return false
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	return &APIError{
		Method:  method,
		Path:    path,
		Status:  status,
		Message: extractMessage(status, body),
		Body:    body,
	}
}

// extractMessage prefers the backend's message field and falls back to the
// status text.
func extractMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		for _, field := range messageFields {
			r := gjson.GetBytes(body, field)
			if r.Type == gjson.String && strings.TrimSpace(r.Str) != "" {
				return strings.TrimSpace(r.Str)
			}
		}
	}
	text := nethttp.StatusText(status)
	if text == "" {
		text = "Unexpected response"
	}
	return fmt.Sprintf("%s (%d)", text, status)
}

// UserMessage turns any error from this package, the validation package or
// the collection pipeline into the text shown in a notification.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Error()
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == nethttp.StatusUnauthorized {
			return "Your session has expired. Please log in again."
		}
		return apiErr.Message
	}

	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
		return "Cancelled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The server took too long to respond"
	}

	var tErr *TransportError
	if errors.As(err, &tErr) {
		return "Could not reach the server. Check your connection and the configured API URL."
	}

	return err.Error()
}
