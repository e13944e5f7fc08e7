package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/learnhub/learnadmin/internal/models"
)

// Endpoints declares where a resource lives and how its responses are
// enveloped. Paths containing ":id" have it substituted (escaped). An empty
// path means the action is not offered by the backend.
type Endpoints struct {
	List       string
	ListUnwrap string // "" = bare array

	Get        string
	ItemUnwrap string // envelope of single-item responses; "" = bare object

	Create string
	Update string
	Delete string
	Status string
}

// Resource is the typed client for one collection endpoint family.
type Resource[T any] struct {
	client    *Client
	endpoints Endpoints
}

// NewResource binds endpoints to client.
func NewResource[T any](client *Client, endpoints Endpoints) *Resource[T] {
	return &Resource[T]{client: client, endpoints: endpoints}
}

// Endpoints returns the resource's endpoint declaration.
func (r *Resource[T]) Endpoints() Endpoints {
	return r.endpoints
}

// Supports reports whether the backend offers the named action
// ("get", "create", "update", "delete", "status").
func (r *Resource[T]) Supports(action string) bool {
	switch action {
	case "list":
		return r.endpoints.List != ""
	case "get":
		return r.endpoints.Get != ""
	case "create":
		return r.endpoints.Create != ""
	case "update":
		return r.endpoints.Update != ""
	case "delete":
		return r.endpoints.Delete != ""
	case "status":
		return r.endpoints.Status != ""
	default:
		return false
	}
}

// List issues exactly one GET for the collection.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	if r.endpoints.List == "" {
		return nil, ErrUnsupported
	}
	path := r.endpoints.List

	resp, err := r.client.doRequest(ctx, nethttp.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: nethttp.MethodGet, Path: path, Err: err}
	}
	if resp.StatusCode != nethttp.StatusOK {
		r.client.countFailure()
		return nil, newAPIError(nethttp.MethodGet, path, resp.StatusCode, data)
	}

	payload, err := unwrapList(data, r.endpoints.ListUnwrap)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}

	items := []T{}
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("GET %s: %w: %v", path, ErrUnexpectedShape, err)
	}
	return items, nil
}

// Get fetches one item by id.
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	if r.endpoints.Get == "" {
		return item, ErrUnsupported
	}
	err := r.client.call(ctx, nethttp.MethodGet, withID(r.endpoints.Get, id), nil, r.endpoints.ItemUnwrap, &item)
	return item, err
}

// Create POSTs item and returns the server's version of it.
func (r *Resource[T]) Create(ctx context.Context, item T) (T, error) {
	var created T
	if r.endpoints.Create == "" {
		return created, ErrUnsupported
	}
	err := r.client.call(ctx, nethttp.MethodPost, r.endpoints.Create, item, r.endpoints.ItemUnwrap, &created)
	return created, err
}

// Update PUTs item under id and returns the server's version of it.
func (r *Resource[T]) Update(ctx context.Context, id string, item T) (T, error) {
	var updated T
	if r.endpoints.Update == "" {
		return updated, ErrUnsupported
	}
	err := r.client.call(ctx, nethttp.MethodPut, withID(r.endpoints.Update, id), item, r.endpoints.ItemUnwrap, &updated)
	return updated, err
}

// Delete removes the item with id.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	if r.endpoints.Delete == "" {
		return ErrUnsupported
	}
	return r.client.call(ctx, nethttp.MethodDelete, withID(r.endpoints.Delete, id), nil, "", nil)
}

// SetStatus PATCHes the item's status.
func (r *Resource[T]) SetStatus(ctx context.Context, id string, status models.Status) error {
	if r.endpoints.Status == "" {
		return ErrUnsupported
	}
	return r.client.call(ctx, nethttp.MethodPatch, withID(r.endpoints.Status, id), models.StatusUpdate{Status: status}, "", nil)
}

func withID(pattern, id string) string {
	return strings.ReplaceAll(pattern, ":id", url.PathEscape(id))
}
