package collection

import (
	"context"
	"errors"

	"github.com/learnhub/learnadmin/internal/logging"
)

// Source lists a remote collection with a single request.
type Source[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// Notifier shows transient user-visible messages.
// *notify.Notifier implements it.
type Notifier interface {
	Success(title, message string)
	Error(title string, err error)
}

// Fetcher loads a remote collection: exactly one request per Fetch, no
// retry, no caching. A failure is reported through the notifier and yields
// an empty collection.
type Fetcher[T any] struct {
	source   Source[T]
	notifier Notifier
	resource string
	logger   *logging.Logger
}

// NewFetcher creates a fetcher. notifier and logger may be nil.
func NewFetcher[T any](resource string, source Source[T], notifier Notifier, logger *logging.Logger) *Fetcher[T] {
	return &Fetcher[T]{
		source:   source,
		notifier: notifier,
		resource: resource,
		logger:   logging.OrNop(logger),
	}
}

// Fetch issues the request. It always returns a non-nil slice; on error the
// slice is empty and err describes the failure. Cancellation is not
// reported to the user.
func (f *Fetcher[T]) Fetch(ctx context.Context) ([]T, error) {
	items, err := f.source.List(ctx)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			f.logger.Debug().Str("resource", f.resource).Msg("Load cancelled")
			return []T{}, err
		}
		f.logger.Debug().Err(err).Str("resource", f.resource).Msg("Load failed")
		if f.notifier != nil {
			f.notifier.Error(f.resource, err)
		}
		return []T{}, err
	}
	if items == nil {
		items = []T{}
	}
	f.logger.Debug().Str("resource", f.resource).Int("count", len(items)).Msg("Loaded")
	return items, nil
}
