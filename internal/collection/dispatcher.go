package collection

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/learnhub/learnadmin/internal/api"
	"github.com/learnhub/learnadmin/internal/logging"
	"github.com/learnhub/learnadmin/internal/models"
	"github.com/learnhub/learnadmin/internal/validation"
)

// Backend is the remote side of a resource. *api.Resource implements it.
type Backend[T any] interface {
	Source[T]
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id string, item T) (T, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status models.Status) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm answers yes without asking (--yes).
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// ErrDeclined is returned when the user answers no to a confirmation.
var ErrDeclined = fmt.Errorf("%w: not confirmed", api.ErrCancelled)

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions[T any] struct {
	Confirmer Confirmer
	Notifier  Notifier
	Logger    *logging.Logger

	// Validate runs before create and update. Defaults to validation.Struct.
	Validate func(T) error
}

// Dispatcher runs row actions against a Backend and reconciles successful
// results into a List by id. Failures leave the List untouched and are
// reported through the notifier. Only one action runs at a time; an
// overlapping call fails with api.ErrBusy.
type Dispatcher[T any] struct {
	list       *List[T]
	backend    Backend[T]
	confirm    Confirmer
	notifier   Notifier
	logger     *logging.Logger
	validate   func(T) error
	submitting atomic.Bool
}

// NewDispatcher creates a dispatcher for list.
func NewDispatcher[T any](list *List[T], backend Backend[T], opts DispatcherOptions[T]) *Dispatcher[T] {
	validate := opts.Validate
	if validate == nil {
		validate = func(item T) error { return validation.Struct(item) }
	}
	return &Dispatcher[T]{
		list:     list,
		backend:  backend,
		confirm:  opts.Confirmer,
		notifier: opts.Notifier,
		logger:   logging.OrNop(opts.Logger).Child("resource", list.schema.Resource),
		validate: validate,
	}
}

// Submitting reports whether an action is in flight.
func (d *Dispatcher[T]) Submitting() bool {
	return d.submitting.Load()
}

func (d *Dispatcher[T]) begin() error {
	if !d.submitting.CompareAndSwap(false, true) {
		return api.ErrBusy
	}
	return nil
}

func (d *Dispatcher[T]) end() {
	d.submitting.Store(false)
}

// Delete asks for confirmation, deletes id on the backend and, only after
// success, removes it from the list.
func (d *Dispatcher[T]) Delete(ctx context.Context, id string) error {
	ok, err := d.ask(ctx, fmt.Sprintf("Delete %s %s? This cannot be undone.", d.singular(), d.label(id)))
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeclined
	}

	if err := d.begin(); err != nil {
		return err
	}
	defer d.end()

	if err := d.backend.Delete(ctx, id); err != nil {
		return d.fail("delete", id, err)
	}

	d.list.Remove(id)
	d.logger.Info().Str("id", id).Msg("Deleted")
	d.success(d.singular() + " deleted successfully")
	return nil
}

// DeleteMany confirms once and deletes each id in turn. onEach, if non-nil,
// is called after every attempt. It returns the number deleted and the
// errors of the failed ids joined.
func (d *Dispatcher[T]) DeleteMany(ctx context.Context, ids []string, onEach func(id string, err error)) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if len(ids) == 1 {
		err := d.Delete(ctx, ids[0])
		if onEach != nil && !errors.Is(err, ErrDeclined) {
			onEach(ids[0], err)
		}
		if err != nil {
			return 0, err
		}
		return 1, nil
	}

	ok, err := d.ask(ctx, fmt.Sprintf("Delete %d %s? This cannot be undone.", len(ids), d.list.schema.Resource))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrDeclined
	}

	if err := d.begin(); err != nil {
		return 0, err
	}
	defer d.end()

	deleted := 0
	var errs []error
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("%w: %w", api.ErrCancelled, ctx.Err()))
			break
		}
		err := d.backend.Delete(ctx, id)
		if err == nil {
			d.list.Remove(id)
			deleted++
		} else {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
		if onEach != nil {
			onEach(id, err)
		}
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		if d.notifier != nil {
			d.notifier.Error(d.list.schema.Resource, fmt.Errorf("%d of %d deletions failed: %s", len(ids)-deleted, len(ids), api.UserMessage(errs[0])))
		}
		return deleted, err
	}
	d.success(fmt.Sprintf("%d %s deleted successfully", deleted, d.list.schema.Resource))
	return deleted, nil
}

// ToggleStatus PATCHes the inverted status of id and, on success, patches
// the item's status in place. No retry. A status that cannot be inverted
// fails with models.ErrUnknownStatus before any request.
func (d *Dispatcher[T]) ToggleStatus(ctx context.Context, id string) (models.Status, error) {
	status := d.list.schema.Status
	if status == nil {
		return "", api.ErrUnsupported
	}

	item, ok := d.list.Find(id)
	if !ok {
		return "", fmt.Errorf("%s %s: %w", d.singular(), id, api.ErrNotFound)
	}

	next, err := status.Get(item).Inverse()
	if err != nil {
		err = fmt.Errorf("%s %s: %w", d.singular(), id, err)
		d.notifyError(err)
		return "", err
	}

	if err := d.begin(); err != nil {
		return "", err
	}
	defer d.end()

	if err := d.backend.SetStatus(ctx, id, next); err != nil {
		return "", d.fail("update status of", id, err)
	}

	d.list.Update(id, func(cur T) T { return status.Set(cur, next) })
	d.logger.Info().Str("id", id).Str("status", string(next)).Msg("Status changed")
	d.success(fmt.Sprintf("%s status updated to %s", d.singular(), next))
	return next, nil
}

// Edit loads id with a dedicated GET (the list's cached copy is only used
// when the backend has no single-item endpoint), passes
// it to edit to produce the new version, validates, PUTs, and on success
// replaces the item in the list.
func (d *Dispatcher[T]) Edit(ctx context.Context, id string, edit func(current T) (T, error)) (T, error) {
	var zero T

	if err := d.begin(); err != nil {
		return zero, err
	}
	defer d.end()

	current, err := d.backend.Get(ctx, id)
	if errors.Is(err, api.ErrUnsupported) {
		// No single-item endpoint: edit the listed copy.
		var ok bool
		if current, ok = d.list.Find(id); !ok {
			return zero, d.fail("load", id, api.ErrNotFound)
		}
		err = nil
	}
	if err != nil {
		return zero, d.fail("load", id, err)
	}

	edited, err := edit(current)
	if err != nil {
		return zero, err
	}
	edited = normalized(edited)

	if err := d.validate(edited); err != nil {
		d.notifyError(err)
		return zero, err
	}

	updated, err := d.backend.Update(ctx, id, edited)
	if err != nil {
		return zero, d.fail("update", id, err)
	}
	if d.list.schema.ID(updated) == "" {
		// Backend echoed no id; keep the one we addressed.
		updated = edited
	}

	d.list.Replace(updated)
	d.logger.Info().Str("id", id).Msg("Updated")
	d.success(d.singular() + " updated successfully")
	return updated, nil
}

// Add validates item, POSTs it and appends the server's version.
func (d *Dispatcher[T]) Add(ctx context.Context, item T) (T, error) {
	var zero T

	item = normalized(item)
	if err := d.validate(item); err != nil {
		d.notifyError(err)
		return zero, err
	}

	if err := d.begin(); err != nil {
		return zero, err
	}
	defer d.end()

	created, err := d.backend.Create(ctx, item)
	if err != nil {
		return zero, d.fail("create", "", err)
	}

	d.list.Append(created)
	d.logger.Info().Str("id", d.list.schema.ID(created)).Msg("Created")
	d.success(d.singular() + " created successfully")
	return created, nil
}

// normalized applies the item's own input cleanup, if it has one.
func normalized[T any](item T) T {
	if n, ok := any(item).(interface{ Normalized() T }); ok {
		return n.Normalized()
	}
	return item
}

func (d *Dispatcher[T]) ask(ctx context.Context, prompt string) (bool, error) {
	if d.confirm == nil {
		return false, errors.New("delete requires confirmation but no confirmer is configured")
	}
	return d.confirm.Confirm(ctx, prompt)
}

func (d *Dispatcher[T]) fail(action, id string, err error) error {
	d.logger.Debug().Err(err).Str("id", id).Msgf("Failed to %s", action)
	d.notifyError(err)
	if id == "" {
		return fmt.Errorf("%s %s: %w", action, d.singular(), err)
	}
	return fmt.Errorf("%s %s %s: %w", action, d.singular(), id, err)
}

func (d *Dispatcher[T]) notifyError(err error) {
	if d.notifier == nil || errors.Is(err, api.ErrCancelled) {
		return
	}
	d.notifier.Error(d.list.schema.Resource, err)
}

func (d *Dispatcher[T]) success(msg string) {
	if d.notifier != nil {
		d.notifier.Success(d.list.schema.Resource, msg)
	}
}

func (d *Dispatcher[T]) singular() string {
	if d.list.schema.Singular != "" {
		return d.list.schema.Singular
	}
	return "Item"
}

// label is the item's title when the list knows it, for prompts.
func (d *Dispatcher[T]) label(id string) string {
	item, ok := d.list.Find(id)
	if !ok {
		return id
	}
	for _, field := range []string{"title", "name", "email"} {
		if d.list.schema.HasField(field) {
			if s := d.list.schema.Text(item, field); s != "" {
				return fmt.Sprintf("%q", s)
			}
		}
	}
	return id
}
