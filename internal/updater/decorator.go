// Package updater decorates the host's partial-update pipeline so that
// description writes land in the attribute store after, and only after, the
// host's own update succeeds.
package updater

import (
	"context"
	"errors"

	"github.com/goliatone/go-category-attributes/internal/attributes"
	"github.com/goliatone/go-category-attributes/internal/logging"
	"github.com/goliatone/go-category-attributes/pkg/interfaces"
)

// ErrInnerRequired indicates the decorator was constructed without the host updater.
var ErrInnerRequired = errors.New("updater: inner updater is required")

// ErrStoreRequired indicates the decorator was constructed without the attribute store.
var ErrStoreRequired = errors.New("updater: attribute store is required")

// Decorator wraps the host's object updater. It introduces no validation of
// its own and never fails the host's update on account of attribute
// persistence.
type Decorator struct {
	inner  interfaces.ObjectUpdater
	store  *attributes.Service
	logger interfaces.Logger
}

// Option mutates the decorator configuration.
type Option func(*Decorator)

// WithLogger wires the decorator logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(d *Decorator) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New wraps the host's category updater.
func New(inner interfaces.ObjectUpdater, store *attributes.Service, opts ...Option) (*Decorator, error) {
	if inner == nil {
		return nil, ErrInnerRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	d := &Decorator{
		inner:  inner,
		store:  store,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Update delegates the full payload to the inner updater first, then
// persists the description when the payload carries the key (presence, not
// truthiness), a locale resolves, and the object has an identity. When any
// of those conditions fails the write is skipped silently: the host's update
// has already succeeded and must not be undone.
func (d *Decorator) Update(ctx context.Context, object any, data map[string]any, options map[string]any) error {
	if err := d.inner.Update(ctx, object, data, options); err != nil {
		return err
	}

	raw, present := data["description"]
	if !present {
		return nil
	}

	category, ok := object.(interfaces.Category)
	if !ok {
		return nil
	}

	locale := resolveLocale(options, data)
	if locale == "" {
		d.logger.Debug("description update skipped: no locale in options or data")
		return nil
	}
	id, ok := category.ID()
	if !ok {
		d.logger.Debug("description update skipped: category has no identity yet", "locale", locale)
		return nil
	}

	description, ok := coerceDescription(raw)
	if !ok {
		d.logger.Warn("description update skipped: unsupported value type", "category_id", id, "locale", locale)
		return nil
	}

	if err := d.store.SetText(ctx, id, locale, description); err != nil {
		// Best-effort side effect: the host update already went through.
		d.logger.Error("description persistence failed after host update", "category_id", id, "locale", locale, "error", err)
	}
	return nil
}

// Validate delegates to the inner updater when it exposes a validation pass
// and reports an empty result otherwise.
func (d *Decorator) Validate(ctx context.Context, object any, data map[string]any, options map[string]any) ([]interfaces.Issue, error) {
	if validating, ok := d.inner.(interfaces.ValidatingUpdater); ok {
		return validating.Validate(ctx, object, data, options)
	}
	return nil, nil
}

func resolveLocale(options, data map[string]any) string {
	if locale, ok := options["locale"].(string); ok && locale != "" {
		return locale
	}
	if locale, ok := data["locale"].(string); ok && locale != "" {
		return locale
	}
	return ""
}

func coerceDescription(raw any) (*string, bool) {
	switch value := raw.(type) {
	case nil:
		return nil, true
	case string:
		return &value, true
	default:
		return nil, false
	}
}
