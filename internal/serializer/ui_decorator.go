// Package serializer decorates the host's category normalizers with stored
// attribute data. Decorators always delegate to the wrapped normalizer first
// and only add keys the inner payload does not already carry; enrichment is
// best-effort and never fails the host's own serialization.
package serializer

import (
	"context"
	"errors"

	"github.com/goliatone/go-category-attributes/internal/attributes"
	"github.com/goliatone/go-category-attributes/internal/logging"
	"github.com/goliatone/go-category-attributes/pkg/interfaces"
)

// ErrInnerRequired indicates a decorator was constructed without the host normalizer.
var ErrInnerRequired = errors.New("serializer: inner normalizer is required")

// ErrStoreRequired indicates a decorator was constructed without the attribute store.
var ErrStoreRequired = errors.New("serializer: attribute store is required")

// UIDecorator enriches the host's internal UI payload with a single
// description field. No per-request locale context exists at this layer, so
// the description is always resolved for the configured default locale.
type UIDecorator struct {
	inner  interfaces.Normalizer
	store  *attributes.Service
	key    string
	locale string
	logger interfaces.Logger
}

// UIOption mutates the UI decorator configuration.
type UIOption func(*UIDecorator)

// WithUIKey overrides the payload key the description is merged under.
func WithUIKey(key string) UIOption {
	return func(d *UIDecorator) {
		if key != "" {
			d.key = key
		}
	}
}

// WithUILocale overrides the fixed locale used for lookups.
func WithUILocale(locale string) UIOption {
	return func(d *UIDecorator) {
		if locale != "" {
			d.locale = locale
		}
	}
}

// WithUILogger wires the decorator logger.
func WithUILogger(logger interfaces.Logger) UIOption {
	return func(d *UIDecorator) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewUIDecorator wraps the host's internal category normalizer.
func NewUIDecorator(inner interfaces.Normalizer, store *attributes.Service, opts ...UIOption) (*UIDecorator, error) {
	if inner == nil {
		return nil, ErrInnerRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	d := &UIDecorator{
		inner:  inner,
		store:  store,
		key:    "description",
		locale: "en_US",
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Supports delegates entirely to the inner normalizer so host routing is
// preserved; the category check happens during Normalize.
func (d *UIDecorator) Supports(object any, format string, options map[string]any) bool {
	return d.inner.Supports(object, format, options)
}

// Normalize produces the inner payload and merges the stored description for
// eligible categories. Store failures degrade to a null description.
func (d *UIDecorator) Normalize(ctx context.Context, object any, format string, options map[string]any) (map[string]any, error) {
	payload, err := d.inner.Normalize(ctx, object, format, options)
	if err != nil {
		return payload, err
	}
	if payload == nil {
		return payload, nil
	}

	category, ok := object.(interfaces.Category)
	if !ok {
		return payload, nil
	}
	id, ok := category.ID()
	if !ok {
		return payload, nil
	}
	if _, exists := payload[d.key]; exists {
		return payload, nil
	}

	text, err := d.store.GetText(ctx, id, d.locale)
	if err != nil {
		d.logger.Warn("description lookup failed during serialization", "category_id", id, "locale", d.locale, "error", err)
		payload[d.key] = nil
		return payload, nil
	}
	if text != nil {
		payload[d.key] = *text
	} else {
		payload[d.key] = nil
	}
	return payload, nil
}
