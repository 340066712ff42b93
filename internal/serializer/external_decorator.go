package serializer

import (
	"context"

	"github.com/goliatone/go-category-attributes/internal/attributes"
	"github.com/goliatone/go-category-attributes/internal/logging"
	"github.com/goliatone/go-category-attributes/pkg/interfaces"
)

// FormatExternalAPI is the host's serialization format for the external API.
const FormatExternalAPI = "external_api"

// ExtensionsKey is the payload key reserved by the host for add-on data.
const ExtensionsKey = "extensions"

// ExternalDecorator enriches the host's external API category payload with a
// namespaced block carrying the resolved locale, description, and image
// reference. The locale comes from the serialization context, checked
// against an ordered list of candidate keys, and falls back to a default.
type ExternalDecorator struct {
	inner         interfaces.Normalizer
	store         *attributes.Service
	namespace     string
	localeKeys    []string
	defaultLocale string
	logger        interfaces.Logger
}

// ExternalOption mutates the external decorator configuration.
type ExternalOption func(*ExternalDecorator)

// WithNamespace overrides the reserved extensions key.
func WithNamespace(namespace string) ExternalOption {
	return func(d *ExternalDecorator) {
		if namespace != "" {
			d.namespace = namespace
		}
	}
}

// WithLocaleContextKeys overrides the ordered context keys consulted when
// resolving the request locale.
func WithLocaleContextKeys(keys []string) ExternalOption {
	return func(d *ExternalDecorator) {
		if len(keys) > 0 {
			d.localeKeys = keys
		}
	}
}

// WithDefaultLocale overrides the fallback locale.
func WithDefaultLocale(locale string) ExternalOption {
	return func(d *ExternalDecorator) {
		if locale != "" {
			d.defaultLocale = locale
		}
	}
}

// WithExternalLogger wires the decorator logger.
func WithExternalLogger(logger interfaces.Logger) ExternalOption {
	return func(d *ExternalDecorator) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewExternalDecorator wraps the host's external API category normalizer.
func NewExternalDecorator(inner interfaces.Normalizer, store *attributes.Service, opts ...ExternalOption) (*ExternalDecorator, error) {
	if inner == nil {
		return nil, ErrInnerRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	d := &ExternalDecorator{
		inner:         inner,
		store:         store,
		namespace:     "acme_category",
		localeKeys:    []string{"locale", "ui_locale", "channelLocale"},
		defaultLocale: "en_US",
		logger:        logging.NoOp(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Supports claims exactly the combinations the inner normalizer supports,
// intersected with the category type and external API format checks.
func (d *ExternalDecorator) Supports(object any, format string, options map[string]any) bool {
	if _, ok := object.(interfaces.Category); !ok {
		return false
	}
	return format == FormatExternalAPI && d.inner.Supports(object, format, options)
}

// Normalize produces the inner payload and injects the namespaced attribute
// block. Store failures degrade each field to null; the inner payload is
// always returned intact.
func (d *ExternalDecorator) Normalize(ctx context.Context, object any, format string, options map[string]any) (map[string]any, error) {
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

	locale := d.resolveLocale(options)

	var description any
	if text, err := d.store.GetText(ctx, id, locale); err != nil {
		d.logger.Warn("description lookup failed during serialization", "category_id", id, "locale", locale, "error", err)
	} else if text != nil {
		description = *text
	}

	var image any
	if url, err := d.store.GetImageURL(ctx, id, locale); err != nil {
		d.logger.Warn("image lookup failed during serialization", "category_id", id, "locale", locale, "error", err)
	} else if url != nil {
		image = *url
	}

	extensions, _ := payload[ExtensionsKey].(map[string]any)
	if extensions == nil {
		extensions = map[string]any{}
	}
	// The namespace is reserved for this module, but never clobber a key the
	// host somehow produced itself.
	if _, exists := extensions[d.namespace]; !exists {
		extensions[d.namespace] = map[string]any{
			"locale":      locale,
			"description": description,
			"image":       image,
		}
		payload[ExtensionsKey] = extensions
	}

	return payload, nil
}

func (d *ExternalDecorator) resolveLocale(options map[string]any) string {
	for _, key := range d.localeKeys {
		if value, ok := options[key].(string); ok && value != "" {
			return value
		}
	}
	return d.defaultLocale
}
