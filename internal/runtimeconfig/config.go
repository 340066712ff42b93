package runtimeconfig

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// localePattern accepts bare language tags ("en") and region-qualified tags
// ("en_US"), the two shapes the host emits.
var localePattern = regexp.MustCompile(`^[a-z]{2,3}(_[A-Z]{2})?$`)

// Config aggregates runtime settings for the category attributes module.
// Fields intentionally use simple types so host applications can override
// them from their own configuration layers.
type Config struct {
	DefaultLocale string
	HTTP          HTTPConfig
	Uploads       UploadsConfig
	Serializer    SerializerConfig
	Logging       LoggingConfig
}

// HTTPConfig captures settings for the edit endpoints.
type HTTPConfig struct {
	BasePath string
	// MaxUploadBytes bounds multipart parsing for image uploads.
	MaxUploadBytes int64
}

// UploadsConfig captures the local image storage collaborator settings.
type UploadsConfig struct {
	// Dir is the filesystem root for per-category upload directories.
	Dir string
	// PublicPrefix is the URL prefix under which Dir is served by the host.
	PublicPrefix string
}

// SerializerConfig captures settings for the serialization decorators.
type SerializerConfig struct {
	// Namespace is the reserved key under the external payload's
	// "extensions" object.
	Namespace string
	// UIKey is the field merged into the internal UI payload.
	UIKey string
	// LocaleContextKeys are checked in order against the serialization
	// context when resolving the external payload locale.
	LocaleContextKeys []string
}

// LoggingConfig selects the logging provider behaviour.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
}

// OverlayConfig captures timings for the edit-screen agent. Values are kept
// here rather than hardcoded so embedded deployments with slower hosts can
// stretch them.
type OverlayConfig struct {
	MountTimeout time.Duration
	ReadyTimeout time.Duration
	RetryDelay   time.Duration
	Heartbeat    time.Duration
}

// DefaultConfig returns the settings used when the host supplies nothing.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en_US",
		HTTP: HTTPConfig{
			BasePath:       "/acme",
			MaxUploadBytes: 16 << 20,
		},
		Uploads: UploadsConfig{
			Dir:          "public/uploads/categories",
			PublicPrefix: "/uploads/categories",
		},
		Serializer: SerializerConfig{
			Namespace:         "acme_category",
			UIKey:             "description",
			LocaleContextKeys: []string{"locale", "ui_locale", "channelLocale"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultOverlayConfig mirrors the timings the host UI tolerates in practice.
func DefaultOverlayConfig() OverlayConfig {
	return OverlayConfig{
		MountTimeout: 8 * time.Second,
		ReadyTimeout: 12 * time.Second,
		RetryDelay:   400 * time.Millisecond,
		Heartbeat:    300 * time.Millisecond,
	}
}

// Validate reports configuration problems before the module wires anything.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DefaultLocale,
			validation.Required,
			validation.Match(localePattern),
		),
		validation.Field(&c.HTTP),
		validation.Field(&c.Uploads),
		validation.Field(&c.Serializer),
	)
}

// Validate checks the HTTP settings.
func (c HTTPConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BasePath, validation.Required),
		validation.Field(&c.MaxUploadBytes, validation.Min(int64(1))),
	)
}

// Validate checks the upload storage settings.
func (c UploadsConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.PublicPrefix, validation.Required),
	)
}

// Validate checks the serializer settings.
func (c SerializerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Namespace, validation.Required),
		validation.Field(&c.UIKey, validation.Required),
		validation.Field(&c.LocaleContextKeys, validation.Required),
	)
}
