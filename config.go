package categoryattrs

import "github.com/goliatone/go-category-attributes/internal/runtimeconfig"

// Config exports the module configuration.
type Config = runtimeconfig.Config

// HTTPConfig exports the edit endpoint settings.
type HTTPConfig = runtimeconfig.HTTPConfig

// UploadsConfig exports the image storage settings.
type UploadsConfig = runtimeconfig.UploadsConfig

// SerializerConfig exports the serialization decorator settings.
type SerializerConfig = runtimeconfig.SerializerConfig

// LoggingConfig exports the logging provider settings.
type LoggingConfig = runtimeconfig.LoggingConfig

// OverlayConfig exports the edit-screen agent timings.
type OverlayConfig = runtimeconfig.OverlayConfig

// DefaultConfig returns the settings used when the host supplies nothing.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// DefaultOverlayConfig returns the agent timings the host UI tolerates in
// practice.
func DefaultOverlayConfig() OverlayConfig {
	return runtimeconfig.DefaultOverlayConfig()
}
