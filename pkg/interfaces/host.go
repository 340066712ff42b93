package interfaces

import "context"

// Category is the slice of the host's category entity this module reads.
// The host assigns integer identities when it persists a category; until
// then ID reports false.
type Category interface {
	ID() (int64, bool)
}

// Normalizer mirrors the host's serializer contract. Supports reports
// whether the normalizer can serialize the given object for the requested
// format; Normalize produces the payload. The options map carries
// serialization context such as the request locale.
type Normalizer interface {
	Supports(object any, format string, options map[string]any) bool
	Normalize(ctx context.Context, object any, format string, options map[string]any) (map[string]any, error)
}

// ObjectUpdater mirrors the host's partial-update contract: apply the
// incoming data to the object, honouring the provided options.
type ObjectUpdater interface {
	Update(ctx context.Context, object any, data map[string]any, options map[string]any) error
}

// Issue describes a single violation reported by a validation pass.
type Issue struct {
	Property string `json:"property,omitempty"`
	Message  string `json:"message"`
}

// ValidatingUpdater is implemented by host updaters that expose an optional
// validation pass alongside Update.
type ValidatingUpdater interface {
	Validate(ctx context.Context, object any, data map[string]any, options map[string]any) ([]Issue, error)
}
