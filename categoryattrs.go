// Package categoryattrs extends a host catalog application with per-locale
// category descriptions and images. It persists attribute records, decorates
// the host's serializers and updater, and serves the edit endpoints the
// browser overlay talks to.
package categoryattrs

import (
	"errors"
	"net/http"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-category-attributes/internal/attributes"
	attrhttp "github.com/goliatone/go-category-attributes/internal/http"
	"github.com/goliatone/go-category-attributes/internal/logging"
	"github.com/goliatone/go-category-attributes/internal/logging/gologger"
	"github.com/goliatone/go-category-attributes/internal/overlay"
	"github.com/goliatone/go-category-attributes/internal/serializer"
	"github.com/goliatone/go-category-attributes/internal/updater"
	"github.com/goliatone/go-category-attributes/internal/uploads"
	"github.com/goliatone/go-category-attributes/pkg/interfaces"
)

// ErrDatabaseRequired indicates New was called without a database and
// without a repository override.
var ErrDatabaseRequired = errors.New("categoryattrs: database is required")

// Category exports the host entity contract.
type Category = interfaces.Category

// Normalizer exports the host serializer contract.
type Normalizer = interfaces.Normalizer

// ObjectUpdater exports the host updater contract.
type ObjectUpdater = interfaces.ObjectUpdater

// Logger exports the logging contract.
type Logger = interfaces.Logger

// LoggerProvider exports the logger provider contract.
type LoggerProvider = interfaces.LoggerProvider

// AttributeService exports the attribute store service.
type AttributeService = attributes.Service

// AttributeRepository exports the attribute persistence contract.
type AttributeRepository = attributes.Repository

// OverlayAgent exports the edit-screen agent.
type OverlayAgent = overlay.Agent

// OverlayPage exports the agent's page contract.
type OverlayPage = overlay.Page

// Module is the top level runtime facade: one attribute store plus the
// factories that hang the decorators and endpoints off it.
type Module struct {
	cfg      Config
	provider interfaces.LoggerProvider
	store    *attributes.Service
	storage  *uploads.Storage
	api      *attrhttp.AttributeAPI
}

// Option overrides module wiring.
type Option func(*moduleOptions)

type moduleOptions struct {
	provider      interfaces.LoggerProvider
	repo          attributes.Repository
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
}

// WithLoggerProvider supplies the host's logger provider. Without it the
// module builds a go-logger provider from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *moduleOptions) {
		if provider != nil {
			o.provider = provider
		}
	}
}

// WithRepository swaps the bun-backed attribute repository, typically for
// the memory implementation in tests and host-less development.
func WithRepository(repo attributes.Repository) Option {
	return func(o *moduleOptions) {
		if repo != nil {
			o.repo = repo
		}
	}
}

// WithCache wires read-through caching into the default repository. The
// serialization decorators hit the store on every payload, so hosts with any
// read traffic want this on.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(o *moduleOptions) {
		o.cacheService = service
		o.keySerializer = serializer
	}
}

// New wires the module against the host database. db may be nil only when a
// repository override is supplied.
func New(db *bun.DB, cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := moduleOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	provider := options.provider
	if provider == nil {
		built, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
		})
		if err != nil {
			return nil, err
		}
		provider = built
	}

	repo := options.repo
	if repo == nil {
		if db == nil {
			return nil, ErrDatabaseRequired
		}
		repo = attributes.NewBunRepositoryWithCache(db, options.cacheService, options.keySerializer)
	}

	store := attributes.NewService(repo,
		attributes.WithLogger(logging.ModuleLogger(provider, "attributes")),
	)

	storage, err := uploads.New(cfg.Uploads.Dir, cfg.Uploads.PublicPrefix,
		uploads.WithLogger(logging.ModuleLogger(provider, "uploads")),
	)
	if err != nil {
		return nil, err
	}

	api, err := attrhttp.NewAttributeAPI(store, storage,
		attrhttp.WithBasePath(cfg.HTTP.BasePath),
		attrhttp.WithDefaultLocale(cfg.DefaultLocale),
		attrhttp.WithMaxUploadBytes(cfg.HTTP.MaxUploadBytes),
		attrhttp.WithLogger(logging.ModuleLogger(provider, "http")),
	)
	if err != nil {
		return nil, err
	}

	return &Module{
		cfg:      cfg,
		provider: provider,
		store:    store,
		storage:  storage,
		api:      api,
	}, nil
}

// Attributes returns the attribute store service.
func (m *Module) Attributes() *AttributeService {
	return m.store
}

// RegisterRoutes mounts the edit endpoints on the host mux.
func (m *Module) RegisterRoutes(mux *http.ServeMux) error {
	return m.api.Register(mux)
}

// DecorateUINormalizer wraps the host's internal UI category serializer so
// its payload carries the stored description at the default locale.
func (m *Module) DecorateUINormalizer(inner Normalizer) (Normalizer, error) {
	decorated, err := serializer.NewUIDecorator(inner, m.store,
		serializer.WithUIKey(m.cfg.Serializer.UIKey),
		serializer.WithUILocale(m.cfg.DefaultLocale),
		serializer.WithUILogger(logging.ModuleLogger(m.provider, "serializer")),
	)
	if err != nil {
		return nil, err
	}
	return decorated, nil
}

// DecorateExternalNormalizer wraps the host's external API category
// serializer so its payload carries the namespaced attribute block.
func (m *Module) DecorateExternalNormalizer(inner Normalizer) (Normalizer, error) {
	decorated, err := serializer.NewExternalDecorator(inner, m.store,
		serializer.WithNamespace(m.cfg.Serializer.Namespace),
		serializer.WithLocaleContextKeys(m.cfg.Serializer.LocaleContextKeys),
		serializer.WithDefaultLocale(m.cfg.DefaultLocale),
		serializer.WithExternalLogger(logging.ModuleLogger(m.provider, "serializer")),
	)
	if err != nil {
		return nil, err
	}
	return decorated, nil
}

// DecorateUpdater wraps the host's category updater so description fields in
// partial updates land in the attribute store.
func (m *Module) DecorateUpdater(inner ObjectUpdater) (ObjectUpdater, error) {
	decorated, err := updater.New(inner, m.store,
		updater.WithLogger(logging.ModuleLogger(m.provider, "updater")),
	)
	if err != nil {
		return nil, err
	}
	return decorated, nil
}

// NewOverlayAgent builds an edit-screen agent for the page, calling back
// into this module's endpoints under baseURL (host origin plus the module
// base path).
func (m *Module) NewOverlayAgent(page OverlayPage, baseURL string, cfg OverlayConfig) (*OverlayAgent, error) {
	client, err := overlay.NewClient(baseURL)
	if err != nil {
		return nil, err
	}
	return overlay.NewAgent(page, client,
		overlay.WithConfig(cfg),
		overlay.WithLogger(logging.ModuleLogger(m.provider, "overlay")),
	)
}
