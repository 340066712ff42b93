package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-category-attributes/internal/attributes"
	"github.com/goliatone/go-category-attributes/internal/logging"
	"github.com/goliatone/go-category-attributes/internal/markdown"
	"github.com/goliatone/go-category-attributes/pkg/interfaces"
)

// ErrStoreRequired indicates the API was constructed without the attribute store.
var ErrStoreRequired = errors.New("http: attribute store is required")

// ErrStorageRequired indicates the API was constructed without image storage.
var ErrStorageRequired = errors.New("http: image storage is required")

// ImageStorage persists an uploaded file and returns its public URL.
type ImageStorage interface {
	Store(ctx context.Context, categoryID int64, filename string, content io.Reader) (string, error)
}

// AttributeAPI registers the category attribute edit routes on a mux. Every
// route operates on one (category, locale) pair; the locale comes from the
// request body when present, then the query string, then the default.
type AttributeAPI struct {
	store          *attributes.Service
	storage        ImageStorage
	renderer       *markdown.Renderer
	basePath       string
	defaultLocale  string
	maxUploadBytes int64
	logger         interfaces.Logger
}

// Option mutates the API configuration.
type Option func(*AttributeAPI)

// WithBasePath overrides the route prefix.
func WithBasePath(base string) Option {
	return func(api *AttributeAPI) {
		if strings.TrimSpace(base) != "" {
			api.basePath = base
		}
	}
}

// WithDefaultLocale overrides the fallback locale.
func WithDefaultLocale(locale string) Option {
	return func(api *AttributeAPI) {
		if locale != "" {
			api.defaultLocale = locale
		}
	}
}

// WithMaxUploadBytes caps the accepted upload size.
func WithMaxUploadBytes(limit int64) Option {
	return func(api *AttributeAPI) {
		if limit > 0 {
			api.maxUploadBytes = limit
		}
	}
}

// WithLogger wires the API logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *AttributeAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// NewAttributeAPI constructs the edit API around the store and image storage.
func NewAttributeAPI(store *attributes.Service, storage ImageStorage, opts ...Option) (*AttributeAPI, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if storage == nil {
		return nil, ErrStorageRequired
	}
	api := &AttributeAPI{
		store:          store,
		storage:        storage,
		renderer:       markdown.NewRenderer(),
		basePath:       "/acme",
		defaultLocale:  "en_US",
		maxUploadBytes: 16 << 20,
		logger:         logging.NoOp(),
	}
	for _, opt := range opts {
		opt(api)
	}
	return api, nil
}

// Register wires the edit routes onto the mux.
func (api *AttributeAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return errors.New("http: mux is required")
	}
	description := joinPath(api.basePath, "category-description")
	image := joinPath(api.basePath, "category-image")

	mux.HandleFunc("GET "+description+"/{id}", api.handleDescriptionGet)
	mux.HandleFunc("PUT "+description+"/{id}", api.handleDescriptionPut)
	mux.HandleFunc("GET "+description+"/{id}/preview", api.handleDescriptionPreview)
	mux.HandleFunc("GET "+image+"/{id}", api.handleImageGet)
	mux.HandleFunc("PUT "+image+"/{id}", api.handleImagePut)
	mux.HandleFunc("POST "+image+"/{id}/upload", api.handleImageUpload)
	return nil
}

func (api *AttributeAPI) resolveLocale(r *http.Request, bodyLocale string) string {
	if locale := strings.TrimSpace(bodyLocale); locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(r.URL.Query().Get("locale")); locale != "" {
		return locale
	}
	return api.defaultLocale
}

type descriptionPayload struct {
	Description *string `json:"description"`
	Locale      string  `json:"locale,omitempty"`
}

type imagePayload struct {
	URL    *string `json:"url"`
	Locale string  `json:"locale,omitempty"`
}

type descriptionResponse struct {
	Description *string `json:"description"`
}

type htmlResponse struct {
	HTML string `json:"html"`
}

type imageResponse struct {
	URL *string `json:"url"`
}

type saveResponse struct {
	OK  bool    `json:"ok"`
	URL *string `json:"url,omitempty"`
}

type uploadResponse struct {
	OK    bool   `json:"ok"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

func (api *AttributeAPI) handleDescriptionGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	text, err := api.store.GetText(r.Context(), id, api.resolveLocale(r, ""))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, descriptionResponse{Description: text})
}

func (api *AttributeAPI) handleDescriptionPut(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var payload descriptionPayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	locale := api.resolveLocale(r, payload.Locale)
	// An absent key and an explicit null both clear the stored text.
	if err := api.store.SetText(r.Context(), id, locale, payload.Description); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{OK: true})
}

func (api *AttributeAPI) handleDescriptionPreview(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	text, err := api.store.GetText(r.Context(), id, api.resolveLocale(r, ""))
	if err != nil {
		writeError(w, err)
		return
	}
	if text == nil {
		writeJSON(w, http.StatusOK, htmlResponse{HTML: ""})
		return
	}
	html, err := api.renderer.Render([]byte(*text))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, htmlResponse{HTML: string(html)})
}

func (api *AttributeAPI) handleImageGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	url, err := api.store.GetImageURL(r.Context(), id, api.resolveLocale(r, ""))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, imageResponse{URL: url})
}

func (api *AttributeAPI) handleImagePut(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var payload imagePayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	locale := api.resolveLocale(r, payload.Locale)
	// The URL is stored verbatim, null clears the reference. Nothing checks
	// that the target file exists.
	if err := api.store.SetImageURL(r.Context(), id, locale, payload.URL); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{OK: true, URL: payload.URL})
}

func (api *AttributeAPI) handleImageUpload(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, api.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, uploadResponse{OK: false, Error: "file is required"})
		return
	}
	defer file.Close()
	locale := api.resolveLocale(r, r.FormValue("locale"))

	url, err := api.storage.Store(r.Context(), id, header.Filename, file)
	if err != nil {
		api.logger.Error("image upload failed", "category_id", id, "locale", locale, "error", err)
		writeJSON(w, http.StatusInternalServerError, uploadResponse{OK: false, Error: err.Error()})
		return
	}

	if err := api.store.SetImageURL(r.Context(), id, locale, &url); err != nil {
		api.logger.Error("image reference persistence failed", "category_id", id, "locale", locale, "url", url, "error", err)
		writeJSON(w, http.StatusInternalServerError, uploadResponse{OK: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{OK: true, URL: url})
}
