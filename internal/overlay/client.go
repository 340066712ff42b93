package overlay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

// ErrBaseURLRequired indicates the client was constructed without an endpoint base URL.
var ErrBaseURLRequired = errors.New("overlay: base URL is required")

const clientRouteGroup = "category-attributes"

// Client talks to the attribute edit endpoints over HTTP. The base URL
// includes the module's route prefix, e.g. http://localhost:8080/acme.
type Client struct {
	routes *urlkit.RouteManager
	http   *http.Client
}

// ClientOption mutates the client configuration.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// NewClient constructs a client for the edit endpoints under baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, ErrBaseURLRequired
	}
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    clientRouteGroup,
				BaseURL: trimmed,
				Paths: map[string]string{
					"description": "/category-description/:id",
					"image":       "/category-image/:id",
					"upload":      "/category-image/:id/upload",
				},
			},
		},
	})
	c := &Client{
		routes: manager,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchText returns the stored description for the pair, nil when unset.
func (c *Client) FetchText(ctx context.Context, categoryID int64, locale string) (*string, error) {
	var payload struct {
		Description *string `json:"description"`
	}
	if err := c.call(ctx, http.MethodGet, "description", categoryID, locale, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Description, nil
}

// SaveText writes the description for the pair; nil clears it.
func (c *Client) SaveText(ctx context.Context, categoryID int64, locale string, text *string) error {
	body := map[string]any{"description": text, "locale": locale}
	return c.call(ctx, http.MethodPut, "description", categoryID, "", body, nil)
}

// FetchImageURL returns the stored image reference for the pair, nil when unset.
func (c *Client) FetchImageURL(ctx context.Context, categoryID int64, locale string) (*string, error) {
	var payload struct {
		URL *string `json:"url"`
	}
	if err := c.call(ctx, http.MethodGet, "image", categoryID, locale, nil, &payload); err != nil {
		return nil, err
	}
	return payload.URL, nil
}

// Upload posts an image file for the pair and returns the public URL the
// server stored for it.
func (c *Client) Upload(ctx context.Context, categoryID int64, locale, filename string, content io.Reader) (*string, error) {
	url, err := c.buildURL("upload", categoryID, locale)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("overlay: build upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("overlay: read upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("overlay: finish upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("overlay: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overlay: POST upload: %w", err)
	}
	defer res.Body.Close()

	var payload struct {
		OK    bool   `json:"ok"`
		URL   string `json:"url"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("overlay: decode upload response: %w", err)
	}
	if !payload.OK || payload.URL == "" {
		if payload.Error != "" {
			return nil, fmt.Errorf("overlay: upload rejected: %s", payload.Error)
		}
		return nil, fmt.Errorf("overlay: upload rejected with status %d", res.StatusCode)
	}
	return &payload.URL, nil
}

func (c *Client) buildURL(route string, categoryID int64, locale string) (string, error) {
	builder := c.routes.Group(clientRouteGroup).Builder(route)
	builder.WithParam("id", strconv.FormatInt(categoryID, 10))
	if locale != "" {
		builder.WithQuery("locale", locale)
	}
	url, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("overlay: build %s url: %w", route, err)
	}
	return url, nil
}

func (c *Client) call(ctx context.Context, method, route string, categoryID int64, locale string, body any, out any) error {
	url, err := c.buildURL(route, categoryID, locale)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("overlay: encode %s body: %w", route, err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("overlay: build %s request: %w", route, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("overlay: %s %s: %w", method, route, err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("overlay: %s %s: unexpected status %d", method, route, res.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("overlay: decode %s response: %w", route, err)
	}
	return nil
}
