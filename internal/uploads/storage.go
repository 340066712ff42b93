// Package uploads implements the local file storage backend for category
// images. One directory per category holds at most one file; the directory
// is shared by every locale of that category.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	slug "github.com/goliatone/go-slug"

	"github.com/goliatone/go-category-attributes/internal/logging"
	"github.com/goliatone/go-category-attributes/pkg/interfaces"
)

// ErrRootRequired indicates the storage was constructed without a root directory.
var ErrRootRequired = errors.New("uploads: root directory is required")

// ErrCategoryIDRequired indicates a caller passed a non-positive category id.
var ErrCategoryIDRequired = errors.New("uploads: category id is required")

// Option mutates the storage configuration.
type Option func(*Storage)

// WithClock overrides the clock used for collision-avoiding name prefixes.
func WithClock(clock func() time.Time) Option {
	return func(s *Storage) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithLogger wires the storage logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Storage stores category images on the local filesystem and returns the
// public URL the host serves them under.
type Storage struct {
	root         string
	publicPrefix string
	now          func() time.Time
	logger       interfaces.Logger
}

// New constructs a local image storage rooted at dir. Uploaded files become
// reachable under publicPrefix, which the host maps onto dir.
func New(dir, publicPrefix string, opts ...Option) (*Storage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrRootRequired
	}
	s := &Storage{
		root:         dir,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
		now:          time.Now,
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Store persists the upload for the category and returns its public URL.
// Every file already present in the category's directory is removed first:
// the storage enforces a single image per category, independent of locale.
// The delete-then-write sequence is not isolated from a concurrent Store for
// the same category; last writer wins.
func (s *Storage) Store(ctx context.Context, categoryID int64, filename string, content io.Reader) (string, error) {
	if categoryID <= 0 {
		return "", ErrCategoryIDRequired
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, strconv.FormatInt(categoryID, 10))
	// MkdirAll is idempotent, so concurrent creation for the same category
	// cannot fail either request.
	if err := os.MkdirAll(dir, 0o775); err != nil {
		return "", fmt.Errorf("uploads: create directory %s: %w", dir, err)
	}

	s.clearDirectory(dir)

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitizeFilename(filename))
	target := filepath.Join(dir, name)

	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o664)
	if err != nil {
		return "", fmt.Errorf("uploads: create file %s: %w", target, err)
	}
	if _, err := io.Copy(file, content); err != nil {
		file.Close()
		os.Remove(target)
		return "", fmt.Errorf("uploads: write file %s: %w", target, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("uploads: close file %s: %w", target, err)
	}

	url := path.Join(s.publicPrefix, strconv.FormatInt(categoryID, 10), name)
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	s.logger.Info("category image stored", "category_id", categoryID, "url", url)
	return url, nil
}

// clearDirectory removes prior uploads. Individual removal failures are
// logged and skipped; the subsequent write surfaces anything fatal.
func (s *Storage) clearDirectory(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn("could not list upload directory", "dir", dir, "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			s.logger.Warn("could not remove prior upload", "dir", dir, "file", entry.Name(), "error", err)
		}
	}
}

// sanitizeFilename reduces the client-supplied name to a restricted
// character set, keeping a lowercased alphanumeric extension.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	normalized, err := slug.Normalize(stem)
	if err != nil || normalized == "" {
		normalized = "image"
	}

	var cleaned strings.Builder
	for _, r := range strings.ToLower(ext) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			cleaned.WriteRune(r)
		}
	}
	if cleaned.Len() == 0 {
		return normalized
	}
	return normalized + "." + cleaned.String()
}
