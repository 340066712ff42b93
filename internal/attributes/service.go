package attributes

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-category-attributes/internal/logging"
	"github.com/goliatone/go-category-attributes/pkg/interfaces"
)

// ErrRepositoryRequired indicates the service was constructed without a repository.
var ErrRepositoryRequired = errors.New("attributes: repository is required")

// ErrLocaleRequired indicates a caller passed an empty locale. Locales are
// never defaulted here; callers resolve a concrete locale before reaching
// the store.
var ErrLocaleRequired = errors.New("attributes: locale is required")

// ErrCategoryIDRequired indicates a caller passed a non-positive category id.
var ErrCategoryIDRequired = errors.New("attributes: category id is required")

// ServiceOption mutates the service configuration.
type ServiceOption func(*Service)

// WithLogger wires the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service exposes typed attribute reads and writes over a Repository. It is
// stateless between calls; callers hold no cached rows.
type Service struct {
	repo   Repository
	logger interfaces.Logger
}

// NewService constructs an attribute store service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	svc := &Service{
		repo:   repo,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// GetText returns the stored description for the pair, or nil when the pair
// has never been written or the description is unset.
func (s *Service) GetText(ctx context.Context, categoryID int64, locale string) (*string, error) {
	record, err := s.get(ctx, categoryID, locale)
	if err != nil || record == nil {
		return nil, err
	}
	return cloneString(record.Description), nil
}

// SetText upserts the description for the pair. Passing nil stores a null
// description without touching the image reference.
func (s *Service) SetText(ctx context.Context, categoryID int64, locale string, text *string) error {
	locale, err := s.checkKey(categoryID, locale)
	if err != nil {
		return err
	}
	if _, err := s.repo.UpsertDescription(ctx, categoryID, locale, text); err != nil {
		s.logger.Error("attribute description write failed", "category_id", categoryID, "locale", locale, "error", err)
		return wrapUnavailable(err, "attributes: description write failed")
	}
	s.logger.Debug("attribute description stored", "category_id", categoryID, "locale", locale)
	return nil
}

// GetImageURL returns the stored image reference for the pair, or nil.
func (s *Service) GetImageURL(ctx context.Context, categoryID int64, locale string) (*string, error) {
	record, err := s.get(ctx, categoryID, locale)
	if err != nil || record == nil {
		return nil, err
	}
	return cloneString(record.ImageURL), nil
}

// SetImageURL upserts the image reference for the pair. Passing nil clears
// the reference without touching the description.
func (s *Service) SetImageURL(ctx context.Context, categoryID int64, locale string, url *string) error {
	locale, err := s.checkKey(categoryID, locale)
	if err != nil {
		return err
	}
	if _, err := s.repo.UpsertImageURL(ctx, categoryID, locale, url); err != nil {
		s.logger.Error("attribute image write failed", "category_id", categoryID, "locale", locale, "error", err)
		return wrapUnavailable(err, "attributes: image write failed")
	}
	s.logger.Debug("attribute image stored", "category_id", categoryID, "locale", locale)
	return nil
}

func (s *Service) get(ctx context.Context, categoryID int64, locale string) (*CategoryAttribute, error) {
	locale, err := s.checkKey(categoryID, locale)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.Get(ctx, categoryID, locale)
	if err != nil {
		return nil, wrapUnavailable(err, "attributes: record read failed")
	}
	return record, nil
}

func (s *Service) checkKey(categoryID int64, locale string) (string, error) {
	if s.repo == nil {
		return "", ErrRepositoryRequired
	}
	if categoryID <= 0 {
		return "", ErrCategoryIDRequired
	}
	trimmed := strings.TrimSpace(locale)
	if trimmed == "" {
		return "", ErrLocaleRequired
	}
	return trimmed, nil
}
