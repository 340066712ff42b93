package attributes

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const categoryAttributeNamespace = "category_attribute"

// BunRepository implements Repository on a Bun-backed database with optional
// read caching. Writes rely on the database's atomic upsert so concurrent
// callers resolve at row granularity (last write wins) without application
// locks.
type BunRepository struct {
	db           *bun.DB
	repo         repository.Repository[*CategoryAttribute]
	cacheService cache.CacheService
	cachePrefix  string
	now          func() time.Time
}

// BunOption mutates the repository configuration.
type BunOption func(*BunRepository)

// WithClock overrides the clock used for updated_at stamps.
func WithClock(clock func() time.Time) BunOption {
	return func(r *BunRepository) {
		if clock != nil {
			r.now = clock
		}
	}
}

// NewBunRepository creates an attribute repository without caching.
func NewBunRepository(db *bun.DB, opts ...BunOption) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil, opts...)
}

// NewBunRepositoryWithCache creates an attribute repository with read-through
// caching. Serialization decorators hit Get on every payload, so cached reads
// pay off even for small catalogs.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer, opts ...BunOption) *BunRepository {
	base := NewCategoryAttributeRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = categoryAttributeNamespace + cache.KeySeparator
	}
	r := &BunRepository{
		db:           db,
		repo:         base,
		cacheService: svc,
		cachePrefix:  prefix,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the record for the pair, or nil when none exists.
func (r *BunRepository) Get(ctx context.Context, categoryID int64, locale string) (*CategoryAttribute, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.category_id = ?", categoryID).
				Where("?TableAlias.locale = ?", locale)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, nil
		}
		return nil, wrapUnavailable(err, "attribute record read failed")
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// UpsertDescription writes the description for the pair, creating the row
// with a null image reference when it does not exist yet.
func (r *BunRepository) UpsertDescription(ctx context.Context, categoryID int64, locale string, description *string) (*CategoryAttribute, error) {
	model := r.newModel(categoryID, locale)
	model.Description = description

	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (category_id, locale) DO UPDATE").
		Set("description = EXCLUDED.description").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, wrapUnavailable(err, "attribute description write failed")
	}

	return r.afterWrite(ctx, categoryID, locale)
}

// UpsertImageURL writes the image reference for the pair, creating the row
// with a null description when it does not exist yet.
func (r *BunRepository) UpsertImageURL(ctx context.Context, categoryID int64, locale string, url *string) (*CategoryAttribute, error) {
	model := r.newModel(categoryID, locale)
	model.ImageURL = url

	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (category_id, locale) DO UPDATE").
		Set("image_url = EXCLUDED.image_url").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, wrapUnavailable(err, "attribute image write failed")
	}

	return r.afterWrite(ctx, categoryID, locale)
}

// InvalidateCache drops cached attribute reads.
func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func (r *BunRepository) newModel(categoryID int64, locale string) *CategoryAttribute {
	return &CategoryAttribute{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Locale:     strings.TrimSpace(locale),
		UpdatedAt:  r.now().UTC(),
	}
}

func (r *BunRepository) afterWrite(ctx context.Context, categoryID int64, locale string) (*CategoryAttribute, error) {
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return r.Get(ctx, categoryID, locale)
}
