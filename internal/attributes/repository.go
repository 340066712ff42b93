package attributes

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const textCodeStoreUnavailable = "ATTRIBUTE_STORE_UNAVAILABLE"

// Repository persists attribute records keyed by (categoryID, locale).
// Get returns nil (not an error) when no record exists for the pair; the
// upserts create the row on first write and leave the untouched field alone
// on subsequent writes.
type Repository interface {
	Get(ctx context.Context, categoryID int64, locale string) (*CategoryAttribute, error)
	UpsertDescription(ctx context.Context, categoryID int64, locale string, description *string) (*CategoryAttribute, error)
	UpsertImageURL(ctx context.Context, categoryID int64, locale string, url *string) (*CategoryAttribute, error)
}

// NewCategoryAttributeRepository creates a typed repository for attribute records.
func NewCategoryAttributeRepository(db *bun.DB) repository.Repository[*CategoryAttribute] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*CategoryAttribute]{
		NewRecord: func() *CategoryAttribute { return &CategoryAttribute{} },
		GetID: func(r *CategoryAttribute) uuid.UUID {
			return r.ID
		},
		SetID: func(r *CategoryAttribute, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *CategoryAttribute) string {
			return r.ID.String()
		},
	})
}

// IsUnavailable reports whether err originated from an unreachable backing
// store. Serialization decorators use this to degrade to null instead of
// failing the host payload.
func IsUnavailable(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryExternal)
}

func wrapUnavailable(err error, msg string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, msg).
		WithTextCode(textCodeStoreUnavailable)
}
