package attributes

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CategoryAttribute is the persisted per-(category, locale) attribute row. A row is
// created on the first write from either the update decorator or the edit
// endpoints; a write to one field never clears the other. Rows are never
// deleted by this module.
type CategoryAttribute struct {
	bun.BaseModel `bun:"table:category_attributes,alias:ca"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CategoryID  int64     `bun:"category_id,notnull" json:"category_id"`
	Locale      string    `bun:"locale,notnull" json:"locale"`
	Description *string   `bun:"description" json:"description,omitempty"`
	ImageURL    *string   `bun:"image_url" json:"image_url,omitempty"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

func (r *CategoryAttribute) clone() *CategoryAttribute {
	if r == nil {
		return nil
	}
	copied := *r
	if r.Description != nil {
		d := *r.Description
		copied.Description = &d
	}
	if r.ImageURL != nil {
		u := *r.ImageURL
		copied.ImageURL = &u
	}
	return &copied
}
