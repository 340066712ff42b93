package attributes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository stores attribute records in memory for tests and
// host-less development.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*CategoryAttribute
	now     func() time.Time
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string]*CategoryAttribute),
		now:     time.Now,
	}
}

// Get returns the record for the pair, or nil when none exists.
func (r *MemoryRepository) Get(_ context.Context, categoryID int64, locale string) (*CategoryAttribute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[recordKey(categoryID, locale)]
	if !ok {
		return nil, nil
	}
	return record.clone(), nil
}

// UpsertDescription writes the description, creating the row when absent.
func (r *MemoryRepository) UpsertDescription(_ context.Context, categoryID int64, locale string, description *string) (*CategoryAttribute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.ensure(categoryID, locale)
	record.Description = cloneString(description)
	record.UpdatedAt = r.now().UTC()
	return record.clone(), nil
}

// UpsertImageURL writes the image reference, creating the row when absent.
func (r *MemoryRepository) UpsertImageURL(_ context.Context, categoryID int64, locale string, url *string) (*CategoryAttribute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.ensure(categoryID, locale)
	record.ImageURL = cloneString(url)
	record.UpdatedAt = r.now().UTC()
	return record.clone(), nil
}

func (r *MemoryRepository) ensure(categoryID int64, locale string) *CategoryAttribute {
	key := recordKey(categoryID, locale)
	record, ok := r.records[key]
	if !ok {
		record = &CategoryAttribute{
			ID:         uuid.New(),
			CategoryID: categoryID,
			Locale:     strings.TrimSpace(locale),
		}
		r.records[key] = record
	}
	return record
}

func recordKey(categoryID int64, locale string) string {
	return fmt.Sprintf("%d:%s", categoryID, strings.TrimSpace(locale))
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
