package overlay

import "sync"

// Drafts tracks unsaved description text per category. Entries survive
// navigation between categories within one session and are discarded with
// the process, matching a full page reload.
type Drafts struct {
	mu      sync.RWMutex
	entries map[int64]string
}

// NewDrafts constructs an empty draft registry.
func NewDrafts() *Drafts {
	return &Drafts{entries: make(map[int64]string)}
}

// Put records the draft text for a category.
func (d *Drafts) Put(categoryID int64, text string) {
	if categoryID <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[categoryID] = text
}

// Get returns the draft for a category and whether one exists.
func (d *Drafts) Get(categoryID int64) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	text, ok := d.entries[categoryID]
	return text, ok
}

// Discard drops the draft for a category, typically after a successful save.
func (d *Drafts) Discard(categoryID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, categoryID)
}
