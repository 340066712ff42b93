package overlay

import "sync"

// Status is the short state string the card surfaces next to its save
// trigger.
type Status string

const (
	StatusIdle   Status = ""
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

// UploadStatus is the state string next to the image upload trigger.
type UploadStatus string

const (
	UploadIdle    UploadStatus = ""
	UploadRunning UploadStatus = "uploading"
	UploadDone    UploadStatus = "uploaded"
	UploadError   UploadStatus = "error"
)

// Card is the editing widget the agent mounts into the host's properties
// region: a text field, a save trigger, an image preview, and a status line.
// It is reused across host re-renders and across category navigation so
// in-progress typed text is never lost to a rebuild.
type Card struct {
	mu            sync.RWMutex
	categoryID    int64
	text          string
	userEdited    bool
	focused       bool
	saving        bool
	status        Status
	savedOnce     bool
	uploading     bool
	uploadStatus  UploadStatus
	imageURL      *string
	imageHydrated bool
	drafts        *Drafts
}

// NewCard constructs a card backed by the shared draft registry.
func NewCard(drafts *Drafts) *Card {
	if drafts == nil {
		drafts = NewDrafts()
	}
	return &Card{drafts: drafts}
}

// Rebind switches the card to another category. The outgoing category's
// unsaved text is parked as a draft; if the incoming category has a draft it
// is restored immediately, ahead of any server fetch. Rebinding to the
// current category is a no-op so reattachment preserves the field as is.
func (c *Card) Rebind(categoryID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.categoryID == categoryID {
		return
	}
	if c.userEdited && c.categoryID > 0 {
		c.drafts.Put(c.categoryID, c.text)
	}
	c.categoryID = categoryID
	c.imageURL = nil
	c.imageHydrated = false
	c.focused = false
	c.saving = false
	c.status = StatusIdle
	c.savedOnce = false
	c.uploading = false
	c.uploadStatus = UploadIdle
	if draft, ok := c.drafts.Get(categoryID); ok {
		c.text = draft
		c.userEdited = true
	} else {
		c.text = ""
		c.userEdited = false
	}
}

// Type records user input: the field content changes and a draft is kept so
// the text survives navigation and host re-renders. The status line drops
// back to idle ("not saved") unless the category was already saved once;
// after that the saved mark stays put.
func (c *Card) Type(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	c.userEdited = true
	if c.categoryID > 0 {
		c.drafts.Put(c.categoryID, text)
	}
	if !c.savedOnce && !c.saving {
		c.status = StatusIdle
	}
}

// HydrateText applies a server value to the field. A field the user already
// edited is left alone; the draft wins over whatever the server returned.
func (c *Card) HydrateText(text *string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userEdited {
		return
	}
	if text == nil {
		c.text = ""
		return
	}
	c.text = *text
}

// HydrateImage applies the server image reference to the preview and marks
// the preview hydrated, nil included.
func (c *Card) HydrateImage(url *string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.imageURL = url
	c.imageHydrated = true
}

// Focus marks the text field as having input focus.
func (c *Card) Focus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focused = true
}

// Blur clears input focus.
func (c *Card) Blur() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focused = false
}

// BeginSave marks the save in flight and disables the trigger. It reports
// false when a save is already running.
func (c *Card) BeginSave() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saving || c.categoryID <= 0 {
		return false
	}
	c.saving = true
	c.status = StatusSaving
	return true
}

// SetStatus updates the status line without touching the save trigger.
func (c *Card) SetStatus(status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

// FinishSave re-enables the trigger and records the outcome. A successful
// save resets the edited flag so later hydrations may apply server values
// again, and latches the saved mark for this category.
func (c *Card) FinishSave(status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saving = false
	c.status = status
	if status == StatusSaved {
		c.userEdited = false
		c.savedOnce = true
	}
}

// BeginUpload marks an image upload in flight and disables the trigger. It
// reports false when an upload is already running.
func (c *Card) BeginUpload() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.uploading || c.categoryID <= 0 {
		return false
	}
	c.uploading = true
	c.uploadStatus = UploadRunning
	return true
}

// FinishUpload re-enables the trigger and records the outcome. A successful
// upload swaps the preview to the new URL.
func (c *Card) FinishUpload(url *string, status UploadStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploading = false
	c.uploadStatus = status
	if status == UploadDone && url != nil {
		c.imageURL = url
		c.imageHydrated = true
	}
}

func (c *Card) CategoryID() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.categoryID
}

func (c *Card) Text() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.text
}

func (c *Card) UserEdited() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userEdited
}

func (c *Card) Focused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.focused
}

func (c *Card) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Card) SavedOnce() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.savedOnce
}

func (c *Card) UploadStatus() UploadStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uploadStatus
}

func (c *Card) ImageURL() *string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.imageURL
}

func (c *Card) ImageHydrated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.imageHydrated
}
