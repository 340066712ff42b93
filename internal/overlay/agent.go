// Package overlay keeps a description editing card synchronized with the
// host's single page edit screen. The host renders asynchronously and
// re-renders at will, so the agent runs a small state machine: locate the
// mount region within a bounded wait, attach the card, hydrate it from the
// attribute endpoints, and reconcile on a heartbeat.
package overlay

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/goliatone/go-category-attributes/internal/logging"
	"github.com/goliatone/go-category-attributes/internal/runtimeconfig"
	"github.com/goliatone/go-category-attributes/pkg/interfaces"
)

// ErrPageRequired indicates the agent was constructed without a page.
var ErrPageRequired = errors.New("overlay: page is required")

// ErrAPIRequired indicates the agent was constructed without an API client.
var ErrAPIRequired = errors.New("overlay: api client is required")

// ErrNotMounted indicates a save was requested while no category is being edited.
var ErrNotMounted = errors.New("overlay: no category mounted")

// ErrAlreadyRunning indicates Run was called twice for the same agent.
var ErrAlreadyRunning = errors.New("overlay: agent already running")

// API is the slice of the attribute endpoints the agent needs.
type API interface {
	FetchText(ctx context.Context, categoryID int64, locale string) (*string, error)
	SaveText(ctx context.Context, categoryID int64, locale string, text *string) error
	FetchImageURL(ctx context.Context, categoryID int64, locale string) (*string, error)
	Upload(ctx context.Context, categoryID int64, locale, filename string, content io.Reader) (*string, error)
}

// State is the agent's position in its mount lifecycle.
type State int

const (
	// StateIdle means no category edit route is active.
	StateIdle State = iota
	// StateLocating means an edit route is active and the agent is waiting
	// for the host to render the mount region.
	StateLocating
	// StateMounted means the card is attached but server data has not been
	// applied yet.
	StateMounted
	// StateHydrated means the card is attached and carries server data or a
	// preserved draft.
	StateHydrated
)

func (s State) String() string {
	switch s {
	case StateLocating:
		return "locating"
	case StateMounted:
		return "mounted"
	case StateHydrated:
		return "hydrated"
	default:
		return "idle"
	}
}

const defaultPollInterval = 50 * time.Millisecond

type hydration struct {
	categoryID int64
	text       *string
	textErr    error
	imageURL   *string
	imageErr   error
	imageOnly  bool
}

// Agent drives one card against one page.
type Agent struct {
	page   Page
	api    API
	cfg    runtimeconfig.OverlayConfig
	poll   time.Duration
	logger interfaces.Logger
	drafts *Drafts
	card   *Card
	now    func() time.Time

	hydrations chan hydration

	mu        sync.RWMutex
	running   bool
	state     State
	currentID int64

	// Locating bookkeeping, touched only from the run loop.
	locatingSince time.Time
	backoffUntil  time.Time
	fetchInFlight bool
}

// Option mutates the agent configuration.
type Option func(*Agent)

// WithConfig overrides the agent timings.
func WithConfig(cfg runtimeconfig.OverlayConfig) Option {
	return func(a *Agent) { a.cfg = cfg }
}

// WithLogger wires the agent logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(a *Agent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithDrafts shares a draft registry across agents.
func WithDrafts(drafts *Drafts) Option {
	return func(a *Agent) {
		if drafts != nil {
			a.drafts = drafts
		}
	}
}

// WithClock overrides the clock used for mount deadlines.
func WithClock(clock func() time.Time) Option {
	return func(a *Agent) {
		if clock != nil {
			a.now = clock
		}
	}
}

// WithPollInterval overrides the mount polling cadence.
func WithPollInterval(interval time.Duration) Option {
	return func(a *Agent) {
		if interval > 0 {
			a.poll = interval
		}
	}
}

// NewAgent constructs an agent for the page, talking to the attribute
// endpoints through api.
func NewAgent(page Page, api API, opts ...Option) (*Agent, error) {
	if page == nil {
		return nil, ErrPageRequired
	}
	if api == nil {
		return nil, ErrAPIRequired
	}
	a := &Agent{
		page:       page,
		api:        api,
		cfg:        runtimeconfig.DefaultOverlayConfig(),
		poll:       defaultPollInterval,
		logger:     logging.NoOp(),
		drafts:     NewDrafts(),
		now:        time.Now,
		hydrations: make(chan hydration, 4),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.card = NewCard(a.drafts)
	return a, nil
}

// Card exposes the widget for the host to render and for input wiring.
func (a *Agent) Card() *Card { return a.card }

// State returns the agent's current lifecycle state.
func (a *Agent) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// CurrentCategoryID returns the category the agent considers active, zero
// when idle.
func (a *Agent) CurrentCategoryID() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.currentID
}

func (a *Agent) setState(state State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = state
}

func (a *Agent) setCurrent(id int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentID = id
}

// Run drives the agent until the context ends. Route change notifications,
// mount polling, heartbeat reconciliation, and hydration results all feed a
// single loop, so state transitions never race each other. Run refuses a
// second concurrent invocation; one agent drives one page.
func (a *Agent) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return ErrAlreadyRunning
	}
	a.running = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	changes := a.page.Subscribe()
	poll := time.NewTicker(a.poll)
	defer poll.Stop()
	heartbeat := time.NewTicker(a.cfg.Heartbeat)
	defer heartbeat.Stop()

	a.evaluate(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
			a.evaluate(ctx)
		case <-poll.C:
			a.pollMount(ctx)
		case <-heartbeat.C:
			a.reconcile(ctx)
		case h := <-a.hydrations:
			a.applyHydration(h)
		}
	}
}

// evaluate reacts to a (possible) route change.
func (a *Agent) evaluate(ctx context.Context) {
	id, ok := CategoryFromRoute(a.page.Route())
	if !ok {
		a.unmount()
		return
	}
	if id == a.CurrentCategoryID() && a.State() != StateIdle {
		return
	}
	a.mountFor(ctx, id)
}

// mountFor starts a mount attempt for the category. Typed text for the
// previous category is already parked as a draft by the card.
func (a *Agent) mountFor(ctx context.Context, id int64) {
	a.setCurrent(id)
	a.setState(StateLocating)
	a.locatingSince = a.now()
	a.backoffUntil = time.Time{}
	a.logger.Debug("locating mount region", "category_id", id)
	a.pollMount(ctx)
}

// pollMount advances a pending mount attempt. The wait for the region is
// bounded; on timeout the whole attempt restarts after a fixed delay, since
// the host's screen may simply still be loading.
func (a *Agent) pollMount(ctx context.Context) {
	if a.State() != StateLocating {
		return
	}
	now := a.now()
	if !a.backoffUntil.IsZero() {
		if now.Before(a.backoffUntil) {
			return
		}
		a.backoffUntil = time.Time{}
		a.locatingSince = now
	}

	region := a.page.PropertiesRegion()
	if region != nil && region.Connected() && region.Ready() {
		a.attach(ctx, region)
		return
	}

	deadline := a.locatingSince.Add(a.cfg.MountTimeout)
	if region != nil && region.Connected() {
		// Region exists but the host has not finished rendering it; allow
		// the longer readiness window.
		deadline = a.locatingSince.Add(a.cfg.ReadyTimeout)
	}
	if now.After(deadline) {
		a.logger.Debug("mount attempt timed out, retrying", "category_id", a.CurrentCategoryID(), "retry_in", a.cfg.RetryDelay)
		a.backoffUntil = now.Add(a.cfg.RetryDelay)
	}
}

func (a *Agent) attach(ctx context.Context, region Region) {
	id := a.CurrentCategoryID()
	a.card.Rebind(id)
	if err := region.Attach(a.card); err != nil {
		a.logger.Warn("card attach failed, retrying", "category_id", id, "error", err)
		a.backoffUntil = a.now().Add(a.cfg.RetryDelay)
		return
	}
	a.setState(StateMounted)
	a.logger.Debug("card mounted", "category_id", id)
	a.beginHydration(ctx, id, false)
}

// beginHydration fetches server values off the loop goroutine. The result
// carries the category id it was fetched for; applyHydration drops it if the
// user navigated away in the meantime.
func (a *Agent) beginHydration(ctx context.Context, id int64, imageOnly bool) {
	if a.fetchInFlight {
		return
	}
	a.fetchInFlight = true
	locale := a.page.Locale()
	go func() {
		h := hydration{categoryID: id, imageOnly: imageOnly}
		if !imageOnly {
			h.text, h.textErr = a.api.FetchText(ctx, id, locale)
		}
		h.imageURL, h.imageErr = a.api.FetchImageURL(ctx, id, locale)
		select {
		case a.hydrations <- h:
		case <-ctx.Done():
		}
	}()
}

func (a *Agent) applyHydration(h hydration) {
	a.fetchInFlight = false
	if h.categoryID != a.CurrentCategoryID() || a.State() == StateIdle {
		a.logger.Debug("stale hydration discarded", "fetched_for", h.categoryID, "current", a.CurrentCategoryID())
		return
	}

	if !h.imageOnly {
		if h.textErr != nil {
			a.logger.Warn("description fetch failed", "category_id", h.categoryID, "error", h.textErr)
			a.card.SetStatus(StatusError)
			return
		}
		a.card.HydrateText(h.text)
	}
	if h.imageErr != nil {
		a.logger.Warn("image fetch failed", "category_id", h.categoryID, "error", h.imageErr)
	} else {
		a.card.HydrateImage(h.imageURL)
	}
	a.setState(StateHydrated)
}

// reconcile is the low frequency safety net: it catches route changes that
// fired no event, mount points replaced by host re-renders, and image
// previews that missed hydration. It does nothing while the user is typing.
func (a *Agent) reconcile(ctx context.Context) {
	if a.card.Focused() {
		return
	}

	id, ok := CategoryFromRoute(a.page.Route())
	if !ok {
		a.unmount()
		return
	}
	if id != a.CurrentCategoryID() {
		a.mountFor(ctx, id)
		return
	}

	switch a.State() {
	case StateIdle:
		a.mountFor(ctx, id)
	case StateLocating:
		a.pollMount(ctx)
	case StateMounted, StateHydrated:
		region := a.page.PropertiesRegion()
		if region == nil || !region.Connected() {
			a.logger.Debug("mount region vanished, relocating", "category_id", id)
			a.setState(StateLocating)
			a.locatingSince = a.now()
			a.backoffUntil = time.Time{}
			return
		}
		if !region.Contains(a.card) {
			// The host re-rendered over the mount point. Reattach the same
			// card so typed text survives.
			if err := region.Attach(a.card); err != nil {
				a.logger.Warn("card reattach failed", "category_id", id, "error", err)
				a.setState(StateLocating)
				a.locatingSince = a.now()
				return
			}
			a.logger.Debug("card reattached after host re-render", "category_id", id)
		}
		if a.State() == StateMounted {
			a.beginHydration(ctx, id, false)
		} else if !a.card.ImageHydrated() {
			a.beginHydration(ctx, id, true)
		}
	}
}

// unmount returns to idle. Drafts stay in the registry; the card itself
// leaves the document together with the host's edit screen.
func (a *Agent) unmount() {
	if a.State() == StateIdle {
		return
	}
	a.logger.Debug("leaving edit screen", "category_id", a.CurrentCategoryID())
	a.setCurrent(0)
	a.setState(StateIdle)
}

// Save pushes the card's current text to the attribute endpoints. The
// trigger is disabled while the request runs; concurrent saves are not
// serialized beyond that, the last response wins.
func (a *Agent) Save(ctx context.Context) error {
	id := a.card.CategoryID()
	if id <= 0 {
		return ErrNotMounted
	}
	if !a.card.BeginSave() {
		return nil
	}
	text := a.card.Text()
	if err := a.api.SaveText(ctx, id, a.page.Locale(), &text); err != nil {
		a.logger.Warn("description save failed", "category_id", id, "error", err)
		a.card.FinishSave(StatusError)
		return err
	}
	a.drafts.Discard(id)
	a.card.FinishSave(StatusSaved)
	return nil
}

// Upload pushes an image file to the attribute endpoints and swaps the
// card's preview to the stored URL. Like Save, the trigger is disabled for
// the duration; a failed upload marks the status line and nothing else, the
// heartbeat keeps running.
func (a *Agent) Upload(ctx context.Context, filename string, content io.Reader) error {
	id := a.card.CategoryID()
	if id <= 0 {
		return ErrNotMounted
	}
	if !a.card.BeginUpload() {
		return nil
	}
	url, err := a.api.Upload(ctx, id, a.page.Locale(), filename, content)
	if err != nil {
		a.logger.Warn("image upload failed", "category_id", id, "error", err)
		a.card.FinishUpload(nil, UploadError)
		return err
	}
	a.card.FinishUpload(url, UploadDone)
	a.logger.Debug("image uploaded", "category_id", id, "url", url)
	return nil
}
