package updater

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-category-attributes/internal/attributes"
	"github.com/goliatone/go-category-attributes/pkg/interfaces"
)

type stubCategory struct {
	id    int64
	hasID bool
}

func (c stubCategory) ID() (int64, bool) { return c.id, c.hasID }

type recordingUpdater struct {
	calls int
	err   error
}

func (u *recordingUpdater) Update(context.Context, any, map[string]any, map[string]any) error {
	u.calls++
	return u.err
}

type validatingUpdater struct {
	recordingUpdater
	issues []interfaces.Issue
}

func (u *validatingUpdater) Validate(context.Context, any, map[string]any, map[string]any) ([]interfaces.Issue, error) {
	return u.issues, nil
}

func newStore() *attributes.Service {
	return attributes.NewService(attributes.NewMemoryRepository())
}

func textOf(t *testing.T, store *attributes.Service, id int64, locale string) *string {
	t.Helper()
	text, err := store.GetText(context.Background(), id, locale)
	if err != nil {
		t.Fatalf("GetText() error = %v", err)
	}
	return text
}

func TestDecorator_PersistsDescriptionAfterInnerUpdate(t *testing.T) {
	store := newStore()
	inner := &recordingUpdater{}
	decorator, err := New(inner, store)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	data := map[string]any{"description": "winter boots", "labels": map[string]any{"en_US": "Boots"}}
	options := map[string]any{"locale": "en_US"}
	if err := decorator.Update(context.Background(), stubCategory{id: 42, hasID: true}, data, options); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner updater called %d times, want 1", inner.calls)
	}

	text := textOf(t, store, 42, "en_US")
	if text == nil || *text != "winter boots" {
		t.Fatalf("stored description = %v", text)
	}
}

func TestDecorator_OmittedDescriptionWritesNothing(t *testing.T) {
	store := newStore()
	decorator, _ := New(&recordingUpdater{}, store)

	data := map[string]any{"labels": map[string]any{"en_US": "Boots"}}
	options := map[string]any{"locale": "en_US"}
	if err := decorator.Update(context.Background(), stubCategory{id: 42, hasID: true}, data, options); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if text := textOf(t, store, 42, "en_US"); text != nil {
		t.Fatalf("store written despite omitted description: %q", *text)
	}
}

func TestDecorator_InnerFailureSkipsWrite(t *testing.T) {
	store := newStore()
	innerErr := errors.New("host rejected update")
	decorator, _ := New(&recordingUpdater{err: innerErr}, store)

	data := map[string]any{"description": "should not land"}
	options := map[string]any{"locale": "en_US"}
	err := decorator.Update(context.Background(), stubCategory{id: 42, hasID: true}, data, options)
	if !errors.Is(err, innerErr) {
		t.Fatalf("expected inner error to propagate, got %v", err)
	}
	if text := textOf(t, store, 42, "en_US"); text != nil {
		t.Fatalf("store written despite inner failure: %q", *text)
	}
}

func TestDecorator_LocaleResolutionOrder(t *testing.T) {
	store := newStore()
	decorator, _ := New(&recordingUpdater{}, store)
	ctx := context.Background()

	data := map[string]any{"description": "aus den optionen", "locale": "fr_FR"}
	options := map[string]any{"locale": "de_DE"}
	if err := decorator.Update(ctx, stubCategory{id: 1, hasID: true}, data, options); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if text := textOf(t, store, 1, "de_DE"); text == nil || *text != "aus den optionen" {
		t.Fatalf("options locale not preferred: %v", text)
	}

	data = map[string]any{"description": "depuis les données", "locale": "fr_FR"}
	if err := decorator.Update(ctx, stubCategory{id: 2, hasID: true}, data, nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if text := textOf(t, store, 2, "fr_FR"); text == nil || *text != "depuis les données" {
		t.Fatalf("data locale fallback missed: %v", text)
	}
}

func TestDecorator_SilentSkips(t *testing.T) {
	store := newStore()
	inner := &recordingUpdater{}
	decorator, _ := New(inner, store)
	ctx := context.Background()

	// No resolvable locale.
	data := map[string]any{"description": "orphan"}
	if err := decorator.Update(ctx, stubCategory{id: 9, hasID: true}, data, nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	// No identity yet.
	data = map[string]any{"description": "orphan", "locale": "en_US"}
	if err := decorator.Update(ctx, stubCategory{hasID: false}, data, nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	// Not a category at all.
	if err := decorator.Update(ctx, "plain object", data, nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if inner.calls != 3 {
		t.Fatalf("inner updater called %d times, want 3", inner.calls)
	}
	if text := textOf(t, store, 9, "en_US"); text != nil {
		t.Fatalf("unexpected store write: %q", *text)
	}
}

func TestDecorator_NullDescriptionIsStoredAsNull(t *testing.T) {
	store := newStore()
	decorator, _ := New(&recordingUpdater{}, store)
	ctx := context.Background()

	seed := "existing"
	if err := store.SetText(ctx, 4, "en_US", &seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	data := map[string]any{"description": nil, "locale": "en_US"}
	if err := decorator.Update(ctx, stubCategory{id: 4, hasID: true}, data, nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if text := textOf(t, store, 4, "en_US"); text != nil {
		t.Fatalf("explicit null description not stored: %q", *text)
	}
}

func TestDecorator_ValidatePassThrough(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	issues := []interfaces.Issue{{Property: "description", Message: "too long"}}
	withValidate, _ := New(&validatingUpdater{issues: issues}, store)
	got, err := withValidate.Validate(ctx, stubCategory{}, nil, nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(got) != 1 || got[0].Message != "too long" {
		t.Fatalf("Validate() = %v", got)
	}

	without, _ := New(&recordingUpdater{}, store)
	got, err = without.Validate(ctx, stubCategory{}, nil, nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
