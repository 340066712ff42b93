package serializer

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-category-attributes/internal/attributes"
)

type stubCategory struct {
	id    int64
	hasID bool
}

func (c stubCategory) ID() (int64, bool) { return c.id, c.hasID }

type stubNormalizer struct {
	payload  map[string]any
	err      error
	supports bool
}

func (n stubNormalizer) Supports(any, string, map[string]any) bool { return n.supports }

// Normalize returns a fresh copy per call, the way a real serializer builds
// a new payload for every request.
func (n stubNormalizer) Normalize(context.Context, any, string, map[string]any) (map[string]any, error) {
	if n.payload == nil {
		return nil, n.err
	}
	out := make(map[string]any, len(n.payload))
	for k, v := range n.payload {
		out[k] = v
	}
	return out, n.err
}

type failingRepository struct{}

func (failingRepository) Get(context.Context, int64, string) (*attributes.CategoryAttribute, error) {
	return nil, errors.New("connection refused")
}

func (failingRepository) UpsertDescription(context.Context, int64, string, *string) (*attributes.CategoryAttribute, error) {
	return nil, errors.New("connection refused")
}

func (failingRepository) UpsertImageURL(context.Context, int64, string, *string) (*attributes.CategoryAttribute, error) {
	return nil, errors.New("connection refused")
}

func storeWithText(t *testing.T, categoryID int64, locale, text string) *attributes.Service {
	t.Helper()
	store := attributes.NewService(attributes.NewMemoryRepository())
	if err := store.SetText(context.Background(), categoryID, locale, &text); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func TestUIDecorator_MergesDescriptionWithoutTouchingInnerKeys(t *testing.T) {
	store := storeWithText(t, 161, "en_US", "nice shoes")
	inner := stubNormalizer{payload: map[string]any{"code": "shoes"}, supports: true}

	decorator, err := NewUIDecorator(inner, store)
	if err != nil {
		t.Fatalf("NewUIDecorator() error = %v", err)
	}

	payload, err := decorator.Normalize(context.Background(), stubCategory{id: 161, hasID: true}, "internal_api", nil)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if payload["code"] != "shoes" {
		t.Fatalf("inner key mutated: %v", payload["code"])
	}
	if payload["description"] != "nice shoes" {
		t.Fatalf("description = %v, want %q", payload["description"], "nice shoes")
	}
}

func TestUIDecorator_IneligibleObjectsPassThrough(t *testing.T) {
	store := attributes.NewService(attributes.NewMemoryRepository())
	inner := stubNormalizer{payload: map[string]any{"code": "shoes"}, supports: true}

	decorator, err := NewUIDecorator(inner, store)
	if err != nil {
		t.Fatalf("NewUIDecorator() error = %v", err)
	}

	payload, err := decorator.Normalize(context.Background(), "not a category", "internal_api", nil)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if _, exists := payload["description"]; exists {
		t.Fatalf("non-category payload was enriched: %v", payload)
	}

	payload, err = decorator.Normalize(context.Background(), stubCategory{hasID: false}, "internal_api", nil)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if _, exists := payload["description"]; exists {
		t.Fatalf("unsaved category payload was enriched: %v", payload)
	}
}

func TestUIDecorator_NeverOverwritesHostKey(t *testing.T) {
	store := storeWithText(t, 8, "en_US", "ours")
	inner := stubNormalizer{payload: map[string]any{"description": "host value"}, supports: true}

	decorator, err := NewUIDecorator(inner, store)
	if err != nil {
		t.Fatalf("NewUIDecorator() error = %v", err)
	}

	payload, err := decorator.Normalize(context.Background(), stubCategory{id: 8, hasID: true}, "internal_api", nil)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if payload["description"] != "host value" {
		t.Fatalf("host key overwritten: %v", payload["description"])
	}
}

func TestUIDecorator_StoreFailureDegradesToNull(t *testing.T) {
	store := attributes.NewService(failingRepository{})
	inner := stubNormalizer{payload: map[string]any{"code": "shoes"}, supports: true}

	decorator, err := NewUIDecorator(inner, store)
	if err != nil {
		t.Fatalf("NewUIDecorator() error = %v", err)
	}

	payload, err := decorator.Normalize(context.Background(), stubCategory{id: 4, hasID: true}, "internal_api", nil)
	if err != nil {
		t.Fatalf("store failure must not propagate, got %v", err)
	}
	value, exists := payload["description"]
	if !exists || value != nil {
		t.Fatalf("expected null description on store failure, got %v (present=%v)", value, exists)
	}
	if payload["code"] != "shoes" {
		t.Fatalf("inner payload damaged: %v", payload)
	}
}

func TestUIDecorator_SupportsDelegates(t *testing.T) {
	store := attributes.NewService(attributes.NewMemoryRepository())

	yes, _ := NewUIDecorator(stubNormalizer{supports: true}, store)
	if !yes.Supports(stubCategory{}, "internal_api", nil) {
		t.Fatal("expected delegated support")
	}
	no, _ := NewUIDecorator(stubNormalizer{supports: false}, store)
	if no.Supports(stubCategory{}, "internal_api", nil) {
		t.Fatal("decorator claimed support the inner normalizer does not have")
	}
}

func TestExternalDecorator_InjectsNamespacedBlock(t *testing.T) {
	ctx := context.Background()
	store := attributes.NewService(attributes.NewMemoryRepository())
	text := "beschreibung"
	url := "/uploads/categories/161/banner.png"
	if err := store.SetText(ctx, 161, "de_DE", &text); err != nil {
		t.Fatalf("seed text: %v", err)
	}
	if err := store.SetImageURL(ctx, 161, "de_DE", &url); err != nil {
		t.Fatalf("seed image: %v", err)
	}

	inner := stubNormalizer{payload: map[string]any{"code": "shoes"}, supports: true}
	decorator, err := NewExternalDecorator(inner, store)
	if err != nil {
		t.Fatalf("NewExternalDecorator() error = %v", err)
	}

	payload, err := decorator.Normalize(ctx, stubCategory{id: 161, hasID: true}, FormatExternalAPI, map[string]any{"locale": "de_DE"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	extensions, ok := payload[ExtensionsKey].(map[string]any)
	if !ok {
		t.Fatalf("extensions missing: %v", payload)
	}
	block, ok := extensions["acme_category"].(map[string]any)
	if !ok {
		t.Fatalf("namespace block missing: %v", extensions)
	}
	if block["locale"] != "de_DE" || block["description"] != text || block["image"] != url {
		t.Fatalf("block = %v", block)
	}
	if payload["code"] != "shoes" {
		t.Fatalf("inner key mutated: %v", payload)
	}
}

func TestExternalDecorator_LocaleResolutionOrderAndFallback(t *testing.T) {
	ctx := context.Background()
	store := attributes.NewService(attributes.NewMemoryRepository())
	inner := stubNormalizer{payload: map[string]any{}, supports: true}
	decorator, err := NewExternalDecorator(inner, store)
	if err != nil {
		t.Fatalf("NewExternalDecorator() error = %v", err)
	}

	cases := []struct {
		name    string
		options map[string]any
		want    string
	}{
		{"first key wins", map[string]any{"locale": "fr_FR", "ui_locale": "de_DE"}, "fr_FR"},
		{"second key when first absent", map[string]any{"ui_locale": "de_DE"}, "de_DE"},
		{"third key when others absent", map[string]any{"channelLocale": "it_IT"}, "it_IT"},
		{"empty values skipped", map[string]any{"locale": "", "ui_locale": "de_DE"}, "de_DE"},
		{"fallback", nil, "en_US"},
	}
	for _, tc := range cases {
		payload, err := decorator.Normalize(ctx, stubCategory{id: 1, hasID: true}, FormatExternalAPI, tc.options)
		if err != nil {
			t.Fatalf("%s: Normalize() error = %v", tc.name, err)
		}
		block := payload[ExtensionsKey].(map[string]any)["acme_category"].(map[string]any)
		if block["locale"] != tc.want {
			t.Fatalf("%s: locale = %v, want %q", tc.name, block["locale"], tc.want)
		}
	}
}

func TestExternalDecorator_StoreFailureYieldsNullFields(t *testing.T) {
	store := attributes.NewService(failingRepository{})
	inner := stubNormalizer{payload: map[string]any{"code": "shoes"}, supports: true}
	decorator, err := NewExternalDecorator(inner, store)
	if err != nil {
		t.Fatalf("NewExternalDecorator() error = %v", err)
	}

	payload, err := decorator.Normalize(context.Background(), stubCategory{id: 2, hasID: true}, FormatExternalAPI, nil)
	if err != nil {
		t.Fatalf("store failure must not propagate, got %v", err)
	}
	block := payload[ExtensionsKey].(map[string]any)["acme_category"].(map[string]any)
	if block["description"] != nil || block["image"] != nil {
		t.Fatalf("expected null fields on store failure, got %v", block)
	}
	if payload["code"] != "shoes" {
		t.Fatalf("inner payload damaged: %v", payload)
	}
}

func TestExternalDecorator_SupportsIntersection(t *testing.T) {
	store := attributes.NewService(attributes.NewMemoryRepository())

	decorator, _ := NewExternalDecorator(stubNormalizer{supports: true}, store)
	if !decorator.Supports(stubCategory{}, FormatExternalAPI, nil) {
		t.Fatal("expected support for category + external_api")
	}
	if decorator.Supports("not a category", FormatExternalAPI, nil) {
		t.Fatal("claimed support for non-category object")
	}
	if decorator.Supports(stubCategory{}, "internal_api", nil) {
		t.Fatal("claimed support for non external_api format")
	}

	unsupported, _ := NewExternalDecorator(stubNormalizer{supports: false}, store)
	if unsupported.Supports(stubCategory{}, FormatExternalAPI, nil) {
		t.Fatal("claimed support the inner normalizer does not have")
	}
}
