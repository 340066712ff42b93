package attributes

import (
	"context"
	"errors"
	"testing"
)

func TestService_UnwrittenPairReadsNull(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	text, err := svc.GetText(ctx, 42, "en_US")
	if err != nil {
		t.Fatalf("GetText() error = %v", err)
	}
	if text != nil {
		t.Fatalf("expected nil description for unwritten pair, got %q", *text)
	}

	url, err := svc.GetImageURL(ctx, 42, "en_US")
	if err != nil {
		t.Fatalf("GetImageURL() error = %v", err)
	}
	if url != nil {
		t.Fatalf("expected nil image url for unwritten pair, got %q", *url)
	}
}

func TestService_TextRoundTrip(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	value := "nice shoes"
	if err := svc.SetText(ctx, 7, "en_US", &value); err != nil {
		t.Fatalf("SetText() error = %v", err)
	}

	got, err := svc.GetText(ctx, 7, "en_US")
	if err != nil {
		t.Fatalf("GetText() error = %v", err)
	}
	if got == nil || *got != value {
		t.Fatalf("GetText() = %v, want %q", got, value)
	}
}

func TestService_PartialFieldUpsertPreservesOtherField(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	text := "summer collection"
	if err := svc.SetText(ctx, 11, "en_US", &text); err != nil {
		t.Fatalf("SetText() error = %v", err)
	}
	url := "/uploads/categories/11/banner.png"
	if err := svc.SetImageURL(ctx, 11, "en_US", &url); err != nil {
		t.Fatalf("SetImageURL() error = %v", err)
	}

	gotText, err := svc.GetText(ctx, 11, "en_US")
	if err != nil {
		t.Fatalf("GetText() error = %v", err)
	}
	if gotText == nil || *gotText != text {
		t.Fatalf("description changed by image write: %v", gotText)
	}

	gotURL, err := svc.GetImageURL(ctx, 11, "en_US")
	if err != nil {
		t.Fatalf("GetImageURL() error = %v", err)
	}
	if gotURL == nil || *gotURL != url {
		t.Fatalf("GetImageURL() = %v, want %q", gotURL, url)
	}
}

func TestService_NilWritesStoreNullWithoutClearingOtherField(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	text := "to be cleared"
	url := "/uploads/categories/3/img.png"
	if err := svc.SetText(ctx, 3, "de_DE", &text); err != nil {
		t.Fatalf("SetText() error = %v", err)
	}
	if err := svc.SetImageURL(ctx, 3, "de_DE", &url); err != nil {
		t.Fatalf("SetImageURL() error = %v", err)
	}

	if err := svc.SetText(ctx, 3, "de_DE", nil); err != nil {
		t.Fatalf("SetText(nil) error = %v", err)
	}

	gotText, err := svc.GetText(ctx, 3, "de_DE")
	if err != nil {
		t.Fatalf("GetText() error = %v", err)
	}
	if gotText != nil {
		t.Fatalf("expected null description after clear, got %q", *gotText)
	}

	gotURL, err := svc.GetImageURL(ctx, 3, "de_DE")
	if err != nil {
		t.Fatalf("GetImageURL() error = %v", err)
	}
	if gotURL == nil || *gotURL != url {
		t.Fatalf("image url lost by description clear: %v", gotURL)
	}
}

func TestService_KeyValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.GetText(ctx, 5, "  "); !errors.Is(err, ErrLocaleRequired) {
		t.Fatalf("expected ErrLocaleRequired, got %v", err)
	}
	if err := svc.SetText(ctx, 0, "en_US", nil); !errors.Is(err, ErrCategoryIDRequired) {
		t.Fatalf("expected ErrCategoryIDRequired, got %v", err)
	}

	none := NewService(nil)
	if err := none.SetText(ctx, 5, "en_US", nil); !errors.Is(err, ErrRepositoryRequired) {
		t.Fatalf("expected ErrRepositoryRequired, got %v", err)
	}
}

func TestService_NewLocaleCreatesNeverErrors(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	value := "bonjour"
	if err := svc.SetText(ctx, 9, "fr_FR", &value); err != nil {
		t.Fatalf("SetText() with unseen locale error = %v", err)
	}
	got, err := svc.GetText(ctx, 9, "fr_FR")
	if err != nil {
		t.Fatalf("GetText() error = %v", err)
	}
	if got == nil || *got != value {
		t.Fatalf("GetText() = %v, want %q", got, value)
	}
}
