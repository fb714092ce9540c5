package products

import (
	"testing"
	"time"

	pkgerrors "github.com/orlie/affiliatehub-backend/pkg/errors"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		" Title ":        "title",
		"Share Link":     "share_link",
		"content-doc":    "content_doc",
		"IMAGE_URL":      "image_url",
		"Availability A": "availability_a",
	}
	for input, want := range cases {
		if got := NormalizeHeader(input); got != want {
			t.Fatalf("NormalizeHeader(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeProductRowDefaults(t *testing.T) {
	product, err := NormalizeProductRow(map[string]string{"title": "  Glow Serum  "})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if product.Title != "Glow Serum" {
		t.Fatalf("expected trimmed title, got %q", product.Title)
	}
	if !product.IsActive {
		t.Fatalf("expected is_active default true")
	}
	if product.AvailabilityStart != nil || product.AvailabilityEnd != nil {
		t.Fatalf("expected open window by default")
	}
	if product.Category != "" || product.Commission != "" {
		t.Fatalf("expected empty string defaults")
	}
}

func TestNormalizeProductRowAliasesAndParsing(t *testing.T) {
	product, err := NormalizeProductRow(map[string]string{
		"name":            "Serum",
		"link":            "https://shop.example.com/s/1",
		"commission_rate": "15%",
		"start_date":      "2025-06-01",
		"end_date":        "2025-06-30T23:59:59Z",
		"active":          "no",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if product.ShareLink != "https://shop.example.com/s/1" || product.Commission != "15%" {
		t.Fatalf("expected alias columns mapped, got %+v", product)
	}
	if product.IsActive {
		t.Fatalf("expected active=no parsed as false")
	}
	wantStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if product.AvailabilityStart == nil || !product.AvailabilityStart.Equal(wantStart) {
		t.Fatalf("unexpected start %v", product.AvailabilityStart)
	}
	if product.AvailabilityEnd == nil {
		t.Fatalf("expected parsed end date")
	}
}

func TestNormalizeProductRowErrors(t *testing.T) {
	t.Run("missing title", func(t *testing.T) {
		_, err := NormalizeProductRow(map[string]string{"category": "skincare"})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := NormalizeProductRow(map[string]string{"title": "X", "start_date": "June 1st"})
		if pkgerrors.As(err) == nil {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("inverted window", func(t *testing.T) {
		_, err := NormalizeProductRow(map[string]string{
			"title":      "X",
			"start_date": "2025-06-30",
			"end_date":   "2025-06-01",
		})
		if pkgerrors.As(err) == nil {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("bad boolean", func(t *testing.T) {
		_, err := NormalizeProductRow(map[string]string{"title": "X", "is_active": "maybe"})
		if pkgerrors.As(err) == nil {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
