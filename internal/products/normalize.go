package products

import (
	"fmt"
	"strings"
	"time"

	"github.com/orlie/affiliatehub-backend/pkg/db/models"
	pkgerrors "github.com/orlie/affiliatehub-backend/pkg/errors"
)

var dateLayouts = []string{
	time.RFC3339,
	time.DateOnly,
	"2006-01-02 15:04:05",
}

// NormalizeHeader canonicalizes a CSV column name: lowercased, trimmed,
// spaces and dashes collapsed to underscores.
func NormalizeHeader(name string) string {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	cleaned = strings.ReplaceAll(cleaned, "-", "_")
	return cleaned
}

// NormalizeProductRow turns one parsed CSV row into a product, applying the
// catalog defaults. Missing columns are tolerated; only a missing title or an
// unparsable value is an error.
func NormalizeProductRow(row map[string]string) (models.Product, error) {
	get := func(keys ...string) string {
		for _, key := range keys {
			if value, ok := row[key]; ok {
				if trimmed := strings.TrimSpace(value); trimmed != "" {
					return trimmed
				}
			}
		}
		return ""
	}

	title := get("title", "product_title", "name")
	if title == "" {
		return models.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	product := models.Product{
		Title:         title,
		Category:      get("category"),
		ImageURL:      get("image_url", "image"),
		Commission:    get("commission", "commission_rate"),
		ShareLink:     get("share_link", "link"),
		ProductURL:    get("product_url", "url"),
		ContentDocURL: get("content_doc_url", "content_doc"),
		IsActive:      true,
	}

	if raw := get("availability_start", "start_date"); raw != "" {
		parsed, err := parseFlexibleTime(raw)
		if err != nil {
			return models.Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid availability_start")
		}
		product.AvailabilityStart = &parsed
	}
	if raw := get("availability_end", "end_date"); raw != "" {
		parsed, err := parseFlexibleTime(raw)
		if err != nil {
			return models.Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid availability_end")
		}
		product.AvailabilityEnd = &parsed
	}
	if product.AvailabilityStart != nil && product.AvailabilityEnd != nil &&
		product.AvailabilityEnd.Before(*product.AvailabilityStart) {
		return models.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "availability_end precedes availability_start")
	}

	if raw := get("is_active", "active"); raw != "" {
		active, err := parseBool(raw)
		if err != nil {
			return models.Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid is_active")
		}
		product.IsActive = active
	}

	return product, nil
}

func parseFlexibleTime(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "t", "1", "yes", "y":
		return true, nil
	case "false", "f", "0", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("unrecognized boolean %q", value)
}
