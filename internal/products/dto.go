package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/orlie/affiliatehub-backend/pkg/db/models"
)

// ProductDTO is the product payload returned to clients.
type ProductDTO struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	Category          string     `json:"category,omitempty"`
	ImageURL          string     `json:"image_url,omitempty"`
	Commission        string     `json:"commission,omitempty"`
	ShareLink         string     `json:"share_link,omitempty"`
	ProductURL        string     `json:"product_url,omitempty"`
	ContentDocURL     string     `json:"content_doc_url,omitempty"`
	AvailabilityStart *time.Time `json:"availability_start,omitempty"`
	AvailabilityEnd   *time.Time `json:"availability_end,omitempty"`
	IsActive          bool       `json:"is_active"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ProductListResult carries a page of products plus the next cursor.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:                product.ID,
		Title:             product.Title,
		Category:          product.Category,
		ImageURL:          product.ImageURL,
		Commission:        product.Commission,
		ShareLink:         product.ShareLink,
		ProductURL:        product.ProductURL,
		ContentDocURL:     product.ContentDocURL,
		AvailabilityStart: product.AvailabilityStart,
		AvailabilityEnd:   product.AvailabilityEnd,
		IsActive:          product.IsActive,
		DeletedAt:         product.DeletedAt,
		CreatedAt:         product.CreatedAt,
		UpdatedAt:         product.UpdatedAt,
	}
}

// NewProductDTOs maps a slice of models preserving order.
func NewProductDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return out
}
