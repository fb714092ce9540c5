package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a promotable listing published by an admin. DeletedAt is a
// soft-delete marker; visibility to affiliates requires is_active and no
// deletion. The availability window gates claim creation, not visibility.
type Product struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title             string     `gorm:"column:title;not null"`
	Category          string     `gorm:"column:category;not null;default:''"`
	ImageURL          string     `gorm:"column:image_url;not null;default:''"`
	Commission        string     `gorm:"column:commission;not null;default:''"`
	ShareLink         string     `gorm:"column:share_link;not null;default:''"`
	ProductURL        string     `gorm:"column:product_url;not null;default:''"`
	ContentDocURL     string     `gorm:"column:content_doc_url;not null;default:''"`
	AvailabilityStart *time.Time `gorm:"column:availability_start"`
	AvailabilityEnd   *time.Time `gorm:"column:availability_end"`
	IsActive          bool       `gorm:"column:is_active;not null;default:true"`
	DeletedAt         *time.Time `gorm:"column:deleted_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
