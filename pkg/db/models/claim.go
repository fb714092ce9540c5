package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/orlie/affiliatehub-backend/pkg/enums"
)

// Claim tracks one affiliate's run at promoting one product. ProductTitle,
// ShareLink and the affiliate contact columns are snapshots taken at
// creation time; they must survive later edits to the product or profile.
type Claim struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	ProductTitle string    `gorm:"column:product_title;not null"`
	ShareLink    string    `gorm:"column:share_link;not null;default:''"`

	AffiliateUserID  uuid.UUID `gorm:"column:affiliate_user_id;type:uuid;not null;index"`
	AffiliateEmail   string    `gorm:"column:affiliate_email;not null"`
	AffiliateTikTok  string    `gorm:"column:affiliate_tiktok;not null;default:''"`
	AffiliateDiscord string    `gorm:"column:affiliate_discord;not null;default:''"`

	Status    enums.ClaimStatus `gorm:"column:status;type:claim_status;not null;default:'pending'"`
	VideoLink string            `gorm:"column:video_link;not null;default:''"`
	AdCode    string            `gorm:"column:ad_code;not null;default:''"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IsOpen reports whether the claim has not yet reached the terminal status.
func (c *Claim) IsOpen() bool {
	return c != nil && c.Status.IsOpen()
}
