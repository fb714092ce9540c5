package claims

import (
	"time"

	"github.com/google/uuid"

	"github.com/orlie/affiliatehub-backend/pkg/db/models"
)

// ClaimDTO is the claim payload returned to clients. Snapshot fields come
// from the claim row, never from the live product or profile.
type ClaimDTO struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	ProductTitle string    `json:"product_title"`
	ShareLink    string    `json:"share_link,omitempty"`

	AffiliateUserID  uuid.UUID `json:"affiliate_user_id"`
	AffiliateEmail   string    `json:"affiliate_email"`
	AffiliateTikTok  string    `json:"affiliate_tiktok,omitempty"`
	AffiliateDiscord string    `json:"affiliate_discord,omitempty"`

	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
	VideoLink   string `json:"video_link,omitempty"`
	AdCode      string `json:"ad_code,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EligibilityDTO mirrors the policy decision for UI rendering.
type EligibilityDTO struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// ClaimListResult carries a page of claims plus the next cursor.
type ClaimListResult struct {
	Claims     []ClaimDTO `json:"claims"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// NewClaimDTO builds a DTO from the persisted model.
func NewClaimDTO(claim *models.Claim) *ClaimDTO {
	if claim == nil {
		return nil
	}
	return &ClaimDTO{
		ID:               claim.ID,
		ProductID:        claim.ProductID,
		ProductTitle:     claim.ProductTitle,
		ShareLink:        claim.ShareLink,
		AffiliateUserID:  claim.AffiliateUserID,
		AffiliateEmail:   claim.AffiliateEmail,
		AffiliateTikTok:  claim.AffiliateTikTok,
		AffiliateDiscord: claim.AffiliateDiscord,
		Status:           claim.Status.String(),
		StatusLabel:      claim.Status.Label(),
		VideoLink:        claim.VideoLink,
		AdCode:           claim.AdCode,
		CreatedAt:        claim.CreatedAt,
		UpdatedAt:        claim.UpdatedAt,
	}
}

// NewClaimDTOs maps a slice of models preserving order.
func NewClaimDTOs(claims []models.Claim) []ClaimDTO {
	out := make([]ClaimDTO, 0, len(claims))
	for i := range claims {
		out = append(out, *NewClaimDTO(&claims[i]))
	}
	return out
}

// NewEligibilityDTO converts the policy decision.
func NewEligibilityDTO(decision Decision) EligibilityDTO {
	return EligibilityDTO{
		Allowed: decision.Allowed,
		Reason:  string(decision.Reason),
	}
}
