package claims

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orlie/affiliatehub-backend/pkg/db/models"
	"github.com/orlie/affiliatehub-backend/pkg/enums"
	pkgerrors "github.com/orlie/affiliatehub-backend/pkg/errors"
)

// DenyReason explains why a claim cannot be opened right now. The values are
// stable API strings rendered by the client as disabled-state labels.
type DenyReason string

const (
	DenyNotApproved     DenyReason = "not-approved"
	DenyUnavailable     DenyReason = "unavailable"
	DenyAlreadyOpen     DenyReason = "already-open"
	DenyAlreadyComplete DenyReason = "already-complete"
)

// Decision is the outcome of evaluating claim eligibility.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// CanViewProduct reports whether affiliates may see the product at all.
// Soft-deleted and deactivated products are hidden; the availability window
// does not affect visibility.
func CanViewProduct(product *models.Product) bool {
	return product != nil && product.IsActive && product.DeletedAt == nil
}

// WithinAvailabilityWindow reports whether now falls inside the product's
// claim window. Both bounds are inclusive; a nil bound is open-ended.
func WithinAvailabilityWindow(product *models.Product, now time.Time) bool {
	if product == nil {
		return false
	}
	if product.AvailabilityStart != nil && now.Before(*product.AvailabilityStart) {
		return false
	}
	if product.AvailabilityEnd != nil && now.After(*product.AvailabilityEnd) {
		return false
	}
	return true
}

// FindOpenClaim returns the affiliate's most recent non-complete claim on the
// product, or nil when none exists.
func FindOpenClaim(claims []models.Claim, affiliateID, productID uuid.UUID) *models.Claim {
	var open *models.Claim
	for i := range claims {
		claim := &claims[i]
		if claim.AffiliateUserID != affiliateID || claim.ProductID != productID {
			continue
		}
		if !claim.Status.IsOpen() {
			continue
		}
		if open == nil || claim.CreatedAt.After(open.CreatedAt) {
			open = claim
		}
	}
	return open
}

// mostRecentClaim returns the affiliate's newest claim on the product in any
// status, or nil.
func mostRecentClaim(claims []models.Claim, affiliateID, productID uuid.UUID) *models.Claim {
	var latest *models.Claim
	for i := range claims {
		claim := &claims[i]
		if claim.AffiliateUserID != affiliateID || claim.ProductID != productID {
			continue
		}
		if latest == nil || claim.CreatedAt.After(latest.CreatedAt) {
			latest = claim
		}
	}
	return latest
}

// EvaluateCreate decides whether the affiliate may open a claim on the
// product. Checks run in a fixed order so the caller always gets the most
// actionable reason: approval, availability, then claim history.
func EvaluateCreate(affiliate *models.User, product *models.Product, claims []models.Claim, now time.Time) Decision {
	if !affiliate.IsApprovedAffiliate() {
		return Decision{Reason: DenyNotApproved}
	}
	if !CanViewProduct(product) || !WithinAvailabilityWindow(product, now) {
		return Decision{Reason: DenyUnavailable}
	}
	if open := FindOpenClaim(claims, affiliate.ID, product.ID); open != nil {
		return Decision{Reason: DenyAlreadyOpen}
	}
	if latest := mostRecentClaim(claims, affiliate.ID, product.ID); latest != nil && latest.Status == enums.ClaimStatusComplete {
		return Decision{Reason: DenyAlreadyComplete}
	}
	return Decision{Allowed: true}
}

// NewClaim builds a pending claim with denormalized product and affiliate
// snapshots. Callers must run EvaluateCreate first; this is a constructor only.
func NewClaim(affiliate *models.User, product *models.Product, now time.Time) models.Claim {
	return models.Claim{
		ProductID:        product.ID,
		ProductTitle:     product.Title,
		ShareLink:        product.ShareLink,
		AffiliateUserID:  affiliate.ID,
		AffiliateEmail:   affiliate.Email,
		AffiliateTikTok:  affiliate.TikTokHandle,
		AffiliateDiscord: affiliate.DiscordHandle,
		Status:           enums.ClaimStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// SubmitVideoAndCode records the affiliate's content submission and moves the
// claim to video_submitted. Only pending claims accept content.
func SubmitVideoAndCode(claim models.Claim, videoLink, adCode string, now time.Time) (models.Claim, error) {
	videoLink = strings.TrimSpace(videoLink)
	adCode = strings.TrimSpace(adCode)
	if videoLink == "" {
		return claim, pkgerrors.New(pkgerrors.CodeValidation, "video link is required")
	}
	if adCode == "" {
		return claim, pkgerrors.New(pkgerrors.CodeValidation, "ad code is required")
	}
	if claim.Status != enums.ClaimStatusPending {
		return claim, pkgerrors.New(pkgerrors.CodeStateConflict, "content can only be submitted while the claim is pending")
	}
	claim.VideoLink = videoLink
	claim.AdCode = adCode
	claim.Status = enums.ClaimStatusVideoSubmitted
	claim.UpdatedAt = now
	return claim, nil
}

// AdvanceStatus sets the claim to any member of the workflow status set.
// Admins may move claims backward to correct mistakes, so every valid status
// is a legal target; only unknown statuses are rejected.
func AdvanceStatus(claim models.Claim, target enums.ClaimStatus, now time.Time) (models.Claim, error) {
	if !target.IsValid() {
		return claim, pkgerrors.New(pkgerrors.CodeValidation, "unknown claim status").
			WithDetails(map[string]any{"status": string(target)})
	}
	claim.Status = target
	claim.UpdatedAt = now
	return claim, nil
}
