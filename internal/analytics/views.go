package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/orlie/affiliatehub-backend/pkg/db/models"
	"github.com/orlie/affiliatehub-backend/pkg/enums"
)

// StatusCount pairs a workflow status with its claim count.
type StatusCount struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
}

// DayCount is one bucket of the daily activity histogram.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// CountsByStatus folds claims into per-status totals. Every workflow status
// appears in the result, zero-defaulted, in progression order. Claims with
// unknown statuses are ignored rather than invented as new buckets.
func CountsByStatus(claims []models.Claim) []StatusCount {
	totals := make(map[enums.ClaimStatus]int, len(enums.ClaimStatuses()))
	for i := range claims {
		status := claims[i].Status
		if !status.IsValid() {
			continue
		}
		totals[status]++
	}

	out := make([]StatusCount, 0, len(enums.ClaimStatuses()))
	for _, status := range enums.ClaimStatuses() {
		out = append(out, StatusCount{
			Status: status.String(),
			Label:  status.Label(),
			Count:  totals[status],
		})
	}
	return out
}

// ClaimsForAffiliate filters claims down to one affiliate, matching by user
// id, email, or TikTok handle so rows imported before the account existed
// still surface. Newest first.
func ClaimsForAffiliate(claims []models.Claim, affiliate *models.User) []models.Claim {
	if affiliate == nil {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(affiliate.Email))
	handle := strings.TrimSpace(affiliate.TikTokHandle)

	var out []models.Claim
	for i := range claims {
		claim := claims[i]
		switch {
		case claim.AffiliateUserID == affiliate.ID:
		case email != "" && strings.ToLower(strings.TrimSpace(claim.AffiliateEmail)) == email:
		case handle != "" && strings.TrimSpace(claim.AffiliateTikTok) == handle:
		default:
			continue
		}
		out = append(out, claim)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// DailyActivityHistogram buckets claim creations by UTC calendar day over the
// trailing windowDays days ending today. Empty days are zero-filled; claims
// outside the window or with zero timestamps are excluded.
func DailyActivityHistogram(claims []models.Claim, windowDays int, now time.Time) []DayCount {
	if windowDays <= 0 {
		return []DayCount{}
	}

	today := now.UTC().Truncate(24 * time.Hour)
	first := today.AddDate(0, 0, -(windowDays - 1))

	counts := make(map[string]int, windowDays)
	for i := range claims {
		created := claims[i].CreatedAt
		if created.IsZero() {
			continue
		}
		day := created.UTC().Truncate(24 * time.Hour)
		if day.Before(first) || day.After(today) {
			continue
		}
		counts[day.Format(time.DateOnly)]++
	}

	out := make([]DayCount, 0, windowDays)
	for day := first; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := day.Format(time.DateOnly)
		out = append(out, DayCount{Date: key, Count: counts[key]})
	}
	return out
}
