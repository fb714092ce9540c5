package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/orlie/affiliatehub-backend/pkg/db/models"
	"github.com/orlie/affiliatehub-backend/pkg/enums"
)

var now = time.Date(2025, 7, 15, 18, 30, 0, 0, time.UTC)

func claimAt(status enums.ClaimStatus, createdAt time.Time) models.Claim {
	return models.Claim{
		ID:              uuid.New(),
		ProductID:       uuid.New(),
		AffiliateUserID: uuid.New(),
		Status:          status,
		CreatedAt:       createdAt,
	}
}

func TestCountsByStatusIncludesEveryStatus(t *testing.T) {
	counts := CountsByStatus(nil)
	if len(counts) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(counts))
	}
	for _, bucket := range counts {
		if bucket.Count != 0 {
			t.Fatalf("expected zero default for %s, got %d", bucket.Status, bucket.Count)
		}
		if bucket.Label == "" {
			t.Fatalf("expected display label for %s", bucket.Status)
		}
	}

	claims := []models.Claim{
		claimAt(enums.ClaimStatusPending, now),
		claimAt(enums.ClaimStatusPending, now),
		claimAt(enums.ClaimStatusComplete, now),
		claimAt(enums.ClaimStatus("bogus"), now),
	}
	counts = CountsByStatus(claims)
	byStatus := map[string]int{}
	for _, bucket := range counts {
		byStatus[bucket.Status] = bucket.Count
	}
	if byStatus["pending"] != 2 || byStatus["complete"] != 1 {
		t.Fatalf("unexpected counts %v", byStatus)
	}
	if byStatus["video_submitted"] != 0 || byStatus["ad_code_submitted"] != 0 {
		t.Fatalf("expected zero-filled middle statuses, got %v", byStatus)
	}
	if len(counts) != 4 {
		t.Fatalf("unknown statuses must not add buckets, got %d", len(counts))
	}
}

func TestClaimsForAffiliateMatchesIDEmailAndHandle(t *testing.T) {
	affiliate := &models.User{
		ID:           uuid.New(),
		Email:        "Creator@Example.com",
		TikTokHandle: "@creator",
	}

	byID := claimAt(enums.ClaimStatusPending, now.Add(-2*time.Hour))
	byID.AffiliateUserID = affiliate.ID

	byEmail := claimAt(enums.ClaimStatusComplete, now.Add(-time.Hour))
	byEmail.AffiliateEmail = "creator@example.com"

	byHandle := claimAt(enums.ClaimStatusPending, now)
	byHandle.AffiliateTikTok = "@creator"

	unrelated := claimAt(enums.ClaimStatusPending, now)
	unrelated.AffiliateEmail = "someone@else.com"

	got := ClaimsForAffiliate([]models.Claim{byID, byEmail, unrelated, byHandle}, affiliate)
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(got))
	}
	if got[0].ID != byHandle.ID || got[1].ID != byEmail.ID || got[2].ID != byID.ID {
		t.Fatalf("expected newest-first ordering")
	}
}

func TestClaimsForAffiliateEmptyHandlesDoNotMatchEverything(t *testing.T) {
	affiliate := &models.User{ID: uuid.New()}

	blank := claimAt(enums.ClaimStatusPending, now)
	blank.AffiliateEmail = ""
	blank.AffiliateTikTok = ""

	if got := ClaimsForAffiliate([]models.Claim{blank}, affiliate); len(got) != 0 {
		t.Fatalf("blank contact fields must not match, got %d rows", len(got))
	}
}

func TestDailyActivityHistogramZeroFillsWindow(t *testing.T) {
	claims := []models.Claim{
		claimAt(enums.ClaimStatusPending, now),                        // today
		claimAt(enums.ClaimStatusPending, now.AddDate(0, 0, -2)),      // two days ago
		claimAt(enums.ClaimStatusPending, now.AddDate(0, 0, -2)),      // two days ago
		claimAt(enums.ClaimStatusPending, now.AddDate(0, 0, -10)),     // outside window
		claimAt(enums.ClaimStatusPending, time.Time{}),                // malformed
		claimAt(enums.ClaimStatusComplete, now.Add(48*time.Hour)),     // future
	}

	got := DailyActivityHistogram(claims, 7, now)
	if len(got) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(got))
	}
	if got[0].Date != "2025-07-09" || got[6].Date != "2025-07-15" {
		t.Fatalf("unexpected window bounds %s..%s", got[0].Date, got[6].Date)
	}
	if got[6].Count != 1 {
		t.Fatalf("expected 1 claim today, got %d", got[6].Count)
	}
	if got[4].Count != 2 {
		t.Fatalf("expected 2 claims two days ago, got %d", got[4].Count)
	}

	total := 0
	for _, bucket := range got {
		total += bucket.Count
	}
	if total != 3 {
		t.Fatalf("expected 3 counted claims, got %d", total)
	}
}

func TestDailyActivityHistogramDegenerateWindow(t *testing.T) {
	if got := DailyActivityHistogram(nil, 0, now); len(got) != 0 {
		t.Fatalf("expected empty histogram for zero window")
	}
	got := DailyActivityHistogram(nil, 1, now)
	if len(got) != 1 || got[0].Date != "2025-07-15" || got[0].Count != 0 {
		t.Fatalf("expected single zero bucket for today, got %v", got)
	}
}
