package claims

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orlie/affiliatehub-backend/pkg/db/models"
	"github.com/orlie/affiliatehub-backend/pkg/enums"
	"github.com/orlie/affiliatehub-backend/pkg/pagination"
)

func setupClaimsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE claims (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  product_title TEXT NOT NULL,
  share_link TEXT NOT NULL DEFAULT '',
  affiliate_user_id TEXT NOT NULL,
  affiliate_email TEXT NOT NULL,
  affiliate_tiktok TEXT NOT NULL DEFAULT '',
  affiliate_discord TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending',
  video_link TEXT NOT NULL DEFAULT '',
  ad_code TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL
);
CREATE UNIQUE INDEX uq_claims_open_per_affiliate_product
  ON claims (affiliate_user_id, product_id)
  WHERE status != 'complete';
`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedClaim(t *testing.T, db *gorm.DB, affiliateID, productID uuid.UUID, status enums.ClaimStatus, createdAt time.Time) models.Claim {
	t.Helper()
	claim := models.Claim{
		ID:              uuid.New(),
		ProductID:       productID,
		ProductTitle:    "Glow Serum",
		ShareLink:       "https://shop.example.com/glow",
		AffiliateUserID: affiliateID,
		AffiliateEmail:  "creator@example.com",
		Status:          status,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	require.NoError(t, db.Create(&claim).Error)
	return claim
}

func TestClaimRepoOpenClaimUniqueness(t *testing.T) {
	db := setupClaimsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	affiliateID := uuid.New()
	productID := uuid.New()
	now := time.Now().UTC()

	seedClaim(t, db, affiliateID, productID, enums.ClaimStatusPending, now)

	_, err := repo.Create(ctx, &models.Claim{
		ID:              uuid.New(),
		ProductID:       productID,
		ProductTitle:    "Glow Serum",
		AffiliateUserID: affiliateID,
		AffiliateEmail:  "creator@example.com",
		Status:          enums.ClaimStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	require.Error(t, err, "second open claim on the same product must hit the unique index")

	// A completed run does not block a fresh claim.
	require.NoError(t, db.Exec("UPDATE claims SET status = 'complete'").Error)
	_, err = repo.Create(ctx, &models.Claim{
		ID:              uuid.New(),
		ProductID:       productID,
		ProductTitle:    "Glow Serum",
		AffiliateUserID: affiliateID,
		AffiliateEmail:  "creator@example.com",
		Status:          enums.ClaimStatusPending,
		CreatedAt:       now.Add(time.Minute),
		UpdatedAt:       now.Add(time.Minute),
	})
	require.NoError(t, err)
}

func TestClaimRepoListForAffiliateMatchesLegacyRows(t *testing.T) {
	db := setupClaimsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	now := time.Now().UTC()

	owned := seedClaim(t, db, userID, uuid.New(), enums.ClaimStatusPending, now)

	// Imported row linked only by email, uppercased to exercise the
	// case-insensitive match.
	legacy := models.Claim{
		ID:              uuid.New(),
		ProductID:       uuid.New(),
		ProductTitle:    "Lip Kit",
		AffiliateUserID: uuid.New(),
		AffiliateEmail:  "Creator@Example.com",
		Status:          enums.ClaimStatusComplete,
		CreatedAt:       now.Add(-time.Hour),
		UpdatedAt:       now.Add(-time.Hour),
	}
	require.NoError(t, db.Create(&legacy).Error)

	unrelated := seedClaim(t, db, uuid.New(), uuid.New(), enums.ClaimStatusPending, now)

	rows, err := repo.ListForAffiliate(ctx, &models.User{
		ID:    userID,
		Email: "creator@example.com",
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, owned.ID, rows[0].ID, "newest first")
	assert.Equal(t, legacy.ID, rows[1].ID)
	for _, row := range rows {
		assert.NotEqual(t, unrelated.ID, row.ID)
	}
}

func TestClaimRepoListAdminPaginates(t *testing.T) {
	db := setupClaimsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		seedClaim(t, db, uuid.New(), uuid.New(), enums.ClaimStatusPending, base.Add(time.Duration(i)*time.Minute))
	}

	first, cursor, err := repo.ListAdmin(ctx, ListAdminParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, cursor)

	second, _, err := repo.ListAdmin(ctx, ListAdminParams{Limit: 10, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 3)
	for _, row := range second {
		assert.True(t, row.CreatedAt.Before(first[1].CreatedAt) || row.CreatedAt.Equal(first[1].CreatedAt))
	}
}

func TestClaimRepoListAdminFiltersByStatus(t *testing.T) {
	db := setupClaimsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	seedClaim(t, db, uuid.New(), uuid.New(), enums.ClaimStatusPending, now)
	complete := seedClaim(t, db, uuid.New(), uuid.New(), enums.ClaimStatusComplete, now.Add(time.Minute))

	status := enums.ClaimStatusComplete
	rows, _, err := repo.ListAdmin(ctx, ListAdminParams{Status: &status, Limit: pagination.DefaultLimit})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, complete.ID, rows[0].ID)
}

func TestClaimRepoUpdatePersistsWorkflowColumns(t *testing.T) {
	db := setupClaimsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	claim := seedClaim(t, db, uuid.New(), uuid.New(), enums.ClaimStatusPending, time.Now().UTC())

	claim.Status = enums.ClaimStatusVideoSubmitted
	claim.VideoLink = "https://tiktok.com/@creator/video/9"
	claim.AdCode = "AD-9"
	claim.UpdatedAt = time.Now().UTC()

	_, err := repo.Update(ctx, &claim)
	require.NoError(t, err)

	stored, err := repo.FindByID(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ClaimStatusVideoSubmitted, stored.Status)
	assert.Equal(t, "https://tiktok.com/@creator/video/9", stored.VideoLink)
	assert.Equal(t, "AD-9", stored.AdCode)
	// Snapshot columns stay untouched by workflow updates.
	assert.Equal(t, "Glow Serum", stored.ProductTitle)
}
