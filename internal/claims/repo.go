package claims

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orlie/affiliatehub-backend/pkg/db/models"
	"github.com/orlie/affiliatehub-backend/pkg/enums"
	"github.com/orlie/affiliatehub-backend/pkg/pagination"
)

// OpenClaimConstraint is the partial unique index closing the create race:
// one open claim per (affiliate, product) no matter how many requests commit
// concurrently.
const OpenClaimConstraint = "uq_claims_open_per_affiliate_product"

// ListAdminParams filters the admin claim listing.
type ListAdminParams struct {
	Status *enums.ClaimStatus
	Limit  int
	Cursor *pagination.Cursor
}

// Repository defines claim persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, claim *models.Claim) (*models.Claim, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Claim, error)
	ListByProductAndAffiliate(ctx context.Context, affiliateID, productID uuid.UUID) ([]models.Claim, error)
	ListForAffiliate(ctx context.Context, user *models.User) ([]models.Claim, error)
	ListAdmin(ctx context.Context, params ListAdminParams) ([]models.Claim, *pagination.Cursor, error)
	ListAll(ctx context.Context) ([]models.Claim, error)
	Update(ctx context.Context, claim *models.Claim) (*models.Claim, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, claim *models.Claim) (*models.Claim, error) {
	if err := r.db.WithContext(ctx).Create(claim).Error; err != nil {
		return nil, err
	}
	return claim, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	if err := r.db.WithContext(ctx).First(&claim, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &claim, nil
}

// FindByIDs loads the given claims; missing IDs simply produce fewer rows.
func (r *repositoryImpl) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Claim, error) {
	var rows []models.Claim
	if len(ids) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByProductAndAffiliate returns the affiliate's full claim history on one
// product, newest first. Feeds the eligibility policy.
func (r *repositoryImpl) ListByProductAndAffiliate(ctx context.Context, affiliateID, productID uuid.UUID) ([]models.Claim, error) {
	var rows []models.Claim
	err := r.db.WithContext(ctx).
		Where("affiliate_user_id = ? AND product_id = ?", affiliateID, productID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

// ListForAffiliate returns every claim belonging to the user. Older imported
// rows may carry only the contact snapshot, so matching falls back to email
// and TikTok handle.
func (r *repositoryImpl) ListForAffiliate(ctx context.Context, user *models.User) ([]models.Claim, error) {
	match := r.db.Where("affiliate_user_id = ?", user.ID)
	if email := strings.TrimSpace(user.Email); email != "" {
		match = match.Or("lower(affiliate_email) = lower(?)", email)
	}
	if handle := strings.TrimSpace(user.TikTokHandle); handle != "" {
		match = match.Or("affiliate_tiktok = ?", handle)
	}

	var rows []models.Claim
	err := r.db.WithContext(ctx).
		Where(match).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

// ListAdmin pages through all claims with an optional status filter.
func (r *repositoryImpl) ListAdmin(ctx context.Context, params ListAdminParams) ([]models.Claim, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Claim{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Claim
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[normalized-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

// ListAll returns every claim. Analytics folds run over the full set.
func (r *repositoryImpl) ListAll(ctx context.Context) ([]models.Claim, error) {
	var rows []models.Claim
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

// Update persists the mutable claim columns.
func (r *repositoryImpl) Update(ctx context.Context, claim *models.Claim) (*models.Claim, error) {
	err := r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("id = ?", claim.ID).
		Updates(map[string]any{
			"status":     claim.Status,
			"video_link": claim.VideoLink,
			"ad_code":    claim.AdCode,
			"updated_at": claim.UpdatedAt,
		}).Error
	if err != nil {
		return nil, err
	}
	return claim, nil
}
