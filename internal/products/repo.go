package products

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orlie/affiliatehub-backend/pkg/db/models"
	"github.com/orlie/affiliatehub-backend/pkg/pagination"
)

// ListAdminParams filters the admin product listing.
type ListAdminParams struct {
	IncludeHidden bool
	Limit         int
	Cursor        *pagination.Cursor
}

// Repository defines product persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	CreateBatch(ctx context.Context, rows []models.Product) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListVisible(ctx context.Context) ([]models.Product, error)
	ListAdmin(ctx context.Context, params ListAdminParams) ([]models.Product, *pagination.Cursor, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	SetDeleted(ctx context.Context, id uuid.UUID, deletedAt *time.Time) (bool, error)
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

func (r *repositoryImpl) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// CreateBatch inserts the rows in one statement; the caller wraps it in a
// transaction so a bad row aborts the whole import.
func (r *repositoryImpl) CreateBatch(ctx context.Context, rows []models.Product) ([]models.Product, error) {
	if len(rows) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads the product regardless of visibility; callers apply policy.
func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListVisible returns active, non-deleted products newest first.
func (r *repositoryImpl) ListVisible(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND deleted_at IS NULL", true).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

// ListAdmin pages through products, optionally including hidden and deleted
// rows.
func (r *repositoryImpl) ListAdmin(ctx context.Context, params ListAdminParams) ([]models.Product, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if !params.IncludeHidden {
		query = query.Where("is_active = ? AND deleted_at IS NULL", true)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Product
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

// Update persists the mutable product columns.
func (r *repositoryImpl) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"title":              product.Title,
			"category":           product.Category,
			"image_url":          product.ImageURL,
			"commission":         product.Commission,
			"share_link":         product.ShareLink,
			"product_url":        product.ProductURL,
			"content_doc_url":    product.ContentDocURL,
			"availability_start": product.AvailabilityStart,
			"availability_end":   product.AvailabilityEnd,
			"is_active":          product.IsActive,
			"updated_at":         product.UpdatedAt,
		}).Error
	if err != nil {
		return nil, err
	}
	return product, nil
}

// SetDeleted stamps or clears the soft-delete marker. Returns false when the
// product does not exist.
func (r *repositoryImpl) SetDeleted(ctx context.Context, id uuid.UUID, deletedAt *time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"deleted_at": deletedAt,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
