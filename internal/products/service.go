package products

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orlie/affiliatehub-backend/pkg/config"
	"github.com/orlie/affiliatehub-backend/pkg/db/models"
	"github.com/orlie/affiliatehub-backend/pkg/enums"
	pkgerrors "github.com/orlie/affiliatehub-backend/pkg/errors"
	"github.com/orlie/affiliatehub-backend/pkg/outbox"
	"github.com/orlie/affiliatehub-backend/pkg/pagination"
)

// Service exposes catalog management operations.
type Service interface {
	ListVisible(ctx context.Context) ([]ProductDTO, error)
	GetVisible(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	AdminGet(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	AdminList(ctx context.Context, input AdminListInput) (*ProductListResult, error)
	AdminCreate(ctx context.Context, actorID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	AdminUpdate(ctx context.Context, actorID, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	AdminDelete(ctx context.Context, actorID, id uuid.UUID) error
	AdminRestore(ctx context.Context, actorID, id uuid.UUID) (*ProductDTO, error)
	Import(ctx context.Context, actorID uuid.UUID, payload io.Reader) (*ImportResult, error)
}

// AdminListInput carries the admin listing filters.
type AdminListInput struct {
	IncludeHidden bool
	Pagination    pagination.Params
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Title             string
	Category          string
	ImageURL          string
	Commission        string
	ShareLink         string
	ProductURL        string
	ContentDocURL     string
	AvailabilityStart *time.Time
	AvailabilityEnd   *time.Time
	IsActive          *bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Title             *string
	Category          *string
	ImageURL          *string
	Commission        *string
	ShareLink         *string
	ProductURL        *string
	ContentDocURL     *string
	AvailabilityStart *time.Time
	AvailabilityEnd   *time.Time
	ClearWindow       bool
	IsActive          *bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo      Repository
	tx        txRunner
	events    eventEmitter
	topics    config.PubSubConfig
	importCfg config.ImportConfig
}

// ServiceParams bundles the dependencies required to build a product service.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Events    eventEmitter
	Topics    config.PubSubConfig
	ImportCfg config.ImportConfig
}

// NewService constructs a product service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if params.ImportCfg.MaxRows <= 0 {
		params.ImportCfg.MaxRows = 500
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		events:    params.Events,
		topics:    params.Topics,
		importCfg: params.ImportCfg,
	}, nil
}

type productEventData struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	IsActive  bool      `json:"is_active"`
	Deleted   bool      `json:"deleted,omitempty"`
}

// ListVisible returns the products affiliates may browse.
func (s *service) ListVisible(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.ListVisible(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return NewProductDTOs(rows), nil
}

// GetVisible loads one product, hiding soft-deleted and deactivated rows.
func (s *service) GetVisible(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive || product.DeletedAt != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductDTO(product), nil
}

// AdminGet loads one product regardless of visibility.
func (s *service) AdminGet(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product), nil
}

// AdminList pages through the catalog, optionally including hidden rows.
func (s *service) AdminList(ctx context.Context, input AdminListInput) (*ProductListResult, error) {
	params := ListAdminParams{
		IncludeHidden: input.IncludeHidden,
		Limit:         input.Pagination.Limit,
	}
	if input.Pagination.Cursor != "" {
		cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = cursor
	}

	rows, next, err := s.repo.ListAdmin(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}

	result := &ProductListResult{Products: NewProductDTOs(rows)}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// AdminCreate inserts a product and broadcasts the catalog change.
func (s *service) AdminCreate(ctx context.Context, actorID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if err := validateWindow(input.AvailabilityStart, input.AvailabilityEnd); err != nil {
		return nil, err
	}

	product := models.Product{
		Title:             title,
		Category:          strings.TrimSpace(input.Category),
		ImageURL:          strings.TrimSpace(input.ImageURL),
		Commission:        strings.TrimSpace(input.Commission),
		ShareLink:         strings.TrimSpace(input.ShareLink),
		ProductURL:        strings.TrimSpace(input.ProductURL),
		ContentDocURL:     strings.TrimSpace(input.ContentDocURL),
		AvailabilityStart: input.AvailabilityStart,
		AvailabilityEnd:   input.AvailabilityEnd,
		IsActive:          true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		created, err := txRepo.Create(ctx, &product)
		if err != nil {
			return err
		}
		return s.emitProductEvent(ctx, tx, enums.EventProductCreated, actorID, created, false)
	}); err != nil {
		return nil, wrapDependency(err, "db: insert product")
	}

	return NewProductDTO(&product), nil
}

// AdminUpdate mutates the product and broadcasts the catalog change.
func (s *service) AdminUpdate(ctx context.Context, actorID, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdateToProduct(product, input)
	if product.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if err := validateWindow(product.AvailabilityStart, product.AvailabilityEnd); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, product); err != nil {
			return err
		}
		return s.emitProductEvent(ctx, tx, enums.EventProductUpdated, actorID, product, false)
	}); err != nil {
		return nil, wrapDependency(err, "db: update product")
	}

	return NewProductDTO(product), nil
}

// AdminDelete soft-deletes the product. Existing claims keep their snapshots.
func (s *service) AdminDelete(ctx context.Context, actorID, id uuid.UUID) error {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return err
	}
	if product.DeletedAt != nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "product is already deleted")
	}

	now := time.Now().UTC()
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		found, err := txRepo.SetDeleted(ctx, id, &now)
		if err != nil {
			return err
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		product.DeletedAt = &now
		return s.emitProductEvent(ctx, tx, enums.EventProductDeleted, actorID, product, true)
	}); err != nil {
		return wrapDependency(err, "db: delete product")
	}
	return nil
}

// AdminRestore clears the soft-delete marker.
func (s *service) AdminRestore(ctx context.Context, actorID, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.DeletedAt == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not deleted")
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		found, err := txRepo.SetDeleted(ctx, id, nil)
		if err != nil {
			return err
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		product.DeletedAt = nil
		return s.emitProductEvent(ctx, tx, enums.EventProductRestored, actorID, product, false)
	}); err != nil {
		return nil, wrapDependency(err, "db: restore product")
	}

	return NewProductDTO(product), nil
}

// Import parses a CSV payload and inserts every row in one transaction. Any
// malformed row aborts the whole batch so a partial catalog never lands.
func (s *service) Import(ctx context.Context, actorID uuid.UUID, payload io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(payload)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "csv header missing")
	}
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = NormalizeHeader(name)
	}

	var (
		rows      []models.Product
		rowErrors []string
		skipped   int
		line      = 1
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		row := make(map[string]string, len(columns))
		empty := true
		for i, value := range record {
			if i >= len(columns) {
				break
			}
			row[columns[i]] = value
			if strings.TrimSpace(value) != "" {
				empty = false
			}
		}
		if empty {
			skipped++
			continue
		}

		product, err := NormalizeProductRow(row)
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, errorMessage(err)))
			continue
		}
		rows = append(rows, product)
	}

	if len(rowErrors) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import rejected: malformed rows").
			WithDetails(map[string]any{"errors": rowErrors})
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import rejected: no rows")
	}
	if len(rows) > s.importCfg.MaxRows {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import rejected: too many rows").
			WithDetails(map[string]any{"rows": len(rows), "max": s.importCfg.MaxRows})
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		created, err := txRepo.CreateBatch(ctx, rows)
		if err != nil {
			return err
		}
		for i := range created {
			if err := s.emitProductEvent(ctx, tx, enums.EventProductImported, actorID, &created[i], false); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, wrapDependency(err, "db: import products")
	}

	return &ImportResult{Imported: len(rows), Skipped: skipped}, nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}

func (s *service) emitProductEvent(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, actorID uuid.UUID, product *models.Product, deleted bool) error {
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		Topic:         s.topics.CatalogTopic,
		EventType:     eventType,
		AggregateType: enums.AggregateProduct,
		AggregateID:   product.ID,
		Actor:         &outbox.ActorRef{UserID: actorID, Role: enums.UserRoleAdmin.String()},
		Data: productEventData{
			ProductID: product.ID,
			Title:     product.Title,
			IsActive:  product.IsActive,
			Deleted:   deleted,
		},
	})
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.Title != nil {
		product.Title = strings.TrimSpace(*input.Title)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.ImageURL != nil {
		product.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.Commission != nil {
		product.Commission = strings.TrimSpace(*input.Commission)
	}
	if input.ShareLink != nil {
		product.ShareLink = strings.TrimSpace(*input.ShareLink)
	}
	if input.ProductURL != nil {
		product.ProductURL = strings.TrimSpace(*input.ProductURL)
	}
	if input.ContentDocURL != nil {
		product.ContentDocURL = strings.TrimSpace(*input.ContentDocURL)
	}
	if input.ClearWindow {
		product.AvailabilityStart = nil
		product.AvailabilityEnd = nil
	}
	if input.AvailabilityStart != nil {
		product.AvailabilityStart = input.AvailabilityStart
	}
	if input.AvailabilityEnd != nil {
		product.AvailabilityEnd = input.AvailabilityEnd
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
}

func validateWindow(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "availability_end precedes availability_start")
	}
	return nil
}

func wrapDependency(err error, message string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}

func errorMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}
