package products

import (
	"context"
	"strings"
	"testing"
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

type stubRepo struct {
	products map[uuid.UUID]models.Product
	batchErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{products: make(map[uuid.UUID]models.Product)}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.products[product.ID] = *product
	return product, nil
}

func (s *stubRepo) CreateBatch(ctx context.Context, rows []models.Product) ([]models.Product, error) {
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
		s.products[rows[i].ID] = rows[i]
	}
	return rows, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &product, nil
}

func (s *stubRepo) ListVisible(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	for _, product := range s.products {
		if product.IsActive && product.DeletedAt == nil {
			rows = append(rows, product)
		}
	}
	return rows, nil
}

func (s *stubRepo) ListAdmin(ctx context.Context, params ListAdminParams) ([]models.Product, *pagination.Cursor, error) {
	var rows []models.Product
	for _, product := range s.products {
		if !params.IncludeHidden && (!product.IsActive || product.DeletedAt != nil) {
			continue
		}
		rows = append(rows, product)
	}
	return rows, nil, nil
}

func (s *stubRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	s.products[product.ID] = *product
	return product, nil
}

func (s *stubRepo) SetDeleted(ctx context.Context, id uuid.UUID, deletedAt *time.Time) (bool, error) {
	product, ok := s.products[id]
	if !ok {
		return false, nil
	}
	product.DeletedAt = deletedAt
	s.products[id] = product
	return true, nil
}

type stubTx struct{}

func (s *stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubEvents struct {
	events []outbox.DomainEvent
}

func (s *stubEvents) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func newTestService(t *testing.T) (Service, *stubRepo, *stubEvents) {
	t.Helper()
	repo := newStubRepo()
	events := &stubEvents{}
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Tx:        &stubTx{},
		Events:    events,
		Topics:    config.PubSubConfig{CatalogTopic: "ah-catalog-events"},
		ImportCfg: config.ImportConfig{MaxRows: 10},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, events
}

func TestAdminCreateValidatesAndEmits(t *testing.T) {
	svc, repo, events := newTestService(t)
	ctx := context.Background()
	adminID := uuid.New()

	if _, err := svc.AdminCreate(ctx, adminID, CreateProductInput{Title: "  "}); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error for empty title")
	}

	start := time.Now()
	end := start.Add(-time.Hour)
	if _, err := svc.AdminCreate(ctx, adminID, CreateProductInput{
		Title:             "X",
		AvailabilityStart: &start,
		AvailabilityEnd:   &end,
	}); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error for inverted window")
	}

	dto, err := svc.AdminCreate(ctx, adminID, CreateProductInput{Title: " Glow Serum "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Title != "Glow Serum" || !dto.IsActive {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if len(repo.products) != 1 {
		t.Fatalf("expected one stored product")
	}
	if len(events.events) != 1 || events.events[0].EventType != enums.EventProductCreated {
		t.Fatalf("expected product.created event, got %+v", events.events)
	}
}

func TestGetVisibleHidesDeletedAndInactive(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	visible := models.Product{ID: uuid.New(), Title: "A", IsActive: true}
	inactive := models.Product{ID: uuid.New(), Title: "B", IsActive: false}
	deletedAt := time.Now()
	deleted := models.Product{ID: uuid.New(), Title: "C", IsActive: true, DeletedAt: &deletedAt}
	repo.products[visible.ID] = visible
	repo.products[inactive.ID] = inactive
	repo.products[deleted.ID] = deleted

	if _, err := svc.GetVisible(ctx, visible.ID); err != nil {
		t.Fatalf("visible product: %v", err)
	}
	for _, id := range []uuid.UUID{inactive.ID, deleted.ID} {
		_, err := svc.GetVisible(ctx, id)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	}

	// Admins still see everything.
	if _, err := svc.AdminGet(ctx, deleted.ID); err != nil {
		t.Fatalf("admin get deleted: %v", err)
	}

	rows, err := svc.ListVisible(ctx)
	if err != nil {
		t.Fatalf("list visible: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != visible.ID {
		t.Fatalf("expected only the visible product, got %d rows", len(rows))
	}
}

func TestAdminDeleteAndRestore(t *testing.T) {
	svc, repo, events := newTestService(t)
	ctx := context.Background()
	adminID := uuid.New()

	dto, err := svc.AdminCreate(ctx, adminID, CreateProductInput{Title: "X"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.AdminDelete(ctx, adminID, dto.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if repo.products[dto.ID].DeletedAt == nil {
		t.Fatalf("expected soft-delete marker set")
	}

	if err := svc.AdminDelete(ctx, adminID, dto.ID); pkgerrors.As(err) == nil {
		t.Fatalf("expected conflict deleting twice")
	}

	restored, err := svc.AdminRestore(ctx, adminID, dto.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.DeletedAt != nil {
		t.Fatalf("expected cleared marker")
	}

	if _, err := svc.AdminRestore(ctx, adminID, dto.ID); pkgerrors.As(err) == nil {
		t.Fatalf("expected conflict restoring a live product")
	}

	var types []enums.OutboxEventType
	for _, event := range events.events {
		types = append(types, event.EventType)
	}
	want := []enums.OutboxEventType{enums.EventProductCreated, enums.EventProductDeleted, enums.EventProductRestored}
	if len(types) != len(want) {
		t.Fatalf("expected %v events, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("expected %v events, got %v", want, types)
		}
	}
}

func TestImportInsertsAllRows(t *testing.T) {
	svc, repo, events := newTestService(t)
	ctx := context.Background()

	csvPayload := strings.Join([]string{
		"Title,Category,Share Link,Start Date,Active",
		"Glow Serum,skincare,https://s.example.com/1,2025-06-01,yes",
		"Lip Mask,skincare,https://s.example.com/2,,",
		",,,,",
	}, "\n")

	result, err := svc.Import(ctx, uuid.New(), strings.NewReader(csvPayload))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(repo.products) != 2 {
		t.Fatalf("expected two stored products, got %d", len(repo.products))
	}
	if len(events.events) != 2 {
		t.Fatalf("expected two import events, got %d", len(events.events))
	}
	for _, event := range events.events {
		if event.EventType != enums.EventProductImported {
			t.Fatalf("expected product.imported, got %s", event.EventType)
		}
	}
}

func TestImportRejectsMalformedRowsAtomically(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	csvPayload := strings.Join([]string{
		"title,start_date",
		"Good Row,2025-06-01",
		"Bad Row,not-a-date",
	}, "\n")

	_, err := svc.Import(ctx, uuid.New(), strings.NewReader(csvPayload))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.products) != 0 {
		t.Fatalf("no rows may land when any row is malformed")
	}
}

func TestImportEnforcesRowLimit(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	lines := []string{"title"}
	for i := 0; i < 11; i++ {
		lines = append(lines, "Product")
	}
	_, err := svc.Import(ctx, uuid.New(), strings.NewReader(strings.Join(lines, "\n")))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for oversized import, got %v", err)
	}
}
