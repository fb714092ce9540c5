package claims

import (
	"context"
	"errors"
	"fmt"
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

// Service exposes the claim lifecycle operations.
type Service interface {
	Create(ctx context.Context, affiliateID, productID uuid.UUID) (*ClaimDTO, error)
	Eligibility(ctx context.Context, affiliateID, productID uuid.UUID) (*EligibilityDTO, error)
	ListMine(ctx context.Context, affiliateID uuid.UUID) ([]ClaimDTO, error)
	SubmitContent(ctx context.Context, affiliateID, claimID uuid.UUID, videoLink, adCode string) (*ClaimDTO, error)
	ShareQR(ctx context.Context, requesterID uuid.UUID, requesterRole enums.UserRole, claimID uuid.UUID) ([]byte, error)
	AdminList(ctx context.Context, input AdminListInput) (*ClaimListResult, error)
	AdminSetStatus(ctx context.Context, actorID, claimID uuid.UUID, status string) (*ClaimDTO, error)
	AdminBulkSetStatus(ctx context.Context, actorID uuid.UUID, claimIDs []uuid.UUID, status string) ([]ClaimDTO, error)
}

// AdminListInput carries the admin listing filters.
type AdminListInput struct {
	Status     string
	Pagination pagination.Params
}

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type qrEncoder interface {
	EncodePNG(link string) ([]byte, error)
}

type service struct {
	repo     Repository
	users    userReader
	products productReader
	tx       txRunner
	events   eventEmitter
	qr       qrEncoder
	topics   config.PubSubConfig
}

// ServiceParams bundles the dependencies required to build a claim service.
type ServiceParams struct {
	Repo     Repository
	Users    userReader
	Products productReader
	Tx       txRunner
	Events   eventEmitter
	QR       qrEncoder
	Topics   config.PubSubConfig
}

// NewService constructs a claim service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("claim repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user reader required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if params.QR == nil {
		return nil, fmt.Errorf("qr encoder required")
	}
	return &service{
		repo:     params.Repo,
		users:    params.Users,
		products: params.Products,
		tx:       params.Tx,
		events:   params.Events,
		qr:       params.QR,
		topics:   params.Topics,
	}, nil
}

type claimEventData struct {
	ClaimID         uuid.UUID `json:"claim_id"`
	ProductID       uuid.UUID `json:"product_id"`
	AffiliateUserID uuid.UUID `json:"affiliate_user_id"`
	Status          string    `json:"status"`
	PreviousStatus  string    `json:"previous_status,omitempty"`
}

// Create opens a pending claim for the affiliate on the product.
func (s *service) Create(ctx context.Context, affiliateID, productID uuid.UUID) (*ClaimDTO, error) {
	now := time.Now().UTC()

	affiliate, product, history, err := s.loadEligibilityInputs(ctx, affiliateID, productID)
	if err != nil {
		return nil, err
	}

	decision := EvaluateCreate(affiliate, product, history, now)
	if !decision.Allowed {
		return nil, denyError(decision.Reason)
	}

	claim := NewClaim(affiliate, product, now)
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		created, err := txRepo.Create(ctx, &claim)
		if err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			Topic:         s.topics.ClaimTopic,
			EventType:     enums.EventClaimCreated,
			AggregateType: enums.AggregateClaim,
			AggregateID:   created.ID,
			Actor:         &outbox.ActorRef{UserID: affiliateID, Role: affiliate.Role.String()},
			Data: claimEventData{
				ClaimID:         created.ID,
				ProductID:       created.ProductID,
				AffiliateUserID: created.AffiliateUserID,
				Status:          created.Status.String(),
			},
		})
	}); err != nil {
		// A concurrent create can slip past the policy check; the partial
		// unique index is the backstop.
		if pkgerrors.IsUniqueViolation(err, OpenClaimConstraint) {
			return nil, denyError(DenyAlreadyOpen)
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert claim")
	}

	return NewClaimDTO(&claim), nil
}

// Eligibility reports whether the affiliate could open a claim right now,
// without creating anything.
func (s *service) Eligibility(ctx context.Context, affiliateID, productID uuid.UUID) (*EligibilityDTO, error) {
	affiliate, product, history, err := s.loadEligibilityInputs(ctx, affiliateID, productID)
	if err != nil {
		return nil, err
	}
	dto := NewEligibilityDTO(EvaluateCreate(affiliate, product, history, time.Now().UTC()))
	return &dto, nil
}

// ListMine returns every claim belonging to the authenticated affiliate,
// newest first.
func (s *service) ListMine(ctx context.Context, affiliateID uuid.UUID) ([]ClaimDTO, error) {
	affiliate, err := s.loadUser(ctx, affiliateID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListForAffiliate(ctx, affiliate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list claims")
	}
	return NewClaimDTOs(rows), nil
}

// SubmitContent records the owner's video link and ad code on a pending claim.
func (s *service) SubmitContent(ctx context.Context, affiliateID, claimID uuid.UUID, videoLink, adCode string) (*ClaimDTO, error) {
	now := time.Now().UTC()

	claim, err := s.loadClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.AffiliateUserID != affiliateID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "claim belongs to another affiliate")
	}

	updated, err := SubmitVideoAndCode(*claim, videoLink, adCode, now)
	if err != nil {
		return nil, err
	}

	if err := s.persistClaimChange(ctx, &updated, affiliateID, enums.UserRoleAffiliate, enums.EventClaimContentSubmitted, claim.Status); err != nil {
		return nil, err
	}
	return NewClaimDTO(&updated), nil
}

// ShareQR renders the claim's share link as a PNG QR code. Owners and admins
// only.
func (s *service) ShareQR(ctx context.Context, requesterID uuid.UUID, requesterRole enums.UserRole, claimID uuid.UUID) ([]byte, error) {
	claim, err := s.loadClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.AffiliateUserID != requesterID && requesterRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "claim belongs to another affiliate")
	}
	if claim.ShareLink == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "claim has no share link")
	}
	png, err := s.qr.EncodePNG(claim.ShareLink)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode qr")
	}
	return png, nil
}

// AdminList pages through all claims with an optional status filter.
func (s *service) AdminList(ctx context.Context, input AdminListInput) (*ClaimListResult, error) {
	params := ListAdminParams{Limit: input.Pagination.Limit}
	if input.Status != "" {
		status, err := enums.ParseClaimStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		params.Status = &status
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list claims")
	}

	result := &ClaimListResult{Claims: NewClaimDTOs(rows)}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// AdminSetStatus moves a single claim to the requested status.
func (s *service) AdminSetStatus(ctx context.Context, actorID, claimID uuid.UUID, status string) (*ClaimDTO, error) {
	target, err := enums.ParseClaimStatus(status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid claim status")
	}

	claim, err := s.loadClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	updated, err := AdvanceStatus(*claim, target, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.persistClaimChange(ctx, &updated, actorID, enums.UserRoleAdmin, enums.EventClaimStatusChanged, claim.Status); err != nil {
		return nil, err
	}
	return NewClaimDTO(&updated), nil
}

// AdminBulkSetStatus moves every listed claim to the requested status inside
// one transaction. Any missing claim aborts the whole batch.
func (s *service) AdminBulkSetStatus(ctx context.Context, actorID uuid.UUID, claimIDs []uuid.UUID, status string) ([]ClaimDTO, error) {
	if len(claimIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one claim id is required")
	}
	target, err := enums.ParseClaimStatus(status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid claim status")
	}

	unique := make([]uuid.UUID, 0, len(claimIDs))
	seen := make(map[uuid.UUID]struct{}, len(claimIDs))
	for _, id := range claimIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	now := time.Now().UTC()
	var out []ClaimDTO
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		rows, err := txRepo.FindByIDs(ctx, unique)
		if err != nil {
			return err
		}
		if len(rows) != len(unique) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "one or more claims not found").
				WithDetails(map[string]any{"requested": len(unique), "found": len(rows)})
		}

		out = make([]ClaimDTO, 0, len(rows))
		for i := range rows {
			previous := rows[i].Status
			updated, err := AdvanceStatus(rows[i], target, now)
			if err != nil {
				return err
			}
			if _, err := txRepo.Update(ctx, &updated); err != nil {
				return err
			}
			if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				Topic:         s.topics.ClaimTopic,
				EventType:     enums.EventClaimStatusChanged,
				AggregateType: enums.AggregateClaim,
				AggregateID:   updated.ID,
				Actor:         &outbox.ActorRef{UserID: actorID, Role: enums.UserRoleAdmin.String()},
				Data: claimEventData{
					ClaimID:         updated.ID,
					ProductID:       updated.ProductID,
					AffiliateUserID: updated.AffiliateUserID,
					Status:          updated.Status.String(),
					PreviousStatus:  previous.String(),
				},
			}); err != nil {
				return err
			}
			out = append(out, *NewClaimDTO(&updated))
		}
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: bulk status update")
	}

	return out, nil
}

func (s *service) loadEligibilityInputs(ctx context.Context, affiliateID, productID uuid.UUID) (*models.User, *models.Product, []models.Claim, error) {
	affiliate, err := s.loadUser(ctx, affiliateID)
	if err != nil {
		return nil, nil, nil, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	// Hidden products look nonexistent to affiliates.
	if !CanViewProduct(product) {
		return nil, nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	history, err := s.repo.ListByProductAndAffiliate(ctx, affiliateID, productID)
	if err != nil {
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load claim history")
	}
	return affiliate, product, history, nil
}

func (s *service) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return user, nil
}

func (s *service) loadClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	claim, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "claim not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load claim")
	}
	return claim, nil
}

func (s *service) persistClaimChange(ctx context.Context, claim *models.Claim, actorID uuid.UUID, actorRole enums.UserRole, eventType enums.OutboxEventType, previous enums.ClaimStatus) error {
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, claim); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			Topic:         s.topics.ClaimTopic,
			EventType:     eventType,
			AggregateType: enums.AggregateClaim,
			AggregateID:   claim.ID,
			Actor:         &outbox.ActorRef{UserID: actorID, Role: actorRole.String()},
			Data: claimEventData{
				ClaimID:         claim.ID,
				ProductID:       claim.ProductID,
				AffiliateUserID: claim.AffiliateUserID,
				Status:          claim.Status.String(),
				PreviousStatus:  previous.String(),
			},
		})
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update claim")
	}
	return nil
}

func denyError(reason DenyReason) error {
	var err *pkgerrors.Error
	switch reason {
	case DenyNotApproved:
		err = pkgerrors.New(pkgerrors.CodeForbidden, "affiliate account is not approved")
	case DenyUnavailable:
		err = pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available for claiming")
	case DenyAlreadyOpen:
		err = pkgerrors.New(pkgerrors.CodeConflict, "an open claim already exists for this product")
	case DenyAlreadyComplete:
		err = pkgerrors.New(pkgerrors.CodeConflict, "this product has already been completed")
	default:
		err = pkgerrors.New(pkgerrors.CodeStateConflict, "claim cannot be created")
	}
	return err.WithDetails(map[string]any{"reason": string(reason)})
}
