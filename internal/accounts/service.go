package accounts

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/orlie/affiliatehub-backend/pkg/auth"
	"github.com/orlie/affiliatehub-backend/pkg/auth/session"
	"github.com/orlie/affiliatehub-backend/pkg/config"
	"github.com/orlie/affiliatehub-backend/pkg/db/models"
	"github.com/orlie/affiliatehub-backend/pkg/enums"
	pkgerrors "github.com/orlie/affiliatehub-backend/pkg/errors"
	"github.com/orlie/affiliatehub-backend/pkg/outbox"
	"github.com/orlie/affiliatehub-backend/pkg/pagination"
	"github.com/orlie/affiliatehub-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	resetTokenBytes           = 32
)

// RegisterRequest contains the affiliate signup payload.
type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required"`
	DisplayName   string `json:"display_name" validate:"required"`
	TikTokHandle  string `json:"tiktok_handle,omitempty"`
	DiscordHandle string `json:"discord_handle,omitempty"`
}

// LoginRequest contains the credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the expired access token plus the refresh secret.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpdateProfileRequest holds optional self-service profile edits.
type UpdateProfileRequest struct {
	DisplayName   *string `json:"display_name,omitempty"`
	TikTokHandle  *string `json:"tiktok_handle,omitempty"`
	DiscordHandle *string `json:"discord_handle,omitempty"`
}

// Service defines the identity and access operations.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	RegisterAdmin(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, accessID string) error
	Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error)
	RequestPasswordReset(ctx context.Context, email string) (*PasswordResetTicket, error)
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserDTO, error)
	AdminListAffiliates(ctx context.Context, status string, page pagination.Params) (*AffiliateListResult, error)
	AdminSetAffiliateStatus(ctx context.Context, actorID, affiliateID uuid.UUID, status enums.AffiliateStatus) (*UserDTO, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type resetStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	PasswordResetKey(token string) string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo        Repository
	sessions    sessionManager
	resets      resetStore
	tx          txRunner
	events      eventEmitter
	topics      config.PubSubConfig
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build an accounts service.
type ServiceParams struct {
	Repo           Repository
	Sessions       sessionManager
	Resets         resetStore
	Tx             txRunner
	Events         eventEmitter
	Topics         config.PubSubConfig
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewService constructs an accounts service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if params.Resets == nil {
		return nil, fmt.Errorf("reset store required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{
		repo:        params.Repo,
		sessions:    params.Sessions,
		resets:      params.Resets,
		tx:          params.Tx,
		events:      params.Events,
		topics:      params.Topics,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
	}, nil
}

type affiliateEventData struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Status string    `json:"status"`
}

// Register creates an affiliate account in the pending state and signs the
// new user in.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return s.register(ctx, req, enums.UserRoleAffiliate, enums.AffiliateStatusPending)
}

// RegisterAdmin creates an admin account. The route layer only exposes this
// in dev builds.
func (s *service) RegisterAdmin(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return s.register(ctx, req, enums.UserRoleAdmin, enums.AffiliateStatusApproved)
}

func (s *service) register(ctx context.Context, req RegisterRequest, role enums.UserRole, status enums.AffiliateStatus) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name is required")
	}
	if len(req.Password) < s.passwordCfg.MinLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is too short").
			WithDetails(map[string]any{"min_length": s.passwordCfg.MinLength})
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:         email,
		PasswordHash:  passwordHash,
		DisplayName:   displayName,
		TikTokHandle:  strings.TrimSpace(req.TikTokHandle),
		DiscordHandle: strings.TrimSpace(req.DiscordHandle),
		Role:          role,
		Status:        status,
		IsActive:      true,
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check email")
		}

		created, err := txRepo.Create(ctx, user)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create user")
		}

		if role != enums.UserRoleAffiliate {
			return nil
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			Topic:         s.topics.AffiliateTopic,
			EventType:     enums.EventAffiliateRegistered,
			AggregateType: enums.AggregateUser,
			AggregateID:   created.ID,
			Data: affiliateEventData{
				UserID: created.ID,
				Email:  created.Email,
				Status: created.Status.String(),
			},
		})
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register")
	}

	return s.issueTokens(ctx, user)
}

// Login verifies credentials and issues a token pair.
func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}

	match, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !match {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record login")
	}
	user.LastLoginAt = &now

	return s.issueTokens(ctx, user)
}

// Logout revokes the refresh session tied to the access token.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// Refresh rotates the session and mints a fresh token pair. Role and status
// are re-read so an approval or rejection takes effect on the next refresh.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefreshToken, err := s.sessions.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account disabled")
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		Status: user.Status,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &AuthResponse{
		User:         *NewUserDTO(user),
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// RequestPasswordReset stores a short-lived token keyed to the account. A
// missing account produces the same response as a real one.
func (s *service) RequestPasswordReset(ctx context.Context, email string) (*PasswordResetTicket, error) {
	expires := time.Now().UTC().Add(s.passwordCfg.ResetTokenTTL)
	ticket := &PasswordResetTicket{ExpiresAt: expires}

	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ticket, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}

	token, err := generateResetToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}
	if err := s.resets.Set(ctx, s.resets.PasswordResetKey(token), user.ID.String(), s.passwordCfg.ResetTokenTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store reset token")
	}

	ticket.Token = token
	return ticket, nil
}

// ConfirmPasswordReset consumes the token and sets the new password.
func (s *service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reset token required")
	}
	if len(newPassword) < s.passwordCfg.MinLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "password is too short").
			WithDetails(map[string]any{"min_length": s.passwordCfg.MinLength})
	}

	key := s.resets.PasswordResetKey(token)
	rawID, err := s.resets.Get(ctx, key)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired reset token")
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired reset token")
	}

	passwordHash, err := security.HashPassword(newPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update password")
	}

	// Token is single-use.
	if err := s.resets.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume reset token")
	}
	return nil
}

// Me returns the caller's account.
func (s *service) Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewUserDTO(user), nil
}

// UpdateMe applies self-service profile edits.
func (s *service) UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		trimmed := strings.TrimSpace(*req.DisplayName)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name cannot be empty")
		}
		user.DisplayName = trimmed
	}
	if req.TikTokHandle != nil {
		user.TikTokHandle = strings.TrimSpace(*req.TikTokHandle)
	}
	if req.DiscordHandle != nil {
		user.DiscordHandle = strings.TrimSpace(*req.DiscordHandle)
	}
	user.UpdatedAt = time.Now().UTC()

	if _, err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update profile")
	}
	return NewUserDTO(user), nil
}

// AdminListAffiliates pages through affiliate accounts.
func (s *service) AdminListAffiliates(ctx context.Context, status string, page pagination.Params) (*AffiliateListResult, error) {
	params := ListAffiliatesParams{Limit: page.Limit}
	if status != "" {
		parsed, err := enums.ParseAffiliateStatus(status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		params.Status = &parsed
	}
	if page.Cursor != "" {
		cursor, err := pagination.ParseCursor(page.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = cursor
	}

	rows, next, err := s.repo.ListAffiliates(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list affiliates")
	}

	result := &AffiliateListResult{Affiliates: NewUserDTOs(rows)}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// AdminSetAffiliateStatus approves or rejects an affiliate and broadcasts
// the change.
func (s *service) AdminSetAffiliateStatus(ctx context.Context, actorID, affiliateID uuid.UUID, status enums.AffiliateStatus) (*UserDTO, error) {
	if status != enums.AffiliateStatusApproved && status != enums.AffiliateStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be approved or rejected")
	}

	user, err := s.loadUser(ctx, affiliateID)
	if err != nil {
		return nil, err
	}
	if user.Role != enums.UserRoleAffiliate {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account is not an affiliate")
	}

	eventType := enums.EventAffiliateApproved
	if status == enums.AffiliateStatusRejected {
		eventType = enums.EventAffiliateRejected
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		found, err := txRepo.UpdateStatus(ctx, affiliateID, status)
		if err != nil {
			return err
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "affiliate not found")
		}
		user.Status = status
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			Topic:         s.topics.AffiliateTopic,
			EventType:     eventType,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Actor:         &outbox.ActorRef{UserID: actorID, Role: enums.UserRoleAdmin.String()},
			Data: affiliateEventData{
				UserID: user.ID,
				Email:  user.Email,
				Status: status.String(),
			},
		})
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update affiliate status")
	}

	return NewUserDTO(user), nil
}

func (s *service) issueTokens(ctx context.Context, user *models.User) (*AuthResponse, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		Status: user.Status,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	return &AuthResponse{
		User:         *NewUserDTO(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *service) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return user, nil
}

func generateResetToken() (string, error) {
	bytes := make([]byte, resetTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
