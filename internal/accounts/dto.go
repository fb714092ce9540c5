package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/orlie/affiliatehub-backend/pkg/db/models"
)

// UserDTO is the account payload returned to clients. The password hash
// never leaves the service layer.
type UserDTO struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	DisplayName   string     `json:"display_name"`
	TikTokHandle  string     `json:"tiktok_handle,omitempty"`
	DiscordHandle string     `json:"discord_handle,omitempty"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// AuthResponse bundles the session tokens with the account.
type AuthResponse struct {
	User         UserDTO `json:"user"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
}

// AffiliateListResult carries a page of affiliates plus the next cursor.
type AffiliateListResult struct {
	Affiliates []UserDTO `json:"affiliates"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// PasswordResetTicket is returned to the caller of a reset request. The
// token is only surfaced in dev; delivery is out of scope.
type PasswordResetTicket struct {
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewUserDTO builds a DTO from the persisted model.
func NewUserDTO(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:            user.ID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		TikTokHandle:  user.TikTokHandle,
		DiscordHandle: user.DiscordHandle,
		Role:          user.Role.String(),
		Status:        user.Status.String(),
		LastLoginAt:   user.LastLoginAt,
		CreatedAt:     user.CreatedAt,
	}
}

// NewUserDTOs maps a slice of models preserving order.
func NewUserDTOs(rows []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewUserDTO(&rows[i]))
	}
	return out
}
