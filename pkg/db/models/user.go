package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/orlie/affiliatehub-backend/pkg/enums"
)

// User is the canonical identity plus affiliate profile. Admins carry
// status=approved implicitly; the approval workflow only applies to
// affiliates.
type User struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email         string                `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash  string                `gorm:"column:password_hash;not null"`
	DisplayName   string                `gorm:"column:display_name;not null"`
	TikTokHandle  string                `gorm:"column:tiktok_handle;not null;default:''"`
	DiscordHandle string                `gorm:"column:discord_handle;not null;default:''"`
	Role          enums.UserRole        `gorm:"column:role;type:user_role;not null"`
	Status        enums.AffiliateStatus `gorm:"column:status;type:affiliate_status;not null;default:'pending'"`
	IsActive      bool                  `gorm:"column:is_active;not null;default:true"`
	LastLoginAt   *time.Time            `gorm:"column:last_login_at"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// IsApprovedAffiliate reports whether the user may open or progress claims.
func (u *User) IsApprovedAffiliate() bool {
	return u != nil &&
		u.Role == enums.UserRoleAffiliate &&
		u.Status == enums.AffiliateStatusApproved
}
