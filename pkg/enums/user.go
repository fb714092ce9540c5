package enums

import "fmt"

// UserRole represents the canonical user_role enum in Postgres.
type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleAffiliate UserRole = "affiliate"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleAffiliate,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

// AffiliateStatus captures the affiliate approval workflow.
type AffiliateStatus string

const (
	AffiliateStatusPending  AffiliateStatus = "pending"
	AffiliateStatusApproved AffiliateStatus = "approved"
	AffiliateStatusRejected AffiliateStatus = "rejected"
)

var validAffiliateStatuses = []AffiliateStatus{
	AffiliateStatusPending,
	AffiliateStatusApproved,
	AffiliateStatusRejected,
}

// String implements fmt.Stringer.
func (s AffiliateStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AffiliateStatus.
func (s AffiliateStatus) IsValid() bool {
	for _, candidate := range validAffiliateStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAffiliateStatus converts raw input into an AffiliateStatus.
func ParseAffiliateStatus(value string) (AffiliateStatus, error) {
	for _, candidate := range validAffiliateStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid affiliate status %q", value)
}
