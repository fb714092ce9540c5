package enums

import "fmt"

// ClaimStatus represents the fixed claim workflow enum in Postgres.
// The order of workflowOrder is the canonical progression; admins may
// still move a claim to any status directly.
type ClaimStatus string

const (
	ClaimStatusPending         ClaimStatus = "pending"
	ClaimStatusVideoSubmitted  ClaimStatus = "video_submitted"
	ClaimStatusAdCodeSubmitted ClaimStatus = "ad_code_submitted"
	ClaimStatusComplete        ClaimStatus = "complete"
)

var workflowOrder = []ClaimStatus{
	ClaimStatusPending,
	ClaimStatusVideoSubmitted,
	ClaimStatusAdCodeSubmitted,
	ClaimStatusComplete,
}

// ClaimStatuses returns the workflow statuses in progression order.
func ClaimStatuses() []ClaimStatus {
	return append([]ClaimStatus(nil), workflowOrder...)
}

// String implements fmt.Stringer.
func (s ClaimStatus) String() string {
	return string(s)
}

// Label returns the human-readable workflow label.
func (s ClaimStatus) Label() string {
	switch s {
	case ClaimStatusPending:
		return "Pending"
	case ClaimStatusVideoSubmitted:
		return "Video Submitted"
	case ClaimStatusAdCodeSubmitted:
		return "Ad Code Submitted"
	case ClaimStatusComplete:
		return "Complete"
	}
	return string(s)
}

// Rank returns the position of the status in the workflow, or -1 when unknown.
func (s ClaimStatus) Rank() int {
	for i, candidate := range workflowOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}

// IsValid reports whether the value is a known ClaimStatus.
func (s ClaimStatus) IsValid() bool {
	return s.Rank() >= 0
}

// IsOpen reports whether the claim still needs work (anything short of complete).
func (s ClaimStatus) IsOpen() bool {
	return s.IsValid() && s != ClaimStatusComplete
}

// ParseClaimStatus converts raw input into a ClaimStatus.
func ParseClaimStatus(value string) (ClaimStatus, error) {
	for _, candidate := range workflowOrder {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid claim status %q", value)
}
