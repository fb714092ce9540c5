package enums

import "fmt"

// OutboxEventType names the change-feed events written to outbox_events.
type OutboxEventType string

const (
	EventProductCreated  OutboxEventType = "product.created"
	EventProductUpdated  OutboxEventType = "product.updated"
	EventProductDeleted  OutboxEventType = "product.deleted"
	EventProductRestored OutboxEventType = "product.restored"
	EventProductImported OutboxEventType = "product.imported"

	EventClaimCreated          OutboxEventType = "claim.created"
	EventClaimContentSubmitted OutboxEventType = "claim.content_submitted"
	EventClaimStatusChanged    OutboxEventType = "claim.status_changed"

	EventAffiliateRegistered OutboxEventType = "affiliate.registered"
	EventAffiliateApproved   OutboxEventType = "affiliate.approved"
	EventAffiliateRejected   OutboxEventType = "affiliate.rejected"
)

var validOutboxEventTypes = []OutboxEventType{
	EventProductCreated,
	EventProductUpdated,
	EventProductDeleted,
	EventProductRestored,
	EventProductImported,
	EventClaimCreated,
	EventClaimContentSubmitted,
	EventClaimStatusChanged,
	EventAffiliateRegistered,
	EventAffiliateApproved,
	EventAffiliateRejected,
}

// String implements fmt.Stringer.
func (t OutboxEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OutboxEventType.
func (t OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxAggregateType names the entity an outbox event describes.
type OutboxAggregateType string

const (
	AggregateProduct OutboxAggregateType = "product"
	AggregateClaim   OutboxAggregateType = "claim"
	AggregateUser    OutboxAggregateType = "user"
)

var validOutboxAggregateTypes = []OutboxAggregateType{
	AggregateProduct,
	AggregateClaim,
	AggregateUser,
}

// String implements fmt.Stringer.
func (a OutboxAggregateType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known OutboxAggregateType.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validOutboxAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}
