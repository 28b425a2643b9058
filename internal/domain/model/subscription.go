package model

import (
	"time"

	"inmo-marketplace/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending    SubscriptionStatus = "pending"
	SubscriptionStatusAuthorized SubscriptionStatus = "authorized"
	SubscriptionStatusPaused     SubscriptionStatus = "paused"
	SubscriptionStatusCancelled  SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired    SubscriptionStatus = "expired"
)

// Subscription is one user's recurring commitment to a Plan. It is created
// pending by the billing flow; after that only webhook reconciliation is
// allowed to mutate status and period end.
type Subscription struct {
	ID               string // UUID
	UserID           string
	PlanID           string
	Status           SubscriptionStatus
	MPPreapprovalID  *string    // nil until the gateway call succeeds
	CurrentPeriodEnd *time.Time // nil until the first authorized payment
	CreatedAt        time.Time
}

// NewSubscription creates a pending subscription for a user.
func NewSubscription(id, userID, planID string) (*Subscription, error) {
	if id == "" || userID == "" || planID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Subscription{
		ID:        id,
		UserID:    userID,
		PlanID:    planID,
		Status:    SubscriptionStatusPending,
		CreatedAt: time.Now(),
	}, nil
}

// MapMPSubscriptionStatus translates MercadoPago's preapproval status
// vocabulary to ours. Anything unrecognized maps to pending, the safe
// default for a subscription we cannot yet bill against.
func MapMPSubscriptionStatus(remote string) SubscriptionStatus {
	switch remote {
	case "authorized":
		return SubscriptionStatusAuthorized
	case "pending":
		return SubscriptionStatusPending
	case "paused":
		return SubscriptionStatusPaused
	case "cancelled":
		return SubscriptionStatusCancelled
	case "expired":
		return SubscriptionStatusExpired
	default:
		return SubscriptionStatusPending
	}
}
