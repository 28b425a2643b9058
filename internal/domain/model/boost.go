package model

import (
	"time"

	"inmo-marketplace/internal/domain"
)

type BoostStatus string

const (
	BoostStatusPending BoostStatus = "pending"
	BoostStatusActive  BoostStatus = "active"
)

// DefaultBoostDurationHours is used when a boost's product row is missing
// at activation time.
const DefaultBoostDurationHours = 24

// Boost is a paid, time-windowed promotion of a single listing. Created
// pending by the purchase flow; activated with a computed window by webhook
// reconciliation once the payment is approved.
type Boost struct {
	ID             string // UUID
	ListingID      string
	UserID         string
	BoostProductID string
	Status         BoostStatus
	StartsAt       *time.Time // nil until activated
	EndsAt         *time.Time // nil until activated
	MPPaymentID    *string    // nil until the approved payment is seen
	CreatedAt      time.Time
}

// NewBoost creates a pending boost purchase.
func NewBoost(id, listingID, userID, productID string) (*Boost, error) {
	if id == "" || listingID == "" || userID == "" || productID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Boost{
		ID:             id,
		ListingID:      listingID,
		UserID:         userID,
		BoostProductID: productID,
		Status:         BoostStatusPending,
		CreatedAt:      time.Now(),
	}, nil
}

// ActiveAt reports whether the boost window covers the given instant.
func (b *Boost) ActiveAt(t time.Time) bool {
	return b.Status == BoostStatusActive && b.EndsAt != nil && b.EndsAt.After(t)
}

// BoostProduct is a purchasable promotion tier. Read-only reference data.
type BoostProduct struct {
	ID            string // UUID
	Code          string // unique, e.g. "destacado_24h"
	Name          string
	PriceARS      float64
	DurationHours int
}
