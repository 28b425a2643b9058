package model

import (
	"time"

	"inmo-marketplace/internal/domain"
)

// Plan is a purchasable publisher tier. Rows are created once by the seed
// tool and are immutable afterwards except for the remote-id backfill done
// by admin provisioning.
type Plan struct {
	ID                  string // UUID
	Code                string // unique, e.g. "pro"
	Name                string
	PriceARS            float64
	ListingLimit        int
	MPPreapprovalPlanID *string // nil until provisioned with MercadoPago
	CreatedAt           time.Time
}

// NewPlan validates and constructs a plan.
func NewPlan(id, code, name string, priceARS float64, listingLimit int) (*Plan, error) {
	if id == "" || code == "" || name == "" || priceARS < 0 || listingLimit <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:           id,
		Code:         code,
		Name:         name,
		PriceARS:     priceARS,
		ListingLimit: listingLimit,
		CreatedAt:    time.Now(),
	}, nil
}

// Provisioned reports whether the plan already has a remote preapproval plan.
func (p *Plan) Provisioned() bool {
	return p.MPPreapprovalPlanID != nil && *p.MPPreapprovalPlanID != ""
}
