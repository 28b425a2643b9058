package repository

import (
	"context"
	"time"

	"inmo-marketplace/internal/domain/model"
)

type BoostRepository interface {
	Save(ctx context.Context, tx Tx, b *model.Boost) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Boost, error)
	// FindActiveByListing returns an active boost on the listing whose
	// window ends after `now`, or ErrNotFound.
	FindActiveByListing(ctx context.Context, tx Tx, listingID string, now time.Time) (*model.Boost, error)
	// Activate transitions a boost to active with the given window, but
	// only while it is still pending. Returns false when the row was
	// missing or already activated by a concurrent delivery.
	Activate(ctx context.Context, tx Tx, id string, startsAt, endsAt time.Time, mpPaymentID string) (bool, error)
	// Delete exists only for rollback-on-gateway-failure.
	Delete(ctx context.Context, tx Tx, id string) error
}

type BoostProductRepository interface {
	Save(ctx context.Context, tx Tx, p *model.BoostProduct) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.BoostProduct, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.BoostProduct, error)
}
