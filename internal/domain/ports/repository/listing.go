package repository

import (
	"context"

	"inmo-marketplace/internal/domain/model"
)

type ListingRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Listing, error)
	CountActiveByOwner(ctx context.Context, tx Tx, ownerID string) (int, error)
	SetActive(ctx context.Context, tx Tx, id string, active bool) error
}
