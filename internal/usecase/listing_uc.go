package usecase

import (
	"context"

	"inmo-marketplace/internal/domain"
	"inmo-marketplace/internal/domain/model"
	"inmo-marketplace/internal/domain/ports/repository"
)

// Compile-time check
var _ ListingUseCase = (*listingUC)(nil)

type ListingUseCase interface {
	Get(ctx context.Context, id string) (*model.Listing, error)
	// Toggle flips a listing's active flag; only the owner may do it, and
	// activating requires free entitlement on the owner's plan.
	Toggle(ctx context.Context, userID, listingID string) (*model.Listing, error)
}

type listingUC struct {
	listings repository.ListingRepository
	subs     SubscriptionUseCase
}

func NewListingUseCase(listings repository.ListingRepository, subs SubscriptionUseCase) *listingUC {
	return &listingUC{listings: listings, subs: subs}
}

func (u *listingUC) Get(ctx context.Context, id string) (*model.Listing, error) {
	return u.listings.FindByID(ctx, repository.NoTX, id)
}

func (u *listingUC) Toggle(ctx context.Context, userID, listingID string) (*model.Listing, error) {
	listing, err := u.listings.FindByID(ctx, repository.NoTX, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != userID {
		return nil, domain.ErrNotFound
	}

	if !listing.Active {
		ok, err := u.subs.CanPublish(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrConflict
		}
	}

	if err := u.listings.SetActive(ctx, repository.NoTX, listingID, !listing.Active); err != nil {
		return nil, err
	}
	listing.Active = !listing.Active
	return listing, nil
}
