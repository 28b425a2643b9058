package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"inmo-marketplace/internal/domain"
	"inmo-marketplace/internal/domain/model"
	"inmo-marketplace/internal/domain/ports/adapter"
	"inmo-marketplace/internal/domain/ports/repository"
	"inmo-marketplace/internal/infra/logging"
	"inmo-marketplace/internal/infra/metrics"
)

// Compile-time check
var _ BoostUseCase = (*boostUC)(nil)

// BoostCheckout is what the purchase endpoint returns to the client.
type BoostCheckout struct {
	BoostID          string
	InitPoint        string
	SandboxInitPoint string
}

type BoostUseCase interface {
	// Purchase creates a pending boost plus the remote checkout preference.
	Purchase(ctx context.Context, userID, payerEmail, listingID, productID string) (*BoostCheckout, error)
}

type boostUC struct {
	boosts   repository.BoostRepository
	products repository.BoostProductRepository
	listings repository.ListingRepository
	gateway  adapter.PaymentGateway
	now      func() time.Time
	log      *zerolog.Logger
}

func NewBoostUseCase(
	boosts repository.BoostRepository,
	products repository.BoostProductRepository,
	listings repository.ListingRepository,
	gateway adapter.PaymentGateway,
	logger *zerolog.Logger,
) *boostUC {
	return &boostUC{
		boosts:   boosts,
		products: products,
		listings: listings,
		gateway:  gateway,
		now:      time.Now,
		log:      logger,
	}
}

func (u *boostUC) Purchase(ctx context.Context, userID, payerEmail, listingID, productID string) (*BoostCheckout, error) {
	defer logging.TraceDuration(u.log, "BoostUC.Purchase")()

	listing, err := u.listings.FindByID(ctx, repository.NoTX, listingID)
	if err != nil {
		return nil, err
	}
	// Ownership presents as not-found, same as row-level security would.
	if listing.OwnerID != userID {
		return nil, domain.ErrNotFound
	}

	if _, err := u.boosts.FindActiveByListing(ctx, repository.NoTX, listingID, u.now()); err == nil {
		return nil, domain.ErrConflict
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	product, err := u.products.FindByID(ctx, repository.NoTX, productID)
	if err != nil {
		return nil, err
	}

	boost, err := model.NewBoost(uuid.NewString(), listingID, userID, product.ID)
	if err != nil {
		return nil, err
	}
	if err := u.boosts.Save(ctx, repository.NoTX, boost); err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%s - %s", product.Name, listing.Title)
	pref, err := u.gateway.CreateCheckoutPreference(ctx, boost.ID, title, product.PriceARS, payerEmail)
	if err != nil {
		if derr := u.boosts.Delete(ctx, repository.NoTX, boost.ID); derr != nil {
			u.log.Error().Err(derr).Str("boost_id", boost.ID).Msg("rollback of pending boost failed")
		}
		metrics.IncBoost("rolled_back")
		u.log.Error().Err(err).Str("listing_id", listingID).Msg("create checkout preference failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	metrics.IncBoost(string(boost.Status))
	u.log.Info().Str("boost_id", boost.ID).Str("listing_id", listingID).Str("product", product.Code).Msg("boost purchase created")
	return &BoostCheckout{
		BoostID:          boost.ID,
		InitPoint:        pref.InitPoint,
		SandboxInitPoint: pref.SandboxInitPoint,
	}, nil
}
