package usecase

import (
	"context"
	"errors"
	"fmt"

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
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type SubscriptionUseCase interface {
	// Subscribe creates a pending local subscription plus the remote
	// preapproval and returns the hosted checkout URL.
	Subscribe(ctx context.Context, userID, payerEmail, planID string) (*model.Subscription, string, error)
	// Current returns the user's authorized-or-pending subscription with
	// its plan, or ErrNotFound.
	Current(ctx context.Context, userID string) (*model.Subscription, *model.Plan, error)
	// CanPublish reports whether the user's entitlement allows activating
	// one more listing.
	CanPublish(ctx context.Context, userID string) (bool, error)
}

type subscriptionUC struct {
	plans    repository.PlanRepository
	subs     repository.SubscriptionRepository
	listings repository.ListingRepository
	gateway  adapter.PaymentGateway
	log      *zerolog.Logger
}

func NewSubscriptionUseCase(
	plans repository.PlanRepository,
	subs repository.SubscriptionRepository,
	listings repository.ListingRepository,
	gateway adapter.PaymentGateway,
	logger *zerolog.Logger,
) *subscriptionUC {
	return &subscriptionUC{plans: plans, subs: subs, listings: listings, gateway: gateway, log: logger}
}

func (u *subscriptionUC) Subscribe(ctx context.Context, userID, payerEmail, planID string) (*model.Subscription, string, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.Subscribe")()

	plan, err := u.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return nil, "", err
	}
	if !plan.Provisioned() {
		return nil, "", domain.ErrNotConfigured
	}

	// An authorized subscription blocks a second subscribe. A merely
	// pending one does not: the first checkout may have been abandoned
	// and the user gets to try again.
	existing, err := u.subs.FindCurrentByUser(ctx, repository.NoTX, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}
	if existing != nil && existing.Status == model.SubscriptionStatusAuthorized {
		return nil, "", domain.ErrConflict
	}

	sub, err := model.NewSubscription(uuid.NewString(), userID, plan.ID)
	if err != nil {
		return nil, "", err
	}
	if err := u.subs.Save(ctx, repository.NoTX, sub); err != nil {
		return nil, "", err
	}

	checkout, err := u.gateway.CreateSubscription(ctx, *plan.MPPreapprovalPlanID, payerEmail, sub.ID)
	if err != nil {
		// Compensate: the pending row must not survive a failed gateway call.
		if derr := u.subs.Delete(ctx, repository.NoTX, sub.ID); derr != nil {
			u.log.Error().Err(derr).Str("subscription_id", sub.ID).Msg("rollback of pending subscription failed")
		}
		metrics.IncSubscription("rolled_back")
		u.log.Error().Err(err).Str("plan_id", plan.ID).Msg("create preapproval failed")
		return nil, "", fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	if err := u.subs.SetPreapprovalID(ctx, repository.NoTX, sub.ID, checkout.PreapprovalID); err != nil {
		return nil, "", err
	}
	sub.MPPreapprovalID = &checkout.PreapprovalID

	metrics.IncSubscription(string(sub.Status))
	u.log.Info().Str("subscription_id", sub.ID).Str("plan", plan.Code).Msg("subscription created")
	return sub, checkout.InitPoint, nil
}

func (u *subscriptionUC) Current(ctx context.Context, userID string) (*model.Subscription, *model.Plan, error) {
	sub, err := u.subs.FindCurrentByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, nil, err
	}
	plan, err := u.plans.FindByID(ctx, repository.NoTX, sub.PlanID)
	if err != nil {
		return nil, nil, err
	}
	return sub, plan, nil
}

func (u *subscriptionUC) CanPublish(ctx context.Context, userID string) (bool, error) {
	sub, err := u.subs.FindCurrentByUser(ctx, repository.NoTX, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if sub.Status != model.SubscriptionStatusAuthorized {
		return false, nil
	}
	plan, err := u.plans.FindByID(ctx, repository.NoTX, sub.PlanID)
	if err != nil {
		return false, err
	}
	active, err := u.listings.CountActiveByOwner(ctx, repository.NoTX, userID)
	if err != nil {
		return false, err
	}
	return active < plan.ListingLimit, nil
}
