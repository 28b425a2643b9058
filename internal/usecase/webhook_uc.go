package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"inmo-marketplace/internal/domain"
	"inmo-marketplace/internal/domain/model"
	"inmo-marketplace/internal/domain/ports/adapter"
	"inmo-marketplace/internal/domain/ports/repository"
	"inmo-marketplace/internal/infra/logging"
	"inmo-marketplace/internal/infra/metrics"
)

// WebhookOutcome makes the handler's swallow-and-let-MP-redeliver contract
// explicit instead of burying it in logs.
type WebhookOutcome string

const (
	// OutcomeProcessed: reconciliation ran and the ledger row is processed.
	OutcomeProcessed WebhookOutcome = "processed"
	// OutcomeDuplicate: the ledger already holds this event as processed.
	OutcomeDuplicate WebhookOutcome = "duplicate"
	// OutcomeSkipped: the event matched nothing we track (unknown topic,
	// foreign preapproval id, non-approved payment). Ledger is processed.
	OutcomeSkipped WebhookOutcome = "skipped"
	// OutcomeDeferred: reconciliation failed; the ledger row stays
	// unprocessed so MP's redelivery (and the retry sweeper) try again.
	OutcomeDeferred WebhookOutcome = "deferred"
)

// Compile-time check
var _ WebhookUseCase = (*webhookUC)(nil)

type WebhookUseCase interface {
	// Handle runs verify-free reconciliation for one normalized event.
	// The returned error is non-nil only when the ledger itself is
	// unreachable; reconciliation failures surface as OutcomeDeferred.
	Handle(ctx context.Context, topic, resourceID string, payload []byte) (WebhookOutcome, error)
}

type webhookUC struct {
	events   repository.WebhookEventRepository
	subs     repository.SubscriptionRepository
	boosts   repository.BoostRepository
	products repository.BoostProductRepository
	gateway  adapter.PaymentGateway
	now      func() time.Time
	log      *zerolog.Logger
}

func NewWebhookUseCase(
	events repository.WebhookEventRepository,
	subs repository.SubscriptionRepository,
	boosts repository.BoostRepository,
	products repository.BoostProductRepository,
	gateway adapter.PaymentGateway,
	logger *zerolog.Logger,
) *webhookUC {
	return &webhookUC{
		events:   events,
		subs:     subs,
		boosts:   boosts,
		products: products,
		gateway:  gateway,
		now:      time.Now,
		log:      logger,
	}
}

func (u *webhookUC) Handle(ctx context.Context, topic, resourceID string, payload []byte) (WebhookOutcome, error) {
	defer logging.TraceDuration(u.log, "WebhookUC.Handle")()

	if existing, err := u.events.Lookup(ctx, repository.NoTX, topic, resourceID); err == nil && existing.Processed {
		metrics.IncWebhookEvent(topic, string(OutcomeDuplicate))
		return OutcomeDuplicate, nil
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	if err := u.events.RecordOrTouch(ctx, repository.NoTX, topic, resourceID, payload); err != nil {
		return "", err
	}

	outcome, rerr := u.reconcile(ctx, topic, resourceID)
	if rerr != nil {
		// Leave the ledger row unprocessed: MP retries the notification
		// and reconciliation runs again. The caller still answers 200.
		u.log.Error().Err(rerr).Str("topic", topic).Str("resource_id", resourceID).Msg("reconciliation failed, deferring")
		metrics.IncWebhookEvent(topic, string(OutcomeDeferred))
		return OutcomeDeferred, nil
	}

	if err := u.events.MarkProcessed(ctx, repository.NoTX, topic, resourceID); err != nil {
		u.log.Error().Err(err).Str("topic", topic).Str("resource_id", resourceID).Msg("mark processed failed, deferring")
		metrics.IncWebhookEvent(topic, string(OutcomeDeferred))
		return OutcomeDeferred, nil
	}

	metrics.IncWebhookEvent(topic, string(outcome))
	return outcome, nil
}

func (u *webhookUC) reconcile(ctx context.Context, topic, resourceID string) (WebhookOutcome, error) {
	switch topic {
	case model.TopicSubscriptionPreapproval, model.TopicSubscriptionAuthPayment:
		return u.reconcileSubscription(ctx, resourceID)
	case model.TopicPayment:
		return u.reconcilePayment(ctx, resourceID)
	default:
		u.log.Debug().Str("topic", topic).Msg("unknown webhook topic, ignoring")
		return OutcomeSkipped, nil
	}
}

// reconcileSubscription re-fetches the authoritative remote status and
// applies the deterministic mapping, so replays converge on the same row
// state.
func (u *webhookUC) reconcileSubscription(ctx context.Context, preapprovalID string) (WebhookOutcome, error) {
	state, err := u.gateway.FetchSubscriptionStatus(ctx, preapprovalID)
	if err != nil {
		return "", err
	}
	status := model.MapMPSubscriptionStatus(state.Status)

	sub, err := u.subs.FindByPreapprovalID(ctx, repository.NoTX, preapprovalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Not ours (or deleted). Events for foreign preapprovals are
			// expected under a shared MP account.
			u.log.Info().Str("preapproval_id", preapprovalID).Msg("no local subscription for preapproval, ignoring")
			return OutcomeSkipped, nil
		}
		return "", err
	}

	if err := u.subs.UpdateStatus(ctx, repository.NoTX, sub.ID, status, state.NextPaymentDate); err != nil {
		return "", err
	}
	metrics.IncSubscription(string(status))
	u.log.Info().Str("subscription_id", sub.ID).Str("status", string(status)).Msg("subscription reconciled")
	return OutcomeProcessed, nil
}

func (u *webhookUC) reconcilePayment(ctx context.Context, paymentID string) (WebhookOutcome, error) {
	payment, err := u.gateway.FetchPaymentStatus(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if payment.Status != "approved" {
		return OutcomeSkipped, nil
	}
	boostID := payment.ExternalReference
	if boostID == "" {
		return OutcomeSkipped, nil
	}

	boost, err := u.boosts.FindByID(ctx, repository.NoTX, boostID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			u.log.Info().Str("boost_id", boostID).Msg("payment references unknown boost, ignoring")
			return OutcomeSkipped, nil
		}
		return "", err
	}
	if boost.Status != model.BoostStatusPending {
		return OutcomeSkipped, nil
	}

	hours := model.DefaultBoostDurationHours
	if product, err := u.products.FindByID(ctx, repository.NoTX, boost.BoostProductID); err == nil {
		hours = product.DurationHours
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	startsAt := u.now()
	endsAt := startsAt.Add(time.Duration(hours) * time.Hour)
	activated, err := u.boosts.Activate(ctx, repository.NoTX, boost.ID, startsAt, endsAt, paymentID)
	if err != nil {
		return "", err
	}
	if !activated {
		// A concurrent delivery won the conditional update.
		return OutcomeSkipped, nil
	}

	metrics.IncBoost(string(model.BoostStatusActive))
	u.log.Info().Str("boost_id", boost.ID).Time("ends_at", endsAt).Msg("boost activated")
	return OutcomeProcessed, nil
}
