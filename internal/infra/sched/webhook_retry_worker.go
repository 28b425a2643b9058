package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"inmo-marketplace/internal/domain/ports/repository"
	"inmo-marketplace/internal/usecase"
)

// WebhookRetryWorker periodically re-runs reconciliation for ledger rows
// that never reached processed. This covers the window where the gateway
// was unreachable during delivery and MercadoPago's own redelivery has
// given up.
type WebhookRetryWorker struct {
	uc         usecase.WebhookUseCase
	events     repository.WebhookEventRepository
	interval   time.Duration // how often to sweep
	staleAfter time.Duration // how old an unprocessed row must be to retry
	log        *zerolog.Logger
}

func NewWebhookRetryWorker(uc usecase.WebhookUseCase, events repository.WebhookEventRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *WebhookRetryWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &WebhookRetryWorker{uc: uc, events: events, interval: interval, staleAfter: staleAfter, log: logger}
}

func (w *WebhookRetryWorker) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *WebhookRetryWorker) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	stale, err := w.events.ListUnprocessedOlderThan(ctx, repository.NoTX, cutoff, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("webhook-retry: list unprocessed failed")
		return
	}
	for _, ev := range stale {
		outcome, err := w.uc.Handle(ctx, ev.Topic, ev.ResourceID, ev.Payload)
		if err != nil {
			w.log.Error().Err(err).Str("topic", ev.Topic).Str("resource_id", ev.ResourceID).Msg("webhook-retry: handle failed")
			continue
		}
		w.log.Info().Str("topic", ev.Topic).Str("resource_id", ev.ResourceID).Str("outcome", string(outcome)).Msg("webhook-retry: replayed event")
	}
}
