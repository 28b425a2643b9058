package repository

import (
	"context"
	"time"

	"inmo-marketplace/internal/domain/model"
)

// WebhookEventRepository is the append/dedupe ledger of inbound payment
// notifications. The UNIQUE(topic, resource_id) constraint backing
// RecordOrTouch is load-bearing for the at-least-once delivery contract.
type WebhookEventRepository interface {
	// Lookup returns the ledger row for (topic, resourceID) or ErrNotFound.
	Lookup(ctx context.Context, tx Tx, topic, resourceID string) (*model.WebhookEvent, error)
	// RecordOrTouch upserts on (topic, resourceID). On conflict it never
	// resets processed and refreshes payload/received_at only while the
	// event is unprocessed.
	RecordOrTouch(ctx context.Context, tx Tx, topic, resourceID string, payload []byte) error
	MarkProcessed(ctx context.Context, tx Tx, topic, resourceID string) error
	// ListUnprocessedOlderThan feeds the retry sweeper.
	ListUnprocessedOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.WebhookEvent, error)
}
