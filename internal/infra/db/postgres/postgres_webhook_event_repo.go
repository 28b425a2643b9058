package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"inmo-marketplace/internal/domain"
	"inmo-marketplace/internal/domain/model"
	"inmo-marketplace/internal/domain/ports/repository"
)

var _ repository.WebhookEventRepository = (*webhookEventRepo)(nil)

type webhookEventRepo struct{ pool *pgxpool.Pool }

func NewWebhookEventRepo(pool *pgxpool.Pool) *webhookEventRepo {
	return &webhookEventRepo{pool: pool}
}

func (r *webhookEventRepo) Lookup(ctx context.Context, tx repository.Tx, topic, resourceID string) (*model.WebhookEvent, error) {
	const q = `
SELECT id, topic, resource_id, payload, received_at, processed
  FROM mp_webhook_events
 WHERE topic=$1 AND resource_id=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, topic, resourceID)
	if err != nil {
		return nil, err
	}
	return scanWebhookEvent(row)
}

// RecordOrTouch relies on the UNIQUE(topic, resource_id) constraint.
// Processed rows keep their first payload; unprocessed rows get the latest
// delivery's payload and timestamp.
func (r *webhookEventRepo) RecordOrTouch(ctx context.Context, tx repository.Tx, topic, resourceID string, payload []byte) error {
	const q = `
INSERT INTO mp_webhook_events (topic, resource_id, payload, received_at, processed)
VALUES ($1,$2,$3,NOW(),false)
ON CONFLICT (topic, resource_id) DO UPDATE SET
  payload     = CASE WHEN mp_webhook_events.processed THEN mp_webhook_events.payload ELSE EXCLUDED.payload END,
  received_at = CASE WHEN mp_webhook_events.processed THEN mp_webhook_events.received_at ELSE EXCLUDED.received_at END;`

	_, err := execSQL(ctx, r.pool, tx, q, topic, resourceID, payload)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *webhookEventRepo) MarkProcessed(ctx context.Context, tx repository.Tx, topic, resourceID string) error {
	const q = `UPDATE mp_webhook_events SET processed=true WHERE topic=$1 AND resource_id=$2;`
	_, err := execSQL(ctx, r.pool, tx, q, topic, resourceID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *webhookEventRepo) ListUnprocessedOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.WebhookEvent, error) {
	const q = `
SELECT id, topic, resource_id, payload, received_at, processed
  FROM mp_webhook_events
 WHERE NOT processed AND received_at < $1
 ORDER BY received_at ASC
 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.WebhookEvent
	for rows.Next() {
		e := &model.WebhookEvent{}
		if err := rows.Scan(&e.ID, &e.Topic, &e.ResourceID, &e.Payload, &e.ReceivedAt, &e.Processed); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanWebhookEvent(row pgx.Row) (*model.WebhookEvent, error) {
	e := &model.WebhookEvent{}
	if err := row.Scan(&e.ID, &e.Topic, &e.ResourceID, &e.Payload, &e.ReceivedAt, &e.Processed); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return e, nil
}
