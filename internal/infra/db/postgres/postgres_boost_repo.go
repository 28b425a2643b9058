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

var _ repository.BoostRepository = (*boostRepo)(nil)

type boostRepo struct{ pool *pgxpool.Pool }

func NewBoostRepo(pool *pgxpool.Pool) *boostRepo {
	return &boostRepo{pool: pool}
}

const boostColumns = `id, listing_id, user_id, boost_product_id, status, starts_at, ends_at, mp_payment_id, created_at`

func (r *boostRepo) Save(ctx context.Context, tx repository.Tx, b *model.Boost) error {
	const q = `
INSERT INTO boosts (id, listing_id, user_id, boost_product_id, status, starts_at, ends_at, mp_payment_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  status=$5, starts_at=$6, ends_at=$7, mp_payment_id=$8;`

	_, err := execSQL(ctx, r.pool, tx, q, b.ID, b.ListingID, b.UserID, b.BoostProductID, b.Status, b.StartsAt, b.EndsAt, b.MPPaymentID, b.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *boostRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Boost, error) {
	const q = `SELECT ` + boostColumns + ` FROM boosts WHERE id=$1;`
	return r.queryOne(ctx, tx, q, id)
}

func (r *boostRepo) FindActiveByListing(ctx context.Context, tx repository.Tx, listingID string, now time.Time) (*model.Boost, error) {
	const q = `
SELECT ` + boostColumns + `
  FROM boosts
 WHERE listing_id=$1 AND status='active' AND ends_at > $2
 ORDER BY ends_at DESC
 LIMIT 1;`
	return r.queryOne(ctx, tx, q, listingID, now)
}

// Activate is conditional on status='pending' so that two concurrent
// deliveries of the same payment event cannot compute two different
// activation windows.
func (r *boostRepo) Activate(ctx context.Context, tx repository.Tx, id string, startsAt, endsAt time.Time, mpPaymentID string) (bool, error) {
	const q = `
UPDATE boosts
   SET status='active', starts_at=$2, ends_at=$3, mp_payment_id=$4
 WHERE id=$1 AND status='pending';`
	tag, err := execSQL(ctx, r.pool, tx, q, id, startsAt, endsAt, mpPaymentID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return tag.RowsAffected() > 0, nil
}

func (r *boostRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM boosts WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *boostRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...any) (*model.Boost, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}

	b := &model.Boost{}
	var status string
	if err := row.Scan(&b.ID, &b.ListingID, &b.UserID, &b.BoostProductID, &status, &b.StartsAt, &b.EndsAt, &b.MPPaymentID, &b.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	b.Status = model.BoostStatus(status)
	return b, nil
}
