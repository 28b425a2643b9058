package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"inmo-marketplace/internal/domain"
	"inmo-marketplace/internal/domain/model"
	"inmo-marketplace/internal/domain/ports/repository"
)

var _ repository.BoostProductRepository = (*boostProductRepo)(nil)

type boostProductRepo struct{ pool *pgxpool.Pool }

func NewBoostProductRepo(pool *pgxpool.Pool) *boostProductRepo {
	return &boostProductRepo{pool: pool}
}

func (r *boostProductRepo) Save(ctx context.Context, tx repository.Tx, p *model.BoostProduct) error {
	const q = `
INSERT INTO boost_products (id, code, name, price_ars, duration_hours)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET
  code=$2, name=$3, price_ars=$4, duration_hours=$5;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Code, p.Name, p.PriceARS, p.DurationHours)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrConflict
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *boostProductRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.BoostProduct, error) {
	const q = `SELECT id, code, name, price_ars, duration_hours FROM boost_products WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	p := &model.BoostProduct{}
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.PriceARS, &p.DurationHours); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *boostProductRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.BoostProduct, error) {
	const q = `SELECT id, code, name, price_ars, duration_hours FROM boost_products ORDER BY price_ars ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.BoostProduct
	for rows.Next() {
		p := &model.BoostProduct{}
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.PriceARS, &p.DurationHours); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
