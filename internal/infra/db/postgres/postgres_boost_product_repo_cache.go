package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inmo-marketplace/internal/domain/model"
	"inmo-marketplace/internal/domain/ports/repository"
	"inmo-marketplace/internal/infra/metrics"
	red "inmo-marketplace/internal/infra/redis"
)

var _ repository.BoostProductRepository = (*boostProductRepoCacheDecorator)(nil)

type boostProductRepoCacheDecorator struct {
	inner repository.BoostProductRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewBoostProductRepoCacheDecorator(inner repository.BoostProductRepository, cache red.RedisClient, ttl time.Duration) repository.BoostProductRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &boostProductRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *boostProductRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.BoostProduct, error) {
	key := fmt.Sprintf("boost_product:%s", id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var p model.BoostProduct
		if json.Unmarshal([]byte(val), &p) == nil {
			metrics.IncCacheRequest("boost_product", "hit")
			return &p, nil
		}
		_ = d.cache.Del(ctx, key)
	}

	metrics.IncCacheRequest("boost_product", "miss")
	p, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if p != nil {
		bytes, _ := json.Marshal(p)
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return p, nil
}

func (d *boostProductRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.BoostProduct, error) {
	key := "boost_products:all"
	if val, err := d.cache.Get(ctx, key); err == nil {
		var ps []*model.BoostProduct
		if json.Unmarshal([]byte(val), &ps) == nil {
			metrics.IncCacheRequest("boost_product_list", "hit")
			return ps, nil
		}
		_ = d.cache.Del(ctx, key)
	}

	metrics.IncCacheRequest("boost_product_list", "miss")
	ps, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(ps) > 0 {
		bytes, _ := json.Marshal(ps)
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return ps, nil
}

func (d *boostProductRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.BoostProduct) error {
	_ = d.cache.Del(ctx, fmt.Sprintf("boost_product:%s", p.ID), "boost_products:all")
	return d.inner.Save(ctx, tx, p)
}
