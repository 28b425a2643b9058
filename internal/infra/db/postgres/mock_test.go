//go:build !integration

package postgres

import (
	"context"
	"time"

	"inmo-marketplace/internal/domain/model"
	"inmo-marketplace/internal/domain/ports/repository"
	red "inmo-marketplace/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerPlanRepo mocks the database repository that the Plan decorator wraps.
type mockInnerPlanRepo struct {
	SaveFunc                 func(ctx context.Context, tx repository.Tx, p *model.Plan) error
	FindByIDFunc             func(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error)
	FindByCodeFunc           func(ctx context.Context, tx repository.Tx, code string) (*model.Plan, error)
	ListAllFunc              func(ctx context.Context, tx repository.Tx) ([]*model.Plan, error)
	SetPreapprovalPlanIDFunc func(ctx context.Context, tx repository.Tx, planID, mpPlanID string) error
}

func (m *mockInnerPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	return m.SaveFunc(ctx, tx, p)
}
func (m *mockInnerPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerPlanRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Plan, error) {
	return m.FindByCodeFunc(ctx, tx, code)
}
func (m *mockInnerPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	return m.ListAllFunc(ctx, tx)
}
func (m *mockInnerPlanRepo) SetPreapprovalPlanID(ctx context.Context, tx repository.Tx, planID, mpPlanID string) error {
	return m.SetPreapprovalPlanIDFunc(ctx, tx, planID, mpPlanID)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc  func(ctx context.Context, key string) (string, error)
	SetFunc  func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc  func(ctx context.Context, keys ...string) error
	PingFunc func(ctx context.Context) error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error {
	if m.PingFunc == nil {
		return nil
	}
	return m.PingFunc(ctx)
}
func (m *mockRedisClient) Close() error { return nil }
