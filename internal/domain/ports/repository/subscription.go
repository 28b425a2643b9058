package repository

import (
	"context"
	"time"

	"inmo-marketplace/internal/domain/model"
)

type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	// FindCurrentByUser returns the most recent subscription for the user
	// whose status is authorized or pending, or ErrNotFound.
	FindCurrentByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
	FindByPreapprovalID(ctx context.Context, tx Tx, mpPreapprovalID string) (*model.Subscription, error)
	SetPreapprovalID(ctx context.Context, tx Tx, id, mpPreapprovalID string) error
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.SubscriptionStatus, periodEnd *time.Time) error
	// Delete exists only for rollback-on-gateway-failure immediately after
	// creation; reconciliation never deletes.
	Delete(ctx context.Context, tx Tx, id string) error
}
