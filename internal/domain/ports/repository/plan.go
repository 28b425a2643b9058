package repository

import (
	"context"

	"inmo-marketplace/internal/domain/model"
)

type PlanRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Plan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Plan, error)
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Plan, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Plan, error)
	// SetPreapprovalPlanID backfills the remote id after admin provisioning.
	SetPreapprovalPlanID(ctx context.Context, tx Tx, planID, mpPlanID string) error
}
