package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"inmo-marketplace/internal/domain/model"
	"inmo-marketplace/internal/domain/ports/adapter"
	"inmo-marketplace/internal/domain/ports/repository"
)

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

// ProvisionResult reports the outcome of provisioning one plan with the
// payment provider. Partial failure is reported per item, never aggregated.
type ProvisionResult struct {
	Code   string `json:"code"`
	Status string `json:"status"` // already_configured | created | error
	MPID   string `json:"mp_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

type PlanUseCase interface {
	List(ctx context.Context) ([]*model.Plan, error)
	// Provision creates remote preapproval plans for every local plan
	// still lacking one and backfills the remote ids.
	Provision(ctx context.Context) ([]ProvisionResult, error)
}

type planUC struct {
	plans   repository.PlanRepository
	gateway adapter.PaymentGateway
	log     *zerolog.Logger
}

func NewPlanUseCase(plans repository.PlanRepository, gateway adapter.PaymentGateway, logger *zerolog.Logger) *planUC {
	return &planUC{plans: plans, gateway: gateway, log: logger}
}

func (u *planUC) List(ctx context.Context) ([]*model.Plan, error) {
	return u.plans.ListAll(ctx, repository.NoTX)
}

func (u *planUC) Provision(ctx context.Context) ([]ProvisionResult, error) {
	plans, err := u.plans.ListAll(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}

	results := make([]ProvisionResult, 0, len(plans))
	for _, plan := range plans {
		if plan.Provisioned() {
			results = append(results, ProvisionResult{Code: plan.Code, Status: "already_configured", MPID: *plan.MPPreapprovalPlanID})
			continue
		}

		remote, err := u.gateway.CreateRecurringPlan(ctx, plan.Code, plan.Name, plan.PriceARS)
		if err != nil {
			u.log.Error().Err(err).Str("plan", plan.Code).Msg("provisioning plan failed")
			results = append(results, ProvisionResult{Code: plan.Code, Status: "error", Error: err.Error()})
			continue
		}
		if err := u.plans.SetPreapprovalPlanID(ctx, repository.NoTX, plan.ID, remote.ID); err != nil {
			results = append(results, ProvisionResult{Code: plan.Code, Status: "error", Error: err.Error()})
			continue
		}

		u.log.Info().Str("plan", plan.Code).Str("mp_plan_id", remote.ID).Msg("plan provisioned")
		results = append(results, ProvisionResult{Code: plan.Code, Status: "created", MPID: remote.ID})
	}
	return results, nil
}
