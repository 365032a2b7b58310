package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/planora-hq/planora/modules/core/domain/entities/tenant"
	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/eventbus"
)

// TenantService manages the tenants themselves and therefore runs
// outside the tenant scoping the other services live under.
type TenantService struct {
	repo      tenant.Repository
	publisher eventbus.EventBus
}

func NewTenantService(repo tenant.Repository, publisher eventbus.EventBus) *TenantService {
	return &TenantService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TenantService) List(ctx context.Context) ([]*tenant.Tenant, error) {
	return s.repo.List(ctx)
}

func (s *TenantService) Create(ctx context.Context, data *tenant.Tenant) (*tenant.Tenant, error) {
	var created *tenant.Tenant
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		entity, err := s.repo.Create(txCtx, data)
		if err != nil {
			return err
		}
		created = entity
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(tenant.CreatedEvent{Result: created})
	return created, nil
}

func (s *TenantService) Update(ctx context.Context, data *tenant.Tenant) (*tenant.Tenant, error) {
	var updated *tenant.Tenant
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		entity, err := s.repo.Update(txCtx, data)
		if err != nil {
			return err
		}
		updated = entity
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(tenant.UpdatedEvent{Result: updated})
	return updated, nil
}
