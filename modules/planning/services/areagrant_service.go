package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/planora-hq/planora/modules/planning/domain/entities/areagrant"
	"github.com/planora-hq/planora/modules/planning/permissions"
	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/eventbus"
	"github.com/planora-hq/planora/pkg/hierarchy"
)

// AreaGrantService manages explicit delegations on business-area nodes.
// Admins and owners may grant anywhere; anyone else may delegate only
// within a branch they already hold edit authority over.
type AreaGrantService struct {
	repo       areagrant.Repository
	resolver   *hierarchy.PermissionResolver
	propagator *hierarchy.PermissionPropagator
	publisher  eventbus.EventBus
}

func NewAreaGrantService(
	repo areagrant.Repository,
	resolver *hierarchy.PermissionResolver,
	propagator *hierarchy.PermissionPropagator,
	publisher eventbus.EventBus,
) *AreaGrantService {
	return &AreaGrantService{
		repo:       repo,
		resolver:   resolver,
		propagator: propagator,
		publisher:  publisher,
	}
}

func (s *AreaGrantService) FindByUser(ctx context.Context, userID uint) ([]areagrant.AreaGrant, error) {
	return s.repo.FindByUser(ctx, userID, nil)
}

func (s *AreaGrantService) FindByNodes(ctx context.Context, nodeIDs []uuid.UUID) ([]areagrant.AreaGrant, error) {
	return s.repo.FindByNodes(ctx, nodeIDs)
}

func (s *AreaGrantService) Create(ctx context.Context, actor hierarchy.Actor, data areagrant.AreaGrant) error {
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		if !permissions.Allowed(actor.Role, permissions.GrantManage) {
			ok, err := s.resolver.HasAnyEditGrant(txCtx, actor.ID, actor.Role, []uuid.UUID{data.NodeID()})
			if err != nil {
				return err
			}
			if !ok {
				return forbiddenError(permissions.GrantManage, actor)
			}
		}
		if err := s.repo.Create(txCtx, data); err != nil {
			return err
		}
		return s.propagator.OnGrantCreated(txCtx, data.UserID(), data.NodeID())
	})
	if err != nil {
		return err
	}
	s.publisher.Publish(areagrant.CreatedEvent{Result: data})
	return nil
}

// Revoke removes the user's grants on the given nodes (all of them when
// nodeIDs is empty) and rebuilds the user's materialized rows from what
// remains.
func (s *AreaGrantService) Revoke(ctx context.Context, actor hierarchy.Actor, userID uint, role hierarchy.Role, nodeIDs []uuid.UUID) error {
	if !permissions.Allowed(actor.Role, permissions.GrantManage) {
		return forbiddenError(permissions.GrantManage, actor)
	}
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, userID, nodeIDs); err != nil {
			return err
		}
		return s.propagator.RecomputeUser(txCtx, userID, role)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish(areagrant.RevokedEvent{UserID: userID, NodeIDs: nodeIDs})
	return nil
}
