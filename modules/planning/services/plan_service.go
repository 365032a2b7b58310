package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/planora-hq/planora/modules/planning/domain/aggregates/plan"
	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/eventbus"
	"github.com/planora-hq/planora/pkg/hierarchy"
)

type PlanService struct {
	repo       plan.Repository
	enforcer   *hierarchy.AccessEnforcer
	propagator *hierarchy.PermissionPropagator
	publisher  eventbus.EventBus
}

func NewPlanService(
	repo plan.Repository,
	enforcer *hierarchy.AccessEnforcer,
	propagator *hierarchy.PermissionPropagator,
	publisher eventbus.EventBus,
) *PlanService {
	return &PlanService{
		repo:       repo,
		enforcer:   enforcer,
		propagator: propagator,
		publisher:  publisher,
	}
}

func planRef(id uuid.UUID) hierarchy.EntityRef {
	return hierarchy.EntityRef{Kind: hierarchy.EntityPlan, ID: id}
}

func (s *PlanService) GetByID(ctx context.Context, actor hierarchy.Actor, id uuid.UUID) (plan.Plan, error) {
	var entity plan.Plan
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		if err := s.enforcer.Authorize(txCtx, actor, planRef(id), hierarchy.ActionView); err != nil {
			return err
		}
		found, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		entity = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// GetPaginated lists plans the actor is allowed to see. Inaccessible and
// confidential-to-others items are dropped, not errored.
func (s *PlanService) GetPaginated(ctx context.Context, actor hierarchy.Actor, params *plan.FindParams) ([]plan.Plan, error) {
	var visible []plan.Plan
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		entities, err := s.repo.GetPaginated(txCtx, params)
		if err != nil {
			return err
		}
		visible, err = s.filterVisible(txCtx, actor, entities)
		return err
	})
	if err != nil {
		return nil, err
	}
	return visible, nil
}

func (s *PlanService) Count(ctx context.Context, params *plan.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

func (s *PlanService) Create(ctx context.Context, data plan.Plan) (plan.Plan, error) {
	var created plan.Plan
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		entity, err := s.repo.Create(txCtx, data)
		if err != nil {
			return err
		}
		created = entity
		return s.propagator.OnWorkItemCreated(txCtx, planRef(entity.ID()))
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(plan.CreatedEvent{Result: created})
	return created, nil
}

func (s *PlanService) Update(ctx context.Context, actor hierarchy.Actor, data plan.Plan) (plan.Plan, error) {
	var (
		updated     plan.Plan
		tagsChanged bool
	)
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		if err := s.enforcer.Authorize(txCtx, actor, planRef(data.ID()), hierarchy.ActionEdit); err != nil {
			return err
		}
		existing, err := s.repo.GetByID(txCtx, data.ID())
		if err != nil {
			return err
		}
		tagsChanged = !sameNodeSet(existing.BusinessAreaIDs(), data.BusinessAreaIDs())

		entity, err := s.repo.Update(txCtx, data)
		if err != nil {
			return err
		}
		updated = entity

		if tagsChanged {
			return s.propagator.OnNodeTagsChanged(txCtx, planRef(entity.ID()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(plan.UpdatedEvent{Result: updated, TagsChanged: tagsChanged})
	return updated, nil
}

func (s *PlanService) Delete(ctx context.Context, actor hierarchy.Actor, id uuid.UUID) (plan.Plan, error) {
	var deleted plan.Plan
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		if err := s.enforcer.Authorize(txCtx, actor, planRef(id), hierarchy.ActionEdit); err != nil {
			return err
		}
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		deleted = entity
		// With the row gone the recompute resolves to nothing and just
		// clears the materialized grants.
		return s.propagator.RecomputeEntity(txCtx, planRef(id))
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(plan.DeletedEvent{Result: deleted})
	return deleted, nil
}

func (s *PlanService) filterVisible(ctx context.Context, actor hierarchy.Actor, entities []plan.Plan) ([]plan.Plan, error) {
	items := make([]hierarchy.WorkItem, 0, len(entities))
	for _, entity := range entities {
		items = append(items, entity.AsWorkItem())
	}
	kept, err := s.enforcer.FilterVisible(ctx, actor, items)
	if err != nil {
		return nil, err
	}
	keptIDs := hierarchy.NewNodeSet()
	for _, item := range kept {
		keptIDs.Add(item.Ref.ID)
	}
	visible := make([]plan.Plan, 0, len(kept))
	for _, entity := range entities {
		if keptIDs.Contains(entity.ID()) {
			visible = append(visible, entity)
		}
	}
	return visible, nil
}

// sameNodeSet compares tag sets ignoring order and duplicates.
func sameNodeSet(a, b []uuid.UUID) bool {
	setA, setB := hierarchy.NewNodeSet(a...), hierarchy.NewNodeSet(b...)
	if len(setA) != len(setB) {
		return false
	}
	for id := range setA {
		if !setB.Contains(id) {
			return false
		}
	}
	return true
}
