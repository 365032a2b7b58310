package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/planora-hq/planora/modules/planning/domain/entities/areagrant"
	"github.com/planora-hq/planora/modules/planning/domain/entities/orgunit"
	"github.com/planora-hq/planora/modules/planning/permissions"
	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/eventbus"
	"github.com/planora-hq/planora/pkg/hierarchy"
)

// OrgUnitService manages the organizational forests. Structural changes to
// the business-area dimension feed the permission propagator because the
// materialized grants depend on ancestry.
type OrgUnitService struct {
	repo       orgunit.Repository
	grants     areagrant.Repository
	trees      hierarchy.TreeStore
	items      hierarchy.WorkItemStore
	propagator *hierarchy.PermissionPropagator
	publisher  eventbus.EventBus
}

func NewOrgUnitService(
	repo orgunit.Repository,
	grants areagrant.Repository,
	trees hierarchy.TreeStore,
	items hierarchy.WorkItemStore,
	propagator *hierarchy.PermissionPropagator,
	publisher eventbus.EventBus,
) *OrgUnitService {
	return &OrgUnitService{
		repo:       repo,
		grants:     grants,
		trees:      trees,
		items:      items,
		propagator: propagator,
		publisher:  publisher,
	}
}

func (s *OrgUnitService) GetByID(ctx context.Context, id uuid.UUID) (orgunit.OrgUnit, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *OrgUnitService) GetAll(ctx context.Context, dimension hierarchy.Dimension) ([]orgunit.OrgUnit, error) {
	return s.repo.GetAll(ctx, dimension)
}

func (s *OrgUnitService) GetChildren(ctx context.Context, parentID uuid.UUID) ([]orgunit.OrgUnit, error) {
	return s.repo.GetChildren(ctx, parentID)
}

func (s *OrgUnitService) GetRoots(ctx context.Context, dimension hierarchy.Dimension) ([]orgunit.OrgUnit, error) {
	return s.repo.GetRoots(ctx, dimension)
}

// Create inserts a new unit and, for the business-area dimension, plants
// the creator's implicit edit grant on it.
func (s *OrgUnitService) Create(ctx context.Context, actor hierarchy.Actor, data orgunit.OrgUnit) (orgunit.OrgUnit, error) {
	if !permissions.Allowed(actor.Role, permissions.TreeManage) {
		return orgunit.OrgUnit{}, forbiddenError(permissions.TreeManage, actor)
	}
	var (
		created      orgunit.OrgUnit
		creatorGrant hierarchy.Grant
	)
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		if data.ParentID() != nil {
			parent, err := s.repo.GetByID(txCtx, *data.ParentID())
			if err != nil {
				return err
			}
			if parent.Dimension() != data.Dimension() {
				return errors.Errorf("parent %s belongs to dimension %q", parent.ID(), parent.Dimension())
			}
		}
		entity, err := s.repo.Create(txCtx, data)
		if err != nil {
			return err
		}
		created = entity

		if entity.Dimension() == hierarchy.DimensionBusinessArea {
			grant, err := s.propagator.OnNodeCreated(txCtx, actor.ID, entity.ID())
			if err != nil {
				return err
			}
			creatorGrant = grant
		}
		return nil
	})
	if err != nil {
		return orgunit.OrgUnit{}, err
	}
	s.publisher.Publish(orgunit.CreatedEvent{Result: created, CreatorGrant: creatorGrant})
	return created, nil
}

func (s *OrgUnitService) Rename(ctx context.Context, actor hierarchy.Actor, id uuid.UUID, name string) (orgunit.OrgUnit, error) {
	if !permissions.Allowed(actor.Role, permissions.TreeManage) {
		return orgunit.OrgUnit{}, forbiddenError(permissions.TreeManage, actor)
	}
	var renamed orgunit.OrgUnit
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		unit, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		renamed, err = s.repo.Update(txCtx, unit.Rename(name))
		return err
	})
	if err != nil {
		return orgunit.OrgUnit{}, err
	}
	return renamed, nil
}

// Reparent moves a unit (and implicitly its subtree) under a new parent.
// Ancestor chains change for every node in the subtree, so every work item
// tagged inside it is recomputed.
func (s *OrgUnitService) Reparent(ctx context.Context, actor hierarchy.Actor, id uuid.UUID, newParentID *uuid.UUID) (orgunit.OrgUnit, error) {
	if !permissions.Allowed(actor.Role, permissions.TreeManage) {
		return orgunit.OrgUnit{}, forbiddenError(permissions.TreeManage, actor)
	}
	var (
		moved        orgunit.OrgUnit
		previousPath *uuid.UUID
	)
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		unit, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		previousPath = unit.ParentID()

		forest, err := s.forest(txCtx, unit.Dimension())
		if err != nil {
			return err
		}
		subtree := forest.Descendants([]uuid.UUID{id})
		if newParentID != nil {
			if subtree.Contains(*newParentID) {
				return errors.Errorf("reparenting %s under %s would form a cycle", id, *newParentID)
			}
			parent, err := s.repo.GetByID(txCtx, *newParentID)
			if err != nil {
				return err
			}
			if parent.Dimension() != unit.Dimension() {
				return errors.Errorf("parent %s belongs to dimension %q", parent.ID(), parent.Dimension())
			}
		}

		moved, err = s.repo.Update(txCtx, unit.Reparent(newParentID))
		if err != nil {
			return err
		}
		if unit.Dimension() == hierarchy.DimensionBusinessArea {
			return s.recomputeTagged(txCtx, subtree)
		}
		return nil
	})
	if err != nil {
		return orgunit.OrgUnit{}, err
	}
	s.publisher.Publish(orgunit.ReparentedEvent{Result: moved, PreviousPath: previousPath})
	return moved, nil
}

// Delete removes a unit together with its descendant closure. Grants on
// the deleted nodes go with them; affected work items keep their tags and
// are recomputed against the shrunken forest.
func (s *OrgUnitService) Delete(ctx context.Context, actor hierarchy.Actor, id uuid.UUID) (orgunit.OrgUnit, error) {
	if !permissions.Allowed(actor.Role, permissions.TreeManage) {
		return orgunit.OrgUnit{}, forbiddenError(permissions.TreeManage, actor)
	}
	var deleted orgunit.OrgUnit
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		unit, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		deleted = unit

		forest, err := s.forest(txCtx, unit.Dimension())
		if err != nil {
			return err
		}
		subtree := forest.Descendants([]uuid.UUID{id})

		if err := s.grants.DeleteByNodes(txCtx, subtree.Slice()); err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, subtree.Slice()); err != nil {
			return err
		}
		if unit.Dimension() == hierarchy.DimensionBusinessArea {
			return s.recomputeTagged(txCtx, subtree)
		}
		return nil
	})
	if err != nil {
		return orgunit.OrgUnit{}, err
	}
	s.publisher.Publish(orgunit.DeletedEvent{Result: deleted})
	return deleted, nil
}

func (s *OrgUnitService) forest(ctx context.Context, dimension hierarchy.Dimension) (*hierarchy.Forest, error) {
	nodes, err := s.trees.GetNodes(ctx, dimension)
	if err != nil {
		return nil, err
	}
	return hierarchy.NewForest(nodes), nil
}

// recomputeTagged rebuilds the materialized grants of every work item
// tagged with at least one node of the given set.
func (s *OrgUnitService) recomputeTagged(ctx context.Context, nodes hierarchy.NodeSet) error {
	for _, kind := range []hierarchy.EntityKind{hierarchy.EntityPlan, hierarchy.EntityCommunication} {
		items, err := s.items.ListWorkItems(ctx, kind)
		if err != nil {
			return err
		}
		for _, item := range items {
			if !touchesAny(nodes, item.NodeIDs) {
				continue
			}
			if err := s.propagator.RecomputeEntity(ctx, item.Ref); err != nil {
				return err
			}
		}
	}
	return nil
}

func touchesAny(set hierarchy.NodeSet, ids []uuid.UUID) bool {
	for _, id := range ids {
		if set.Contains(id) {
			return true
		}
	}
	return false
}
