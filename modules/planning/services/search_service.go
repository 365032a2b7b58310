package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/planora-hq/planora/modules/planning/domain/aggregates/communication"
	"github.com/planora-hq/planora/modules/planning/domain/aggregates/plan"
	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/hierarchy"
)

// SearchFilter is a user-supplied query over work items. Node filters name
// arbitrary tree nodes; the service expands each into its full reachable
// set (ancestors and descendants) before hitting the store, so filtering
// by a mid-level unit matches items tagged anywhere along its chain.
type SearchFilter struct {
	Q               string
	BusinessAreaIDs []uuid.UUID
	LocationIDs     []uuid.UUID
	Limit           int
	Offset          int
}

type SearchResult struct {
	Plans          []plan.Plan
	Communications []communication.Communication
}

type SearchService struct {
	plans          plan.Repository
	communications communication.Repository
	areas          *hierarchy.TreeIndex
	locations      *hierarchy.TreeIndex
	enforcer       *hierarchy.AccessEnforcer
}

func NewSearchService(
	plans plan.Repository,
	communications communication.Repository,
	areas *hierarchy.TreeIndex,
	locations *hierarchy.TreeIndex,
	enforcer *hierarchy.AccessEnforcer,
) *SearchService {
	return &SearchService{
		plans:          plans,
		communications: communications,
		areas:          areas,
		locations:      locations,
		enforcer:       enforcer,
	}
}

// Search runs the expanded filter against both work-item stores and drops
// what the actor cannot see. An empty node filter means no node filter,
// never "all nodes".
func (s *SearchService) Search(ctx context.Context, actor hierarchy.Actor, filter SearchFilter) (SearchResult, error) {
	var result SearchResult
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		areaIDs, err := s.expand(txCtx, s.areas, filter.BusinessAreaIDs)
		if err != nil {
			return err
		}
		locationIDs, err := s.expand(txCtx, s.locations, filter.LocationIDs)
		if err != nil {
			return err
		}

		plans, err := s.plans.GetPaginated(txCtx, &plan.FindParams{
			Q:           filter.Q,
			NodeIDs:     areaIDs,
			LocationIDs: locationIDs,
			Limit:       filter.Limit,
			Offset:      filter.Offset,
		})
		if err != nil {
			return err
		}
		result.Plans, err = s.visiblePlans(txCtx, actor, plans)
		if err != nil {
			return err
		}

		// Communications carry no location tags; a location filter
		// scopes the search to plans.
		if len(filter.LocationIDs) > 0 {
			return nil
		}
		communications, err := s.communications.GetPaginated(txCtx, &communication.FindParams{
			Q:       filter.Q,
			NodeIDs: areaIDs,
			Limit:   filter.Limit,
			Offset:  filter.Offset,
		})
		if err != nil {
			return err
		}
		result.Communications, err = s.visibleCommunications(txCtx, actor, communications)
		return err
	})
	if err != nil {
		return SearchResult{}, err
	}
	return result, nil
}

func (s *SearchService) expand(ctx context.Context, tree *hierarchy.TreeIndex, nodeIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(nodeIDs) == 0 {
		return nil, nil
	}
	reachable, err := tree.AllLevels(ctx, nodeIDs)
	if err != nil {
		return nil, err
	}
	return reachable.Slice(), nil
}

func (s *SearchService) visiblePlans(ctx context.Context, actor hierarchy.Actor, entities []plan.Plan) ([]plan.Plan, error) {
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

func (s *SearchService) visibleCommunications(ctx context.Context, actor hierarchy.Actor, entities []communication.Communication) ([]communication.Communication, error) {
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
	visible := make([]communication.Communication, 0, len(kept))
	for _, entity := range entities {
		if keptIDs.Contains(entity.ID()) {
			visible = append(visible, entity)
		}
	}
	return visible, nil
}
