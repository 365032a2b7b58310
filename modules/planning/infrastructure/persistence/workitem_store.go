package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/hierarchy"
	"github.com/planora-hq/planora/pkg/repo"
)

const (
	workItemPlanQuery = `
        SELECT p.id, p.business_area_ids, p.owner_ids, p.team_ids, p.confidential
        FROM plans p`

	workItemCommunicationQuery = `
        SELECT c.id, c.business_area_ids, c.owner_ids, c.team_ids, c.confidential
        FROM communications c`
)

// PgWorkItemStore projects plans and communications into the engine's
// uniform work-item view. Read-only; the feature repositories own writes.
type PgWorkItemStore struct{}

func NewWorkItemStore() *PgWorkItemStore {
	return &PgWorkItemStore{}
}

func workItemQuery(kind hierarchy.EntityKind) (string, error) {
	switch kind {
	case hierarchy.EntityPlan:
		return workItemPlanQuery, nil
	case hierarchy.EntityCommunication:
		return workItemCommunicationQuery, nil
	}
	return "", errors.Errorf("unknown entity kind %q", kind)
}

func scanWorkItems(ctx context.Context, kind hierarchy.EntityKind, query string, args ...interface{}) ([]hierarchy.WorkItem, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query work items")
	}
	defer rows.Close()

	var out []hierarchy.WorkItem
	for rows.Next() {
		var (
			id           uuid.UUID
			nodeIDs      []uuid.UUID
			ownerIDs     []int64
			teamIDs      []int64
			confidential bool
		)
		if err := rows.Scan(&id, &nodeIDs, &ownerIDs, &teamIDs, &confidential); err != nil {
			return nil, errors.Wrap(err, "scan work item")
		}
		out = append(out, hierarchy.WorkItem{
			Ref:          hierarchy.EntityRef{Kind: kind, ID: id},
			NodeIDs:      nodeIDs,
			OwnerIDs:     toUintSlice(ownerIDs),
			TeamIDs:      toUintSlice(teamIDs),
			Confidential: confidential,
		})
	}
	return out, rows.Err()
}

func (s *PgWorkItemStore) GetWorkItem(ctx context.Context, ref hierarchy.EntityRef) (hierarchy.WorkItem, error) {
	base, err := workItemQuery(ref.Kind)
	if err != nil {
		return hierarchy.WorkItem{}, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return hierarchy.WorkItem{}, err
	}

	alias := "p"
	if ref.Kind == hierarchy.EntityCommunication {
		alias = "c"
	}
	query := repo.Join(base, "WHERE "+alias+".tenant_id = $1 AND "+alias+".id = $2")
	items, err := scanWorkItems(ctx, ref.Kind, query, tenantID, ref.ID)
	if err != nil {
		return hierarchy.WorkItem{}, err
	}
	if len(items) == 0 {
		return hierarchy.WorkItem{}, hierarchy.ErrWorkItemNotFound
	}
	return items[0], nil
}

func (s *PgWorkItemStore) ListWorkItems(ctx context.Context, kind hierarchy.EntityKind) ([]hierarchy.WorkItem, error) {
	base, err := workItemQuery(kind)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	alias := "p"
	if kind == hierarchy.EntityCommunication {
		alias = "c"
	}
	query := repo.Join(base, "WHERE "+alias+".tenant_id = $1")
	return scanWorkItems(ctx, kind, query, tenantID)
}
