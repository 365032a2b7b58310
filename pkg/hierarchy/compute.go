package hierarchy

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TenantSnapshot is a point-in-time copy of everything the materialized
// tables derive from. ComputeGrants over a snapshot is the correctness
// oracle the incremental triggers are measured against.
type TenantSnapshot struct {
	Nodes  []Node
	Grants []Grant
	Items  []WorkItem
	Roles  map[uint]Role
}

// ComputeGrants recomputes the full materialized table for one entity kind
// from scratch. Pure: no I/O, no ordering dependence. Users whose role
// bypasses the hierarchy get no rows; the enforcer special-cases them.
func ComputeGrants(snap TenantSnapshot, kind EntityKind) []MaterializedGrant {
	forest := NewForest(snap.Nodes)

	grantsByNode := make(map[uuid.UUID][]Grant, len(snap.Grants))
	for _, g := range snap.Grants {
		grantsByNode[g.NodeID] = append(grantsByNode[g.NodeID], g)
	}

	var rows []MaterializedGrant
	for _, item := range snap.Items {
		if item.Ref.Kind != kind || len(item.NodeIDs) == 0 {
			continue
		}
		closure := forest.Ancestors(item.NodeIDs)

		byUser := map[uint]PermissionLevel{}
		for nodeID := range closure {
			for _, g := range grantsByNode[nodeID] {
				byUser[g.UserID] = byUser[g.UserID].Max(g.Permission)
			}
		}
		for userID, level := range byUser {
			if level == PermissionNone {
				continue
			}
			if snap.Roles[userID].BypassesHierarchy() {
				continue
			}
			rows = append(rows, MaterializedGrant{
				UserID:     userID,
				EntityID:   item.Ref.ID,
				Permission: level,
			})
		}
	}
	return rows
}

// Reconciler compares the live materialized tables against a from-scratch
// recomputation and corrects every divergence. Rows the resolver can no
// longer justify are logged as inconsistent state and removed; fresh
// resolution always wins over the cached row.
type Reconciler struct {
	tree         TreeStore
	dimension    Dimension
	grants       GrantStore
	items        WorkItemStore
	materialized MaterializedStore
	roles        RoleSource
	logger       *logrus.Entry
}

func NewReconciler(
	tree TreeStore,
	dimension Dimension,
	grants GrantStore,
	items WorkItemStore,
	materialized MaterializedStore,
	roles RoleSource,
	logger *logrus.Entry,
) *Reconciler {
	return &Reconciler{
		tree:         tree,
		dimension:    dimension,
		grants:       grants,
		items:        items,
		materialized: materialized,
		roles:        roles,
		logger:       logger.WithField("component", "hierarchy.reconciler"),
	}
}

// Snapshot loads the tenant state the materialization derives from.
func (r *Reconciler) Snapshot(ctx context.Context) (TenantSnapshot, error) {
	nodes, err := r.tree.GetNodes(ctx, r.dimension)
	if err != nil {
		return TenantSnapshot{}, errors.Wrap(err, "failed to load tree nodes")
	}
	grants, err := r.grants.ListGrants(ctx)
	if err != nil {
		return TenantSnapshot{}, errors.Wrap(err, "failed to load grants")
	}
	roles, err := r.roles.ListRoles(ctx)
	if err != nil {
		return TenantSnapshot{}, errors.Wrap(err, "failed to load user roles")
	}

	var items []WorkItem
	for _, kind := range entityKinds {
		kindItems, err := r.items.ListWorkItems(ctx, kind)
		if err != nil {
			return TenantSnapshot{}, errors.Wrap(err, "failed to load work items")
		}
		items = append(items, kindItems...)
	}

	return TenantSnapshot{
		Nodes:  nodes,
		Grants: grants,
		Items:  items,
		Roles:  roles,
	}, nil
}

type materializedKey struct {
	userID   uint
	entityID uuid.UUID
}

// Reconcile corrects the materialized tables for the tenant in context.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}

	for _, kind := range entityKinds {
		want := ComputeGrants(snap, kind)
		wantByKey := make(map[materializedKey]PermissionLevel, len(want))
		for _, row := range want {
			wantByKey[materializedKey{row.UserID, row.EntityID}] = row.Permission
		}

		have, err := r.materialized.ListAll(ctx, kind)
		if err != nil {
			return errors.Wrap(err, "failed to list materialized grants")
		}
		haveByKey := make(map[materializedKey]PermissionLevel, len(have))
		for _, row := range have {
			haveByKey[materializedKey{row.UserID, row.EntityID}] = row.Permission
		}

		var stale []MaterializedGrant
		for _, row := range have {
			key := materializedKey{row.UserID, row.EntityID}
			wantLevel, justified := wantByKey[key]
			if justified && wantLevel == row.Permission {
				continue
			}
			r.logger.WithContext(ctx).WithFields(logrus.Fields{
				"kind":   kind,
				"user":   row.UserID,
				"entity": row.EntityID,
				"have":   row.Permission.String(),
				"want":   wantLevel.String(),
			}).Warn("inconsistent materialized grant, correcting")
			reconcileCorrections.Inc()
			stale = append(stale, row)
		}
		if len(stale) > 0 {
			if err := r.materialized.DeleteRows(ctx, kind, stale); err != nil {
				return errors.Wrap(err, "failed to delete stale materialized grants")
			}
		}

		var missing []MaterializedGrant
		for _, row := range want {
			key := materializedKey{row.UserID, row.EntityID}
			if haveLevel, ok := haveByKey[key]; ok && haveLevel == row.Permission {
				continue
			}
			missing = append(missing, row)
		}
		if len(missing) > 0 {
			if err := r.materialized.Upsert(ctx, kind, missing); err != nil {
				return errors.Wrap(err, "failed to upsert recomputed grants")
			}
		}
	}
	return nil
}
