package hierarchy

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultPropagationBatchSize = 500

var entityKinds = []EntityKind{EntityPlan, EntityCommunication}

// PermissionPropagator keeps the materialized grant tables consistent with
// the tree, the grants and the work items. Every trigger is idempotent:
// writes go through insert-or-upgrade upserts, so re-running a trigger, or
// racing two triggers, converges to the same final state.
type PermissionPropagator struct {
	tree         *TreeIndex
	grants       GrantStore
	items        WorkItemStore
	materialized MaterializedStore
	resolver     *PermissionResolver
	batchSize    int
	logger       *logrus.Entry
}

type PropagatorOption func(*PermissionPropagator)

// WithBatchSize caps how many materialized rows one upsert call writes, so
// a large reparent or grant change never holds a single long transaction.
func WithBatchSize(n int) PropagatorOption {
	return func(p *PermissionPropagator) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

func NewPermissionPropagator(
	tree *TreeIndex,
	grants GrantStore,
	items WorkItemStore,
	materialized MaterializedStore,
	logger *logrus.Entry,
	opts ...PropagatorOption,
) *PermissionPropagator {
	p := &PermissionPropagator{
		tree:         tree,
		grants:       grants,
		items:        items,
		materialized: materialized,
		resolver:     NewPermissionResolver(tree, grants),
		batchSize:    defaultPropagationBatchSize,
		logger:       logger.WithField("component", "hierarchy.propagator"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// OnWorkItemCreated materializes grant rows for every user whose explicit
// grants reach any node tagged on the freshly created work item.
func (p *PermissionPropagator) OnWorkItemCreated(ctx context.Context, ref EntityRef) error {
	rows, err := p.entityRows(ctx, ref)
	if err != nil {
		return err
	}
	if err := p.upsertChunked(ctx, ref.Kind, rows); err != nil {
		return err
	}
	recordPropagationMetrics("work_item_created", len(rows))
	return nil
}

// OnNodeTagsChanged recomputes the work item's rows from scratch: the tag
// set can both open and close access paths, so the old rows are dropped
// and the current resolution is rematerialized.
func (p *PermissionPropagator) OnNodeTagsChanged(ctx context.Context, ref EntityRef) error {
	rows, err := p.entityRows(ctx, ref)
	if err != nil {
		return err
	}
	if err := p.materialized.DeleteByEntity(ctx, ref.Kind, ref.ID); err != nil {
		return errors.Wrap(err, "failed to clear materialized rows for entity")
	}
	if err := p.upsertChunked(ctx, ref.Kind, rows); err != nil {
		return err
	}
	recordPropagationMetrics("node_tags_changed", len(rows))
	return nil
}

// OnGrantCreated upgrades the materialized rows of every existing work
// item the new grant's subtree reaches. The level written is the user's
// full resolved permission, not the raw grant's: another grant may already
// imply more.
func (p *PermissionPropagator) OnGrantCreated(ctx context.Context, userID uint, nodeID uuid.UUID) error {
	subtree, err := p.tree.Descendants(ctx, []uuid.UUID{nodeID})
	if err != nil {
		return err
	}
	if len(subtree) == 0 {
		// Node unknown to the tenant: nothing to propagate.
		return nil
	}

	total := 0
	for _, kind := range entityKinds {
		items, err := p.items.ListWorkItems(ctx, kind)
		if err != nil {
			return errors.Wrap(err, "failed to list work items")
		}

		targets := make(map[uuid.UUID][]uuid.UUID)
		for _, item := range items {
			if intersects(subtree, item.NodeIDs) {
				targets[item.Ref.ID] = item.NodeIDs
			}
		}
		if len(targets) == 0 {
			continue
		}

		levels, err := p.resolver.ResolveMany(ctx, userID, RoleUser, targets)
		if err != nil {
			return err
		}

		rows := make([]MaterializedGrant, 0, len(levels))
		for entityID, level := range levels {
			if level == PermissionNone {
				continue
			}
			rows = append(rows, MaterializedGrant{UserID: userID, EntityID: entityID, Permission: level})
		}
		if err := p.upsertChunked(ctx, kind, rows); err != nil {
			return err
		}
		total += len(rows)
	}
	recordPropagationMetrics("grant_created", total)
	return nil
}

// OnNodeCreated gives the creator an implicit Edit grant on the new node
// (whoever creates a branch administers it) and propagates it. The grant
// written is returned so callers see the side effect explicitly.
func (p *PermissionPropagator) OnNodeCreated(ctx context.Context, creatorID uint, nodeID uuid.UUID) (Grant, error) {
	grant := Grant{
		UserID:     creatorID,
		NodeID:     nodeID,
		Permission: PermissionEdit,
		IsPrimary:  true,
	}
	if err := p.grants.InsertGrant(ctx, grant); err != nil {
		return Grant{}, errors.Wrap(err, "failed to insert implicit creator grant")
	}
	if err := p.OnGrantCreated(ctx, creatorID, nodeID); err != nil {
		return Grant{}, err
	}
	return grant, nil
}

// RecomputeUser rebuilds the user's materialized rows across all entity
// kinds. Grant revocation retracts through here: coarse, but always
// consistent with a from-scratch resolution.
func (p *PermissionPropagator) RecomputeUser(ctx context.Context, userID uint, role Role) error {
	total := 0
	for _, kind := range entityKinds {
		if err := p.materialized.DeleteByUser(ctx, kind, userID); err != nil {
			return errors.Wrap(err, "failed to clear materialized rows for user")
		}
		if role.BypassesHierarchy() {
			// Owners have no rows; the enforcer applies the bypass.
			continue
		}

		items, err := p.items.ListWorkItems(ctx, kind)
		if err != nil {
			return errors.Wrap(err, "failed to list work items")
		}
		targets := make(map[uuid.UUID][]uuid.UUID, len(items))
		for _, item := range items {
			if len(item.NodeIDs) > 0 {
				targets[item.Ref.ID] = item.NodeIDs
			}
		}
		levels, err := p.resolver.ResolveMany(ctx, userID, role, targets)
		if err != nil {
			return err
		}

		rows := make([]MaterializedGrant, 0, len(levels))
		for entityID, level := range levels {
			if level == PermissionNone {
				continue
			}
			rows = append(rows, MaterializedGrant{UserID: userID, EntityID: entityID, Permission: level})
		}
		if err := p.upsertChunked(ctx, kind, rows); err != nil {
			return err
		}
		total += len(rows)
	}
	recordPropagationMetrics("recompute_user", total)
	return nil
}

// RecomputeEntity rebuilds one work item's rows; node deletion cascades
// retract through here after the subtree is gone.
func (p *PermissionPropagator) RecomputeEntity(ctx context.Context, ref EntityRef) error {
	return p.OnNodeTagsChanged(ctx, ref)
}

// entityRows resolves the current materialized rows for one work item:
// every user holding a grant on the ancestor closure of the item's tags,
// at their full resolved level.
func (p *PermissionPropagator) entityRows(ctx context.Context, ref EntityRef) ([]MaterializedGrant, error) {
	item, err := p.items.GetWorkItem(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrWorkItemNotFound) {
			// Deleted concurrently: no contribution.
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to load work item")
	}
	if len(item.NodeIDs) == 0 {
		return nil, nil
	}

	closure, err := p.tree.Ancestors(ctx, item.NodeIDs)
	if err != nil {
		return nil, err
	}
	if len(closure) == 0 {
		return nil, nil
	}

	grants, err := p.grants.FindGrantsByNodes(ctx, closure.Slice())
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch grants for closure")
	}

	byUser := make(map[uint]PermissionLevel, len(grants))
	for _, g := range grants {
		byUser[g.UserID] = byUser[g.UserID].Max(g.Permission)
	}

	rows := make([]MaterializedGrant, 0, len(byUser))
	for userID, level := range byUser {
		if level == PermissionNone {
			continue
		}
		rows = append(rows, MaterializedGrant{UserID: userID, EntityID: item.Ref.ID, Permission: level})
	}
	return rows, nil
}

func (p *PermissionPropagator) upsertChunked(ctx context.Context, kind EntityKind, rows []MaterializedGrant) error {
	for start := 0; start < len(rows); start += p.batchSize {
		end := start + p.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := p.materialized.Upsert(ctx, kind, rows[start:end]); err != nil {
			return errors.Wrap(err, "failed to upsert materialized grants")
		}
	}
	if len(rows) > 0 {
		p.logger.WithFields(logrus.Fields{
			"kind": kind,
			"rows": len(rows),
		}).Debug("materialized grants upserted")
	}
	return nil
}

func intersects(set NodeSet, ids []uuid.UUID) bool {
	for _, id := range ids {
		if set.Contains(id) {
			return true
		}
	}
	return false
}
