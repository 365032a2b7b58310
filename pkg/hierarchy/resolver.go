package hierarchy

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// PermissionResolver computes the effective permission of a user against a
// set of target nodes. Delegation flows downward from where a grant is
// planted: a grant on any ancestor of a target (the target included)
// authorizes it, a grant on a descendant does not.
type PermissionResolver struct {
	tree   *TreeIndex
	grants GrantStore
}

func NewPermissionResolver(tree *TreeIndex, grants GrantStore) *PermissionResolver {
	return &PermissionResolver{tree: tree, grants: grants}
}

// Resolve returns the effective permission level for the user over the
// target node set. Owner bypasses the tree entirely.
func (r *PermissionResolver) Resolve(ctx context.Context, userID uint, role Role, targetNodeIDs []uuid.UUID) (PermissionLevel, error) {
	if role.BypassesHierarchy() {
		return PermissionEdit, nil
	}
	if len(targetNodeIDs) == 0 {
		return PermissionNone, nil
	}

	reachable, err := r.tree.Ancestors(ctx, targetNodeIDs)
	if err != nil {
		return PermissionNone, err
	}
	if len(reachable) == 0 {
		return PermissionNone, nil
	}

	grants, err := r.grants.FindGrants(ctx, userID, reachable.Slice())
	if err != nil {
		return PermissionNone, errors.Wrap(err, "failed to fetch grants")
	}
	return maxPermission(grants), nil
}

// ResolveMany resolves many target sets at once, sharing a single forest
// snapshot and a single grant fetch. Results are identical to calling
// Resolve per entry.
func (r *PermissionResolver) ResolveMany(ctx context.Context, userID uint, role Role, targets map[uuid.UUID][]uuid.UUID) (map[uuid.UUID]PermissionLevel, error) {
	out := make(map[uuid.UUID]PermissionLevel, len(targets))
	if role.BypassesHierarchy() {
		for key := range targets {
			out[key] = PermissionEdit
		}
		return out, nil
	}
	if len(targets) == 0 {
		return out, nil
	}

	forest, err := r.tree.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	closures := make(map[uuid.UUID]NodeSet, len(targets))
	combined := NodeSet{}
	for key, nodeIDs := range targets {
		closure := forest.Ancestors(nodeIDs)
		closures[key] = closure
		combined = combined.Union(closure)
	}

	grantsByNode := map[uuid.UUID][]Grant{}
	if len(combined) > 0 {
		grants, err := r.grants.FindGrants(ctx, userID, combined.Slice())
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch grants")
		}
		for _, g := range grants {
			grantsByNode[g.NodeID] = append(grantsByNode[g.NodeID], g)
		}
	}

	for key, closure := range closures {
		level := PermissionNone
		for nodeID := range closure {
			for _, g := range grantsByNode[nodeID] {
				level = level.Max(g.Permission)
			}
			if level == PermissionEdit {
				break
			}
		}
		out[key] = level
	}
	return out, nil
}

// HasAnyEditGrant reports whether the user holds edit authority over at
// least one of the given nodes. Partial authority over a multi-tagged
// entity is enough to grant write access to the entity itself.
func (r *PermissionResolver) HasAnyEditGrant(ctx context.Context, userID uint, role Role, nodeIDs []uuid.UUID) (bool, error) {
	if role.BypassesHierarchy() {
		return true, nil
	}
	if len(nodeIDs) == 0 {
		return false, nil
	}
	forest, err := r.tree.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	for _, nodeID := range nodeIDs {
		closure := forest.Ancestors([]uuid.UUID{nodeID})
		if len(closure) == 0 {
			continue
		}
		grants, err := r.grants.FindGrants(ctx, userID, closure.Slice())
		if err != nil {
			return false, errors.Wrap(err, "failed to fetch grants")
		}
		if maxPermission(grants) == PermissionEdit {
			return true, nil
		}
	}
	return false, nil
}

func maxPermission(grants []Grant) PermissionLevel {
	level := PermissionNone
	for _, g := range grants {
		level = level.Max(g.Permission)
	}
	return level
}
