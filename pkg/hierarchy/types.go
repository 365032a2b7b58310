package hierarchy

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// PermissionLevel is the effective access level a user holds over a node
// set or a work item. Ordering matters: higher levels subsume lower ones.
type PermissionLevel int

const (
	PermissionNone PermissionLevel = iota
	PermissionRead
	PermissionEdit
)

func (l PermissionLevel) String() string {
	switch l {
	case PermissionRead:
		return "read"
	case PermissionEdit:
		return "edit"
	default:
		return "none"
	}
}

// ParsePermissionLevel converts a stored string back into a level.
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	switch s {
	case "none":
		return PermissionNone, nil
	case "read":
		return PermissionRead, nil
	case "edit":
		return PermissionEdit, nil
	}
	return PermissionNone, errors.Errorf("unknown permission level: %q", s)
}

// Max returns the higher of two levels.
func (l PermissionLevel) Max(other PermissionLevel) PermissionLevel {
	if other > l {
		return other
	}
	return l
}

// Satisfies reports whether the level is sufficient for the given action.
func (l PermissionLevel) Satisfies(action Action) bool {
	switch action {
	case ActionEdit:
		return l >= PermissionEdit
	case ActionView:
		return l >= PermissionRead
	}
	return false
}

// Role is a tenant-wide user attribute. Only Owner participates in bypass
// logic today; the closed set leaves room for future roles gaining partial
// bypass without widening the type.
type Role string

const (
	RoleOwner        Role = "owner"
	RoleAdmin        Role = "admin"
	RoleUser         Role = "user"
	RoleReadonlyUser Role = "readonly_user"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleUser, RoleReadonlyUser:
		return true
	}
	return false
}

// BypassesHierarchy reports whether the role is treated as holding Edit on
// every node without grant rows.
func (r Role) BypassesHierarchy() bool {
	return r == RoleOwner
}

// Dimension names an organizational tree. Each dimension is stored as its
// own forest per tenant.
type Dimension string

const (
	DimensionBusinessArea Dimension = "business_area"
	DimensionLocation     Dimension = "location"
)

// Action is what the caller wants to do with a work item.
type Action string

const (
	ActionView Action = "view"
	ActionEdit Action = "edit"
)

// EntityKind distinguishes the materialized grant tables.
type EntityKind string

const (
	EntityPlan          EntityKind = "plan"
	EntityCommunication EntityKind = "communication"
)

// Node is one tree node of a tenant's organizational dimension. A nil
// ParentID marks a root of the forest.
type Node struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	ParentID *uuid.UUID
	Name     string
}

// Grant is an administrator's explicit delegation of authority over the
// subtree rooted at NodeID. Duplicate (user, node) rows are tolerated;
// resolution takes the maximum permission.
type Grant struct {
	UserID     uint
	NodeID     uuid.UUID
	Permission PermissionLevel
	IsPrimary  bool
}

// EntityRef identifies one work item.
type EntityRef struct {
	Kind EntityKind
	ID   uuid.UUID
}

// WorkItem is the engine's view of a plan or communication: the tagged
// business-area nodes that gate access plus the entity-level visibility
// attributes the confidentiality guard needs.
type WorkItem struct {
	Ref          EntityRef
	NodeIDs      []uuid.UUID
	OwnerIDs     []uint
	TeamIDs      []uint
	Confidential bool
}

// MaterializedGrant is one row of the derived per-entity grant table.
// Every row must be reproducible by resolving against current tree, grant
// and work-item state.
type MaterializedGrant struct {
	UserID     uint
	EntityID   uuid.UUID
	Permission PermissionLevel
}

// Actor is the minimal caller identity the engine needs.
type Actor struct {
	ID   uint
	Role Role
}

var (
	ErrNodeNotFound     = errors.New("tree node not found")
	ErrWorkItemNotFound = errors.New("work item not found")
)

// TreeStore loads a tenant's forest for one dimension. The tenant is taken
// from the context.
type TreeStore interface {
	GetNodes(ctx context.Context, dimension Dimension) ([]Node, error)
}

// GrantStore is the source-of-truth table of explicit grants.
type GrantStore interface {
	// FindGrants returns the user's grants whose node is in nodeIDs.
	FindGrants(ctx context.Context, userID uint, nodeIDs []uuid.UUID) ([]Grant, error)
	// FindGrantsByNodes returns all grants of any user whose node is in
	// nodeIDs.
	FindGrantsByNodes(ctx context.Context, nodeIDs []uuid.UUID) ([]Grant, error)
	// ListGrants returns every grant of the tenant.
	ListGrants(ctx context.Context) ([]Grant, error)
	InsertGrant(ctx context.Context, grant Grant) error
	// DeleteGrants removes the user's grants on the given nodes. An empty
	// node list removes all of the user's grants.
	DeleteGrants(ctx context.Context, userID uint, nodeIDs []uuid.UUID) error
}

// WorkItemStore exposes work items to the engine. Implementations wrap the
// plan and communication repositories.
type WorkItemStore interface {
	GetWorkItem(ctx context.Context, ref EntityRef) (WorkItem, error)
	ListWorkItems(ctx context.Context, kind EntityKind) ([]WorkItem, error)
}

// MaterializedStore owns the derived grant tables. Only the propagator
// writes to it. Upsert must be insert-or-upgrade: an existing higher
// permission is never overwritten by a lower one, which is what makes
// concurrent propagation triggers converge.
type MaterializedStore interface {
	Get(ctx context.Context, kind EntityKind, userID uint, entityID uuid.UUID) (PermissionLevel, error)
	GetForUser(ctx context.Context, kind EntityKind, userID uint) (map[uuid.UUID]PermissionLevel, error)
	ListAll(ctx context.Context, kind EntityKind) ([]MaterializedGrant, error)
	Upsert(ctx context.Context, kind EntityKind, grants []MaterializedGrant) error
	DeleteRows(ctx context.Context, kind EntityKind, rows []MaterializedGrant) error
	DeleteByEntity(ctx context.Context, kind EntityKind, entityID uuid.UUID) error
	DeleteByUser(ctx context.Context, kind EntityKind, userID uint) error
}

// RoleSource resolves tenant users to their roles; the reconciler uses it
// to keep Owner bypass rows out of the computed table.
type RoleSource interface {
	ListRoles(ctx context.Context) (map[uint]Role, error)
}
