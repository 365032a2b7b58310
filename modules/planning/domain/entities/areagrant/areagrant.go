package areagrant

import (
	"time"

	"github.com/google/uuid"

	"github.com/planora-hq/planora/pkg/hierarchy"
)

// AreaGrant is an explicit delegation: the user holds the permission on
// the subtree rooted at the node. Primary grants are the implicit
// creator grants planted when a node is created; they are removed with
// the node, never revoked individually.
type AreaGrant struct {
	tenantID   uuid.UUID
	userID     uint
	nodeID     uuid.UUID
	permission hierarchy.PermissionLevel
	isPrimary  bool
	createdAt  time.Time
}

func New(tenantID uuid.UUID, userID uint, nodeID uuid.UUID, permission hierarchy.PermissionLevel) AreaGrant {
	return AreaGrant{
		tenantID:   tenantID,
		userID:     userID,
		nodeID:     nodeID,
		permission: permission,
		createdAt:  time.Now(),
	}
}

func Hydrate(
	tenantID uuid.UUID,
	userID uint,
	nodeID uuid.UUID,
	permission hierarchy.PermissionLevel,
	isPrimary bool,
	createdAt time.Time,
) AreaGrant {
	return AreaGrant{
		tenantID:   tenantID,
		userID:     userID,
		nodeID:     nodeID,
		permission: permission,
		isPrimary:  isPrimary,
		createdAt:  createdAt,
	}
}

func (g AreaGrant) TenantID() uuid.UUID                   { return g.tenantID }
func (g AreaGrant) UserID() uint                          { return g.userID }
func (g AreaGrant) NodeID() uuid.UUID                     { return g.nodeID }
func (g AreaGrant) Permission() hierarchy.PermissionLevel { return g.permission }
func (g AreaGrant) IsPrimary() bool                       { return g.isPrimary }
func (g AreaGrant) CreatedAt() time.Time                  { return g.createdAt }

// AsGrant converts to the engine's grant value.
func (g AreaGrant) AsGrant() hierarchy.Grant {
	return hierarchy.Grant{
		UserID:     g.userID,
		NodeID:     g.nodeID,
		Permission: g.permission,
		IsPrimary:  g.isPrimary,
	}
}

// Events

type CreatedEvent struct {
	Result AreaGrant
}

type RevokedEvent struct {
	UserID  uint
	NodeIDs []uuid.UUID
}
