package orgunit

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planora-hq/planora/pkg/hierarchy"
)

// OrgUnit is one node of a tenant's organizational tree. Deleting or
// reparenting a unit changes what every grant planted on it reaches, so
// all mutations flow through the service layer and its propagation hooks.
type OrgUnit struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	parentID  *uuid.UUID
	dimension hierarchy.Dimension
	name      string
	createdAt time.Time
	updatedAt time.Time
}

func New(tenantID uuid.UUID, dimension hierarchy.Dimension, name string, parentID *uuid.UUID) OrgUnit {
	return OrgUnit{
		id:        uuid.New(),
		tenantID:  tenantID,
		parentID:  parentID,
		dimension: dimension,
		name:      strings.TrimSpace(name),
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	parentID *uuid.UUID,
	dimension hierarchy.Dimension,
	name string,
	createdAt time.Time,
	updatedAt time.Time,
) OrgUnit {
	return OrgUnit{
		id:        id,
		tenantID:  tenantID,
		parentID:  parentID,
		dimension: dimension,
		name:      strings.TrimSpace(name),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (u OrgUnit) ID() uuid.UUID                  { return u.id }
func (u OrgUnit) TenantID() uuid.UUID            { return u.tenantID }
func (u OrgUnit) ParentID() *uuid.UUID           { return u.parentID }
func (u OrgUnit) Dimension() hierarchy.Dimension { return u.dimension }
func (u OrgUnit) Name() string                   { return u.name }
func (u OrgUnit) CreatedAt() time.Time           { return u.createdAt }
func (u OrgUnit) UpdatedAt() time.Time           { return u.updatedAt }
func (u OrgUnit) IsRoot() bool                   { return u.parentID == nil }

func (u OrgUnit) Rename(name string) OrgUnit {
	u.name = strings.TrimSpace(name)
	u.updatedAt = time.Now()
	return u
}

func (u OrgUnit) Reparent(parentID *uuid.UUID) OrgUnit {
	u.parentID = parentID
	u.updatedAt = time.Now()
	return u
}

// AsNode converts the unit into the engine's tree node value.
func (u OrgUnit) AsNode() hierarchy.Node {
	return hierarchy.Node{
		ID:       u.id,
		TenantID: u.tenantID,
		ParentID: u.parentID,
		Name:     u.name,
	}
}

// Events

type CreatedEvent struct {
	Result OrgUnit
	// CreatorGrant is the implicit edit grant planted on the new unit.
	CreatorGrant hierarchy.Grant
}

type ReparentedEvent struct {
	Result       OrgUnit
	PreviousPath *uuid.UUID
}

type DeletedEvent struct {
	Result OrgUnit
}
