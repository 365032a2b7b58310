package plan

import (
	"time"

	"github.com/google/uuid"

	"github.com/planora-hq/planora/pkg/hierarchy"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Plan is a work item of a planning cycle. Access to it is derived from
// the business-area nodes it is tagged with; location tags only widen
// search filters, never access.
type Plan interface {
	ID() uuid.UUID
	TenantID() uuid.UUID
	Title() string
	Description() string
	Status() Status
	BusinessAreaIDs() []uuid.UUID
	LocationIDs() []uuid.UUID
	OwnerIDs() []uint
	TeamIDs() []uint
	Confidential() bool
	StartsOn() time.Time
	EndsOn() time.Time
	CreatedAt() time.Time
	UpdatedAt() time.Time

	SetTitle(title string) Plan
	SetDescription(description string) Plan
	SetStatus(status Status) Plan
	SetBusinessAreas(nodeIDs []uuid.UUID) Plan
	SetLocations(nodeIDs []uuid.UUID) Plan
	SetTeam(ownerIDs, teamIDs []uint) Plan
	SetConfidential(confidential bool) Plan

	// AsWorkItem converts the plan into the engine's work item view.
	AsWorkItem() hierarchy.WorkItem
}

type Option func(*planImpl)

func WithID(id uuid.UUID) Option {
	return func(p *planImpl) {
		p.id = id
	}
}

func WithTenantID(tenantID uuid.UUID) Option {
	return func(p *planImpl) {
		p.tenantID = tenantID
	}
}

func WithDescription(description string) Option {
	return func(p *planImpl) {
		p.description = description
	}
}

func WithStatus(status Status) Option {
	return func(p *planImpl) {
		p.status = status
	}
}

func WithBusinessAreas(nodeIDs []uuid.UUID) Option {
	return func(p *planImpl) {
		p.businessAreaIDs = nodeIDs
	}
}

func WithLocations(nodeIDs []uuid.UUID) Option {
	return func(p *planImpl) {
		p.locationIDs = nodeIDs
	}
}

func WithTeam(ownerIDs, teamIDs []uint) Option {
	return func(p *planImpl) {
		p.ownerIDs = ownerIDs
		p.teamIDs = teamIDs
	}
}

func WithConfidential(confidential bool) Option {
	return func(p *planImpl) {
		p.confidential = confidential
	}
}

func WithTimeframe(startsOn, endsOn time.Time) Option {
	return func(p *planImpl) {
		p.startsOn = startsOn
		p.endsOn = endsOn
	}
}

func WithCreatedAt(t time.Time) Option {
	return func(p *planImpl) {
		p.createdAt = t
	}
}

func WithUpdatedAt(t time.Time) Option {
	return func(p *planImpl) {
		p.updatedAt = t
	}
}

func New(title string, opts ...Option) Plan {
	p := &planImpl{
		id:        uuid.New(),
		title:     title,
		status:    StatusDraft,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type planImpl struct {
	id              uuid.UUID
	tenantID        uuid.UUID
	title           string
	description     string
	status          Status
	businessAreaIDs []uuid.UUID
	locationIDs     []uuid.UUID
	ownerIDs        []uint
	teamIDs         []uint
	confidential    bool
	startsOn        time.Time
	endsOn          time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

func (p *planImpl) ID() uuid.UUID                { return p.id }
func (p *planImpl) TenantID() uuid.UUID          { return p.tenantID }
func (p *planImpl) Title() string                { return p.title }
func (p *planImpl) Description() string          { return p.description }
func (p *planImpl) Status() Status               { return p.status }
func (p *planImpl) BusinessAreaIDs() []uuid.UUID { return p.businessAreaIDs }
func (p *planImpl) LocationIDs() []uuid.UUID     { return p.locationIDs }
func (p *planImpl) OwnerIDs() []uint             { return p.ownerIDs }
func (p *planImpl) TeamIDs() []uint              { return p.teamIDs }
func (p *planImpl) Confidential() bool           { return p.confidential }
func (p *planImpl) StartsOn() time.Time          { return p.startsOn }
func (p *planImpl) EndsOn() time.Time            { return p.endsOn }
func (p *planImpl) CreatedAt() time.Time         { return p.createdAt }
func (p *planImpl) UpdatedAt() time.Time         { return p.updatedAt }

func (p *planImpl) SetTitle(title string) Plan {
	out := *p
	out.title = title
	out.updatedAt = time.Now()
	return &out
}

func (p *planImpl) SetDescription(description string) Plan {
	out := *p
	out.description = description
	out.updatedAt = time.Now()
	return &out
}

func (p *planImpl) SetStatus(status Status) Plan {
	out := *p
	out.status = status
	out.updatedAt = time.Now()
	return &out
}

func (p *planImpl) SetBusinessAreas(nodeIDs []uuid.UUID) Plan {
	out := *p
	out.businessAreaIDs = nodeIDs
	out.updatedAt = time.Now()
	return &out
}

func (p *planImpl) SetLocations(nodeIDs []uuid.UUID) Plan {
	out := *p
	out.locationIDs = nodeIDs
	out.updatedAt = time.Now()
	return &out
}

func (p *planImpl) SetTeam(ownerIDs, teamIDs []uint) Plan {
	out := *p
	out.ownerIDs = ownerIDs
	out.teamIDs = teamIDs
	out.updatedAt = time.Now()
	return &out
}

func (p *planImpl) SetConfidential(confidential bool) Plan {
	out := *p
	out.confidential = confidential
	out.updatedAt = time.Now()
	return &out
}

func (p *planImpl) AsWorkItem() hierarchy.WorkItem {
	return hierarchy.WorkItem{
		Ref:          hierarchy.EntityRef{Kind: hierarchy.EntityPlan, ID: p.id},
		NodeIDs:      p.businessAreaIDs,
		OwnerIDs:     p.ownerIDs,
		TeamIDs:      p.teamIDs,
		Confidential: p.confidential,
	}
}
