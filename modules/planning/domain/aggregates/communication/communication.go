package communication

import (
	"time"

	"github.com/google/uuid"

	"github.com/planora-hq/planora/pkg/hierarchy"
)

type Channel string

const (
	ChannelEmail        Channel = "email"
	ChannelAnnouncement Channel = "announcement"
	ChannelBriefing     Channel = "briefing"
)

// Communication is the second work-item kind: an outbound message tied to
// business areas. Same access derivation as plans, its own materialized
// table.
type Communication interface {
	ID() uuid.UUID
	TenantID() uuid.UUID
	Subject() string
	Body() string
	Channel() Channel
	BusinessAreaIDs() []uuid.UUID
	OwnerIDs() []uint
	TeamIDs() []uint
	Confidential() bool
	SentAt() *time.Time
	CreatedAt() time.Time
	UpdatedAt() time.Time

	SetSubject(subject string) Communication
	SetBody(body string) Communication
	SetBusinessAreas(nodeIDs []uuid.UUID) Communication
	SetTeam(ownerIDs, teamIDs []uint) Communication
	SetConfidential(confidential bool) Communication
	MarkSent(at time.Time) Communication

	AsWorkItem() hierarchy.WorkItem
}

type Option func(*communicationImpl)

func WithID(id uuid.UUID) Option {
	return func(c *communicationImpl) {
		c.id = id
	}
}

func WithTenantID(tenantID uuid.UUID) Option {
	return func(c *communicationImpl) {
		c.tenantID = tenantID
	}
}

func WithBody(body string) Option {
	return func(c *communicationImpl) {
		c.body = body
	}
}

func WithChannel(channel Channel) Option {
	return func(c *communicationImpl) {
		c.channel = channel
	}
}

func WithBusinessAreas(nodeIDs []uuid.UUID) Option {
	return func(c *communicationImpl) {
		c.businessAreaIDs = nodeIDs
	}
}

func WithTeam(ownerIDs, teamIDs []uint) Option {
	return func(c *communicationImpl) {
		c.ownerIDs = ownerIDs
		c.teamIDs = teamIDs
	}
}

func WithConfidential(confidential bool) Option {
	return func(c *communicationImpl) {
		c.confidential = confidential
	}
}

func WithSentAt(at *time.Time) Option {
	return func(c *communicationImpl) {
		c.sentAt = at
	}
}

func WithCreatedAt(t time.Time) Option {
	return func(c *communicationImpl) {
		c.createdAt = t
	}
}

func WithUpdatedAt(t time.Time) Option {
	return func(c *communicationImpl) {
		c.updatedAt = t
	}
}

func New(subject string, opts ...Option) Communication {
	c := &communicationImpl{
		id:        uuid.New(),
		subject:   subject,
		channel:   ChannelAnnouncement,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type communicationImpl struct {
	id              uuid.UUID
	tenantID        uuid.UUID
	subject         string
	body            string
	channel         Channel
	businessAreaIDs []uuid.UUID
	ownerIDs        []uint
	teamIDs         []uint
	confidential    bool
	sentAt          *time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

func (c *communicationImpl) ID() uuid.UUID                { return c.id }
func (c *communicationImpl) TenantID() uuid.UUID          { return c.tenantID }
func (c *communicationImpl) Subject() string              { return c.subject }
func (c *communicationImpl) Body() string                 { return c.body }
func (c *communicationImpl) Channel() Channel             { return c.channel }
func (c *communicationImpl) BusinessAreaIDs() []uuid.UUID { return c.businessAreaIDs }
func (c *communicationImpl) OwnerIDs() []uint             { return c.ownerIDs }
func (c *communicationImpl) TeamIDs() []uint              { return c.teamIDs }
func (c *communicationImpl) Confidential() bool           { return c.confidential }
func (c *communicationImpl) SentAt() *time.Time           { return c.sentAt }
func (c *communicationImpl) CreatedAt() time.Time         { return c.createdAt }
func (c *communicationImpl) UpdatedAt() time.Time         { return c.updatedAt }

func (c *communicationImpl) SetSubject(subject string) Communication {
	out := *c
	out.subject = subject
	out.updatedAt = time.Now()
	return &out
}

func (c *communicationImpl) SetBody(body string) Communication {
	out := *c
	out.body = body
	out.updatedAt = time.Now()
	return &out
}

func (c *communicationImpl) SetBusinessAreas(nodeIDs []uuid.UUID) Communication {
	out := *c
	out.businessAreaIDs = nodeIDs
	out.updatedAt = time.Now()
	return &out
}

func (c *communicationImpl) SetTeam(ownerIDs, teamIDs []uint) Communication {
	out := *c
	out.ownerIDs = ownerIDs
	out.teamIDs = teamIDs
	out.updatedAt = time.Now()
	return &out
}

func (c *communicationImpl) SetConfidential(confidential bool) Communication {
	out := *c
	out.confidential = confidential
	out.updatedAt = time.Now()
	return &out
}

func (c *communicationImpl) MarkSent(at time.Time) Communication {
	out := *c
	out.sentAt = &at
	out.updatedAt = time.Now()
	return &out
}

func (c *communicationImpl) AsWorkItem() hierarchy.WorkItem {
	return hierarchy.WorkItem{
		Ref:          hierarchy.EntityRef{Kind: hierarchy.EntityCommunication, ID: c.id},
		NodeIDs:      c.businessAreaIDs,
		OwnerIDs:     c.ownerIDs,
		TeamIDs:      c.teamIDs,
		Confidential: c.confidential,
	}
}
