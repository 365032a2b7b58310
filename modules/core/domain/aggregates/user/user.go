package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/planora-hq/planora/pkg/hierarchy"
)

// User is the tenant-scoped account the engine authorizes. The role is a
// single tenant-wide attribute; subtree authority comes from area grants,
// not from the role (Owner excepted).
type User interface {
	ID() uint
	TenantID() uuid.UUID
	Email() string
	FirstName() string
	LastName() string
	Role() hierarchy.Role
	UILanguage() UILanguage
	CreatedAt() time.Time
	UpdatedAt() time.Time

	SetRole(role hierarchy.Role) User
	SetName(firstName, lastName string) User
	SetUILanguage(language UILanguage) User
}

type Option func(*userImpl)

func WithID(id uint) Option {
	return func(u *userImpl) {
		u.id = id
	}
}

func WithTenantID(tenantID uuid.UUID) Option {
	return func(u *userImpl) {
		u.tenantID = tenantID
	}
}

func WithName(firstName, lastName string) Option {
	return func(u *userImpl) {
		u.firstName = firstName
		u.lastName = lastName
	}
}

func WithUILanguage(language UILanguage) Option {
	return func(u *userImpl) {
		u.uiLanguage = language
	}
}

func WithCreatedAt(t time.Time) Option {
	return func(u *userImpl) {
		u.createdAt = t
	}
}

func WithUpdatedAt(t time.Time) Option {
	return func(u *userImpl) {
		u.updatedAt = t
	}
}

func New(email string, role hierarchy.Role, opts ...Option) User {
	u := &userImpl{
		email:      email,
		role:       role,
		uiLanguage: UILanguageEN,
		createdAt:  time.Now(),
		updatedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type userImpl struct {
	id         uint
	tenantID   uuid.UUID
	email      string
	firstName  string
	lastName   string
	role       hierarchy.Role
	uiLanguage UILanguage
	createdAt  time.Time
	updatedAt  time.Time
}

func (u *userImpl) ID() uint               { return u.id }
func (u *userImpl) TenantID() uuid.UUID    { return u.tenantID }
func (u *userImpl) Email() string          { return u.email }
func (u *userImpl) FirstName() string      { return u.firstName }
func (u *userImpl) LastName() string       { return u.lastName }
func (u *userImpl) Role() hierarchy.Role   { return u.role }
func (u *userImpl) UILanguage() UILanguage { return u.uiLanguage }
func (u *userImpl) CreatedAt() time.Time   { return u.createdAt }
func (u *userImpl) UpdatedAt() time.Time   { return u.updatedAt }

func (u *userImpl) SetRole(role hierarchy.Role) User {
	out := *u
	out.role = role
	out.updatedAt = time.Now()
	return &out
}

func (u *userImpl) SetName(firstName, lastName string) User {
	out := *u
	out.firstName = firstName
	out.lastName = lastName
	out.updatedAt = time.Now()
	return &out
}

func (u *userImpl) SetUILanguage(language UILanguage) User {
	out := *u
	out.uiLanguage = language
	out.updatedAt = time.Now()
	return &out
}
