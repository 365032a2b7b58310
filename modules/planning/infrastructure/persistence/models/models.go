package models

import (
	"time"

	"github.com/google/uuid"
)

type OrgNode struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	ParentID  *uuid.UUID
	Dimension string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AreaGrant struct {
	TenantID   uuid.UUID
	UserID     int64
	NodeID     uuid.UUID
	Permission int
	IsPrimary  bool
	CreatedAt  time.Time
}

type Plan struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	Title           string
	Description     string
	Status          string
	BusinessAreaIDs []uuid.UUID
	LocationIDs     []uuid.UUID
	OwnerIDs        []int64
	TeamIDs         []int64
	Confidential    bool
	StartsOn        *time.Time
	EndsOn          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Communication struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	Subject         string
	Body            string
	Channel         string
	BusinessAreaIDs []uuid.UUID
	OwnerIDs        []int64
	TeamIDs         []int64
	Confidential    bool
	SentAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
