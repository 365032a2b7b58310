package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uint
	TenantID   uuid.UUID
	FirstName  string
	LastName   string
	Email      string
	Role       string
	UILanguage string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Tenant struct {
	ID        uuid.UUID
	Name      string
	Domain    string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
