package user

import (
	"context"

	"github.com/planora-hq/planora/pkg/hierarchy"
)

type FindParams struct {
	Q      string
	Role   hierarchy.Role
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]User, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	GetByID(ctx context.Context, id uint) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, data User) (User, error)
	Update(ctx context.Context, data User) (User, error)
	Delete(ctx context.Context, id uint) error

	// ListRoles returns the role of every user of the tenant in context.
	// Satisfies the authorization engine's role lookups.
	ListRoles(ctx context.Context) (map[uint]hierarchy.Role, error)
}
