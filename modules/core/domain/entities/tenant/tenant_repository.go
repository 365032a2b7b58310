package tenant

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	List(ctx context.Context) ([]*Tenant, error)
	Create(ctx context.Context, data *Tenant) (*Tenant, error)
	Update(ctx context.Context, data *Tenant) (*Tenant, error)
}
