package orgunit

import (
	"context"

	"github.com/google/uuid"

	"github.com/planora-hq/planora/pkg/hierarchy"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (OrgUnit, error)
	GetAll(ctx context.Context, dimension hierarchy.Dimension) ([]OrgUnit, error)
	GetChildren(ctx context.Context, parentID uuid.UUID) ([]OrgUnit, error)
	GetRoots(ctx context.Context, dimension hierarchy.Dimension) ([]OrgUnit, error)
	Create(ctx context.Context, unit OrgUnit) (OrgUnit, error)
	Update(ctx context.Context, unit OrgUnit) (OrgUnit, error)
	// Delete removes the given nodes. Callers pass a full subtree; the
	// repository does not cascade on its own.
	Delete(ctx context.Context, ids []uuid.UUID) error
}
