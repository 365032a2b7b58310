package plan

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	Q string
	// NodeIDs narrows to plans tagged with any of these business-area
	// nodes. Callers expand hierarchy filters before passing them here.
	NodeIDs []uuid.UUID
	// LocationIDs narrows analogously along the location dimension.
	LocationIDs []uuid.UUID
	Status      Status
	Limit       int
	Offset      int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Plan, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Plan, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, data Plan) (Plan, error)
	Update(ctx context.Context, data Plan) (Plan, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Events

type CreatedEvent struct {
	Result Plan
}

type UpdatedEvent struct {
	Result Plan
	// TagsChanged marks updates that touched the business-area tags and
	// therefore invalidated the materialized grants.
	TagsChanged bool
}

type DeletedEvent struct {
	Result Plan
}
