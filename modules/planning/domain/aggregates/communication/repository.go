package communication

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	Q       string
	NodeIDs []uuid.UUID
	Channel Channel
	Limit   int
	Offset  int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Communication, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Communication, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, data Communication) (Communication, error)
	Update(ctx context.Context, data Communication) (Communication, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Events

type CreatedEvent struct {
	Result Communication
}

type UpdatedEvent struct {
	Result      Communication
	TagsChanged bool
}

type DeletedEvent struct {
	Result Communication
}
