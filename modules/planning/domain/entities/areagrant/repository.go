package areagrant

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// FindByUser returns the user's grants, optionally narrowed to a node
	// set (nil means all nodes).
	FindByUser(ctx context.Context, userID uint, nodeIDs []uuid.UUID) ([]AreaGrant, error)
	FindByNodes(ctx context.Context, nodeIDs []uuid.UUID) ([]AreaGrant, error)
	Create(ctx context.Context, grant AreaGrant) error
	// Delete removes the user's grants on the given nodes; an empty node
	// list removes all of the user's grants.
	Delete(ctx context.Context, userID uint, nodeIDs []uuid.UUID) error
	// DeleteByNodes removes every user's grants on the given nodes. Used
	// when a subtree is deleted.
	DeleteByNodes(ctx context.Context, nodeIDs []uuid.UUID) error
}
