package user

import "github.com/planora-hq/planora/pkg/hierarchy"

// CreatedEvent is published after a user is persisted.
type CreatedEvent struct {
	Result User
}

// UpdatedEvent is published after a user update. RoleChanged flags updates
// that moved the user between roles, which forces a permission recompute
// downstream.
type UpdatedEvent struct {
	Result       User
	RoleChanged  bool
	PreviousRole hierarchy.Role
}

// DeletedEvent is published after a user is removed.
type DeletedEvent struct {
	Result User
}
