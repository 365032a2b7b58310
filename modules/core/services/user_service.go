package services

import (
	"context"

	"github.com/planora-hq/planora/modules/core/domain/aggregates/user"
	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/eventbus"
)

type UserService struct {
	repo      user.Repository
	publisher eventbus.EventBus
}

func NewUserService(repo user.Repository, publisher eventbus.EventBus) *UserService {
	return &UserService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *UserService) GetByID(ctx context.Context, id uint) (user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *UserService) Count(ctx context.Context, params *user.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

func (s *UserService) Create(ctx context.Context, data user.User) (user.User, error) {
	var created user.User
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		entity, err := s.repo.Create(txCtx, data)
		if err != nil {
			return err
		}
		created = entity
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(user.CreatedEvent{Result: created})
	return created, nil
}

func (s *UserService) Update(ctx context.Context, data user.User) (user.User, error) {
	var (
		updated      user.User
		previousRole = data.Role()
		roleChanged  bool
	)
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, data.ID())
		if err != nil {
			return err
		}
		previousRole = existing.Role()
		roleChanged = existing.Role() != data.Role()

		entity, err := s.repo.Update(txCtx, data)
		if err != nil {
			return err
		}
		updated = entity
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(user.UpdatedEvent{
		Result:       updated,
		RoleChanged:  roleChanged,
		PreviousRole: previousRole,
	})
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) (user.User, error) {
	var deleted user.User
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		deleted = entity
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(user.DeletedEvent{Result: deleted})
	return deleted, nil
}
