package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/planora-hq/planora/modules/planning/domain/aggregates/communication"
	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/eventbus"
	"github.com/planora-hq/planora/pkg/hierarchy"
)

type CommunicationService struct {
	repo       communication.Repository
	enforcer   *hierarchy.AccessEnforcer
	propagator *hierarchy.PermissionPropagator
	publisher  eventbus.EventBus
}

func NewCommunicationService(
	repo communication.Repository,
	enforcer *hierarchy.AccessEnforcer,
	propagator *hierarchy.PermissionPropagator,
	publisher eventbus.EventBus,
) *CommunicationService {
	return &CommunicationService{
		repo:       repo,
		enforcer:   enforcer,
		propagator: propagator,
		publisher:  publisher,
	}
}

func communicationRef(id uuid.UUID) hierarchy.EntityRef {
	return hierarchy.EntityRef{Kind: hierarchy.EntityCommunication, ID: id}
}

func (s *CommunicationService) GetByID(ctx context.Context, actor hierarchy.Actor, id uuid.UUID) (communication.Communication, error) {
	var entity communication.Communication
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		if err := s.enforcer.Authorize(txCtx, actor, communicationRef(id), hierarchy.ActionView); err != nil {
			return err
		}
		found, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		entity = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *CommunicationService) GetPaginated(ctx context.Context, actor hierarchy.Actor, params *communication.FindParams) ([]communication.Communication, error) {
	var visible []communication.Communication
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		entities, err := s.repo.GetPaginated(txCtx, params)
		if err != nil {
			return err
		}
		visible, err = s.filterVisible(txCtx, actor, entities)
		return err
	})
	if err != nil {
		return nil, err
	}
	return visible, nil
}

func (s *CommunicationService) Count(ctx context.Context, params *communication.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

func (s *CommunicationService) Create(ctx context.Context, data communication.Communication) (communication.Communication, error) {
	var created communication.Communication
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		entity, err := s.repo.Create(txCtx, data)
		if err != nil {
			return err
		}
		created = entity
		return s.propagator.OnWorkItemCreated(txCtx, communicationRef(entity.ID()))
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(communication.CreatedEvent{Result: created})
	return created, nil
}

func (s *CommunicationService) Update(ctx context.Context, actor hierarchy.Actor, data communication.Communication) (communication.Communication, error) {
	var (
		updated     communication.Communication
		tagsChanged bool
	)
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		if err := s.enforcer.Authorize(txCtx, actor, communicationRef(data.ID()), hierarchy.ActionEdit); err != nil {
			return err
		}
		existing, err := s.repo.GetByID(txCtx, data.ID())
		if err != nil {
			return err
		}
		tagsChanged = !sameNodeSet(existing.BusinessAreaIDs(), data.BusinessAreaIDs())

		entity, err := s.repo.Update(txCtx, data)
		if err != nil {
			return err
		}
		updated = entity

		if tagsChanged {
			return s.propagator.OnNodeTagsChanged(txCtx, communicationRef(entity.ID()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(communication.UpdatedEvent{Result: updated, TagsChanged: tagsChanged})
	return updated, nil
}

// Send marks a communication as sent. Sending needs edit authority; the
// tag set is untouched so no propagation runs.
func (s *CommunicationService) Send(ctx context.Context, actor hierarchy.Actor, id uuid.UUID) (communication.Communication, error) {
	var sent communication.Communication
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		if err := s.enforcer.Authorize(txCtx, actor, communicationRef(id), hierarchy.ActionEdit); err != nil {
			return err
		}
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		sent, err = s.repo.Update(txCtx, entity.MarkSent(time.Now()))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(communication.UpdatedEvent{Result: sent})
	return sent, nil
}

func (s *CommunicationService) Delete(ctx context.Context, actor hierarchy.Actor, id uuid.UUID) (communication.Communication, error) {
	var deleted communication.Communication
	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		if err := s.enforcer.Authorize(txCtx, actor, communicationRef(id), hierarchy.ActionEdit); err != nil {
			return err
		}
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		deleted = entity
		return s.propagator.RecomputeEntity(txCtx, communicationRef(id))
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(communication.DeletedEvent{Result: deleted})
	return deleted, nil
}

func (s *CommunicationService) filterVisible(ctx context.Context, actor hierarchy.Actor, entities []communication.Communication) ([]communication.Communication, error) {
	items := make([]hierarchy.WorkItem, 0, len(entities))
	for _, entity := range entities {
		items = append(items, entity.AsWorkItem())
	}
	kept, err := s.enforcer.FilterVisible(ctx, actor, items)
	if err != nil {
		return nil, err
	}
	keptIDs := hierarchy.NewNodeSet()
	for _, item := range kept {
		keptIDs.Add(item.Ref.ID)
	}
	visible := make([]communication.Communication, 0, len(kept))
	for _, entity := range entities {
		if keptIDs.Contains(entity.ID()) {
			visible = append(visible, entity)
		}
	}
	return visible, nil
}
