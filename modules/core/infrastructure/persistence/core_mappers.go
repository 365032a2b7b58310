package persistence

import (
	"github.com/go-faster/errors"

	"github.com/planora-hq/planora/modules/core/domain/aggregates/user"
	"github.com/planora-hq/planora/modules/core/domain/entities/tenant"
	"github.com/planora-hq/planora/modules/core/infrastructure/persistence/models"
	"github.com/planora-hq/planora/pkg/hierarchy"
)

func toDomainTenant(dbTenant *models.Tenant) *tenant.Tenant {
	return tenant.New(
		dbTenant.Name,
		tenant.WithID(dbTenant.ID),
		tenant.WithDomain(dbTenant.Domain),
		tenant.WithIsActive(dbTenant.IsActive),
		tenant.WithCreatedAt(dbTenant.CreatedAt),
		tenant.WithUpdatedAt(dbTenant.UpdatedAt),
	)
}

func toDBTenant(entity *tenant.Tenant) *models.Tenant {
	return &models.Tenant{
		ID:        entity.ID(),
		Name:      entity.Name(),
		Domain:    entity.Domain(),
		IsActive:  entity.IsActive(),
		CreatedAt: entity.CreatedAt(),
		UpdatedAt: entity.UpdatedAt(),
	}
}

func toDomainUser(dbUser *models.User) (user.User, error) {
	role := hierarchy.Role(dbUser.Role)
	if !role.IsValid() {
		return nil, errors.Errorf("invalid user role: %q", dbUser.Role)
	}
	language, err := user.NewUILanguage(dbUser.UILanguage)
	if err != nil {
		return nil, err
	}
	return user.New(
		dbUser.Email,
		role,
		user.WithID(dbUser.ID),
		user.WithTenantID(dbUser.TenantID),
		user.WithName(dbUser.FirstName, dbUser.LastName),
		user.WithUILanguage(language),
		user.WithCreatedAt(dbUser.CreatedAt),
		user.WithUpdatedAt(dbUser.UpdatedAt),
	), nil
}

func toDBUser(entity user.User) *models.User {
	return &models.User{
		ID:         entity.ID(),
		TenantID:   entity.TenantID(),
		FirstName:  entity.FirstName(),
		LastName:   entity.LastName(),
		Email:      entity.Email(),
		Role:       string(entity.Role()),
		UILanguage: string(entity.UILanguage()),
		CreatedAt:  entity.CreatedAt(),
		UpdatedAt:  entity.UpdatedAt(),
	}
}
