package core

import (
	"github.com/planora-hq/planora/modules/core/infrastructure/persistence"
	"github.com/planora-hq/planora/modules/core/services"
	"github.com/planora-hq/planora/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewUserService(persistence.NewUserRepository(), app.EventPublisher()),
		services.NewTenantService(persistence.NewTenantRepository(), app.EventPublisher()),
	)
	return nil
}

func (m *Module) Name() string {
	return "core"
}
