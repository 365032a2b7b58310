package planning

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/planora-hq/planora/modules/core/domain/aggregates/user"
	"github.com/planora-hq/planora/modules/planning/infrastructure/persistence"
	"github.com/planora-hq/planora/modules/planning/services"
	"github.com/planora-hq/planora/pkg/application"
	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/configuration"
	"github.com/planora-hq/planora/pkg/hierarchy"
	hpersistence "github.com/planora-hq/planora/pkg/hierarchy/persistence"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	trees := hpersistence.NewTreeStore()
	grants := hpersistence.NewGrantStore()
	materialized := hpersistence.NewMaterializedStore()
	items := persistence.NewWorkItemStore()

	logger := logrus.NewEntry(app.Logger())
	areas := hierarchy.NewTreeIndex(trees, hierarchy.DimensionBusinessArea)
	locations := hierarchy.NewTreeIndex(trees, hierarchy.DimensionLocation)
	resolver := hierarchy.NewPermissionResolver(areas, grants)
	propagator := hierarchy.NewPermissionPropagator(areas, grants, items, materialized, logger,
		hierarchy.WithBatchSize(configuration.Use().Hierarchy.PropagationBatchSize))
	enforcer := hierarchy.NewAccessEnforcer(materialized, items, logger)

	unitRepo := persistence.NewOrgUnitRepository()
	grantRepo := persistence.NewAreaGrantRepository()
	planRepo := persistence.NewPlanRepository()
	commRepo := persistence.NewCommunicationRepository()

	app.RegisterServices(
		services.NewOrgUnitService(unitRepo, grantRepo, trees, items, propagator, app.EventPublisher()),
		services.NewAreaGrantService(grantRepo, resolver, propagator, app.EventPublisher()),
		services.NewPlanService(planRepo, enforcer, propagator, app.EventPublisher()),
		services.NewCommunicationService(commRepo, enforcer, propagator, app.EventPublisher()),
		services.NewSearchService(planRepo, commRepo, areas, locations, enforcer),
	)

	// A role change flips the bypass on or off, so the user's materialized
	// rows are rebuilt outside the request that changed the role.
	app.EventPublisher().Subscribe(onRoleChanged(app, propagator))
	return nil
}

func (m *Module) Name() string {
	return "planning"
}

func onRoleChanged(app application.Application, propagator *hierarchy.PermissionPropagator) func(user.UpdatedEvent) {
	return func(event user.UpdatedEvent) {
		if !event.RoleChanged {
			return
		}
		ctx := composables.WithPool(context.Background(), app.DB())
		ctx = composables.WithTenantID(ctx, event.Result.TenantID())
		err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
			return propagator.RecomputeUser(txCtx, event.Result.ID(), event.Result.Role())
		})
		if err != nil {
			app.Logger().WithError(err).
				WithField("user_id", event.Result.ID()).
				Error("failed to rebuild permissions after role change")
		}
	}
}
