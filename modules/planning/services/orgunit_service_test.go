package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora-hq/planora/modules/planning/domain/entities/areagrant"
	"github.com/planora-hq/planora/modules/planning/domain/entities/orgunit"
	"github.com/planora-hq/planora/modules/planning/services"
	"github.com/planora-hq/planora/pkg/hierarchy"
	"github.com/planora-hq/planora/pkg/itf"
)

// seedUnit inserts a unit through the repository fake, bypassing the
// service so no implicit creator grant is planted.
func seedUnit(t *testing.T, fx *fixture, dimension hierarchy.Dimension, name string, parentID *uuid.UUID) orgunit.OrgUnit {
	t.Helper()
	unit, err := fx.units.Create(fx.env.Ctx, orgunit.New(fx.env.TenantID, dimension, name, parentID))
	require.NoError(t, err)
	return unit
}

func ref(unit orgunit.OrgUnit) *uuid.UUID {
	id := unit.ID()
	return &id
}

func TestOrgUnitService_Create(t *testing.T) {
	t.Parallel()

	f := itf.Setup(t)
	fx := newFixture(f)

	admin := hierarchy.Actor{ID: 1, Role: hierarchy.RoleAdmin}
	member := hierarchy.Actor{ID: 2, Role: hierarchy.RoleUser}

	t.Run("creator receives implicit edit grant", func(t *testing.T) {
		created, err := fx.orgUnits.Create(f.Ctx, admin, orgunit.New(f.TenantID, hierarchy.DimensionBusinessArea, "Commercial", nil))
		require.NoError(t, err)

		grants, err := f.Stores.FindGrants(f.Ctx, admin.ID, []uuid.UUID{created.ID()})
		require.NoError(t, err)
		require.Len(t, grants, 1)
		assert.Equal(t, hierarchy.PermissionEdit, grants[0].Permission)
		assert.True(t, grants[0].IsPrimary)
	})

	t.Run("location units carry no grants", func(t *testing.T) {
		created, err := fx.orgUnits.Create(f.Ctx, admin, orgunit.New(f.TenantID, hierarchy.DimensionLocation, "Berlin", nil))
		require.NoError(t, err)

		grants, err := f.Stores.FindGrants(f.Ctx, admin.ID, []uuid.UUID{created.ID()})
		require.NoError(t, err)
		assert.Empty(t, grants)
	})

	t.Run("regular member may not edit the tree", func(t *testing.T) {
		_, err := fx.orgUnits.Create(f.Ctx, member, orgunit.New(f.TenantID, hierarchy.DimensionBusinessArea, "Rogue", nil))
		require.Error(t, err)
		assert.True(t, services.IsForbidden(err))
	})

	t.Run("parent must share the dimension", func(t *testing.T) {
		location := seedUnit(t, fx, hierarchy.DimensionLocation, "Hamburg", nil)
		_, err := fx.orgUnits.Create(f.Ctx, admin, orgunit.New(f.TenantID, hierarchy.DimensionBusinessArea, "Misplaced", ref(location)))
		require.Error(t, err)
	})
}

func TestOrgUnitService_Reparent(t *testing.T) {
	t.Parallel()

	f := itf.Setup(t)
	fx := newFixture(f)

	admin := hierarchy.Actor{ID: 1, Role: hierarchy.RoleAdmin}
	memberID := uint(7)

	root := seedUnit(t, fx, hierarchy.DimensionBusinessArea, "Commercial", nil)
	branch := seedUnit(t, fx, hierarchy.DimensionBusinessArea, "Retail", ref(root))
	leaf := seedUnit(t, fx, hierarchy.DimensionBusinessArea, "Stores", ref(branch))

	t.Run("rejects cycles", func(t *testing.T) {
		_, err := fx.orgUnits.Reparent(f.Ctx, admin, branch.ID(), ref(leaf))
		require.Error(t, err)
	})

	t.Run("moved subtree loses inherited access", func(t *testing.T) {
		// Grant on the root covers a plan tagged on the leaf.
		require.NoError(t, fx.area.Create(f.Ctx, admin, areagrant.New(f.TenantID, memberID, root.ID(), hierarchy.PermissionRead)))

		p, err := fx.plan.Create(f.Ctx, newPlan(f.TenantID, "Expansion", leaf.ID()))
		require.NoError(t, err)

		level, err := f.Stores.Get(f.Ctx, hierarchy.EntityPlan, memberID, p.ID())
		require.NoError(t, err)
		require.Equal(t, hierarchy.PermissionRead, level)

		// Moving the branch to the top level breaks the chain to the
		// granted root.
		_, err = fx.orgUnits.Reparent(f.Ctx, admin, branch.ID(), nil)
		require.NoError(t, err)

		level, err = f.Stores.Get(f.Ctx, hierarchy.EntityPlan, memberID, p.ID())
		require.NoError(t, err)
		assert.Equal(t, hierarchy.PermissionNone, level)
	})
}

func TestOrgUnitService_Delete(t *testing.T) {
	t.Parallel()

	f := itf.Setup(t)
	fx := newFixture(f)

	admin := hierarchy.Actor{ID: 1, Role: hierarchy.RoleAdmin}
	memberID := uint(7)

	root := seedUnit(t, fx, hierarchy.DimensionBusinessArea, "Commercial", nil)
	branch := seedUnit(t, fx, hierarchy.DimensionBusinessArea, "Retail", ref(root))

	require.NoError(t, fx.area.Create(f.Ctx, admin, areagrant.New(f.TenantID, memberID, root.ID(), hierarchy.PermissionEdit)))

	p, err := fx.plan.Create(f.Ctx, newPlan(f.TenantID, "Expansion", branch.ID()))
	require.NoError(t, err)

	deleted, err := fx.orgUnits.Delete(f.Ctx, admin, root.ID())
	require.NoError(t, err)
	assert.Equal(t, root.ID(), deleted.ID())

	t.Run("cascades to descendants", func(t *testing.T) {
		_, err := fx.units.GetByID(f.Ctx, branch.ID())
		require.Error(t, err)
	})

	t.Run("grants on the subtree are gone", func(t *testing.T) {
		grants, err := fx.grants.FindByUser(f.Ctx, memberID, nil)
		require.NoError(t, err)
		assert.Empty(t, grants)
	})

	t.Run("materialized rows are retracted", func(t *testing.T) {
		level, err := f.Stores.Get(f.Ctx, hierarchy.EntityPlan, memberID, p.ID())
		require.NoError(t, err)
		assert.Equal(t, hierarchy.PermissionNone, level)
	})
}
