package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora-hq/planora/modules/planning/domain/entities/areagrant"
	"github.com/planora-hq/planora/modules/planning/services"
	"github.com/planora-hq/planora/pkg/hierarchy"
	"github.com/planora-hq/planora/pkg/itf"
)

func TestAreaGrantService_Create(t *testing.T) {
	t.Parallel()

	f := itf.Setup(t)
	fx := newFixture(f)

	admin := hierarchy.Actor{ID: 1, Role: hierarchy.RoleAdmin}
	delegate := hierarchy.Actor{ID: 2, Role: hierarchy.RoleUser}
	outsider := hierarchy.Actor{ID: 3, Role: hierarchy.RoleUser}

	root := seedUnit(t, fx, hierarchy.DimensionBusinessArea, "Commercial", nil)
	branch := seedUnit(t, fx, hierarchy.DimensionBusinessArea, "Retail", ref(root))

	p, err := fx.plan.Create(f.Ctx, newPlan(f.TenantID, "Expansion", branch.ID()))
	require.NoError(t, err)

	t.Run("admin grant materializes existing items", func(t *testing.T) {
		require.NoError(t, fx.area.Create(f.Ctx, admin, areagrant.New(f.TenantID, delegate.ID, root.ID(), hierarchy.PermissionEdit)))

		level, err := f.Stores.Get(f.Ctx, hierarchy.EntityPlan, delegate.ID, p.ID())
		require.NoError(t, err)
		assert.Equal(t, hierarchy.PermissionEdit, level)
	})

	t.Run("edit holder may delegate within the branch", func(t *testing.T) {
		require.NoError(t, fx.area.Create(f.Ctx, delegate, areagrant.New(f.TenantID, outsider.ID, branch.ID(), hierarchy.PermissionRead)))

		level, err := f.Stores.Get(f.Ctx, hierarchy.EntityPlan, outsider.ID, p.ID())
		require.NoError(t, err)
		assert.Equal(t, hierarchy.PermissionRead, level)
	})

	t.Run("no authority means no delegation", func(t *testing.T) {
		err := fx.area.Create(f.Ctx, outsider, areagrant.New(f.TenantID, outsider.ID, root.ID(), hierarchy.PermissionEdit))
		require.Error(t, err)
		assert.True(t, services.IsForbidden(err))
	})
}

func TestAreaGrantService_Revoke(t *testing.T) {
	t.Parallel()

	f := itf.Setup(t)
	fx := newFixture(f)

	admin := hierarchy.Actor{ID: 1, Role: hierarchy.RoleAdmin}
	member := hierarchy.Actor{ID: 2, Role: hierarchy.RoleUser}

	root := seedUnit(t, fx, hierarchy.DimensionBusinessArea, "Commercial", nil)
	other := seedUnit(t, fx, hierarchy.DimensionBusinessArea, "Internal", nil)

	p, err := fx.plan.Create(f.Ctx, newPlan(f.TenantID, "Expansion", root.ID()))
	require.NoError(t, err)
	q, err := fx.plan.Create(f.Ctx, newPlan(f.TenantID, "Audit", other.ID()))
	require.NoError(t, err)

	require.NoError(t, fx.area.Create(f.Ctx, admin, areagrant.New(f.TenantID, member.ID, root.ID(), hierarchy.PermissionEdit)))
	require.NoError(t, fx.area.Create(f.Ctx, admin, areagrant.New(f.TenantID, member.ID, other.ID(), hierarchy.PermissionRead)))

	t.Run("revoking one node keeps the rest", func(t *testing.T) {
		require.NoError(t, fx.area.Revoke(f.Ctx, admin, member.ID, member.Role, []uuid.UUID{root.ID()}))

		level, err := f.Stores.Get(f.Ctx, hierarchy.EntityPlan, member.ID, p.ID())
		require.NoError(t, err)
		assert.Equal(t, hierarchy.PermissionNone, level)

		level, err = f.Stores.Get(f.Ctx, hierarchy.EntityPlan, member.ID, q.ID())
		require.NoError(t, err)
		assert.Equal(t, hierarchy.PermissionRead, level)
	})

	t.Run("only grant managers revoke", func(t *testing.T) {
		err := fx.area.Revoke(f.Ctx, member, member.ID, member.Role, nil)
		require.Error(t, err)
		assert.True(t, services.IsForbidden(err))
	})

	t.Run("empty node list revokes everything", func(t *testing.T) {
		require.NoError(t, fx.area.Revoke(f.Ctx, admin, member.ID, member.Role, nil))

		grants, err := fx.grants.FindByUser(f.Ctx, member.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, grants)
	})
}
