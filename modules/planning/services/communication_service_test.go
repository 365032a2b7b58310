package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora-hq/planora/modules/planning/domain/aggregates/communication"
	"github.com/planora-hq/planora/modules/planning/domain/entities/areagrant"
	"github.com/planora-hq/planora/pkg/hierarchy"
	"github.com/planora-hq/planora/pkg/itf"
)

func TestCommunicationService(t *testing.T) {
	t.Parallel()

	f := itf.Setup(t)
	fx := newFixture(f)

	admin := hierarchy.Actor{ID: 1, Role: hierarchy.RoleAdmin}
	editor := hierarchy.Actor{ID: 2, Role: hierarchy.RoleUser}
	reader := hierarchy.Actor{ID: 3, Role: hierarchy.RoleUser}

	area := seedUnit(t, fx, hierarchy.DimensionBusinessArea, "Commercial", nil)
	require.NoError(t, fx.area.Create(f.Ctx, admin, areagrant.New(f.TenantID, editor.ID, area.ID(), hierarchy.PermissionEdit)))
	require.NoError(t, fx.area.Create(f.Ctx, admin, areagrant.New(f.TenantID, reader.ID, area.ID(), hierarchy.PermissionRead)))

	created, err := fx.comm.Create(f.Ctx, newCommunication(f.TenantID, "Quarterly update", area.ID()))
	require.NoError(t, err)

	t.Run("create materializes its own table", func(t *testing.T) {
		level, err := f.Stores.Get(f.Ctx, hierarchy.EntityCommunication, reader.ID, created.ID())
		require.NoError(t, err)
		assert.Equal(t, hierarchy.PermissionRead, level)
		assert.Zero(t, f.Stores.MaterializedCount(hierarchy.EntityPlan))
	})

	t.Run("sending needs edit authority", func(t *testing.T) {
		_, err := fx.comm.Send(f.Ctx, reader, created.ID())
		require.Error(t, err)
		assert.True(t, hierarchy.IsAccessDenied(err))

		sent, err := fx.comm.Send(f.Ctx, editor, created.ID())
		require.NoError(t, err)
		require.NotNil(t, sent.SentAt())
	})

	t.Run("listing applies visibility", func(t *testing.T) {
		visible, err := fx.comm.GetPaginated(f.Ctx, reader, &communication.FindParams{})
		require.NoError(t, err)
		require.Len(t, visible, 1)

		stranger := hierarchy.Actor{ID: 9, Role: hierarchy.RoleUser}
		visible, err = fx.comm.GetPaginated(f.Ctx, stranger, &communication.FindParams{})
		require.NoError(t, err)
		assert.Empty(t, visible)
	})

	t.Run("delete retracts", func(t *testing.T) {
		_, err := fx.comm.Delete(f.Ctx, editor, created.ID())
		require.NoError(t, err)
		assert.Zero(t, f.Stores.MaterializedCount(hierarchy.EntityCommunication))
	})
}
