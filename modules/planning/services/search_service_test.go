package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora-hq/planora/modules/planning/domain/aggregates/plan"
	"github.com/planora-hq/planora/modules/planning/domain/entities/areagrant"
	"github.com/planora-hq/planora/modules/planning/services"
	"github.com/planora-hq/planora/pkg/hierarchy"
	"github.com/planora-hq/planora/pkg/itf"
)

func TestSearchService_FilterExpansion(t *testing.T) {
	t.Parallel()

	f := itf.Setup(t)
	fx := newFixture(f)

	admin := hierarchy.Actor{ID: 1, Role: hierarchy.RoleAdmin}
	owner := hierarchy.Actor{ID: 2, Role: hierarchy.RoleOwner}

	root := seedUnit(t, fx, hierarchy.DimensionBusinessArea, "Commercial", nil)
	branch := seedUnit(t, fx, hierarchy.DimensionBusinessArea, "Retail", ref(root))
	leaf := seedUnit(t, fx, hierarchy.DimensionBusinessArea, "Stores", ref(branch))
	sibling := seedUnit(t, fx, hierarchy.DimensionBusinessArea, "Internal", nil)

	onRoot, err := fx.plan.Create(f.Ctx, newPlan(f.TenantID, "Strategy", root.ID()))
	require.NoError(t, err)
	onLeaf, err := fx.plan.Create(f.Ctx, newPlan(f.TenantID, "Store rollout", leaf.ID()))
	require.NoError(t, err)
	_, err = fx.plan.Create(f.Ctx, newPlan(f.TenantID, "Audit", sibling.ID()))
	require.NoError(t, err)

	t.Run("mid-level filter reaches both directions", func(t *testing.T) {
		result, err := fx.search.Search(f.Ctx, owner, services.SearchFilter{
			BusinessAreaIDs: []uuid.UUID{branch.ID()},
		})
		require.NoError(t, err)

		ids := hierarchy.NewNodeSet()
		for _, p := range result.Plans {
			ids.Add(p.ID())
		}
		assert.Len(t, result.Plans, 2)
		assert.True(t, ids.Contains(onRoot.ID()))
		assert.True(t, ids.Contains(onLeaf.ID()))
	})

	t.Run("empty filter is no filter", func(t *testing.T) {
		result, err := fx.search.Search(f.Ctx, owner, services.SearchFilter{})
		require.NoError(t, err)
		assert.Len(t, result.Plans, 3)
	})

	t.Run("results honor visibility", func(t *testing.T) {
		member := hierarchy.Actor{ID: 5, Role: hierarchy.RoleUser}
		require.NoError(t, fx.area.Create(f.Ctx, admin, areagrant.New(f.TenantID, member.ID, branch.ID(), hierarchy.PermissionRead)))

		result, err := fx.search.Search(f.Ctx, member, services.SearchFilter{
			BusinessAreaIDs: []uuid.UUID{branch.ID()},
		})
		require.NoError(t, err)

		// The grant on the branch covers the leaf-tagged plan but not the
		// root-tagged one.
		require.Len(t, result.Plans, 1)
		assert.Equal(t, onLeaf.ID(), result.Plans[0].ID())
	})
}

func TestSearchService_Locations(t *testing.T) {
	t.Parallel()

	f := itf.Setup(t)
	fx := newFixture(f)

	owner := hierarchy.Actor{ID: 1, Role: hierarchy.RoleOwner}

	area := seedUnit(t, fx, hierarchy.DimensionBusinessArea, "Commercial", nil)
	country := seedUnit(t, fx, hierarchy.DimensionLocation, "Germany", nil)
	city := seedUnit(t, fx, hierarchy.DimensionLocation, "Berlin", ref(country))

	tagged := plan.New("Berlin launch",
		plan.WithTenantID(f.TenantID),
		plan.WithBusinessAreas([]uuid.UUID{area.ID()}),
		plan.WithLocations([]uuid.UUID{city.ID()}),
		plan.WithTeam([]uint{1}, nil),
	)
	created, err := fx.plan.Create(f.Ctx, tagged)
	require.NoError(t, err)

	_, err = fx.plan.Create(f.Ctx, newPlan(f.TenantID, "Elsewhere", area.ID()))
	require.NoError(t, err)

	_, err = fx.comm.Create(f.Ctx, newCommunication(f.TenantID, "Announce", area.ID()))
	require.NoError(t, err)

	result, err := fx.search.Search(f.Ctx, owner, services.SearchFilter{
		LocationIDs: []uuid.UUID{country.ID()},
	})
	require.NoError(t, err)

	t.Run("location filter expands down the tree", func(t *testing.T) {
		require.Len(t, result.Plans, 1)
		assert.Equal(t, created.ID(), result.Plans[0].ID())
	})

	t.Run("location filter scopes to plans", func(t *testing.T) {
		assert.Empty(t, result.Communications)
	})
}
