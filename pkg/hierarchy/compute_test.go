package hierarchy_test

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora-hq/planora/pkg/hierarchy"
	"github.com/planora-hq/planora/pkg/itf"
)

func TestComputeGrants(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	a, b, c := threeLevels(tenantID)
	d := node(tenantID, &a.ID, "D")

	itemOnC := planOn(c.ID)
	itemOnD := planOn(d.ID)
	untagged := planOn()

	snap := hierarchy.TenantSnapshot{
		Nodes: []hierarchy.Node{a, b, c, d},
		Grants: []hierarchy.Grant{
			{UserID: 1, NodeID: b.ID, Permission: hierarchy.PermissionRead},
			{UserID: 1, NodeID: c.ID, Permission: hierarchy.PermissionEdit},
			{UserID: 2, NodeID: a.ID, Permission: hierarchy.PermissionRead},
			{UserID: 3, NodeID: a.ID, Permission: hierarchy.PermissionEdit},
		},
		Items: []hierarchy.WorkItem{itemOnC, itemOnD, untagged},
		Roles: map[uint]hierarchy.Role{
			1: hierarchy.RoleUser,
			2: hierarchy.RoleUser,
			3: hierarchy.RoleOwner,
		},
	}

	rows := ComputeIndex(hierarchy.ComputeGrants(snap, hierarchy.EntityPlan))

	// User 1: edit on C directly, read via B; max wins for the item on C.
	assert.Equal(t, hierarchy.PermissionEdit, rows[key{1, itemOnC.Ref.ID}])
	// User 1 has nothing covering D's branch.
	assert.NotContains(t, rows, key{1, itemOnD.Ref.ID})
	// User 2's root grant covers both branches.
	assert.Equal(t, hierarchy.PermissionRead, rows[key{2, itemOnC.Ref.ID}])
	assert.Equal(t, hierarchy.PermissionRead, rows[key{2, itemOnD.Ref.ID}])
	// Owner bypass produces no rows.
	assert.NotContains(t, rows, key{3, itemOnC.Ref.ID})
	// Untagged items never materialize.
	for k := range rows {
		assert.NotEqual(t, untagged.Ref.ID, k.entityID)
	}
}

type key struct {
	userID   uint
	entityID uuid.UUID
}

func ComputeIndex(rows []hierarchy.MaterializedGrant) map[key]hierarchy.PermissionLevel {
	out := make(map[key]hierarchy.PermissionLevel, len(rows))
	for _, row := range rows {
		out[key{row.UserID, row.EntityID}] = row.Permission
	}
	return out
}

func newReconciler(f *itf.TestEnvironment) *hierarchy.Reconciler {
	return hierarchy.NewReconciler(
		f.Stores,
		hierarchy.DimensionBusinessArea,
		f.Stores,
		f.Stores,
		f.Stores,
		f.Stores,
		f.Entry(),
	)
}

func TestReconciler_Reconcile(t *testing.T) {
	t.Parallel()

	f := itf.Setup(t)
	a, b, c := threeLevels(f.TenantID)
	businessAreaIndex(f, a, b, c)

	const userID uint = 1
	f.Stores.SetRole(userID, hierarchy.RoleUser)
	require.NoError(t, f.Stores.InsertGrant(f.Ctx, hierarchy.Grant{UserID: userID, NodeID: b.ID, Permission: hierarchy.PermissionRead}))

	item := planOn(c.ID)
	f.Stores.PutWorkItem(item)

	// Seed the table with one unjustified row, one wrong level and one
	// missing row (the justified one for userID is simply absent).
	require.NoError(t, f.Stores.Upsert(f.Ctx, hierarchy.EntityPlan, []hierarchy.MaterializedGrant{
		{UserID: 77, EntityID: item.Ref.ID, Permission: hierarchy.PermissionEdit},
	}))

	reconciler := newReconciler(f)
	require.NoError(t, reconciler.Reconcile(f.Ctx))

	level, err := f.Stores.Get(f.Ctx, hierarchy.EntityPlan, userID, item.Ref.ID)
	require.NoError(t, err)
	assert.Equal(t, hierarchy.PermissionRead, level, "missing row is recreated")

	level, err = f.Stores.Get(f.Ctx, hierarchy.EntityPlan, 77, item.Ref.ID)
	require.NoError(t, err)
	assert.Equal(t, hierarchy.PermissionNone, level, "unjustified row is removed")

	t.Run("downgrade is applied", func(t *testing.T) {
		// Inflate the level past what the grants justify.
		require.NoError(t, f.Stores.Upsert(f.Ctx, hierarchy.EntityPlan, []hierarchy.MaterializedGrant{
			{UserID: userID, EntityID: item.Ref.ID, Permission: hierarchy.PermissionEdit},
		}))
		require.NoError(t, reconciler.Reconcile(f.Ctx))

		level, err := f.Stores.Get(f.Ctx, hierarchy.EntityPlan, userID, item.Ref.ID)
		require.NoError(t, err)
		assert.Equal(t, hierarchy.PermissionRead, level)
	})
}

// TestPropagationConvergence drives the incremental triggers through a
// randomized sequence of grant and tag mutations and checks after every
// settling recompute that the table matches the from-scratch oracle.
func TestPropagationConvergence(t *testing.T) {
	t.Parallel()

	f := itf.Setup(t)
	rng := rand.New(rand.NewSource(1))

	root := node(f.TenantID, nil, "root")
	nodes := []hierarchy.Node{root}
	for i := 0; i < 12; i++ {
		parent := nodes[rng.Intn(len(nodes))]
		nodes = append(nodes, node(f.TenantID, &parent.ID, "n"))
	}
	for _, n := range nodes {
		f.Stores.AddNode(hierarchy.DimensionBusinessArea, n)
	}

	users := []uint{1, 2, 3, 4}
	for _, id := range users {
		f.Stores.SetRole(id, hierarchy.RoleUser)
	}

	var items []hierarchy.WorkItem
	for i := 0; i < 8; i++ {
		item := planOn(nodes[rng.Intn(len(nodes))].ID)
		items = append(items, item)
		f.Stores.PutWorkItem(item)
	}

	propagator := newPropagator(f)
	reconciler := newReconciler(f)
	levels := []hierarchy.PermissionLevel{hierarchy.PermissionRead, hierarchy.PermissionEdit}

	assertConverged := func(step int) {
		snap, err := reconciler.Snapshot(f.Ctx)
		require.NoError(t, err)
		want := ComputeIndex(hierarchy.ComputeGrants(snap, hierarchy.EntityPlan))

		have, err := f.Stores.ListAll(f.Ctx, hierarchy.EntityPlan)
		require.NoError(t, err)
		assert.Equal(t, want, ComputeIndex(have), "step %d", step)
	}

	for step := 0; step < 40; step++ {
		userID := users[rng.Intn(len(users))]
		switch rng.Intn(3) {
		case 0: // new grant
			grant := hierarchy.Grant{
				UserID:     userID,
				NodeID:     nodes[rng.Intn(len(nodes))].ID,
				Permission: levels[rng.Intn(len(levels))],
			}
			require.NoError(t, f.Stores.InsertGrant(f.Ctx, grant))
			require.NoError(t, propagator.OnGrantCreated(f.Ctx, grant.UserID, grant.NodeID))
		case 1: // retract all of the user's grants, then coarse recompute
			require.NoError(t, f.Stores.DeleteGrants(f.Ctx, userID, nil))
			require.NoError(t, propagator.RecomputeUser(f.Ctx, userID, hierarchy.RoleUser))
		case 2: // retag a work item
			item := items[rng.Intn(len(items))]
			item.NodeIDs = []uuid.UUID{nodes[rng.Intn(len(nodes))].ID}
			f.Stores.PutWorkItem(item)
			items[indexOf(items, item.Ref)] = item
			require.NoError(t, propagator.OnNodeTagsChanged(f.Ctx, item.Ref))
		}
		assertConverged(step)
	}

	// A final reconcile over a consistent table must change nothing.
	require.NoError(t, reconciler.Reconcile(f.Ctx))
	assertConverged(-1)
}

func indexOf(items []hierarchy.WorkItem, ref hierarchy.EntityRef) int {
	for i, item := range items {
		if item.Ref == ref {
			return i
		}
	}
	return -1
}
