package hierarchy_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora-hq/planora/pkg/hierarchy"
	"github.com/planora-hq/planora/pkg/itf"
)

func newEnforcer(f *itf.TestEnvironment) *hierarchy.AccessEnforcer {
	return hierarchy.NewAccessEnforcer(f.Stores, f.Stores, f.Entry())
}

func materialize(t *testing.T, f *itf.TestEnvironment, kind hierarchy.EntityKind, userID uint, entityID uuid.UUID, level hierarchy.PermissionLevel) {
	t.Helper()
	require.NoError(t, f.Stores.Upsert(f.Ctx, kind, []hierarchy.MaterializedGrant{
		{UserID: userID, EntityID: entityID, Permission: level},
	}))
}

func TestAccessEnforcer_Authorize(t *testing.T) {
	t.Parallel()

	f := itf.Setup(t)
	enforcer := newEnforcer(f)

	item := planOn()
	f.Stores.PutWorkItem(item)

	reader := hierarchy.Actor{ID: 1, Role: hierarchy.RoleUser}
	editor := hierarchy.Actor{ID: 2, Role: hierarchy.RoleUser}
	owner := hierarchy.Actor{ID: 3, Role: hierarchy.RoleOwner}
	stranger := hierarchy.Actor{ID: 4, Role: hierarchy.RoleUser}

	materialize(t, f, hierarchy.EntityPlan, reader.ID, item.Ref.ID, hierarchy.PermissionRead)
	materialize(t, f, hierarchy.EntityPlan, editor.ID, item.Ref.ID, hierarchy.PermissionEdit)

	t.Run("read satisfies view only", func(t *testing.T) {
		require.NoError(t, enforcer.Authorize(f.Ctx, reader, item.Ref, hierarchy.ActionView))

		err := enforcer.Authorize(f.Ctx, reader, item.Ref, hierarchy.ActionEdit)
		require.Error(t, err)
		assert.True(t, hierarchy.IsAccessDenied(err))
	})

	t.Run("edit satisfies both actions", func(t *testing.T) {
		require.NoError(t, enforcer.Authorize(f.Ctx, editor, item.Ref, hierarchy.ActionView))
		require.NoError(t, enforcer.Authorize(f.Ctx, editor, item.Ref, hierarchy.ActionEdit))
	})

	t.Run("owner needs no materialized row", func(t *testing.T) {
		require.NoError(t, enforcer.Authorize(f.Ctx, owner, item.Ref, hierarchy.ActionEdit))
	})

	t.Run("no row denies", func(t *testing.T) {
		err := enforcer.Authorize(f.Ctx, stranger, item.Ref, hierarchy.ActionView)
		require.Error(t, err)
		assert.True(t, hierarchy.IsAccessDenied(err))
	})

	t.Run("unknown entity", func(t *testing.T) {
		ref := hierarchy.EntityRef{Kind: hierarchy.EntityPlan, ID: uuid.New()}
		err := enforcer.Authorize(f.Ctx, editor, ref, hierarchy.ActionView)
		require.Error(t, err)
		assert.True(t, hierarchy.IsEntityNotFound(err))
		assert.False(t, hierarchy.IsAccessDenied(err))
	})
}

func TestAccessEnforcer_Confidentiality(t *testing.T) {
	t.Parallel()

	f := itf.Setup(t)
	enforcer := newEnforcer(f)

	item := hierarchy.WorkItem{
		Ref:          hierarchy.EntityRef{Kind: hierarchy.EntityCommunication, ID: uuid.New()},
		OwnerIDs:     []uint{10},
		Confidential: true,
	}
	f.Stores.PutWorkItem(item)

	// Full hierarchy access, but neither owner nor team member of this item.
	outsider := hierarchy.Actor{ID: 20, Role: hierarchy.RoleAdmin}
	materialize(t, f, hierarchy.EntityCommunication, outsider.ID, item.Ref.ID, hierarchy.PermissionEdit)

	err := enforcer.Authorize(f.Ctx, outsider, item.Ref, hierarchy.ActionEdit)
	require.Error(t, err)
	assert.True(t, hierarchy.IsAccessDenied(err), "confidentiality restricts even materialized edit")

	itemOwner := hierarchy.Actor{ID: 10, Role: hierarchy.RoleUser}
	materialize(t, f, hierarchy.EntityCommunication, itemOwner.ID, item.Ref.ID, hierarchy.PermissionRead)
	require.NoError(t, enforcer.Authorize(f.Ctx, itemOwner, item.Ref, hierarchy.ActionView))

	tenantOwner := hierarchy.Actor{ID: 30, Role: hierarchy.RoleOwner}
	require.NoError(t, enforcer.Authorize(f.Ctx, tenantOwner, item.Ref, hierarchy.ActionEdit))
}

func TestAccessEnforcer_FilterVisible(t *testing.T) {
	t.Parallel()

	f := itf.Setup(t)
	enforcer := newEnforcer(f)

	visible := planOn()
	noAccess := planOn()
	confidential := hierarchy.WorkItem{
		Ref:          hierarchy.EntityRef{Kind: hierarchy.EntityPlan, ID: uuid.New()},
		OwnerIDs:     []uint{999},
		Confidential: true,
	}
	all := []hierarchy.WorkItem{visible, noAccess, confidential}
	for _, item := range all {
		f.Stores.PutWorkItem(item)
	}

	actor := hierarchy.Actor{ID: 1, Role: hierarchy.RoleUser}
	materialize(t, f, hierarchy.EntityPlan, actor.ID, visible.Ref.ID, hierarchy.PermissionRead)
	materialize(t, f, hierarchy.EntityPlan, actor.ID, confidential.Ref.ID, hierarchy.PermissionEdit)

	got, err := enforcer.FilterVisible(f.Ctx, actor, all)
	require.NoError(t, err)
	require.Len(t, got, 1, "inaccessible and confidential items are dropped, not errored")
	assert.Equal(t, visible.Ref, got[0].Ref)

	t.Run("owner sees everything", func(t *testing.T) {
		got, err := enforcer.FilterVisible(f.Ctx, hierarchy.Actor{ID: 2, Role: hierarchy.RoleOwner}, all)
		require.NoError(t, err)
		assert.Len(t, got, len(all))
	})

	t.Run("empty input", func(t *testing.T) {
		got, err := enforcer.FilterVisible(f.Ctx, actor, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
