package hierarchy_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/planora-hq/planora/pkg/hierarchy"
)

func TestConfidentialityGuard_IsVisible(t *testing.T) {
	t.Parallel()

	guard := hierarchy.NewConfidentialityGuard()
	item := hierarchy.WorkItem{
		Ref:          hierarchy.EntityRef{Kind: hierarchy.EntityPlan, ID: uuid.New()},
		OwnerIDs:     []uint{1},
		TeamIDs:      []uint{2, 3},
		Confidential: true,
	}

	tests := []struct {
		name    string
		actor   hierarchy.Actor
		item    hierarchy.WorkItem
		visible bool
	}{
		{
			name:    "non-confidential is visible to anyone",
			actor:   hierarchy.Actor{ID: 99, Role: hierarchy.RoleUser},
			item:    hierarchy.WorkItem{Ref: item.Ref},
			visible: true,
		},
		{
			name:    "owner role sees confidential items",
			actor:   hierarchy.Actor{ID: 99, Role: hierarchy.RoleOwner},
			item:    item,
			visible: true,
		},
		{
			name:    "entity owner sees own confidential item",
			actor:   hierarchy.Actor{ID: 1, Role: hierarchy.RoleUser},
			item:    item,
			visible: true,
		},
		{
			name:    "team member sees confidential item",
			actor:   hierarchy.Actor{ID: 3, Role: hierarchy.RoleReadonlyUser},
			item:    item,
			visible: true,
		},
		{
			name:    "outsider is blocked regardless of hierarchy access",
			actor:   hierarchy.Actor{ID: 99, Role: hierarchy.RoleAdmin},
			item:    item,
			visible: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.visible, guard.IsVisible(tt.actor, tt.item))
		})
	}
}
