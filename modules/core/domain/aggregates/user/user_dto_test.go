package user_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora-hq/planora/modules/core/domain/aggregates/user"
	"github.com/planora-hq/planora/pkg/hierarchy"
)

func TestCreateDTO_Ok(t *testing.T) {
	t.Run("valid input normalizes and passes", func(t *testing.T) {
		dto := user.CreateDTO{
			FirstName: "  Ada ",
			LastName:  "Lovelace",
			Email:     " Ada@Example.COM ",
			Role:      string(hierarchy.RoleUser),
		}
		fieldErrors, ok := dto.Ok()
		require.True(t, ok, "unexpected errors: %v", fieldErrors)
		assert.Equal(t, "ada@example.com", dto.Email)
		assert.Equal(t, "Ada", dto.FirstName)
		assert.Equal(t, string(user.UILanguageEN), dto.UILanguage)
	})

	t.Run("missing fields are reported per field", func(t *testing.T) {
		dto := user.CreateDTO{Role: string(hierarchy.RoleAdmin)}
		fieldErrors, ok := dto.Ok()
		require.False(t, ok)
		assert.Contains(t, fieldErrors, "FirstName")
		assert.Contains(t, fieldErrors, "LastName")
		assert.Contains(t, fieldErrors, "Email")
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		dto := user.CreateDTO{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Role:      "superuser",
		}
		fieldErrors, ok := dto.Ok()
		require.False(t, ok)
		assert.Contains(t, fieldErrors, "Role")
	})

	t.Run("unknown language is rejected", func(t *testing.T) {
		dto := user.CreateDTO{
			FirstName:  "Ada",
			LastName:   "Lovelace",
			Email:      "ada@example.com",
			Role:       string(hierarchy.RoleReadonlyUser),
			UILanguage: "xx",
		}
		fieldErrors, ok := dto.Ok()
		require.False(t, ok)
		assert.Contains(t, fieldErrors, "UILanguage")
	})
}

func TestCreateDTO_ToEntity(t *testing.T) {
	tenantID := uuid.New()
	dto := user.CreateDTO{
		FirstName:  "Grace",
		LastName:   "Hopper",
		Email:      "grace@example.com",
		Role:       string(hierarchy.RoleAdmin),
		UILanguage: string(user.UILanguageDE),
	}
	_, ok := dto.Ok()
	require.True(t, ok)

	entity := dto.ToEntity(tenantID)
	assert.Equal(t, tenantID, entity.TenantID())
	assert.Equal(t, "grace@example.com", entity.Email())
	assert.Equal(t, hierarchy.RoleAdmin, entity.Role())
	assert.Equal(t, user.UILanguageDE, entity.UILanguage())
}
