package repo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/planora-hq/planora/pkg/repo"
)

func TestJoin(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SELECT 1 FROM t WHERE x = $1", repo.Join("SELECT 1 FROM t", "", "WHERE x = $1"))
	assert.Equal(t, "", repo.Join("", " "))
}

func TestJoinWhere(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "WHERE a = $1 AND b = $2", repo.JoinWhere("a = $1", "b = $2"))
	assert.Equal(t, "", repo.JoinWhere())
}

func TestInsert(t *testing.T) {
	t.Parallel()

	q := repo.Insert("plans", []string{"tenant_id", "name"}, "id")
	assert.Equal(t, "INSERT INTO plans (tenant_id, name) VALUES ($1, $2) RETURNING id", q)

	q = repo.Insert("plans", []string{"name"})
	assert.Equal(t, "INSERT INTO plans (name) VALUES ($1)", q)
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	q := repo.Update("plans", []string{"name", "updated_at"}, "id = $3")
	assert.Equal(t, "UPDATE plans SET name = $1, updated_at = $2 WHERE id = $3", q)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	q := repo.Delete("plans", "id = $1", "tenant_id = $2")
	assert.Equal(t, "DELETE FROM plans WHERE id = $1 AND tenant_id = $2", q)
}

func TestFormatLimitOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		limit    int
		offset   int
		expected string
	}{
		{"both", 10, 20, "LIMIT 10 OFFSET 20"},
		{"limit only", 10, 0, "LIMIT 10"},
		{"offset only", 0, 20, "OFFSET 20"},
		{"neither", 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, repo.FormatLimitOffset(tt.limit, tt.offset))
		})
	}
}

func TestBatchInsertQueryN(t *testing.T) {
	t.Parallel()

	q, args := repo.BatchInsertQueryN(
		"INSERT INTO user_area_grants (user_id, node_id) VALUES",
		[][]any{{1, "a"}, {2, "b"}},
	)
	assert.Equal(t, "INSERT INTO user_area_grants (user_id, node_id) VALUES ($1, $2), ($3, $4)", q)
	assert.Equal(t, []any{1, "a", 2, "b"}, args)

	q, args = repo.BatchInsertQueryN("INSERT INTO t (a) VALUES", nil)
	assert.Equal(t, "INSERT INTO t (a) VALUES", q)
	assert.Nil(t, args)
}
