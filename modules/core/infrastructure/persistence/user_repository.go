package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"github.com/planora-hq/planora/modules/core/domain/aggregates/user"
	"github.com/planora-hq/planora/modules/core/infrastructure/persistence/models"
	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/hierarchy"
	"github.com/planora-hq/planora/pkg/repo"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

const (
	usersTable = "users"

	userFindQuery = `
        SELECT
            u.id,
            u.tenant_id,
            u.first_name,
            u.last_name,
            u.email,
            u.role,
            u.ui_language,
            u.created_at,
            u.updated_at
        FROM users u`

	userCountQuery = `SELECT COUNT(u.id) FROM users u`

	userRolesQuery = `SELECT id, role FROM users WHERE tenant_id = $1`
)

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

func (g *PgUserRepository) buildFilters(ctx context.Context, params *user.FindParams) ([]string, []interface{}, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get tenant from context")
	}

	where := []string{"u.tenant_id = $1"}
	args := []interface{}{tenantID}

	if params != nil && params.Q != "" {
		args = append(args, "%"+params.Q+"%")
		idx := len(args)
		where = append(where, fmt.Sprintf(
			"(u.first_name ILIKE $%d OR u.last_name ILIKE $%d OR u.email ILIKE $%d)",
			idx, idx, idx,
		))
	}
	if params != nil && params.Role != "" {
		args = append(args, string(params.Role))
		where = append(where, fmt.Sprintf("u.role = $%d", len(args)))
	}
	return where, args, nil
}

func (g *PgUserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query users")
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		var m models.User
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.FirstName,
			&m.LastName,
			&m.Email,
			&m.Role,
			&m.UILanguage,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan users")
		}
		entity, err := toDomainUser(&m)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, rows.Err()
}

func (g *PgUserRepository) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, error) {
	where, args, err := g.buildFilters(ctx, params)
	if err != nil {
		return nil, err
	}
	limit, offset := 0, 0
	if params != nil {
		limit, offset = params.Limit, params.Offset
	}
	query := repo.Join(
		userFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY u.last_name, u.first_name, u.id",
		repo.FormatLimitOffset(limit, offset),
	)
	return g.queryUsers(ctx, query, args...)
}

func (g *PgUserRepository) Count(ctx context.Context, params *user.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args, err := g.buildFilters(ctx, params)
	if err != nil {
		return 0, err
	}
	query := repo.Join(userCountQuery, repo.JoinWhere(where...))
	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count users")
	}
	return count, nil
}

func (g *PgUserRepository) GetByID(ctx context.Context, id uint) (user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	users, err := g.queryUsers(ctx, repo.Join(userFindQuery, "WHERE u.tenant_id = $1 AND u.id = $2"), tenantID, id)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	users, err := g.queryUsers(ctx, repo.Join(userFindQuery, "WHERE u.tenant_id = $1 AND u.email = $2"), tenantID, email)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) Create(ctx context.Context, data user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	dbUser := toDBUser(data)
	now := time.Now()
	fields := []string{"tenant_id", "first_name", "last_name", "email", "role", "ui_language", "created_at", "updated_at"}
	args := []interface{}{tenantID, dbUser.FirstName, dbUser.LastName, dbUser.Email, dbUser.Role, dbUser.UILanguage, now, now}

	query := repo.Insert(usersTable, fields, "id")
	var id uint
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return nil, errors.Wrap(err, "insert users")
	}
	return g.GetByID(ctx, id)
}

func (g *PgUserRepository) Update(ctx context.Context, data user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	dbUser := toDBUser(data)
	fields := []string{"first_name", "last_name", "email", "role", "ui_language", "updated_at"}
	query := repo.Update(usersTable, fields, "id = $7", "tenant_id = $8")
	tag, err := tx.Exec(ctx, query,
		dbUser.FirstName,
		dbUser.LastName,
		dbUser.Email,
		dbUser.Role,
		dbUser.UILanguage,
		time.Now(),
		dbUser.ID,
		tenantID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "update users")
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrUserNotFound
	}
	return g.GetByID(ctx, dbUser.ID)
}

func (g *PgUserRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, repo.Delete(usersTable, "id = $1", "tenant_id = $2"), id, tenantID)
	if err != nil {
		return errors.Wrap(err, "delete users")
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (g *PgUserRepository) ListRoles(ctx context.Context) (map[uint]hierarchy.Role, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, userRolesQuery, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "query user roles")
	}
	defer rows.Close()

	out := map[uint]hierarchy.Role{}
	for rows.Next() {
		var (
			id   uint
			role string
		)
		if err := rows.Scan(&id, &role); err != nil {
			return nil, errors.Wrap(err, "scan user roles")
		}
		out[id] = hierarchy.Role(role)
	}
	return out, rows.Err()
}
