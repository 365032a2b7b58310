package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/planora-hq/planora/modules/core/domain/entities/tenant"
	"github.com/planora-hq/planora/modules/core/infrastructure/persistence/models"
	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/repo"
)

var (
	ErrTenantNotFound = errors.New("tenant not found")
)

const (
	tenantsTable = "tenants"

	tenantFindQuery = `
        SELECT
            t.id,
            t.name,
            t.domain,
            t.is_active,
            t.created_at,
            t.updated_at
        FROM tenants t`
)

// Tenants are the isolation boundary itself, so queries here do not
// take the tenant from the context.
type PgTenantRepository struct{}

func NewTenantRepository() tenant.Repository {
	return &PgTenantRepository{}
}

func (g *PgTenantRepository) queryTenants(ctx context.Context, query string, args ...interface{}) ([]*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query tenants")
	}
	defer rows.Close()

	var out []*tenant.Tenant
	for rows.Next() {
		var m models.Tenant
		if err := rows.Scan(
			&m.ID,
			&m.Name,
			&m.Domain,
			&m.IsActive,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan tenants")
		}
		out = append(out, toDomainTenant(&m))
	}
	return out, rows.Err()
}

func (g *PgTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	tenants, err := g.queryTenants(ctx, repo.Join(tenantFindQuery, "WHERE t.id = $1"), id)
	if err != nil {
		return nil, err
	}
	if len(tenants) == 0 {
		return nil, ErrTenantNotFound
	}
	return tenants[0], nil
}

func (g *PgTenantRepository) List(ctx context.Context) ([]*tenant.Tenant, error) {
	return g.queryTenants(ctx, repo.Join(tenantFindQuery, "ORDER BY t.name, t.id"))
}

func (g *PgTenantRepository) Create(ctx context.Context, data *tenant.Tenant) (*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	dbTenant := toDBTenant(data)
	now := time.Now()
	fields := []string{"id", "name", "domain", "is_active", "created_at", "updated_at"}
	args := []interface{}{dbTenant.ID, dbTenant.Name, dbTenant.Domain, dbTenant.IsActive, now, now}

	query := repo.Insert(tenantsTable, fields, "id")
	var id uuid.UUID
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return nil, errors.Wrap(err, "insert tenants")
	}
	return g.GetByID(ctx, id)
}

func (g *PgTenantRepository) Update(ctx context.Context, data *tenant.Tenant) (*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	dbTenant := toDBTenant(data)
	fields := []string{"name", "domain", "is_active", "updated_at"}
	query := repo.Update(tenantsTable, fields, "id = $5")
	tag, err := tx.Exec(ctx, query,
		dbTenant.Name,
		dbTenant.Domain,
		dbTenant.IsActive,
		time.Now(),
		dbTenant.ID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "update tenants")
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrTenantNotFound
	}
	return g.GetByID(ctx, dbTenant.ID)
}
