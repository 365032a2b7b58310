package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/planora-hq/planora/modules/planning/domain/entities/orgunit"
	"github.com/planora-hq/planora/modules/planning/infrastructure/persistence/models"
	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/hierarchy"
	"github.com/planora-hq/planora/pkg/repo"
)

var (
	ErrOrgUnitNotFound = errors.New("org unit not found")
)

const (
	orgNodesTable = "org_nodes"

	orgUnitFindQuery = `
        SELECT
            n.id,
            n.tenant_id,
            n.parent_id,
            n.dimension,
            n.name,
            n.created_at,
            n.updated_at
        FROM org_nodes n`
)

type PgOrgUnitRepository struct{}

func NewOrgUnitRepository() orgunit.Repository {
	return &PgOrgUnitRepository{}
}

func (r *PgOrgUnitRepository) queryUnits(ctx context.Context, query string, args ...interface{}) ([]orgunit.OrgUnit, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query org_nodes")
	}
	defer rows.Close()

	var out []orgunit.OrgUnit
	for rows.Next() {
		var m models.OrgNode
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.ParentID,
			&m.Dimension,
			&m.Name,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan org_nodes")
		}
		out = append(out, toDomainOrgUnit(&m))
	}
	return out, rows.Err()
}

func (r *PgOrgUnitRepository) GetByID(ctx context.Context, id uuid.UUID) (orgunit.OrgUnit, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return orgunit.OrgUnit{}, err
	}
	units, err := r.queryUnits(ctx, repo.Join(orgUnitFindQuery, "WHERE n.tenant_id = $1 AND n.id = $2"), tenantID, id)
	if err != nil {
		return orgunit.OrgUnit{}, err
	}
	if len(units) == 0 {
		return orgunit.OrgUnit{}, ErrOrgUnitNotFound
	}
	return units[0], nil
}

func (r *PgOrgUnitRepository) GetAll(ctx context.Context, dimension hierarchy.Dimension) ([]orgunit.OrgUnit, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return r.queryUnits(ctx,
		repo.Join(orgUnitFindQuery, "WHERE n.tenant_id = $1 AND n.dimension = $2 ORDER BY n.name"),
		tenantID, string(dimension),
	)
}

func (r *PgOrgUnitRepository) GetChildren(ctx context.Context, parentID uuid.UUID) ([]orgunit.OrgUnit, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return r.queryUnits(ctx,
		repo.Join(orgUnitFindQuery, "WHERE n.tenant_id = $1 AND n.parent_id = $2 ORDER BY n.name"),
		tenantID, parentID,
	)
}

func (r *PgOrgUnitRepository) GetRoots(ctx context.Context, dimension hierarchy.Dimension) ([]orgunit.OrgUnit, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return r.queryUnits(ctx,
		repo.Join(orgUnitFindQuery, "WHERE n.tenant_id = $1 AND n.dimension = $2 AND n.parent_id IS NULL ORDER BY n.name"),
		tenantID, string(dimension),
	)
}

func (r *PgOrgUnitRepository) Create(ctx context.Context, unit orgunit.OrgUnit) (orgunit.OrgUnit, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return orgunit.OrgUnit{}, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return orgunit.OrgUnit{}, err
	}

	m := toDBOrgUnit(unit)
	fields := []string{"id", "tenant_id", "parent_id", "dimension", "name", "created_at", "updated_at"}
	query := repo.Insert(orgNodesTable, fields)
	if _, err := tx.Exec(ctx, query, m.ID, tenantID, m.ParentID, m.Dimension, m.Name, m.CreatedAt, m.UpdatedAt); err != nil {
		return orgunit.OrgUnit{}, errors.Wrap(err, "insert org_nodes")
	}
	return r.GetByID(ctx, m.ID)
}

func (r *PgOrgUnitRepository) Update(ctx context.Context, unit orgunit.OrgUnit) (orgunit.OrgUnit, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return orgunit.OrgUnit{}, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return orgunit.OrgUnit{}, err
	}

	m := toDBOrgUnit(unit)
	query := repo.Update(orgNodesTable, []string{"parent_id", "name", "updated_at"}, "id = $4", "tenant_id = $5")
	tag, err := tx.Exec(ctx, query, m.ParentID, m.Name, m.UpdatedAt, m.ID, tenantID)
	if err != nil {
		return orgunit.OrgUnit{}, errors.Wrap(err, "update org_nodes")
	}
	if tag.RowsAffected() == 0 {
		return orgunit.OrgUnit{}, ErrOrgUnitNotFound
	}
	return r.GetByID(ctx, m.ID)
}

func (r *PgOrgUnitRepository) Delete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	query := repo.Delete(orgNodesTable, "tenant_id = $1", "id = ANY($2)")
	if _, err := tx.Exec(ctx, query, tenantID, ids); err != nil {
		return errors.Wrap(err, "delete org_nodes")
	}
	return nil
}
