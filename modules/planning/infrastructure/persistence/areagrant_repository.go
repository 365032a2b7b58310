package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/planora-hq/planora/modules/planning/domain/entities/areagrant"
	"github.com/planora-hq/planora/modules/planning/infrastructure/persistence/models"
	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/repo"
)

const (
	areaGrantsTable = "area_grants"

	areaGrantFindQuery = `
        SELECT
            g.tenant_id,
            g.user_id,
            g.node_id,
            g.permission,
            g.is_primary,
            g.created_at
        FROM area_grants g`
)

type PgAreaGrantRepository struct{}

func NewAreaGrantRepository() areagrant.Repository {
	return &PgAreaGrantRepository{}
}

func scanAreaGrants(rows pgx.Rows) ([]areagrant.AreaGrant, error) {
	var out []areagrant.AreaGrant
	for rows.Next() {
		var m models.AreaGrant
		if err := rows.Scan(&m.TenantID, &m.UserID, &m.NodeID, &m.Permission, &m.IsPrimary, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan area_grants")
		}
		out = append(out, toDomainAreaGrant(&m))
	}
	return out, rows.Err()
}

func (r *PgAreaGrantRepository) FindByUser(ctx context.Context, userID uint, nodeIDs []uuid.UUID) ([]areagrant.AreaGrant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	query := repo.Join(areaGrantFindQuery, "WHERE g.tenant_id = $1 AND g.user_id = $2")
	args := []interface{}{tenantID, userID}
	if nodeIDs != nil {
		query += " AND g.node_id = ANY($3)"
		args = append(args, nodeIDs)
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query area_grants by user")
	}
	defer rows.Close()
	return scanAreaGrants(rows)
}

func (r *PgAreaGrantRepository) FindByNodes(ctx context.Context, nodeIDs []uuid.UUID) ([]areagrant.AreaGrant, error) {
	if len(nodeIDs) == 0 {
		return nil, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx,
		repo.Join(areaGrantFindQuery, "WHERE g.tenant_id = $1 AND g.node_id = ANY($2)"),
		tenantID, nodeIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query area_grants by nodes")
	}
	defer rows.Close()
	return scanAreaGrants(rows)
}

func (r *PgAreaGrantRepository) Create(ctx context.Context, grant areagrant.AreaGrant) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	fields := []string{"tenant_id", "user_id", "node_id", "permission", "is_primary", "created_at"}
	query := repo.Insert(areaGrantsTable, fields) + ` ON CONFLICT (tenant_id, user_id, node_id) DO UPDATE
		SET permission = GREATEST(` + areaGrantsTable + `.permission, EXCLUDED.permission),
		    is_primary = ` + areaGrantsTable + `.is_primary OR EXCLUDED.is_primary`
	_, err = tx.Exec(ctx, query,
		tenantID,
		int64(grant.UserID()),
		grant.NodeID(),
		int(grant.Permission()),
		grant.IsPrimary(),
		grant.CreatedAt(),
	)
	if err != nil {
		return errors.Wrap(err, "insert area_grants")
	}
	return nil
}

func (r *PgAreaGrantRepository) Delete(ctx context.Context, userID uint, nodeIDs []uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	if len(nodeIDs) == 0 {
		query := repo.Delete(areaGrantsTable, "tenant_id = $1", "user_id = $2")
		if _, err := tx.Exec(ctx, query, tenantID, userID); err != nil {
			return errors.Wrap(err, "delete area_grants for user")
		}
		return nil
	}
	query := repo.Delete(areaGrantsTable, "tenant_id = $1", "user_id = $2", "node_id = ANY($3)")
	if _, err := tx.Exec(ctx, query, tenantID, userID, nodeIDs); err != nil {
		return errors.Wrap(err, "delete area_grants")
	}
	return nil
}

func (r *PgAreaGrantRepository) DeleteByNodes(ctx context.Context, nodeIDs []uuid.UUID) error {
	if len(nodeIDs) == 0 {
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
	query := repo.Delete(areaGrantsTable, "tenant_id = $1", "node_id = ANY($2)")
	if _, err := tx.Exec(ctx, query, tenantID, nodeIDs); err != nil {
		return errors.Wrap(err, "delete area_grants by nodes")
	}
	return nil
}
