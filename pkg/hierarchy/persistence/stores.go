// Package persistence provides the Postgres-backed implementations of the
// hierarchy engine's store interfaces. All repositories read the
// transaction and the tenant from the context; callers run them inside
// composables.InTenantTx or against the pool for plain reads.
package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/hierarchy"
	"github.com/planora-hq/planora/pkg/repo"
)

const (
	orgNodesTable   = "org_nodes"
	areaGrantsTable = "area_grants"
)

// materializedTables maps each entity kind onto its derived grant table.
// The two tables are schema-identical; keeping them apart keeps entity ids
// from different kinds out of each other's indexes.
var materializedTables = map[hierarchy.EntityKind]string{
	hierarchy.EntityPlan:          "plan_grants",
	hierarchy.EntityCommunication: "communication_grants",
}

type PgTreeStore struct{}

func NewTreeStore() *PgTreeStore {
	return &PgTreeStore{}
}

func (s *PgTreeStore) GetNodes(ctx context.Context, dimension hierarchy.Dimension) ([]hierarchy.Node, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	query := repo.Join(
		"SELECT id, tenant_id, parent_id, name",
		"FROM", orgNodesTable,
		"WHERE tenant_id = $1 AND dimension = $2",
	)
	rows, err := tx.Query(ctx, query, tenantID, string(dimension))
	if err != nil {
		return nil, errors.Wrap(err, "query org_nodes")
	}
	defer rows.Close()

	var nodes []hierarchy.Node
	for rows.Next() {
		var n hierarchy.Node
		if err := rows.Scan(&n.ID, &n.TenantID, &n.ParentID, &n.Name); err != nil {
			return nil, errors.Wrap(err, "scan org_nodes")
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

type PgGrantStore struct{}

func NewGrantStore() *PgGrantStore {
	return &PgGrantStore{}
}

func (s *PgGrantStore) FindGrants(ctx context.Context, userID uint, nodeIDs []uuid.UUID) ([]hierarchy.Grant, error) {
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

	query := repo.Join(
		"SELECT user_id, node_id, permission, is_primary",
		"FROM", areaGrantsTable,
		"WHERE tenant_id = $1 AND user_id = $2 AND node_id = ANY($3)",
	)
	rows, err := tx.Query(ctx, query, tenantID, userID, nodeIDs)
	if err != nil {
		return nil, errors.Wrap(err, "query area_grants")
	}
	defer rows.Close()
	return scanGrants(rows)
}

func (s *PgGrantStore) FindGrantsByNodes(ctx context.Context, nodeIDs []uuid.UUID) ([]hierarchy.Grant, error) {
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

	query := repo.Join(
		"SELECT user_id, node_id, permission, is_primary",
		"FROM", areaGrantsTable,
		"WHERE tenant_id = $1 AND node_id = ANY($2)",
	)
	rows, err := tx.Query(ctx, query, tenantID, nodeIDs)
	if err != nil {
		return nil, errors.Wrap(err, "query area_grants by nodes")
	}
	defer rows.Close()
	return scanGrants(rows)
}

func (s *PgGrantStore) ListGrants(ctx context.Context) ([]hierarchy.Grant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	query := repo.Join(
		"SELECT user_id, node_id, permission, is_primary",
		"FROM", areaGrantsTable,
		"WHERE tenant_id = $1",
	)
	rows, err := tx.Query(ctx, query, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "list area_grants")
	}
	defer rows.Close()
	return scanGrants(rows)
}

func (s *PgGrantStore) InsertGrant(ctx context.Context, grant hierarchy.Grant) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	// Duplicate (user, node) pairs collapse onto the strongest permission,
	// mirroring how resolution reads them.
	query := repo.Insert(areaGrantsTable, []string{
		"tenant_id",
		"user_id",
		"node_id",
		"permission",
		"is_primary",
	}) + ` ON CONFLICT (tenant_id, user_id, node_id) DO UPDATE
		SET permission = GREATEST(` + areaGrantsTable + `.permission, EXCLUDED.permission),
		    is_primary = ` + areaGrantsTable + `.is_primary OR EXCLUDED.is_primary`
	if _, err := tx.Exec(ctx, query, tenantID, grant.UserID, grant.NodeID, int(grant.Permission), grant.IsPrimary); err != nil {
		return errors.Wrap(err, "insert area_grants")
	}
	return nil
}

func (s *PgGrantStore) DeleteGrants(ctx context.Context, userID uint, nodeIDs []uuid.UUID) error {
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

func scanGrants(rows pgx.Rows) ([]hierarchy.Grant, error) {
	var grants []hierarchy.Grant
	for rows.Next() {
		var (
			g     hierarchy.Grant
			level int
		)
		if err := rows.Scan(&g.UserID, &g.NodeID, &level, &g.IsPrimary); err != nil {
			return nil, errors.Wrap(err, "scan area_grants")
		}
		g.Permission = hierarchy.PermissionLevel(level)
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

type PgMaterializedStore struct{}

func NewMaterializedStore() *PgMaterializedStore {
	return &PgMaterializedStore{}
}

func (s *PgMaterializedStore) table(kind hierarchy.EntityKind) (string, error) {
	table, ok := materializedTables[kind]
	if !ok {
		return "", errors.Errorf("no materialized table for entity kind %q", kind)
	}
	return table, nil
}

func (s *PgMaterializedStore) Get(ctx context.Context, kind hierarchy.EntityKind, userID uint, entityID uuid.UUID) (hierarchy.PermissionLevel, error) {
	table, err := s.table(kind)
	if err != nil {
		return hierarchy.PermissionNone, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return hierarchy.PermissionNone, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return hierarchy.PermissionNone, err
	}

	query := repo.Join(
		"SELECT COALESCE(MAX(permission), 0)",
		"FROM", table,
		"WHERE tenant_id = $1 AND user_id = $2 AND entity_id = $3",
	)
	var level int
	if err := tx.QueryRow(ctx, query, tenantID, userID, entityID).Scan(&level); err != nil {
		return hierarchy.PermissionNone, errors.Wrap(err, "query materialized grant")
	}
	return hierarchy.PermissionLevel(level), nil
}

func (s *PgMaterializedStore) GetForUser(ctx context.Context, kind hierarchy.EntityKind, userID uint) (map[uuid.UUID]hierarchy.PermissionLevel, error) {
	table, err := s.table(kind)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	query := repo.Join(
		"SELECT entity_id, permission",
		"FROM", table,
		"WHERE tenant_id = $1 AND user_id = $2",
	)
	rows, err := tx.Query(ctx, query, tenantID, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query materialized grants for user")
	}
	defer rows.Close()

	out := map[uuid.UUID]hierarchy.PermissionLevel{}
	for rows.Next() {
		var (
			entityID uuid.UUID
			level    int
		)
		if err := rows.Scan(&entityID, &level); err != nil {
			return nil, errors.Wrap(err, "scan materialized grant")
		}
		out[entityID] = hierarchy.PermissionLevel(level)
	}
	return out, rows.Err()
}

func (s *PgMaterializedStore) ListAll(ctx context.Context, kind hierarchy.EntityKind) ([]hierarchy.MaterializedGrant, error) {
	table, err := s.table(kind)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	query := repo.Join(
		"SELECT user_id, entity_id, permission",
		"FROM", table,
		"WHERE tenant_id = $1",
	)
	rows, err := tx.Query(ctx, query, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "list materialized grants")
	}
	defer rows.Close()

	var out []hierarchy.MaterializedGrant
	for rows.Next() {
		var (
			g     hierarchy.MaterializedGrant
			level int
		)
		if err := rows.Scan(&g.UserID, &g.EntityID, &level); err != nil {
			return nil, errors.Wrap(err, "scan materialized grant")
		}
		g.Permission = hierarchy.PermissionLevel(level)
		out = append(out, g)
	}
	return out, rows.Err()
}

// Upsert writes rows insert-or-upgrade: GREATEST keeps an existing higher
// permission in place, which makes concurrent propagation runs converge.
func (s *PgMaterializedStore) Upsert(ctx context.Context, kind hierarchy.EntityKind, grants []hierarchy.MaterializedGrant) error {
	if len(grants) == 0 {
		return nil
	}
	table, err := s.table(kind)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	values := make([][]any, 0, len(grants))
	for _, g := range grants {
		values = append(values, []any{tenantID, g.UserID, g.EntityID, int(g.Permission)})
	}
	prefix := "INSERT INTO " + table + " (tenant_id, user_id, entity_id, permission) VALUES"
	query, args := repo.BatchInsertQueryN(prefix, values)
	query += ` ON CONFLICT (tenant_id, user_id, entity_id) DO UPDATE
		SET permission = GREATEST(` + table + `.permission, EXCLUDED.permission)`
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return errors.Wrap(err, "upsert materialized grants")
	}
	return nil
}

func (s *PgMaterializedStore) DeleteRows(ctx context.Context, kind hierarchy.EntityKind, rows []hierarchy.MaterializedGrant) error {
	if len(rows) == 0 {
		return nil
	}
	table, err := s.table(kind)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	query := repo.Delete(table, "tenant_id = $1", "user_id = $2", "entity_id = $3")
	for _, row := range rows {
		if _, err := tx.Exec(ctx, query, tenantID, row.UserID, row.EntityID); err != nil {
			return errors.Wrap(err, "delete materialized grant")
		}
	}
	return nil
}

func (s *PgMaterializedStore) DeleteByEntity(ctx context.Context, kind hierarchy.EntityKind, entityID uuid.UUID) error {
	table, err := s.table(kind)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	query := repo.Delete(table, "tenant_id = $1", "entity_id = $2")
	if _, err := tx.Exec(ctx, query, tenantID, entityID); err != nil {
		return errors.Wrap(err, "delete materialized grants for entity")
	}
	return nil
}

func (s *PgMaterializedStore) DeleteByUser(ctx context.Context, kind hierarchy.EntityKind, userID uint) error {
	table, err := s.table(kind)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	query := repo.Delete(table, "tenant_id = $1", "user_id = $2")
	if _, err := tx.Exec(ctx, query, tenantID, userID); err != nil {
		return errors.Wrap(err, "delete materialized grants for user")
	}
	return nil
}
