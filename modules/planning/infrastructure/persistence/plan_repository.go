package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/planora-hq/planora/modules/planning/domain/aggregates/plan"
	"github.com/planora-hq/planora/modules/planning/infrastructure/persistence/models"
	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/repo"
)

var (
	ErrPlanNotFound = errors.New("plan not found")
)

const (
	plansTable = "plans"

	planFindQuery = `
        SELECT
            p.id,
            p.tenant_id,
            p.title,
            p.description,
            p.status,
            p.business_area_ids,
            p.location_ids,
            p.owner_ids,
            p.team_ids,
            p.confidential,
            p.starts_on,
            p.ends_on,
            p.created_at,
            p.updated_at
        FROM plans p`

	planCountQuery = `SELECT COUNT(p.id) FROM plans p`
)

type PgPlanRepository struct{}

func NewPlanRepository() plan.Repository {
	return &PgPlanRepository{}
}

func (r *PgPlanRepository) buildFilters(ctx context.Context, params *plan.FindParams) ([]string, []interface{}, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get tenant from context")
	}

	where := []string{"p.tenant_id = $1"}
	args := []interface{}{tenantID}

	if params != nil && params.Q != "" {
		args = append(args, "%"+params.Q+"%")
		idx := len(args)
		where = append(where, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", idx, idx))
	}
	if params != nil && len(params.NodeIDs) > 0 {
		args = append(args, params.NodeIDs)
		where = append(where, fmt.Sprintf("p.business_area_ids && $%d", len(args)))
	}
	if params != nil && len(params.LocationIDs) > 0 {
		args = append(args, params.LocationIDs)
		where = append(where, fmt.Sprintf("p.location_ids && $%d", len(args)))
	}
	if params != nil && params.Status != "" {
		args = append(args, string(params.Status))
		where = append(where, fmt.Sprintf("p.status = $%d", len(args)))
	}
	return where, args, nil
}

func (r *PgPlanRepository) queryPlans(ctx context.Context, query string, args ...interface{}) ([]plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query plans")
	}
	defer rows.Close()

	var out []plan.Plan
	for rows.Next() {
		var m models.Plan
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.Title,
			&m.Description,
			&m.Status,
			&m.BusinessAreaIDs,
			&m.LocationIDs,
			&m.OwnerIDs,
			&m.TeamIDs,
			&m.Confidential,
			&m.StartsOn,
			&m.EndsOn,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan plans")
		}
		out = append(out, toDomainPlan(&m))
	}
	return out, rows.Err()
}

func (r *PgPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (plan.Plan, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	plans, err := r.queryPlans(ctx, repo.Join(planFindQuery, "WHERE p.tenant_id = $1 AND p.id = $2"), tenantID, id)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, ErrPlanNotFound
	}
	return plans[0], nil
}

func (r *PgPlanRepository) GetPaginated(ctx context.Context, params *plan.FindParams) ([]plan.Plan, error) {
	where, args, err := r.buildFilters(ctx, params)
	if err != nil {
		return nil, err
	}
	limit, offset := 0, 0
	if params != nil {
		limit, offset = params.Limit, params.Offset
	}
	query := repo.Join(
		planFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY p.created_at DESC, p.id",
		repo.FormatLimitOffset(limit, offset),
	)
	return r.queryPlans(ctx, query, args...)
}

func (r *PgPlanRepository) Count(ctx context.Context, params *plan.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args, err := r.buildFilters(ctx, params)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, repo.Join(planCountQuery, repo.JoinWhere(where...)), args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count plans")
	}
	return count, nil
}

func planFields() []string {
	return []string{
		"id",
		"tenant_id",
		"title",
		"description",
		"status",
		"business_area_ids",
		"location_ids",
		"owner_ids",
		"team_ids",
		"confidential",
		"starts_on",
		"ends_on",
		"created_at",
		"updated_at",
	}
}

func planArgs(m *models.Plan, tenantID uuid.UUID) []interface{} {
	return []interface{}{
		m.ID,
		tenantID,
		m.Title,
		m.Description,
		m.Status,
		m.BusinessAreaIDs,
		m.LocationIDs,
		m.OwnerIDs,
		m.TeamIDs,
		m.Confidential,
		m.StartsOn,
		m.EndsOn,
		m.CreatedAt,
		m.UpdatedAt,
	}
}

func (r *PgPlanRepository) Create(ctx context.Context, data plan.Plan) (plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	m := toDBPlan(data)
	query := repo.Insert(plansTable, planFields())
	if _, err := tx.Exec(ctx, query, planArgs(m, tenantID)...); err != nil {
		return nil, errors.Wrap(err, "insert plans")
	}
	return r.GetByID(ctx, m.ID)
}

func (r *PgPlanRepository) Update(ctx context.Context, data plan.Plan) (plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	m := toDBPlan(data)
	fields := []string{
		"title",
		"description",
		"status",
		"business_area_ids",
		"location_ids",
		"owner_ids",
		"team_ids",
		"confidential",
		"starts_on",
		"ends_on",
		"updated_at",
	}
	query := repo.Update(plansTable, fields, "id = $12", "tenant_id = $13")
	tag, err := tx.Exec(ctx, query,
		m.Title,
		m.Description,
		m.Status,
		m.BusinessAreaIDs,
		m.LocationIDs,
		m.OwnerIDs,
		m.TeamIDs,
		m.Confidential,
		m.StartsOn,
		m.EndsOn,
		time.Now(),
		m.ID,
		tenantID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "update plans")
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrPlanNotFound
	}
	return r.GetByID(ctx, m.ID)
}

func (r *PgPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, repo.Delete(plansTable, "id = $1", "tenant_id = $2"), id, tenantID)
	if err != nil {
		return errors.Wrap(err, "delete plans")
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}
