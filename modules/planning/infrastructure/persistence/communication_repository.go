package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/planora-hq/planora/modules/planning/domain/aggregates/communication"
	"github.com/planora-hq/planora/modules/planning/infrastructure/persistence/models"
	"github.com/planora-hq/planora/pkg/composables"
	"github.com/planora-hq/planora/pkg/repo"
)

var (
	ErrCommunicationNotFound = errors.New("communication not found")
)

const (
	communicationsTable = "communications"

	communicationFindQuery = `
        SELECT
            c.id,
            c.tenant_id,
            c.subject,
            c.body,
            c.channel,
            c.business_area_ids,
            c.owner_ids,
            c.team_ids,
            c.confidential,
            c.sent_at,
            c.created_at,
            c.updated_at
        FROM communications c`

	communicationCountQuery = `SELECT COUNT(c.id) FROM communications c`
)

type PgCommunicationRepository struct{}

func NewCommunicationRepository() communication.Repository {
	return &PgCommunicationRepository{}
}

func (r *PgCommunicationRepository) buildFilters(ctx context.Context, params *communication.FindParams) ([]string, []interface{}, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get tenant from context")
	}

	where := []string{"c.tenant_id = $1"}
	args := []interface{}{tenantID}

	if params != nil && params.Q != "" {
		args = append(args, "%"+params.Q+"%")
		idx := len(args)
		where = append(where, fmt.Sprintf("(c.subject ILIKE $%d OR c.body ILIKE $%d)", idx, idx))
	}
	if params != nil && len(params.NodeIDs) > 0 {
		args = append(args, params.NodeIDs)
		where = append(where, fmt.Sprintf("c.business_area_ids && $%d", len(args)))
	}
	if params != nil && params.Channel != "" {
		args = append(args, string(params.Channel))
		where = append(where, fmt.Sprintf("c.channel = $%d", len(args)))
	}
	return where, args, nil
}

func (r *PgCommunicationRepository) queryCommunications(ctx context.Context, query string, args ...interface{}) ([]communication.Communication, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query communications")
	}
	defer rows.Close()

	var out []communication.Communication
	for rows.Next() {
		var m models.Communication
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.Subject,
			&m.Body,
			&m.Channel,
			&m.BusinessAreaIDs,
			&m.OwnerIDs,
			&m.TeamIDs,
			&m.Confidential,
			&m.SentAt,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan communications")
		}
		out = append(out, toDomainCommunication(&m))
	}
	return out, rows.Err()
}

func (r *PgCommunicationRepository) GetByID(ctx context.Context, id uuid.UUID) (communication.Communication, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	items, err := r.queryCommunications(ctx, repo.Join(communicationFindQuery, "WHERE c.tenant_id = $1 AND c.id = $2"), tenantID, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCommunicationNotFound
	}
	return items[0], nil
}

func (r *PgCommunicationRepository) GetPaginated(ctx context.Context, params *communication.FindParams) ([]communication.Communication, error) {
	where, args, err := r.buildFilters(ctx, params)
	if err != nil {
		return nil, err
	}
	limit, offset := 0, 0
	if params != nil {
		limit, offset = params.Limit, params.Offset
	}
	query := repo.Join(
		communicationFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY c.created_at DESC, c.id",
		repo.FormatLimitOffset(limit, offset),
	)
	return r.queryCommunications(ctx, query, args...)
}

func (r *PgCommunicationRepository) Count(ctx context.Context, params *communication.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args, err := r.buildFilters(ctx, params)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, repo.Join(communicationCountQuery, repo.JoinWhere(where...)), args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count communications")
	}
	return count, nil
}

func (r *PgCommunicationRepository) Create(ctx context.Context, data communication.Communication) (communication.Communication, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	m := toDBCommunication(data)
	fields := []string{
		"id",
		"tenant_id",
		"subject",
		"body",
		"channel",
		"business_area_ids",
		"owner_ids",
		"team_ids",
		"confidential",
		"sent_at",
		"created_at",
		"updated_at",
	}
	query := repo.Insert(communicationsTable, fields)
	_, err = tx.Exec(ctx, query,
		m.ID,
		tenantID,
		m.Subject,
		m.Body,
		m.Channel,
		m.BusinessAreaIDs,
		m.OwnerIDs,
		m.TeamIDs,
		m.Confidential,
		m.SentAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "insert communications")
	}
	return r.GetByID(ctx, m.ID)
}

func (r *PgCommunicationRepository) Update(ctx context.Context, data communication.Communication) (communication.Communication, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	m := toDBCommunication(data)
	fields := []string{
		"subject",
		"body",
		"channel",
		"business_area_ids",
		"owner_ids",
		"team_ids",
		"confidential",
		"sent_at",
		"updated_at",
	}
	query := repo.Update(communicationsTable, fields, "id = $10", "tenant_id = $11")
	tag, err := tx.Exec(ctx, query,
		m.Subject,
		m.Body,
		m.Channel,
		m.BusinessAreaIDs,
		m.OwnerIDs,
		m.TeamIDs,
		m.Confidential,
		m.SentAt,
		time.Now(),
		m.ID,
		tenantID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "update communications")
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrCommunicationNotFound
	}
	return r.GetByID(ctx, m.ID)
}

func (r *PgCommunicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, repo.Delete(communicationsTable, "id = $1", "tenant_id = $2"), id, tenantID)
	if err != nil {
		return errors.Wrap(err, "delete communications")
	}
	if tag.RowsAffected() == 0 {
		return ErrCommunicationNotFound
	}
	return nil
}
