package persistence

import (
	"time"

	"github.com/planora-hq/planora/modules/planning/domain/aggregates/communication"
	"github.com/planora-hq/planora/modules/planning/domain/aggregates/plan"
	"github.com/planora-hq/planora/modules/planning/domain/entities/areagrant"
	"github.com/planora-hq/planora/modules/planning/domain/entities/orgunit"
	"github.com/planora-hq/planora/modules/planning/infrastructure/persistence/models"
	"github.com/planora-hq/planora/pkg/hierarchy"
)

func toUintSlice(in []int64) []uint {
	if in == nil {
		return nil
	}
	out := make([]uint, len(in))
	for i, v := range in {
		out[i] = uint(v)
	}
	return out
}

func toInt64Slice(in []uint) []int64 {
	if in == nil {
		return nil
	}
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

func toDomainOrgUnit(m *models.OrgNode) orgunit.OrgUnit {
	return orgunit.Hydrate(
		m.ID,
		m.TenantID,
		m.ParentID,
		hierarchy.Dimension(m.Dimension),
		m.Name,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDBOrgUnit(entity orgunit.OrgUnit) *models.OrgNode {
	return &models.OrgNode{
		ID:        entity.ID(),
		TenantID:  entity.TenantID(),
		ParentID:  entity.ParentID(),
		Dimension: string(entity.Dimension()),
		Name:      entity.Name(),
		CreatedAt: entity.CreatedAt(),
		UpdatedAt: entity.UpdatedAt(),
	}
}

func toDomainAreaGrant(m *models.AreaGrant) areagrant.AreaGrant {
	return areagrant.Hydrate(
		m.TenantID,
		uint(m.UserID),
		m.NodeID,
		hierarchy.PermissionLevel(m.Permission),
		m.IsPrimary,
		m.CreatedAt,
	)
}

func toDomainPlan(m *models.Plan) plan.Plan {
	opts := []plan.Option{
		plan.WithID(m.ID),
		plan.WithTenantID(m.TenantID),
		plan.WithDescription(m.Description),
		plan.WithStatus(plan.Status(m.Status)),
		plan.WithBusinessAreas(m.BusinessAreaIDs),
		plan.WithLocations(m.LocationIDs),
		plan.WithTeam(toUintSlice(m.OwnerIDs), toUintSlice(m.TeamIDs)),
		plan.WithConfidential(m.Confidential),
		plan.WithCreatedAt(m.CreatedAt),
		plan.WithUpdatedAt(m.UpdatedAt),
	}
	var startsOn, endsOn time.Time
	if m.StartsOn != nil {
		startsOn = *m.StartsOn
	}
	if m.EndsOn != nil {
		endsOn = *m.EndsOn
	}
	opts = append(opts, plan.WithTimeframe(startsOn, endsOn))
	return plan.New(m.Title, opts...)
}

func toDBPlan(entity plan.Plan) *models.Plan {
	m := &models.Plan{
		ID:              entity.ID(),
		TenantID:        entity.TenantID(),
		Title:           entity.Title(),
		Description:     entity.Description(),
		Status:          string(entity.Status()),
		BusinessAreaIDs: entity.BusinessAreaIDs(),
		LocationIDs:     entity.LocationIDs(),
		OwnerIDs:        toInt64Slice(entity.OwnerIDs()),
		TeamIDs:         toInt64Slice(entity.TeamIDs()),
		Confidential:    entity.Confidential(),
		CreatedAt:       entity.CreatedAt(),
		UpdatedAt:       entity.UpdatedAt(),
	}
	if !entity.StartsOn().IsZero() {
		t := entity.StartsOn()
		m.StartsOn = &t
	}
	if !entity.EndsOn().IsZero() {
		t := entity.EndsOn()
		m.EndsOn = &t
	}
	return m
}

func toDomainCommunication(m *models.Communication) communication.Communication {
	return communication.New(
		m.Subject,
		communication.WithID(m.ID),
		communication.WithTenantID(m.TenantID),
		communication.WithBody(m.Body),
		communication.WithChannel(communication.Channel(m.Channel)),
		communication.WithBusinessAreas(m.BusinessAreaIDs),
		communication.WithTeam(toUintSlice(m.OwnerIDs), toUintSlice(m.TeamIDs)),
		communication.WithConfidential(m.Confidential),
		communication.WithSentAt(m.SentAt),
		communication.WithCreatedAt(m.CreatedAt),
		communication.WithUpdatedAt(m.UpdatedAt),
	)
}

func toDBCommunication(entity communication.Communication) *models.Communication {
	return &models.Communication{
		ID:              entity.ID(),
		TenantID:        entity.TenantID(),
		Subject:         entity.Subject(),
		Body:            entity.Body(),
		Channel:         string(entity.Channel()),
		BusinessAreaIDs: entity.BusinessAreaIDs(),
		OwnerIDs:        toInt64Slice(entity.OwnerIDs()),
		TeamIDs:         toInt64Slice(entity.TeamIDs()),
		Confidential:    entity.Confidential(),
		SentAt:          entity.SentAt(),
		CreatedAt:       entity.CreatedAt(),
		UpdatedAt:       entity.UpdatedAt(),
	}
}
