package services_test

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planora-hq/planora/modules/planning/domain/aggregates/communication"
	"github.com/planora-hq/planora/modules/planning/domain/aggregates/plan"
	"github.com/planora-hq/planora/modules/planning/domain/entities/areagrant"
	"github.com/planora-hq/planora/modules/planning/domain/entities/orgunit"
	"github.com/planora-hq/planora/modules/planning/services"
	"github.com/planora-hq/planora/pkg/eventbus"
	"github.com/planora-hq/planora/pkg/hierarchy"
	"github.com/planora-hq/planora/pkg/itf"
)

var errFakeNotFound = errors.New("not found")

// fixture wires the planning services against the in-memory engine stores.
// The repository fakes mirror every write into the stores so the
// propagator and enforcer observe the same state the repositories hold.
type fixture struct {
	env      *itf.TestEnvironment
	bus      eventbus.EventBus
	units    *memOrgUnitRepo
	grants   *memAreaGrantRepo
	plans    *memPlanRepo
	comms    *memCommunicationRepo
	orgUnits *services.OrgUnitService
	area     *services.AreaGrantService
	plan     *services.PlanService
	comm     *services.CommunicationService
	search   *services.SearchService
}

func newFixture(f *itf.TestEnvironment) *fixture {
	bus := eventbus.NewEventPublisher(f.Logger)
	areas := hierarchy.NewTreeIndex(f.Stores, hierarchy.DimensionBusinessArea)
	locations := hierarchy.NewTreeIndex(f.Stores, hierarchy.DimensionLocation)
	resolver := hierarchy.NewPermissionResolver(areas, f.Stores)
	propagator := hierarchy.NewPermissionPropagator(areas, f.Stores, f.Stores, f.Stores, f.Entry())
	enforcer := hierarchy.NewAccessEnforcer(f.Stores, f.Stores, f.Entry())

	units := &memOrgUnitRepo{stores: f.Stores, units: map[uuid.UUID]orgunit.OrgUnit{}}
	grants := &memAreaGrantRepo{stores: f.Stores, tenantID: f.TenantID}
	plans := &memPlanRepo{stores: f.Stores, plans: map[uuid.UUID]plan.Plan{}}
	comms := &memCommunicationRepo{stores: f.Stores, comms: map[uuid.UUID]communication.Communication{}}

	return &fixture{
		env:      f,
		bus:      bus,
		units:    units,
		grants:   grants,
		plans:    plans,
		comms:    comms,
		orgUnits: services.NewOrgUnitService(units, grants, f.Stores, f.Stores, propagator, bus),
		area:     services.NewAreaGrantService(grants, resolver, propagator, bus),
		plan:     services.NewPlanService(plans, enforcer, propagator, bus),
		comm:     services.NewCommunicationService(comms, enforcer, propagator, bus),
		search:   services.NewSearchService(plans, comms, areas, locations, enforcer),
	}
}

func newPlan(tenantID uuid.UUID, title string, nodeIDs ...uuid.UUID) plan.Plan {
	return plan.New(title,
		plan.WithTenantID(tenantID),
		plan.WithBusinessAreas(nodeIDs),
		plan.WithTeam([]uint{1}, nil),
	)
}

func newCommunication(tenantID uuid.UUID, subject string, nodeIDs ...uuid.UUID) communication.Communication {
	return communication.New(subject,
		communication.WithTenantID(tenantID),
		communication.WithBusinessAreas(nodeIDs),
		communication.WithTeam([]uint{1}, nil),
	)
}

// memOrgUnitRepo

type memOrgUnitRepo struct {
	stores *itf.MemoryStores
	units  map[uuid.UUID]orgunit.OrgUnit
}

func (r *memOrgUnitRepo) GetByID(_ context.Context, id uuid.UUID) (orgunit.OrgUnit, error) {
	unit, ok := r.units[id]
	if !ok {
		return orgunit.OrgUnit{}, errFakeNotFound
	}
	return unit, nil
}

func (r *memOrgUnitRepo) GetAll(_ context.Context, dimension hierarchy.Dimension) ([]orgunit.OrgUnit, error) {
	var out []orgunit.OrgUnit
	for _, unit := range r.units {
		if unit.Dimension() == dimension {
			out = append(out, unit)
		}
	}
	return out, nil
}

func (r *memOrgUnitRepo) GetChildren(_ context.Context, parentID uuid.UUID) ([]orgunit.OrgUnit, error) {
	var out []orgunit.OrgUnit
	for _, unit := range r.units {
		if unit.ParentID() != nil && *unit.ParentID() == parentID {
			out = append(out, unit)
		}
	}
	return out, nil
}

func (r *memOrgUnitRepo) GetRoots(_ context.Context, dimension hierarchy.Dimension) ([]orgunit.OrgUnit, error) {
	var out []orgunit.OrgUnit
	for _, unit := range r.units {
		if unit.Dimension() == dimension && unit.IsRoot() {
			out = append(out, unit)
		}
	}
	return out, nil
}

func (r *memOrgUnitRepo) Create(_ context.Context, unit orgunit.OrgUnit) (orgunit.OrgUnit, error) {
	r.units[unit.ID()] = unit
	r.stores.AddNode(unit.Dimension(), unit.AsNode())
	return unit, nil
}

func (r *memOrgUnitRepo) Update(_ context.Context, unit orgunit.OrgUnit) (orgunit.OrgUnit, error) {
	if _, ok := r.units[unit.ID()]; !ok {
		return orgunit.OrgUnit{}, errFakeNotFound
	}
	r.units[unit.ID()] = unit
	r.stores.RemoveNode(unit.Dimension(), unit.ID())
	r.stores.AddNode(unit.Dimension(), unit.AsNode())
	return unit, nil
}

func (r *memOrgUnitRepo) Delete(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if unit, ok := r.units[id]; ok {
			r.stores.RemoveNode(unit.Dimension(), id)
			delete(r.units, id)
		}
	}
	return nil
}

// memAreaGrantRepo delegates straight to the engine's grant store.

type memAreaGrantRepo struct {
	stores   *itf.MemoryStores
	tenantID uuid.UUID
}

func (r *memAreaGrantRepo) toEntities(grants []hierarchy.Grant) []areagrant.AreaGrant {
	out := make([]areagrant.AreaGrant, 0, len(grants))
	for _, g := range grants {
		out = append(out, areagrant.Hydrate(r.tenantID, g.UserID, g.NodeID, g.Permission, g.IsPrimary, time.Time{}))
	}
	return out
}

func (r *memAreaGrantRepo) FindByUser(ctx context.Context, userID uint, nodeIDs []uuid.UUID) ([]areagrant.AreaGrant, error) {
	if nodeIDs != nil {
		grants, err := r.stores.FindGrants(ctx, userID, nodeIDs)
		if err != nil {
			return nil, err
		}
		return r.toEntities(grants), nil
	}
	all, err := r.stores.ListGrants(ctx)
	if err != nil {
		return nil, err
	}
	var mine []hierarchy.Grant
	for _, g := range all {
		if g.UserID == userID {
			mine = append(mine, g)
		}
	}
	return r.toEntities(mine), nil
}

func (r *memAreaGrantRepo) FindByNodes(ctx context.Context, nodeIDs []uuid.UUID) ([]areagrant.AreaGrant, error) {
	grants, err := r.stores.FindGrantsByNodes(ctx, nodeIDs)
	if err != nil {
		return nil, err
	}
	return r.toEntities(grants), nil
}

func (r *memAreaGrantRepo) Create(ctx context.Context, grant areagrant.AreaGrant) error {
	return r.stores.InsertGrant(ctx, grant.AsGrant())
}

func (r *memAreaGrantRepo) Delete(ctx context.Context, userID uint, nodeIDs []uuid.UUID) error {
	return r.stores.DeleteGrants(ctx, userID, nodeIDs)
}

func (r *memAreaGrantRepo) DeleteByNodes(ctx context.Context, nodeIDs []uuid.UUID) error {
	grants, err := r.stores.ListGrants(ctx)
	if err != nil {
		return err
	}
	users := map[uint]struct{}{}
	for _, g := range grants {
		users[g.UserID] = struct{}{}
	}
	for userID := range users {
		if err := r.stores.DeleteGrants(ctx, userID, nodeIDs); err != nil {
			return err
		}
	}
	return nil
}

// memPlanRepo

type memPlanRepo struct {
	stores *itf.MemoryStores
	plans  map[uuid.UUID]plan.Plan
}

func (r *memPlanRepo) GetByID(_ context.Context, id uuid.UUID) (plan.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, errFakeNotFound
	}
	return p, nil
}

func (r *memPlanRepo) GetPaginated(_ context.Context, params *plan.FindParams) ([]plan.Plan, error) {
	var out []plan.Plan
	for _, p := range r.plans {
		if !planMatches(p, params) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memPlanRepo) Count(_ context.Context, params *plan.FindParams) (int64, error) {
	var n int64
	for _, p := range r.plans {
		if planMatches(p, params) {
			n++
		}
	}
	return n, nil
}

func (r *memPlanRepo) Create(_ context.Context, data plan.Plan) (plan.Plan, error) {
	r.plans[data.ID()] = data
	r.stores.PutWorkItem(data.AsWorkItem())
	return data, nil
}

func (r *memPlanRepo) Update(_ context.Context, data plan.Plan) (plan.Plan, error) {
	if _, ok := r.plans[data.ID()]; !ok {
		return nil, errFakeNotFound
	}
	r.plans[data.ID()] = data
	r.stores.PutWorkItem(data.AsWorkItem())
	return data, nil
}

func (r *memPlanRepo) Delete(_ context.Context, id uuid.UUID) error {
	p, ok := r.plans[id]
	if !ok {
		return errFakeNotFound
	}
	delete(r.plans, id)
	r.stores.RemoveWorkItem(p.AsWorkItem().Ref)
	return nil
}

func planMatches(p plan.Plan, params *plan.FindParams) bool {
	if params == nil {
		return true
	}
	if params.Q != "" && !strings.Contains(strings.ToLower(p.Title()), strings.ToLower(params.Q)) {
		return false
	}
	if len(params.NodeIDs) > 0 && !overlaps(params.NodeIDs, p.BusinessAreaIDs()) {
		return false
	}
	if len(params.LocationIDs) > 0 && !overlaps(params.LocationIDs, p.LocationIDs()) {
		return false
	}
	if params.Status != "" && p.Status() != params.Status {
		return false
	}
	return true
}

// memCommunicationRepo

type memCommunicationRepo struct {
	stores *itf.MemoryStores
	comms  map[uuid.UUID]communication.Communication
}

func (r *memCommunicationRepo) GetByID(_ context.Context, id uuid.UUID) (communication.Communication, error) {
	c, ok := r.comms[id]
	if !ok {
		return nil, errFakeNotFound
	}
	return c, nil
}

func (r *memCommunicationRepo) GetPaginated(_ context.Context, params *communication.FindParams) ([]communication.Communication, error) {
	var out []communication.Communication
	for _, c := range r.comms {
		if !communicationMatches(c, params) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *memCommunicationRepo) Count(_ context.Context, params *communication.FindParams) (int64, error) {
	var n int64
	for _, c := range r.comms {
		if communicationMatches(c, params) {
			n++
		}
	}
	return n, nil
}

func (r *memCommunicationRepo) Create(_ context.Context, data communication.Communication) (communication.Communication, error) {
	r.comms[data.ID()] = data
	r.stores.PutWorkItem(data.AsWorkItem())
	return data, nil
}

func (r *memCommunicationRepo) Update(_ context.Context, data communication.Communication) (communication.Communication, error) {
	if _, ok := r.comms[data.ID()]; !ok {
		return nil, errFakeNotFound
	}
	r.comms[data.ID()] = data
	r.stores.PutWorkItem(data.AsWorkItem())
	return data, nil
}

func (r *memCommunicationRepo) Delete(_ context.Context, id uuid.UUID) error {
	c, ok := r.comms[id]
	if !ok {
		return errFakeNotFound
	}
	delete(r.comms, id)
	r.stores.RemoveWorkItem(c.AsWorkItem().Ref)
	return nil
}

func communicationMatches(c communication.Communication, params *communication.FindParams) bool {
	if params == nil {
		return true
	}
	if params.Q != "" && !strings.Contains(strings.ToLower(c.Subject()), strings.ToLower(params.Q)) {
		return false
	}
	if len(params.NodeIDs) > 0 && !overlaps(params.NodeIDs, c.BusinessAreaIDs()) {
		return false
	}
	if params.Channel != "" && c.Channel() != params.Channel {
		return false
	}
	return true
}

func overlaps(a, b []uuid.UUID) bool {
	set := hierarchy.NewNodeSet(a...)
	for _, id := range b {
		if set.Contains(id) {
			return true
		}
	}
	return false
}
