package itf

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/planora-hq/planora/pkg/hierarchy"
)

// MemoryStores is an in-memory implementation of every store interface the
// hierarchy engine consumes. It holds one tenant's state, which matches
// how the engine itself is scoped, and is safe for concurrent use.
type MemoryStores struct {
	mu           sync.RWMutex
	nodes        map[hierarchy.Dimension][]hierarchy.Node
	grants       []hierarchy.Grant
	items        map[hierarchy.EntityKind]map[uuid.UUID]hierarchy.WorkItem
	materialized map[hierarchy.EntityKind]map[materializedKey]hierarchy.PermissionLevel
	roles        map[uint]hierarchy.Role
}

type materializedKey struct {
	userID   uint
	entityID uuid.UUID
}

func NewMemoryStores() *MemoryStores {
	return &MemoryStores{
		nodes:        map[hierarchy.Dimension][]hierarchy.Node{},
		items:        map[hierarchy.EntityKind]map[uuid.UUID]hierarchy.WorkItem{},
		materialized: map[hierarchy.EntityKind]map[materializedKey]hierarchy.PermissionLevel{},
		roles:        map[uint]hierarchy.Role{},
	}
}

// AddNode registers a tree node under the given dimension.
func (s *MemoryStores) AddNode(dimension hierarchy.Dimension, node hierarchy.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[dimension] = append(s.nodes[dimension], node)
}

// RemoveNode drops a node and any edges referencing it.
func (s *MemoryStores) RemoveNode(dimension hierarchy.Dimension, nodeID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.nodes[dimension][:0]
	for _, n := range s.nodes[dimension] {
		if n.ID != nodeID {
			kept = append(kept, n)
		}
	}
	s.nodes[dimension] = kept
}

// PutWorkItem inserts or replaces a work item.
func (s *MemoryStores) PutWorkItem(item hierarchy.WorkItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kind := item.Ref.Kind
	if s.items[kind] == nil {
		s.items[kind] = map[uuid.UUID]hierarchy.WorkItem{}
	}
	s.items[kind][item.Ref.ID] = item
}

// RemoveWorkItem deletes a work item.
func (s *MemoryStores) RemoveWorkItem(ref hierarchy.EntityRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items[ref.Kind], ref.ID)
}

// SetRole records a user's tenant-wide role.
func (s *MemoryStores) SetRole(userID uint, role hierarchy.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[userID] = role
}

// MaterializedCount reports the number of rows in one materialized table.
func (s *MemoryStores) MaterializedCount(kind hierarchy.EntityKind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.materialized[kind])
}

// TreeStore

func (s *MemoryStores) GetNodes(_ context.Context, dimension hierarchy.Dimension) ([]hierarchy.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]hierarchy.Node, len(s.nodes[dimension]))
	copy(out, s.nodes[dimension])
	return out, nil
}

// GrantStore

func (s *MemoryStores) FindGrants(_ context.Context, userID uint, nodeIDs []uuid.UUID) ([]hierarchy.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := hierarchy.NewNodeSet(nodeIDs...)
	var out []hierarchy.Grant
	for _, g := range s.grants {
		if g.UserID == userID && wanted.Contains(g.NodeID) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *MemoryStores) FindGrantsByNodes(_ context.Context, nodeIDs []uuid.UUID) ([]hierarchy.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := hierarchy.NewNodeSet(nodeIDs...)
	var out []hierarchy.Grant
	for _, g := range s.grants {
		if wanted.Contains(g.NodeID) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *MemoryStores) ListGrants(_ context.Context) ([]hierarchy.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]hierarchy.Grant, len(s.grants))
	copy(out, s.grants)
	return out, nil
}

func (s *MemoryStores) InsertGrant(_ context.Context, grant hierarchy.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants = append(s.grants, grant)
	return nil
}

func (s *MemoryStores) DeleteGrants(_ context.Context, userID uint, nodeIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := hierarchy.NewNodeSet(nodeIDs...)
	kept := s.grants[:0]
	for _, g := range s.grants {
		if g.UserID == userID && (len(nodeIDs) == 0 || wanted.Contains(g.NodeID)) {
			continue
		}
		kept = append(kept, g)
	}
	s.grants = kept
	return nil
}

// WorkItemStore

func (s *MemoryStores) GetWorkItem(_ context.Context, ref hierarchy.EntityRef) (hierarchy.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[ref.Kind][ref.ID]
	if !ok {
		return hierarchy.WorkItem{}, hierarchy.ErrWorkItemNotFound
	}
	return item, nil
}

func (s *MemoryStores) ListWorkItems(_ context.Context, kind hierarchy.EntityKind) ([]hierarchy.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]hierarchy.WorkItem, 0, len(s.items[kind]))
	for _, item := range s.items[kind] {
		out = append(out, item)
	}
	return out, nil
}

// MaterializedStore

func (s *MemoryStores) Get(_ context.Context, kind hierarchy.EntityKind, userID uint, entityID uuid.UUID) (hierarchy.PermissionLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.materialized[kind][materializedKey{userID, entityID}], nil
}

func (s *MemoryStores) GetForUser(_ context.Context, kind hierarchy.EntityKind, userID uint) (map[uuid.UUID]hierarchy.PermissionLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[uuid.UUID]hierarchy.PermissionLevel{}
	for key, level := range s.materialized[kind] {
		if key.userID == userID {
			out[key.entityID] = level
		}
	}
	return out, nil
}

func (s *MemoryStores) ListAll(_ context.Context, kind hierarchy.EntityKind) ([]hierarchy.MaterializedGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]hierarchy.MaterializedGrant, 0, len(s.materialized[kind]))
	for key, level := range s.materialized[kind] {
		out = append(out, hierarchy.MaterializedGrant{
			UserID:     key.userID,
			EntityID:   key.entityID,
			Permission: level,
		})
	}
	return out, nil
}

func (s *MemoryStores) Upsert(_ context.Context, kind hierarchy.EntityKind, grants []hierarchy.MaterializedGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.materialized[kind] == nil {
		s.materialized[kind] = map[materializedKey]hierarchy.PermissionLevel{}
	}
	for _, g := range grants {
		key := materializedKey{g.UserID, g.EntityID}
		// Insert-or-upgrade, same as the SQL GREATEST upsert.
		if existing, ok := s.materialized[kind][key]; !ok || g.Permission > existing {
			s.materialized[kind][key] = g.Permission
		}
	}
	return nil
}

func (s *MemoryStores) DeleteRows(_ context.Context, kind hierarchy.EntityKind, rows []hierarchy.MaterializedGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		delete(s.materialized[kind], materializedKey{row.UserID, row.EntityID})
	}
	return nil
}

func (s *MemoryStores) DeleteByEntity(_ context.Context, kind hierarchy.EntityKind, entityID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.materialized[kind] {
		if key.entityID == entityID {
			delete(s.materialized[kind], key)
		}
	}
	return nil
}

func (s *MemoryStores) DeleteByUser(_ context.Context, kind hierarchy.EntityKind, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.materialized[kind] {
		if key.userID == userID {
			delete(s.materialized[kind], key)
		}
	}
	return nil
}

// RoleSource

func (s *MemoryStores) ListRoles(_ context.Context) (map[uint]hierarchy.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uint]hierarchy.Role, len(s.roles))
	for id, role := range s.roles {
		out[id] = role
	}
	return out, nil
}
