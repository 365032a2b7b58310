package hierarchy

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// NodeSet is a deduplicated set of node ids.
type NodeSet map[uuid.UUID]struct{}

func NewNodeSet(ids ...uuid.UUID) NodeSet {
	s := make(NodeSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s NodeSet) Contains(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

func (s NodeSet) Add(ids ...uuid.UUID) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

func (s NodeSet) Union(other NodeSet) NodeSet {
	out := make(NodeSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

func (s NodeSet) Slice() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// Forest is an in-memory adjacency index over one tenant's tree nodes for
// a single dimension. Closures walk the maps iteratively, so there is no
// recursion depth to worry about and no database round trip per level.
type Forest struct {
	nodes    map[uuid.UUID]Node
	parents  map[uuid.UUID]uuid.UUID
	children map[uuid.UUID][]uuid.UUID
}

// NewForest indexes the given nodes. Edges referencing nodes outside the
// slice are dropped, which makes ids from other tenants simply absent from
// every closure.
func NewForest(nodes []Node) *Forest {
	f := &Forest{
		nodes:    make(map[uuid.UUID]Node, len(nodes)),
		parents:  make(map[uuid.UUID]uuid.UUID, len(nodes)),
		children: make(map[uuid.UUID][]uuid.UUID, len(nodes)),
	}
	for _, n := range nodes {
		f.nodes[n.ID] = n
	}
	for _, n := range nodes {
		if n.ParentID == nil || *n.ParentID == uuid.Nil {
			continue
		}
		if _, ok := f.nodes[*n.ParentID]; !ok {
			continue
		}
		f.parents[n.ID] = *n.ParentID
		f.children[*n.ParentID] = append(f.children[*n.ParentID], n.ID)
	}
	return f
}

func (f *Forest) Size() int {
	return len(f.nodes)
}

// Ancestors returns the upward transitive closure of the seeds, inclusive
// of the seeds themselves. Unknown ids contribute nothing; an empty seed
// list yields the empty set, never the whole forest.
func (f *Forest) Ancestors(seeds []uuid.UUID) NodeSet {
	out := make(NodeSet, len(seeds))
	for _, seed := range seeds {
		if _, ok := f.nodes[seed]; !ok {
			continue
		}
		for id := seed; ; {
			if out.Contains(id) {
				break
			}
			out.Add(id)
			parent, ok := f.parents[id]
			if !ok {
				break
			}
			id = parent
		}
	}
	return out
}

// Descendants returns the downward transitive closure of the seeds,
// inclusive of the seeds themselves.
func (f *Forest) Descendants(seeds []uuid.UUID) NodeSet {
	out := make(NodeSet, len(seeds))
	queue := make([]uuid.UUID, 0, len(seeds))
	for _, seed := range seeds {
		if _, ok := f.nodes[seed]; !ok {
			continue
		}
		if !out.Contains(seed) {
			out.Add(seed)
			queue = append(queue, seed)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range f.children[id] {
			if out.Contains(child) {
				continue
			}
			out.Add(child)
			queue = append(queue, child)
		}
	}
	return out
}

// AllLevels returns the union of Ancestors and Descendants: everything a
// delegation planted on any seed could plausibly reach in either
// direction. Used for expanding search filters, never for authorization.
func (f *Forest) AllLevels(seeds []uuid.UUID) NodeSet {
	return f.Ancestors(seeds).Union(f.Descendants(seeds))
}

// TreeIndex computes closures over one dimension of a tenant's tree,
// loading a fresh forest snapshot per call. All operations are pure reads.
type TreeIndex struct {
	store     TreeStore
	dimension Dimension
}

func NewTreeIndex(store TreeStore, dimension Dimension) *TreeIndex {
	return &TreeIndex{store: store, dimension: dimension}
}

func (t *TreeIndex) Dimension() Dimension {
	return t.dimension
}

// Snapshot loads the tenant's forest for this index's dimension.
func (t *TreeIndex) Snapshot(ctx context.Context) (*Forest, error) {
	nodes, err := t.store.GetNodes(ctx, t.dimension)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tree snapshot")
	}
	return NewForest(nodes), nil
}

func (t *TreeIndex) Ancestors(ctx context.Context, nodeIDs []uuid.UUID) (NodeSet, error) {
	if len(nodeIDs) == 0 {
		return NodeSet{}, nil
	}
	forest, err := t.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return forest.Ancestors(nodeIDs), nil
}

func (t *TreeIndex) Descendants(ctx context.Context, nodeIDs []uuid.UUID) (NodeSet, error) {
	if len(nodeIDs) == 0 {
		return NodeSet{}, nil
	}
	forest, err := t.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return forest.Descendants(nodeIDs), nil
}

func (t *TreeIndex) AllLevels(ctx context.Context, nodeIDs []uuid.UUID) (NodeSet, error) {
	if len(nodeIDs) == 0 {
		return NodeSet{}, nil
	}
	forest, err := t.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return forest.AllLevels(nodeIDs), nil
}
