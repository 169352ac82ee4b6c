package scene

import (
	"fmt"

	"github.com/google/uuid"
)

// DefaultLevelID is the level assigned to nodes whose parent chain does
// not reach a level node. It is a documented fallback, not an error.
const DefaultLevelID = "default"

// ChangeOp tags a store mutation.
type ChangeOp string

const (
	OpCreated ChangeOp = "created"
	OpUpdated ChangeOp = "updated"
	OpDeleted ChangeOp = "deleted"
)

// Change describes one mutation. Subscribers receive it synchronously,
// after the store maps are consistent, so derived caches can recompute
// from the post-mutation state.
type Change struct {
	Op      ChangeOp
	Node    Node
	LevelID string
}

// Store is the canonical node registry. It owns identity, containment
// and change notification; all spatial indexes are derived caches that
// must tolerate a full rebuild from this store at any time.
//
// The store is not synchronized; the owning editor session serializes
// access.
type Store struct {
	nodes    map[string]Node
	children map[string][]string
	subs     []func(Change)
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		nodes:    make(map[string]Node),
		children: make(map[string][]string),
	}
}

// Subscribe registers a synchronous observer for every mutation.
func (s *Store) Subscribe(fn func(Change)) {
	s.subs = append(s.subs, fn)
}

func (s *Store) notify(c Change) {
	for _, fn := range s.subs {
		fn(c)
	}
}

func (s *Store) Get(id string) (Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Children returns the child ids of a container in insertion order.
func (s *Store) Children(id string) []string {
	return s.children[id]
}

// Add inserts a node. An empty id is replaced with a generated one. The
// parent, when set, must exist and be a container; the child is appended
// to its children list.
func (s *Store) Add(n Node) error {
	b := n.base()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if _, exists := s.nodes[b.ID]; exists {
		return fmt.Errorf("node %q already exists", b.ID)
	}
	if b.ParentID != "" {
		parent, ok := s.nodes[b.ParentID]
		if !ok {
			return fmt.Errorf("node %q: parent %q not found", b.ID, b.ParentID)
		}
		if !isContainer(parent.Kind()) {
			return fmt.Errorf("node %q: parent %q (%s) cannot hold children", b.ID, b.ParentID, parent.Kind())
		}
		s.children[b.ParentID] = append(s.children[b.ParentID], b.ID)
	}
	s.nodes[b.ID] = n
	s.notify(Change{Op: OpCreated, Node: n, LevelID: s.LevelOf(b.ID)})
	return nil
}

// Update replaces the stored node with the same id. Reparenting moves
// the child between children lists.
func (s *Store) Update(n Node) error {
	b := n.base()
	old, ok := s.nodes[b.ID]
	if !ok {
		return fmt.Errorf("node %q not found", b.ID)
	}
	if old.Kind() != n.Kind() {
		return fmt.Errorf("node %q: kind changed from %s to %s", b.ID, old.Kind(), n.Kind())
	}
	if old.Parent() != b.ParentID {
		if b.ParentID != "" {
			parent, ok := s.nodes[b.ParentID]
			if !ok {
				return fmt.Errorf("node %q: parent %q not found", b.ID, b.ParentID)
			}
			if !isContainer(parent.Kind()) {
				return fmt.Errorf("node %q: parent %q (%s) cannot hold children", b.ID, b.ParentID, parent.Kind())
			}
		}
		s.detachFromParent(old)
		if b.ParentID != "" {
			s.children[b.ParentID] = append(s.children[b.ParentID], b.ID)
		}
	}
	s.nodes[b.ID] = n
	s.notify(Change{Op: OpUpdated, Node: n, LevelID: s.LevelOf(b.ID)})
	return nil
}

// Remove deletes a node and, recursively, its children. It returns the
// removed ids, depth first, so callers can cascade cleanup of derived
// indexes. Removing an unknown id is a no-op.
func (s *Store) Remove(id string) []string {
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}
	var removed []string
	for _, child := range append([]string(nil), s.children[id]...) {
		removed = append(removed, s.Remove(child)...)
	}
	levelID := s.LevelOf(id)
	s.detachFromParent(n)
	delete(s.nodes, id)
	delete(s.children, id)
	removed = append(removed, id)
	s.notify(Change{Op: OpDeleted, Node: n, LevelID: levelID})
	return removed
}

func (s *Store) detachFromParent(n Node) {
	pid := n.Parent()
	if pid == "" {
		return
	}
	kids := s.children[pid]
	for i, k := range kids {
		if k == n.NodeID() {
			s.children[pid] = append(kids[:i], kids[i+1:]...)
			return
		}
	}
}

// LevelOf resolves the level a node belongs to by walking the parent
// chain. Unparented or orphaned chains land on DefaultLevelID.
func (s *Store) LevelOf(id string) string {
	seen := make(map[string]bool)
	cur := id
	for cur != "" && !seen[cur] {
		seen[cur] = true
		n, ok := s.nodes[cur]
		if !ok {
			return DefaultLevelID
		}
		if n.Kind() == KindLevel {
			return n.NodeID()
		}
		cur = n.Parent()
	}
	return DefaultLevelID
}

// WallsOnLevel returns every wall whose parent chain reaches the given
// level, in unspecified order.
func (s *Store) WallsOnLevel(levelID string) []*WallNode {
	var out []*WallNode
	for _, n := range s.nodes {
		w, ok := n.(*WallNode)
		if !ok {
			continue
		}
		if s.LevelOf(w.ID) == levelID {
			out = append(out, w)
		}
	}
	return out
}

// NodesByKind returns every node of one kind, in unspecified order.
func (s *Store) NodesByKind(k Kind) []Node {
	var out []Node
	for _, n := range s.nodes {
		if n.Kind() == k {
			out = append(out, n)
		}
	}
	return out
}

// All returns every node in the store, in unspecified order.
func (s *Store) All() []Node {
	out := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	return out
}

func (s *Store) Len() int {
	return len(s.nodes)
}
