package testutil

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/conn-castle/rigkit/internal/hierarchy"
)

// Tree is an in-memory hierarchy.Tree for tests. Node IDs are assigned in
// insertion order starting at zero.
type Tree struct {
	names      []string
	parents    []int
	children   [][]hierarchy.NodeID
	roots      []hierarchy.NodeID
	positions  []r3.Vec
	components [][]string
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

func (t *Tree) add(parent int, name string) hierarchy.NodeID {
	id := hierarchy.NodeID(len(t.names))
	t.names = append(t.names, name)
	t.parents = append(t.parents, parent)
	t.children = append(t.children, nil)
	t.positions = append(t.positions, r3.Vec{})
	t.components = append(t.components, nil)
	if parent < 0 {
		t.roots = append(t.roots, id)
	} else {
		t.children[parent] = append(t.children[parent], id)
	}
	return id
}

// AddRoot appends a root node.
func (t *Tree) AddRoot(name string) hierarchy.NodeID {
	return t.add(-1, name)
}

// Add appends a child of parent.
func (t *Tree) Add(parent hierarchy.NodeID, name string) hierarchy.NodeID {
	return t.add(int(parent), name)
}

// Chain appends a single-child chain under parent and returns the created IDs.
func (t *Tree) Chain(parent hierarchy.NodeID, names ...string) []hierarchy.NodeID {
	out := make([]hierarchy.NodeID, 0, len(names))
	current := parent
	for _, name := range names {
		current = t.Add(current, name)
		out = append(out, current)
	}
	return out
}

// Link adds child to parent's child list without reparenting, which lets tests
// build malformed (cyclic) trees.
func (t *Tree) Link(parent hierarchy.NodeID, child hierarchy.NodeID) {
	t.children[parent] = append(t.children[parent], child)
}

// SetPosition stores a world-space position for id.
func (t *Tree) SetPosition(id hierarchy.NodeID, x, y, z float64) {
	t.positions[id] = r3.Vec{X: x, Y: y, Z: z}
}

// SetComponents stores component type names for id.
func (t *Tree) SetComponents(id hierarchy.NodeID, types ...string) {
	t.components[id] = types
}

func (t *Tree) Roots() []hierarchy.NodeID {
	return append([]hierarchy.NodeID(nil), t.roots...)
}

func (t *Tree) Children(id hierarchy.NodeID) []hierarchy.NodeID {
	return append([]hierarchy.NodeID(nil), t.children[id]...)
}

func (t *Tree) Name(id hierarchy.NodeID) string {
	return t.names[id]
}

func (t *Tree) Parent(id hierarchy.NodeID) (hierarchy.NodeID, bool) {
	p := t.parents[id]
	if p < 0 {
		return 0, false
	}
	return hierarchy.NodeID(p), true
}

func (t *Tree) Position(id hierarchy.NodeID) r3.Vec {
	return t.positions[id]
}

func (t *Tree) ComponentTypes(id hierarchy.NodeID) []string {
	return append([]string(nil), t.components[id]...)
}
