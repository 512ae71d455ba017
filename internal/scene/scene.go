package scene

import (
	"fmt"
	"os"

	"github.com/aymanbagabas/go-udiff"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/fsutil"
	"github.com/conn-castle/rigkit/internal/hierarchy"
	"github.com/conn-castle/rigkit/internal/physbone"
)

// Scene is a loaded document indexed for tree access. Node IDs are pre-order
// positions and stay valid until the document is reloaded.
type Scene struct {
	path     string
	format   Format
	doc      *Document
	nodes    []*NodeSpec
	parents  []int
	children [][]hierarchy.NodeID
	roots    []hierarchy.NodeID
	original []byte
}

// Load reads and indexes the document at path.
func Load(path string) (*Scene, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errkind.IOf("read scene", err)
	}
	s, err := Parse(data, format, path)
	if err != nil {
		return nil, err
	}
	s.path = path
	return s, nil
}

// Parse indexes an in-memory document. The scene has no path until SaveAs.
func Parse(data []byte, format Format, source string) (*Scene, error) {
	doc, err := Decode(data, format, source)
	if err != nil {
		return nil, err
	}
	s := New(doc, format)
	s.original = append([]byte(nil), data...)
	return s, nil
}

// New indexes doc directly.
func New(doc *Document, format Format) *Scene {
	s := &Scene{doc: doc, format: format}
	s.index()
	return s
}

type pending struct {
	node   *NodeSpec
	parent int
}

func (s *Scene) index() {
	stack := make([]pending, 0, len(s.doc.Roots))
	for i := len(s.doc.Roots) - 1; i >= 0; i-- {
		stack = append(stack, pending{node: s.doc.Roots[i], parent: -1})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id := hierarchy.NodeID(len(s.nodes))
		s.nodes = append(s.nodes, top.node)
		s.parents = append(s.parents, top.parent)
		s.children = append(s.children, nil)
		if top.parent < 0 {
			s.roots = append(s.roots, id)
		} else {
			s.children[top.parent] = append(s.children[top.parent], id)
		}
		for i := len(top.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, pending{node: top.node.Children[i], parent: int(id)})
		}
	}
}

// SceneName is the document name.
func (s *Scene) SceneName() string { return s.doc.Name }

// Document exposes the underlying document.
func (s *Scene) Document() *Document { return s.doc }

// Path is where the scene was loaded from or last saved to.
func (s *Scene) Path() string { return s.path }

// Len is the number of nodes.
func (s *Scene) Len() int { return len(s.nodes) }

func (s *Scene) Roots() []hierarchy.NodeID {
	return append([]hierarchy.NodeID(nil), s.roots...)
}

func (s *Scene) Children(id hierarchy.NodeID) []hierarchy.NodeID {
	if int(id) >= len(s.children) {
		return nil
	}
	return append([]hierarchy.NodeID(nil), s.children[id]...)
}

func (s *Scene) Name(id hierarchy.NodeID) string {
	return s.nodes[id].Name
}

func (s *Scene) Parent(id hierarchy.NodeID) (hierarchy.NodeID, bool) {
	p := s.parents[id]
	if p < 0 {
		return 0, false
	}
	return hierarchy.NodeID(p), true
}

// Position returns the node's world-space position.
func (s *Scene) Position(id hierarchy.NodeID) r3.Vec {
	p := s.nodes[id].Position
	return r3.Vec{X: p[0], Y: p[1], Z: p[2]}
}

// ComponentTypes lists attachment type names in document order.
func (s *Scene) ComponentTypes(id hierarchy.NodeID) []string {
	comps := s.nodes[id].Components
	out := make([]string, 0, len(comps))
	for _, c := range comps {
		out = append(out, c.Type)
	}
	return out
}

// PhysBone returns the node's physics-bone block for reading. A component
// declared without settings yields a detached zero config; the document is not
// touched.
func (s *Scene) PhysBone(id hierarchy.NodeID) (*physbone.Config, bool) {
	c, ok := s.physBoneComponent(id)
	if !ok {
		return nil, false
	}
	if c.PhysBone == nil {
		return &physbone.Config{}, true
	}
	return c.PhysBone, true
}

// EditPhysBone returns the node's physics-bone block for writing, adding an
// empty settings block to a component declared without one.
func (s *Scene) EditPhysBone(id hierarchy.NodeID) (*physbone.Config, bool) {
	c, ok := s.physBoneComponent(id)
	if !ok {
		return nil, false
	}
	if c.PhysBone == nil {
		c.PhysBone = &physbone.Config{}
	}
	return c.PhysBone, true
}

func (s *Scene) physBoneComponent(id hierarchy.NodeID) (*Component, bool) {
	if int(id) >= len(s.nodes) {
		return nil, false
	}
	node := s.nodes[id]
	for i := range node.Components {
		if node.Components[i].Type == physbone.ComponentType {
			return &node.Components[i], true
		}
	}
	return nil, false
}

// AddPhysBone attaches a new physics-bone component, or returns the existing one.
func (s *Scene) AddPhysBone(id hierarchy.NodeID) (*physbone.Config, error) {
	if int(id) >= len(s.nodes) {
		return nil, fmt.Errorf("%w: node %d", errkind.ErrNotFound, id)
	}
	if cfg, ok := s.EditPhysBone(id); ok {
		return cfg, nil
	}
	node := s.nodes[id]
	node.Components = append(node.Components, Component{Type: physbone.ComponentType, PhysBone: &physbone.Config{}})
	return node.Components[len(node.Components)-1].PhysBone, nil
}

// Marshal encodes the current document state.
func (s *Scene) Marshal() ([]byte, error) {
	data, err := Encode(s.doc, s.format)
	if err != nil {
		return nil, fmt.Errorf("%w: encode scene: %w", errkind.ErrUnexpected, err)
	}
	return data, nil
}

// SaveAll writes the document back to its path.
func (s *Scene) SaveAll() error {
	if s.path == "" {
		return fmt.Errorf("%w: scene has no path", errkind.ErrIO)
	}
	return s.SaveAs(s.path)
}

// SaveAs writes the document to path, replacing the whole file.
func (s *Scene) SaveAs(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return errkind.IOf("write scene", err)
	}
	s.path = path
	s.original = data
	return nil
}

// Diff renders a unified diff between the document as loaded (or last saved) and
// its current in-memory state. Both sides are re-encoded so formatting noise in
// the source file does not show up.
func (s *Scene) Diff() (string, error) {
	before := s.original
	if len(before) > 0 {
		if doc, err := Decode(before, s.format, "original"); err == nil {
			if data, err := Encode(doc, s.format); err == nil {
				before = data
			}
		}
	}
	after, err := s.Marshal()
	if err != nil {
		return "", err
	}
	name := s.path
	if name == "" {
		name = s.doc.Name
	}
	return udiff.Unified(name+" (current)", name+" (configured)", string(before), string(after)), nil
}

var (
	_ physbone.InstallHost      = (*Scene)(nil)
	_ physbone.PhysBoneEditor   = (*Scene)(nil)
	_ hierarchy.ComponentLister = (*Scene)(nil)
)
