// Package hierarchy traverses a host-owned node tree: path resolution, depth-first
// walks with depth limits, direct-child matching, and unique-leaf location.
//
// The tree is read only; nothing here mutates nodes.
package hierarchy

// NodeID identifies a node within one host tree for the lifetime of that tree.
type NodeID uint32

// Tree is the narrow accessor the core uses to read the host's node tree.
// Children must be returned in the host's native order.
type Tree interface {
	Roots() []NodeID
	Children(id NodeID) []NodeID
	Name(id NodeID) string
	Parent(id NodeID) (NodeID, bool)
}

// ComponentLister is implemented by trees that can name a node's attachments.
type ComponentLister interface {
	ComponentTypes(id NodeID) []string
}
