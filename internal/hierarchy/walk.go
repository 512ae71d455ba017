package hierarchy

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/conn-castle/rigkit/internal/match"
)

const (
	// DefaultMaxDepth bounds dumps unless a deep scan is requested.
	DefaultMaxDepth = 15
	// Unlimited disables the depth limit.
	Unlimited = -1
)

// WalkOptions controls a traversal.
type WalkOptions struct {
	// MaxDepth is the deepest level whose children are still visited; Unlimited
	// (or any negative value) never truncates. Roots are depth 0.
	MaxDepth int
	// IncludeComponents captures each node's component type names when the tree
	// implements ComponentLister.
	IncludeComponents bool
}

// Entry is one visited node.
type Entry struct {
	Node       NodeID
	Name       string
	Path       string
	Depth      int
	Children   int
	Components []string
	// Truncated is the number of children not visited because of the depth limit.
	Truncated int
}

// TraversalResult is the pre-order list of visited nodes from one walk.
type TraversalResult struct {
	Entries       []Entry
	CyclesSkipped int
}

// Nodes returns the visited node IDs in traversal order.
func (r TraversalResult) Nodes() []NodeID {
	out := make([]NodeID, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Node
	}
	return out
}

// TruncatedCount sums the children hidden by the depth limit.
func (r TraversalResult) TruncatedCount() int {
	total := 0
	for _, e := range r.Entries {
		total += e.Truncated
	}
	return total
}

type frame struct {
	id     NodeID
	depth  int
	parent string
	hasPar bool
}

// Walk traverses every root of tree depth first, pre-order, in host child order.
func Walk(tree Tree, opts WalkOptions) TraversalResult {
	return WalkFrom(tree, tree.Roots(), opts)
}

// WalkFrom traverses the given start nodes as if they were roots. Paths are still
// resolved against the full tree. Walks share no state and may be repeated freely.
func WalkFrom(tree Tree, starts []NodeID, opts WalkOptions) TraversalResult {
	var result TraversalResult
	lister, _ := tree.(ComponentLister)
	visited := roaring.New()

	stack := make([]frame, 0, len(starts))
	for i := len(starts) - 1; i >= 0; i-- {
		stack = append(stack, startFrame(tree, starts[i]))
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visited.CheckedAdd(uint32(top.id)) {
			result.CyclesSkipped++
			continue
		}

		name := tree.Name(top.id)
		path := name
		if top.hasPar {
			path = top.parent + PathSeparator + name
		}
		children := tree.Children(top.id)
		entry := Entry{
			Node:     top.id,
			Name:     name,
			Path:     path,
			Depth:    top.depth,
			Children: len(children),
		}
		if opts.IncludeComponents && lister != nil {
			entry.Components = lister.ComponentTypes(top.id)
		}

		if opts.MaxDepth >= 0 && top.depth >= opts.MaxDepth {
			entry.Truncated = len(children)
			result.Entries = append(result.Entries, entry)
			continue
		}
		result.Entries = append(result.Entries, entry)

		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: children[i], depth: top.depth + 1, parent: path, hasPar: true})
		}
	}
	return result
}

func startFrame(tree Tree, id NodeID) frame {
	parent, ok := tree.Parent(id)
	if !ok {
		return frame{id: id}
	}
	return frame{id: id, parent: Resolve(tree, parent), hasPar: true}
}

// CollectMatching returns the direct children of root that satisfy rule, in host
// child order. It never descends further and returns an empty slice when nothing
// matches.
func CollectMatching(tree Tree, root NodeID, rule match.Rule) []NodeID {
	matched := []NodeID{}
	if rule == nil {
		return matched
	}
	rootPath := Resolve(tree, root)
	for _, child := range tree.Children(root) {
		name := tree.Name(child)
		subject := match.Subject{
			Name:     name,
			Path:     rootPath + PathSeparator + name,
			Depth:    1,
			Children: len(tree.Children(child)),
		}
		if rule.Match(subject) {
			matched = append(matched, child)
		}
	}
	return matched
}

// Select walks the whole tree and returns every entry whose node satisfies rule.
func Select(tree Tree, rule match.Rule) []Entry {
	if rule == nil {
		return nil
	}
	var out []Entry
	for _, e := range Walk(tree, WalkOptions{MaxDepth: Unlimited}).Entries {
		if rule.Match(match.Subject{Name: e.Name, Path: e.Path, Depth: e.Depth, Children: e.Children}) {
			out = append(out, e)
		}
	}
	return out
}

// FindByName returns every node whose name equals name exactly, in pre-order.
func FindByName(tree Tree, name string) []NodeID {
	var out []NodeID
	for _, e := range Walk(tree, WalkOptions{MaxDepth: Unlimited}).Entries {
		if e.Name == name {
			out = append(out, e.Node)
		}
	}
	return out
}
