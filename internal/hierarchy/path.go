package hierarchy

import (
	"strings"

	"github.com/RoaringBitmap/roaring"
)

// PathSeparator joins node names in a resolved path.
const PathSeparator = "/"

// Resolve returns the root-to-node name chain of id. A root resolves to its own name.
func Resolve(tree Tree, id NodeID) string {
	chain := ancestry(tree, id)
	names := make([]string, len(chain))
	for i, node := range chain {
		names[len(chain)-1-i] = tree.Name(node)
	}
	return strings.Join(names, PathSeparator)
}

// ancestry lists id followed by its ancestors, stopping early on a parent cycle.
func ancestry(tree Tree, id NodeID) []NodeID {
	seen := roaring.New()
	chain := []NodeID{id}
	seen.Add(uint32(id))
	current := id
	for {
		parent, ok := tree.Parent(current)
		if !ok || !seen.CheckedAdd(uint32(parent)) {
			return chain
		}
		chain = append(chain, parent)
		current = parent
	}
}

// PathCache memoizes resolved paths for the duration of one traversal.
type PathCache struct {
	tree  Tree
	paths map[NodeID]string
}

// NewPathCache returns an empty cache over tree.
func NewPathCache(tree Tree) *PathCache {
	return &PathCache{tree: tree, paths: make(map[NodeID]string)}
}

// Path returns the resolved path of id, reusing any cached ancestor path.
func (c *PathCache) Path(id NodeID) string {
	if p, ok := c.paths[id]; ok {
		return p
	}
	chain := ancestry(c.tree, id)
	// Find the nearest ancestor that is already cached.
	start := len(chain)
	prefix := ""
	for i, node := range chain {
		if p, ok := c.paths[node]; ok {
			start = i
			prefix = p
			break
		}
	}
	for i := start - 1; i >= 0; i-- {
		name := c.tree.Name(chain[i])
		if prefix == "" && i == len(chain)-1 {
			prefix = name
		} else {
			prefix = prefix + PathSeparator + name
		}
		c.paths[chain[i]] = prefix
	}
	return c.paths[id]
}

// Put records a path computed elsewhere, for example by a walk that already
// tracks the parent path.
func (c *PathCache) Put(id NodeID, path string) {
	c.paths[id] = path
}
