package hierarchy

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"github.com/conn-castle/rigkit/internal/errkind"
)

// AmbiguousLeafError reports that the descent from Start branched at Branch.
type AmbiguousLeafError struct {
	Start    string
	Branch   string
	Children int
	Cycle    bool
}

func (e *AmbiguousLeafError) Error() string {
	if e.Cycle {
		return fmt.Sprintf("no unique leaf under %s: cycle at %s", e.Start, e.Branch)
	}
	return fmt.Sprintf("no unique leaf under %s: %s has %d children", e.Start, e.Branch, e.Children)
}

// Is lets callers test for either errkind.ErrAmbiguous or errkind.ErrNotFound.
func (e *AmbiguousLeafError) Is(target error) bool {
	return target == errkind.ErrAmbiguous || target == errkind.ErrNotFound
}

// FindUniqueLeaf follows single-child links from id down to a childless node.
// A childless id is its own leaf. Any node with two or more children on the way
// fails the search.
func FindUniqueLeaf(tree Tree, id NodeID) (NodeID, error) {
	seen := roaring.New()
	current := id
	for {
		if !seen.CheckedAdd(uint32(current)) {
			return 0, &AmbiguousLeafError{Start: Resolve(tree, id), Branch: Resolve(tree, current), Cycle: true}
		}
		children := tree.Children(current)
		switch len(children) {
		case 0:
			return current, nil
		case 1:
			current = children[0]
		default:
			return 0, &AmbiguousLeafError{
				Start:    Resolve(tree, id),
				Branch:   Resolve(tree, current),
				Children: len(children),
			}
		}
	}
}
