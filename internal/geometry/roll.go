// Package geometry derives per-bone scalars from rest-pose positions.
//
// The roll heuristic assumes an unbranched chain and ignores the vertical offset;
// it is an approximation, not an anatomical guarantee.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/conn-castle/rigkit/internal/hierarchy"
)

// ZeroOffsetRoll is the roll produced when root and leaf coincide.
const ZeroOffsetRoll = 90.0

// Positioned is implemented by trees that expose world-space node positions.
type Positioned interface {
	Position(id hierarchy.NodeID) r3.Vec
}

// DeriveRoll returns atan2(dz, dx) in degrees plus 90, where (dx, dz) is the
// horizontal offset from root to leaf.
func DeriveRoll(root r3.Vec, leaf r3.Vec) float64 {
	d := r3.Sub(leaf, root)
	return math.Atan2(d.Z, d.X)*(180/math.Pi) + 90
}

// ChainRoll is the roll derived for one bone.
type ChainRoll struct {
	Roll   float64
	Leaf   hierarchy.NodeID
	Offset r3.Vec
	// Fallback is set when no unique leaf exists and the zero offset was used.
	Fallback error
}

// RollForChain locates the unique leaf below id and derives the roll from the
// offset between them. Ambiguous chains fall back to ZeroOffsetRoll and report
// the reason in Fallback.
func RollForChain(tree hierarchy.Tree, positions Positioned, id hierarchy.NodeID) ChainRoll {
	leaf, err := hierarchy.FindUniqueLeaf(tree, id)
	if err != nil {
		return ChainRoll{Roll: DeriveRoll(r3.Vec{}, r3.Vec{}), Leaf: id, Fallback: err}
	}
	root := positions.Position(id)
	tip := positions.Position(leaf)
	return ChainRoll{
		Roll:   DeriveRoll(root, tip),
		Leaf:   leaf,
		Offset: r3.Sub(tip, root),
	}
}
