// Package armature locates armature roots and well-known bones in a hierarchy.
package armature

import (
	"strings"

	"github.com/conn-castle/rigkit/internal/hierarchy"
	"github.com/conn-castle/rigkit/internal/match"
)

// PreviewDepth is how many levels below an armature root are listed.
const PreviewDepth = 3

// CommonBone is the first node under an armature whose name contains Keyword.
type CommonBone struct {
	Keyword string           `json:"keyword"`
	Node    hierarchy.NodeID `json:"-"`
	Path    string           `json:"path"`
}

// Armature is one armature candidate with its common bones and a shallow preview.
type Armature struct {
	Node        hierarchy.NodeID  `json:"-"`
	Name        string            `json:"name"`
	Path        string            `json:"path"`
	ChildCount  int               `json:"childCount"`
	CommonBones []CommonBone      `json:"commonBones"`
	Preview     []hierarchy.Entry `json:"-"`
}

// Analysis is the result of scanning a whole tree.
type Analysis struct {
	Armatures []Armature        `json:"armatures"`
	Bones     []hierarchy.Entry `json:"-"`
}

// BonePaths lists the path of every bone candidate.
func (a Analysis) BonePaths() []string {
	out := make([]string, len(a.Bones))
	for i, b := range a.Bones {
		out[i] = b.Path
	}
	return out
}

// Analyze walks tree once and classifies every node against the armature and
// bone vocabularies. A node may be both.
func Analyze(tree hierarchy.Tree) Analysis {
	var out Analysis
	armatureRule := match.ArmatureRule{}
	for _, e := range hierarchy.Walk(tree, hierarchy.WalkOptions{MaxDepth: hierarchy.Unlimited}).Entries {
		subject := match.Subject{Name: e.Name, Path: e.Path, Depth: e.Depth, Children: e.Children}
		if armatureRule.Match(subject) {
			out.Armatures = append(out.Armatures, Armature{
				Node:       e.Node,
				Name:       e.Name,
				Path:       e.Path,
				ChildCount: e.Children,
			})
		}
		if match.BoneKeywords.Match(subject) {
			out.Bones = append(out.Bones, e)
		}
	}
	for i := range out.Armatures {
		describe(tree, &out.Armatures[i])
	}
	return out
}

func describe(tree hierarchy.Tree, a *Armature) {
	walk := hierarchy.WalkFrom(tree, []hierarchy.NodeID{a.Node}, hierarchy.WalkOptions{MaxDepth: hierarchy.Unlimited})
	for _, keyword := range match.CommonBoneNames {
		for _, e := range walk.Entries {
			if strings.Contains(strings.ToLower(e.Name), keyword) {
				a.CommonBones = append(a.CommonBones, CommonBone{Keyword: keyword, Node: e.Node, Path: e.Path})
				break
			}
		}
	}
	for _, e := range walk.Entries {
		if e.Depth <= PreviewDepth {
			a.Preview = append(a.Preview, e)
		}
	}
}

// FindCommonBone returns the first node, in pre-order from start and including
// start itself, whose lowercased name contains keyword.
func FindCommonBone(tree hierarchy.Tree, start hierarchy.NodeID, keyword string) (hierarchy.NodeID, bool) {
	keyword = strings.ToLower(keyword)
	walk := hierarchy.WalkFrom(tree, []hierarchy.NodeID{start}, hierarchy.WalkOptions{MaxDepth: hierarchy.Unlimited})
	for _, e := range walk.Entries {
		if strings.Contains(strings.ToLower(e.Name), keyword) {
			return e.Node, true
		}
	}
	return 0, false
}
