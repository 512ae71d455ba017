package match

import "strings"

// BoneKeywords is the vocabulary used to flag bone-like nodes.
var BoneKeywords = NewKeywords(
	"hip", "spine", "chest", "neck", "head", "shoulder", "arm", "leg", "thigh",
	"knee", "foot", "hand", "finger", "thumb", "toe", "bone", "joint",
)

// CommonBoneNames are looked up, in order, inside each armature.
var CommonBoneNames = []string{
	"hip", "spine", "chest", "neck", "head", "shoulder", "arm", "leg", "thigh", "knee", "foot",
}

var armatureKeywords = NewKeywords("armature", "skeleton", "rig", "bones")

// ArmatureRule flags armature roots: an armature keyword, or "root" on a node that
// has children.
type ArmatureRule struct{}

func (ArmatureRule) Match(s Subject) bool {
	if armatureKeywords.Match(s) {
		return true
	}
	return s.Children > 0 && strings.Contains(strings.ToLower(s.Name), "root")
}

func (ArmatureRule) String() string {
	return "armature(" + strings.Join(armatureKeywords.words, ",") + ",root+children)"
}
