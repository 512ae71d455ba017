package messages

// Armature analysis report lines.
const (
	ArmatureReportHeader        = "=== Armature Structure Analysis ==="
	ArmatureSceneFmt            = "Scene: %s\n"
	ArmatureGeneratedFmt        = "Generated: %s\n"
	ArmatureCandidateFmt        = "Potential Armature: %s\n"
	ArmatureBoneFoundFmt        = "Bone Found: %s\n"
	ArmatureSummaryHeader       = "=== Summary ==="
	ArmatureSummaryArmaturesFmt = "Potential Armatures Found: %d\n"
	ArmatureSummaryBonesFmt     = "Total Bones Found: %d\n"
	ArmatureSectionFmt          = "=== Armature #%d: %s ===\n"
	ArmatureFullPathFmt         = "Full Path: %s\n"
	ArmatureChildCountFmt       = "Child Count: %d\n"
	ArmatureCommonBoneFmt       = "  %s: %s\n"
	ArmatureCommonFoundFmt      = "  Found %d common bones\n"
	ArmatureNoCommonBones       = "  No common bone names found"
	ArmaturePreviewHeaderFmt    = "Bone Hierarchy (first %d levels):\n"
)
