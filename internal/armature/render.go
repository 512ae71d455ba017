package armature

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/conn-castle/rigkit/internal/messages"
)

// WriteText renders the analysis in the plain armature report layout.
func (a Analysis) WriteText(w io.Writer, sceneName string, generated time.Time) error {
	var b strings.Builder
	fmt.Fprintln(&b, messages.ArmatureReportHeader)
	fmt.Fprintf(&b, messages.ArmatureSceneFmt, sceneName)
	fmt.Fprintf(&b, messages.ArmatureGeneratedFmt, generated.Format(time.RFC3339))
	b.WriteString("\n")

	for _, arm := range a.Armatures {
		fmt.Fprintf(&b, messages.ArmatureCandidateFmt, arm.Path)
	}
	for _, bone := range a.Bones {
		fmt.Fprintf(&b, messages.ArmatureBoneFoundFmt, bone.Path)
	}

	fmt.Fprintln(&b, messages.ArmatureSummaryHeader)
	fmt.Fprintf(&b, messages.ArmatureSummaryArmaturesFmt, len(a.Armatures))
	fmt.Fprintf(&b, messages.ArmatureSummaryBonesFmt, len(a.Bones))
	b.WriteString("\n")

	for i, arm := range a.Armatures {
		fmt.Fprintf(&b, messages.ArmatureSectionFmt, i+1, arm.Name)
		fmt.Fprintf(&b, messages.ArmatureFullPathFmt, arm.Path)
		fmt.Fprintf(&b, messages.ArmatureChildCountFmt, arm.ChildCount)
		b.WriteString("\n")
		for _, cb := range arm.CommonBones {
			fmt.Fprintf(&b, messages.ArmatureCommonBoneFmt, strings.ToUpper(cb.Keyword), cb.Path)
		}
		if len(arm.CommonBones) > 0 {
			fmt.Fprintf(&b, messages.ArmatureCommonFoundFmt, len(arm.CommonBones))
		} else {
			fmt.Fprintln(&b, messages.ArmatureNoCommonBones)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, messages.ArmaturePreviewHeaderFmt, PreviewDepth)
		for _, e := range arm.Preview {
			fmt.Fprintf(&b, "%s%s\n", strings.Repeat("  ", e.Depth), e.Name)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
