// Package batch sequences one scan-and-configure run: dump, optional armature
// analysis, root resolution, bone matching, validation or installation,
// configuration, persistence, and reporting.
package batch

import "github.com/conn-castle/rigkit/internal/errkind"

// State is a step of the run.
type State string

// Progress states.
const (
	StateInit                State = "init"
	StateHierarchyDumped     State = "hierarchy_dumped"
	StateArmatureAnalyzed    State = "armature_analyzed"
	StateRootResolved        State = "root_resolved"
	StateBonesMatched        State = "bones_matched"
	StateValidated           State = "validated"
	StateComponentsInstalled State = "components_installed"
	StateConfigured          State = "configured"
	StatePersisted           State = "persisted"
	StateReported            State = "reported"
	StateDone                State = "done"
)

// Terminal early-exit states.
const (
	StateNoRootSpecified  State = "no_root_specified"
	StateRootNotFound     State = "root_not_found"
	StateNoBonesMatched   State = "no_bones_matched"
	StateValidationFailed State = "validation_failed"
	StateUnexpectedError  State = "unexpected_error"
	StateCancelled        State = "cancelled"
)

// Result codes. Consumers such as CI pipelines depend on these values.
const (
	CodeSuccess          = 0
	CodeNoRootSpecified  = 1
	CodeNotFound         = 2
	CodeValidationFailed = 3
	CodeUnexpected       = 4
	CodeCancelled        = 5
)

// CodeFor maps a terminal state to its result code.
func CodeFor(s State) int {
	switch s {
	case StateDone:
		return CodeSuccess
	case StateNoRootSpecified:
		return CodeNoRootSpecified
	case StateRootNotFound, StateNoBonesMatched:
		return CodeNotFound
	case StateValidationFailed:
		return CodeValidationFailed
	case StateCancelled:
		return CodeCancelled
	default:
		return CodeUnexpected
	}
}

// CodeForKind maps an error kind raised outside a run (argument parsing, config
// loading) to a result code.
func CodeForKind(k errkind.Kind) int {
	switch k {
	case errkind.KindNone:
		return CodeSuccess
	case errkind.KindNotFound:
		return CodeNotFound
	case errkind.KindPrecondition:
		return CodeValidationFailed
	case errkind.KindCancelled:
		return CodeCancelled
	default:
		return CodeUnexpected
	}
}
