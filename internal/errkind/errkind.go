// Package errkind defines the failure taxonomy shared by the scan, configure, and
// material pipelines. Errors are classified with errors.Is against the sentinels.
package errkind

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a named target or root that is absent from the tree.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous reports a branch that blocks unique-leaf resolution.
	ErrAmbiguous = errors.New("ambiguous")
	// ErrPrecondition reports a required component missing in validate mode.
	ErrPrecondition = errors.New("precondition failed")
	// ErrMalformed reports a rule, argument, or document that cannot be parsed.
	ErrMalformed = errors.New("malformed")
	// ErrIO reports a report, scene, or manifest read/write failure.
	ErrIO = errors.New("io failure")
	// ErrCancelled reports a cooperative cancellation.
	ErrCancelled = errors.New("cancelled")
	// ErrUnexpected wraps anything that was not otherwise classified.
	ErrUnexpected = errors.New("unexpected error")
)

// Kind is the coarse classification of an error.
type Kind string

// Kinds in precedence order used by Classify.
const (
	KindNone         Kind = ""
	KindNotFound     Kind = "not_found"
	KindAmbiguous    Kind = "ambiguous"
	KindPrecondition Kind = "precondition_failed"
	KindMalformed    Kind = "malformed"
	KindIO           Kind = "io_failure"
	KindCancelled    Kind = "cancelled"
	KindUnexpected   Kind = "unexpected"
)

var ordered = []struct {
	sentinel error
	kind     Kind
}{
	{ErrCancelled, KindCancelled},
	{ErrPrecondition, KindPrecondition},
	{ErrMalformed, KindMalformed},
	{ErrAmbiguous, KindAmbiguous},
	{ErrNotFound, KindNotFound},
	{ErrIO, KindIO},
	{ErrUnexpected, KindUnexpected},
}

// Classify maps err to its Kind; unknown errors are KindUnexpected.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, candidate := range ordered {
		if errors.Is(err, candidate.sentinel) {
			return candidate.kind
		}
	}
	return KindUnexpected
}

// IOf wraps err as an ErrIO failure with an operation description.
func IOf(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}

// FromPanic converts a recovered panic value into an ErrUnexpected error.
func FromPanic(recovered any) error {
	if err, ok := recovered.(error); ok {
		return fmt.Errorf("%w: panic: %w", ErrUnexpected, err)
	}
	return fmt.Errorf("%w: panic: %v", ErrUnexpected, recovered)
}
