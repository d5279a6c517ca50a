package common

import "errors"

// Error classes shared by every ledger module. Module errors unwrap to one of
// these so callers can classify failures with errors.Is.
var (
	// ErrCaller marks a rejected request: bad amounts, missing shares, an
	// emission that is not ready. Nothing was changed.
	ErrCaller = errors.New("caller error")
	// ErrSolvency marks an internal accounting breach: a payout larger than
	// the held reward balance. The operation aborted.
	ErrSolvency = errors.New("solvency violation")
	// ErrCollaborator marks a failure of an external asset or swap. Held funds
	// are retained for a later retry.
	ErrCollaborator = errors.New("collaborator failure")
)

// ErrorClass buckets errors for transport mapping and metrics labels.
type ErrorClass string

const (
	ClassNone         ErrorClass = ""
	ClassCaller       ErrorClass = "caller"
	ClassPaused       ErrorClass = "paused"
	ClassSolvency     ErrorClass = "solvency"
	ClassCollaborator ErrorClass = "collaborator"
	ClassInternal     ErrorClass = "internal"
)

type classifiedError struct {
	msg   string
	class error
}

func (e *classifiedError) Error() string { return e.msg }

func (e *classifiedError) Unwrap() error { return e.class }

// CallerError returns a sentinel error in the caller class.
func CallerError(msg string) error { return &classifiedError{msg: msg, class: ErrCaller} }

// SolvencyError returns a sentinel error in the solvency class.
func SolvencyError(msg string) error { return &classifiedError{msg: msg, class: ErrSolvency} }

// CollaboratorError returns a sentinel error in the collaborator class.
func CollaboratorError(msg string) error { return &classifiedError{msg: msg, class: ErrCollaborator} }

// Classify maps err onto its ErrorClass.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrModulePaused):
		return ClassPaused
	case errors.Is(err, ErrSolvency):
		return ClassSolvency
	case errors.Is(err, ErrCollaborator):
		return ClassCollaborator
	case errors.Is(err, ErrCaller), errors.Is(err, ErrReentrantCall):
		return ClassCaller
	default:
		return ClassInternal
	}
}
