package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSelection is returned when a caller violates a selection
	// invariant, e.g. assigning staff to a service that is not chosen.
	// This is a programming-contract error, the UI flow never produces it.
	ErrInvalidSelection = errors.New("checkout: invalid selection")

	// ErrStaffNotEligible is returned when the assigned staff member is not
	// in the service's eligible list.
	ErrStaffNotEligible = errors.New("checkout: staff member is not eligible for this service")

	// ErrStaffUnavailable is returned by the advisory availability check
	// when the assigned staff member already has an overlapping appointment.
	ErrStaffUnavailable = errors.New("checkout: staff member is not available in this slot")

	// ErrSlotUnavailable is returned by the advisory capacity check when the
	// salon has no free chair in the chosen slot.
	ErrSlotUnavailable = errors.New("checkout: slot is not available")

	// ErrForwardJump is returned by GoTo for a forward jump over steps whose
	// predicates do not hold.
	ErrForwardJump = errors.New("checkout: forward navigation is gated by step validation")

	// ErrCommitInFlight is returned when forward navigation or a second
	// commit is attempted while a commit call is outstanding.
	ErrCommitInFlight = errors.New("checkout: commit already in flight")

	// ErrConflictAtCommit is wrapped by the commit pipeline when the
	// authoritative recheck finds a staff or slot conflict. The orchestrator
	// routes the session back to the date/time step.
	ErrConflictAtCommit = errors.New("checkout: conflict detected at commit")

	// ErrCommitFailed is wrapped by the commit pipeline when the durable
	// write fails for any reason other than a conflict. Nothing is assumed
	// committed, the user may retry explicitly.
	ErrCommitFailed = errors.New("checkout: commit failed")
)

// ValidationError is the normal "cannot proceed yet" signal: a step's
// predicate is unmet. It is returned as a value, never panicked, and carries
// the specific condition so the UI can highlight it.
type ValidationError struct {
	Step   Step
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout: step %s invalid: %s: %s", e.Step, e.Field, e.Reason)
}

func newValidationError(step Step, field, format string, v ...interface{}) *ValidationError {
	return &ValidationError{
		Step:   step,
		Field:  field,
		Reason: fmt.Sprintf(format, v...),
	}
}
