/*
errors.go - Centralized error types for the booking engine

PURPOSE:
  All engine error types in one place. The taxonomy matters here:

  - Validation rejections are NOT errors. Evaluate returns them as a
    Decision value with structured reasons; a full restaurant is a normal
    outcome, not a fault.
  - Conflict errors (table already in use) are errors so callers can render
    them differently from booking-rule rejections.
  - Configuration faults (tier boundaries out of order) are errors: the
    engine refuses to evaluate against a broken policy.

USAGE:
  if errors.Is(err, booking.ErrTableInUse) { ... render 409 ... }
  if errors.Is(err, booking.ErrInvalidPolicy) { ... surface config fault ... }

SEE ALSO:
  - admission.go: Decision and Reason (the non-error rejection path)
*/
package booking

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPolicy is returned when PolicyConfig violates its invariants.
	ErrInvalidPolicy = errors.New("invalid policy configuration")

	// ErrTableInUse is returned when a table assignment collides with an
	// overlapping reservation's assignment.
	ErrTableInUse = errors.New("table already in use")

	// ErrReservationNotFound is returned when a referenced reservation
	// does not exist.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrTableNotFound is returned when a referenced table does not exist
	// or is inactive.
	ErrTableNotFound = errors.New("table not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PolicyConfigError reports which part of the configuration is broken.
// Not end-user-safe; callers surface a curated message instead.
type PolicyConfigError struct {
	Field  string
	Detail string
}

func (e *PolicyConfigError) Error() string {
	return fmt.Sprintf("invalid policy configuration (%s): %s", e.Field, e.Detail)
}

func (e *PolicyConfigError) Unwrap() error { return ErrInvalidPolicy }

// TableInUseError reports which table blocked an assignment.
type TableInUseError struct {
	TableID TableID
	Label   string
}

func (e *TableInUseError) Error() string {
	return fmt.Sprintf("table %s (%s) is already assigned to an overlapping reservation", e.Label, e.TableID)
}

func (e *TableInUseError) Unwrap() error { return ErrTableInUse }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConflict reports whether the error is an assignment conflict, as
// opposed to a validation rejection or an internal fault.
func IsConflict(err error) bool { return errors.Is(err, ErrTableInUse) }

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrReservationNotFound) || errors.Is(err, ErrTableNotFound)
}
