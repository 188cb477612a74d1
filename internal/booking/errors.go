// Package booking implements the booking queue engine: the durable
// booking ledger, the FIFO queue advancer, the periodic expiry sweep and
// the wait-time estimator.  Persistence and catalog lookups are reached
// through the ports declared in ports.go so the engine can be exercised
// against fakes in tests and against MySQL in production.
package booking

import "fmt"

// The error types below form the closed taxonomy surfaced by every
// operation of the engine.  Handlers match them with errors.As and
// translate them to HTTP statuses; none of them is retried by the core.

// ValidationError reports malformed or missing input that the caller can
// correct, such as booking a table without a party size.
type ValidationError struct {
    Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ConflictError reports an invariant violation caused by concurrent
// state, such as a table already held by another booked booking.  The
// caller should retry with different input.
type ConflictError struct {
    Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// PermissionError reports that the acting user may not perform the
// operation on this booking.  Not retryable.
type PermissionError struct {
    Reason string
}

func (e *PermissionError) Error() string { return e.Reason }

// StateError reports an operation that is invalid for the booking's
// current lifecycle state, such as paying while others are still ahead
// in the queue.  Not retryable.
type StateError struct {
    Reason string
}

func (e *StateError) Error() string { return e.Reason }

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
    Entity string
    ID     uint64
}

func (e *NotFoundError) Error() string {
    return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}
