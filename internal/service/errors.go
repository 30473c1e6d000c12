package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-management/internal/repository"
)

// Kind classifies a failed operation.
type Kind int

const (
	// Validation: malformed or out-of-range input, rejected before any
	// statement runs.
	Validation Kind = iota + 1
	// Conflict: the current room or booking state does not allow the
	// operation.
	Conflict
	// NotFound: a referenced row does not exist.
	NotFound
	// Database: the engine rejected a statement or is unreachable.
	Database
	// Compensation: a workflow failed and undoing its partial writes
	// failed as well.
	Compensation
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	case Database:
		return "database"
	case Compensation:
		return "compensation"
	}
	return "unknown"
}

// Error is the structured failure every service operation returns.
// Message is safe to show to staff and is never rewritten by the
// access surfaces.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func invalid(format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) *Error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

func notFound(msg string) *Error {
	return &Error{Kind: NotFound, Message: msg, Err: repository.ErrNotFound}
}

// KindOf returns the kind of err, Database for anything unclassified.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return Database
}

// classify maps repository errors onto the service taxonomy.  Errors
// that are already classified pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	// a failed rollback outranks whatever failure triggered it
	var rb *repository.RollbackError
	if errors.As(err, &rb) {
		inner := classify(rb.Err)
		return &Error{Kind: Compensation, Message: "Rollback failed after: " + inner.Error(), Err: err}
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNoFields):
		return &Error{Kind: Validation, Message: repository.ErrNoFields.Error(), Err: err}
	case errors.Is(err, repository.ErrInvalidTable), errors.Is(err, repository.ErrReadOnly):
		return &Error{Kind: Validation, Message: err.Error(), Err: err}
	case errors.Is(err, repository.ErrNotFound):
		return &Error{Kind: NotFound, Message: "Not found", Err: err}
	case errors.Is(err, repository.ErrConflict):
		return &Error{Kind: Conflict, Message: "Database error: " + err.Error(), Err: err}
	}
	var qe *repository.QueryError
	if errors.As(err, &qe) {
		return &Error{Kind: Database, Message: qe.Error(), Err: err}
	}
	return &Error{Kind: Database, Message: "Database error: " + err.Error(), Err: err}
}
