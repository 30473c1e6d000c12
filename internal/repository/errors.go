// Package repository defines the SQL layer of the hotel service: a
// generic Query Executor, the Table Accessor and one repository per
// table.  Errors shared by several repositories live in this file so
// that higher layers can tell apart the failure scenarios with
// errors.Is and errors.As.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup by primary key matches no row.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write would violate a uniqueness or
// foreign-key constraint, for example adding a room whose RoomID exists.
var ErrConflict = errors.New("conflict")

// ErrNoFields is returned by partial updates that received an empty patch.
var ErrNoFields = errors.New("No fields provided to update")

// ErrInvalidTable is returned by the Table Accessor when a table name
// contains characters outside [A-Za-z0-9_].
var ErrInvalidTable = errors.New("Invalid table name")

// ErrReadOnly is returned by CustomQuery for anything but a SELECT.
var ErrReadOnly = errors.New("Only SELECT queries are allowed for security reasons")

// ErrEmailExists is returned when registering a staff email twice.
var ErrEmailExists = errors.New("email already exists")

// QueryError wraps a driver error raised while executing a statement.
// Its message is what callers surface to users.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string { return "Database error: " + e.Err.Error() }

func (e *QueryError) Unwrap() error { return e.Err }

// RollbackError reports a workflow whose transaction failed and whose
// rollback failed as well.  Rows written before the failure may persist
// until the engine discards the transaction, so it is surfaced apart
// from ordinary database errors.
type RollbackError struct {
	Err         error // the failure that triggered the rollback
	RollbackErr error // the rollback failure itself
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback failed after %v: %v", e.Err, e.RollbackErr)
}

func (e *RollbackError) Unwrap() error { return e.Err }

// wrapDB turns a raw driver error into a QueryError, leaving sentinel
// and already-wrapped errors untouched.
func wrapDB(err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	for _, sentinel := range []error{ErrNotFound, ErrConflict, ErrNoFields, ErrInvalidTable, ErrReadOnly, ErrEmailExists} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &QueryError{Err: err}
}

// isUniqueViolation reports duplicate-key errors from either engine.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}
