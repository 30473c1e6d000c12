package repository

import (
	"context"
	"regexp"
	"strings"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// DefaultRecordLimit is the row limit of ReadRecords when none is given.
const DefaultRecordLimit = 5

// ValidTableName reports whether name may be interpolated into SQL as an
// identifier.
func ValidTableName(name string) bool { return tableNamePattern.MatchString(name) }

// TableAccessor provides generic reads and schema introspection.  Table
// names are the only text ever interpolated into statements and they
// pass ValidTableName first.
type TableAccessor struct {
	x *Executor
}

// NewTableAccessor returns a TableAccessor over x.
func NewTableAccessor(x *Executor) *TableAccessor { return &TableAccessor{x: x} }

// ReadRecords returns up to limit rows of table.  condition, when not
// empty, is appended verbatim as the WHERE clause; callers must never
// pass untrusted text there.  The limit is always bound.
func (a *TableAccessor) ReadRecords(ctx context.Context, table, condition string, limit int) ([]Row, error) {
	if !ValidTableName(table) {
		return nil, ErrInvalidTable
	}
	if limit <= 0 {
		limit = DefaultRecordLimit
	}
	q := "SELECT * FROM " + table
	if c := strings.TrimSpace(condition); c != "" {
		q += " WHERE " + c
	}
	q += " LIMIT ?"
	return a.x.Query(ctx, q, limit)
}

// DescribeTable returns name, type, nullable and primary_key per column.
// An unknown table yields no rows.
func (a *TableAccessor) DescribeTable(ctx context.Context, table string) ([]Row, error) {
	if !ValidTableName(table) {
		return nil, ErrInvalidTable
	}
	return a.x.Query(ctx, a.x.dialect.DescribeTableQuery(), table)
}

// CustomQuery runs caller-supplied SQL that must be a single SELECT.
// The check is textual, so statement chaining is refused as well: the
// sqlite driver would otherwise run every statement after the first.
func (a *TableAccessor) CustomQuery(ctx context.Context, query string) ([]Row, error) {
	q := strings.TrimSpace(query)
	q = strings.TrimSpace(strings.TrimRight(q, ";"))
	if !strings.HasPrefix(strings.ToLower(q), "select") || strings.Contains(q, ";") {
		return nil, ErrReadOnly
	}
	return a.x.Query(ctx, q)
}

// ListTables returns one row per user table with a "name" column.
func (a *TableAccessor) ListTables(ctx context.Context) ([]Row, error) {
	return a.x.Query(ctx, a.x.dialect.ListTablesQuery())
}
