package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/hotel-management/internal/database"
)

// Row is one result row keyed by column name.
type Row map[string]any

// ExecResult describes the outcome of a write statement.
type ExecResult struct {
	Success      bool  `json:"success"`
	AffectedRows int64 `json:"affected_rows"`
	LastInsertID int64 `json:"last_insert_id,omitempty"`
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor runs single statements with bound parameters and owns the
// transaction boundary of multi-statement workflows.
type Executor struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewExecutor returns an Executor bound to db.
func NewExecutor(db *sql.DB, dialect database.Dialect) *Executor {
	return &Executor{db: db, dialect: dialect}
}

// DB exposes the underlying handle.
func (x *Executor) DB() *sql.DB { return x.db }

// Dialect exposes the SQL dialect of the underlying engine.
func (x *Executor) Dialect() database.Dialect { return x.dialect }

// Query runs a read statement and returns every row.  An empty result
// is an empty, non-nil slice.
func (x *Executor) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	return queryRows(ctx, x.db, query, args...)
}

// Exec runs a write statement.
func (x *Executor) Exec(ctx context.Context, query string, args ...any) (ExecResult, error) {
	return execStmt(ctx, x.db, query, args...)
}

// WithTx runs fn inside one transaction.  Any error from fn rolls the
// transaction back; a failed rollback is reported as *RollbackError.
func (x *Executor) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := x.db.BeginTx(ctx, &sql.TxOptions{Isolation: x.dialect.TxIsolation()})
	if err != nil {
		return wrapDB(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		committed = true // rollback handled here so its error is visible
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return &RollbackError{Err: err, RollbackErr: rbErr}
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapDB(err)
	}
	committed = true
	return nil
}

func queryRows(ctx context.Context, q querier, query string, args ...any) ([]Row, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDB(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, wrapDB(err)
	}
	types, _ := rows.ColumnTypes()

	out := make([]Row, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, wrapDB(err)
		}
		row := make(Row, len(cols))
		for i, name := range cols {
			var ct *sql.ColumnType
			if i < len(types) {
				ct = types[i]
			}
			row[name] = normalize(vals[i], ct)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB(err)
	}
	return out, nil
}

func execStmt(ctx context.Context, q querier, query string, args ...any) (ExecResult, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ExecResult{}, fmt.Errorf("%w: %s", ErrConflict, err.Error())
		}
		return ExecResult{}, wrapDB(err)
	}
	affected, _ := res.RowsAffected()
	out := ExecResult{Success: true, AffectedRows: affected}
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT") {
		if id, err := res.LastInsertId(); err == nil {
			out.LastInsertID = id
		}
	}
	return out, nil
}

// normalize converts driver values into JSON-friendly scalars: text
// protocols return numbers as []byte, and DATE columns come back as
// time.Time from both drivers.
func normalize(v any, ct *sql.ColumnType) any {
	switch x := v.(type) {
	case []byte:
		s := string(x)
		if ct == nil {
			return s
		}
		switch strings.ToUpper(ct.DatabaseTypeName()) {
		case "INT", "INTEGER", "BIGINT", "SMALLINT", "MEDIUMINT", "TINYINT", "UNSIGNED BIGINT", "UNSIGNED INT":
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
		case "DECIMAL", "DOUBLE", "FLOAT", "REAL", "NUMERIC":
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
		return s
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.UTC().Format(time.RFC3339)
	}
	return v
}
