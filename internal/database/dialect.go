package database

import (
	"database/sql"
	"strings"
)

// Dialect isolates the few places where sqlite and MySQL disagree:
// DDL, catalog queries, date arithmetic and string concatenation.
// Everything else in the repository layer is plain SQL shared by both.
type Dialect interface {
	Name() string
	// Schema returns the DDL statements that create the hotel and staff
	// tables.  Every statement is idempotent.
	Schema() []string
	// DaysBetween renders an expression for the number of days from the
	// date expression from to the date expression to.
	DaysBetween(from, to string) string
	// Concat renders string concatenation of the given expressions.
	Concat(parts ...string) string
	// ListTablesQuery returns the user tables as rows with a "name" column.
	ListTablesQuery() string
	// DescribeTableQuery returns column metadata for the table bound as
	// the single parameter: name, type, nullable, primary_key.
	DescribeTableQuery() string
	// TxIsolation is the isolation level requested for workflows.
	TxIsolation() sql.IsolationLevel
}

// SQLite is the dialect of github.com/mattn/go-sqlite3.
var SQLite Dialect = sqliteDialect{}

// MySQL is the dialect of github.com/go-sql-driver/mysql.
var MySQL Dialect = mysqlDialect{}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return DriverSQLite }

func (sqliteDialect) DaysBetween(from, to string) string {
	return "(JULIANDAY(" + to + ") - JULIANDAY(" + from + "))"
}

func (sqliteDialect) Concat(parts ...string) string { return strings.Join(parts, " || ") }

func (sqliteDialect) ListTablesQuery() string {
	return `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
}

func (sqliteDialect) DescribeTableQuery() string {
	return `SELECT name, type,
	               CASE WHEN "notnull" = 1 THEN 0 ELSE 1 END AS nullable,
	               CASE WHEN pk > 0 THEN 1 ELSE 0 END AS primary_key
	        FROM pragma_table_info(?) ORDER BY cid`
}

// go-sqlite3 ignores the requested level; _txlock=immediate serializes writers.
func (sqliteDialect) TxIsolation() sql.IsolationLevel { return sql.LevelDefault }

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return DriverMySQL }

func (mysqlDialect) DaysBetween(from, to string) string {
	return "DATEDIFF(" + to + ", " + from + ")"
}

func (mysqlDialect) Concat(parts ...string) string {
	return "CONCAT(" + strings.Join(parts, ", ") + ")"
}

func (mysqlDialect) ListTablesQuery() string {
	return `SELECT TABLE_NAME AS name FROM information_schema.TABLES
	        WHERE TABLE_SCHEMA = DATABASE() ORDER BY TABLE_NAME`
}

func (mysqlDialect) DescribeTableQuery() string {
	return `SELECT COLUMN_NAME AS name, COLUMN_TYPE AS type,
	               CASE WHEN IS_NULLABLE = 'YES' THEN 1 ELSE 0 END AS nullable,
	               CASE WHEN COLUMN_KEY = 'PRI' THEN 1 ELSE 0 END AS primary_key
	        FROM information_schema.COLUMNS
	        WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
	        ORDER BY ORDINAL_POSITION`
}

func (mysqlDialect) TxIsolation() sql.IsolationLevel { return sql.LevelSerializable }
