package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// Options selects the engine and carries its connection settings.
// SQLitePath is used by the sqlite3 driver; the remaining fields by mysql.
type Options struct {
	Driver     string
	SQLitePath string
	User       string
	Pass       string
	Host       string
	Port       string
	Name       string
}

// Open connects to the configured engine, verifies the connection and
// returns the handle together with the matching SQL dialect.
func Open(opts Options) (*sql.DB, Dialect, error) {
	switch strings.ToLower(opts.Driver) {
	case "", DriverSQLite, "sqlite":
		db, err := OpenSQLite(opts.SQLitePath)
		return db, SQLite, err
	case DriverMySQL:
		db, err := OpenMySQL(opts.User, opts.Pass, opts.Host, opts.Port, opts.Name)
		return db, MySQL, err
	}
	return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", opts.Driver)
}

// OpenSQLite opens (creating if needed) the sqlite database at path.
// ":memory:" yields a private in-memory database.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		path = "hotel.db"
	}
	// _txlock=immediate takes the write lock at BEGIN so two workflows
	// cannot both read the same vacant room before either writes it.
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	if path != ":memory:" {
		dsn += "&_journal_mode=WAL"
	}
	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, err
	}

	// sqlite has a single writer; an in-memory database also lives and
	// dies with its connection, so the pool is pinned to one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenMySQL connects to MySQL and verifies the connection.
func OpenMySQL(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATE -> time.Time | loc=UTC keeps dates stable
	// clientFoundRows=true -> affected rows count matched rows, as sqlite does
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		auth, host, port, name)

	db, err := sql.Open(DriverMySQL, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping with timeout
func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
