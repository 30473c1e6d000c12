package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAndSeed(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, db, SQLite))
	require.NoError(t, Migrate(ctx, db, SQLite), "migrate twice")
	require.NoError(t, Seed(ctx, db))
	require.NoError(t, Seed(ctx, db), "seed is a no-op on a populated database")

	for _, table := range []string{"Customers", "Pricing", "Rooms", "Bookings"} {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Equal(t, 5, n, table)
	}

	var occupied int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Rooms WHERE isVacant = 0`).Scan(&occupied))
	assert.Equal(t, 3, occupied)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(Options{Driver: "postgres"})
	assert.EqualError(t, err, `unsupported DB_DRIVER "postgres"`)
}

func TestDialects(t *testing.T) {
	assert.Equal(t, "(JULIANDAY(b) - JULIANDAY(a))", SQLite.DaysBetween("a", "b"))
	assert.Equal(t, "a || b", SQLite.Concat("a", "b"))
	assert.Equal(t, DriverMySQL, MySQL.Name())
	assert.Contains(t, MySQL.Concat("a", "b"), "CONCAT(")
}
