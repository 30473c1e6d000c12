package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidTableName(t *testing.T) {
	for _, name := range []string{"Rooms", "refresh_tokens", "T1"} {
		assert.True(t, ValidTableName(name), name)
	}
	for _, name := range []string{"", "Rooms;", "Rooms WHERE 1=1", "a-b", "`Rooms`"} {
		assert.False(t, ValidTableName(name), name)
	}
}

func TestReadRecords(t *testing.T) {
	a := NewTableAccessor(newSeededExecutor(t))
	ctx := context.Background()

	rows, err := a.ReadRecords(ctx, "Rooms", "", 0)
	require.NoError(t, err)
	assert.Len(t, rows, DefaultRecordLimit)

	rows, err = a.ReadRecords(ctx, "Rooms", "type = '3BHK'", 10)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = a.ReadRecords(ctx, "Customers", "", 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = a.ReadRecords(ctx, "Rooms;--", "", 1)
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestDescribeTable(t *testing.T) {
	a := NewTableAccessor(newSeededExecutor(t))
	ctx := context.Background()

	cols, err := a.DescribeTable(ctx, "Rooms")
	require.NoError(t, err)
	require.Len(t, cols, 5)
	assert.Equal(t, "RoomID", cols[0]["name"])

	cols, err = a.DescribeTable(ctx, "Nope")
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestCustomQuery(t *testing.T) {
	a := NewTableAccessor(newSeededExecutor(t))
	ctx := context.Background()

	rows, err := a.CustomQuery(ctx, "  select RoomID from Rooms where isVacant = 1 ")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	for _, q := range []string{
		"DELETE FROM Rooms",
		"UPDATE Rooms SET price = 1",
		"SELECT 1; DELETE FROM Rooms",
		"WITH x AS (SELECT 1) SELECT * FROM x",
	} {
		_, err := a.CustomQuery(ctx, q)
		assert.ErrorIs(t, err, ErrReadOnly, q)
	}
}

func TestListTables(t *testing.T) {
	a := NewTableAccessor(newSeededExecutor(t))

	rows, err := a.ListTables(context.Background())
	require.NoError(t, err)
	var names []string
	for _, r := range rows {
		names = append(names, r["name"].(string))
	}
	assert.Subset(t, names, []string{"Customers", "Pricing", "Rooms", "Bookings"})
}
