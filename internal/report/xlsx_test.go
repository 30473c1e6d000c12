package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/hotel-management/internal/repository"
)

func sample() ([]repository.Row, map[string]any) {
	ledger := []repository.Row{{
		"BookingsID": int64(1), "FirstName": "John", "LastName": "Doe",
		"bookedDate": "2025-05-01", "arrivalDate": "2025-05-05", "departureDay": "2025-05-10",
		"stay_duration": int64(5), "RoomID": int64(101), "room_type": "2BHK",
		"PaymentType": "Credit Card", "price": 1200.0, "discount": 10.0,
		"final_amount": 1080.0, "payment_completed": true,
	}}
	stats := map[string]any{
		"occupancy": repository.Row{"total_rooms": int64(5), "occupied_rooms": int64(3)},
		"popularity": []repository.Row{
			{"type": "2BHK", "booking_count": int64(3), "booking_percentage": 60.0},
		},
	}
	return ledger, stats
}

func TestWorkbook(t *testing.T) {
	ledger, stats := sample()
	f, err := Workbook(ledger, stats)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{BookingsSheet, StatsSheet}, f.GetSheetList())

	rows, err := f.GetRows(BookingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, LedgerColumns, rows[0])
	assert.Equal(t, "John", rows[1][1])
	assert.Equal(t, "101", rows[1][7])

	stat, err := f.GetRows(StatsSheet)
	require.NoError(t, err)
	require.NotEmpty(t, stat)
	assert.Equal(t, "occupancy", stat[0][0])
	assert.Equal(t, []string{"occupied_rooms", "3"}, stat[1])
	assert.Equal(t, []string{"total_rooms", "5"}, stat[2])

	last := stat[len(stat)-1]
	assert.Equal(t, "2BHK", last[0])
}

func TestWrite(t *testing.T) {
	ledger, stats := sample()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ledger, stats))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(BookingsSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "BookingsID", v)
}

func TestWorkbook_EmptyInputs(t *testing.T) {
	f, err := Workbook(nil, nil)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(BookingsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
