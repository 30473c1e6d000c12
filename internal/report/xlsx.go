// Package report renders spreadsheet exports of the hotel ledger.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/hotel-management/internal/repository"
)

const (
	BookingsSheet = "Bookings"
	StatsSheet    = "Stats"
)

// LedgerColumns is the column order of the Bookings sheet.
var LedgerColumns = []string{
	"BookingsID", "FirstName", "LastName", "bookedDate", "arrivalDate", "departureDay",
	"stay_duration", "RoomID", "room_type", "PaymentType", "price", "discount",
	"final_amount", "payment_completed",
}

// statSections are written in this order; popularity is a table, the
// others are single rows of named figures.
var statSections = []string{"occupancy", "revenue", "bookings"}

// Workbook builds a workbook with the booking ledger and the hotel
// statistics.  The caller closes the returned file.
func Workbook(ledger []repository.Row, stats map[string]any) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", BookingsSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeTable(f, BookingsSheet, 1, LedgerColumns, ledger); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(StatsSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeStats(f, stats); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Write renders the workbook to w.
func Write(w io.Writer, ledger []repository.Row, stats map[string]any) error {
	f, err := Workbook(ledger, stats)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func writeTable(f *excelize.File, sheet string, startRow int, cols []string, rows []repository.Row) error {
	for i, h := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, startRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for i, h := range cols {
			cell, err := excelize.CoordinatesToCellName(i+1, startRow+r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, row[h]); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeStats(f *excelize.File, stats map[string]any) error {
	line := 1
	put := func(col int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, line)
		if err != nil {
			return err
		}
		return f.SetCellValue(StatsSheet, cell, v)
	}

	for _, name := range statSections {
		section, ok := stats[name].(repository.Row)
		if !ok {
			continue
		}
		if err := put(1, name); err != nil {
			return err
		}
		line++
		keys := make([]string, 0, len(section))
		for k := range section {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := put(1, k); err != nil {
				return err
			}
			if err := put(2, section[k]); err != nil {
				return err
			}
			line++
		}
		line++
	}

	pop, ok := stats["popularity"].([]repository.Row)
	if !ok || len(pop) == 0 {
		return nil
	}
	if err := put(1, "popularity"); err != nil {
		return err
	}
	line++
	if err := writeTable(f, StatsSheet, line, []string{"type", "booking_count", "booking_percentage"}, pop); err != nil {
		return fmt.Errorf("popularity: %w", err)
	}
	return nil
}
