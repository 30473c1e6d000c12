package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Seed loads the demo hotel (five guests, five bookings, five rooms) into
// an empty database.  It does nothing when Customers already has rows.
func Seed(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Customers`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	customers := [][]any{
		{1, "John", "Doe", "1990-01-01", "Adhar", "1234-5678-9012"},
		{2, "Jane", "Smith", "1985-05-23", "PAN", "ABCDE1234F"},
		{3, "Alice", "Johnson", "1992-11-10", "DL", "DL1234567890"},
		{4, "Bob", "Williams", "1978-08-15", "Adhar", "9876-5432-1098"},
		{5, "Charlie", "Brown", "2000-03-03", "PAN", "FGHIJ5678K"},
	}
	payments := [][]any{
		{1, "Credit Card", true, 1200.0, 10.0},
		{2, "UPI", false, 800.0, 5.0},
		{3, "Cash", true, 500.0, 0.0},
		{4, "Debit Card", true, 1000.0, 7.0},
		{5, "Net Banking", false, 1500.0, 12.0},
	}
	rooms := [][]any{
		{101, "2BHK", 1500.0},
		{102, "3BHK", 2500.0},
		{103, "2BHK", 1500.0},
		{104, "3BHK", 2500.0},
		{105, "2BHK", 1500.0},
	}
	bookings := [][]any{
		{1, 1, "2025-05-01", "2025-05-05", "2025-05-10", 1, 101},
		{2, 2, "2025-05-03", "2025-05-07", "2025-05-09", 2, nil},
		{3, 3, "2025-05-05", "2025-05-12", "2025-05-15", 3, 103},
		{4, 4, "2025-05-07", "2025-05-15", "2025-05-20", 4, 105},
		{5, 5, "2025-05-09", "2025-05-20", "2025-05-22", 5, nil},
	}
	// room -> booking in residence
	stays := [][]any{{1, 101}, {3, 103}, {4, 105}}

	steps := []struct {
		q    string
		rows [][]any
	}{
		{`INSERT INTO Customers (CustomerID, FirstName, LastName, DOB, IdentityType, IdentityString) VALUES (?, ?, ?, ?, ?, ?)`, customers},
		{`INSERT INTO Pricing (PaymentID, PaymentType, isDone, price, discount) VALUES (?, ?, ?, ?, ?)`, payments},
		{`INSERT INTO Rooms (RoomID, isVacant, currentStay, type, price) VALUES (?, 1, NULL, ?, ?)`, rooms},
		{`INSERT INTO Bookings (BookingsID, customerID, bookedDate, arrivalDate, departureDay, paymentID, RoomID) VALUES (?, ?, ?, ?, ?, ?, ?)`, bookings},
		{`UPDATE Rooms SET isVacant = 0, currentStay = ? WHERE RoomID = ?`, stays},
	}
	for _, s := range steps {
		for _, args := range s.rows {
			if _, err := tx.ExecContext(ctx, s.q, args...); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
