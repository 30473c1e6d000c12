package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/iliyamo/hotel-management/internal/model"
)

// BookingRepo provides access to the Bookings table and the read-only
// joins built around it.  Bookings.RoomID is a mirror of the room a
// booking was last assigned to and is maintained by the workflows
// alongside Rooms.currentStay.
type BookingRepo struct {
    x *Executor
}

// NewBookingRepo returns a BookingRepo bound to the given executor.
func NewBookingRepo(x *Executor) *BookingRepo { return &BookingRepo{x: x} }

const bookingColumns = `BookingsID, customerID, bookedDate, arrivalDate, departureDay, paymentID, RoomID`

func scanBooking(row *sql.Row) (model.Booking, error) {
    var (
        b    model.Booking
        room sql.NullInt64
    )
    err := row.Scan(&b.BookingsID, &b.CustomerID, &b.BookedDate, &b.ArrivalDate, &b.DepartureDay, &b.PaymentID, &room)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return model.Booking{}, ErrNotFound
        }
        return model.Booking{}, wrapDB(err)
    }
    if room.Valid {
        id := room.Int64
        b.RoomID = &id
    }
    return b, nil
}

// CreateTx inserts a booking and stores the generated ID on b.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `INSERT INTO Bookings (customerID, bookedDate, arrivalDate, departureDay, paymentID, RoomID)
               VALUES (?, ?, ?, ?, ?, ?)`
    var room any
    if b.RoomID != nil {
        room = *b.RoomID
    }
    res, err := execStmt(ctx, tx, q, b.CustomerID, b.BookedDate, b.ArrivalDate, b.DepartureDay, b.PaymentID, room)
    if err != nil {
        return err
    }
    b.BookingsID = res.LastInsertID
    return nil
}

// Get returns the booking or ErrNotFound.
func (r *BookingRepo) Get(ctx context.Context, id int64) (model.Booking, error) {
    return scanBooking(r.x.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM Bookings WHERE BookingsID = ?`, id))
}

// GetTx is Get inside a transaction.
func (r *BookingRepo) GetTx(ctx context.Context, tx *sql.Tx, id int64) (model.Booking, error) {
    return scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM Bookings WHERE BookingsID = ?`, id))
}

// SetRoomTx records roomID as the room the booking is assigned to.
func (r *BookingRepo) SetRoomTx(ctx context.Context, tx *sql.Tx, bookingID, roomID int64) (int64, error) {
    res, err := execStmt(ctx, tx, `UPDATE Bookings SET RoomID = ? WHERE BookingsID = ?`, roomID, bookingID)
    return res.AffectedRows, err
}

// DeleteTx removes a booking row.
func (r *BookingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id int64) (int64, error) {
    res, err := execStmt(ctx, tx, `DELETE FROM Bookings WHERE BookingsID = ?`, id)
    return res.AffectedRows, err
}

// UpdateTx applies a partial update of dates and payment reference.
func (r *BookingRepo) UpdateTx(ctx context.Context, tx *sql.Tx, id int64, p model.BookingPatch) (int64, error) {
    var set []assignment
    if p.ArrivalDate != nil {
        set = append(set, assignment{"arrivalDate", *p.ArrivalDate})
    }
    if p.DepartureDay != nil {
        set = append(set, assignment{"departureDay", *p.DepartureDay})
    }
    if p.PaymentID != nil {
        set = append(set, assignment{"paymentID", *p.PaymentID})
    }
    q, args, err := buildUpdate("Bookings", "BookingsID", id, set)
    if err != nil {
        return 0, err
    }
    res, err := execStmt(ctx, tx, q, args...)
    return res.AffectedRows, err
}

// Details returns one booking with guest, room and payment summaries,
// the stay length in days and the discounted amount.
func (r *BookingRepo) Details(ctx context.Context, id int64) ([]Row, error) {
    q := `
    SELECT b.BookingsID, b.customerID, b.bookedDate, b.arrivalDate, b.departureDay, b.paymentID,
           c.FirstName, c.LastName, c.IdentityType, c.IdentityString,
           r.RoomID, r.type AS room_type, r.price AS room_price,
           p.PaymentType, p.price AS payment_amount, p.discount, p.isDone AS payment_completed,
           ` + r.x.dialect.DaysBetween("b.arrivalDate", "b.departureDay") + ` AS stay_duration,
           p.price * (1 - p.discount / 100.0) AS final_amount
    FROM Bookings b
    JOIN Customers c ON b.customerID = c.CustomerID
    LEFT JOIN Rooms r ON r.RoomID = b.RoomID
    JOIN Pricing p ON b.paymentID = p.PaymentID
    WHERE b.BookingsID = ?`
    return r.x.Query(ctx, q, id)
}

// ArrivingBetween lists bookings whose arrival falls in [from, to].
func (r *BookingRepo) ArrivingBetween(ctx context.Context, from, to model.Date) ([]Row, error) {
    const q = `
    SELECT b.BookingsID, b.arrivalDate, b.departureDay,
           c.FirstName, c.LastName, r.RoomID, r.type
    FROM Bookings b
    JOIN Customers c ON b.customerID = c.CustomerID
    LEFT JOIN Rooms r ON r.RoomID = b.RoomID
    WHERE b.arrivalDate BETWEEN ? AND ?
    ORDER BY b.arrivalDate, b.BookingsID`
    return r.x.Query(ctx, q, from, to)
}

// DepartingBetween lists bookings whose departure falls in [from, to].
func (r *BookingRepo) DepartingBetween(ctx context.Context, from, to model.Date) ([]Row, error) {
    const q = `
    SELECT b.BookingsID, b.departureDay,
           c.FirstName, c.LastName, r.RoomID, r.type
    FROM Bookings b
    JOIN Customers c ON b.customerID = c.CustomerID
    LEFT JOIN Rooms r ON r.RoomID = b.RoomID
    WHERE b.departureDay BETWEEN ? AND ?
    ORDER BY b.departureDay, b.BookingsID`
    return r.x.Query(ctx, q, from, to)
}

// Overlapping lists bookings that arrive, depart or are in residence
// within [start, end].
func (r *BookingRepo) Overlapping(ctx context.Context, start, end model.Date) ([]Row, error) {
    q := `
    SELECT b.BookingsID, b.arrivalDate, b.departureDay,
           c.FirstName, c.LastName,
           r.RoomID, r.type AS room_type,
           p.price, p.discount, p.PaymentType, p.isDone AS payment_completed,
           ` + r.x.dialect.DaysBetween("b.arrivalDate", "b.departureDay") + ` AS stay_duration
    FROM Bookings b
    JOIN Customers c ON b.customerID = c.CustomerID
    LEFT JOIN Rooms r ON r.RoomID = b.RoomID
    JOIN Pricing p ON b.paymentID = p.PaymentID
    WHERE (b.arrivalDate BETWEEN ? AND ?)
       OR (b.departureDay BETWEEN ? AND ?)
       OR (b.arrivalDate <= ? AND b.departureDay >= ?)
    ORDER BY b.arrivalDate, b.BookingsID`
    return r.x.Query(ctx, q, start, end, start, end, start, end)
}

// ForCustomer returns the booking history of one guest, selected by ID
// when customerID is positive, otherwise by a name substring.
func (r *BookingRepo) ForCustomer(ctx context.Context, customerID int64, name string) ([]Row, error) {
    var sb strings.Builder
    sb.WriteString(`
    SELECT c.CustomerID, c.FirstName, c.LastName,
           b.BookingsID, b.bookedDate, b.arrivalDate, b.departureDay,
           r.RoomID, r.type,
           p.price, p.discount, p.PaymentType, p.isDone
    FROM Customers c
    JOIN Bookings b ON c.CustomerID = b.customerID
    LEFT JOIN Rooms r ON r.RoomID = b.RoomID
    JOIN Pricing p ON b.paymentID = p.PaymentID`)
    var args []any
    if customerID > 0 {
        sb.WriteString(` WHERE c.CustomerID = ?`)
        args = append(args, customerID)
    } else {
        term := "%" + strings.TrimSpace(name) + "%"
        sb.WriteString(` WHERE c.FirstName LIKE ? OR c.LastName LIKE ?`)
        args = append(args, term, term)
    }
    sb.WriteString(` ORDER BY b.arrivalDate DESC, b.BookingsID DESC`)
    return r.x.Query(ctx, sb.String(), args...)
}

// All lists every booking with the room it is assigned to.
func (r *BookingRepo) All(ctx context.Context) ([]Row, error) {
    const q = `
    SELECT b.BookingsID, b.customerID, b.bookedDate, b.arrivalDate, b.departureDay, b.paymentID,
           r.RoomID, r.type AS room_type, r.price AS room_price
    FROM Bookings b
    LEFT JOIN Rooms r ON r.RoomID = b.RoomID
    ORDER BY b.BookingsID`
    return r.x.Query(ctx, q)
}

// Ledger lists every booking with guest and payment figures, in arrival
// order.  It feeds the spreadsheet export.
func (r *BookingRepo) Ledger(ctx context.Context) ([]Row, error) {
    q := `
    SELECT b.BookingsID, c.FirstName, c.LastName, b.bookedDate, b.arrivalDate, b.departureDay,
           ` + r.x.dialect.DaysBetween("b.arrivalDate", "b.departureDay") + ` AS stay_duration,
           r.RoomID, r.type AS room_type,
           p.PaymentType, p.price, p.discount,
           p.price * (1 - p.discount / 100.0) AS final_amount,
           p.isDone AS payment_completed
    FROM Bookings b
    JOIN Customers c ON b.customerID = c.CustomerID
    LEFT JOIN Rooms r ON r.RoomID = b.RoomID
    JOIN Pricing p ON b.paymentID = p.PaymentID
    ORDER BY b.arrivalDate, b.BookingsID`
    return r.x.Query(ctx, q)
}
