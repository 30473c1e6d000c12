package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/iliyamo/hotel-management/internal/model"
)

// RoomRepo provides access to the Rooms table.  Methods with a Tx
// suffix run inside a caller-owned transaction; the caller commits or
// rolls back.  Every write that changes occupancy sets isVacant and
// currentStay in the same statement.
type RoomRepo struct {
    x *Executor
}

// NewRoomRepo returns a RoomRepo bound to the given executor.
func NewRoomRepo(x *Executor) *RoomRepo { return &RoomRepo{x: x} }

const roomColumns = `RoomID, isVacant, currentStay, type, price`

func scanRoom(row *sql.Row) (model.Room, error) {
    var (
        r    model.Room
        stay sql.NullInt64
        typ  string
    )
    if err := row.Scan(&r.RoomID, &r.IsVacant, &stay, &typ, &r.Price); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return model.Room{}, ErrNotFound
        }
        return model.Room{}, wrapDB(err)
    }
    r.Type = model.RoomType(typ)
    if stay.Valid {
        id := stay.Int64
        r.CurrentStay = &id
    }
    return r, nil
}

// Create inserts a new vacant room.  A duplicate RoomID yields ErrConflict.
func (r *RoomRepo) Create(ctx context.Context, room model.Room) error {
    const q = `INSERT INTO Rooms (RoomID, isVacant, currentStay, type, price) VALUES (?, 1, NULL, ?, ?)`
    _, err := execStmt(ctx, r.x.db, q, room.RoomID, string(room.Type), room.Price)
    return err
}

// Get returns the room with the given ID or ErrNotFound.
func (r *RoomRepo) Get(ctx context.Context, id int64) (model.Room, error) {
    return scanRoom(r.x.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM Rooms WHERE RoomID = ?`, id))
}

// GetTx is Get inside a transaction.
func (r *RoomRepo) GetTx(ctx context.Context, tx *sql.Tx, id int64) (model.Room, error) {
    return scanRoom(tx.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM Rooms WHERE RoomID = ?`, id))
}

// FirstVacantTx returns the lowest RoomID among vacant rooms of the
// given type, or ErrNotFound when there is none.
func (r *RoomRepo) FirstVacantTx(ctx context.Context, tx *sql.Tx, roomType model.RoomType) (int64, error) {
    const q = `SELECT RoomID FROM Rooms WHERE isVacant = 1 AND type = ? ORDER BY RoomID LIMIT 1`
    var id int64
    if err := tx.QueryRowContext(ctx, q, string(roomType)).Scan(&id); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return 0, ErrNotFound
        }
        return 0, wrapDB(err)
    }
    return id, nil
}

// HolderTx returns the room whose currentStay is bookingID, or
// ErrNotFound when the booking is not in residence anywhere.
func (r *RoomRepo) HolderTx(ctx context.Context, tx *sql.Tx, bookingID int64) (int64, error) {
    const q = `SELECT RoomID FROM Rooms WHERE currentStay = ? ORDER BY RoomID LIMIT 1`
    var id int64
    if err := tx.QueryRowContext(ctx, q, bookingID).Scan(&id); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return 0, ErrNotFound
        }
        return 0, wrapDB(err)
    }
    return id, nil
}

// OccupyTx moves a vacant room to occupied by bookingID.  The vacancy
// guard in the WHERE clause turns a lost race into ErrConflict.
func (r *RoomRepo) OccupyTx(ctx context.Context, tx *sql.Tx, roomID, bookingID int64) error {
    const q = `UPDATE Rooms SET isVacant = 0, currentStay = ? WHERE RoomID = ? AND isVacant = 1`
    res, err := execStmt(ctx, tx, q, bookingID, roomID)
    if err != nil {
        return err
    }
    if res.AffectedRows != 1 {
        return ErrConflict
    }
    return nil
}

// ReleaseTx marks a room vacant and clears its stay.  A room that is
// already vacant is not touched, so a repeated call affects zero rows.
func (r *RoomRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, roomID int64) (int64, error) {
    const q = `UPDATE Rooms SET isVacant = 1, currentStay = NULL
               WHERE RoomID = ? AND (isVacant = 0 OR currentStay IS NOT NULL)`
    res, err := execStmt(ctx, tx, q, roomID)
    return res.AffectedRows, err
}

// ReleaseByBookingTx frees whichever room holds bookingID.
func (r *RoomRepo) ReleaseByBookingTx(ctx context.Context, tx *sql.Tx, bookingID int64) (int64, error) {
    const q = `UPDATE Rooms SET isVacant = 1, currentStay = NULL WHERE currentStay = ?`
    res, err := execStmt(ctx, tx, q, bookingID)
    return res.AffectedRows, err
}

// Update applies a partial update of type and price.
func (r *RoomRepo) Update(ctx context.Context, id int64, p model.RoomPatch) (int64, error) {
    var set []assignment
    if p.Type != nil {
        set = append(set, assignment{"type", string(*p.Type)})
    }
    if p.Price != nil {
        set = append(set, assignment{"price", *p.Price})
    }
    q, args, err := buildUpdate("Rooms", "RoomID", id, set)
    if err != nil {
        return 0, err
    }
    res, err := execStmt(ctx, r.x.db, q, args...)
    return res.AffectedRows, err
}

// Vacant lists vacant rooms, narrowed to roomType when it is not empty.
func (r *RoomRepo) Vacant(ctx context.Context, roomType string) ([]Row, error) {
    if roomType != "" {
        return r.x.Query(ctx, `SELECT * FROM Rooms WHERE isVacant = 1 AND type = ? ORDER BY RoomID`, roomType)
    }
    return r.x.Query(ctx, `SELECT * FROM Rooms WHERE isVacant = 1 ORDER BY RoomID`)
}

// Detail returns the room joined to its current stay and guest.
func (r *RoomRepo) Detail(ctx context.Context, id int64) ([]Row, error) {
    const q = `
    SELECT r.RoomID, r.isVacant, r.currentStay, r.type, r.price,
           b.BookingsID, b.arrivalDate, b.departureDay,
           c.FirstName, c.LastName
    FROM Rooms r
    LEFT JOIN Bookings b ON r.currentStay = b.BookingsID
    LEFT JOIN Customers c ON b.customerID = c.CustomerID
    WHERE r.RoomID = ?`
    return r.x.Query(ctx, q, id)
}

// SearchByPrice lists rooms priced within [minPrice, maxPrice], cheapest first.
func (r *RoomRepo) SearchByPrice(ctx context.Context, minPrice, maxPrice float64, onlyVacant bool) ([]Row, error) {
    var sb strings.Builder
    sb.WriteString(`SELECT * FROM Rooms WHERE price BETWEEN ? AND ?`)
    if onlyVacant {
        sb.WriteString(` AND isVacant = 1`)
    }
    sb.WriteString(` ORDER BY price ASC, RoomID ASC`)
    return r.x.Query(ctx, sb.String(), minPrice, maxPrice)
}

// Availability reports whether the room is occupied now, has bookings
// overlapping [start, end], or is free for the whole period.
func (r *RoomRepo) Availability(ctx context.Context, id int64, start, end model.Date) ([]Row, error) {
    span := r.x.dialect.Concat("b.arrivalDate", "' to '", "b.departureDay")
    q := `
    SELECT r.RoomID, r.type, r.price, r.isVacant,
           CASE
               WHEN r.isVacant = 0 AND r.currentStay IS NOT NULL THEN 'Currently occupied'
               WHEN COUNT(b.BookingsID) > 0 THEN 'Has bookings in specified period'
               ELSE 'Available for the entire period'
           END AS availability_status,
           GROUP_CONCAT(` + span + `) AS conflicting_bookings
    FROM Rooms r
    LEFT JOIN Bookings b ON (b.RoomID = r.RoomID OR b.BookingsID = r.currentStay)
        AND ((b.arrivalDate <= ? AND b.departureDay >= ?)
             OR (b.arrivalDate >= ? AND b.arrivalDate <= ?))
    WHERE r.RoomID = ?
    GROUP BY r.RoomID, r.type, r.price, r.isVacant, r.currentStay`
    return r.x.Query(ctx, q, end, start, start, end, id)
}

// CurrentStays lists occupied rooms with their booking and guest.
func (r *RoomRepo) CurrentStays(ctx context.Context) ([]Row, error) {
    const q = `
    SELECT r.RoomID, r.isVacant, r.currentStay, r.type, r.price,
           b.BookingsID, b.arrivalDate, b.departureDay,
           c.FirstName, c.LastName
    FROM Rooms r
    JOIN Bookings b ON r.currentStay = b.BookingsID
    JOIN Customers c ON b.customerID = c.CustomerID
    WHERE r.isVacant = 0
    ORDER BY r.RoomID`
    return r.x.Query(ctx, q)
}

// All lists every room.
func (r *RoomRepo) All(ctx context.Context) ([]Row, error) {
    return r.x.Query(ctx, `SELECT * FROM Rooms ORDER BY RoomID`)
}
