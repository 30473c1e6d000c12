package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/iliyamo/hotel-management/internal/model"
)

// CustomerRepo provides access to the Customers table.
type CustomerRepo struct {
    x *Executor
}

// NewCustomerRepo returns a CustomerRepo bound to the given executor.
func NewCustomerRepo(x *Executor) *CustomerRepo { return &CustomerRepo{x: x} }

const customerColumns = `CustomerID, FirstName, LastName, DOB, IdentityType, IdentityString`

// Create inserts a guest and stores the generated ID on c.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
    const q = `INSERT INTO Customers (FirstName, LastName, DOB, IdentityType, IdentityString) VALUES (?, ?, ?, ?, ?)`
    res, err := execStmt(ctx, r.x.db, q, c.FirstName, c.LastName, c.DOB, string(c.IdentityType), c.IdentityString)
    if err != nil {
        return err
    }
    c.CustomerID = res.LastInsertID
    return nil
}

// Get returns the guest with the given ID or ErrNotFound.
func (r *CustomerRepo) Get(ctx context.Context, id int64) (model.Customer, error) {
    var (
        c   model.Customer
        typ string
    )
    err := r.x.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM Customers WHERE CustomerID = ?`, id).
        Scan(&c.CustomerID, &c.FirstName, &c.LastName, &c.DOB, &typ, &c.IdentityString)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return model.Customer{}, ErrNotFound
        }
        return model.Customer{}, wrapDB(err)
    }
    c.IdentityType = model.IdentityType(typ)
    return c, nil
}

// ExistsTx reports whether the guest exists.
func (r *CustomerRepo) ExistsTx(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
    var one int
    err := tx.QueryRowContext(ctx, `SELECT 1 FROM Customers WHERE CustomerID = ?`, id).Scan(&one)
    if errors.Is(err, sql.ErrNoRows) {
        return false, nil
    }
    if err != nil {
        return false, wrapDB(err)
    }
    return true, nil
}

// Update applies a partial update built from the fields present in p.
func (r *CustomerRepo) Update(ctx context.Context, id int64, p model.CustomerPatch) (int64, error) {
    var set []assignment
    if p.FirstName != nil {
        set = append(set, assignment{"FirstName", *p.FirstName})
    }
    if p.LastName != nil {
        set = append(set, assignment{"LastName", *p.LastName})
    }
    if p.DOB != nil {
        set = append(set, assignment{"DOB", *p.DOB})
    }
    if p.IdentityType != nil {
        set = append(set, assignment{"IdentityType", string(*p.IdentityType)})
    }
    if p.IdentityString != nil {
        set = append(set, assignment{"IdentityString", *p.IdentityString})
    }
    q, args, err := buildUpdate("Customers", "CustomerID", id, set)
    if err != nil {
        return 0, err
    }
    res, err := execStmt(ctx, r.x.db, q, args...)
    return res.AffectedRows, err
}

// Detail returns the guest with total bookings and the latest arrival.
func (r *CustomerRepo) Detail(ctx context.Context, id int64) ([]Row, error) {
    const q = `
    SELECT c.CustomerID, c.FirstName, c.LastName, c.DOB, c.IdentityType, c.IdentityString,
           COUNT(b.BookingsID) AS total_bookings,
           MAX(b.arrivalDate) AS last_stay
    FROM Customers c
    LEFT JOIN Bookings b ON c.CustomerID = b.customerID
    WHERE c.CustomerID = ?
    GROUP BY c.CustomerID, c.FirstName, c.LastName, c.DOB, c.IdentityType, c.IdentityString`
    return r.x.Query(ctx, q, id)
}

// Search matches term against first name, last name and identity
// number, with each guest's booking count and latest arrival.
func (r *CustomerRepo) Search(ctx context.Context, term string) ([]Row, error) {
    const q = `
    SELECT c.CustomerID, c.FirstName, c.LastName, c.DOB, c.IdentityType, c.IdentityString,
           COUNT(b.BookingsID) AS booking_count,
           MAX(b.arrivalDate) AS last_stay
    FROM Customers c
    LEFT JOIN Bookings b ON c.CustomerID = b.customerID
    WHERE c.FirstName LIKE ? OR c.LastName LIKE ? OR c.IdentityString LIKE ?
    GROUP BY c.CustomerID, c.FirstName, c.LastName, c.DOB, c.IdentityType, c.IdentityString
    ORDER BY c.LastName, c.FirstName`
    like := "%" + strings.TrimSpace(term) + "%"
    return r.x.Query(ctx, q, like, like, like)
}

// Frequent lists guests with at least minBookings bookings, busiest first.
func (r *CustomerRepo) Frequent(ctx context.Context, minBookings int) ([]Row, error) {
    const q = `
    SELECT c.CustomerID, c.FirstName, c.LastName, COUNT(b.BookingsID) AS booking_count
    FROM Customers c
    JOIN Bookings b ON c.CustomerID = b.customerID
    GROUP BY c.CustomerID, c.FirstName, c.LastName
    HAVING COUNT(b.BookingsID) >= ?
    ORDER BY booking_count DESC, c.CustomerID`
    return r.x.Query(ctx, q, minBookings)
}

// All lists every guest.
func (r *CustomerRepo) All(ctx context.Context) ([]Row, error) {
    return r.x.Query(ctx, `SELECT `+customerColumns+` FROM Customers ORDER BY CustomerID`)
}
