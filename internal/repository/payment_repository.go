package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/hotel-management/internal/model"
)

// PaymentRepo provides access to the Pricing table.  A payment row is
// created together with its booking and deleted with it.
type PaymentRepo struct {
    x *Executor
}

// NewPaymentRepo returns a PaymentRepo bound to the given executor.
func NewPaymentRepo(x *Executor) *PaymentRepo { return &PaymentRepo{x: x} }

const paymentColumns = `PaymentID, PaymentType, isDone, price, discount`

func scanPayment(row *sql.Row) (model.Payment, error) {
    var p model.Payment
    if err := row.Scan(&p.PaymentID, &p.PaymentType, &p.IsDone, &p.Price, &p.Discount); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return model.Payment{}, ErrNotFound
        }
        return model.Payment{}, wrapDB(err)
    }
    return p, nil
}

func insertPayment(ctx context.Context, q querier, p *model.Payment) error {
    const stmt = `INSERT INTO Pricing (PaymentType, isDone, price, discount) VALUES (?, ?, ?, ?)`
    res, err := execStmt(ctx, q, stmt, p.PaymentType, p.IsDone, p.Price, p.Discount)
    if err != nil {
        return err
    }
    p.PaymentID = res.LastInsertID
    return nil
}

// Create inserts a standalone payment and stores its ID on p.  The
// discount is written as given; range checks belong to the caller.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
    return insertPayment(ctx, r.x.db, p)
}

// CreateTx is Create inside a transaction.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
    return insertPayment(ctx, tx, p)
}

// Get returns the payment or ErrNotFound.
func (r *PaymentRepo) Get(ctx context.Context, id int64) (model.Payment, error) {
    return scanPayment(r.x.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM Pricing WHERE PaymentID = ?`, id))
}

// GetTx is Get inside a transaction.
func (r *PaymentRepo) GetTx(ctx context.Context, tx *sql.Tx, id int64) (model.Payment, error) {
    return scanPayment(tx.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM Pricing WHERE PaymentID = ?`, id))
}

// DeleteTx removes a payment row.
func (r *PaymentRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id int64) (int64, error) {
    res, err := execStmt(ctx, tx, `DELETE FROM Pricing WHERE PaymentID = ?`, id)
    return res.AffectedRows, err
}

// SetDiscount overwrites the discount percentage.  Zero affected rows
// means the payment does not exist.
func (r *PaymentRepo) SetDiscount(ctx context.Context, id int64, discount float64) (int64, error) {
    res, err := execStmt(ctx, r.x.db, `UPDATE Pricing SET discount = ? WHERE PaymentID = ?`, discount, id)
    return res.AffectedRows, err
}

// MarkDone flags the payment as settled.
func (r *PaymentRepo) MarkDone(ctx context.Context, id int64) (int64, error) {
    return r.markDone(ctx, r.x.db, id)
}

// MarkDoneTx is MarkDone inside a transaction.
func (r *PaymentRepo) MarkDoneTx(ctx context.Context, tx *sql.Tx, id int64) (int64, error) {
    return r.markDone(ctx, tx, id)
}

func (r *PaymentRepo) markDone(ctx context.Context, q querier, id int64) (int64, error) {
    // clientFoundRows on mysql and sqlite's own counting both report a
    // matched row even when isDone was already set.
    res, err := execStmt(ctx, q, `UPDATE Pricing SET isDone = 1 WHERE PaymentID = ?`, id)
    return res.AffectedRows, err
}

// Details returns the payment joined to its booking, guest and room.
func (r *PaymentRepo) Details(ctx context.Context, id int64) ([]Row, error) {
    const q = `
    SELECT p.PaymentID, p.PaymentType, p.isDone, p.price, p.discount,
           p.price * (1 - p.discount / 100.0) AS final_amount,
           b.BookingsID, b.arrivalDate, b.departureDay,
           c.CustomerID, c.FirstName, c.LastName,
           r.RoomID, r.type AS room_type
    FROM Pricing p
    LEFT JOIN Bookings b ON b.paymentID = p.PaymentID
    LEFT JOIN Customers c ON b.customerID = c.CustomerID
    LEFT JOIN Rooms r ON r.RoomID = b.RoomID
    WHERE p.PaymentID = ?`
    return r.x.Query(ctx, q, id)
}

// All lists every payment.
func (r *PaymentRepo) All(ctx context.Context) ([]Row, error) {
    return r.x.Query(ctx, `SELECT * FROM Pricing ORDER BY PaymentID`)
}
