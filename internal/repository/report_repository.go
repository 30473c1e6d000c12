package repository

import (
    "context"
    "strings"

    "github.com/iliyamo/hotel-management/internal/model"
)

// ReportRepo runs the read-only aggregates behind the statistics
// endpoints.  Each method is one statement so that a failure in one
// section never affects the others.
type ReportRepo struct {
    x *Executor
}

// NewReportRepo returns a ReportRepo bound to the given executor.
func NewReportRepo(x *Executor) *ReportRepo { return &ReportRepo{x: x} }

const realized = `p.price * (1 - p.discount / 100.0)`

// dateBounds renders " AND col >= ? AND col <= ?" for the bounds that
// are set.
func dateBounds(col string, from, to *model.Date) (string, []any) {
    var (
        sb   strings.Builder
        args []any
    )
    if from != nil {
        sb.WriteString(" AND " + col + " >= ?")
        args = append(args, *from)
    }
    if to != nil {
        sb.WriteString(" AND " + col + " <= ?")
        args = append(args, *to)
    }
    return sb.String(), args
}

// OccupancyByType returns total, vacant and occupied counts per room
// type with the occupancy rate in percent.
func (r *ReportRepo) OccupancyByType(ctx context.Context) ([]Row, error) {
    const q = `
    SELECT type,
           COUNT(*) AS total_rooms,
           SUM(CASE WHEN isVacant = 1 THEN 1 ELSE 0 END) AS vacant_rooms,
           SUM(CASE WHEN isVacant = 0 THEN 1 ELSE 0 END) AS occupied_rooms,
           ROUND(SUM(CASE WHEN isVacant = 0 THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS occupancy_rate
    FROM Rooms
    GROUP BY type
    ORDER BY type`
    return r.x.Query(ctx, q)
}

// RevenueByRoomType aggregates discounted revenue per room type for
// bookings arriving within the optional bounds.
func (r *ReportRepo) RevenueByRoomType(ctx context.Context, from, to *model.Date) ([]Row, error) {
    filter, args := dateBounds("b.arrivalDate", from, to)
    q := `
    SELECT r.type,
           COUNT(DISTINCT b.BookingsID) AS booking_count,
           SUM(` + realized + `) AS total_revenue,
           AVG(` + realized + `) AS avg_revenue_per_booking
    FROM Bookings b
    JOIN Rooms r ON r.RoomID = b.RoomID
    JOIN Pricing p ON b.paymentID = p.PaymentID
    WHERE 1 = 1` + filter + `
    GROUP BY r.type
    ORDER BY r.type`
    return r.x.Query(ctx, q, args...)
}

// RevenueByDate sums discounted revenue per arrival date.
func (r *ReportRepo) RevenueByDate(ctx context.Context, from, to *model.Date) ([]Row, error) {
    filter, args := dateBounds("b.arrivalDate", from, to)
    q := `
    SELECT b.arrivalDate AS arrival_date,
           SUM(` + realized + `) AS daily_revenue
    FROM Bookings b
    JOIN Pricing p ON b.paymentID = p.PaymentID
    WHERE 1 = 1` + filter + `
    GROUP BY b.arrivalDate
    ORDER BY arrival_date`
    return r.x.Query(ctx, q, args...)
}

// RevenueOverall returns total and average revenue with the number of
// settled and pending payments.
func (r *ReportRepo) RevenueOverall(ctx context.Context, from, to *model.Date) ([]Row, error) {
    filter, args := dateBounds("b.arrivalDate", from, to)
    q := `
    SELECT SUM(` + realized + `) AS total_revenue,
           AVG(` + realized + `) AS avg_revenue_per_booking,
           COUNT(CASE WHEN p.isDone = 1 THEN 1 END) AS completed_payments,
           COUNT(CASE WHEN p.isDone = 0 THEN 1 END) AS pending_payments
    FROM Bookings b
    JOIN Pricing p ON b.paymentID = p.PaymentID
    WHERE 1 = 1` + filter
    return r.x.Query(ctx, q, args...)
}

// BookingsByDate counts bookings per booked date.
func (r *ReportRepo) BookingsByDate(ctx context.Context, from, to *model.Date) ([]Row, error) {
    filter, args := dateBounds("bookedDate", from, to)
    q := `
    SELECT bookedDate AS booking_date, COUNT(*) AS booking_count
    FROM Bookings
    WHERE 1 = 1` + filter + `
    GROUP BY bookedDate
    ORDER BY booking_date`
    return r.x.Query(ctx, q, args...)
}

// StayLengths returns the booking count with average, shortest and
// longest stay in days.
func (r *ReportRepo) StayLengths(ctx context.Context, from, to *model.Date) ([]Row, error) {
    filter, args := dateBounds("bookedDate", from, to)
    days := r.x.dialect.DaysBetween("arrivalDate", "departureDay")
    q := `
    SELECT COUNT(*) AS total_bookings,
           AVG(` + days + `) AS avg_stay_length,
           MIN(` + days + `) AS min_stay_length,
           MAX(` + days + `) AS max_stay_length
    FROM Bookings
    WHERE 1 = 1` + filter
    return r.x.Query(ctx, q, args...)
}

// Occupancy is the hotel-wide occupancy section of the statistics.
func (r *ReportRepo) Occupancy(ctx context.Context) ([]Row, error) {
    const q = `
    SELECT COUNT(*) AS total_rooms,
           SUM(CASE WHEN isVacant = 1 THEN 1 ELSE 0 END) AS vacant_rooms,
           SUM(CASE WHEN isVacant = 0 THEN 1 ELSE 0 END) AS occupied_rooms,
           ROUND(SUM(CASE WHEN isVacant = 0 THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS occupancy_rate
    FROM Rooms`
    return r.x.Query(ctx, q)
}

// Revenue is the revenue section: realized revenue counts settled
// payments only, pending the rest.
func (r *ReportRepo) Revenue(ctx context.Context) ([]Row, error) {
    const q = `
    SELECT SUM(` + realized + `) AS total_revenue,
           AVG(` + realized + `) AS avg_revenue_per_booking,
           SUM(CASE WHEN p.isDone = 1 THEN ` + realized + ` ELSE 0 END) AS realized_revenue,
           SUM(CASE WHEN p.isDone = 0 THEN ` + realized + ` ELSE 0 END) AS pending_revenue
    FROM Pricing p
    JOIN Bookings b ON p.PaymentID = b.paymentID`
    return r.x.Query(ctx, q)
}

// Bookings is the bookings section.  Upcoming bookings arrive on or
// after today; active bookings are the ones a room currently holds.
func (r *ReportRepo) Bookings(ctx context.Context, today model.Date) ([]Row, error) {
    q := `
    SELECT COUNT(*) AS total_bookings,
           COUNT(DISTINCT customerID) AS unique_customers,
           AVG(` + r.x.dialect.DaysBetween("arrivalDate", "departureDay") + `) AS avg_stay_duration,
           (SELECT COUNT(*) FROM Bookings WHERE arrivalDate >= ?) AS upcoming_bookings,
           (SELECT COUNT(*) FROM Bookings bk
            JOIN Rooms rm ON rm.currentStay = bk.BookingsID
            WHERE rm.isVacant = 0) AS active_bookings
    FROM Bookings`
    return r.x.Query(ctx, q, today)
}

// Popularity returns each room type's share of all bookings.
func (r *ReportRepo) Popularity(ctx context.Context) ([]Row, error) {
    const q = `
    SELECT r.type,
           COUNT(b.BookingsID) AS booking_count,
           ROUND(COUNT(b.BookingsID) * 100.0 / (SELECT COUNT(*) FROM Bookings), 2) AS booking_percentage
    FROM Rooms r
    JOIN Bookings b ON b.RoomID = r.RoomID
    GROUP BY r.type
    ORDER BY r.type`
    return r.x.Query(ctx, q)
}

// RoomCounts returns the total number of rooms and the occupied ones.
func (r *ReportRepo) RoomCounts(ctx context.Context) (total, occupied int64, err error) {
    const q = `SELECT COUNT(*), COALESCE(SUM(CASE WHEN isVacant = 0 THEN 1 ELSE 0 END), 0) FROM Rooms`
    if err := r.x.db.QueryRowContext(ctx, q).Scan(&total, &occupied); err != nil {
        return 0, 0, wrapDB(err)
    }
    return total, occupied, nil
}

// ArrivalCounts returns the number of arrivals per day in [from, to].
func (r *ReportRepo) ArrivalCounts(ctx context.Context, from, to model.Date) (map[string]int64, error) {
    return r.countsByDay(ctx, "arrivalDate", from, to)
}

// DepartureCounts returns the number of departures per day in [from, to].
func (r *ReportRepo) DepartureCounts(ctx context.Context, from, to model.Date) (map[string]int64, error) {
    return r.countsByDay(ctx, "departureDay", from, to)
}

func (r *ReportRepo) countsByDay(ctx context.Context, col string, from, to model.Date) (map[string]int64, error) {
    q := `SELECT ` + col + `, COUNT(*) FROM Bookings WHERE ` + col + ` BETWEEN ? AND ? GROUP BY ` + col
    rows, err := r.x.db.QueryContext(ctx, q, from, to)
    if err != nil {
        return nil, wrapDB(err)
    }
    defer rows.Close()

    out := make(map[string]int64)
    for rows.Next() {
        var (
            day model.Date
            n   int64
        )
        if err := rows.Scan(&day, &n); err != nil {
            return nil, wrapDB(err)
        }
        out[day.String()] = n
    }
    if err := rows.Err(); err != nil {
        return nil, wrapDB(err)
    }
    return out, nil
}
