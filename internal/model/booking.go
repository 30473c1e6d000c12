package model

// Booking mirrors a row of the `Bookings` table.  A booking references
// one customer and one payment.  RoomID mirrors the room the booking
// was last assigned to; Rooms.currentStay remains the authority on who
// is in residence.
//
// Fields:
//  BookingsID   – primary key, generated on insert.
//  CustomerID   – guest who holds the booking.
//  BookedDate   – day the reservation was made.
//  ArrivalDate  – first night of the stay.
//  DepartureDay – check-out day; never before ArrivalDate.
//  PaymentID    – the payment owned by this booking.
//  RoomID       – assigned room, if any.
type Booking struct {
    BookingsID   int64  `json:"BookingsID"`   // Bookings.BookingsID
    CustomerID   int64  `json:"customerID"`   // Bookings.customerID
    BookedDate   Date   `json:"bookedDate"`   // Bookings.bookedDate
    ArrivalDate  Date   `json:"arrivalDate"`  // Bookings.arrivalDate
    DepartureDay Date   `json:"departureDay"` // Bookings.departureDay
    PaymentID    int64  `json:"paymentID"`    // Bookings.paymentID
    RoomID       *int64 `json:"RoomID"`       // Bookings.RoomID (nullable mirror)
}

// Covers reports whether day falls inside [ArrivalDate, DepartureDay].
func (b Booking) Covers(day Date) bool {
    return !day.Before(b.ArrivalDate.Time) && !day.After(b.DepartureDay.Time)
}

// StayNights returns the number of nights between arrival and departure.
func (b Booking) StayNights() int { return b.ArrivalDate.DaysUntil(b.DepartureDay) }

// BookingPatch holds the optional new values of a booking update.
type BookingPatch struct {
    ArrivalDate  *Date
    DepartureDay *Date
    PaymentID    *int64
}

// Empty reports whether no field is set.
func (p BookingPatch) Empty() bool {
    return p.ArrivalDate == nil && p.DepartureDay == nil && p.PaymentID == nil
}
